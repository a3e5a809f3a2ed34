package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nico-interface-sol/internal/logic/domain"
	"nico-interface-sol/internal/pkg/logger"
	"nico-interface-sol/internal/types"

	"github.com/near/borsh-go"
	"github.com/redis/go-redis/v9"
)

// cachedSnapshot 为 Redis 中存储的快照值；不存在的账户同样缓存，Owner 为零值
type cachedSnapshot struct {
	Owner types.Pubkey
	Data  []byte
}

// RedisSnapshotCache 在 SnapshotSource 前加一层 Redis 读穿缓存。
// Redis 出错时降级为直接读上游，不影响识别。
type RedisSnapshotCache struct {
	rdb      redis.UniversalClient
	upstream SnapshotSource
	ttl      time.Duration
	prefix   string
}

func NewRedisSnapshotCache(rdb redis.UniversalClient, upstream SnapshotSource, ttl time.Duration, prefix string) *RedisSnapshotCache {
	return &RedisSnapshotCache{rdb: rdb, upstream: upstream, ttl: ttl, prefix: prefix}
}

func (c *RedisSnapshotCache) key(addr types.Pubkey) string {
	return fmt.Sprintf("%s:%s", c.prefix, addr.ToBase58())
}

func (c *RedisSnapshotCache) Fetch(ctx context.Context, addrs []types.Pubkey) ([]domain.AccountSnapshot, error) {
	if len(addrs) == 0 {
		return nil, nil
	}

	out := make([]domain.AccountSnapshot, len(addrs))

	keys := make([]string, len(addrs))
	for i, a := range addrs {
		keys[i] = c.key(a)
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		logger.Warnf("[RedisSnapshotCache] mget failed, fallback to upstream: %v", err)
		return c.upstream.Fetch(ctx, addrs)
	}

	var missAddrs []types.Pubkey
	var missIdx []int
	for i, v := range vals {
		if s, ok := decodeCached(addrs[i], v); ok {
			out[i] = s
			continue
		}
		missAddrs = append(missAddrs, addrs[i])
		missIdx = append(missIdx, i)
	}
	if len(missAddrs) == 0 {
		return out, nil
	}

	fetched, err := c.upstream.Fetch(ctx, missAddrs)
	if err != nil {
		return nil, err
	}
	if len(fetched) != len(missAddrs) {
		return nil, fmt.Errorf("upstream returned %d snapshots, want %d", len(fetched), len(missAddrs))
	}
	for j, s := range fetched {
		out[missIdx[j]] = s
	}

	if err := c.store(ctx, fetched); err != nil {
		logger.Warnf("[RedisSnapshotCache] store failed: %v", err)
	}
	return out, nil
}

func (c *RedisSnapshotCache) store(ctx context.Context, snapshots []domain.AccountSnapshot) error {
	pipe := c.rdb.Pipeline()
	for _, s := range snapshots {
		val, err := borsh.Serialize(cachedSnapshot{Owner: s.Owner, Data: s.Data})
		if err != nil {
			return fmt.Errorf("encode snapshot %s: %w", s.Address.ToBase58(), err)
		}
		pipe.Set(ctx, c.key(s.Address), val, c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Invalidate 删除指定地址的缓存
func (c *RedisSnapshotCache) Invalidate(ctx context.Context, addrs ...types.Pubkey) error {
	if len(addrs) == 0 {
		return nil
	}
	keys := make([]string, len(addrs))
	for i, a := range addrs {
		keys[i] = c.key(a)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis del error: %w", err)
	}
	return nil
}

// decodeCached 无法解码的值按未命中处理
func decodeCached(addr types.Pubkey, v interface{}) (s domain.AccountSnapshot, ok bool) {
	str, isStr := v.(string)
	if !isStr {
		return domain.AccountSnapshot{}, false
	}
	defer func() {
		if r := recover(); r != nil {
			s, ok = domain.AccountSnapshot{}, false
		}
	}()
	var cs cachedSnapshot
	if err := borsh.Deserialize(&cs, []byte(str)); err != nil {
		return domain.AccountSnapshot{}, false
	}
	return domain.AccountSnapshot{Address: addr, Owner: cs.Owner, Data: cs.Data}, true
}
