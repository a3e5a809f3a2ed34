package svc

import (
	"time"

	"nico-interface-sol/internal/config"
	"nico-interface-sol/internal/mq"
	"nico-interface-sol/internal/pkg/logger"
	"nico-interface-sol/internal/service"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/redis/go-redis/v9"
)

// ServiceContext 包含服务共享资源
type ServiceContext struct {
	Config   config.Config
	Redis    *redis.Client          // 未配置 redis.addr 时为空
	Source   service.SnapshotSource // RPC，配置了 Redis 时外包一层缓存
	Resolver *service.AssetResolver
	Producer *kafka.Producer // 未配置 brokers 时为空
}

// NewServiceContext 创建服务上下文
func NewServiceContext(c config.Config) (*ServiceContext, error) {
	// 1. RPC 快照源
	var source service.SnapshotSource = service.NewRpcSnapshotSource(
		c.RpcConf.Endpoint, time.Duration(c.RpcConf.TimeoutMs)*time.Millisecond)

	// 2. 可选的 Redis 快照缓存
	var rdb *redis.Client
	if c.RedisConf.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr: c.RedisConf.Addr,
			DB:   c.RedisConf.DB,
		})
		source = service.NewRedisSnapshotCache(rdb, source,
			time.Duration(c.RedisConf.TTLSec)*time.Second, c.RedisConf.KeyPrefix)
	}

	// 3. 可选的 Kafka 生产者
	var producer *kafka.Producer
	if c.KafkaProducerConf.Brokers != "" {
		p, err := mq.NewKafkaProducer(c.KafkaProducerConf)
		if err != nil {
			logger.Errorf("Kafka producer 初始化失败: %v", err)
			if rdb != nil {
				_ = rdb.Close()
			}
			return nil, err
		}
		producer = p
	}

	ctx := &ServiceContext{
		Config:   c,
		Redis:    rdb,
		Source:   source,
		Resolver: service.NewAssetResolver(source),
		Producer: producer,
	}
	logger.Infof("服务上下文初始化完成, redis=%v, kafka=%v", rdb != nil, producer != nil)
	return ctx, nil
}

// ReplayProducer 返回回放服务使用的生产者；未配置 Kafka 时返回 nil 接口
func (ctx *ServiceContext) ReplayProducer() mq.Producer {
	if ctx.Producer == nil {
		return nil
	}
	return ctx.Producer
}

// Close 关闭服务上下文中的资源
func (ctx *ServiceContext) Close() {
	if ctx.Producer != nil {
		ctx.Producer.Flush(3000)
		ctx.Producer.Close()
	}
	if ctx.Redis != nil {
		_ = ctx.Redis.Close()
	}
}
