package service

import (
	"context"
	"fmt"
	"time"

	"nico-interface-sol/internal/logic/domain"
	"nico-interface-sol/internal/pkg/logger"
	"nico-interface-sol/internal/types"
	"nico-interface-sol/pkg/utils"

	"github.com/blocto/solana-go-sdk/client"
)

// getMultipleAccountsLimit 为 RPC getMultipleAccounts 单次最多查询的账户数
const getMultipleAccountsLimit = 100

// SnapshotSource 批量拉取账户快照，返回顺序与 addrs 一致；不存在的账户返回空快照
type SnapshotSource interface {
	Fetch(ctx context.Context, addrs []types.Pubkey) ([]domain.AccountSnapshot, error)
}

// accountsFetcher 为 *client.Client 中本服务使用的方法
type accountsFetcher interface {
	GetMultipleAccounts(ctx context.Context, addrs []string) ([]client.AccountInfo, error)
}

// RpcSnapshotSource 基于 Solana RPC 的快照源
type RpcSnapshotSource struct {
	client  accountsFetcher
	timeout time.Duration
	workers int
}

func NewRpcSnapshotSource(endpoint string, timeout time.Duration) *RpcSnapshotSource {
	return newRpcSnapshotSource(client.NewClient(endpoint), timeout)
}

func newRpcSnapshotSource(c accountsFetcher, timeout time.Duration) *RpcSnapshotSource {
	return &RpcSnapshotSource{client: c, timeout: timeout, workers: 4}
}

type chunkResult struct {
	snapshots []domain.AccountSnapshot
	err       error
}

// Fetch 超过单次上限时分批并发请求
func (s *RpcSnapshotSource) Fetch(ctx context.Context, addrs []types.Pubkey) ([]domain.AccountSnapshot, error) {
	if len(addrs) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	results := utils.ParallelMap(utils.Chunk(addrs, getMultipleAccountsLimit), s.workers, func(chunk []types.Pubkey) chunkResult {
		snapshots, err := s.fetchChunk(ctx, chunk)
		return chunkResult{snapshots: snapshots, err: err}
	})

	out := make([]domain.AccountSnapshot, 0, len(addrs))
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		out = append(out, r.snapshots...)
	}
	logger.Debugf("[RpcSnapshotSource] GetMultipleAccounts 成功, 账户数: %d, 耗时: %v", len(addrs), time.Since(start))
	return out, nil
}

func (s *RpcSnapshotSource) fetchChunk(ctx context.Context, addrs []types.Pubkey) ([]domain.AccountSnapshot, error) {
	keys := make([]string, len(addrs))
	for i, a := range addrs {
		keys[i] = a.ToBase58()
	}

	infos, err := s.client.GetMultipleAccounts(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("GetMultipleAccounts failed: %w", err)
	}
	if len(infos) != len(addrs) {
		return nil, fmt.Errorf("返回账户数与请求不一致: got=%d want=%d", len(infos), len(addrs))
	}

	out := make([]domain.AccountSnapshot, len(addrs))
	for i, info := range infos {
		out[i] = domain.AccountSnapshot{Address: addrs[i], Owner: info.Owner, Data: info.Data}
	}
	return out, nil
}
