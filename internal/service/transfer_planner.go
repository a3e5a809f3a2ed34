package service

import (
	"context"
	"fmt"

	"nico-interface-sol/internal/logic/accounts"
	"nico-interface-sol/internal/logic/domain"
	"nico-interface-sol/internal/logic/standard/tokenmeta"
	"nico-interface-sol/internal/logic/transfer"
	"nico-interface-sol/internal/pkg/logger"
	"nico-interface-sol/internal/types"
)

// PlanRequest 离线规划一次转账所需的输入
type PlanRequest struct {
	Asset       types.Pubkey
	Payer       types.Pubkey
	Recipient   types.Pubkey
	Authority   *types.Pubkey
	MintContext domain.MintContext // pNFT 需要当前持有人与持有账户
	SignerSeeds [][][]byte
}

// TransferPlanner 识别资产、按所选路径拉取辅助账户、通过 CpiRecorder 生成最终指令
type TransferPlanner struct {
	resolver *AssetResolver
	source   SnapshotSource
	caller   types.Pubkey
}

// NewTransferPlanner caller 为发起调用的程序，只在带 signer seeds 时有意义
func NewTransferPlanner(resolver *AssetResolver, source SnapshotSource, caller types.Pubkey) *TransferPlanner {
	return &TransferPlanner{resolver: resolver, source: source, caller: caller}
}

func (p *TransferPlanner) Plan(ctx context.Context, req PlanRequest) ([]transfer.Invocation, error) {
	res, err := p.resolver.Resolve(ctx, req.Asset, req.MintContext)
	if err != nil {
		return nil, err
	}

	addrs, err := transfer.AuxiliaryAddresses(res.Handle, req.Recipient, ruleSetOf(res))
	if err != nil {
		return nil, err
	}
	snapshots, err := p.source.Fetch(ctx, addrs)
	if err != nil {
		return nil, fmt.Errorf("fetch auxiliary accounts: %w", err)
	}

	// payer 总是签名；authority 只在没有 PDA seeds 时由钱包签名
	signers := map[types.Pubkey]bool{req.Payer: true}
	authoritySigns := len(req.SignerSeeds) == 0
	if req.Authority != nil && authoritySigns {
		signers[*req.Authority] = true
	}

	// 目标 ATA、目标 token record 等账户可能尚未创建，仍以空账户放入池中。
	// 当前持有人通常就是 payer 或 authority，池中的同一地址需带上签名权限
	pool := make([]*domain.AccountInfo, 0, len(snapshots))
	for _, s := range snapshots {
		if _, ok := accounts.Find(pool, s.Address); ok {
			continue
		}
		pool = append(pool, &domain.AccountInfo{
			Key:        s.Address,
			Owner:      s.Owner,
			Data:       s.Data,
			IsSigner:   signers[s.Address],
			IsWritable: true,
		})
	}

	treq := &domain.TransferRequest{
		Payer:       &domain.AccountInfo{Key: req.Payer, IsSigner: true, IsWritable: true},
		Recipient:   &domain.AccountInfo{Key: req.Recipient, IsWritable: true},
		SignerSeeds: req.SignerSeeds,
		Pool:        pool,
	}
	if req.Authority != nil {
		treq.Authority = &domain.AccountInfo{Key: *req.Authority, IsSigner: authoritySigns}
	}

	recorder := transfer.NewCpiRecorder(p.caller)
	if err := transfer.NewDispatcher(recorder).Transfer(res.Handle, treq); err != nil {
		return nil, err
	}
	logger.Infof("[TransferPlanner] planned transfer, asset=%s, recipient=%s, accounts=%d",
		req.Asset.ToBase58(), req.Recipient.ToBase58(), len(pool))
	return recorder.Invocations(), nil
}

// ruleSetOf pNFT 的规则集来自识别时已拉取的 metadata 快照
func ruleSetOf(res *Resolution) *types.Pubkey {
	v, ok := res.Handle.Variant().(domain.LegacyMint)
	if !ok || v.MetadataKind != domain.MetadataProgrammable || len(res.Snapshots) < 2 {
		return nil
	}
	md, err := tokenmeta.DecodeMetadata(res.Snapshots[1].Data)
	if err != nil {
		return nil
	}
	return md.RuleSet()
}
