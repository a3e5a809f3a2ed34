package service

import (
	"context"
	"fmt"

	"nico-interface-sol/internal/logic/domain"
	"nico-interface-sol/internal/logic/identifier"
	"nico-interface-sol/internal/logic/pda"
	"nico-interface-sol/internal/types"
)

// Resolution 一次识别的结果以及识别时使用的快照
type Resolution struct {
	Handle    *domain.AssetHandle
	Snapshots []domain.AccountSnapshot // [0] 为资产本身，[1] 为派生的 metadata 地址
}

// AssetResolver 拉取资产与其 metadata 快照后识别资产
type AssetResolver struct {
	source SnapshotSource
}

func NewAssetResolver(source SnapshotSource) *AssetResolver {
	return &AssetResolver{source: source}
}

// Resolve 资产与派生 metadata 在一次请求中拉取；非 legacy mint 的资产不会用到 metadata 快照
func (r *AssetResolver) Resolve(ctx context.Context, asset types.Pubkey, mintCtx domain.MintContext) (*Resolution, error) {
	metadataAddr, _ := pda.MetadataAddress(asset)
	snapshots, err := r.source.Fetch(ctx, []types.Pubkey{asset, metadataAddr})
	if err != nil {
		return nil, fmt.Errorf("fetch asset %s: %w", asset.ToBase58(), err)
	}
	if len(snapshots) != 2 {
		return nil, fmt.Errorf("fetch asset %s: got %d snapshots", asset.ToBase58(), len(snapshots))
	}
	if !snapshots[0].Exists() {
		return nil, domain.MissingAccount("asset", asset)
	}

	handle, err := identifier.FromSnapshots(snapshots[0], snapshots[1:], mintCtx)
	if err != nil {
		return nil, err
	}
	return &Resolution{Handle: handle, Snapshots: snapshots}, nil
}
