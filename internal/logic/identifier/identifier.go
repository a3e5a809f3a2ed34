package identifier

import (
	"fmt"

	"nico-interface-sol/internal/consts"
	"nico-interface-sol/internal/logic/accounts"
	"nico-interface-sol/internal/logic/domain"
	"nico-interface-sol/internal/logic/pda"
	"nico-interface-sol/internal/logic/standard/mplcore"
	"nico-interface-sol/internal/logic/standard/nifty"
	"nico-interface-sol/internal/logic/standard/tokenmeta"
	"nico-interface-sol/internal/pkg/logger"
	"nico-interface-sol/internal/types"
)

// metadataLookup 按地址返回伴生 metadata 的原始数据
type metadataLookup func(address types.Pubkey) ([]byte, bool)

// FromAccounts 基于交易内可见的账户识别资产（链上组合调用场景）。
// legacy mint 的 metadata 从 pool 中按派生地址查找；识别期间的数据借用在返回前全部释放。
func FromAccounts(asset *domain.AccountInfo, pool []*domain.AccountInfo, mintCtx domain.MintContext) (*domain.AssetHandle, error) {
	if asset == nil {
		return nil, fmt.Errorf("%w: asset account is nil", domain.ErrMissingAccount)
	}

	var refs []*domain.DataRef
	defer func() {
		for _, ref := range refs {
			ref.Release()
		}
	}()
	borrow := func(acc *domain.AccountInfo) []byte {
		ref := acc.BorrowData()
		refs = append(refs, ref)
		return ref.Bytes()
	}

	lookup := func(address types.Pubkey) ([]byte, bool) {
		acc, ok := accounts.Find(pool, address)
		if !ok {
			return nil, false
		}
		return borrow(acc), true
	}
	return identify(asset.Key, asset.Owner, borrow(asset), lookup, mintCtx)
}

// FromSnapshots 基于预先拉取的账户快照识别资产（索引回放等离线场景）
func FromSnapshots(asset domain.AccountSnapshot, snapshots []domain.AccountSnapshot, mintCtx domain.MintContext) (*domain.AssetHandle, error) {
	lookup := func(address types.Pubkey) ([]byte, bool) {
		s, ok := accounts.FindSnapshot(snapshots, address)
		if !ok {
			return nil, false
		}
		return s.Data, true
	}
	return identify(asset.Address, asset.Owner, asset.Data, lookup, mintCtx)
}

// identify 按所属程序选择分支，先命中者生效
func identify(address, owner types.Pubkey, data []byte, lookup metadataLookup, mintCtx domain.MintContext) (*domain.AssetHandle, error) {
	switch {
	case owner == consts.NiftyAssetProgram:
		return identifyRecord(address, owner, data)
	case owner == consts.MplCoreProgram:
		return identifyCompact(address, owner, data)
	case consts.IsSPLTokenProgram(owner):
		return identifyLegacyMint(address, owner, lookup, mintCtx)
	default:
		logger.Debugf("[Identifier] unexpected owner, asset=%s, owner=%s", address.ToBase58(), owner.ToBase58())
		return nil, domain.NewAccountError(domain.ErrUnexpectedOwner, "asset", address)
	}
}

func identifyRecord(address, owner types.Pubkey, data []byte) (*domain.AssetHandle, error) {
	asset, err := nifty.ParseAsset(data)
	if err != nil {
		return nil, fmt.Errorf("%w: nifty asset %s: %v", domain.ErrDeserialization, address.ToBase58(), err)
	}
	return domain.NewRecordHandle(address, owner, asset.Group), nil
}

func identifyCompact(address, owner types.Pubkey, data []byte) (*domain.AssetHandle, error) {
	asset, err := mplcore.DecodeAsset(data)
	if err != nil {
		return nil, fmt.Errorf("%w: core asset %s: %v", domain.ErrDeserialization, address.ToBase58(), err)
	}
	ua, err := asset.Authority()
	if err != nil {
		return nil, fmt.Errorf("%w: core asset %s: %v", domain.ErrDeserialization, address.ToBase58(), err)
	}
	return domain.NewCompactHandle(address, owner, ua), nil
}

func identifyLegacyMint(address, owner types.Pubkey, lookup metadataLookup, mintCtx domain.MintContext) (*domain.AssetHandle, error) {
	metadataAddr, _ := pda.MetadataAddress(address)
	raw, ok := lookup(metadataAddr)
	if !ok {
		logger.Debugf("[Identifier] no metadata supplied, mint=%s, metadata=%s", address.ToBase58(), metadataAddr.ToBase58())
		return nil, domain.MissingAccount("metadata", metadataAddr)
	}

	md, err := tokenmeta.DecodeMetadata(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata %s: %v", domain.ErrDeserialization, metadataAddr.ToBase58(), err)
	}

	kind, err := metadataKind(md.TokenStandard)
	if err != nil {
		return nil, domain.NewAccountError(err, "metadata", metadataAddr)
	}

	var group *types.Pubkey
	if collection, ok := md.VerifiedCollection(); ok {
		group = &collection
	}
	return domain.NewLegacyMintHandle(address, owner, group, kind, mintCtx), nil
}

// metadataKind 由 token_standard 唯一决定；未支持的标准返回 ErrUnsupportedStandard
func metadataKind(standard *tokenmeta.TokenStandard) (domain.MetadataKind, error) {
	if standard == nil {
		return domain.MetadataUnknown, nil
	}
	switch *standard {
	case tokenmeta.TokenStandardProgrammableNonFungible:
		return domain.MetadataProgrammable, nil
	case tokenmeta.TokenStandardNonFungible:
		return domain.MetadataNonProgrammable, nil
	default:
		return domain.MetadataUnknown, fmt.Errorf("%w: %d", domain.ErrUnsupportedStandard, *standard)
	}
}
