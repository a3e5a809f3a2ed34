package domain

import (
	"nico-interface-sol/internal/consts"
	"nico-interface-sol/internal/types"
)

// MetadataKind 表示 legacy mint 伴生 metadata 的类型
type MetadataKind uint8

const (
	MetadataUnknown         MetadataKind = iota // metadata 未声明 token standard
	MetadataExtensionBased                      // token-2022 metadata extension
	MetadataNonProgrammable                     // tokenStandard: NonFungible
	MetadataProgrammable                        // tokenStandard: ProgrammableNonFungible
)

func (k MetadataKind) String() string {
	switch k {
	case MetadataUnknown:
		return "Unknown"
	case MetadataExtensionBased:
		return "ExtensionBased"
	case MetadataNonProgrammable:
		return "NonProgrammable"
	case MetadataProgrammable:
		return "Programmable"
	default:
		return "Invalid"
	}
}

// UpdateAuthorityKind 对应 Core 资产 update authority 的三种形态
type UpdateAuthorityKind uint8

const (
	UpdateAuthorityNone UpdateAuthorityKind = iota
	UpdateAuthorityAddress
	UpdateAuthorityCollection
)

// UpdateAuthority Core 资产的 update authority
type UpdateAuthority struct {
	Kind    UpdateAuthorityKind
	Address types.Pubkey // Kind 为 None 时为零值
}

// Variant 是资产标准的封闭和类型，只有本包内的三种实现
type Variant interface {
	Standard() int
	isVariant()
}

// RecordAsset 对应 Nifty 标准：单账户、自描述
type RecordAsset struct{}

// CompactAsset 对应 Metaplex Core 标准
type CompactAsset struct {
	UpdateAuthority UpdateAuthority
}

// LegacyMint 对应 Token Metadata 标准，资产本身是 mint 账户
type LegacyMint struct {
	MetadataKind        MetadataKind
	CurrentOwner        *types.Pubkey // 识别时捕获的当前持有人（仅 Programmable 转账需要）
	CurrentTokenAccount *types.Pubkey // 识别时捕获的当前持有账户（仅 Programmable 转账需要）
}

func (RecordAsset) Standard() int  { return consts.StandardNifty }
func (CompactAsset) Standard() int { return consts.StandardMplCore }
func (LegacyMint) Standard() int   { return consts.StandardLegacyMint }

func (RecordAsset) isVariant()  {}
func (CompactAsset) isVariant() {}
func (LegacyMint) isVariant()   {}

// MintContext 为 legacy mint 识别时可选捕获的持有上下文
type MintContext struct {
	CurrentOwner        *types.Pubkey
	CurrentTokenAccount *types.Pubkey
}

// AssetHandle 是资产的标准化身份，构造后不可变
type AssetHandle struct {
	address         types.Pubkey
	owningComponent types.Pubkey
	group           *types.Pubkey
	variant         Variant
}

// NewRecordHandle 构造 Nifty 资产句柄
func NewRecordHandle(address, owningComponent types.Pubkey, group *types.Pubkey) *AssetHandle {
	return &AssetHandle{
		address:         address,
		owningComponent: owningComponent,
		group:           clonePubkey(group),
		variant:         RecordAsset{},
	}
}

// NewCompactHandle 构造 Core 资产句柄；仅当 update authority 为 Collection 时填充 group
func NewCompactHandle(address, owningComponent types.Pubkey, ua UpdateAuthority) *AssetHandle {
	h := &AssetHandle{
		address:         address,
		owningComponent: owningComponent,
		variant:         CompactAsset{UpdateAuthority: ua},
	}
	if ua.Kind == UpdateAuthorityCollection {
		collection := ua.Address
		h.group = &collection
	}
	return h
}

// NewLegacyMintHandle 构造 legacy mint 资产句柄
func NewLegacyMintHandle(address, owningComponent types.Pubkey, group *types.Pubkey, kind MetadataKind, mintCtx MintContext) *AssetHandle {
	return &AssetHandle{
		address:         address,
		owningComponent: owningComponent,
		group:           clonePubkey(group),
		variant: LegacyMint{
			MetadataKind:        kind,
			CurrentOwner:        clonePubkey(mintCtx.CurrentOwner),
			CurrentTokenAccount: clonePubkey(mintCtx.CurrentTokenAccount),
		},
	}
}

func (h *AssetHandle) Address() types.Pubkey         { return h.address }
func (h *AssetHandle) OwningComponent() types.Pubkey { return h.owningComponent }

// Group 返回资产所属的已验证集合
func (h *AssetHandle) Group() (types.Pubkey, bool) {
	if h.group == nil {
		return types.Pubkey{}, false
	}
	return *h.group, true
}

// Variant 返回资产标准。LegacyMint 中的指针字段为句柄内部副本的再拷贝
func (h *AssetHandle) Variant() Variant {
	if m, ok := h.variant.(LegacyMint); ok {
		m.CurrentOwner = clonePubkey(m.CurrentOwner)
		m.CurrentTokenAccount = clonePubkey(m.CurrentTokenAccount)
		return m
	}
	return h.variant
}

func clonePubkey(p *types.Pubkey) *types.Pubkey {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
