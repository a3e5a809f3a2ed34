package tokenmeta

import (
	"fmt"

	"nico-interface-sol/internal/types"

	"github.com/near/borsh-go"
)

// 合约源代码: https://github.com/metaplex-foundation/mpl-token-metadata/blob/main/programs/token-metadata/program/src/state/metadata.rs

// KeyMetadataV1 为 Metadata 账户的 Key 前缀
const KeyMetadataV1 uint8 = 4

// TokenStandard 对应 Metadata.token_standard
type TokenStandard uint8

const (
	TokenStandardNonFungible                    TokenStandard = 0
	TokenStandardFungibleAsset                  TokenStandard = 1
	TokenStandardFungible                       TokenStandard = 2
	TokenStandardNonFungibleEdition             TokenStandard = 3
	TokenStandardProgrammableNonFungible        TokenStandard = 4
	TokenStandardProgrammableNonFungibleEdition TokenStandard = 5
)

type Creator struct {
	Address  types.Pubkey
	Verified bool
	Share    uint8
}

type Data struct {
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             *[]Creator
}

type Collection struct {
	Verified bool
	Key      types.Pubkey
}

type Uses struct {
	UseMethod uint8
	Remaining uint64
	Total     uint64
}

// CollectionDetails: V1{size} / V2{padding}
type CollectionDetails struct {
	Enum borsh.Enum `borsh_enum:"true"`
	V1   struct{ Size uint64 }
	V2   struct{ Padding [8]uint8 }
}

// ProgrammableConfig: V1{rule_set}
type ProgrammableConfig struct {
	Enum borsh.Enum `borsh_enum:"true"`
	V1   struct{ RuleSet *types.Pubkey }
}

// Metadata Token Metadata 账户
type Metadata struct {
	Key                 uint8
	UpdateAuthority     types.Pubkey
	Mint                types.Pubkey
	Data                Data
	PrimarySaleHappened bool
	IsMutable           bool
	EditionNonce        *uint8
	TokenStandard       *TokenStandard
	Collection          *Collection
	Uses                *Uses
	CollectionDetails   *CollectionDetails
	ProgrammableConfig  *ProgrammableConfig
}

// 旧版本 metadata 账户可能在 is_mutable 之后直接截断，
// 补齐足够的 0 让后续 Option 字段读为 None
const trailingPadding = 1 + 2 + 1 + 1 + 33 + 1 + 17 + 1 + 9 + 1 + 1 + 33

// DecodeMetadata 解码 Metadata 账户，兼容 0 填充与尾部截断
func DecodeMetadata(data []byte) (md *Metadata, err error) {
	if len(data) == 0 || data[0] != KeyMetadataV1 {
		return nil, fmt.Errorf("not a MetadataV1 account")
	}
	// borsh-go 在遇到非法长度前缀时可能 panic，这里统一转换为 error
	defer func() {
		if r := recover(); r != nil {
			md, err = nil, fmt.Errorf("metadata decode panic: %v", r)
		}
	}()

	buf := make([]byte, len(data), len(data)+trailingPadding)
	copy(buf, data)
	buf = append(buf, make([]byte, trailingPadding)...)

	var m Metadata
	if err := borsh.Deserialize(&m, buf); err != nil {
		return nil, fmt.Errorf("metadata decode: %w", err)
	}
	return &m, nil
}

// EncodeMetadata 序列化 Metadata（测试与回放数据构造使用）
func EncodeMetadata(m *Metadata) ([]byte, error) {
	return borsh.Serialize(*m)
}

// VerifiedCollection 返回已验证的集合地址
func (m *Metadata) VerifiedCollection() (types.Pubkey, bool) {
	if m.Collection == nil || !m.Collection.Verified {
		return types.Pubkey{}, false
	}
	return m.Collection.Key, true
}

// RuleSet 返回 programmable config 中配置的规则集
func (m *Metadata) RuleSet() *types.Pubkey {
	if m.ProgrammableConfig == nil || m.ProgrammableConfig.Enum != 0 {
		return nil
	}
	if m.ProgrammableConfig.V1.RuleSet == nil {
		return nil
	}
	rs := *m.ProgrammableConfig.V1.RuleSet
	return &rs
}
