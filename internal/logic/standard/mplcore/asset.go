package mplcore

import (
	"fmt"

	"nico-interface-sol/internal/consts"
	"nico-interface-sol/internal/logic/domain"
	"nico-interface-sol/internal/types"

	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"
)

// 合约源代码: https://github.com/metaplex-foundation/mpl-core/blob/main/programs/mpl-core/src/state/asset.rs

// Key 为 Core 账户的类型前缀
const (
	KeyUninitialized uint8 = 0
	KeyAssetV1       uint8 = 1
	KeyCollectionV1  uint8 = 5
)

// InstructionTransferV1 为 MplAssetInstruction 中 TransferV1 的序号
const InstructionTransferV1 uint8 = 14

// UpdateAuthority 的 borsh 枚举形式：None / Address(Pubkey) / Collection(Pubkey)
type updateAuthority struct {
	Enum       borsh.Enum `borsh_enum:"true"`
	None       struct{}
	Address    types.Pubkey
	Collection types.Pubkey
}

// BaseAssetV1 Core 资产账户头部；之后的插件区不在此解析
type BaseAssetV1 struct {
	Key             uint8
	Owner           types.Pubkey
	UpdateAuthority updateAuthority
	Name            string
	Uri             string
	Seq             *uint64
}

// DecodeAsset 解码 Core 资产头部
func DecodeAsset(data []byte) (asset *BaseAssetV1, err error) {
	if len(data) == 0 || data[0] != KeyAssetV1 {
		return nil, fmt.Errorf("not a core AssetV1 account")
	}
	// borsh-go 在遇到越界长度前缀时可能 panic，这里统一转换为 error
	defer func() {
		if r := recover(); r != nil {
			asset, err = nil, fmt.Errorf("core asset decode panic: %v", r)
		}
	}()
	var a BaseAssetV1
	if err := borsh.Deserialize(&a, data); err != nil {
		return nil, fmt.Errorf("core asset decode: %w", err)
	}
	return &a, nil
}

// Authority 将 borsh 枚举转换为领域模型中的 UpdateAuthority
func (a *BaseAssetV1) Authority() (domain.UpdateAuthority, error) {
	switch a.UpdateAuthority.Enum {
	case 0:
		return domain.UpdateAuthority{Kind: domain.UpdateAuthorityNone}, nil
	case 1:
		return domain.UpdateAuthority{Kind: domain.UpdateAuthorityAddress, Address: a.UpdateAuthority.Address}, nil
	case 2:
		return domain.UpdateAuthority{Kind: domain.UpdateAuthorityCollection, Address: a.UpdateAuthority.Collection}, nil
	default:
		return domain.UpdateAuthority{}, fmt.Errorf("unknown core update authority variant: %d", a.UpdateAuthority.Enum)
	}
}

// EncodeAsset 序列化 Core 资产头部（测试与回放数据构造使用）
func EncodeAsset(owner types.Pubkey, ua domain.UpdateAuthority, name, uri string) ([]byte, error) {
	a := BaseAssetV1{Key: KeyAssetV1, Owner: owner, Name: name, Uri: uri}
	switch ua.Kind {
	case domain.UpdateAuthorityNone:
		a.UpdateAuthority.Enum = 0
	case domain.UpdateAuthorityAddress:
		a.UpdateAuthority.Enum = 1
		a.UpdateAuthority.Address = ua.Address
	case domain.UpdateAuthorityCollection:
		a.UpdateAuthority.Enum = 2
		a.UpdateAuthority.Collection = ua.Address
	default:
		return nil, fmt.Errorf("unknown update authority kind: %d", ua.Kind)
	}
	return borsh.Serialize(a)
}

// TransferV1Accounts Core TransferV1 指令账户
type TransferV1Accounts struct {
	Asset      types.Pubkey
	Collection *types.Pubkey // 可选
	Payer      types.Pubkey
	Authority  *types.Pubkey // 可选，缺省时由程序使用 payer
	NewOwner   types.Pubkey
}

// TransferV1Instruction 构造 Core TransferV1 指令
//
// #0 - asset（可写）
// #1 - collection（可选）
// #2 - payer（可写，签名）
// #3 - authority（可选，签名）
// #4 - new_owner
// #5 - system_program（不传，程序 id 占位）
// #6 - log_wrapper（不传，程序 id 占位）
//
// data = [14, 0]：TransferV1Args{compression_proof: None}
func TransferV1Instruction(a TransferV1Accounts) sdktypes.Instruction {
	placeholder := sdktypes.AccountMeta{PubKey: consts.MplCoreProgram}

	collection := placeholder
	if a.Collection != nil {
		collection = sdktypes.AccountMeta{PubKey: *a.Collection}
	}
	authority := placeholder
	if a.Authority != nil {
		authority = sdktypes.AccountMeta{PubKey: *a.Authority, IsSigner: true}
	}

	return sdktypes.Instruction{
		ProgramID: consts.MplCoreProgram,
		Accounts: []sdktypes.AccountMeta{
			{PubKey: a.Asset, IsWritable: true},
			collection,
			{PubKey: a.Payer, IsSigner: true, IsWritable: true},
			authority,
			{PubKey: a.NewOwner},
			placeholder,
			placeholder,
		},
		Data: []byte{InstructionTransferV1, 0},
	}
}
