package nifty

import (
	"fmt"

	"nico-interface-sol/internal/consts"
	"nico-interface-sol/internal/types"

	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// 合约源代码: https://github.com/nifty-oss/asset/blob/main/programs/asset/types/src/state/asset.rs
//
// Asset 账户固定头部布局（共 168 字节，之后为可选扩展）：
//
//	[0]        discriminator
//	[1]        state
//	[2]        standard
//	[3]        mutable
//	[4:36]     owner
//	[36:68]    group（全 0 表示无）
//	[68:100]   authority
//	[100:133]  delegate（address + roles）
//	[133:168]  name（35 字节，0 填充）
const (
	AssetLen = 168

	offsetDiscriminator = 0
	offsetState         = 1
	offsetStandard      = 2
	offsetMutable       = 3
	offsetOwner         = 4
	offsetGroup         = 36
	offsetAuthority     = 68
	offsetDelegate      = 100
	offsetName          = 133

	// StandardOffset 为 standard 字段所在偏移，转账前校验使用
	StandardOffset = offsetStandard
)

// Discriminator 账户类型
const (
	DiscriminatorUninitialized uint8 = 0
	DiscriminatorAsset         uint8 = 1
)

// Standard 资产标准
type Standard uint8

const (
	StandardNonFungible Standard = 0
	StandardManaged     Standard = 1
	StandardSoulbound   Standard = 2
	StandardProxied     Standard = 3
)

// InstructionTransfer Nifty 指令枚举中 Transfer 的序号
const InstructionTransfer uint8 = 7

// Asset 是 Nifty 资产固定头部的解码结果（拷贝，不引用原始数据）
type Asset struct {
	Discriminator uint8
	State         uint8
	Standard      Standard
	Mutable       bool
	Owner         types.Pubkey
	Group         *types.Pubkey
	Authority     types.Pubkey
	Delegate      *types.Pubkey
	DelegateRoles uint8
	Name          string
}

// ParseAsset 解码 Nifty 资产固定头部
func ParseAsset(data []byte) (*Asset, error) {
	if len(data) < AssetLen {
		return nil, fmt.Errorf("nifty asset data too short: got %d, want >= %d", len(data), AssetLen)
	}
	if data[offsetDiscriminator] != DiscriminatorAsset {
		return nil, fmt.Errorf("unexpected nifty discriminator: %d", data[offsetDiscriminator])
	}

	a := &Asset{
		Discriminator: data[offsetDiscriminator],
		State:         data[offsetState],
		Standard:      Standard(data[offsetStandard]),
		Mutable:       data[offsetMutable] != 0,
		Owner:         readPubkey(data, offsetOwner),
		Authority:     readPubkey(data, offsetAuthority),
		DelegateRoles: data[offsetDelegate+32],
		Name:          readName(data[offsetName:AssetLen]),
	}
	if g := readPubkey(data, offsetGroup); g != (types.Pubkey{}) {
		a.Group = &g
	}
	if d := readPubkey(data, offsetDelegate); d != (types.Pubkey{}) {
		a.Delegate = &d
	}
	return a, nil
}

// EncodeAsset 按固定头部布局序列化（测试与回放数据构造使用）
func EncodeAsset(a *Asset) []byte {
	data := make([]byte, AssetLen)
	data[offsetDiscriminator] = DiscriminatorAsset
	data[offsetState] = a.State
	data[offsetStandard] = byte(a.Standard)
	if a.Mutable {
		data[offsetMutable] = 1
	}
	copy(data[offsetOwner:], a.Owner[:])
	if a.Group != nil {
		copy(data[offsetGroup:], a.Group[:])
	}
	copy(data[offsetAuthority:], a.Authority[:])
	if a.Delegate != nil {
		copy(data[offsetDelegate:], a.Delegate[:])
	}
	data[offsetDelegate+32] = a.DelegateRoles
	copy(data[offsetName:AssetLen], a.Name)
	return data
}

// IsTransferableLayout 校验数据长度与 standard 字段，满足 NonFungible 转账前提
func IsTransferableLayout(data []byte) bool {
	return len(data) >= AssetLen && data[StandardOffset] == byte(StandardNonFungible)
}

// TransferInstruction 构造 Nifty Transfer 指令
//
// #0 - asset（可写）
// #1 - signer（签名者，当前持有人或 delegate）
// #2 - recipient
// #3 - group（可选，缺省时以程序 id 占位）
func TransferInstruction(asset, signer, recipient types.Pubkey, group *types.Pubkey) sdktypes.Instruction {
	groupMeta := sdktypes.AccountMeta{PubKey: consts.NiftyAssetProgram}
	if group != nil {
		groupMeta = sdktypes.AccountMeta{PubKey: *group}
	}
	return sdktypes.Instruction{
		ProgramID: consts.NiftyAssetProgram,
		Accounts: []sdktypes.AccountMeta{
			{PubKey: asset, IsWritable: true},
			{PubKey: signer, IsSigner: true},
			{PubKey: recipient},
			groupMeta,
		},
		Data: []byte{InstructionTransfer},
	}
}

func readPubkey(data []byte, offset int) types.Pubkey {
	var p types.Pubkey
	copy(p[:], data[offset:offset+32])
	return p
}

func readName(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}
