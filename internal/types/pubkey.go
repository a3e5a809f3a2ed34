package types

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/mr-tron/base58"
)

// Pubkey 直接复用 SDK 的 32 字节公钥类型，便于与 PDA 推导、指令构造互通
type Pubkey = common.PublicKey

// TryPubkeyFromBase58 解析 base58 字符串为 Pubkey，失败时返回 error（用于不信任输入路径）
func TryPubkeyFromBase58(s string) (Pubkey, error) {
	data, err := base58.Decode(s)
	if err != nil {
		return Pubkey{}, fmt.Errorf("failed to decode base58 pubkey %q: %w", s, err)
	}
	if len(data) != common.PublicKeyLength {
		return Pubkey{}, fmt.Errorf("invalid pubkey length: got %d, want 32, input=%q", len(data), s)
	}
	return common.PublicKeyFromBytes(data), nil
}

// MustPubkeyFromBase58 仅用于常量初始化，解析失败直接 panic
func MustPubkeyFromBase58(s string) Pubkey {
	pk, err := TryPubkeyFromBase58(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// PubkeysFromBase58 批量解析，遇到第一个非法地址即返回错误
func PubkeysFromBase58(strs []string) ([]Pubkey, error) {
	result := make([]Pubkey, 0, len(strs))
	for _, s := range strs {
		pk, err := TryPubkeyFromBase58(s)
		if err != nil {
			return nil, err
		}
		result = append(result, pk)
	}
	return result, nil
}

// EncodeBase58 将任意字节编码为 base58（指令数据展示等场景）
func EncodeBase58(b []byte) string {
	return base58.Encode(b)
}
