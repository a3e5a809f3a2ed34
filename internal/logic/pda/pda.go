package pda

import (
	"fmt"

	"nico-interface-sol/internal/consts"
	"nico-interface-sol/internal/types"

	"github.com/blocto/solana-go-sdk/common"
)

// Token Metadata 程序的 PDA seed 常量
// 参考: https://github.com/metaplex-foundation/mpl-token-metadata/blob/main/programs/token-metadata/program/src/pda.rs
var (
	seedMetadata    = []byte("metadata")
	seedEdition     = []byte("edition")
	seedTokenRecord = []byte("token_record")
)

// find 推导 canonical bump 对应的 PDA。
// 对合法输入 FindProgramAddress 只有在 256 个 bump 全部落在曲线上时才会失败，视为不可能事件。
func find(seeds [][]byte, program types.Pubkey, name string) (types.Pubkey, uint8) {
	addr, bump, err := common.FindProgramAddress(seeds, program)
	if err != nil {
		panic(fmt.Sprintf("failed to derive %s PDA: %v", name, err))
	}
	return addr, bump
}

// MetadataAddress = PDA(["metadata", token_metadata_program, mint], token_metadata_program)
func MetadataAddress(mint types.Pubkey) (types.Pubkey, uint8) {
	return find([][]byte{
		seedMetadata,
		consts.TokenMetaProgram.Bytes(),
		mint.Bytes(),
	}, consts.TokenMetaProgram, "metadata")
}

// EditionAddress = PDA(["metadata", token_metadata_program, mint, "edition"], token_metadata_program)
func EditionAddress(mint types.Pubkey) (types.Pubkey, uint8) {
	return find([][]byte{
		seedMetadata,
		consts.TokenMetaProgram.Bytes(),
		mint.Bytes(),
		seedEdition,
	}, consts.TokenMetaProgram, "edition")
}

// TokenRecordAddress = PDA(["metadata", token_metadata_program, mint, "token_record", token_account], token_metadata_program)
func TokenRecordAddress(mint, tokenAccount types.Pubkey) (types.Pubkey, uint8) {
	return find([][]byte{
		seedMetadata,
		consts.TokenMetaProgram.Bytes(),
		mint.Bytes(),
		seedTokenRecord,
		tokenAccount.Bytes(),
	}, consts.TokenMetaProgram, "token_record")
}

// AssociatedTokenAddress = PDA([owner, token_program, mint], associated_token_program)
// tokenProgram 为 mint 所属的 SPL Token 或 Token-2022 程序
func AssociatedTokenAddress(owner, mint, tokenProgram types.Pubkey) (types.Pubkey, uint8) {
	return find([][]byte{
		owner.Bytes(),
		tokenProgram.Bytes(),
		mint.Bytes(),
	}, consts.AssociatedTokenProgram, "associated_token")
}
