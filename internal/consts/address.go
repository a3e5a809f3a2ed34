package consts

import (
	"nico-interface-sol/internal/types"
)

// Base58 地址常量（可读性高，适合配置与日志使用）
const (
	// 系统与 SPL 程序
	SystemProgramStr          = "11111111111111111111111111111111"
	TokenProgramStr           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	TokenProgram2022Str       = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	AssociatedTokenProgramStr = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	SysvarInstructionsStr     = "Sysvar1nstructions1111111111111111111111111"

	// 资产标准程序
	TokenMetaProgramIdStr = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
	MplCoreProgramStr     = "CoREENxT6tW1HoK8ypY1SxRMZTcVPm7R94rH4PZNhX7d"
	NiftyAssetProgramStr  = "AssetGtQBTSgm5s91d1RAQod5JmaZiJDxqsgtqrZud73"

	// pNFT 规则引擎程序，转账时固定作为 authorization_rules_program 传入
	AuthRulesProgramStr = "AdH2Utn6Fus15ZhtenW4hZBQnvtLgM1YCW2MfVp7pYS5"
)

var (
	// Programs
	SystemProgram          = types.MustPubkeyFromBase58(SystemProgramStr)
	TokenProgram           = types.MustPubkeyFromBase58(TokenProgramStr)
	TokenProgram2022       = types.MustPubkeyFromBase58(TokenProgram2022Str)
	AssociatedTokenProgram = types.MustPubkeyFromBase58(AssociatedTokenProgramStr)
	SysvarInstructions     = types.MustPubkeyFromBase58(SysvarInstructionsStr)

	// 资产标准
	TokenMetaProgram  = types.MustPubkeyFromBase58(TokenMetaProgramIdStr)
	MplCoreProgram    = types.MustPubkeyFromBase58(MplCoreProgramStr)
	NiftyAssetProgram = types.MustPubkeyFromBase58(NiftyAssetProgramStr)

	// 规则引擎
	AuthRulesProgram = types.MustPubkeyFromBase58(AuthRulesProgramStr)
)

// IsSPLTokenProgram 判断是否为 SPL Token / Token-2022 程序
func IsSPLTokenProgram(program types.Pubkey) bool {
	return program == TokenProgram || program == TokenProgram2022
}
