package tokenmeta

import (
	"nico-interface-sol/internal/consts"
	"nico-interface-sol/internal/types"

	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"
)

// InstructionTransfer MetadataInstruction 中 Transfer 的序号
const InstructionTransfer uint8 = 49

// transferV1Data = discriminator + TransferArgs::V1{amount, authorization_data}
// authorization_data 始终为 None，用空指针表达
type transferV1Data struct {
	Discriminator     uint8
	ArgsVersion       uint8
	Amount            uint64
	AuthorizationData *[]byte
}

// TransferV1Accounts Token Metadata Transfer 指令账户，可选账户为 nil 时以程序 id 占位
type TransferV1Accounts struct {
	Token                     types.Pubkey
	TokenOwner                types.Pubkey
	DestinationToken          types.Pubkey
	DestinationOwner          types.Pubkey
	Mint                      types.Pubkey
	Metadata                  types.Pubkey
	Edition                   *types.Pubkey
	OwnerTokenRecord          *types.Pubkey
	DestinationTokenRecord    *types.Pubkey
	Authority                 types.Pubkey
	Payer                     types.Pubkey
	SplTokenProgram           types.Pubkey
	AuthorizationRulesProgram *types.Pubkey
	AuthorizationRules        *types.Pubkey
}

// TransferV1Instruction 构造 Token Metadata Transfer(V1) 指令
//
// #0  token（可写）
// #1  token_owner
// #2  destination_token（可写）
// #3  destination_owner
// #4  mint
// #5  metadata（可写）
// #6  edition（可选）
// #7  owner_token_record（可选，可写）
// #8  destination_token_record（可选，可写）
// #9  authority（签名）
// #10 payer（可写，签名）
// #11 system_program
// #12 sysvar_instructions
// #13 spl_token_program
// #14 spl_ata_program
// #15 authorization_rules_program（可选）
// #16 authorization_rules（可选）
func TransferV1Instruction(a TransferV1Accounts, amount uint64) (sdktypes.Instruction, error) {
	data, err := borsh.Serialize(transferV1Data{
		Discriminator: InstructionTransfer,
		Amount:        amount,
	})
	if err != nil {
		return sdktypes.Instruction{}, err
	}

	optional := func(key *types.Pubkey, writable bool) sdktypes.AccountMeta {
		if key == nil {
			return sdktypes.AccountMeta{PubKey: consts.TokenMetaProgram}
		}
		return sdktypes.AccountMeta{PubKey: *key, IsWritable: writable}
	}

	return sdktypes.Instruction{
		ProgramID: consts.TokenMetaProgram,
		Accounts: []sdktypes.AccountMeta{
			{PubKey: a.Token, IsWritable: true},
			{PubKey: a.TokenOwner},
			{PubKey: a.DestinationToken, IsWritable: true},
			{PubKey: a.DestinationOwner},
			{PubKey: a.Mint},
			{PubKey: a.Metadata, IsWritable: true},
			optional(a.Edition, false),
			optional(a.OwnerTokenRecord, true),
			optional(a.DestinationTokenRecord, true),
			{PubKey: a.Authority, IsSigner: true},
			{PubKey: a.Payer, IsSigner: true, IsWritable: true},
			{PubKey: consts.SystemProgram},
			{PubKey: consts.SysvarInstructions},
			{PubKey: a.SplTokenProgram},
			{PubKey: consts.AssociatedTokenProgram},
			optional(a.AuthorizationRulesProgram, false),
			optional(a.AuthorizationRules, false),
		},
		Data: data,
	}, nil
}
