package transfer

import (
	"fmt"

	"nico-interface-sol/internal/consts"
	"nico-interface-sol/internal/logic/accounts"
	"nico-interface-sol/internal/logic/domain"
	"nico-interface-sol/internal/logic/pda"
	"nico-interface-sol/internal/logic/standard/tokenmeta"
	"nico-interface-sol/internal/types"
)

// programmableAccounts 为 pNFT 转账解析出的全部辅助账户
type programmableAccounts struct {
	system           *domain.AccountInfo
	tokenMeta        *domain.AccountInfo
	tokenProgram     *domain.AccountInfo
	ataProgram       *domain.AccountInfo
	authRulesProgram *domain.AccountInfo
	authRules        *domain.AccountInfo // 可选，metadata 未配置规则集时为 nil
	metadata         *domain.AccountInfo
	edition          *domain.AccountInfo
	sysvar           *domain.AccountInfo
	sourceToken      *domain.AccountInfo
	currentOwner     *domain.AccountInfo
	targetToken      *domain.AccountInfo
	sourceRecord     *domain.AccountInfo
	targetRecord     *domain.AccountInfo
}

// resolveProgrammable 按固定顺序从账户池中解析 pNFT 转账所需账户。
// 目标持有账户固定为接收人的 ATA；源持有账户不一定是 ATA，由识别时的上下文给出。
func resolveProgrammable(c *call, owner, tokenAccount types.Pubkey) (*programmableAccounts, error) {
	pool := c.req.Pool
	mint := c.handle.Address()
	tokenProgramID := c.handle.OwningComponent()

	var (
		p   programmableAccounts
		err error
	)
	if p.system, err = accounts.Require(pool, consts.SystemProgram, "system_program"); err != nil {
		return nil, err
	}
	if p.tokenMeta, err = accounts.Require(pool, consts.TokenMetaProgram, "token_metadata_program"); err != nil {
		return nil, err
	}
	if p.tokenProgram, err = accounts.Require(pool, tokenProgramID, "token_program"); err != nil {
		return nil, err
	}
	if p.ataProgram, err = accounts.Require(pool, consts.AssociatedTokenProgram, "associated_token_program"); err != nil {
		return nil, err
	}
	if p.authRulesProgram, err = accounts.Require(pool, consts.AuthRulesProgram, "auth_rules_program"); err != nil {
		return nil, err
	}

	metadataAddr, _ := pda.MetadataAddress(mint)
	if p.metadata, err = accounts.Require(pool, metadataAddr, "metadata"); err != nil {
		return nil, err
	}
	ruleSet, err := readRuleSet(p.metadata)
	if err != nil {
		return nil, err
	}
	if ruleSet != nil {
		if p.authRules, err = accounts.Require(pool, *ruleSet, "auth_rule"); err != nil {
			return nil, err
		}
	}

	if p.sysvar, err = accounts.Require(pool, consts.SysvarInstructions, "sysvar_instructions"); err != nil {
		return nil, err
	}

	targetTokenAddr, _ := pda.AssociatedTokenAddress(c.req.Recipient.Key, mint, tokenProgramID)
	if p.targetToken, err = accounts.Require(pool, targetTokenAddr, "target_ata"); err != nil {
		return nil, err
	}
	sourceRecordAddr, _ := pda.TokenRecordAddress(mint, tokenAccount)
	if p.sourceRecord, err = accounts.Require(pool, sourceRecordAddr, "source_token_record"); err != nil {
		return nil, err
	}
	targetRecordAddr, _ := pda.TokenRecordAddress(mint, targetTokenAddr)
	if p.targetRecord, err = accounts.Require(pool, targetRecordAddr, "target_token_record"); err != nil {
		return nil, err
	}
	editionAddr, _ := pda.EditionAddress(mint)
	if p.edition, err = accounts.Require(pool, editionAddr, "master_edition"); err != nil {
		return nil, err
	}

	if p.sourceToken, err = accounts.Require(pool, tokenAccount, "source_token_account"); err != nil {
		return nil, err
	}
	if p.currentOwner, err = accounts.Require(pool, owner, "current_owner"); err != nil {
		return nil, err
	}
	return &p, nil
}

// readRuleSet 重新解析 metadata，读取 programmable config 中的规则集
func readRuleSet(metadata *domain.AccountInfo) (*types.Pubkey, error) {
	ref := metadata.BorrowData()
	defer ref.Release()

	md, err := tokenmeta.DecodeMetadata(ref.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: metadata %s: %v", domain.ErrDeserialization, metadata.Key.ToBase58(), err)
	}
	return md.RuleSet(), nil
}

// transferProgrammable pNFT 转账：数量固定为 1，不携带 authorization data
func (d *Dispatcher) transferProgrammable(c *call, owner, tokenAccount types.Pubkey) error {
	p, err := resolveProgrammable(c, owner, tokenAccount)
	if err != nil {
		return err
	}
	if err := assertProgram("incoming_asset_program", p.tokenMeta, consts.TokenMetaProgram); err != nil {
		return err
	}
	if err := assertProgram("system_program", p.system, consts.SystemProgram); err != nil {
		return err
	}
	if !consts.IsSPLTokenProgram(p.tokenProgram.Key) {
		return domain.ComponentMismatch("token_program", p.tokenProgram.Key)
	}

	asset, err := accounts.Require(c.req.Pool, c.handle.Address(), "asset")
	if err != nil {
		return err
	}
	if err := checkAssetData(asset, nil); err != nil {
		return err
	}

	authority := c.req.SigningAuthority()
	params := tokenmeta.TransferV1Accounts{
		Token:                     p.sourceToken.Key,
		TokenOwner:                p.currentOwner.Key,
		DestinationToken:          p.targetToken.Key,
		DestinationOwner:          c.req.Recipient.Key,
		Mint:                      asset.Key,
		Metadata:                  p.metadata.Key,
		Edition:                   keyOf(p.edition),
		OwnerTokenRecord:          keyOf(p.sourceRecord),
		DestinationTokenRecord:    keyOf(p.targetRecord),
		Authority:                 authority.Key,
		Payer:                     c.req.Payer.Key,
		SplTokenProgram:           p.tokenProgram.Key,
		AuthorizationRulesProgram: keyOf(p.authRulesProgram),
		AuthorizationRules:        keyOf(p.authRules),
	}
	ix, err := tokenmeta.TransferV1Instruction(params, consts.PNFTTransferAmount)
	if err != nil {
		return fmt.Errorf("build token metadata transfer: %w", err)
	}

	infos := []*domain.AccountInfo{
		p.tokenMeta, p.sourceToken, p.currentOwner, p.targetToken, c.req.Recipient, asset,
		p.metadata, p.edition, p.sourceRecord, p.targetRecord, authority, c.req.Payer,
		p.system, p.sysvar, p.tokenProgram, p.ataProgram, p.authRulesProgram,
	}
	if p.authRules != nil {
		infos = append(infos, p.authRules)
	}
	return d.invoker.Invoke(ix, infos, c.req.SignerSeeds)
}

func keyOf(info *domain.AccountInfo) *types.Pubkey {
	if info == nil {
		return nil
	}
	key := info.Key
	return &key
}
