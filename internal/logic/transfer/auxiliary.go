package transfer

import (
	"nico-interface-sol/internal/consts"
	"nico-interface-sol/internal/logic/domain"
	"nico-interface-sol/internal/logic/pda"
	"nico-interface-sol/internal/types"
)

// AuxiliaryAddresses 列出转账时会在账户池中查找的全部地址（不含 payer / recipient / authority）。
// ruleSet 为 metadata 中配置的规则集，仅 pNFT 路径使用。
// 离线构造账户池时使用，路径选择失败时返回与 Transfer 相同的错误。
func AuxiliaryAddresses(handle *domain.AssetHandle, recipient types.Pubkey, ruleSet *types.Pubkey) ([]types.Pubkey, error) {
	r, err := selectRoute(handle)
	if err != nil {
		return nil, err
	}

	var out []types.Pubkey
	if group, ok := handle.Group(); ok {
		out = append(out, group)
	}

	mint := handle.Address()
	switch r.kind {
	case routeRecord:
		out = append(out, consts.NiftyAssetProgram, mint)
	case routeCompact:
		out = append(out, handle.OwningComponent(), consts.SystemProgram, mint)
	case routeProgrammable:
		tokenProgram := handle.OwningComponent()
		metadata, _ := pda.MetadataAddress(mint)
		edition, _ := pda.EditionAddress(mint)
		targetToken, _ := pda.AssociatedTokenAddress(recipient, mint, tokenProgram)
		sourceRecord, _ := pda.TokenRecordAddress(mint, r.tokenAccount)
		targetRecord, _ := pda.TokenRecordAddress(mint, targetToken)

		out = append(out,
			consts.SystemProgram,
			consts.TokenMetaProgram,
			tokenProgram,
			consts.AssociatedTokenProgram,
			consts.AuthRulesProgram,
			metadata,
		)
		if ruleSet != nil {
			out = append(out, *ruleSet)
		}
		out = append(out,
			consts.SysvarInstructions,
			targetToken,
			sourceRecord,
			targetRecord,
			edition,
			r.tokenAccount,
			r.owner,
			mint,
		)
	}
	return out, nil
}
