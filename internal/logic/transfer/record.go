package transfer

import (
	"nico-interface-sol/internal/consts"
	"nico-interface-sol/internal/logic/accounts"
	"nico-interface-sol/internal/logic/domain"
	"nico-interface-sol/internal/logic/standard/nifty"
)

// transferRecord Nifty 资产转账：asset 头部须满足 NonFungible 布局
func (d *Dispatcher) transferRecord(c *call) error {
	pool := c.req.Pool

	program, err := accounts.Require(pool, consts.NiftyAssetProgram, "nifty_asset")
	if err != nil {
		return err
	}
	if err := assertProgram("incoming_asset_program", program, consts.NiftyAssetProgram); err != nil {
		return err
	}
	asset, err := accounts.Require(pool, c.handle.Address(), "asset")
	if err != nil {
		return err
	}

	err = checkAssetData(asset, func(data []byte) error {
		if !nifty.IsTransferableLayout(data) {
			return domain.NewAccountError(domain.ErrInvalidAssetLayout, "asset", asset.Key)
		}
		return nil
	})
	if err != nil {
		return err
	}

	signer := c.req.SigningAuthority()
	ix := nifty.TransferInstruction(asset.Key, signer.Key, c.req.Recipient.Key, c.groupKey())

	infos := []*domain.AccountInfo{program, asset, signer, c.req.Recipient}
	if c.group != nil {
		infos = append(infos, c.group)
	}
	return d.invoker.Invoke(ix, infos, c.req.SignerSeeds)
}
