package transfer

import (
	"nico-interface-sol/internal/consts"
	"nico-interface-sol/internal/logic/accounts"
	"nico-interface-sol/internal/logic/domain"
	"nico-interface-sol/internal/logic/standard/mplcore"
)

// transferCompact Core 资产转账。
// 程序账户按句柄的 owningComponent 查找，再校验其确为 Core 程序；authority 仅在请求显式给出时传入。
func (d *Dispatcher) transferCompact(c *call) error {
	pool := c.req.Pool

	program, err := accounts.Require(pool, c.handle.OwningComponent(), "mpl_core_program")
	if err != nil {
		return err
	}
	system, err := accounts.Require(pool, consts.SystemProgram, "system_program")
	if err != nil {
		return err
	}
	if err := assertProgram("incoming_asset_program", program, consts.MplCoreProgram); err != nil {
		return err
	}
	if err := assertProgram("system_program", system, consts.SystemProgram); err != nil {
		return err
	}

	asset, err := accounts.Require(pool, c.handle.Address(), "asset")
	if err != nil {
		return err
	}
	if err := checkAssetData(asset, nil); err != nil {
		return err
	}

	params := mplcore.TransferV1Accounts{
		Asset:      asset.Key,
		Collection: c.groupKey(),
		Payer:      c.req.Payer.Key,
		NewOwner:   c.req.Recipient.Key,
	}
	infos := []*domain.AccountInfo{program, system, asset, c.req.Payer, c.req.Recipient}
	// 与其他路径不同，这里不回退到 payer：authority 缺省时由 Core 程序自行以 payer 作为 authority
	if c.req.Authority != nil {
		key := c.req.Authority.Key
		params.Authority = &key
		infos = append(infos, c.req.Authority)
	}
	if c.group != nil {
		infos = append(infos, c.group)
	}
	return d.invoker.Invoke(mplcore.TransferV1Instruction(params), infos, c.req.SignerSeeds)
}
