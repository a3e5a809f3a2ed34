package transfer

import (
	"fmt"

	"nico-interface-sol/internal/consts"
	"nico-interface-sol/internal/logic/accounts"
	"nico-interface-sol/internal/logic/domain"
	"nico-interface-sol/internal/pkg/logger"
	"nico-interface-sol/internal/types"
)

// routeKind 为转账路径，由资产标准与识别时捕获的上下文共同决定
type routeKind uint8

const (
	routeRecord routeKind = iota + 1
	routeCompact
	routeProgrammable
)

// route 解析出的转账路径；Programmable 路径附带当前持有人与持有账户
type route struct {
	kind         routeKind
	owner        types.Pubkey
	tokenAccount types.Pubkey
}

// selectRoute 只依赖句柄本身，不访问账户池
func selectRoute(handle *domain.AssetHandle) (route, error) {
	switch v := handle.Variant().(type) {
	case domain.RecordAsset:
		return route{kind: routeRecord}, nil
	case domain.CompactAsset:
		return route{kind: routeCompact}, nil
	case domain.LegacyMint:
		switch v.MetadataKind {
		case domain.MetadataProgrammable:
			if v.CurrentOwner == nil {
				return route{}, fmt.Errorf("%w: current owner not captured for %s", domain.ErrMissingTransferContext, handle.Address().ToBase58())
			}
			if v.CurrentTokenAccount == nil {
				return route{}, fmt.Errorf("%w: current token account not captured for %s", domain.ErrMissingTransferContext, handle.Address().ToBase58())
			}
			return route{kind: routeProgrammable, owner: *v.CurrentOwner, tokenAccount: *v.CurrentTokenAccount}, nil
		case domain.MetadataNonProgrammable, domain.MetadataExtensionBased, domain.MetadataUnknown:
			return route{}, fmt.Errorf("%w: legacy mint with %s metadata", domain.ErrUnsupportedTransferPath, v.MetadataKind)
		default:
			return route{}, fmt.Errorf("%w: legacy mint with metadata kind %d", domain.ErrUnsupportedTransferPath, v.MetadataKind)
		}
	default:
		return route{}, fmt.Errorf("%w: variant %T", domain.ErrUnsupportedTransferPath, v)
	}
}

// call 为一次转账在各适配器之间共享的输入
type call struct {
	handle *domain.AssetHandle
	req    *domain.TransferRequest
	group  *domain.AccountInfo // 句柄带 group 时已从池中解析
}

func (c *call) groupKey() *types.Pubkey {
	if c.group == nil {
		return nil
	}
	key := c.group.Key
	return &key
}

// Dispatcher 按资产标准把转账分派到唯一的适配器
type Dispatcher struct {
	invoker Invoker
}

func NewDispatcher(invoker Invoker) *Dispatcher {
	return &Dispatcher{invoker: invoker}
}

// Transfer 选择路径 -> 解析 group -> 执行唯一的适配器。任何一步失败都直接返回，不做重试。
func (d *Dispatcher) Transfer(handle *domain.AssetHandle, req *domain.TransferRequest) error {
	if err := d.transfer(handle, req); err != nil {
		if handle != nil {
			logger.Debugf("[Dispatcher] transfer failed, asset=%s, standard=%s, err=%v",
				handle.Address().ToBase58(), consts.StandardName(handle.Variant().Standard()), err)
		}
		return err
	}
	return nil
}

func (d *Dispatcher) transfer(handle *domain.AssetHandle, req *domain.TransferRequest) error {
	if handle == nil {
		return fmt.Errorf("%w: asset handle is nil", domain.ErrMissingAccount)
	}
	if req == nil || req.Payer == nil {
		return fmt.Errorf("%w: payer", domain.ErrMissingAccount)
	}
	if req.Recipient == nil {
		return fmt.Errorf("%w: recipient", domain.ErrMissingAccount)
	}

	r, err := selectRoute(handle)
	if err != nil {
		return err
	}

	c := &call{handle: handle, req: req}
	if groupAddr, ok := handle.Group(); ok {
		group, err := accounts.Require(req.Pool, groupAddr, "group")
		if err != nil {
			return err
		}
		c.group = group
	}

	switch r.kind {
	case routeRecord:
		return d.transferRecord(c)
	case routeCompact:
		return d.transferCompact(c)
	case routeProgrammable:
		return d.transferProgrammable(c, r.owner, r.tokenAccount)
	default:
		return fmt.Errorf("%w: route %d", domain.ErrUnsupportedTransferPath, r.kind)
	}
}

// assertProgram 校验池中解析到的程序账户即期望的程序
func assertProgram(label string, info *domain.AccountInfo, expected types.Pubkey) error {
	if info.Key != expected {
		return domain.ComponentMismatch(label, info.Key)
	}
	return nil
}

// checkAssetData 借用资产数据做只读校验，外部调用前释放借用
func checkAssetData(asset *domain.AccountInfo, check func(data []byte) error) error {
	ref := asset.BorrowData()
	defer ref.Release()
	if check == nil {
		return nil
	}
	return check(ref.Bytes())
}
