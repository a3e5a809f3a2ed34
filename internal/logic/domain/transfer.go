package domain

// TransferRequest 为单次转账的临时输入，生命周期仅限一次调用
type TransferRequest struct {
	Payer     *AccountInfo // 付款人
	Recipient *AccountInfo // 接收人钱包
	Authority *AccountInfo // 可选签名权限，为空时使用 Payer

	// SignerSeeds 为 PDA 签名所需的 seed 路径（每个签名者一组 seeds）
	SignerSeeds [][][]byte

	// Pool 为调用方提供的辅助账户池，需覆盖所选标准转账所需的全部账户
	Pool []*AccountInfo
}

// SigningAuthority 返回实际签名的权限账户：显式 authority 优先，否则回退到 payer
func (r *TransferRequest) SigningAuthority() *AccountInfo {
	if r.Authority != nil {
		return r.Authority
	}
	return r.Payer
}
