package consts

const (
	// PNFTTransferAmount pNFT 转账数量固定为 1
	PNFTTransferAmount uint64 = 1
)
