package consts

// 资产标准编号，用于日志与下游记录
const (
	StandardNifty      = iota + 1 // 1
	StandardMplCore               // 2
	StandardLegacyMint            // 3
)

var StandardNames = []string{
	"Unknown",    // 0 (保留)
	"Nifty",      // 1
	"MplCore",    // 2
	"LegacyMint", // 3
}

func StandardName(standard int) string {
	if standard >= 1 && standard < len(StandardNames) {
		return StandardNames[standard]
	}
	return StandardNames[0] // Unknown
}
