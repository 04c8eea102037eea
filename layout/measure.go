package layout

import "github.com/rivo/uniseg"

// FitByMeasure 用二分查找求出 text 开头能放进 maxWidth 的最多字符数。
// 要求 measure 对前缀单调不减，各渲染后端的 Fit 都基于它实现。
func FitByMeasure(text string, maxWidth float64, measure MeasureFunc) int {
	runes := []rune(text)
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if measure(string(runes[:mid])) <= maxWidth {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// CellMeasurer 是等宽字符网格上的度量实现：每个字形簇占 uniseg 给出的列数，每列 CellWidth。
// 东亚宽字符占两列，组合字符不会被拆开。
type CellMeasurer struct {
	CellWidth float64
}

var _ Measurer = CellMeasurer{}

func (m CellMeasurer) cell() float64 {
	if m.CellWidth <= 0 {
		return 1
	}
	return m.CellWidth
}

// Measure 返回 text 占用的宽度。
func (m CellMeasurer) Measure(text string) float64 {
	return float64(uniseg.StringWidth(text)) * m.cell()
}

// Fit 按字形簇累加宽度，返回放得下的 rune 个数。
func (m CellMeasurer) Fit(text string, maxWidth float64) int {
	count := 0
	used := 0.0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		w := float64(g.Width()) * m.cell()
		if used+w > maxWidth {
			break
		}
		used += w
		count += len(g.Runes())
	}
	return count
}
