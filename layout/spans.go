package layout

import "sort"

// ExtractRuns 将全文 text 中 [lineStart, lineEnd) 区间拆成按起始偏移升序、互不重叠且无空隙的样式片段，
// 并从 baseX 开始依次分配 X 坐标，返回片段与总宽度。
//
// 标注先裁剪到行区间内，越界的偏移被夹紧，空区间被丢弃。多个标注覆盖同一字符时按优先级取舍：
// link > emphasis > plain，同优先级时输入顺序靠前者保留该字符。被更高优先级切开的标注会产生多个片段。
// 没有标注覆盖的连续字符生成默认样式片段。
func ExtractRuns(text []rune, lineStart, lineEnd int, annotations []Annotation, baseX float64, measure MeasureFunc) ([]Run, float64) {
	lineStart = clampInt(lineStart, 0, len(text))
	lineEnd = clampInt(lineEnd, lineStart, len(text))
	size := lineEnd - lineStart
	if size == 0 {
		return nil, 0
	}

	// owners[i] 记录第 lineStart+i 个字符归属的标注下标，-1 表示未覆盖
	owners := make([]int, size)
	for i := range owners {
		owners[i] = -1
	}
	for idx, a := range annotations {
		s, e, ok := clip(a, lineStart, lineEnd)
		if !ok {
			continue
		}
		for k := s; k < e; k++ {
			cur := owners[k-lineStart]
			if cur == -1 || a.Style.Kind.priority() > annotations[cur].Style.Kind.priority() {
				owners[k-lineStart] = idx
			}
		}
	}

	runs := make([]Run, 0, len(annotations)+1)
	for idx, a := range annotations {
		s, e, ok := clip(a, lineStart, lineEnd)
		if !ok {
			continue
		}
		runs = appendOwned(runs, text, owners, lineStart, s, e, idx, a.Style)
	}
	runs = appendOwned(runs, text, owners, lineStart, lineStart, lineEnd, -1, PlainStyle())

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Start < runs[j].Start })

	x := baseX
	for i := range runs {
		runs[i].X = x
		runs[i].Width = measure(runs[i].Text)
		x += runs[i].Width
	}
	return runs, x - baseX
}

// appendOwned 为 [s, e) 内归属 owner 的每段最大连续区间追加一个片段。
func appendOwned(runs []Run, text []rune, owners []int, lineStart, s, e, owner int, style Style) []Run {
	start := -1
	for k := s; k <= e; k++ {
		mine := k < e && owners[k-lineStart] == owner
		switch {
		case mine && start < 0:
			start = k
		case !mine && start >= 0:
			runs = append(runs, Run{Text: string(text[start:k]), Start: start, End: k, Style: style})
			start = -1
		}
	}
	return runs
}

// clip 将标注裁剪到 [lineStart, lineEnd)，负起点夹到 0，越界终点夹到行尾。
func clip(a Annotation, lineStart, lineEnd int) (int, int, bool) {
	s := a.Start
	if s < 0 {
		s = 0
	}
	if s < lineStart {
		s = lineStart
	}
	e := a.End
	if e > lineEnd {
		e = lineEnd
	}
	return s, e, s < e
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
