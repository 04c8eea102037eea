package layout

// ResolveLineBounds 计算行带 [yTop, yBottom) 在宽度为 width 的容器中可用的水平范围。
//
// 没有障碍物与行带相交时返回 [0, width]。否则对每个相交的障碍物构造左右两个候选区间，
// 选出最宽的一个。宽度相同时保留最先出现的候选（先左后右，按障碍物输入顺序）。
func ResolveLineBounds(yTop, yBottom, width float64, obstacles []Box) Line {
	areas := CandidateAreas(yTop, yBottom, width, obstacles)
	if len(areas) == 0 {
		return Line{Left: 0, Right: width}
	}
	best := areas[0]
	for _, a := range areas[1:] {
		if a.Width > best.Width {
			best = a
		}
	}
	return Line{Left: best.X1, Right: best.X2}
}

// CandidateAreas 返回行带内所有候选区间，顺序即 ResolveLineBounds 的比较顺序。
func CandidateAreas(yTop, yBottom, width float64, obstacles []Box) []Area {
	hits := make([]Box, 0, len(obstacles))
	for _, b := range obstacles {
		if b.intersects(yTop, yBottom) {
			hits = append(hits, b)
		}
	}
	if len(hits) == 0 {
		return nil
	}

	areas := make([]Area, 0, 2*len(hits))
	for i, b := range hits {
		// 左侧：左边缘在 b 左边的其他障碍物中，右边缘最大者
		left := 0.0
		found := false
		for j, o := range hits {
			if j == i || o.Left >= b.Left {
				continue
			}
			if !found || o.Right > left {
				left = o.Right
				found = true
			}
		}
		areas = append(areas, newArea(left, b.Left, width))

		// 右侧：右边缘在 b 右边的其他障碍物中，左边缘最小者
		right := width
		found = false
		for j, o := range hits {
			if j == i || o.Right <= b.Right {
				continue
			}
			if !found || o.Left < right {
				right = o.Left
				found = true
			}
		}
		areas = append(areas, newArea(b.Right, right, width))
	}
	return areas
}

func newArea(x1, x2, width float64) Area {
	x1 = clampFloat(x1, 0, width)
	x2 = clampFloat(x2, 0, width)
	w := x2 - x1
	if w < 0 {
		w = 0
	}
	return Area{X1: x1, X2: x2, Width: w}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
