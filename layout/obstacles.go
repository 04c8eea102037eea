package layout

// CollectObstacles 将宿主的子元素几何信息转换为本次排版的障碍物列表，不可见的元素被忽略。
func CollectObstacles(geometry []Geometry) []Box {
	boxes := make([]Box, 0, len(geometry))
	for _, g := range geometry {
		if !g.Visible {
			continue
		}
		boxes = append(boxes, Box{Top: g.Top, Left: g.Left, Bottom: g.Bottom, Right: g.Right})
	}
	return boxes
}

// lowestBottom 返回障碍物中最低的底边，没有障碍物时为 0。
func lowestBottom(boxes []Box) float64 {
	bottom := 0.0
	for _, b := range boxes {
		if b.Bottom > bottom {
			bottom = b.Bottom
		}
	}
	return bottom
}
