package layout

import (
	"fmt"
	"math"
)

// Layout 执行一次完整的排版：收集障碍物，逐个行带求可用范围、断行并拆分样式片段。
//
// 文本按 '\n' 分段，每段从新的一行开始，空段占用一个空行。行带 i 覆盖 [y, y+LineHeight)，
// 基线位于行带底部。可用宽度小于 minLineWidth 的行带被跳过。PageHeight > 0 时，
// 基线超出页面的行不再输出，并设置 Result.Truncated。
func Layout(content Content, geometry []Geometry, opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	for i, a := range content.Annotations {
		if a.Start > a.End {
			return nil, fmt.Errorf("%w: 第 %d 个标注区间 [%d, %d) 起点大于终点", ErrInvalidAnnotation, i, a.Start, a.End)
		}
		if a.Style.Kind == KindLink && a.Style.Link == nil {
			return nil, fmt.Errorf("%w: 第 %d 个标注为 link 但缺少链接数据", ErrInvalidAnnotation, i)
		}
	}

	p := &pass{
		text:     []rune(content.Text),
		annots:   content.Annotations,
		opts:     opts,
		boxes:    CollectObstacles(geometry),
		minWidth: math.Max(opts.Measurer.Measure(" "), 1),
	}
	p.lowest = lowestBottom(p.boxes)

	res := &Result{Obstacles: p.boxes, LineHeight: opts.LineHeight}
	if len(p.text) > 0 {
		res.Lines, res.Truncated = p.run()
	}

	res.Height = p.lowest
	if n := len(res.Lines); n > 0 {
		res.Height = math.Max(res.Height, res.Lines[n-1].Baseline+opts.LineHeight/2)
	}
	Logger().Info("layout pass finished",
		"lines", len(res.Lines),
		"obstacles", len(p.boxes),
		"height", res.Height,
		"truncated", res.Truncated)
	return res, nil
}

// pass 持有一次排版的中间状态，只在 Layout 内部存在。
type pass struct {
	text     []rune
	annots   []Annotation
	opts     Options
	boxes    []Box
	lowest   float64
	minWidth float64
	y        float64
}

func (p *pass) run() ([]TextLine, bool) {
	var lines []TextLine
	fit := p.opts.Measurer.Fit
	measure := p.opts.Measurer.Measure

	for paraStart := 0; paraStart <= len(p.text); {
		paraEnd := paragraphEnd(p.text, paraStart)
		pos := paraStart
		for {
			bounds := p.nextBand()
			n := BreakChunk(p.text[pos:paraEnd], bounds.Width(), fit)
			end := pos + n
			baseline := p.y + p.opts.LineHeight
			if p.opts.PageHeight > 0 && baseline > p.opts.PageHeight {
				Logger().Warn("content exceeds page height, hiding remaining lines",
					"offset", pos, "baseline", baseline, "pageHeight", p.opts.PageHeight)
				return lines, true
			}
			runs, width := ExtractRuns(p.text, pos, end, p.annots, bounds.Left, measure)
			Logger().Debug("line",
				"start", pos, "end", end,
				"left", bounds.Left, "right", bounds.Right,
				"baseline", baseline, "runs", len(runs))
			lines = append(lines, TextLine{
				Start:    pos,
				End:      end,
				Baseline: baseline,
				Bounds:   bounds,
				Runs:     runs,
				Width:    width,
			})
			p.y += p.opts.LineHeight
			pos = end
			if pos >= paraEnd {
				break
			}
		}
		paraStart = paraEnd + 1
	}
	return lines, false
}

// nextBand 从当前 y 开始找到第一个足够宽的行带。低于所有障碍物的行带总是整宽，因此循环必然结束。
func (p *pass) nextBand() Line {
	for {
		bounds := ResolveLineBounds(p.y, p.y+p.opts.LineHeight, p.opts.Width, p.boxes)
		if bounds.Width() >= p.minWidth || p.y >= p.lowest {
			return bounds
		}
		Logger().Debug("skipping blocked band", "y", p.y, "left", bounds.Left, "right", bounds.Right)
		p.y += p.opts.LineHeight
	}
}

func paragraphEnd(text []rune, from int) int {
	for i := from; i < len(text); i++ {
		if text[i] == '\n' {
			return i
		}
	}
	return len(text)
}
