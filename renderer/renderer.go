package renderer

import (
	"fmt"

	"github.com/ByLCY/reflow/hittest"
	"github.com/ByLCY/reflow/layout"
	"github.com/ByLCY/reflow/paint"
)

// HitPadding enlarges link hit rectangles beyond the glyph bounds, in device pixels.
const HitPadding = 20.0

// Surface is the drawing target of a draw pass.
type Surface interface {
	DrawText(text string, x, baseline float64, style paint.Style) error
}

// BoxDrawer is implemented by surfaces that can outline obstacles.
type BoxDrawer interface {
	DrawBox(b layout.Box) error
}

// Document is a surface that can be encoded once the pass is finished (PDF, PNG...).
type Document interface {
	Surface
	Encode() ([]byte, error)
}

// Backend measures text and creates documents with one font configuration, so that
// layout and drawing agree on glyph widths.
type Backend interface {
	layout.Measurer
	NewDocument(width, height float64) (Document, error)
}

// Renderer draws laid-out lines onto a surface and publishes the clickable runs of
// each completed pass to its registry.
type Renderer struct {
	surface  Surface
	pool     *paint.Pool
	registry *hittest.Registry

	// ShowObstacles outlines obstacles when the surface implements BoxDrawer.
	ShowObstacles bool
}

// New creates a renderer. A nil pool or registry is replaced by a fresh one.
func New(surface Surface, pool *paint.Pool, reg *hittest.Registry) *Renderer {
	if pool == nil {
		pool = paint.NewPool(paint.DefaultPalette)
	}
	if reg == nil {
		reg = &hittest.Registry{}
	}
	return &Renderer{surface: surface, pool: pool, registry: reg}
}

// Registry returns the registry clickable runs are published to.
func (r *Renderer) Registry() *hittest.Registry { return r.registry }

// Draw runs one draw pass over res. The clickable runs are published only when the
// whole pass succeeded; a failed pass leaves the previous list in place.
func (r *Renderer) Draw(res *layout.Result) error {
	if res == nil {
		return fmt.Errorf("renderer: 排版结果为空")
	}
	if r.surface == nil {
		return fmt.Errorf("renderer: 缺少绘制目标 Surface")
	}
	if r.ShowObstacles {
		if bd, ok := r.surface.(BoxDrawer); ok {
			for _, b := range res.Obstacles {
				if err := bd.DrawBox(b); err != nil {
					return fmt.Errorf("绘制障碍物失败: %w", err)
				}
			}
		}
	}

	var clickables []hittest.ClickableRun
	for i, line := range res.Lines {
		regs, err := r.DrawLine(line.Runs, line.Baseline, res.LineHeight)
		if err != nil {
			return fmt.Errorf("绘制第 %d 行失败: %w", i, err)
		}
		clickables = append(clickables, regs...)
	}
	r.registry.Publish(clickables)
	layout.Logger().Info("draw pass finished", "lines", len(res.Lines), "clickables", len(clickables))
	return nil
}

// DrawLine draws the runs of one line at baseline and returns the clickable runs it produced.
func (r *Renderer) DrawLine(runs []layout.Run, baseline, lineHeight float64) ([]hittest.ClickableRun, error) {
	var out []hittest.ClickableRun
	for _, run := range runs {
		style := r.pool.Derive(run.Style.Kind)
		err := r.surface.DrawText(run.Text, run.X, baseline, *style)
		r.pool.Release(style)
		if err != nil {
			return nil, err
		}
		if run.Style.Kind != layout.KindLink {
			continue
		}
		out = append(out, hittest.ClickableRun{
			Run: run,
			Rect: hittest.Rect{
				Top:    baseline - lineHeight - HitPadding,
				Left:   run.X,
				Bottom: baseline + HitPadding,
				Right:  run.X + run.Width,
			},
		})
	}
	return out, nil
}
