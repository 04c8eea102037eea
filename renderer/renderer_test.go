package renderer

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/reflow/hittest"
	"github.com/ByLCY/reflow/layout"
	"github.com/ByLCY/reflow/paint"
)

type drawCall struct {
	Text      string
	X         float64
	Baseline  float64
	Underline bool
	Weight    paint.Weight
}

// recordingSurface 记录每次绘制调用，failAt >= 0 时在第 failAt 次调用返回错误。
type recordingSurface struct {
	calls  []drawCall
	boxes  []layout.Box
	failAt int
}

func (s *recordingSurface) DrawText(text string, x, baseline float64, style paint.Style) error {
	if s.failAt >= 0 && len(s.calls) == s.failAt {
		return errors.New("surface failure")
	}
	s.calls = append(s.calls, drawCall{Text: text, X: x, Baseline: baseline, Underline: style.Underline, Weight: style.Weight})
	return nil
}

func (s *recordingSurface) DrawBox(b layout.Box) error {
	s.boxes = append(s.boxes, b)
	return nil
}

func layoutFor(t *testing.T, content layout.Content, geometry []layout.Geometry) *layout.Result {
	t.Helper()
	res, err := layout.Layout(content, geometry, layout.Options{
		Width:      200,
		LineHeight: 20,
		Measurer:   layout.CellMeasurer{CellWidth: 10},
	})
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	return res
}

func TestDrawRegistersLinks(t *testing.T) {
	content := layout.Content{
		Text: "read the docs now",
		Annotations: []layout.Annotation{
			{Start: 0, End: 4, Style: layout.EmphasisStyle()},
			{Start: 9, End: 13, Style: layout.LinkStyle("https://example.org", nil)},
		},
	}
	res := layoutFor(t, content, nil)
	surface := &recordingSurface{failAt: -1}
	r := New(surface, nil, nil)
	if err := r.Draw(res); err != nil {
		t.Fatalf("Draw error: %v", err)
	}

	want := []drawCall{
		{Text: "read", X: 0, Baseline: 20, Weight: paint.WeightBold},
		{Text: " the ", X: 40, Baseline: 20},
		{Text: "docs", X: 90, Baseline: 20, Underline: true},
		{Text: " now", X: 130, Baseline: 20},
	}
	if diff := cmp.Diff(want, surface.calls); diff != "" {
		t.Fatalf("draw calls mismatch (-want +got):\n%s", diff)
	}

	regs := r.Registry().Snapshot()
	if len(regs) != 1 {
		t.Fatalf("expected one clickable run, got %d", len(regs))
	}
	wantRect := hittest.Rect{Top: 20 - 20 - HitPadding, Left: 90, Bottom: 20 + HitPadding, Right: 130}
	if regs[0].Rect != wantRect {
		t.Fatalf("rect = %+v, want %+v", regs[0].Rect, wantRect)
	}
	if regs[0].Run.Style.Link.Target != "https://example.org" {
		t.Fatalf("unexpected link target %q", regs[0].Run.Style.Link.Target)
	}
}

// TestDrawRecyclesStyles 每次绘制后派生样式都回到空闲链表，多次绘制不再分配新对象。
func TestDrawRecyclesStyles(t *testing.T) {
	content := layout.Content{
		Text: "a b c d",
		Annotations: []layout.Annotation{
			{Start: 0, End: 1, Style: layout.EmphasisStyle()},
			{Start: 2, End: 3, Style: layout.LinkStyle("x", nil)},
			{Start: 4, End: 5, Style: layout.EmphasisStyle()},
		},
	}
	res := layoutFor(t, content, nil)
	pool := paint.NewPool(paint.DefaultPalette)
	r := New(&recordingSurface{failAt: -1}, pool, nil)
	for i := 0; i < 3; i++ {
		if err := r.Draw(res); err != nil {
			t.Fatalf("Draw error: %v", err)
		}
	}
	if pool.Allocated() != 1 {
		t.Fatalf("allocated = %d, want a single recycled descriptor", pool.Allocated())
	}
	if pool.Len() != 1 {
		t.Fatalf("free list = %d, want 1", pool.Len())
	}
}

func TestFailedPassKeepsPreviousRegistrations(t *testing.T) {
	content := layout.Content{
		Text:        "go here",
		Annotations: []layout.Annotation{{Start: 3, End: 7, Style: layout.LinkStyle("x", nil)}},
	}
	res := layoutFor(t, content, nil)
	surface := &recordingSurface{failAt: -1}
	r := New(surface, nil, nil)
	if err := r.Draw(res); err != nil {
		t.Fatalf("Draw error: %v", err)
	}
	before := r.Registry().Snapshot()

	surface.calls = nil
	surface.failAt = 0
	if err := r.Draw(res); err == nil {
		t.Fatalf("expected surface error")
	}
	after := r.Registry().Snapshot()
	if len(after) != 1 || &after[0] != &before[0] {
		t.Fatalf("failed pass must not replace the published list")
	}
}

func TestDrawObstacles(t *testing.T) {
	geometry := []layout.Geometry{{Left: 40, Top: 0, Right: 100, Bottom: 30, Visible: true}}
	res := layoutFor(t, layout.Plain("text"), geometry)
	surface := &recordingSurface{failAt: -1}
	r := New(surface, nil, nil)
	r.ShowObstacles = true
	if err := r.Draw(res); err != nil {
		t.Fatalf("Draw error: %v", err)
	}
	if len(surface.boxes) != 1 || surface.boxes[0] != (layout.Box{Top: 0, Left: 40, Bottom: 30, Right: 100}) {
		t.Fatalf("unexpected boxes %+v", surface.boxes)
	}
	if surface.calls[0].X != 100 {
		t.Fatalf("text should be placed right of the obstacle, x = %g", surface.calls[0].X)
	}
}

// TestRunOffsetsAreSequential 渲染输入满足 run[i+1].X == run[i].X + width(run[i])。
func TestRunOffsetsAreSequential(t *testing.T) {
	m := layout.CellMeasurer{CellWidth: 10}
	content := layout.Content{
		Text: "one two three four five six seven eight nine ten",
		Annotations: []layout.Annotation{
			{Start: 4, End: 13, Style: layout.EmphasisStyle()},
			{Start: 19, End: 30, Style: layout.LinkStyle("x", nil)},
		},
	}
	geometry := []layout.Geometry{{Left: 0, Top: 0, Right: 60, Bottom: 25, Visible: true}}
	res := layoutFor(t, content, geometry)
	for _, line := range res.Lines {
		for i := 1; i < len(line.Runs); i++ {
			prev := line.Runs[i-1]
			if line.Runs[i].X != prev.X+m.Measure(prev.Text) {
				t.Fatalf("run %d of line %d not sequential: %+v", i, line.Start, line.Runs)
			}
		}
	}
}

func TestDrawRejectsNil(t *testing.T) {
	r := New(&recordingSurface{failAt: -1}, nil, nil)
	if err := r.Draw(nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
}
