// Package hittest routes pointer gestures to the clickable runs published by the renderer.
package hittest

import (
	"math"
	"sync/atomic"

	"github.com/ByLCY/reflow/layout"
)

// TapSlop is the drag distance, in device pixels, at which a gesture stops being a tap.
const TapSlop = 10.0

// Rect is a hit rectangle in container coordinates. Left/Top are inclusive, Right/Bottom exclusive.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}

// ClickableRun is a link run together with its enlarged hit rectangle.
type ClickableRun struct {
	Run  layout.Run `json:"run"`
	Rect Rect       `json:"rect"`
}

// Registry holds the clickable runs of the last completed draw pass. Each pass
// publishes a new slice; published slices are never modified.
type Registry struct {
	runs atomic.Pointer[[]ClickableRun]
}

// Publish replaces the current list. The registry takes ownership of runs.
func (r *Registry) Publish(runs []ClickableRun) {
	r.runs.Store(&runs)
}

// Snapshot returns the current list; callers must treat it as read-only.
func (r *Registry) Snapshot() []ClickableRun {
	p := r.runs.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Find returns the first run whose rectangle contains (x, y).
func (r *Registry) Find(x, y float64) (ClickableRun, bool) {
	for _, c := range r.Snapshot() {
		if c.Rect.Contains(x, y) {
			return c, true
		}
	}
	return ClickableRun{}, false
}

// Tester tells taps from drags and dispatches taps onto clickable runs.
// It is driven from the host's input thread.
type Tester struct {
	Registry *Registry
	// OnClick, when set, is called after the link's own callback.
	OnClick func(layout.Link)

	down     bool
	downX    float64
	downY    float64
	dragDist float64
}

// NewTester creates a tester reading from reg.
func NewTester(reg *Registry) *Tester {
	return &Tester{Registry: reg}
}

// PointerDown records the gesture origin.
func (t *Tester) PointerDown(x, y float64) {
	t.down = true
	t.downX, t.downY = x, y
	t.dragDist = 0
}

// PointerMove updates the distance from the gesture origin.
func (t *Tester) PointerMove(x, y float64) {
	if !t.down {
		return
	}
	t.dragDist = math.Hypot(x-t.downX, y-t.downY)
}

// PointerUp ends the gesture. It returns true when the gesture was a tap on a
// clickable run, in which case the run's callback has been invoked.
func (t *Tester) PointerUp(x, y float64) bool {
	if !t.down {
		return false
	}
	t.down = false
	if t.dragDist >= TapSlop || t.Registry == nil {
		return false
	}
	hit, ok := t.Registry.Find(x, y)
	if !ok {
		return false
	}
	link := hit.Run.Style.Link
	if link == nil {
		return false
	}
	layout.Logger().Debug("link tapped", "target", link.Target, "x", x, "y", y)
	if link.OnClick != nil {
		link.OnClick(*link)
	}
	if t.OnClick != nil {
		t.OnClick(*link)
	}
	return true
}

// DragDistance returns the distance of the current or last gesture.
func (t *Tester) DragDistance() float64 { return t.dragDist }
