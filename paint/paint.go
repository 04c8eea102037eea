// Package paint provides the style descriptors used while drawing runs and the
// free list that recycles derived descriptors between draw passes.
package paint

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ByLCY/reflow/layout"
)

// Weight is the font weight a descriptor asks the surface for.
type Weight int

const (
	WeightRegular Weight = iota
	WeightBold
)

// Style is a small value descriptor handed to surfaces by value.
type Style struct {
	Color     color.RGBA
	Weight    Weight
	Underline bool

	derived bool
}

// Derived reports whether s came from Pool.Acquire.
func (s *Style) Derived() bool { return s != nil && s.derived }

// Palette holds the colors derived styles are built from.
type Palette struct {
	Text color.RGBA
	Link color.RGBA
}

// DefaultPalette matches the near-black body text and the standard hyperlink blue.
var DefaultPalette = Palette{
	Text: color.RGBA{R: 30, G: 30, B: 30, A: 255},
	Link: color.RGBA{R: 0, G: 0, B: 238, A: 255},
}

// Hex parses "#rrggbb" or "#rgb" into an opaque color.
func Hex(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Pool is a stack-based free list of derived descriptors. It is owned by a single
// renderer and is not safe for concurrent use.
type Pool struct {
	palette   Palette
	base      Style
	free      []*Style
	allocated int
}

// NewPool creates a pool whose default style uses palette.Text.
func NewPool(palette Palette) *Pool {
	return &Pool{
		palette: palette,
		base:    Style{Color: palette.Text},
	}
}

// Default returns the shared default descriptor. It is never pooled and must not be modified.
func (p *Pool) Default() *Style { return &p.base }

// Acquire pops a free descriptor or allocates a new one, reset to the default look.
func (p *Pool) Acquire() *Style {
	var s *Style
	if n := len(p.free); n > 0 {
		s = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	} else {
		s = new(Style)
		p.allocated++
	}
	*s = Style{Color: p.palette.Text, derived: true}
	return s
}

// Release returns a derived descriptor to the free list. Default descriptors,
// nil and descriptors that are already free are ignored.
func (p *Pool) Release(s *Style) {
	if !s.Derived() {
		return
	}
	for _, f := range p.free {
		if f == s {
			return
		}
	}
	p.free = append(p.free, s)
}

// Derive returns the descriptor for a run kind: the default for plain text, a pooled
// bold descriptor for emphasis and a pooled underlined link-colored one for links.
func (p *Pool) Derive(kind layout.Kind) *Style {
	switch kind {
	case layout.KindEmphasis:
		s := p.Acquire()
		s.Weight = WeightBold
		return s
	case layout.KindLink:
		s := p.Acquire()
		s.Color = p.palette.Link
		s.Underline = true
		return s
	default:
		return p.Default()
	}
}

// Len reports the number of free descriptors.
func (p *Pool) Len() int { return len(p.free) }

// Allocated reports how many descriptors the pool has ever allocated.
func (p *Pool) Allocated() int { return p.allocated }
