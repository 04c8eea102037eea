package raster

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/ByLCY/reflow/layout"
	"github.com/ByLCY/reflow/paint"
	"github.com/ByLCY/reflow/renderer"
)

// Backend rasterizes pages with github.com/fogleman/gg and encodes them as PNG.
// Coordinates are device pixels, one pixel per layout unit.
type Backend struct {
	mu      sync.Mutex // font.Face 不是并发安全的
	regular font.Face
	bold    font.Face
	size    float64
}

var (
	_ renderer.Backend = (*Backend)(nil)
	_ layout.Measurer  = (*Backend)(nil)
)

// NewBackend loads the configured font (and its bold companion when present) through
// a font loader rooted at baseDir.
func NewBackend(baseDir string, f renderer.Font, resources map[string]renderer.Resource) (*Backend, error) {
	if f.Src == "" {
		f.Src = renderer.DefaultFont.Src
		if f.Bold == "" {
			f.Bold = renderer.DefaultFont.Bold
		}
	}
	if f.Size <= 0 {
		f.Size = renderer.DefaultFont.Size
	}
	loader := renderer.NewFontLoader(baseDir, resources)
	regular, err := loadFace(loader, f.Src, f.Size)
	if err != nil {
		return nil, err
	}
	b := &Backend{regular: regular, bold: regular, size: f.Size}
	if f.Bold != "" {
		if bold, err := loadFace(loader, f.Bold, f.Size); err == nil {
			b.bold = bold
		} else {
			layout.Logger().Warn("bold face unavailable, drawing bold runs with the regular face", "src", f.Bold, "err", err)
		}
	}
	return b, nil
}

func loadFace(loader *renderer.FontLoader, src string, size float64) (font.Face, error) {
	data, err := loader.Load(src)
	if err != nil {
		return nil, err
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", src, err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, fmt.Errorf("创建字体 %s 失败: %w", src, err)
	}
	return face, nil
}

// Measure returns the advance width of text in pixels.
func (b *Backend) Measure(text string) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return float64(font.MeasureString(b.regular, text)) / 64
}

// Fit returns how many leading runes of text fit in maxWidth pixels.
func (b *Backend) Fit(text string, maxWidth float64) int {
	return layout.FitByMeasure(text, maxWidth, b.Measure)
}

// NewDocument allocates a white page of the given pixel size.
func (b *Backend) NewDocument(width, height float64) (renderer.Document, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("页面尺寸无效: %gx%g", width, height)
	}
	dc := gg.NewContext(int(math.Ceil(width)), int(math.Ceil(height)))
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	return &page{backend: b, dc: dc}, nil
}

type page struct {
	backend *Backend
	dc      *gg.Context
}

func (p *page) DrawText(text string, x, baseline float64, style paint.Style) error {
	if text == "" {
		return nil
	}
	b := p.backend
	b.mu.Lock()
	defer b.mu.Unlock()

	face := b.regular
	if style.Weight == paint.WeightBold {
		face = b.bold
	}
	p.dc.SetFontFace(face)
	p.dc.SetColor(style.Color)
	p.dc.DrawString(text, x, baseline)
	if style.Underline {
		w := float64(font.MeasureString(face, text)) / 64
		y := baseline + math.Max(1, b.size/12)
		p.dc.SetLineWidth(math.Max(1, b.size/16))
		p.dc.DrawLine(x, y, x+w, y)
		p.dc.Stroke()
	}
	return nil
}

func (p *page) DrawBox(box layout.Box) error {
	p.dc.SetColor(color.RGBA{200, 200, 200, 255})
	p.dc.SetLineWidth(1)
	p.dc.DrawRectangle(box.Left, box.Top, box.Width(), box.Height())
	p.dc.Stroke()
	return nil
}

// Encode writes the page as PNG.
func (p *page) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}
