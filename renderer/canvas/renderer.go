package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/reflow/layout"
	"github.com/ByLCY/reflow/paint"
	"github.com/ByLCY/reflow/renderer"
)

const obstacleStrokeWidth = 0.2 // mm

// Backend measures and draws text via github.com/tdewolff/canvas and encodes pages as PDF.
// Layout coordinates are device pixels; canvas works in millimeters with font sizes in points,
// so every crossing converts at the boundary.
type Backend struct {
	loader *renderer.FontLoader
	font   renderer.Font
	meta   Meta

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
	measureFace    *canvas.FontFace
}

var (
	_ renderer.Backend = (*Backend)(nil)
	_ layout.Measurer  = (*Backend)(nil)
)

type fontFamilyEntry struct {
	family  *canvas.FontFamily
	regular canvas.FontStyle
	styles  map[canvas.FontStyle]bool
}

// Meta is written into the PDF info dictionary.
type Meta struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Keywords []string
}

// Options configures the canvas backend.
type Options struct {
	BaseDir string
	Font    renderer.Font
	Fonts   map[string]renderer.Resource // accessible via builtin:<name>
	Meta    Meta
}

// NewBackend creates a backend using the default builtin font.
func NewBackend(baseDir string) (*Backend, error) {
	return NewBackendWithOptions(Options{BaseDir: baseDir})
}

// NewBackendWithOptions creates a backend and loads the measuring face eagerly so that
// a broken font configuration fails here instead of in the middle of a layout pass.
func NewBackendWithOptions(opts Options) (*Backend, error) {
	font := opts.Font
	if font.Src == "" {
		font.Src = renderer.DefaultFont.Src
		if font.Bold == "" {
			font.Bold = renderer.DefaultFont.Bold
		}
	}
	if font.Size <= 0 {
		font.Size = renderer.DefaultFont.Size
	}
	b := &Backend{
		loader:       renderer.NewFontLoader(opts.BaseDir, opts.Fonts),
		font:         font,
		meta:         opts.Meta,
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	face, err := b.face(*paint.NewPool(paint.DefaultPalette).Default())
	if err != nil {
		return nil, err
	}
	b.measureFace = face
	return b, nil
}

// Measure returns the width of text in device pixels.
func (b *Backend) Measure(text string) float64 {
	return toPx(b.measureFace.TextWidth(text))
}

// Fit returns how many leading runes of text fit in maxWidth device pixels.
func (b *Backend) Fit(text string, maxWidth float64) int {
	return layout.FitByMeasure(text, maxWidth, b.Measure)
}

// LineHeight returns the font's natural line height in device pixels.
func (b *Backend) LineHeight() float64 {
	return toPx(b.measureFace.Metrics().LineHeight)
}

// NewDocument starts a single-page PDF document of the given size in device pixels.
func (b *Backend) NewDocument(width, height float64) (renderer.Document, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("页面尺寸无效: %gx%g", width, height)
	}
	c := canvas.New(toMM(width), toMM(height))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
	return &document{backend: b, canvas: c, ctx: ctx}, nil
}

type document struct {
	backend *Backend
	canvas  *canvas.Canvas
	ctx     *canvas.Context
}

func (d *document) DrawText(text string, x, baseline float64, style paint.Style) error {
	if text == "" {
		return nil
	}
	face, err := d.backend.face(style)
	if err != nil {
		return err
	}
	d.ctx.DrawText(toMM(x), toMM(baseline), canvas.NewTextLine(face, text, canvas.Left))
	return nil
}

func (d *document) DrawBox(box layout.Box) error {
	d.ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	d.ctx.SetStrokeColor(canvas.Hex("#c8c8c8"))
	d.ctx.SetStrokeWidth(obstacleStrokeWidth)
	d.ctx.DrawPath(toMM(box.Left), toMM(box.Top), canvas.Rectangle(toMM(box.Width()), toMM(box.Height())))
	return nil
}

// Encode renders the canvas into a PDF byte slice.
func (d *document) Encode() ([]byte, error) {
	var buf bytes.Buffer
	w, h := d.canvas.Size()
	writer := pdf.New(&buf, w, h, nil)
	meta := d.backend.meta
	writer.SetInfo(meta.Title, meta.Subject, strings.Join(meta.Keywords, ", "), meta.Author, meta.Creator)
	d.canvas.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// face builds a font face for a paint style; bold falls back to the regular face when
// no bold source is configured.
func (b *Backend) face(style paint.Style) (*canvas.FontFace, error) {
	want := parseFontStyle(b.font.Style)
	if style.Weight == paint.WeightBold {
		want = canvas.FontBold | (want & canvas.FontItalic)
	}
	entry, err := b.ensureFontFamily()
	if err != nil {
		return nil, err
	}
	if !entry.styles[want] {
		want = entry.regular
	}
	args := []interface{}{style.Color, want, canvas.FontNormal}
	if style.Underline {
		args = append(args, canvas.FontUnderline)
	}
	return entry.family.Face(toPt(b.font.Size), args...), nil
}

func (b *Backend) ensureFontFamily() (*fontFamilyEntry, error) {
	key := fontCacheKey(b.font)
	b.fontMu.Lock()
	defer b.fontMu.Unlock()

	if entry, ok := b.fontFamilies[key]; ok {
		return entry, nil
	}

	familyName := b.font.Name
	if familyName == "" {
		familyName = "Body"
	}
	family := canvas.NewFontFamily(familyName)
	regular := parseFontStyle(b.font.Style)
	entry := &fontFamilyEntry{family: family, regular: regular, styles: map[canvas.FontStyle]bool{}}

	if err := b.loadFontIntoFamily(family, b.font.Src, regular); err != nil {
		fallback, fbErr := b.fallback()
		if fbErr != nil {
			return nil, err
		}
		layout.Logger().Warn("font load failed, using fallback", "src", b.font.Src, "err", err)
		entry = &fontFamilyEntry{family: fallback, regular: canvas.FontRegular, styles: map[canvas.FontStyle]bool{canvas.FontRegular: true}}
		b.fontFamilies[key] = entry
		return entry, nil
	}
	entry.styles[regular] = true
	if b.font.Bold != "" {
		bold := canvas.FontBold | (regular & canvas.FontItalic)
		if err := b.loadFontIntoFamily(family, b.font.Bold, bold); err == nil {
			entry.styles[bold] = true
		}
	}
	b.fontFamilies[key] = entry
	return entry, nil
}

func (b *Backend) loadFontIntoFamily(family *canvas.FontFamily, src string, style canvas.FontStyle) error {
	data, err := b.loader.Load(src)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func (b *Backend) fallback() (*canvas.FontFamily, error) {
	if b.fallbackFamily != nil {
		return b.fallbackFamily, nil
	}
	data, err := b.loader.Load(renderer.DefaultFont.Src)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("reflow-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	b.fallbackFamily = family
	return family, nil
}

func parseFontStyle(style string) canvas.FontStyle {
	if style == "" {
		return canvas.FontRegular
	}
	s := strings.ToLower(style)
	var result canvas.FontStyle
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	default:
		result = canvas.FontRegular
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(font renderer.Font) string {
	return fmt.Sprintf("%s|%s|%s|%s", font.Name, font.Src, font.Bold, font.Style)
}

// toPt 将像素转换为点(pt)。
func toPt(px float64) float64 { return px * layout.PxToMm * layout.MmToPt }

// toMM 将像素转换为毫米(mm)。
func toMM(px float64) float64 { return px * layout.PxToMm }

// toPx 将毫米(mm)转换为像素。
func toPx(mm float64) float64 { return mm * layout.MmToPx }
