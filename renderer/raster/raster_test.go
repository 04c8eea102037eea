package raster

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/ByLCY/reflow/layout"
	"github.com/ByLCY/reflow/paint"
	"github.com/ByLCY/reflow/renderer"
)

func TestMeasureAndFit(t *testing.T) {
	b, err := NewBackend("", renderer.Font{Size: 14}, nil)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	if b.Measure("") != 0 {
		t.Fatalf("empty text should have zero width")
	}
	limit := b.Measure("wrap me")
	n := b.Fit("wrap me please", limit)
	if n != len([]rune("wrap me")) {
		t.Fatalf("Fit = %d, want %d", n, len([]rune("wrap me")))
	}
}

func TestMissingFontFails(t *testing.T) {
	if _, err := NewBackend("", renderer.Font{Src: "builtin:nope", Size: 12}, nil); err == nil {
		t.Fatalf("expected error for unknown builtin font")
	}
}

func TestDrawEncodesPNGOfPageSize(t *testing.T) {
	b, err := NewBackend("", renderer.Font{}, nil)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	doc, err := b.NewDocument(240.5, 120)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	content := layout.Content{
		Text: "bold and linked",
		Annotations: []layout.Annotation{
			{Start: 0, End: 4, Style: layout.EmphasisStyle()},
			{Start: 9, End: 15, Style: layout.LinkStyle("next", nil)},
		},
	}
	res, err := layout.Layout(content, nil, layout.Options{Width: 240, LineHeight: 20, Measurer: b})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	r := renderer.New(doc, paint.NewPool(paint.DefaultPalette), nil)
	if err := r.Draw(res); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if got := img.Bounds().Dx(); got != 241 {
		t.Fatalf("width = %d, want 241", got)
	}
	if got := img.Bounds().Dy(); got != 120 {
		t.Fatalf("height = %d, want 120", got)
	}
}
