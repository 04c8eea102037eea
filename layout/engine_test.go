package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func cellOptions(width float64) Options {
	return Options{Width: width, LineHeight: 20, Measurer: CellMeasurer{CellWidth: 10}}
}

// lineText 拼出一行所有片段的文本。
func lineText(l TextLine) string {
	var b strings.Builder
	for _, r := range l.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

func TestLayoutSingleLine(t *testing.T) {
	res, err := Layout(Plain("Hello world"), nil, cellOptions(200))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	want := []TextLine{{
		Start:    0,
		End:      11,
		Baseline: 20,
		Bounds:   Line{Left: 0, Right: 200},
		Runs:     []Run{{Text: "Hello world", Start: 0, End: 11, X: 0, Width: 110, Style: PlainStyle()}},
		Width:    110,
	}}
	if diff := cmp.Diff(want, res.Lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if res.Height != 30 {
		t.Fatalf("height = %g, want 30", res.Height)
	}
}

func TestLayoutWrapsAroundObstacle(t *testing.T) {
	geometry := []Geometry{{Left: 40, Top: 0, Right: 100, Bottom: 30, Visible: true}}
	content := Plain("aaaa bbbb cccc dddd eeee ffff gggg")
	res, err := Layout(content, geometry, cellOptions(200))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if len(res.Lines) < 3 {
		t.Fatalf("expected at least 3 lines, got %d", len(res.Lines))
	}
	// 前两个行带与障碍物相交，只能使用 [100, 200]
	for i := 0; i < 2; i++ {
		if got := res.Lines[i].Bounds; got != (Line{Left: 100, Right: 200}) {
			t.Fatalf("line %d bounds = %+v, want [100,200]", i, got)
		}
		if res.Lines[i].Runs[0].X != 100 {
			t.Fatalf("line %d should start at x=100, got %g", i, res.Lines[i].Runs[0].X)
		}
	}
	if got := res.Lines[2].Bounds; got != (Line{Left: 0, Right: 200}) {
		t.Fatalf("line 2 bounds = %+v, want full width", got)
	}

	var all strings.Builder
	for _, l := range res.Lines {
		all.WriteString(lineText(l))
	}
	if all.String() != content.Text {
		t.Fatalf("lines do not reproduce text: %q", all.String())
	}
}

func TestLayoutSkipsBlockedBands(t *testing.T) {
	geometry := []Geometry{{Left: 0, Top: 0, Right: 200, Bottom: 40, Visible: true}}
	res, err := Layout(Plain("hello"), geometry, cellOptions(200))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if len(res.Lines) != 1 {
		t.Fatalf("expected one line, got %d", len(res.Lines))
	}
	if res.Lines[0].Baseline != 60 {
		t.Fatalf("text should start below the obstacle, baseline = %g", res.Lines[0].Baseline)
	}
	if res.Height != 70 {
		t.Fatalf("height = %g, want 70", res.Height)
	}
}

func TestLayoutHeightFollowsObstacles(t *testing.T) {
	geometry := []Geometry{
		{Left: 150, Top: 0, Right: 200, Bottom: 300, Visible: true},
		{Left: 0, Top: 0, Right: 10, Bottom: 900, Visible: false},
	}
	res, err := Layout(Plain("short"), geometry, cellOptions(200))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if res.Height != 300 {
		t.Fatalf("height = %g, want lowest visible obstacle bottom 300", res.Height)
	}
	if len(res.Obstacles) != 1 {
		t.Fatalf("hidden geometry must not become an obstacle")
	}
}

func TestLayoutParagraphs(t *testing.T) {
	res, err := Layout(Plain("ab\n\ncd"), nil, cellOptions(200))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	var got []string
	for _, l := range res.Lines {
		got = append(got, lineText(l))
	}
	if diff := cmp.Diff([]string{"ab", "", "cd"}, got); diff != "" {
		t.Fatalf("paragraph lines mismatch (-want +got):\n%s", diff)
	}
	if res.Lines[2].Start != 4 || res.Lines[2].Baseline != 60 {
		t.Fatalf("third line = %+v", res.Lines[2])
	}
}

func TestLayoutLinkSpansLines(t *testing.T) {
	text := "click this very long link text"
	link := LinkStyle("https://example.org", nil)
	content := Content{Text: text, Annotations: []Annotation{{Start: 6, End: len(text), Style: link}}}
	res, err := Layout(content, nil, cellOptions(120))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	links := 0
	for _, l := range res.Lines {
		for _, r := range l.Runs {
			if r.Style.Kind == KindLink {
				links++
				if r.Style.Link != link.Link {
					t.Fatalf("link payload should be shared across lines")
				}
			}
		}
	}
	if links < 2 {
		t.Fatalf("expected link to be split over several lines, got %d link runs", links)
	}
}

func TestLayoutPageHeightTruncates(t *testing.T) {
	opts := cellOptions(50)
	opts.PageHeight = 45
	res, err := Layout(Plain("one two three four five"), nil, opts)
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if !res.Truncated {
		t.Fatalf("expected truncated result")
	}
	if len(res.Lines) != 2 {
		t.Fatalf("expected 2 visible lines, got %d", len(res.Lines))
	}
	for _, l := range res.Lines {
		if l.Baseline > opts.PageHeight {
			t.Fatalf("line baseline %g exceeds page height", l.Baseline)
		}
	}
}

func TestLayoutEmptyText(t *testing.T) {
	res, err := Layout(Plain(""), nil, cellOptions(100))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	if len(res.Lines) != 0 || res.Height != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestLayoutRejectsInvalidInput(t *testing.T) {
	if _, err := Layout(Plain("x"), nil, Options{Width: 100, LineHeight: 20}); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("missing measurer should fail with ErrInvalidOptions, got %v", err)
	}
	if _, err := Layout(Plain("x"), nil, cellOptions(0)); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("zero width should fail with ErrInvalidOptions, got %v", err)
	}
	bad := Content{Text: "abc", Annotations: []Annotation{{Start: 2, End: 1}}}
	if _, err := Layout(bad, nil, cellOptions(100)); !errors.Is(err, ErrInvalidAnnotation) {
		t.Fatalf("inverted annotation should fail with ErrInvalidAnnotation, got %v", err)
	}
	noPayload := Content{Text: "abc", Annotations: []Annotation{{Start: 0, End: 1, Style: Style{Kind: KindLink}}}}
	if _, err := Layout(noPayload, nil, cellOptions(100)); !errors.Is(err, ErrInvalidAnnotation) {
		t.Fatalf("link without payload should fail, got %v", err)
	}
}

func TestEncodeDebug(t *testing.T) {
	content := Content{Text: "go there", Annotations: []Annotation{{Start: 3, End: 8, Style: LinkStyle("x", func(Link) {})}}}
	res, err := Layout(content, nil, cellOptions(200))
	if err != nil {
		t.Fatalf("Layout error: %v", err)
	}
	var buf bytes.Buffer
	if err := EncodeDebug(&buf, res); err != nil {
		t.Fatalf("EncodeDebug error: %v", err)
	}
	var decoded struct {
		Lines []struct {
			Runs []struct {
				Text  string `json:"text"`
				Style struct {
					Kind int `json:"kind"`
					Link *struct {
						Target string `json:"target"`
					} `json:"link"`
				} `json:"style"`
			} `json:"runs"`
		} `json:"lines"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("debug output is not JSON: %v", err)
	}
	runs := decoded.Lines[0].Runs
	if len(runs) != 2 || runs[1].Style.Link == nil || runs[1].Style.Link.Target != "x" {
		t.Fatalf("unexpected debug runs: %+v", runs)
	}
}
