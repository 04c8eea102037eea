package layout

// 该文件定义一次排版/绘制过程中使用的数据类型。除 Content 外，所有值都只在单次排版过程中存在。

// Box 表示文本需要绕开的矩形障碍物，坐标为容器本地坐标。
type Box struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
}

// Width 返回障碍物宽度。
func (b Box) Width() float64 { return b.Right - b.Left }

// Height 返回障碍物高度。
func (b Box) Height() float64 { return b.Bottom - b.Top }

// intersects 判断障碍物是否与 [top, bottom) 的行带相交，边缘相接不算相交。
func (b Box) intersects(top, bottom float64) bool {
	return b.Top < bottom && b.Bottom > top
}

// Geometry 是宿主提供的子元素几何信息。
type Geometry struct {
	Left    float64 `json:"left"`
	Top     float64 `json:"top"`
	Right   float64 `json:"right"`
	Bottom  float64 `json:"bottom"`
	Visible bool    `json:"visible"`
}

// Area 是某一行可选的无遮挡水平区间。
type Area struct {
	X1    float64 `json:"x1"`
	X2    float64 `json:"x2"`
	Width float64 `json:"width"`
}

// Line 是一行文本最终可用的水平范围。
type Line struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Width 返回可用宽度，反向区间视为 0。
func (l Line) Width() float64 {
	if l.Right < l.Left {
		return 0
	}
	return l.Right - l.Left
}

// Kind 区分文本片段的样式种类。
type Kind int

const (
	KindPlain Kind = iota
	KindEmphasis
	KindLink
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindEmphasis:
		return "emphasis"
	case KindLink:
		return "link"
	default:
		return "unknown"
	}
}

// priority 用于重叠标注的取舍：link > emphasis > plain。
func (k Kind) priority() int {
	switch k {
	case KindLink:
		return 2
	case KindEmphasis:
		return 1
	default:
		return 0
	}
}

// Link 是 link 样式携带的数据。OnClick 在点击命中时同步调用。
type Link struct {
	Target  string     `json:"target"`
	OnClick func(Link) `json:"-"`
}

// Style 是带标签的样式变体，只有 KindLink 时 Link 才非空。
type Style struct {
	Kind Kind  `json:"kind"`
	Link *Link `json:"link,omitempty"`
}

// PlainStyle 返回默认样式。
func PlainStyle() Style { return Style{Kind: KindPlain} }

// EmphasisStyle 返回强调样式。
func EmphasisStyle() Style { return Style{Kind: KindEmphasis} }

// LinkStyle 返回指向 target 的链接样式。
func LinkStyle(target string, onClick func(Link)) Style {
	return Style{Kind: KindLink, Link: &Link{Target: target, OnClick: onClick}}
}

// Annotation 是作用在全文字符区间 [Start, End) 上的样式标注，偏移以 rune 计。
type Annotation struct {
	Start int   `json:"start"`
	End   int   `json:"end"`
	Style Style `json:"style"`
}

// Content 是待排版的文本及其标注，标注之间允许重叠。
type Content struct {
	Text        string       `json:"text"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Plain 创建不带标注的内容。
func Plain(text string) Content { return Content{Text: text} }

// Run 是一次绘制调用输出的最小样式片段。
type Run struct {
	Text  string  `json:"text"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	X     float64 `json:"x"`
	Width float64 `json:"width"`
	Style Style   `json:"style"`
}

// TextLine 是排好的一行：字符区间、基线、可用范围与片段。
type TextLine struct {
	Start    int     `json:"start"`
	End      int     `json:"end"`
	Baseline float64 `json:"baseline"`
	Bounds   Line    `json:"bounds"`
	Runs     []Run   `json:"runs"`
	Width    float64 `json:"width"`
}

// Result 保存一次排版的输出。
type Result struct {
	Lines      []TextLine `json:"lines"`
	Obstacles  []Box      `json:"obstacles"`
	Height     float64    `json:"height"`
	LineHeight float64    `json:"lineHeight"`
	Truncated  bool       `json:"truncated,omitempty"`
}
