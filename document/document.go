package document

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/ByLCY/reflow/binding"
	"github.com/ByLCY/reflow/dsl"
	"github.com/ByLCY/reflow/layout"
	"github.com/ByLCY/reflow/markup"
	"github.com/ByLCY/reflow/paint"
	"github.com/ByLCY/reflow/renderer"
)

// 场景文件的默认值。
const (
	DefaultLineHeightFactor = 1.4
	defaultCreator          = "reflow"
)

// Scene 是场景文件解析后的排版输入：容器尺寸、字体、障碍物与文本。所有长度单位为像素。
type Scene struct {
	Name       string            `json:"name"`
	Width      float64           `json:"width"`
	LineHeight float64           `json:"lineHeight"`
	PageHeight float64           `json:"pageHeight,omitempty"`
	Font       renderer.Font     `json:"font"`
	Palette    paint.Palette     `json:"-"`
	Geometry   []layout.Geometry `json:"geometry"`
	Content    layout.Content    `json:"content"`
	Meta       Meta              `json:"meta"`
}

// Meta 保存文档元数据，会写入 PDF 信息字典。
type Meta struct {
	Title    string   `json:"title,omitempty"`
	Author   string   `json:"author,omitempty"`
	Subject  string   `json:"subject,omitempty"`
	Creator  string   `json:"creator,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// Options 返回用 m 排版该场景的参数。
func (s *Scene) Options(m layout.Measurer) layout.Options {
	return layout.Options{Width: s.Width, LineHeight: s.LineHeight, PageHeight: s.PageHeight, Measurer: m}
}

// resourceSet 汇总 resources 段声明的字体与颜色。
type resourceSet struct {
	Fonts  map[string]renderer.Font
	Colors map[string]color.RGBA
}

// Build 把 DSL 文档转换为场景。data 为可选的 JSON 数据，用于 ${path} 插值与 data.xxx 表达式。
func Build(doc *dsl.Document, data []byte) (*Scene, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	frame, err := onlyFrame(doc)
	if err != nil {
		return nil, err
	}
	res, err := collectResources(doc)
	if err != nil {
		return nil, err
	}

	scene := &Scene{
		Name:    doc.Name,
		Palette: paint.DefaultPalette,
		Meta:    collectMeta(doc, data),
	}
	if c, ok := res.Colors["Text"]; ok {
		scene.Palette.Text = c
	}
	if c, ok := res.Colors["Link"]; ok {
		scene.Palette.Link = c
	}

	if err := applyFrameHeader(scene, frame.Params, res); err != nil {
		return nil, err
	}
	if err := processFrameBlock(scene, frame.Block, data); err != nil {
		return nil, err
	}
	layout.Logger().Debug("scene built",
		"name", scene.Name,
		"width", scene.Width,
		"lineHeight", scene.LineHeight,
		"obstacles", len(scene.Geometry),
		"runes", len([]rune(scene.Content.Text)))
	return scene, nil
}

func onlyFrame(doc *dsl.Document) (*dsl.FrameSection, error) {
	var frame *dsl.FrameSection
	for _, section := range doc.Sections {
		if section.Frame == nil {
			continue
		}
		if frame != nil {
			return nil, fmt.Errorf("文档 %s 只能包含一个 frame（第二个位于 %s）", doc.Name, section.Frame.Pos)
		}
		frame = section.Frame
	}
	if frame == nil {
		return nil, fmt.Errorf("文档 %s 缺少 frame 段", doc.Name)
	}
	return frame, nil
}

// applyFrameHeader 解析 frame 头部：`frame <width> line-height <lh> page <h> font <name> size <len>`。
func applyFrameHeader(scene *Scene, params []*dsl.Lexeme, res resourceSet) error {
	attrs := map[string]string{}
	if len(params) > 0 && params[0].Type == "Number" {
		attrs["width"] = params[0].Value
		params = params[1:]
	}
	for k, v := range parseArgs(params) {
		attrs[k] = v
	}

	width, ok := layout.ParseLength(attrs["width"])
	if !ok || width.ToPX() <= 0 {
		return fmt.Errorf("frame 宽度无效: %q", attrs["width"])
	}
	scene.Width = width.ToPX()

	font, err := resolveFont(attrs["font"], res)
	if err != nil {
		return err
	}
	if v, ok := attrs["size"]; ok {
		size, ok := layout.ParseLength(v)
		if !ok || size.ToPX() <= 0 {
			return fmt.Errorf("字号无效: %q", v)
		}
		font.Size = size.ToPX()
	}
	scene.Font = font

	spec := layout.LineHeightSpec{Kind: layout.LineHeightFactor, Factor: DefaultLineHeightFactor}
	if v, ok := attrs["line-height"]; ok {
		if spec, ok = layout.ParseLineHeight(v); !ok {
			return fmt.Errorf("行高无效: %q", v)
		}
	}
	scene.LineHeight = spec.Resolve(layout.Length{Value: font.Size, Unit: layout.UnitPX}, layout.UnitPX)

	if v, ok := attrs["page"]; ok {
		page, ok := layout.ParseLength(v)
		if !ok || page.ToPX() < 0 {
			return fmt.Errorf("页面高度无效: %q", v)
		}
		scene.PageHeight = page.ToPX()
	}
	return nil
}

func resolveFont(name string, res resourceSet) (renderer.Font, error) {
	if name == "" {
		if f, ok := res.Fonts["Body"]; ok {
			return f, nil
		}
		return renderer.DefaultFont, nil
	}
	f, ok := res.Fonts[name]
	if !ok {
		return renderer.Font{}, fmt.Errorf("未声明的字体 %s", name)
	}
	return f, nil
}

func processFrameBlock(scene *Scene, block *dsl.Block, data []byte) error {
	if block == nil {
		return nil
	}
	for _, stmt := range block.Statements {
		cmd := stmt.Command
		switch {
		case stmt.Text != nil:
			appendParagraphs(&scene.Content, layout.Plain(binding.Interpolate(string(stmt.Text.Value), data)))
		case cmd == nil:
			continue
		case cmd.Name == "obstacle":
			g, err := parseObstacle(cmd)
			if err != nil {
				return err
			}
			scene.Geometry = append(scene.Geometry, g)
		case cmd.Name == "text":
			content, err := composeText(cmd, data)
			if err != nil {
				return err
			}
			appendParagraphs(&scene.Content, content)
		default:
			return fmt.Errorf("%s: frame 内不支持命令 %s", cmd.Pos, cmd.Name)
		}
	}
	return nil
}

// parseObstacle 解析 `obstacle x <len> y <len> width <len> height <len> [hidden]`。
func parseObstacle(cmd *dsl.Command) (layout.Geometry, error) {
	visible := true
	var args []*dsl.Lexeme
	for _, a := range cmd.Args {
		if a.Type == "Ident" && a.Value == "hidden" {
			visible = false
			continue
		}
		args = append(args, a)
	}
	attrs := parseArgs(args)

	var v [4]float64
	for i, key := range []string{"x", "y", "width", "height"} {
		raw, ok := attrs[key]
		if !ok {
			return layout.Geometry{}, fmt.Errorf("%s: obstacle 缺少 %s", cmd.Pos, key)
		}
		l, ok := layout.ParseLength(raw)
		if !ok {
			return layout.Geometry{}, fmt.Errorf("%s: obstacle 的 %s 无效: %q", cmd.Pos, key, raw)
		}
		v[i] = l.ToPX()
	}
	if v[2] < 0 || v[3] < 0 {
		return layout.Geometry{}, fmt.Errorf("%s: obstacle 尺寸不能为负", cmd.Pos)
	}
	return layout.Geometry{Left: v[0], Top: v[1], Right: v[0] + v[2], Bottom: v[1] + v[3], Visible: visible}, nil
}

// composeText 解析 `text [plain|markdown] { "..." }`，先插值再按格式转换。
func composeText(cmd *dsl.Command, data []byte) (layout.Content, error) {
	format := "plain"
	if len(cmd.Args) > 0 {
		format = strings.ToLower(cmd.Args[0].Value)
	}
	raw := binding.Interpolate(extractText(cmd.Block), data)
	switch format {
	case "plain":
		return layout.Plain(raw), nil
	case "markdown", "md":
		content, err := markup.Parse(raw)
		if err != nil {
			return layout.Content{}, fmt.Errorf("%s: %w", cmd.Pos, err)
		}
		return content, nil
	default:
		return layout.Content{}, fmt.Errorf("%s: 未知的文本格式 %s", cmd.Pos, format)
	}
}

// appendParagraphs 把 next 作为新段落追加到 dst，标注偏移随之平移。
func appendParagraphs(dst *layout.Content, next layout.Content) {
	offset := 0
	if dst.Text != "" {
		dst.Text += "\n"
		offset = len([]rune(dst.Text))
	}
	dst.Text += next.Text
	for _, a := range next.Annotations {
		a.Start += offset
		a.End += offset
		dst.Annotations = append(dst.Annotations, a)
	}
}

func collectResources(doc *dsl.Document) (resourceSet, error) {
	res := resourceSet{
		Fonts:  map[string]renderer.Font{},
		Colors: map[string]color.RGBA{},
	}
	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			switch stmt.Command.Name {
			case "font":
				font, err := parseFontResource(stmt.Command)
				if err != nil {
					return res, err
				}
				res.Fonts[font.Name] = font
			case "color":
				name, c, err := parseColorResource(stmt.Command)
				if err != nil {
					return res, err
				}
				res.Colors[name] = c
			}
		}
	}
	return res, nil
}

func collectMeta(doc *dsl.Document, data []byte) Meta {
	meta := Meta{Creator: defaultCreator}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			val := stmt.Assignment.Value
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = resolveValue(val, data)
			case "author":
				meta.Author = resolveValue(val, data)
			case "subject":
				meta.Subject = resolveValue(val, data)
			case "creator":
				meta.Creator = resolveValue(val, data)
			case "keywords":
				meta.Keywords = valueToStringSlice(val)
			}
		}
	}
	return meta
}

func parseFontResource(cmd *dsl.Command) (renderer.Font, error) {
	if len(cmd.Args) == 0 {
		return renderer.Font{}, fmt.Errorf("%s: font 缺少名称", cmd.Pos)
	}
	font := renderer.Font{Name: cmd.Args[0].Value, Size: renderer.DefaultFont.Size}
	if cmd.Block != nil {
		for _, stmt := range cmd.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			val := valueToString(stmt.Assignment.Value)
			switch stmt.Assignment.Key {
			case "src":
				font.Src = val
			case "bold":
				font.Bold = val
			case "style":
				font.Style = val
			case "size":
				if l, ok := layout.ParseLength(val); ok && l.ToPX() > 0 {
					font.Size = l.ToPX()
				}
			}
		}
	}
	if font.Src == "" {
		return renderer.Font{}, fmt.Errorf("%s: font %s 缺少 src", cmd.Pos, font.Name)
	}
	return font, nil
}

// parseColorResource 解析 `color Name #rrggbb`、`color Name = #rrggbb` 或 `color Name "#rrggbb"`，
// 名称之后必须恰好有一个取值。
func parseColorResource(cmd *dsl.Command) (string, color.RGBA, error) {
	args := cmd.Args
	if len(args) == 0 {
		return "", color.RGBA{}, fmt.Errorf("%s: color 缺少名称", cmd.Pos)
	}
	name := args[0].Value
	args = args[1:]
	if len(args) > 0 && args[0].Type == "Symbol" && args[0].Value == "=" {
		args = args[1:]
	}
	if len(args) != 1 {
		return "", color.RGBA{}, fmt.Errorf("%s: 颜色 %s 需要恰好一个取值，实际 %d 个", cmd.Pos, name, len(args))
	}
	c, err := paint.Hex(args[0].Value)
	if err != nil {
		return "", color.RGBA{}, fmt.Errorf("%s: 颜色 %s: %w", cmd.Pos, name, err)
	}
	return name, c, nil
}
