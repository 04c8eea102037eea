package markup

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/ByLCY/reflow/layout"
)

// Parse 把 Markdown 转成带标注的排版内容。
//
// 块级元素各占一个段落，段落之间用单个 '\n' 连接；软换行变为空格，硬换行变为 '\n'。
// *em* 与 **strong** 产生 emphasis 标注，标题整体为 emphasis，[label](url) 与自动链接产生
// Target 为 url 的 link 标注。标注偏移以 rune 计，与返回的 Text 对应。
// 输入必须是合法的 UTF-8，否则 rune 偏移无法与原文对应。
func Parse(src string) (layout.Content, error) {
	if !utf8.ValidString(src) {
		return layout.Content{}, fmt.Errorf("markup: 输入不是合法的 UTF-8 文本")
	}
	source := []byte(src)
	md := goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))
	doc := md.Parser().Parse(text.NewReader(source))
	b := &builder{src: source}
	b.blocks(doc)
	return layout.Content{Text: string(b.text), Annotations: b.annots}, nil
}

// BindLinks 返回 content 的副本，其中每个 link 标注的 OnClick 都被设为 onClick。
func BindLinks(content layout.Content, onClick func(layout.Link)) layout.Content {
	out := layout.Content{Text: content.Text, Annotations: make([]layout.Annotation, len(content.Annotations))}
	for i, a := range content.Annotations {
		if a.Style.Kind == layout.KindLink && a.Style.Link != nil {
			a.Style = layout.LinkStyle(a.Style.Link.Target, onClick)
		}
		out.Annotations[i] = a
	}
	return out
}

type builder struct {
	src        []byte
	text       []rune
	annots     []layout.Annotation
	paragraphs int
	prefix     string // 下一个段落开头要写入的列表标记
}

func (b *builder) write(s string) {
	b.text = append(b.text, []rune(s)...)
}

func (b *builder) newParagraph() {
	if b.paragraphs > 0 {
		b.text = append(b.text, '\n')
	}
	b.paragraphs++
	if b.prefix != "" {
		b.write(b.prefix)
		b.prefix = ""
	}
}

func (b *builder) annotate(start int, style layout.Style) {
	if end := len(b.text); end > start {
		b.annots = append(b.annots, layout.Annotation{Start: start, End: end, Style: style})
	}
}

func (b *builder) blocks(node ast.Node) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			b.newParagraph()
			b.inline(c)
		case *ast.Heading:
			b.newParagraph()
			start := len(b.text)
			b.inline(c)
			b.annotate(start, layout.EmphasisStyle())
		case *ast.List:
			n := c.Start
			for item := c.FirstChild(); item != nil; item = item.NextSibling() {
				if c.IsOrdered() {
					b.prefix = fmt.Sprintf("%d. ", n)
					n++
				} else {
					b.prefix = "• "
				}
				b.blocks(item)
				b.prefix = ""
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := c.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.newParagraph()
				b.write(strings.TrimRight(string(seg.Value(b.src)), "\r\n"))
			}
		case *ast.ThematicBreak, *ast.HTMLBlock:
		default:
			if child.HasChildren() {
				b.blocks(child)
			}
		}
	}
}

func (b *builder) inline(node ast.Node) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			b.write(string(c.Segment.Value(b.src)))
			switch {
			case c.HardLineBreak():
				b.write("\n")
			case c.SoftLineBreak():
				b.write(" ")
			}
		case *ast.String:
			b.write(string(c.Value))
		case *ast.Emphasis:
			start := len(b.text)
			b.inline(c)
			b.annotate(start, layout.EmphasisStyle())
		case *ast.Link:
			start := len(b.text)
			b.inline(c)
			b.annotate(start, layout.LinkStyle(string(c.Destination), nil))
		case *ast.AutoLink:
			start := len(b.text)
			label := string(c.Label(b.src))
			if label == "" {
				label = string(c.URL(b.src))
			}
			b.write(label)
			b.annotate(start, layout.LinkStyle(string(c.URL(b.src)), nil))
		case *ast.RawHTML:
		default:
			if child.HasChildren() {
				b.inline(child)
			}
		}
	}
}
