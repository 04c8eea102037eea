package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	// Color 的长写法排在前面，否则 #1A4FD6 会先匹配成 #1A4 再剩下 FD6。
	sceneLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:px|pt|mm|cm|in|%|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=+\-*/%<>!?;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	typeNames = map[lexer.TokenType]string{}

	sceneParser = participle.MustBuild[Document](
		participle.Lexer(sceneLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

func init() {
	for name, tt := range sceneLexer.Symbols() {
		typeNames[tt] = name
	}
}

// Document 是场景文件的语法树根：`doc <name> <version> { ... }`。
type Document struct {
	Name     string     `parser:"Newline* 'doc' @Ident"`
	Version  string     `parser:"@Ident"`
	Sections []*Section `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section 三选一：meta、resources 或 frame。
type Section struct {
	Meta      *MetaSection      `parser:"  @@"`
	Resources *ResourcesSection `parser:"| @@"`
	Frame     *FrameSection     `parser:"| @@"`
}

type MetaSection struct {
	Block *Block `parser:"'meta' @@"`
}

type ResourcesSection struct {
	Block *Block `parser:"'resources' @@"`
}

// FrameSection 头部给出容器宽度、行高、页高与字体，块内是障碍物和文本。
type FrameSection struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Params []*Lexeme      `parser:"'frame' @@*"`
	Block  *Block         `parser:"@@"`
}

// Block 中的语句以换行或分号分隔。
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

type Statement struct {
	Assignment *Assignment  `parser:"  @@"`
	Command    *Command     `parser:"| @@"`
	Text       *TextLiteral `parser:"| @@"`
}

// Assignment 即 `key: value`。
type Assignment struct {
	Key   string `parser:"@Ident"`
	Value *Value `parser:"':' Newline* @@"`
}

// Command 即 `name arg arg ... [{ block }]`，参数在行尾、分号或花括号处结束。
type Command struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"@Ident"`
	Args  []*Lexeme      `parser:"@@*"`
	Block *Block         `parser:"( Newline* @@ )?"`
}

type TextLiteral struct {
	Value StringLiteral `parser:"@String"`
}

type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Array  *ArrayValue    `parser:"| @@"`
	Expr   *Expression    `parser:"| @@"`
}

type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | ';' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// Expression 保留原始记号，如 data.user.name，由调用方自行求值。
type Expression struct {
	Parts []*Lexeme
}

// Parse 读到行尾、分隔符或未配对的右括号为止；括号内的换行与逗号不终止表达式。
func (e *Expression) Parse(lex *lexer.PeekingLexer) error {
	depth := 0
	for {
		tok := lex.Peek()
		if endsExpression(tok, depth) {
			break
		}
		l, err := nextLexeme(lex)
		if err != nil {
			return err
		}
		if l.Type == "Symbol" {
			switch l.Value {
			case "(", "[":
				depth++
			case ")", "]":
				depth = max(depth-1, 0)
			}
		}
		e.Parts = append(e.Parts, l)
	}
	if len(e.Parts) == 0 {
		return participle.NextMatch
	}
	return nil
}

// Lexeme 是命令参数或表达式中的单个记号；字符串记号的 Value 已去掉引号。
type Lexeme struct {
	Type  string
	Value string
}

func (l *Lexeme) Parse(lex *lexer.PeekingLexer) error {
	if endsArgs(lex.Peek()) {
		return participle.NextMatch
	}
	next, err := nextLexeme(lex)
	if err != nil {
		return err
	}
	*l = *next
	return nil
}

// StringLiteral 在捕获时按 Go 语法去引号。
type StringLiteral string

func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("字符串为空")
	}
	v, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(v)
	return nil
}

// Parse 从 r 读取并解析场景文件。
func Parse(r io.Reader) (*Document, error) {
	return sceneParser.Parse("", r)
}

func ParseString(input string) (*Document, error) {
	return sceneParser.ParseString("", input)
}

func nextLexeme(lex *lexer.PeekingLexer) (*Lexeme, error) {
	tok := lex.Next()
	if tok.EOF() {
		return nil, participle.NextMatch
	}
	l := &Lexeme{Type: typeNames[tok.Type], Value: tok.Value}
	if l.Type == "String" {
		v, err := strconv.Unquote(tok.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tok.Pos, err)
		}
		l.Value = v
	}
	return l, nil
}

func endsArgs(tok *lexer.Token) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	switch typeNames[tok.Type] {
	case "Newline", "LBrace", "RBrace":
		return true
	case "Symbol":
		return tok.Value == ";"
	}
	return false
}

func endsExpression(tok *lexer.Token, depth int) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	if depth > 0 {
		return false
	}
	if endsArgs(tok) {
		return true
	}
	if typeNames[tok.Type] == "Symbol" {
		return tok.Value == "," || tok.Value == "]" || tok.Value == ")"
	}
	return false
}
