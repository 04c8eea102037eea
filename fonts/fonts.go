package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体使用 Go 字体家族，按名称索引。
var builtin = map[string][]byte{
	"goregular":    goregular.TTF,
	"gobold":       gobold.TTF,
	"goitalic":     goitalic.TTF,
	"gobolditalic": gobolditalic.TTF,
	"gomono":       gomono.TTF,
}

// Regular 与 Bold 是未指定字体时的默认名称。
const (
	Regular = "goregular"
	Bold    = "gobold"
)

// Load 返回内置字体的字节数据，name 可写为 "builtin:goregular" 或直接 "goregular"。
func Load(name string) ([]byte, error) {
	name = strings.TrimPrefix(strings.TrimPrefix(name, "builtin:"), "built-in:")
	data, ok := builtin[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("找不到内置字体 %s", name)
	}
	return data, nil
}

// IsBuiltin 判断 src 是否指向内置字体。
func IsBuiltin(src string) bool {
	return strings.HasPrefix(src, "builtin:") || strings.HasPrefix(src, "built-in:")
}
