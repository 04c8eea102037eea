package binding

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 JSON 数据 data 中的值。
// 路径既支持 gjson 语法（items.0.name），也支持下标写法（items[0].name）。
// 若 data 为空、不是合法 JSON 或路径不存在，则保留原占位符。
func Interpolate(text string, data []byte) string {
	if len(data) == 0 || !gjson.ValidBytes(data) {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path := toGJSONPath(strings.TrimSpace(groups[1]))
		if path == "" {
			return match
		}
		val := gjson.GetBytes(data, path)
		if !val.Exists() {
			return match
		}
		return val.String()
	})
}

// Lookup 返回 path 对应的值以及是否存在。
func Lookup(data []byte, path string) (string, bool) {
	path = toGJSONPath(strings.TrimSpace(path))
	if path == "" || len(data) == 0 {
		return "", false
	}
	val := gjson.GetBytes(data, path)
	return val.String(), val.Exists()
}

// toGJSONPath 把 a.b[0][1] 改写为 a.b.0.1。
func toGJSONPath(path string) string {
	if !strings.Contains(path, "[") {
		return path
	}
	var b strings.Builder
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		parts := indexes
		if name != "" {
			parts = append([]string{name}, indexes...)
		}
		for _, p := range parts {
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(p)
		}
	}
	return b.String()
}

func parseSegment(segment string) (string, []string) {
	name := segment
	indexes := []string{}
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				break
			}
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, strings.TrimSpace(rest[1:end]))
			rest = rest[end+1:]
		}
	}
	return name, indexes
}
