package document

import (
	"strings"

	"github.com/ByLCY/reflow/binding"
	"github.com/ByLCY/reflow/dsl"
)

// parseArgs 把 `key value key value ...` 形式的参数转成映射，末尾落单的参数被忽略。
func parseArgs(args []*dsl.Lexeme) map[string]string {
	result := map[string]string{}
	for cursor := 0; cursor < len(args)-1; cursor += 2 {
		result[args[cursor].Value] = args[cursor+1].Value
	}
	return result
}

func extractText(block *dsl.Block) string {
	if block == nil {
		return ""
	}
	var builder strings.Builder
	for _, stmt := range block.Statements {
		if stmt.Text != nil {
			builder.WriteString(string(stmt.Text.Value))
		}
	}
	return builder.String()
}

// resolveValue 在 valueToString 的基础上处理数据绑定：字符串做 ${path} 插值，
// data.xxx 形式的表达式直接取值，取不到时保留原表达式文本。
func resolveValue(val *dsl.Value, data []byte) string {
	if val == nil {
		return ""
	}
	if val.String != nil {
		return binding.Interpolate(string(*val.String), data)
	}
	raw := valueToString(val)
	if val.Expr != nil {
		if path, ok := strings.CutPrefix(raw, "data."); ok {
			if v, found := binding.Lookup(data, path); found {
				return v
			}
		}
	}
	return raw
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Expr != nil:
		var builder strings.Builder
		for _, part := range val.Expr.Parts {
			builder.WriteString(part.Value)
		}
		return builder.String()
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}
