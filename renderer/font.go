package renderer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/reflow/fonts"
)

// Font describes the font a backend measures and draws with. Src may be a file path
// (relative to the backend's base directory), builtin:<name> or user-supplied blob names.
type Font struct {
	Name  string  `json:"name"`
	Src   string  `json:"src"`
	Bold  string  `json:"bold,omitempty"` // optional source of the bold face
	Style string  `json:"style,omitempty"`
	Size  float64 `json:"size"` // px
}

// DefaultFont is the builtin Go font at 16px.
var DefaultFont = Font{Name: "Body", Src: "builtin:" + fonts.Regular, Bold: "builtin:" + fonts.Bold, Size: 16}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// FontLoader resolves font sources into font file bytes.
type FontLoader struct {
	BaseDir string
	blobs   map[string][]byte
}

// NewFontLoader ingests user-provided resources; entries that cannot be read are
// skipped and reported when they are actually used.
func NewFontLoader(baseDir string, resources map[string]Resource) *FontLoader {
	l := &FontLoader{BaseDir: baseDir, blobs: map[string][]byte{}}
	for name, res := range resources {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			l.blobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			if data, err := os.ReadFile(res.Path); err == nil && len(data) > 0 {
				l.blobs[name] = data
			}
		}
	}
	return l
}

// Load returns the font bytes for src.
func (l *FontLoader) Load(src string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("字体缺少 src")
	}
	if fonts.IsBuiltin(src) {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		if blob, ok := l.blobs[name]; ok {
			return blob, nil
		}
		return fonts.Load(name)
	}
	path := src
	if l.BaseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 builtin:）", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.BaseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}
