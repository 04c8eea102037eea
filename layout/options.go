package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOptions 表示调用方传入的排版参数不合法。
	ErrInvalidOptions = errors.New("layout: invalid options")
	// ErrInvalidAnnotation 表示样式标注的区间不合法（Start > End）。
	ErrInvalidAnnotation = errors.New("layout: invalid annotation")
)

// Options 配置一次排版所需的容器尺寸与度量后端。
type Options struct {
	Width      float64  // 容器宽度
	LineHeight float64  // 行高，同时也是每个行带的高度
	PageHeight float64  // 可选：>0 时超过该高度的行会被隐藏
	Measurer   Measurer // 字形度量后端
}

// Measurer 负责字形度量，由具体的渲染后端实现。
type Measurer interface {
	// Fit 返回 text 开头能在 maxWidth 内绘制的字符（rune）个数。
	Fit(text string, maxWidth float64) int
	// Measure 返回 text 的绘制宽度。
	Measure(text string) float64
}

// FitFunc 与 MeasureFunc 是 Measurer 的函数形式，便于纯函数组件直接使用。
type (
	FitFunc     func(text string, maxWidth float64) int
	MeasureFunc func(text string) float64
)

func (o Options) validate() error {
	if o.Measurer == nil {
		return fmt.Errorf("%w: 缺少度量后端 Measurer", ErrInvalidOptions)
	}
	if o.Width <= 0 {
		return fmt.Errorf("%w: 容器宽度必须为正数，实际 %g", ErrInvalidOptions, o.Width)
	}
	if o.LineHeight <= 0 {
		return fmt.Errorf("%w: 行高必须为正数，实际 %g", ErrInvalidOptions, o.LineHeight)
	}
	if o.PageHeight < 0 {
		return fmt.Errorf("%w: 页面高度不能为负数，实际 %g", ErrInvalidOptions, o.PageHeight)
	}
	return nil
}
