package layout

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler 丢弃所有日志，Enabled 返回 false 使调用方跳过格式化。
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger 设置 reflow 各包共用的日志记录器，传 nil 恢复默认的静默行为。
//
// 使用的级别：
//   - [slog.LevelDebug]：逐行排版细节（行带、可用范围、断行位置）
//   - [slog.LevelInfo]：一次排版/绘制的汇总
//   - [slog.LevelWarn]：被跳过的行带、被隐藏的内容等非致命情况
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger 返回当前日志记录器，子包通过它共享同一配置。
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
