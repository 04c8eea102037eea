package layout

import "unicode"

// BreakChunk 返回 text 中下一行的断行偏移（rune 个数），不在单词中间断开。
//
// 规则依次为：整段放得下则全部返回；断点前一个字符是空白则直接断开；断点处是空白则把它
// 带到本行末尾；否则向前找最近的空白并在其后断开；一个单词比整行还宽时才在词内强制断开。
// 对非空输入至少返回 1，保证调用方每次都能前进。
func BreakChunk(text []rune, maxWidth float64, fit FitFunc) int {
	n := len(text)
	if n == 0 {
		return 0
	}
	l := fit(string(text), maxWidth)
	if l <= 0 {
		return 1
	}
	if l >= n {
		return n
	}
	if unicode.IsSpace(text[l-1]) {
		return l
	}
	if unicode.IsSpace(text[l]) {
		return l + 1
	}
	for p := l - 1; p >= 0; p-- {
		if unicode.IsSpace(text[p]) {
			return p + 1
		}
	}
	return l
}
