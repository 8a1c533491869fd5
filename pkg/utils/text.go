// Package utils 通用小工具
package utils

import "unicode/utf8"

// TruncateByRunes 按字符数截断，maxRunes <= 0 时返回空串
func TruncateByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}

// RuneLen 返回字符数
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
