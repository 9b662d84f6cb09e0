package identity

import (
	"regexp"
	"strings"
)

// 与 strings.TrimSpace 一致，包含Unicode空白和NEL(U+0085)
var whitespace = regexp.MustCompile(`[\s\v\x{85}\p{Z}]+`)

// Normalize 去除首尾空白并把内部连续空白压缩为一个空格
func Normalize(value string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(value), " ")
}
