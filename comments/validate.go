package comments

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// 长度限制，按去除首尾空白后的字符数计算
const (
	MinTextLen   = 3
	MaxTextLen   = 500
	MinAuthorLen = 2
	MaxAuthorLen = 50
)

// ValidateText 返回去除首尾空白后的文本
func ValidateText(text string) (string, error) {
	return validateField("text", text, MinTextLen, MaxTextLen)
}

// ValidateAuthor 返回去除首尾空白后的作者名
func ValidateAuthor(author string) (string, error) {
	return validateField("author", author, MinAuthorLen, MaxAuthorLen)
}

func validateField(field, value string, min, max int) (string, error) {
	v := strings.TrimSpace(value)
	n := utf8.RuneCountInString(v)
	switch {
	case n == 0:
		return "", &ValidationError{Field: field, Reason: "is required"}
	case n < min:
		return "", &ValidationError{Field: field, Reason: fmt.Sprintf("must be at least %d characters", min)}
	case n > max:
		return "", &ValidationError{Field: field, Reason: fmt.Sprintf("must be at most %d characters", max)}
	}
	return v, nil
}
