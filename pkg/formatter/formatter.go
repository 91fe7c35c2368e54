package formatter

import (
	"strconv"
	"strings"
)

// CaptionLimit is Telegram's media caption budget.
const CaptionLimit = 1024

// TruncateCaption trims text to fit the Telegram caption limit, leaving
// room for an optional source suffix and ending with an ellipsis.
func TruncateCaption(text, suffix string) string {
	text = strings.TrimSpace(text)
	budget := CaptionLimit - len([]rune(suffix))
	runes := []rune(text)
	if len(runes) <= budget {
		return text + suffix
	}
	return string(runes[:budget-3]) + "..." + suffix
}

// FormatNumber converts an integer to a string with commas as thousands
// separators. Example: 1234567 -> "1,234,567"
func FormatNumber(n int) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
