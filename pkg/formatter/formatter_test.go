package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateCaptionShortTextUntouched(t *testing.T) {
	assert.Equal(t, "hello", TruncateCaption("hello", ""))
	assert.Equal(t, "hello [src]", TruncateCaption("hello", " [src]"))
}

func TestTruncateCaptionLongText(t *testing.T) {
	long := strings.Repeat("x", 2000)

	got := TruncateCaption(long, "")
	assert.Len(t, []rune(got), CaptionLimit)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestTruncateCaptionLeavesRoomForSuffix(t *testing.T) {
	long := strings.Repeat("x", 2000)
	suffix := " [source]"

	got := TruncateCaption(long, suffix)
	assert.Len(t, []rune(got), CaptionLimit)
	assert.True(t, strings.HasSuffix(got, "..."+suffix))
}

func TestTruncateCaptionMultibyte(t *testing.T) {
	long := strings.Repeat("д", 2000)

	got := TruncateCaption(long, "")
	assert.Len(t, []rune(got), CaptionLimit)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1,000", FormatNumber(1000))
	assert.Equal(t, "1,234,567", FormatNumber(1234567))
	assert.Equal(t, "-1,234", FormatNumber(-1234))
}
