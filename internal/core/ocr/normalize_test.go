package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"form feed", "page one\n\fpage two", "page one\npage two"},
		{"trailing blanks", "a  \t\nb ", "a\nb"},
		{"inner runs kept", "Widget   W-1\t2", "Widget   W-1\t2"},
		{"ligature", "ﬁnance", "finance"},
		{"full-width digits", "３１００", "3100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestIsUsable(t *testing.T) {
	assert.False(t, IsUsable(""))
	assert.False(t, IsUsable(" \n\t\f"))
	assert.True(t, IsUsable(" x "))
}
