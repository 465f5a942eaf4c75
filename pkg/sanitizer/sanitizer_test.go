package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeForOutbound(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain ascii", "Hello, world!", "Hello, world!"},
		{"drops symbols", "price: $5 & tax #1", "price: 5  tax 1"},
		{"keeps cjk text and punctuation", "你好，世界！", "你好，世界！"},
		{"drops emoji", "ok 👍", "ok "},
		{"keeps brackets and quotes", `say "hi" (now) [x] {y}`, `say "hi" (now) [x] {y}`},
		{"keeps newlines", "a\nb", "a\nb"},
		{"keeps other scripts", "Привет мир", "Привет мир"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeForOutbound(tt.input))
		})
	}
}

func TestFlattenNewlines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unix", "line one\nline two", "line oneline two"},
		{"windows", "a\r\nb", "ab"},
		{"none", "single", "single"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FlattenNewlines(tt.input))
		})
	}
}

func TestStripSymbols(t *testing.T) {
	assert.Equal(t, "Hello world 123", StripSymbols("Hello, world! 123."))
	assert.Equal(t, "中文內容", StripSymbols("中文，內容。"))
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "bold and link", StripHTML("<b>bold</b> and <a href=\"x\">link</a>"))
}
