package sanitizer

import (
	"regexp"
	"strings"
)

var (
	outboundPattern = regexp.MustCompile("[^\\p{L}\\p{M}\\p{N}\\s,.:;`!?'\"()\\[\\]{}，。、：；！？‘’“”（）【】｛｝]")
	symbolPattern   = regexp.MustCompile(`[^\p{L}\p{M}\p{N}\s]`)
	htmlTagPattern  = regexp.MustCompile(`<.*?>`)
	newlineReplacer = strings.NewReplacer("\r", "", "\n", "")
)

// SafeForOutbound keeps letters and digits of any script, whitespace and a
// small set of ASCII and CJK punctuation. Used on text handed to the
// embedding model; stored content is never rewritten.
func SafeForOutbound(s string) string {
	return outboundPattern.ReplaceAllString(s, "")
}

// FlattenNewlines removes line breaks so a passage fits on one citation line.
func FlattenNewlines(s string) string {
	return newlineReplacer.Replace(s)
}

// StripSymbols keeps letters, digits and whitespace only.
func StripSymbols(s string) string {
	return symbolPattern.ReplaceAllString(s, "")
}

func StripHTML(s string) string {
	return htmlTagPattern.ReplaceAllString(s, "")
}
