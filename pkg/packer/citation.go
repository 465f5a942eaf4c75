package packer

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrNoCitations = errors.New("no bracketed citation list in reply")

// Citation names one passage the model may echo back.
type Citation struct {
	TextGuid string `json:"textGuid"`
	TextName string `json:"textName"`
}

// EncodeCitations renders the bracket convention the selection prompt asks
// the model to reply with.
func EncodeCitations(citations []Citation) string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, c := range citations {
		if i > 0 {
			sb.WriteString(", ")
		}
		guid, _ := json.Marshal(c.TextGuid)
		name, _ := json.Marshal(c.TextName)
		sb.WriteString("{textGuid: ")
		sb.Write(guid)
		sb.WriteString(", textName: ")
		sb.Write(name)
		sb.WriteString("}")
	}
	sb.WriteString("]")
	return sb.String()
}

// DecodeCitations extracts the first bracketed list from a model reply that
// parses as citations. Keys may be quoted or bare. Brackets inside string
// values do not end a list.
func DecodeCitations(reply string) ([]Citation, error) {
	lastErr := ErrNoCitations
	for i := 0; i < len(reply); i++ {
		if reply[i] != '[' {
			continue
		}
		end := closingBracket(reply, i)
		if end < 0 {
			continue
		}
		span := reply[i : end+1]
		for _, candidate := range []string{span, quoteBareKeys(span)} {
			var citations []Citation
			if err := json.Unmarshal([]byte(candidate), &citations); err != nil {
				lastErr = err
				continue
			}
			return citations, nil
		}
	}
	return nil, lastErr
}

// closingBracket returns the index of the bracket that closes s[open], or -1.
func closingBracket(s string, open int) int {
	depth := 0
	inString := false
	for i := open; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// quoteBareKeys rewrites `{key: v}` as `{"key": v}`, leaving string literals
// untouched.
func quoteBareKeys(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 16)
	inString := false
	expectKey := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			sb.WriteByte(c)
			switch c {
			case '\\':
				if i+1 < len(s) {
					i++
					sb.WriteByte(s[i])
				}
			case '"':
				inString = false
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
			expectKey = false
		case c == '{' || c == ',':
			expectKey = true
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
		case expectKey && isIdentStart(c):
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			k := j
			for k < len(s) && (s[k] == ' ' || s[k] == '\t') {
				k++
			}
			expectKey = false
			if k < len(s) && s[k] == ':' {
				sb.WriteByte('"')
				sb.WriteString(s[i:j])
				sb.WriteByte('"')
				i = j - 1
				continue
			}
		default:
			expectKey = false
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
