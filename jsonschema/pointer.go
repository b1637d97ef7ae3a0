package jsonschema

import (
	"errors"
	"strings"
)

// ErrInvalidPointer reports a JSON Pointer that is not absolute.
var ErrInvalidPointer = errors.New("jsonschema: JSON Pointer must be empty or start with '/'")

// EscapeToken escapes one reference token per RFC 6901 ('~' -> '~0', '/' -> '~1').
func EscapeToken(tok string) string {
	return strings.ReplaceAll(strings.ReplaceAll(tok, "~", "~0"), "/", "~1")
}

// UnescapeToken reverses EscapeToken.
func UnescapeToken(tok string) string {
	return strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")
}

// SplitPointer returns the unescaped tokens of an absolute JSON Pointer.
// The empty pointer (the whole document) yields no tokens.
func SplitPointer(ptr string) ([]string, error) {
	if ptr == "" {
		return nil, nil
	}
	if !strings.HasPrefix(ptr, "/") {
		return nil, ErrInvalidPointer
	}
	parts := strings.Split(ptr[1:], "/")
	for i, p := range parts {
		parts[i] = UnescapeToken(p)
	}
	return parts, nil
}

// JoinPointer escapes and joins tokens into an absolute JSON Pointer.
func JoinPointer(tokens ...string) string {
	if len(tokens) == 0 {
		return ""
	}
	b := &strings.Builder{}
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(EscapeToken(t))
	}
	return b.String()
}
