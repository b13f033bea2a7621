package binder

import (
	"fmt"
	"strings"
)

// Token is one piece of a template: literal text or a key to look up.
type Token struct {
	Literal string
	Key     string
	IsKey   bool
}

// ParseTemplate splits s into literal and key tokens. Keys are written
// {{key}} or ${key}. A template without tokens is a single literal.
func ParseTemplate(s string) []Token {
	var tokens []Token
	for len(s) > 0 {
		start, opener, closer := nextToken(s)
		if start < 0 {
			tokens = append(tokens, Token{Literal: s})
			break
		}
		end := strings.Index(s[start+len(opener):], closer)
		if end < 0 {
			tokens = append(tokens, Token{Literal: s})
			break
		}
		if start > 0 {
			tokens = append(tokens, Token{Literal: s[:start]})
		}
		key := strings.TrimSpace(s[start+len(opener) : start+len(opener)+end])
		tokens = append(tokens, Token{Key: key, IsKey: true})
		s = s[start+len(opener)+end+len(closer):]
	}
	return tokens
}

// Exec fills in the keys of tokens from provide.
func Exec(tokens []Token, provide func(key string) any) string {
	var sb strings.Builder
	for _, t := range tokens {
		if !t.IsKey {
			sb.WriteString(t.Literal)
			continue
		}
		sb.WriteString(format(provide(t.Key)))
	}
	return sb.String()
}

func nextToken(s string) (int, string, string) {
	curly := strings.Index(s, "{{")
	dollar := strings.Index(s, "${")
	switch {
	case curly < 0 && dollar < 0:
		return -1, "", ""
	case dollar < 0 || (curly >= 0 && curly < dollar):
		return curly, "{{", "}}"
	default:
		return dollar, "${", "}"
	}
}

func format(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
