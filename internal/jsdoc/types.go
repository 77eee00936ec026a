package jsdoc

import (
	"errors"
	"strings"
)

// TypeExpr is a parsed type annotation such as {?(string|number)=}.
type TypeExpr struct {
	Alternatives []string
	Optional     bool // trailing "="
	Nullable     bool // leading "?"
	Variadic     bool // leading "..."
}

// String reassembles the alternatives the way they are rendered: joined by
// "|" without modifiers.
func (t TypeExpr) String() string {
	return strings.Join(t.Alternatives, "|")
}

// ParseType parses the inside of a {...} type annotation. Unions are split on
// top-level "|" only, so generics such as Object.<string, (A|B)> stay whole.
func ParseType(expr string) TypeExpr {
	var te TypeExpr
	expr = strings.TrimSpace(expr)

	if strings.HasPrefix(expr, "...") {
		te.Variadic = true
		expr = strings.TrimSpace(expr[3:])
	}
	if strings.HasSuffix(expr, "=") {
		te.Optional = true
		expr = strings.TrimSpace(strings.TrimSuffix(expr, "="))
	}
	switch {
	case strings.HasPrefix(expr, "?"):
		te.Nullable = true
		expr = strings.TrimSpace(expr[1:])
	case strings.HasPrefix(expr, "!"):
		expr = strings.TrimSpace(expr[1:])
	}
	expr = unwrapParens(expr)

	for _, alt := range splitTopLevel(expr, '|') {
		if alt = strings.TrimSpace(alt); alt != "" {
			te.Alternatives = append(te.Alternatives, alt)
		}
	}
	return te
}

// unwrapParens strips one pair of parentheses enclosing the whole expression.
func unwrapParens(expr string) string {
	for strings.HasPrefix(expr, "(") && strings.HasSuffix(expr, ")") {
		if matchingClose(expr, 0, '(', ')') != len(expr)-1 {
			return expr
		}
		expr = strings.TrimSpace(expr[1 : len(expr)-1])
	}
	return expr
}

func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '{', '[', '<':
			depth++
		case ')', '}', ']', '>':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// matchingClose returns the index of the bracket closing the one at open, or
// -1 when it is unbalanced.
func matchingClose(s string, open int, o, c byte) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case o:
			depth++
		case c:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

var (
	errUnterminatedType    = errors.New("unterminated type expression")
	errUnterminatedBracket = errors.New("unterminated optional parameter")
)

// cutBraced splits "{expr} rest" into expr and rest.
func cutBraced(s string) (expr, rest string, err error) {
	end := matchingClose(s, 0, '{', '}')
	if end < 0 {
		return "", "", errUnterminatedType
	}
	return s[1:end], s[end+1:], nil
}

// cutBracketed splits "[name=default] rest" into its inside and rest.
func cutBracketed(s string) (inner, rest string, err error) {
	end := matchingClose(s, 0, '[', ']')
	if end < 0 {
		return "", "", errUnterminatedBracket
	}
	return s[1:end], s[end+1:], nil
}
