// Package jsdoc parses the JavaScript doc-comment dialect understood by autojs.
//
// A doc comment is a block comment opening with "/**". Text before the first
// block tag is the description; the recognised block tags are @param (@arg,
// @argument), @throws (@exception), @returns (@return), @class (@constructor),
// @classdesc, @function (@func, @method), @memberof, @name, @static,
// @instance, @private, @deprecated, @example, @see and @since. Any other tag
// is kept verbatim in Comment.Tags.
package jsdoc

import (
	"fmt"
	"strings"
)

// Comment is the structured form of one doc comment.
type Comment struct {
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Params      []Param `json:"params,omitempty" yaml:"params,omitempty"`
	Throws      []Typed `json:"throws,omitempty" yaml:"throws,omitempty"`
	Returns     *Typed  `json:"returns,omitempty" yaml:"returns,omitempty"`

	IsClass   bool   `json:"isClass,omitempty" yaml:"isClass,omitempty"`
	ClassDesc string `json:"classdesc,omitempty" yaml:"classdesc,omitempty"`

	// Name comes from @name or from the argument of @function.
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	MemberOf string `json:"memberof,omitempty" yaml:"memberof,omitempty"`
	Scope    string `json:"scope,omitempty" yaml:"scope,omitempty"` // "static", "instance" or ""

	Private    bool     `json:"private,omitempty" yaml:"private,omitempty"`
	Deprecated *string  `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Examples   []string `json:"examples,omitempty" yaml:"examples,omitempty"`
	See        []string `json:"see,omitempty" yaml:"see,omitempty"`
	Since      string   `json:"since,omitempty" yaml:"since,omitempty"`

	Tags []Tag `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Param is a documented parameter. Nested properties keep their dotted name
// (e.g. "options.key").
type Param struct {
	Name        string   `json:"name" yaml:"name"`
	Types       []string `json:"types,omitempty" yaml:"types,omitempty"`
	Default     string   `json:"default,omitempty" yaml:"default,omitempty"`
	Optional    bool     `json:"optional,omitempty" yaml:"optional,omitempty"`
	Nullable    bool     `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Variadic    bool     `json:"variadic,omitempty" yaml:"variadic,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// RootName returns the top-level name of a possibly nested parameter.
func (p Param) RootName() string {
	if i := strings.IndexAny(p.Name, ".["); i > 0 {
		return p.Name[:i]
	}
	return p.Name
}

// Typed is a type-annotated description, as carried by @throws and @returns.
type Typed struct {
	Types       []string `json:"types,omitempty" yaml:"types,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Tag is a block tag the parser does not interpret.
type Tag struct {
	Name string `json:"name" yaml:"name"`
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
	Line int    `json:"line" yaml:"line"`
}

// ParseError reports a malformed comment. Line is relative to the first line
// of the comment (0-based).
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("doc comment line %d: %s", e.Line+1, e.Msg)
}

// IsDocComment reports whether raw is a "/**" block comment.
func IsDocComment(raw string) bool {
	raw = strings.TrimSpace(raw)
	return strings.HasPrefix(raw, "/**") && !strings.HasPrefix(raw, "/***") && strings.HasSuffix(raw, "*/")
}

// rawTag is a block tag with its continuation lines, before interpretation.
type rawTag struct {
	name  string
	lines []string
	line  int
}

func (t rawTag) text() string {
	return collapse(strings.Join(t.lines, "\n"))
}

// Parse parses a doc comment, with or without its comment delimiters.
func Parse(raw string) (*Comment, error) {
	lines := stripGutter(raw)

	var descLines []string
	var tags []rawTag
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if name, rest, ok := splitTag(trimmed); ok {
			tags = append(tags, rawTag{name: name, lines: []string{rest}, line: i})
			continue
		}
		if len(tags) == 0 {
			descLines = append(descLines, line)
			continue
		}
		// Continuation of the previous tag.
		cur := &tags[len(tags)-1]
		cur.lines = append(cur.lines, line)
	}

	c := &Comment{Description: paragraphs(descLines)}
	for _, t := range tags {
		if err := c.apply(t); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Comment) apply(t rawTag) error {
	switch t.name {
	case "param", "arg", "argument":
		p, err := parseParam(t.text())
		if err != nil {
			return &ParseError{Line: t.line, Msg: fmt.Sprintf("@%s: %v", t.name, err)}
		}
		c.Params = append(c.Params, p)
	case "throws", "exception":
		typed, err := parseTyped(t.text())
		if err != nil {
			return &ParseError{Line: t.line, Msg: fmt.Sprintf("@%s: %v", t.name, err)}
		}
		c.Throws = append(c.Throws, typed)
	case "returns", "return":
		typed, err := parseTyped(t.text())
		if err != nil {
			return &ParseError{Line: t.line, Msg: fmt.Sprintf("@%s: %v", t.name, err)}
		}
		c.Returns = &typed
	case "class", "constructor":
		c.IsClass = true
		// "@class Name" names the class.
		if name := firstWord(t.text()); name != "" && c.Name == "" {
			c.Name = name
		}
	case "classdesc":
		c.ClassDesc = paragraphs(t.lines)
	case "function", "func", "method":
		if name := firstWord(t.text()); name != "" {
			c.Name = name
		}
	case "name":
		c.Name = firstWord(t.text())
	case "memberof":
		c.MemberOf = strings.TrimSuffix(firstWord(t.text()), "!")
	case "static":
		c.Scope = "static"
	case "instance":
		c.Scope = "instance"
	case "private":
		c.Private = true
	case "deprecated":
		text := t.text()
		c.Deprecated = &text
	case "example":
		c.Examples = append(c.Examples, verbatim(t.lines))
	case "see":
		c.See = append(c.See, t.text())
	case "since":
		c.Since = t.text()
	default:
		c.Tags = append(c.Tags, Tag{Name: t.name, Text: t.text(), Line: t.line})
	}
	return nil
}

// stripGutter removes the comment delimiters and the leading " * " of every
// line.
func stripGutter(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "/**")
	raw = strings.TrimSuffix(raw, "*/")

	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		l = strings.TrimRight(l, " \t\r")
		trimmed := strings.TrimLeft(l, " \t")
		if strings.HasPrefix(trimmed, "*") {
			trimmed = strings.TrimPrefix(trimmed, "*")
			trimmed = strings.TrimPrefix(trimmed, " ")
			lines[i] = trimmed
			continue
		}
		if i == 0 {
			lines[i] = strings.TrimLeft(l, " \t")
			continue
		}
		lines[i] = l
	}
	return lines
}

// splitTag recognises "@name rest" at the start of a line.
func splitTag(line string) (name, rest string, ok bool) {
	if len(line) < 2 || line[0] != '@' || !isTagStart(line[1]) {
		return "", "", false
	}
	end := 1
	for end < len(line) && isTagChar(line[end]) {
		end++
	}
	return line[1:end], strings.TrimSpace(line[end:]), true
}

func isTagStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isTagChar(b byte) bool {
	return isTagStart(b) || (b >= '0' && b <= '9') || b == '_' || b == '-'
}

// paragraphs trims each line and joins them, keeping blank-line paragraph
// breaks as "\n\n".
func paragraphs(lines []string) string {
	var paras []string
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			paras = append(paras, strings.Join(cur, "\n"))
			cur = nil
		}
	}
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			flush()
			continue
		}
		cur = append(cur, l)
	}
	flush()
	return strings.Join(paras, "\n\n")
}

// verbatim keeps line structure and relative indentation, dropping leading
// and trailing blank lines.
func verbatim(lines []string) string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// collapse folds all whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// parseParam parses the text after @param:
//
//	{Type} name description
//	{Type} [name=default] - description
func parseParam(text string) (Param, error) {
	var p Param
	rest := text
	if strings.HasPrefix(rest, "{") {
		expr, after, err := cutBraced(rest)
		if err != nil {
			return p, err
		}
		te := ParseType(expr)
		p.Types, p.Optional, p.Nullable, p.Variadic = te.Alternatives, te.Optional, te.Nullable, te.Variadic
		rest = strings.TrimSpace(after)
	}

	if rest == "" {
		return p, fmt.Errorf("missing parameter name")
	}

	if strings.HasPrefix(rest, "[") {
		inner, after, err := cutBracketed(rest)
		if err != nil {
			return p, err
		}
		p.Optional = true
		name, def, hasDefault := strings.Cut(inner, "=")
		p.Name = strings.TrimSpace(name)
		if hasDefault {
			p.Default = strings.TrimSpace(def)
		}
		rest = after
	} else {
		name := firstWord(rest)
		p.Name = name
		rest = strings.TrimPrefix(rest, name)
	}

	if strings.HasPrefix(p.Name, "...") {
		p.Variadic = true
		p.Name = strings.TrimPrefix(p.Name, "...")
	}
	if p.Name == "" {
		return p, fmt.Errorf("missing parameter name")
	}
	p.Description = trimDash(rest)
	return p, nil
}

// parseTyped parses "{A|B} description" where the type is optional.
func parseTyped(text string) (Typed, error) {
	var t Typed
	rest := text
	if strings.HasPrefix(rest, "{") {
		expr, after, err := cutBraced(rest)
		if err != nil {
			return t, err
		}
		t.Types = ParseType(expr).Alternatives
		rest = after
	}
	t.Description = trimDash(rest)
	return t, nil
}

func trimDash(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "- ") {
		s = strings.TrimSpace(s[2:])
	} else if s == "-" {
		s = ""
	}
	return s
}
