// Package autodoc turns scanned JavaScript symbols and the directives that
// reference them into renderable entries.
package autodoc

import (
	"strings"

	"github.com/example/autojs/internal/directive"
	"github.com/example/autojs/internal/jssource"
)

// BlockKind identifies a page block.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockBullet
	BlockTitle
	BlockEntry
	// BlockDirective is a directive that was not resolved into an entry.
	BlockDirective
)

// Block is one element of a page or of an entry body.
type Block struct {
	Kind      BlockKind
	Text      string
	Underline byte
	Entry     *Entry
	Directive *directive.Directive
	Line      int
}

// Page is a documentation source with its directives resolved.
type Page struct {
	Name   string
	Blocks []Block
}

// Param is one parameter as shown in the Arguments field.
type Param struct {
	Name        string   `json:"name" yaml:"name"`
	Types       []string `json:"types,omitempty" yaml:"types,omitempty"`
	Default     string   `json:"default,omitempty" yaml:"default,omitempty"`
	Optional    bool     `json:"optional,omitempty" yaml:"optional,omitempty"`
	Variadic    bool     `json:"variadic,omitempty" yaml:"variadic,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	// Documented is false for parameters known only from the code.
	Documented bool `json:"documented" yaml:"documented"`
}

// Field is a typed description in the Throws or Returns field.
type Field struct {
	Types       []string `json:"types,omitempty" yaml:"types,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// TypeString joins the alternatives of a union with "|".
func (f Field) TypeString() string {
	return strings.Join(f.Types, "|")
}

// Entry is one documented function, method or class, ready for rendering.
type Entry struct {
	Kind     jssource.Kind
	Name     string
	Longname string

	// Formal lists the signature parameters, e.g. "b=3" or "...rest".
	Formal []string
	// Explicit replaces the formal list when the directive spells one out.
	Explicit string

	Description []string
	Params      []Param
	Throws      []Field
	Returns     *Field
	Deprecated  *string
	Examples    []string
	See         []string

	Content []Block
	Members []*Entry

	File string
	Line int
}

// Signature returns the parenthesized parameter list.
func (e *Entry) Signature() string {
	if e.Explicit != "" {
		return e.Explicit
	}
	return "(" + strings.Join(e.Formal, ", ") + ")"
}

// Heading returns the signature line, e.g. "class ContainingClass(ho)".
func (e *Entry) Heading() string {
	h := e.Name + e.Signature()
	if e.Kind == jssource.KindClass {
		h = "class " + h
	}
	return h
}

// DocumentedParams returns the parameters that carry documentation.
func (e *Entry) DocumentedParams() []Param {
	var out []Param
	for _, p := range e.Params {
		if p.Documented {
			out = append(out, p)
		}
	}
	return out
}

func (e *Entry) param(name string) *Param {
	for i := range e.Params {
		if e.Params[i].Name == name {
			return &e.Params[i]
		}
	}
	return nil
}

// paragraphs splits a comment description into paragraphs.
func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(strings.TrimSpace(text), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// shortName drops every path segment but the last.
func shortName(dotted string) string {
	if i := strings.LastIndexByte(dotted, '.'); i >= 0 {
		return dotted[i+1:]
	}
	return dotted
}
