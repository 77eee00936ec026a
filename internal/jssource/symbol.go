// Package jssource locates documented JavaScript symbols in a source tree.
//
// Files are parsed with tree-sitter's JavaScript grammar. Each function,
// class and method found at the top level of a file (or inside a class body)
// becomes a Symbol, keyed by a longname:
//
//	linkDensity                 top-level function
//	ContainingClass             class (constructor folded in)
//	ContainingClass#someMethod  instance method
//	ContainingClass.create      static method
package jssource

import (
	"github.com/example/autojs/internal/jsdoc"
)

// Kind classifies a symbol.
type Kind string

const (
	KindFunction Kind = "function"
	KindClass    Kind = "class"
	KindMethod   Kind = "method"
)

// Scope says how a symbol hangs off its parent.
type Scope string

const (
	ScopeGlobal   Scope = "global"
	ScopeInstance Scope = "instance"
	ScopeStatic   Scope = "static"
)

// Symbol is one documentable JavaScript construct.
type Symbol struct {
	Name     string      `json:"name" yaml:"name"`
	Longname string      `json:"longname" yaml:"longname"`
	Kind     Kind        `json:"kind" yaml:"kind"`
	Scope    Scope       `json:"scope" yaml:"scope"`
	MemberOf string      `json:"memberof,omitempty" yaml:"memberof,omitempty"`
	Params   []CodeParam `json:"params,omitempty" yaml:"params,omitempty"`

	// Comment is nil for undocumented symbols.
	Comment *jsdoc.Comment `json:"comment,omitempty" yaml:"comment,omitempty"`
	// CommentErr is set when the preceding doc comment failed to parse.
	CommentErr error `json:"-" yaml:"-"`
	// CommentLine is the 1-based line where the doc comment starts, 0 when
	// there is none.
	CommentLine int `json:"commentLine,omitempty" yaml:"commentLine,omitempty"`

	// Constructor holds the constructor method of an ES2015 class.
	Constructor *Symbol `json:"constructor,omitempty" yaml:"constructor,omitempty"`

	File string `json:"file" yaml:"file"`
	Line int    `json:"line" yaml:"line"`
}

// CodeParam is a formal parameter as written in the code.
type CodeParam struct {
	Name    string `json:"name" yaml:"name"`
	Default string `json:"default,omitempty" yaml:"default,omitempty"`
	Rest    bool   `json:"rest,omitempty" yaml:"rest,omitempty"`
}

// Documented reports whether the symbol carries a doc comment.
func (s *Symbol) Documented() bool {
	return s.Comment != nil
}

// Private reports whether the symbol is marked @private or named with a
// leading underscore or hash.
func (s *Symbol) Private() bool {
	if s.Comment != nil && s.Comment.Private {
		return true
	}
	return len(s.Name) > 0 && (s.Name[0] == '_' || s.Name[0] == '#')
}

func longname(memberOf string, scope Scope, name string) string {
	switch {
	case memberOf == "":
		return name
	case scope == ScopeInstance:
		return memberOf + "#" + name
	default:
		return memberOf + "." + name
	}
}
