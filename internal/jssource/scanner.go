package jssource

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/sirupsen/logrus"

	"github.com/example/autojs/internal/jsdoc"
)

// DefaultExtensions are the file extensions scanned when none are configured.
var DefaultExtensions = []string{".js", ".mjs", ".cjs", ".jsx"}

// Scanner walks source roots and collects symbols into an Index.
type Scanner struct {
	log        logrus.FieldLogger
	extensions map[string]bool
	excludes   []glob.Glob
}

// Option configures a Scanner.
type Option func(*Scanner) error

// WithExtensions replaces the set of scanned file extensions.
func WithExtensions(exts ...string) Option {
	return func(s *Scanner) error {
		s.extensions = make(map[string]bool, len(exts))
		for _, ext := range exts {
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			s.extensions[strings.ToLower(ext)] = true
		}
		return nil
	}
}

// WithExcludes skips files and directories whose root-relative, slash
// separated path matches one of the glob patterns ("**" crosses directories).
func WithExcludes(patterns ...string) Option {
	return func(s *Scanner) error {
		for _, p := range patterns {
			g, err := glob.Compile(p, '/')
			if err != nil {
				return fmt.Errorf("invalid exclude pattern %q: %w", p, err)
			}
			s.excludes = append(s.excludes, g)
		}
		return nil
	}
}

// NewScanner creates a scanner. A nil logger discards output.
func NewScanner(log logrus.FieldLogger, opts ...Option) (*Scanner, error) {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	s := &Scanner{log: log}
	if err := WithExtensions(DefaultExtensions...)(s); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Scan parses every matching file below the given roots.
func (s *Scanner) Scan(ctx context.Context, roots ...string) (*Index, error) {
	index := NewIndex()
	for _, root := range roots {
		if err := s.scanRoot(ctx, root, index); err != nil {
			return nil, err
		}
	}
	s.log.WithField("symbols", index.Len()).Debug("scanned JavaScript sources")
	return index, nil
}

func (s *Scanner) scanRoot(ctx context.Context, root string, index *Index) error {
	return filepath.WalkDir(root, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if de.IsDir() {
			if path != root && (de.Name() == "node_modules" || strings.HasPrefix(de.Name(), ".") || s.excluded(rel)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.extensions[strings.ToLower(filepath.Ext(path))] || s.excluded(rel) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		symbols, err := s.ScanSource(ctx, rel, content)
		if err != nil {
			// Skip files that fail to parse
			s.log.WithError(err).WithField("file", path).Warn("skipping unparsable file")
			return nil
		}
		index.Add(symbols...)
		return nil
	})
}

// Matches reports whether a file would be scanned, judging by its extension.
func (s *Scanner) Matches(path string) bool {
	return s.extensions[strings.ToLower(filepath.Ext(path))]
}

func (s *Scanner) excluded(rel string) bool {
	for _, g := range s.excludes {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// ScanSource extracts the symbols of a single file. file is only used to
// label the symbols.
func (s *Scanner) ScanSource(ctx context.Context, file string, content []byte) ([]*Symbol, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	defer tree.Close()

	w := &walker{file: file, src: content, log: s.log}
	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		w.visitStatement(root.NamedChild(i))
	}
	return w.symbols, nil
}

// walker turns tree-sitter nodes into symbols.
type walker struct {
	file    string
	src     []byte
	log     logrus.FieldLogger
	symbols []*Symbol
}

func (w *walker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(w.src)
}

func (w *walker) visitStatement(n *sitter.Node) {
	switch n.Type() {
	case "export_statement":
		if decl := n.ChildByFieldName("declaration"); decl != nil {
			w.visitStatement(decl)
			return
		}
		if value := n.ChildByFieldName("value"); value != nil {
			name := w.text(value.ChildByFieldName("name"))
			if name == "" {
				name = "default"
			}
			w.visitValue(n, name, value)
		}
	case "function_declaration", "generator_function_declaration":
		w.addFunction(n, w.text(n.ChildByFieldName("name")), n)
	case "class_declaration":
		w.addClass(n, w.text(n.ChildByFieldName("name")), n)
	case "lexical_declaration", "variable_declaration":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			decl := n.NamedChild(i)
			if decl.Type() != "variable_declarator" {
				continue
			}
			name := decl.ChildByFieldName("name")
			value := decl.ChildByFieldName("value")
			if name == nil || value == nil || name.Type() != "identifier" {
				continue
			}
			w.visitValue(n, w.text(name), value)
		}
	case "expression_statement":
		if n.NamedChildCount() > 0 {
			w.visitAssignment(n, n.NamedChild(0))
		}
	}
}

// visitValue handles "name = <value>" bindings; anchor is the statement
// carrying the doc comment.
func (w *walker) visitValue(anchor *sitter.Node, name string, value *sitter.Node) {
	switch value.Type() {
	case "function", "function_expression", "generator_function", "arrow_function":
		w.addFunction(anchor, name, value)
	case "class":
		w.addClass(anchor, name, value)
	}
}

// visitAssignment recognises Foo.prototype.bar = function () {} and
// Foo.bar = function () {}.
func (w *walker) visitAssignment(anchor, expr *sitter.Node) {
	if expr.Type() != "assignment_expression" {
		return
	}
	left := expr.ChildByFieldName("left")
	right := expr.ChildByFieldName("right")
	if left == nil || right == nil || left.Type() != "member_expression" {
		return
	}
	switch right.Type() {
	case "function", "function_expression", "generator_function", "arrow_function":
	default:
		return
	}

	parts := strings.Split(w.text(left), ".")
	if len(parts) < 2 {
		return
	}
	name := parts[len(parts)-1]
	owner := parts[:len(parts)-1]

	switch {
	case owner[0] == "module" || owner[0] == "exports":
		w.addFunction(anchor, name, right)
	case len(owner) >= 2 && owner[len(owner)-1] == "prototype":
		w.addMember(anchor, strings.Join(owner[:len(owner)-1], "."), ScopeInstance, name, right)
	default:
		w.addMember(anchor, strings.Join(owner, "."), ScopeStatic, name, right)
	}
}

func (w *walker) addFunction(anchor *sitter.Node, name string, fn *sitter.Node) {
	if name == "" {
		return
	}
	sym := w.newSymbol(anchor, name, KindFunction, fn)
	if sym.Comment != nil && sym.Comment.IsClass {
		sym.Kind = KindClass
	}
	w.finish(sym)
}

func (w *walker) addMember(anchor *sitter.Node, owner string, scope Scope, name string, fn *sitter.Node) {
	sym := w.newSymbol(anchor, name, KindMethod, fn)
	sym.MemberOf = owner
	sym.Scope = scope
	w.finish(sym)
}

func (w *walker) addClass(anchor *sitter.Node, name string, class *sitter.Node) {
	if name == "" {
		return
	}
	cls := w.newSymbol(anchor, name, KindClass, nil)
	w.finish(cls)

	body := class.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "method_definition":
			w.addClassMethod(cls, member, member)
		case "field_definition":
			value := member.ChildByFieldName("value")
			if value == nil {
				continue
			}
			switch value.Type() {
			case "function", "function_expression", "arrow_function":
				w.addClassMethod(cls, member, value)
			}
		}
	}
}

func (w *walker) addClassMethod(cls *Symbol, member, fn *sitter.Node) {
	nameNode := member.ChildByFieldName("name")
	if nameNode == nil {
		nameNode = member.ChildByFieldName("property")
	}
	name := strings.Trim(w.text(nameNode), `"'`)
	if name == "" {
		return
	}

	scope := ScopeInstance
	for i := 0; i < int(member.ChildCount()); i++ {
		if member.Child(i).Type() == "static" {
			scope = ScopeStatic
			break
		}
	}

	sym := w.newSymbol(member, name, KindMethod, fn)
	sym.MemberOf = cls.Longname
	sym.Scope = scope

	if name == "constructor" && scope == ScopeInstance {
		sym.Longname = cls.Longname
		cls.Constructor = sym
		cls.Params = sym.Params
		return
	}
	w.finish(sym)
}

// newSymbol fills in what every symbol has: its comment, location and code
// parameters. fn may be nil for symbols without a parameter list.
func (w *walker) newSymbol(anchor *sitter.Node, name string, kind Kind, fn *sitter.Node) *Symbol {
	sym := &Symbol{
		Name:  name,
		Kind:  kind,
		Scope: ScopeGlobal,
		File:  w.file,
		Line:  int(anchor.StartPoint().Row) + 1,
	}
	if fn != nil {
		sym.Params = w.params(fn)
	}
	if raw, line := w.precedingDoc(anchor); raw != "" {
		sym.CommentLine = line
		comment, err := jsdoc.Parse(raw)
		if err != nil {
			sym.CommentErr = err
			w.log.WithError(err).WithFields(logrus.Fields{"file": w.file, "symbol": name}).Debug("malformed doc comment")
		} else {
			sym.Comment = comment
		}
	}
	return sym
}

// finish applies @name/@memberof/@static/@instance overrides, computes the
// longname and records the symbol.
func (w *walker) finish(sym *Symbol) {
	if c := sym.Comment; c != nil {
		if c.Name != "" {
			sym.Name = c.Name
		}
		if c.MemberOf != "" {
			sym.MemberOf = c.MemberOf
			if sym.Scope == ScopeGlobal {
				sym.Scope = ScopeStatic
			}
			if sym.Kind == KindFunction {
				sym.Kind = KindMethod
			}
		}
		switch c.Scope {
		case "static":
			sym.Scope = ScopeStatic
		case "instance":
			sym.Scope = ScopeInstance
		}
	}
	sym.Longname = longname(sym.MemberOf, sym.Scope, sym.Name)
	w.symbols = append(w.symbols, sym)
}

// precedingDoc returns the "/**" comment directly before n and the line it
// starts on, looking through an enclosing export statement. Line comments
// such as linter pragmas between the two are skipped.
func (w *walker) precedingDoc(n *sitter.Node) (string, int) {
	for cur := n; cur != nil; cur = cur.Parent() {
		prev := cur.PrevSibling()
		for prev != nil && prev.Type() == "comment" && strings.HasPrefix(w.text(prev), "//") {
			prev = prev.PrevSibling()
		}
		if prev != nil && prev.Type() == "comment" {
			if text := w.text(prev); jsdoc.IsDocComment(text) {
				return text, int(prev.StartPoint().Row) + 1
			}
			return "", 0
		}
		parent := cur.Parent()
		if parent == nil || parent.Type() != "export_statement" {
			return "", 0
		}
	}
	return "", 0
}

func (w *walker) params(fn *sitter.Node) []CodeParam {
	if single := fn.ChildByFieldName("parameter"); single != nil {
		return []CodeParam{{Name: w.text(single)}}
	}
	formals := fn.ChildByFieldName("parameters")
	if formals == nil {
		return nil
	}

	var params []CodeParam
	for i := 0; i < int(formals.NamedChildCount()); i++ {
		p := formals.NamedChild(i)
		switch p.Type() {
		case "comment":
			continue
		case "identifier":
			params = append(params, CodeParam{Name: w.text(p)})
		case "assignment_pattern", "assignment_expression":
			params = append(params, CodeParam{
				Name:    w.text(p.ChildByFieldName("left")),
				Default: w.text(p.ChildByFieldName("right")),
			})
		case "rest_pattern":
			name := strings.TrimPrefix(w.text(p), "...")
			params = append(params, CodeParam{Name: strings.TrimSpace(name), Rest: true})
		default:
			// Destructuring patterns are kept as written.
			params = append(params, CodeParam{Name: w.text(p)})
		}
	}
	return params
}
