package autodoc

import (
	"github.com/example/autojs/internal/jsdoc"
	"github.com/example/autojs/internal/jssource"
)

// FromSymbol builds an entry from what the source says about sym. The name
// is the dotted longname; directives may shorten it later.
func FromSymbol(sym *jssource.Symbol) *Entry {
	e := &Entry{
		Kind:     sym.Kind,
		Name:     jssource.Dotted(sym.Longname),
		Longname: sym.Longname,
		File:     sym.File,
		Line:     sym.Line,
	}

	c := sym.Comment
	if sym.Kind == jssource.KindClass {
		c = classComment(e, sym)
	} else if c != nil {
		e.Description = paragraphs(c.Description)
	}

	var docParams []jsdoc.Param
	if c != nil {
		docParams = c.Params
		for _, t := range c.Throws {
			e.Throws = append(e.Throws, Field(t))
		}
		if c.Returns != nil {
			r := Field(*c.Returns)
			e.Returns = &r
		}
	}
	if sym.Comment != nil {
		e.Deprecated = sym.Comment.Deprecated
		e.Examples = sym.Comment.Examples
		e.See = sym.Comment.See
	}

	setParams(e, docParams, sym.Params)
	return e
}

// classComment fills in the class description and returns the comment that
// documents the constructor's parameters.
func classComment(e *Entry, sym *jssource.Symbol) *jsdoc.Comment {
	c := sym.Comment
	if c != nil {
		if c.ClassDesc != "" {
			e.Description = append(e.Description, paragraphs(c.ClassDesc)...)
		}
		e.Description = append(e.Description, paragraphs(c.Description)...)
	}

	if sym.Constructor == nil || sym.Constructor.Comment == nil {
		return c
	}
	ctor := sym.Constructor.Comment
	e.Description = append(e.Description, paragraphs(ctor.Description)...)
	if len(ctor.Params) == 0 && c != nil && len(c.Params) > 0 {
		// Parameters documented on the class itself.
		merged := *ctor
		merged.Params = c.Params
		return &merged
	}
	return ctor
}

func setParams(e *Entry, docParams []jsdoc.Param, code []jssource.CodeParam) {
	codeDefaults := map[string]string{}
	for _, cp := range code {
		if cp.Default != "" {
			codeDefaults[cp.Name] = cp.Default
		}
	}

	if len(docParams) == 0 {
		for _, cp := range code {
			e.Params = append(e.Params, Param{Name: cp.Name, Default: cp.Default, Variadic: cp.Rest})
			e.Formal = append(e.Formal, formal(cp.Name, cp.Default, cp.Rest))
		}
		return
	}

	seen := map[string]bool{}
	for _, dp := range docParams {
		p := Param{
			Name:        dp.Name,
			Types:       dp.Types,
			Default:     dp.Default,
			Optional:    dp.Optional,
			Variadic:    dp.Variadic,
			Description: dp.Description,
			Documented:  true,
		}
		if p.Default == "" {
			p.Default = codeDefaults[p.Name]
		}
		e.Params = append(e.Params, p)

		root := dp.RootName()
		if seen[root] {
			continue
		}
		seen[root] = true
		if root != dp.Name {
			// A nested property documented before its parent.
			e.Formal = append(e.Formal, root)
			continue
		}
		e.Formal = append(e.Formal, formal(p.Name, p.Default, p.Variadic))
	}
}

func formal(name, def string, rest bool) string {
	switch {
	case rest:
		return "..." + name
	case def != "":
		return name + "=" + def
	}
	return name
}
