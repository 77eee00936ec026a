package autodoc

import (
	"regexp"
	"strings"

	"github.com/example/autojs/internal/directive"
	"github.com/example/autojs/internal/jsdoc"
	"github.com/example/autojs/internal/jssource"
)

// Directive options understood by Apply and Members.
const (
	OptionShortName = "short-name"
	OptionMembers   = "members"
)

var fieldRe = regexp.MustCompile(`^:([a-z]+)(?:\s+([^:]*?))?:(?:\s+(.*))?$`)

// Apply merges what a directive states explicitly into an entry built from
// the source. Explicit values replace inferred ones.
func Apply(e *Entry, d *directive.Directive) error {
	_, explicit, err := directive.SplitArgument(d.Argument)
	if err != nil {
		return err
	}
	if explicit != "" {
		e.Explicit = explicit
	}
	if d.Flag(OptionShortName) {
		e.Name = shortName(e.Name)
	}

	lines := applyFields(e, d.Content)
	e.Content = append(e.Content, Prose(directive.ParseLines(lines, d.ContentLine))...)
	return nil
}

// applyFields consumes field-list lines from content and returns the rest.
// Consumed lines are blanked so block line numbers stay put.
func applyFields(e *Entry, content []string) []string {
	lines := make([]string, len(content))
	copy(lines, content)

	explicitThrows := false
	for i := 0; i < len(lines); i++ {
		m := fieldRe.FindStringSubmatch(lines[i])
		if m == nil || !knownField(m[1]) {
			continue
		}
		text := strings.TrimSpace(m[3])
		lines[i] = ""
		for i+1 < len(lines) && strings.HasPrefix(lines[i+1], " ") && strings.TrimSpace(lines[i+1]) != "" {
			i++
			text = strings.TrimSpace(text + " " + strings.TrimSpace(lines[i]))
			lines[i] = ""
		}

		arg := strings.TrimSpace(m[2])
		switch m[1] {
		case "param", "arg", "argument":
			typ, name := splitTypedName(arg)
			if name == "" {
				continue
			}
			p := e.ensureParam(name)
			p.Description = text
			if typ != "" {
				p.Types = typeList(typ)
			}
		case "type":
			if arg == "" {
				continue
			}
			e.ensureParam(arg).Types = typeList(text)
		case "throws", "raises", "exception":
			if !explicitThrows {
				e.Throws = nil
				explicitThrows = true
			}
			e.Throws = append(e.Throws, Field{Types: typeList(arg), Description: text})
		case "returns", "return":
			if e.Returns == nil {
				e.Returns = &Field{}
			}
			e.Returns.Description = text
			if arg != "" {
				e.Returns.Types = typeList(arg)
			}
		case "rtype":
			if e.Returns == nil {
				e.Returns = &Field{}
			}
			e.Returns.Types = typeList(text)
		}
	}
	return lines
}

func knownField(name string) bool {
	switch name {
	case "param", "arg", "argument", "type", "throws", "raises", "exception", "returns", "return", "rtype":
		return true
	}
	return false
}

func (e *Entry) ensureParam(name string) *Param {
	p := e.param(name)
	if p == nil {
		e.Params = append(e.Params, Param{Name: name})
		p = &e.Params[len(e.Params)-1]
	}
	p.Documented = true
	return p
}

// splitTypedName splits "Type name" (or just "name") from a field argument.
func splitTypedName(arg string) (typ, name string) {
	fields := strings.Fields(arg)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return "", fields[0]
	}
	return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
}

func typeList(expr string) []string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}
	expr = strings.TrimSuffix(strings.TrimPrefix(expr, "{"), "}")
	return jsdoc.ParseType(expr).Alternatives
}

// Prose converts parsed docs blocks into page blocks. Directives are kept
// for the caller to resolve.
func Prose(blocks []directive.Block) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		pb := Block{Text: b.Text, Underline: b.Underline, Line: b.Line}
		switch b.Kind {
		case directive.KindParagraph:
			pb.Kind = BlockParagraph
		case directive.KindBullet:
			pb.Kind = BlockBullet
		case directive.KindTitle:
			pb.Kind = BlockTitle
		case directive.KindDirective:
			pb.Kind = BlockDirective
			pb.Directive = b.Directive
		}
		out = append(out, pb)
	}
	return out
}

// Members builds nested entries for a class's members in source order. A
// non-empty selection is a comma-separated list of member names; otherwise
// every public member is taken. Names in the selection that match no member
// are returned as missing.
func Members(members []*jssource.Symbol, selection string) (entries []*Entry, missing []string) {
	want := map[string]bool{}
	var order []string
	for _, name := range strings.Split(selection, ",") {
		if name = strings.TrimSpace(name); name != "" && !want[name] {
			want[name] = true
			order = append(order, name)
		}
	}

	found := map[string]bool{}
	for _, m := range members {
		if len(want) > 0 {
			if !want[m.Name] {
				continue
			}
		} else if m.Private() {
			continue
		}
		found[m.Name] = true
		me := FromSymbol(m)
		me.Name = m.Name
		entries = append(entries, me)
	}

	for _, name := range order {
		if !found[name] {
			missing = append(missing, name)
		}
	}
	return entries, missing
}
