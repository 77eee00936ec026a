package render

import (
	"io"
	"strings"

	"github.com/example/autojs/internal/autodoc"
)

// Markdown renders GitHub-flavoured Markdown.
type Markdown struct{}

func (Markdown) Extension() string { return "md" }

func (m Markdown) Render(w io.Writer, page *autodoc.Page) error {
	levels := map[byte]int{}
	return writeBlocks(w, m.blocks(page.Blocks, levels, 2))
}

// blocks renders a block list. Title levels are assigned in order of first
// appearance of each underline character, as reStructuredText does.
func (m Markdown) blocks(blocks []autodoc.Block, levels map[byte]int, entryLevel int) []string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		switch b.Kind {
		case autodoc.BlockParagraph:
			out = append(out, oneLine(b.Text))
		case autodoc.BlockBullet:
			out = append(out, "- "+oneLine(b.Text))
		case autodoc.BlockTitle:
			lvl, ok := levels[b.Underline]
			if !ok {
				lvl = len(levels) + 1
				levels[b.Underline] = lvl
			}
			out = append(out, strings.Repeat("#", min(lvl, 6))+" "+b.Text)
		case autodoc.BlockEntry:
			out = append(out, m.entry(b.Entry, levels, entryLevel))
		case autodoc.BlockDirective:
			out = append(out, "```rst\n.. "+b.Directive.Name+":: "+b.Directive.Argument+"\n```")
		}
	}
	return out
}

func (m Markdown) entry(e *autodoc.Entry, levels map[byte]int, level int) string {
	parts := []string{strings.Repeat("#", min(level, 6)) + " `" + e.Heading() + "`"}

	for _, p := range e.Description {
		parts = append(parts, oneLine(p))
	}
	if e.Deprecated != nil {
		parts = append(parts, strings.TrimSpace("> **Deprecated.** "+oneLine(*e.Deprecated)))
	}

	if params := e.DocumentedParams(); len(params) > 0 {
		items := make([]string, len(params))
		for i, p := range params {
			s := "- `" + p.Name + "`"
			if len(p.Types) > 0 {
				s += " (*" + strings.Join(p.Types, "|") + "*)"
			}
			if p.Description != "" {
				s += ": " + oneLine(p.Description)
			}
			items[i] = s
		}
		parts = append(parts, "**Arguments:**\n\n"+strings.Join(items, "\n"))
	}
	if len(e.Throws) > 0 {
		items := make([]string, len(e.Throws))
		for i, f := range e.Throws {
			items[i] = "- " + mdTyped(f)
		}
		parts = append(parts, "**Throws:**\n\n"+strings.Join(items, "\n"))
	}
	if e.Returns != nil {
		if s := mdTyped(*e.Returns); s != "" {
			parts = append(parts, "**Returns:** "+s)
		}
	}
	for _, ex := range e.Examples {
		parts = append(parts, "```js\n"+ex+"\n```")
	}
	if len(e.See) > 0 {
		parts = append(parts, "**See also:** "+strings.Join(e.See, ", "))
	}

	parts = append(parts, m.blocks(e.Content, levels, level+1)...)
	for _, member := range e.Members {
		parts = append(parts, m.entry(member, levels, level+1))
	}
	return strings.Join(parts, "\n\n")
}

func mdTyped(f autodoc.Field) string {
	desc := oneLine(f.Description)
	switch {
	case len(f.Types) == 0:
		return desc
	case desc == "":
		return "`" + f.TypeString() + "`"
	}
	return "`" + f.TypeString() + "`: " + desc
}
