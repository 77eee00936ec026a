// Package render writes resolved pages in one of the supported output
// formats.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mitchellh/go-wordwrap"

	"github.com/example/autojs/internal/autodoc"
)

// Renderer writes one page.
type Renderer interface {
	Render(w io.Writer, page *autodoc.Page) error
	// Extension is the file extension of rendered pages, without the dot.
	Extension() string
}

var factories = map[string]func() Renderer{
	"text":     func() Renderer { return Text{Width: DefaultWidth} },
	"rst":      func() Renderer { return RST{} },
	"markdown": func() Renderer { return Markdown{} },
}

// New returns the renderer registered under name.
func New(name string) (Renderer, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown builder %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
	return f(), nil
}

// Names lists the registered renderer names.
func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefaultWidth is the text column limit, indentation included.
const DefaultWidth = 70

const indentStep = 3

func pad(n int) string {
	return strings.Repeat(" ", n)
}

// fill collapses whitespace in text and wraps it to width columns, each line
// indented by indent spaces.
func fill(text string, indent, width int) string {
	return hang(text, pad(indent), pad(indent), width)
}

// hang wraps text like fill but with distinct prefixes for the first and
// following lines.
func hang(text, first, rest string, width int) string {
	limit := width - len(rest)
	if limit < 20 {
		limit = 20
	}
	wrapped := wordwrap.WrapString(strings.Join(strings.Fields(text), " "), uint(limit))
	lines := strings.Split(wrapped, "\n")
	for i, l := range lines {
		if i == 0 {
			lines[i] = first + l
		} else {
			lines[i] = rest + l
		}
	}
	return strings.Join(lines, "\n")
}

// indentLines prefixes every non-empty line of s.
func indentLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad(n) + l
		}
	}
	return strings.Join(lines, "\n")
}

// stickyWriter remembers the first write error.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) print(parts ...string) {
	for _, p := range parts {
		if s.err != nil {
			return
		}
		_, s.err = io.WriteString(s.w, p)
	}
}

// writeBlocks joins rendered blocks with blank lines and ends the output with
// a newline.
func writeBlocks(w io.Writer, blocks []string) error {
	sw := &stickyWriter{w: w}
	if len(blocks) > 0 {
		sw.print(strings.Join(blocks, "\n\n"), "\n")
	}
	return sw.err
}
