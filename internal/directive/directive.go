// Package directive reads reStructuredText-style documentation sources and
// picks out the auto-documentation directives in them.
package directive

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

// BlockKind identifies what a Block holds.
type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindBullet
	KindTitle
	KindDirective
)

func (k BlockKind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindBullet:
		return "bullet"
	case KindTitle:
		return "title"
	case KindDirective:
		return "directive"
	}
	return fmt.Sprintf("BlockKind(%d)", int(k))
}

// Block is one top-level element of a document.
type Block struct {
	Kind BlockKind
	// Text holds paragraph, bullet and title text, lines joined by "\n".
	Text string
	// Underline is the adornment character of a title.
	Underline byte
	Directive *Directive
	// Line is 1-based.
	Line int
}

// Directive is an explicit markup block of the form
//
//	.. name:: argument
//	   :option: value
//
//	   content
type Directive struct {
	Name     string
	Argument string
	Options  map[string]string
	Content  []string
	Line     int
	// ContentLine is the 1-based line of the first content line.
	ContentLine int
}

// Flag reports whether a value-less (or any) option is present.
func (d *Directive) Flag(name string) bool {
	_, ok := d.Options[name]
	return ok
}

// Option returns an option value.
func (d *Directive) Option(name string) (string, bool) {
	v, ok := d.Options[name]
	return v, ok
}

// Document is a parsed documentation source.
type Document struct {
	Name   string
	Blocks []Block
}

// Directives returns the directive blocks in document order.
func (doc *Document) Directives() []*Directive {
	var out []*Directive
	for _, b := range doc.Blocks {
		if b.Kind == KindDirective {
			out = append(out, b.Directive)
		}
	}
	return out
}

var (
	directiveRe = regexp.MustCompile(`^\.\.\s+([A-Za-z0-9_:.+-]+)::(?:\s+(.*))?$`)
	optionRe    = regexp.MustCompile(`^:([A-Za-z0-9_-]+):(?:\s+(.*))?$`)
	bulletRe    = regexp.MustCompile(`^[*+-]\s+`)
)

// ParseFile reads and parses the file at path under the given document name.
func ParseFile(path, name string) (*Document, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Parse(name, f)
}

// Parse parses a documentation source.
func Parse(name string, r io.Reader) (*Document, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lines = append(lines, expandTabs(strings.TrimRight(sc.Text(), " \r")))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return &Document{Name: name, Blocks: ParseLines(lines, 1)}, nil
}

// ParseLines splits already dedented lines into blocks. firstLine is the
// 1-based source line of lines[0].
func ParseLines(lines []string, firstLine int) []Block {
	p := &lineParser{lines: lines, base: firstLine}
	p.run()
	return p.blocks
}

type lineParser struct {
	lines  []string
	base   int
	pos    int
	blocks []Block
}

func (p *lineParser) run() {
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		switch {
		case strings.TrimSpace(line) == "":
			p.pos++
		case indentOf(line) > 0:
			// Stray indented text (a block quote) is kept as a paragraph.
			p.paragraph()
		case directiveRe.MatchString(line):
			p.directive()
		case strings.HasPrefix(line, ".."):
			p.comment()
		case bulletRe.MatchString(line):
			p.bullets()
		case p.isTitle():
			p.title()
		default:
			p.paragraph()
		}
	}
}

func (p *lineParser) lineNo() int {
	return p.base + p.pos
}

func (p *lineParser) directive() {
	m := directiveRe.FindStringSubmatch(p.lines[p.pos])
	d := &Directive{
		Name:     m[1],
		Argument: strings.TrimSpace(m[2]),
		Options:  map[string]string{},
		Line:     p.lineNo(),
	}
	p.pos++

	// Options directly follow the directive line.
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		if strings.TrimSpace(line) == "" || indentOf(line) == 0 {
			break
		}
		om := optionRe.FindStringSubmatch(strings.TrimSpace(line))
		if om == nil {
			break
		}
		d.Options[om[1]] = strings.TrimSpace(om[2])
		p.pos++
	}

	start := p.pos
	end := p.indentedEnd(start)
	content := dedent(p.lines[start:end])
	skipped := 0
	for len(content) > 0 && strings.TrimSpace(content[0]) == "" {
		content = content[1:]
		skipped++
	}
	for len(content) > 0 && strings.TrimSpace(content[len(content)-1]) == "" {
		content = content[:len(content)-1]
	}
	d.Content = content
	if len(content) > 0 {
		d.ContentLine = p.base + start + skipped
	}
	p.pos = end

	p.blocks = append(p.blocks, Block{Kind: KindDirective, Directive: d, Line: d.Line})
}

// comment skips a reST comment and its indented body.
func (p *lineParser) comment() {
	p.pos = p.indentedEnd(p.pos + 1)
}

func (p *lineParser) bullets() {
	var cur *Block
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		if strings.TrimSpace(line) == "" {
			// A blank line ends the item; the list goes on if another bullet
			// follows.
			next := p.pos + 1
			for next < len(p.lines) && strings.TrimSpace(p.lines[next]) == "" {
				next++
			}
			if next < len(p.lines) && bulletRe.MatchString(p.lines[next]) {
				p.pos = next
				continue
			}
			if next < len(p.lines) && indentOf(p.lines[next]) > 0 && cur != nil {
				p.pos = next
				continue
			}
			break
		}
		if loc := bulletRe.FindStringIndex(line); loc != nil && indentOf(line) == 0 {
			p.blocks = append(p.blocks, Block{Kind: KindBullet, Text: line[loc[1]:], Line: p.lineNo()})
			cur = &p.blocks[len(p.blocks)-1]
			p.pos++
			continue
		}
		if indentOf(line) == 0 || cur == nil {
			break
		}
		cur.Text += "\n" + strings.TrimSpace(line)
		p.pos++
	}
}

func (p *lineParser) isTitle() bool {
	if p.pos+1 >= len(p.lines) {
		return false
	}
	return isAdornment(p.lines[p.pos+1], utf8.RuneCountInString(strings.TrimSpace(p.lines[p.pos])))
}

func (p *lineParser) title() {
	text := strings.TrimSpace(p.lines[p.pos])
	p.blocks = append(p.blocks, Block{
		Kind:      KindTitle,
		Text:      text,
		Underline: p.lines[p.pos+1][0],
		Line:      p.lineNo(),
	})
	p.pos += 2
}

func (p *lineParser) paragraph() {
	start := p.lineNo()
	var text []string
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		if strings.TrimSpace(line) == "" {
			break
		}
		if len(text) > 0 && indentOf(line) == 0 && (directiveRe.MatchString(line) || bulletRe.MatchString(line)) {
			break
		}
		text = append(text, strings.TrimSpace(line))
		p.pos++
	}
	p.blocks = append(p.blocks, Block{Kind: KindParagraph, Text: strings.Join(text, "\n"), Line: start})
}

// indentedEnd returns the index of the first non-blank, unindented line at
// or after from.
func (p *lineParser) indentedEnd(from int) int {
	i := from
	for i < len(p.lines) {
		line := p.lines[i]
		if strings.TrimSpace(line) != "" && indentOf(line) == 0 {
			break
		}
		i++
	}
	return i
}

func isAdornment(line string, titleLen int) bool {
	line = strings.TrimRight(line, " ")
	if len(line) < 2 || len(line) < titleLen || titleLen == 0 {
		return false
	}
	c := line[0]
	if !strings.ContainsRune("=-~^\"'`#*+_.:", rune(c)) {
		return false
	}
	return strings.Count(line, string(c)) == len(line)
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

func expandTabs(line string) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	var b strings.Builder
	col := 0
	for _, r := range line {
		if r == '\t' {
			n := 8 - col%8
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

// dedent removes the common leading indentation of the non-blank lines.
func dedent(lines []string) []string {
	minIndent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if ind := indentOf(l); minIndent < 0 || ind < minIndent {
			minIndent = ind
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if len(l) >= minIndent && minIndent > 0 {
			out[i] = l[minIndent:]
		} else {
			out[i] = strings.TrimSpace(l)
		}
	}
	return out
}

// SplitArgument separates a directive argument such as
// "linkDensity(snorko, borko[, forko])" into the symbol path and the
// explicit parameter list, which is returned verbatim with its parentheses.
func SplitArgument(arg string) (path, explicit string, err error) {
	arg = strings.TrimSpace(arg)
	open := strings.IndexByte(arg, '(')
	if open < 0 {
		return arg, "", nil
	}
	path = strings.TrimSpace(arg[:open])
	explicit = strings.TrimSpace(arg[open:])
	if path == "" {
		return "", "", fmt.Errorf("missing symbol path in %q", arg)
	}
	depth := 0
	for i := 0; i < len(explicit); i++ {
		switch explicit[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(explicit)-1 {
				return "", "", fmt.Errorf("unexpected text after signature in %q", arg)
			}
		}
	}
	if depth != 0 {
		return "", "", fmt.Errorf("unbalanced parentheses in signature %q", arg)
	}
	return path, explicit, nil
}
