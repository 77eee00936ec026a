// Package builder runs the documentation pipeline: it scans JavaScript
// sources, resolves the directives of every docs source against them and
// writes the rendered pages.
package builder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/example/autojs/internal/autodoc"
	"github.com/example/autojs/internal/config"
	"github.com/example/autojs/internal/directive"
	"github.com/example/autojs/internal/jsdoc"
	"github.com/example/autojs/internal/jssource"
	"github.com/example/autojs/internal/render"
)

// Directive names resolved against the symbol index.
const (
	DirectiveAutoFunction = "js:autofunction"
	DirectiveAutoClass    = "js:autoclass"
)

// Builder builds one configured project.
type Builder struct {
	cfg      *config.Config
	log      logrus.FieldLogger
	scanner  *jssource.Scanner
	renderer render.Renderer
}

// New prepares a builder. A nil logger discards output.
func New(cfg *config.Config, log logrus.FieldLogger) (*Builder, error) {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	opts := []jssource.Option{jssource.WithExcludes(cfg.Exclude...)}
	if len(cfg.Extensions) > 0 {
		opts = append(opts, jssource.WithExtensions(cfg.Extensions...))
	}
	scanner, err := jssource.NewScanner(log, opts...)
	if err != nil {
		return nil, err
	}

	renderer, err := render.New(cfg.Builder)
	if err != nil {
		return nil, err
	}
	if t, ok := renderer.(render.Text); ok && cfg.Width > 0 {
		t.Width = cfg.Width
		renderer = t
	}

	return &Builder{cfg: cfg, log: log, scanner: scanner, renderer: renderer}, nil
}

// Build runs a builder for cfg once.
func Build(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Report, error) {
	b, err := New(cfg, log)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx)
}

// Scan indexes the configured JavaScript sources.
func (b *Builder) Scan(ctx context.Context) (*jssource.Index, error) {
	ix, err := b.scanner.Scan(ctx, b.cfg.Sources...)
	if err != nil {
		return nil, fmt.Errorf("scan sources: %w", err)
	}
	return ix, nil
}

// Output is one rendered page.
type Output struct {
	// Name is the output path relative to the build directory.
	Name    string
	Content []byte
}

// Render scans the sources and renders every docs source in memory.
func (b *Builder) Render(ctx context.Context) ([]Output, *Report, error) {
	ix, err := b.Scan(ctx)
	if err != nil {
		return nil, nil, err
	}
	report := &Report{Symbols: ix.Len()}

	docs, err := b.docsFiles()
	if err != nil {
		return nil, nil, err
	}

	outputs := make([]Output, 0, len(docs))
	for _, rel := range docs {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		doc, err := directive.ParseFile(filepath.Join(b.cfg.Docs, filepath.FromSlash(rel)), rel)
		if err != nil {
			return nil, nil, err
		}
		r := &resolver{index: ix, report: report, log: b.log, file: rel}
		page := &autodoc.Page{Name: rel, Blocks: r.blocks(autodoc.Prose(doc.Blocks))}

		var buf bytes.Buffer
		if err := b.renderer.Render(&buf, page); err != nil {
			return nil, nil, fmt.Errorf("render %s: %w", rel, err)
		}
		name := strings.TrimSuffix(rel, b.cfg.DocsSuffix) + "." + b.renderer.Extension()
		outputs = append(outputs, Output{Name: name, Content: buf.Bytes()})
	}
	return outputs, report, nil
}

// Build renders every docs source and writes the pages below the build
// directory. The returned report is set whenever pages were written, even if
// it carries error diagnostics.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	outputs, report, err := b.Render(ctx)
	if err != nil {
		return nil, err
	}

	for _, o := range outputs {
		path := filepath.Join(b.cfg.Out, filepath.FromSlash(o.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create build directory: %w", err)
		}
		if err := os.WriteFile(path, o.Content, 0o600); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		report.Pages = append(report.Pages, path)
	}

	b.log.WithFields(logrus.Fields{
		"pages":    len(report.Pages),
		"symbols":  report.Symbols,
		"errors":   len(report.Errors()),
		"warnings": len(report.Warnings()),
	}).Info("build finished")
	return report, nil
}

// docsFiles lists the docs sources relative to the docs directory, in a
// stable order. The build directory is skipped when it lies inside.
func (b *Builder) docsFiles() ([]string, error) {
	outAbs, _ := filepath.Abs(b.cfg.Out)

	var files []string
	err := filepath.WalkDir(b.cfg.Docs, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			if path == b.cfg.Docs {
				return nil
			}
			if abs, _ := filepath.Abs(path); abs == outAbs || strings.HasPrefix(de.Name(), ".") || de.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(de.Name(), b.cfg.DocsSuffix) {
			return nil
		}
		rel, err := filepath.Rel(b.cfg.Docs, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk docs: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// resolver turns the directives of one docs source into entries.
type resolver struct {
	index  *jssource.Index
	report *Report
	log    logrus.FieldLogger
	file   string
}

func (r *resolver) diag(line int, sev Severity, format string, args ...any) {
	r.report.add(r.log, Diagnostic{File: r.file, Line: line, Severity: sev, Message: fmt.Sprintf(format, args...)})
}

func (r *resolver) blocks(in []autodoc.Block) []autodoc.Block {
	out := make([]autodoc.Block, 0, len(in))
	for _, b := range in {
		if b.Kind != autodoc.BlockDirective {
			out = append(out, b)
			continue
		}
		switch b.Directive.Name {
		case DirectiveAutoFunction, DirectiveAutoClass:
			if e := r.entry(b.Directive); e != nil {
				out = append(out, autodoc.Block{Kind: autodoc.BlockEntry, Entry: e, Line: b.Line})
			}
		default:
			if strings.HasPrefix(b.Directive.Name, "js:") {
				r.diag(b.Line, SeverityWarning, "unknown directive %q", b.Directive.Name)
			}
			out = append(out, b)
		}
	}
	return out
}

func (r *resolver) entry(d *directive.Directive) *autodoc.Entry {
	path, _, err := directive.SplitArgument(d.Argument)
	if err != nil {
		r.diag(d.Line, SeverityError, "%s: %v", d.Name, err)
		return nil
	}

	sym, err := r.index.Lookup(path)
	if err != nil {
		var amb *jssource.AmbiguousError
		switch {
		case errors.Is(err, jssource.ErrNotFound):
			r.diag(d.Line, SeverityError, "%s: no JavaScript symbol named %q", d.Name, path)
		case errors.As(err, &amb):
			r.diag(d.Line, SeverityError, "%s: %v", d.Name, amb)
		default:
			r.diag(d.Line, SeverityError, "%s: %v", d.Name, err)
		}
		return nil
	}

	if d.Name == DirectiveAutoClass && sym.Kind != jssource.KindClass {
		r.diag(d.Line, SeverityError, "%s: %s is a %s, not a class", d.Name, sym.Longname, sym.Kind)
		return nil
	}
	if sym.CommentErr != nil {
		line, msg := sym.CommentLine, sym.CommentErr.Error()
		var pe *jsdoc.ParseError
		if errors.As(sym.CommentErr, &pe) {
			line, msg = sym.CommentLine+pe.Line, pe.Msg
		}
		r.diag(d.Line, SeverityWarning, "%s: malformed doc comment on %s at %s:%d: %s", d.Name, sym.Longname, sym.File, line, msg)
	}
	if !sym.Documented() {
		r.log.WithField("symbol", sym.Longname).Debug("documenting symbol without doc comment")
	}

	e := autodoc.FromSymbol(sym)
	if err := autodoc.Apply(e, d); err != nil {
		r.diag(d.Line, SeverityError, "%s: %v", d.Name, err)
		return nil
	}
	e.Content = r.blocks(e.Content)

	if sel, ok := d.Option(autodoc.OptionMembers); ok && d.Name == DirectiveAutoClass {
		members, missing := autodoc.Members(r.index.Members(sym.Longname), sel)
		for _, name := range missing {
			r.diag(d.Line, SeverityWarning, "%s: %s has no member %q", d.Name, sym.Longname, name)
		}
		e.Members = members
	}
	return e
}
