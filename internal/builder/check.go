package builder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/example/autojs/internal/config"
)

// Clean removes the build directory. It refuses when the directory is, or
// contains, the working directory, the docs directory or a source root.
func Clean(cfg *config.Config) error {
	if cfg.Out == "" {
		return errors.New("refusing to remove build directory: no path set")
	}
	out, err := filepath.Abs(cfg.Out)
	if err != nil {
		return fmt.Errorf("clean %s: %w", cfg.Out, err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("clean %s: %w", cfg.Out, err)
	}
	protected := append([]string{wd, cfg.Docs}, cfg.Sources...)
	for _, p := range protected {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("clean %s: %w", cfg.Out, err)
		}
		if within(abs, out) {
			return fmt.Errorf("refusing to remove build directory %s: it contains %s", cfg.Out, abs)
		}
	}

	if err := os.RemoveAll(out); err != nil {
		return fmt.Errorf("clean %s: %w", cfg.Out, err)
	}
	return nil
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Mismatch is a page whose rendering differs from its golden file.
type Mismatch struct {
	Name string
	// Diff is a unified diff from the golden file to the rendered page.
	Diff string
}

// Check renders in memory and compares every page with the file of the same
// name under goldenDir. Golden files with no rendered page are reported too.
func (b *Builder) Check(ctx context.Context, goldenDir string) ([]Mismatch, *Report, error) {
	outputs, report, err := b.Render(ctx)
	if err != nil {
		return nil, nil, err
	}

	var mismatches []Mismatch
	rendered := map[string]bool{}
	for _, o := range outputs {
		rendered[o.Name] = true
		want, err := os.ReadFile(filepath.Join(goldenDir, filepath.FromSlash(o.Name)))
		if errors.Is(err, fs.ErrNotExist) {
			mismatches = append(mismatches, Mismatch{Name: o.Name, Diff: unified(o.Name, "", string(o.Content))})
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read golden %s: %w", o.Name, err)
		}
		if diff := unified(o.Name, string(want), string(o.Content)); diff != "" {
			mismatches = append(mismatches, Mismatch{Name: o.Name, Diff: diff})
		}
	}

	ext := "." + b.renderer.Extension()
	err = filepath.WalkDir(goldenDir, func(path string, de fs.DirEntry, err error) error {
		if err != nil || de.IsDir() || filepath.Ext(path) != ext {
			return err
		}
		rel, err := filepath.Rel(goldenDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if rendered[name] {
			return nil
		}
		want, err := os.ReadFile(path) // #nosec G304
		if err != nil {
			return err
		}
		mismatches = append(mismatches, Mismatch{Name: name, Diff: unified(name, string(want), "")})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk golden files: %w", err)
	}

	sort.Slice(mismatches, func(i, j int) bool { return mismatches[i].Name < mismatches[j].Name })
	return mismatches, report, nil
}

func unified(name, want, got string) string {
	text, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "golden/" + name,
		ToFile:   "built/" + name,
		Context:  3,
	})
	return text
}
