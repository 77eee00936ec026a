package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	d := Defaults()
	fs.String("docs", d.Docs, "")
	fs.StringSlice("source", d.Sources, "")
	fs.String("out", d.Out, "")
	fs.String("builder", d.Builder, "")
	fs.Duration("debounce", d.Debounce, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Options{SearchPaths: []string{t.TempDir()}})
	require.NoError(t, err)

	want := Defaults()
	assert.Equal(t, want.Docs, cfg.Docs)
	assert.Equal(t, want.Sources, cfg.Sources)
	assert.Equal(t, want.Out, cfg.Out)
	assert.Equal(t, "text", cfg.Builder)
	assert.Equal(t, ".rst", cfg.DocsSuffix)
	assert.Equal(t, 300*time.Millisecond, cfg.Debounce)
	assert.Empty(t, cfg.File)
}

func TestLoad_FileFoundInSearchPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "autojs.yml", `
docs: site
source:
  - lib
  - vendor/widgets
out: public
builder: markdown
exclude:
  - "**/*.min.js"
debounce: 1s
`)

	cfg, err := Load(Options{SearchPaths: []string{dir}})
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "site", cfg.Docs)
	assert.Equal(t, []string{"lib", "vendor/widgets"}, cfg.Sources)
	assert.Equal(t, "public", cfg.Out)
	assert.Equal(t, "markdown", cfg.Builder)
	assert.Equal(t, []string{"**/*.min.js"}, cfg.Exclude)
	assert.Equal(t, time.Second, cfg.Debounce)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yml", "docs: from-file\nout: from-file\nbuilder: rst\n")
	t.Setenv("AUTOJS_OUT", "from-env")
	t.Setenv("AUTOJS_BUILDER", "markdown")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--builder", "text", "--source", "a,b"}))

	cfg, err := Load(Options{File: path, Flags: fs})
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Docs, "unset flag defaults do not override the file")
	assert.Equal(t, "from-env", cfg.Out, "environment overrides the file")
	assert.Equal(t, "text", cfg.Builder, "flags override everything")
	assert.Equal(t, []string{"a", "b"}, cfg.Sources)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(Options{File: filepath.Join(t.TempDir(), "nope.yml")})
	assert.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "autojs.yml", "docs: [unclosed\n")

	_, err := Load(Options{SearchPaths: []string{dir}})
	assert.Error(t, err)
}

func TestLoad_InvalidBuilder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "autojs.yml", "builder: html\n")

	_, err := Load(Options{SearchPaths: []string{dir}})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"oneof"}, verr.Fields["builder"])
	assert.Contains(t, err.Error(), "builder (oneof)")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
		tag    string
	}{
		{"empty docs", func(c *Config) { c.Docs = "" }, "docs", "required"},
		{"no sources", func(c *Config) { c.Sources = nil }, "source", "min"},
		{"blank source", func(c *Config) { c.Sources = []string{""} }, "source", "required"},
		{"suffix without dot", func(c *Config) { c.DocsSuffix = "rst" }, "docs_suffix", "startswith"},
		{"narrow width", func(c *Config) { c.Width = 5 }, "width", "gte"},
		{"negative debounce", func(c *Config) { c.Debounce = -time.Second }, "debounce", "gte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, []string{tt.tag}, verr.Fields[tt.field])
		})
	}

	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}
