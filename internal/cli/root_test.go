package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/example/autojs/internal/jssource"
)

var projectDir = filepath.Join("..", "..", "testdata", "project")

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func projectArgs(out string) []string {
	return []string{
		"--docs", filepath.Join(projectDir, "docs"),
		"--source", projectDir,
		"--out", out,
	}
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "help", args: []string{}},
		{name: "unknown command", args: []string{"publish"}, wantErr: true},
		{name: "check needs golden", args: []string{"check"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			if tt.wantErr && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestBuildCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "_build")

	_, stderr, err := run(t, append([]string{"build"}, projectArgs(out)...)...)
	require.NoError(t, err)
	assert.Contains(t, stderr, "build finished")

	got, err := os.ReadFile(filepath.Join(out, "autofunction_short.txt"))
	require.NoError(t, err)
	assert.Equal(t, "someMethod(hi)\n\n   Here.\n", string(got))
}

func TestBuildCommand_BuilderFlag(t *testing.T) {
	out := filepath.Join(t.TempDir(), "_build")

	_, _, err := run(t, append([]string{"build", "--builder", "markdown"}, projectArgs(out)...)...)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "autoclass.md"))

	_, _, err = run(t, append([]string{"build", "--builder", "html"}, projectArgs(out)...)...)
	assert.Error(t, err)
}

func TestBuildCommand_ReportsDiagnostics(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "index.rst"), []byte(".. js:autofunction:: nowhere\n"), 0o644))

	_, stderr, err := run(t, "build", "--docs", filepath.Join(root, "docs"), "--source", root, "--out", filepath.Join(root, "_build"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build failed")
	assert.Contains(t, err.Error(), `index.rst:1: error: js:autofunction: no JavaScript symbol named "nowhere"`)
	assert.Equal(t, 1, strings.Count(stderr, "no JavaScript symbol named"), "each diagnostic is reported once")
	assert.Contains(t, stderr, "level=error")
	assert.Contains(t, stderr, "file=index.rst line=1")
}

func TestBuildCommand_ConfigFile(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "site")
	cfgFile := filepath.Join(root, "autojs.yml")
	content := "docs: " + filepath.Join(projectDir, "docs") + "\nsource:\n  - " + projectDir + "\nout: " + out + "\nbuilder: rst\n"
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0o644))

	_, _, err := run(t, "--config", cfgFile, "build")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "autofunction_long.rst"))
}

func TestSymbolsCommand(t *testing.T) {
	stdout, _, err := run(t, "symbols", "--source", projectDir, "--format", "yaml")
	require.NoError(t, err)

	var symbols []map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &symbols))
	require.Len(t, symbols, 6)
	assert.Equal(t, "linkDensity", symbols[0]["longname"])

	file := filepath.Join(t.TempDir(), "symbols.json")
	_, _, err = run(t, "symbols", "--source", projectDir, "--output", file)
	require.NoError(t, err)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	var decoded []jssource.Symbol
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "ContainingClass#someMethod", decoded[3].Longname)
}

func TestCheckCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "_build")
	args := append([]string{"check", "--golden", filepath.Join(projectDir, "golden")}, projectArgs(out)...)

	stdout, _, err := run(t, args...)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.NoDirExists(t, out, "check renders in memory")

	golden := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(golden, "autofunction_short.txt"), []byte("someMethod()\n"), 0o644))
	args = append([]string{"check", "--golden", golden}, projectArgs(out)...)
	stdout, _, err = run(t, args...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "5 page(s) differ")
	assert.Contains(t, stdout, "-someMethod()")
	assert.Contains(t, stdout, "+someMethod(hi)")
}

func TestCleanCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "_build")
	_, _, err := run(t, append([]string{"build"}, projectArgs(out)...)...)
	require.NoError(t, err)
	require.DirExists(t, out)

	_, _, err = run(t, "clean", "--out", out)
	require.NoError(t, err)
	assert.NoDirExists(t, out)
}

func TestVerboseLogging(t *testing.T) {
	_, stderr, err := run(t, "--verbose", "symbols", "--source", projectDir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "level=debug")
}

type failingSymbolWriter struct{}

func (failingSymbolWriter) MarshalYAML(interface{}) ([]byte, error) {
	return nil, errors.New("yaml failure")
}

func TestWriteSymbolsWithWriter(t *testing.T) {
	symbols := []*jssource.Symbol{{Name: "f", Longname: "f", Kind: jssource.KindFunction}}

	var buf bytes.Buffer
	require.NoError(t, writeSymbolsWithWriter(&buf, "json", symbols, defaultSymbolWriter))
	assert.True(t, strings.HasPrefix(buf.String(), "[\n  {\n    \"name\": \"f\""))

	buf.Reset()
	require.NoError(t, writeSymbolsWithWriter(&buf, "json", nil, defaultSymbolWriter))
	assert.Equal(t, "[]\n", buf.String())

	err := writeSymbolsWithWriter(&buf, "yaml", symbols, failingSymbolWriter{})
	assert.EqualError(t, err, "yaml failure")

	err = writeSymbolsWithWriter(&buf, "xml", symbols, defaultSymbolWriter)
	assert.EqualError(t, err, "unsupported format: xml")
}

type mockFileSystem struct {
	statInfo  os.FileInfo
	statErr   error
	createErr error
}

func (m *mockFileSystem) Stat(string) (os.FileInfo, error) { return m.statInfo, m.statErr }

func (m *mockFileSystem) Create(string) (*os.File, error) { return nil, m.createErr }

func TestWriteOutputWithFS(t *testing.T) {
	fileInfo, err := os.Stat(t.TempDir())
	require.NoError(t, err)
	notDir, err := os.Stat(filepath.Join(projectDir, "code.js"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		fs      *mockFileSystem
		wantErr string
	}{
		{"missing directory", &mockFileSystem{statErr: os.ErrNotExist}, "does not exist"},
		{"stat failure", &mockFileSystem{statErr: errors.New("permission denied")}, "permission denied"},
		{"not a directory", &mockFileSystem{statInfo: notDir}, "is not a directory"},
		{"create failure", &mockFileSystem{statInfo: fileInfo, createErr: errors.New("read-only")}, "read-only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := writeOutputWithFS(nil, "out/symbols.json", "json", tt.fs)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
