package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/example/autojs/internal/builder"
	"github.com/example/autojs/internal/jssource"
)

func newSymbolsCommand(a *app) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "symbols",
		Short: "List the JavaScript symbols found in the sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			b, err := builder.New(cfg, a.log)
			if err != nil {
				return err
			}
			ix, err := b.Scan(cmd.Context())
			if err != nil {
				return err
			}
			if output == "-" {
				return writeSymbols(cmd.OutOrStdout(), format, ix.Symbols())
			}
			return writeOutputWithFS(ix.Symbols(), output, format, defaultFileSystem)
		},
	}

	addConfigFlags(cmd.Flags())
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")
	cmd.Flags().StringVar(&output, "output", "-", "Path to output file or '-' for stdout")
	return cmd
}

// FileSystem interface for dependency injection
type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
	Create(name string) (*os.File, error)
}

// DefaultFileSystem implements FileSystem
type DefaultFileSystem struct{}

func (fs *DefaultFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (fs *DefaultFileSystem) Create(name string) (*os.File, error) {
	return os.Create(name) // #nosec G304
}

var defaultFileSystem FileSystem = &DefaultFileSystem{}

func writeOutputWithFS(symbols []*jssource.Symbol, path, format string, fs FileSystem) error {
	outDir := filepath.Dir(path)
	if fi, err := fs.Stat(outDir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory %s does not exist", outDir)
		}
		return err
	} else if !fi.IsDir() {
		return fmt.Errorf("output path %s is not a directory", outDir)
	}

	f, err := fs.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return writeSymbols(f, format, symbols)
}

// SymbolWriter interface for dependency injection
type SymbolWriter interface {
	MarshalYAML(v interface{}) ([]byte, error)
}

// DefaultSymbolWriter implements SymbolWriter
type DefaultSymbolWriter struct{}

func (w *DefaultSymbolWriter) MarshalYAML(v interface{}) ([]byte, error) {
	return yaml.Marshal(v)
}

var defaultSymbolWriter SymbolWriter = &DefaultSymbolWriter{}

func writeSymbols(w io.Writer, format string, symbols []*jssource.Symbol) error {
	return writeSymbolsWithWriter(w, format, symbols, defaultSymbolWriter)
}

func writeSymbolsWithWriter(w io.Writer, format string, symbols []*jssource.Symbol, writer SymbolWriter) error {
	if symbols == nil {
		symbols = []*jssource.Symbol{}
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(symbols)
	case "yaml", "yml":
		data, err := writer.MarshalYAML(symbols)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
