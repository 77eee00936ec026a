// Package cli provides the autojs command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/example/autojs/internal/config"
)

// app carries what the subcommands share.
type app struct {
	configFile string
	verbose    bool
	log        *logrus.Logger
}

// Execute creates and runs the root command. An interrupt cancels the
// command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand assembles the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{log: newLogger(os.Stderr)}

	rootCmd := &cobra.Command{
		Use:           "autojs",
		Short:         "Render JavaScript API documentation from doc comments",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.log.SetOutput(cmd.ErrOrStderr())
			if a.verbose {
				a.log.SetLevel(logrus.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Path to autojs.yml config file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newBuildCommand(a),
		newSymbolsCommand(a),
		newCheckCommand(a),
		newCleanCommand(a),
	)
	return rootCmd
}

func newLogger(w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	return logger
}

// addConfigFlags registers the flags that override config file settings.
func addConfigFlags(fs *pflag.FlagSet) {
	d := config.Defaults()
	fs.String("docs", d.Docs, "Directory containing the documentation sources")
	fs.StringSlice("source", d.Sources, "JavaScript source root (repeatable)")
	fs.String("out", d.Out, "Build directory")
	fs.String("builder", d.Builder, "Output format: text, rst or markdown")
	fs.String("docs-suffix", d.DocsSuffix, "File suffix of documentation sources")
	fs.StringSlice("exclude", nil, "Glob of source paths to skip (repeatable)")
	fs.StringSlice("ext", nil, "JavaScript file extensions to scan (repeatable)")
	fs.Int("width", d.Width, "Column limit of the text builder")
	fs.Duration("debounce", d.Debounce, "Delay before rebuilding in watch mode")
}

func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.Options{File: a.configFile, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}
	if cfg.File != "" {
		a.log.WithField("file", cfg.File).Debug("loaded config")
	}
	return cfg, nil
}
