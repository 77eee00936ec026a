// Package config loads autojs settings from autojs.yml, AUTOJS_* environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read by Load.
const EnvPrefix = "AUTOJS"

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "autojs"

// Config is the merged build configuration.
type Config struct {
	// Docs is the directory holding the documentation sources.
	Docs string `mapstructure:"docs" validate:"required"`
	// Sources are the JavaScript source roots.
	Sources []string `mapstructure:"source" validate:"min=1,dive,required"`
	// Out is the build directory.
	Out        string   `mapstructure:"out" validate:"required"`
	Builder    string   `mapstructure:"builder" validate:"required,oneof=text rst markdown"`
	DocsSuffix string   `mapstructure:"docs_suffix" validate:"required,startswith=."`
	Exclude    []string `mapstructure:"exclude"`
	Extensions []string `mapstructure:"extensions"`
	// Width is the text builder's column limit.
	Width int `mapstructure:"width" validate:"gte=20"`
	// Debounce delays watch-mode rebuilds until changes settle.
	Debounce time.Duration `mapstructure:"debounce" validate:"gte=0"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Docs:       ".",
		Sources:    []string{"."},
		Out:        "_build",
		Builder:    "text",
		DocsSuffix: ".rst",
		Width:      70,
		Debounce:   300 * time.Millisecond,
	}
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"docs":        "docs",
	"source":      "source",
	"out":         "out",
	"builder":     "builder",
	"docs-suffix": "docs_suffix",
	"exclude":     "exclude",
	"ext":         "extensions",
	"width":       "width",
	"debounce":    "debounce",
}

// Options controls where Load looks for settings.
type Options struct {
	// File is an explicit config file. When empty, autojs.{yml,yaml,json,toml}
	// is looked up in SearchPaths and its absence is not an error.
	File        string
	SearchPaths []string
	// Flags, when set, override file and environment values for every flag
	// the user actually passed.
	Flags *pflag.FlagSet
}

// Load merges defaults, the config file, the environment and flags, then
// validates the result.
func Load(opts Options) (*Config, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("docs", d.Docs)
	v.SetDefault("source", d.Sources)
	v.SetDefault("out", d.Out)
	v.SetDefault("builder", d.Builder)
	v.SetDefault("docs_suffix", d.DocsSuffix)
	v.SetDefault("exclude", []string{})
	v.SetDefault("extensions", []string{})
	v.SetDefault("width", d.Width)
	v.SetDefault("debounce", d.Debounce)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.File, err)
		}
	} else {
		v.SetConfigName(DefaultFile)
		paths := opts.SearchPaths
		if len(paths) == 0 {
			paths = []string{"."}
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report the config key rather than the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError lists the failed checks per config key.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s (%s)", k, strings.Join(e.Fields[k], ", "))
	}
	return "invalid config: " + strings.Join(parts, "; ")
}

// Validate checks the configuration against its field constraints.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: map[string][]string{}}
	for _, ve := range verrs {
		field := ve.Field()
		// Slice elements are reported as "source[0]".
		if i := strings.IndexByte(field, '['); i > 0 {
			field = field[:i]
		}
		out.Fields[field] = append(out.Fields[field], ve.Tag())
	}
	return out
}
