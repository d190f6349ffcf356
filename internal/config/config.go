package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prettymuchbryce/fmtcheck/internal/copyright"
	"github.com/prettymuchbryce/fmtcheck/internal/eol"
	"github.com/prettymuchbryce/fmtcheck/internal/formatter"
	"github.com/prettymuchbryce/fmtcheck/internal/match"
	"github.com/prettymuchbryce/fmtcheck/internal/pathutil"
	"github.com/prettymuchbryce/fmtcheck/internal/rules"
	"github.com/prettymuchbryce/fmtcheck/internal/source"
	"github.com/prettymuchbryce/fmtcheck/internal/textenc"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level configuration.
type Config struct {
	Paths       PathsConfig       `yaml:"paths"`
	Check       CheckConfig       `yaml:"check"`
	Fix         FixConfig         `yaml:"fix"`
	Copyright   CopyrightConfig   `yaml:"copyright"`
	ClangFormat ClangFormatConfig `yaml:"clang_format"`
	Watch       WatchConfig       `yaml:"watch"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// PathsConfig selects the files a run looks at.
type PathsConfig struct {
	Include    StringList `yaml:"include"`
	Exclude    StringList `yaml:"exclude"`
	SkipData   StringList `yaml:"skip_data"`
	NoSkip     bool       `yaml:"no_skip"`
	SkipBinary bool       `yaml:"skip_binary"`
	MaxSize    SizeSpec   `yaml:"max_size"`
}

// CheckConfig configures the check command. EOL and Encoding apply to fixes too.
type CheckConfig struct {
	Checks     StringList `yaml:"checks"`
	MaxLineLen int        `yaml:"maxlinelen"`
	EOL        eol.EOL    `yaml:"eol"`
	Encoding   string     `yaml:"encoding"`
	FailFast   bool       `yaml:"failfast"`
}

// FixConfig configures the fix command.
type FixConfig struct {
	Fixes   StringList `yaml:"fixes"`
	TabSize int        `yaml:"tabsize"`
	Backup  bool       `yaml:"backup"`
}

// CopyrightConfig configures copyright detection, update and insertion.
type CopyrightConfig struct {
	Template       string             `yaml:"template"`
	TemplateFile   string             `yaml:"template_file"`
	Year           int                `yaml:"year"`
	YearFrom       copyright.YearFrom `yaml:"year_from"`
	UpdateExisting bool               `yaml:"update_existing"`
	HeaderLines    int                `yaml:"header_lines"`
}

// ClangFormatConfig locates the external formatter.
type ClangFormatConfig struct {
	Binary string `yaml:"binary"`
	Style  string `yaml:"style"`
}

// WatchConfig represents watch-specific configuration.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Include:    append(StringList{}, match.DefaultInclude...),
			Exclude:    append(StringList{}, match.DefaultExclude...),
			SkipData:   StringList{},
			SkipBinary: true,
		},
		Check: CheckConfig{
			Checks:   append(StringList{}, rules.DefaultChecks...),
			EOL:      eol.Native,
			Encoding: rules.DefaultEncoding,
		},
		Fix: FixConfig{
			Fixes:   append(StringList{}, rules.DefaultFixes...),
			TabSize: rules.DefaultTabSize,
		},
		Copyright: CopyrightConfig{
			YearFrom:       copyright.YearFromNow,
			UpdateExisting: true,
			HeaderLines:    copyright.DefaultHeaderLines,
		},
		ClangFormat: ClangFormatConfig{
			Binary: formatter.DefaultClangFormat,
		},
		Watch:   DefaultWatchConfig(),
		Logging: DefaultLoggingConfig(),
	}
}

// DefaultWatchConfig returns the default watch configuration.
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{
		Debounce: 500 * time.Millisecond,
	}
}

// DefaultLoggingConfig returns the default logging configuration.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level: "warn",
	}
}

// LoadWithFs reads and parses a configuration file using the provided
// filesystem. An empty path returns the defaults.
func LoadWithFs(path string, afs afero.Fs) (*Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	data, err := afero.ReadFile(afs, pathutil.ExpandTilde(path))
	if err != nil {
		return nil, err
	}

	// Keys absent from the file keep their defaults
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// Validate checks values that YAML decoding cannot.
func (c *Config) Validate() error {
	if c.Check.MaxLineLen < 0 {
		return fmt.Errorf("check.maxlinelen must not be negative, got %d", c.Check.MaxLineLen)
	}
	if c.Fix.TabSize < 0 {
		return fmt.Errorf("fix.tabsize must not be negative, got %d", c.Fix.TabSize)
	}
	if c.Copyright.HeaderLines < 0 {
		return fmt.Errorf("copyright.header_lines must not be negative, got %d", c.Copyright.HeaderLines)
	}
	if c.Copyright.Year < 0 {
		return fmt.Errorf("copyright.year must not be negative, got %d", c.Copyright.Year)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	if err := c.Paths.MaxSize.Validate(); err != nil {
		return fmt.Errorf("paths.max_size: %w", err)
	}
	if c.Copyright.Template != "" && c.Copyright.TemplateFile != "" {
		return fmt.Errorf("copyright.template and copyright.template_file are mutually exclusive")
	}
	if _, err := textenc.Lookup(c.Check.Encoding); err != nil {
		return err
	}
	if _, err := source.CompileSkipData(c.Paths.SkipData); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q: must be one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}

// Matcher builds the pattern matcher for the paths section.
func (c *Config) Matcher() (*match.Matcher, error) {
	return match.New(c.Paths.Include, c.Paths.Exclude, c.Paths.NoSkip)
}

// Options resolves the configuration into run options. The copyright
// template file, if any, is read from afs. Template errors are returned here
// so that no file is processed with an unusable template.
func (c *Config) Options(afs afero.Fs) (*rules.Options, error) {
	opts := &rules.Options{
		Checks:      append([]string{}, c.Check.Checks...),
		Fixes:       append([]string{}, c.Fix.Fixes...),
		MaxLineLen:  c.Check.MaxLineLen,
		EOL:         c.Check.EOL,
		Encoding:    c.Check.Encoding,
		TabSize:     c.Fix.TabSize,
		FailFast:    c.Check.FailFast,
		Backup:      c.Fix.Backup,
		SkipData:    append([]string{}, c.Paths.SkipData...),
		SkipBinary:  c.Paths.SkipBinary,
		MaxSize:     c.Paths.MaxSize.ToBytes(),
		HeaderLines: c.Copyright.HeaderLines,
		Years: copyright.YearResolver{
			Year: c.Copyright.Year,
			From: c.Copyright.YearFrom,
		},
		Formatter: formatter.NewClangFormat(c.ClangFormat.Binary, c.ClangFormat.Style),
	}

	template := c.Copyright.Template
	if c.Copyright.TemplateFile != "" {
		data, err := afero.ReadFile(afs, pathutil.ExpandTilde(c.Copyright.TemplateFile))
		if err != nil {
			return nil, fmt.Errorf("failed to read copyright template: %w", err)
		}
		template = string(data)
	}

	manager, err := copyright.NewManager(template, c.Copyright.UpdateExisting, c.Copyright.HeaderLines)
	if err != nil {
		return nil, err
	}
	opts.Copyright = manager

	return opts, nil
}

// Dump writes the configuration as YAML.
func (c *Config) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
