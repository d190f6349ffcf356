package rules

import (
	"github.com/prettymuchbryce/fmtcheck/internal/copyright"
	"github.com/prettymuchbryce/fmtcheck/internal/eol"
	"github.com/prettymuchbryce/fmtcheck/internal/formatter"
)

// Default option values.
const (
	DefaultEncoding = "ascii"
	DefaultTabSize  = 4
)

// Options is the fully resolved configuration of a run.
type Options struct {
	// Checks and Fixes name the enabled rules.
	Checks []string
	Fixes  []string

	// MaxLineLen of zero disables the line length check.
	MaxLineLen int
	EOL        eol.EOL
	Encoding   string

	// TabSize of zero disables tab expansion.
	TabSize  int
	FailFast bool
	Backup   bool

	// SkipData are regular expressions; files whose content matches one are skipped.
	SkipData   []string
	SkipBinary bool

	// MaxSize skips files larger than this many bytes; zero means no limit.
	MaxSize int64

	// HeaderLines bounds copyright detection for the copyright check.
	HeaderLines int

	// Copyright is required by the copyright runner only.
	Copyright *copyright.Manager
	Years     copyright.YearResolver

	// Formatter backs the clang-format rules; nil disables them.
	Formatter formatter.Formatter
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() *Options {
	return &Options{
		Checks:      append([]string{}, DefaultChecks...),
		Fixes:       append([]string{}, DefaultFixes...),
		EOL:         eol.Native,
		Encoding:    DefaultEncoding,
		TabSize:     DefaultTabSize,
		SkipBinary:  true,
		HeaderLines: copyright.DefaultHeaderLines,
		Years:       copyright.YearResolver{From: copyright.YearFromNow},
	}
}

// EncodingName returns the configured encoding, defaulting to ascii.
func (o *Options) EncodingName() string {
	if o.Encoding == "" {
		return DefaultEncoding
	}
	return o.Encoding
}
