package match

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultInclude is the include pattern set used when none is configured.
var DefaultInclude = []string{
	"*.[ch]", "*.[ch]pp", "*.[ch]xx",
	"*.txt", "*.cmake",
	"*.sh", "*.bash", "*.bat",
	"*.xsd", "*.xml",
}

// DefaultExclude is the exclude pattern set used when none is configured.
var DefaultExclude = []string{
	".*",
}

// CFamily matches C and C++ sources and headers.
var CFamily = []string{
	"*.[ch]", "*.[ch]pp", "*.[ch]xx", "*.cc", "*.hh",
	"*.[ch]++", "*.inl", "*.ipp", "*.tpp",
}

// IsCFamily reports whether relPath names a C or C++ file.
func IsCFamily(relPath string) bool {
	_, ok := MatchAny(CFamily, relPath)
	return ok
}

// Matcher decides which tree entries are visited.
// Exclude patterns always take precedence over include patterns.
type Matcher struct {
	Include []string
	Exclude []string

	// NoSkip bypasses the exclude set entirely.
	NoSkip bool
}

// New creates a Matcher and validates every pattern.
func New(include, exclude []string, noSkip bool) (*Matcher, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return &Matcher{Include: include, Exclude: exclude, NoSkip: noSkip}, nil
}

// Match reports whether relPath matches pattern.
// Patterns without a path separator are matched against the base name only;
// patterns with a separator are matched against the slash-separated relative path.
func Match(pattern, relPath string) bool {
	relPath = strings.TrimPrefix(relPath, "./")
	target := path.Base(relPath)
	if strings.Contains(pattern, "/") {
		target = relPath
	}
	matched, err := doublestar.Match(pattern, target)
	if err != nil {
		return false
	}
	return matched
}

// MatchAny reports whether relPath matches at least one of patterns.
func MatchAny(patterns []string, relPath string) (string, bool) {
	for _, p := range patterns {
		if Match(p, relPath) {
			return p, true
		}
	}
	return "", false
}

// Excluded reports whether relPath is pruned by the exclude set.
func (m *Matcher) Excluded(relPath string) bool {
	if m.NoSkip {
		return false
	}
	if p, ok := MatchAny(m.Exclude, relPath); ok {
		slog.Debug("excluded", "path", relPath, "pattern", p)
		return true
	}
	return false
}

// ShouldVisit reports whether an entry should be descended into (directories)
// or yielded (files). An empty include set matches no file.
func (m *Matcher) ShouldVisit(relPath string, isDir bool) bool {
	if m.Excluded(relPath) {
		return false
	}
	if isDir {
		return true
	}
	p, ok := MatchAny(m.Include, relPath)
	if !ok {
		slog.Debug("not included", "path", relPath)
		return false
	}
	slog.Debug("included", "path", relPath, "pattern", p)
	return true
}
