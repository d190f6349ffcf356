package copyright

import (
	"fmt"
	"strings"
	"time"

	"github.com/djherbis/times"
	"gopkg.in/yaml.v3"
)

// YearFrom selects where the target year comes from when none is given.
type YearFrom string

const (
	YearFromNow      YearFrom = "now"
	YearFromModified YearFrom = "modified"
	YearFromCreated  YearFrom = "created"
)

// ParseYearFrom validates a year source name.
func ParseYearFrom(s string) (YearFrom, error) {
	switch YearFrom(strings.ToLower(strings.TrimSpace(s))) {
	case "", YearFromNow:
		return YearFromNow, nil
	case YearFromModified, "mtime":
		return YearFromModified, nil
	case YearFromCreated, "birth":
		return YearFromCreated, nil
	default:
		return "", fmt.Errorf("invalid year source %q: must be one of now, modified, created", s)
	}
}

// UnmarshalYAML accepts any spelling ParseYearFrom accepts.
func (y *YearFrom) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseYearFrom(s)
	if err != nil {
		return err
	}
	*y = parsed
	return nil
}

// YearResolver picks the target year for a file.
type YearResolver struct {
	// Year, when non-zero, is used for every file.
	Year int
	From YearFrom

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Resolve returns the target year for the file at path. modTime is the
// modification time from the directory listing and serves as a fallback when
// the platform cannot report more precise timestamps.
func (r *YearResolver) Resolve(path string, modTime time.Time) int {
	if r.Year != 0 {
		return r.Year
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	switch r.From {
	case YearFromModified:
		if !modTime.IsZero() {
			return modTime.Year()
		}
	case YearFromCreated:
		ts, err := times.Stat(path)
		if err == nil {
			if ts.HasBirthTime() {
				return ts.BirthTime().Year()
			}
			return ts.ModTime().Year()
		}
		if !modTime.IsZero() {
			return modTime.Year()
		}
	}

	return now().Year()
}
