package eol

import (
	"bytes"
	"fmt"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// EOL identifies a line terminator style.
type EOL string

const (
	Native EOL = "native"
	Unix   EOL = "unix"
	Win    EOL = "win"
)

// Parse converts a case-insensitive name into an EOL.
func Parse(s string) (EOL, error) {
	switch EOL(strings.ToLower(strings.TrimSpace(s))) {
	case "", Native:
		return Native, nil
	case Unix, "lf":
		return Unix, nil
	case Win, "crlf", "windows":
		return Win, nil
	default:
		return "", fmt.Errorf("invalid end of line %q: must be one of native, unix, win", s)
	}
}

// Resolve maps Native to the platform terminator style.
func (e EOL) Resolve() EOL {
	if e == Native || e == "" {
		if runtime.GOOS == "windows" {
			return Win
		}
		return Unix
	}
	return e
}

// Bytes returns the terminator sequence.
func (e EOL) Bytes() []byte {
	if e.Resolve() == Win {
		return []byte("\r\n")
	}
	return []byte("\n")
}

func (e EOL) String() string {
	return string(e)
}

// UnmarshalYAML accepts any spelling Parse accepts.
func (e *EOL) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Set implements pflag.Value so an EOL can be bound to a flag directly.
func (e *EOL) Set(s string) error {
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Type implements pflag.Value.
func (e *EOL) Type() string {
	return "eol"
}

// Normalize rewrites every line terminator in data to target. A run of
// carriage returns directly before a newline belongs to the terminator;
// carriage returns elsewhere are left untouched.
func Normalize(data []byte, target EOL) []byte {
	term := target.Bytes()
	out := make([]byte, 0, len(data)+bytes.Count(data, []byte("\n")))
	start := 0
	for i, b := range data {
		if b != '\n' {
			continue
		}
		end := i
		for end > start && data[end-1] == '\r' {
			end--
		}
		out = append(out, data[start:end]...)
		out = append(out, term...)
		start = i + 1
	}
	return append(out, data[start:]...)
}

// Detect returns the style of the first terminator found in data, or
// fallback when data has no line terminator.
func Detect(data []byte, fallback EOL) EOL {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return fallback
	}
	if i > 0 && data[i-1] == '\r' {
		return Win
	}
	return Unix
}

// Mismatches returns the 1-based line numbers whose terminator differs from
// the reference style.
func Mismatches(data []byte, ref EOL) []int {
	ref = ref.Resolve()
	var lines []int
	lineno := 1
	for i, b := range data {
		if b != '\n' {
			continue
		}
		crlf := i > 0 && data[i-1] == '\r'
		if (ref == Unix && crlf) || (ref == Win && !crlf) {
			lines = append(lines, lineno)
		}
		lineno++
	}
	return lines
}
