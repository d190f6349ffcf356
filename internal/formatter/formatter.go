// Package formatter runs an external code formatter over file content.
package formatter

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
)

// ErrUnavailable is returned when the formatter binary cannot be located.
var ErrUnavailable = errors.New("formatter not available")

// Formatter reformats the content of a single file.
type Formatter interface {
	// Available reports whether the formatter can run at all.
	Available() bool

	// Format returns content as the formatter would write it. path is only
	// used to select the language and style configuration.
	Format(path string, content []byte) ([]byte, error)
}

// DefaultClangFormat is the binary looked up on PATH.
const DefaultClangFormat = "clang-format"

// ClangFormat formats C-family sources with clang-format.
// The binary is located once, on first use.
type ClangFormat struct {
	Binary string
	Style  string // passed as --style when set, otherwise clang-format looks for .clang-format

	once sync.Once
	path string
	err  error
}

// NewClangFormat creates a ClangFormat. An empty binary means DefaultClangFormat.
func NewClangFormat(binary, style string) *ClangFormat {
	if binary == "" {
		binary = DefaultClangFormat
	}
	return &ClangFormat{Binary: binary, Style: style}
}

func (c *ClangFormat) probe() {
	c.path, c.err = exec.LookPath(c.Binary)
	if c.err != nil {
		slog.Debug("clang-format not found", "binary", c.Binary, "error", c.err)
		return
	}
	slog.Debug("clang-format found", "path", c.path)
}

// Available reports whether the binary was found.
func (c *ClangFormat) Available() bool {
	c.once.Do(c.probe)
	return c.err == nil
}

// Format pipes content through clang-format.
func (c *ClangFormat) Format(path string, content []byte) ([]byte, error) {
	if !c.Available() {
		return nil, ErrUnavailable
	}

	args := []string{"--assume-filename=" + path}
	if c.Style != "" {
		args = append(args, "--style="+c.Style)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(c.path, args...)
	cmd.Stdin = bytes.NewReader(content)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("clang-format failed on %s: %w: %s", path, err, msg)
		}
		return nil, fmt.Errorf("clang-format failed on %s: %w", path, err)
	}
	return stdout.Bytes(), nil
}

// Func adapts a function to the Formatter interface.
type Func func(path string, content []byte) ([]byte, error)

// Available always reports true.
func (f Func) Available() bool { return true }

// Format calls f.
func (f Func) Format(path string, content []byte) ([]byte, error) {
	return f(path, content)
}

// Unavailable is a Formatter that can never run.
type Unavailable struct{}

func (Unavailable) Available() bool { return false }

func (Unavailable) Format(path string, content []byte) ([]byte, error) {
	return nil, ErrUnavailable
}
