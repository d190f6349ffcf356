// Package source loads file content once so that every rule of a run works
// on the same bytes.
package source

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/prettymuchbryce/fmtcheck/internal/srctree"
	"github.com/prettymuchbryce/fmtcheck/internal/textenc"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

// Loader reads files for the check, fix and copyright runners.
type Loader struct {
	Fs       afero.Fs
	Codec    *textenc.Codec
	SkipData []*regexp.Regexp

	// SkipBinary skips files whose detected MIME type is not textual.
	SkipBinary bool

	// MaxSize skips files larger than this many bytes without reading them.
	// Zero means no limit.
	MaxSize int64
}

// File is a loaded candidate file.
type File struct {
	srctree.Entry

	Data []byte

	// Text holds Data decoded to UTF-8. When decoding fails under an
	// ASCII-compatible encoding it holds Data unchanged and Raw is set;
	// under any other encoding it is empty.
	Text      string
	DecodeErr error
	Raw       bool
}

// Decoded reports whether the content was valid under the configured encoding.
func (f *File) Decoded() bool {
	return f.DecodeErr == nil
}

// HasLines reports whether line structure is available in Text, decoded or raw.
func (f *File) HasLines() bool {
	return f.Decoded() || f.Raw
}

// CompileSkipData compiles skip-data regular expressions.
func CompileSkipData(patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid skip data pattern %q: %w", p, err)
		}
		res = append(res, re)
	}
	return res, nil
}

// Load reads the entry. It returns a nil File without error when the file is
// skipped by size or content (binary data or a skip-data pattern).
func (l *Loader) Load(e srctree.Entry) (*File, error) {
	if l.MaxSize > 0 && e.Size > l.MaxSize {
		slog.Debug("skipping large file", "path", e.Path, "size", e.Size, "max", l.MaxSize)
		return nil, nil
	}

	data, err := afero.ReadFile(l.Fs, e.Path)
	if err != nil {
		return nil, err
	}

	if l.SkipBinary && !IsText(data) {
		slog.Debug("skipping binary file", "path", e.Path)
		return nil, nil
	}

	for _, re := range l.SkipData {
		if re.Match(data) {
			slog.Debug("skipping file by content", "path", e.Path, "pattern", re.String())
			return nil, nil
		}
	}

	f := &File{Entry: e, Data: data}
	if l.Codec != nil {
		f.Text, f.DecodeErr = l.Codec.Decode(data)
		if f.DecodeErr != nil && l.Codec.ASCIICompatible() {
			f.Text = string(data)
			f.Raw = true
		}
	} else {
		f.Text = string(data)
	}
	return f, nil
}

// IsText reports whether data is detected as some text/plain subtype.
func IsText(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
