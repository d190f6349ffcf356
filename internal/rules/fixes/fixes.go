// Package fixes registers the built-in fix rules.
package fixes

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/prettymuchbryce/fmtcheck/internal/eol"
	"github.com/prettymuchbryce/fmtcheck/internal/formatter"
	"github.com/prettymuchbryce/fmtcheck/internal/match"
	"github.com/prettymuchbryce/fmtcheck/internal/rules"
	"github.com/prettymuchbryce/fmtcheck/internal/source"
)

func init() {
	rules.RegisterFix(&rules.FixRule{
		Name:      "trailing",
		NeedsText: true,
		ByteLevel: true,
		Content:   fixTrailing,
	})
	rules.RegisterFix(&rules.FixRule{
		Name:      "tabs",
		NeedsText: true,
		ByteLevel: true,
		Enabled:   func(opts *rules.Options) bool { return opts.TabSize > 0 },
		Content:   fixTabs,
	})
	rules.RegisterFix(&rules.FixRule{
		Name:      "eol",
		NeedsText: true,
		ByteLevel: true,
		Content:   fixEOL,
	})
	rules.RegisterFix(&rules.FixRule{
		Name:      "eof",
		NeedsText: true,
		ByteLevel: true,
		Content:   fixEOF,
	})
	rules.RegisterFix(&rules.FixRule{
		Name:      "clang-format",
		NeedsText: true,
		Applies:   func(f *source.File) bool { return match.IsCFamily(f.RelPath) },
		Content:   fixClangFormat,
	})
	rules.RegisterFix(&rules.FixRule{
		Name: "mode",
		Mode: func(mode fs.FileMode) fs.FileMode { return mode &^ 0o111 },
	})
}

func fixTrailing(content []byte, f *source.File, opts *rules.Options) ([]byte, error) {
	var b bytes.Buffer
	b.Grow(len(content))
	for line := range source.Lines(string(content)) {
		b.WriteString(line.Trimmed())
	}
	return b.Bytes(), nil
}

func fixTabs(content []byte, f *source.File, opts *rules.Options) ([]byte, error) {
	return bytes.ReplaceAll(content, []byte("\t"), bytes.Repeat([]byte(" "), opts.TabSize)), nil
}

func fixEOL(content []byte, f *source.File, opts *rules.Options) ([]byte, error) {
	return eol.Normalize(content, opts.EOL.Resolve()), nil
}

// fixEOF terminates the last line using the style the file already uses.
func fixEOF(content []byte, f *source.File, opts *rules.Options) ([]byte, error) {
	if len(content) == 0 {
		return content, nil
	}
	if last := content[len(content)-1]; last == '\n' || last == '\r' {
		return content, nil
	}
	term := eol.Detect(content, opts.EOL.Resolve()).Bytes()
	return append(bytes.Clone(content), term...), nil
}

func fixClangFormat(content []byte, f *source.File, opts *rules.Options) ([]byte, error) {
	if opts.Formatter == nil {
		return content, nil
	}
	out, err := opts.Formatter.Format(f.Path, content)
	if errors.Is(err, formatter.ErrUnavailable) {
		slog.Debug("clang-format not available, skipping", "path", f.Path)
		return content, nil
	}
	return out, err
}
