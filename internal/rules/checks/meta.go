package checks

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/prettymuchbryce/fmtcheck/internal/copyright"
	"github.com/prettymuchbryce/fmtcheck/internal/match"
	"github.com/prettymuchbryce/fmtcheck/internal/report"
	"github.com/prettymuchbryce/fmtcheck/internal/rules"
	"github.com/prettymuchbryce/fmtcheck/internal/source"
)

func init() {
	rules.RegisterCheck(&rules.CheckRule{
		Name:  "copyright",
		Label: rules.Label("missing copyright"),
		Check: checkCopyright,
	})
	rules.RegisterCheck(&rules.CheckRule{
		Name:      "relative-include",
		Label:     rules.Label("relative include"),
		NeedsText: true,
		ByteLevel: true,
		Applies:   isCFamily,
		Check:     checkRelativeInclude,
	})
	rules.RegisterCheck(&rules.CheckRule{
		Name:  "mode",
		Label: rules.Label("executable mode"),
		Check: checkMode,
	})
	rules.RegisterCheck(&rules.CheckRule{
		Name:      "clang-format",
		Label:     rules.Label("clang-format"),
		NeedsText: true,
		Applies:   isCFamily,
		Check:     checkClangFormat,
	})
}

func isCFamily(f *source.File) bool {
	return match.IsCFamily(f.RelPath)
}

// checkCopyright works on raw bytes so a non-ASCII © is still found.
func checkCopyright(f *source.File, opts *rules.Options) (rules.Result, error) {
	if copyright.Detect(f.Data, opts.HeaderLines) != nil {
		return rules.Pass(), nil
	}
	return rules.Fail(report.Finding{Message: "no copyright statement"}), nil
}

var includeDirective = regexp.MustCompile(`^\s*#\s*include\s*"([^"]+)"`)

func checkRelativeInclude(f *source.File, opts *rules.Options) (rules.Result, error) {
	var findings []report.Finding
	for line := range source.Lines(f.Text) {
		m := includeDirective.FindStringSubmatch(line.Text)
		if m == nil {
			continue
		}
		if msg := escapesTree(m[1]); msg != "" {
			findings = append(findings, report.Finding{Line: line.Number, Message: fmt.Sprintf("%q %s", m[1], msg)})
		}
	}
	if len(findings) > 0 {
		return rules.Fail(findings...), nil
	}
	return rules.Pass(), nil
}

// escapesTree explains why an include path leaves the including file's
// directory tree, or returns "".
func escapesTree(inc string) string {
	p := strings.ReplaceAll(inc, `\`, "/")
	if path.IsAbs(p) || (len(p) >= 2 && p[1] == ':') {
		return "is absolute"
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "refers to a parent directory"
		}
	}
	return ""
}

func checkMode(f *source.File, opts *rules.Options) (rules.Result, error) {
	if f.Mode.Perm()&0o111 == 0 {
		return rules.Pass(), nil
	}
	return rules.Fail(report.Finding{Message: fmt.Sprintf("executable bits set (%v)", f.Mode.Perm())}), nil
}

func checkClangFormat(f *source.File, opts *rules.Options) (rules.Result, error) {
	if opts.Formatter == nil || !opts.Formatter.Available() {
		return rules.NotApplicable("clang-format not available"), nil
	}
	current := []byte(f.Text)
	formatted, err := opts.Formatter.Format(f.Path, current)
	if err != nil {
		return rules.Result{}, err
	}
	if bytes.Equal(formatted, current) {
		return rules.Pass(), nil
	}
	return rules.Fail(report.Finding{Line: firstDifference(current, formatted), Message: "differs from clang-format output"}), nil
}

// firstDifference returns the 1-based line of the first differing byte.
func firstDifference(a, b []byte) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return bytes.Count(a[:i], []byte("\n")) + 1
}
