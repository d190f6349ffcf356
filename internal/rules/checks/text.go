// Package checks registers the built-in check rules.
package checks

import (
	"strings"
	"unicode/utf8"

	"github.com/prettymuchbryce/fmtcheck/internal/eol"
	"github.com/prettymuchbryce/fmtcheck/internal/report"
	"github.com/prettymuchbryce/fmtcheck/internal/rules"
	"github.com/prettymuchbryce/fmtcheck/internal/source"
)

func init() {
	rules.RegisterCheck(&rules.CheckRule{
		Name:      "tabs",
		Label:     rules.Label("tabs"),
		NeedsText: true,
		ByteLevel: true,
		Check:     checkTabs,
	})
	rules.RegisterCheck(&rules.CheckRule{
		Name:      "eol",
		Label:     rules.Label("invalid EOL"),
		NeedsText: true,
		ByteLevel: true,
		Check:     checkEOL,
	})
	rules.RegisterCheck(&rules.CheckRule{
		Name:      "trailing",
		Label:     rules.Label("trailing spaces"),
		NeedsText: true,
		ByteLevel: true,
		Check:     checkTrailing,
	})
	rules.RegisterCheck(&rules.CheckRule{
		Name:      "linelen",
		Label:     rules.Label("line too long"),
		NeedsText: true,
		Enabled:   func(opts *rules.Options) bool { return opts.MaxLineLen > 0 },
		Check:     checkLineLen,
	})
	rules.RegisterCheck(&rules.CheckRule{
		Name:      "eof",
		Label:     rules.Label("missing EOL at EOF"),
		NeedsText: true,
		ByteLevel: true,
		Check:     checkEOF,
	})
}

// linesWhere fails with one finding per line matching pred.
func linesWhere(text, msg string, pred func(string) bool) rules.Result {
	var findings []report.Finding
	for line := range source.Lines(text) {
		if pred(line.Text) {
			findings = append(findings, report.Finding{Line: line.Number, Message: msg})
		}
	}
	if len(findings) > 0 {
		return rules.Fail(findings...)
	}
	return rules.Pass()
}

func checkTabs(f *source.File, opts *rules.Options) (rules.Result, error) {
	return linesWhere(f.Text, "tab character", func(s string) bool {
		return strings.IndexByte(s, '\t') >= 0
	}), nil
}

func checkEOL(f *source.File, opts *rules.Options) (rules.Result, error) {
	ref := opts.EOL.Resolve()
	var findings []report.Finding
	for _, n := range eol.Mismatches([]byte(f.Text), ref) {
		findings = append(findings, report.Finding{Line: n, Message: "line terminator is not " + ref.String()})
	}
	if len(findings) > 0 {
		return rules.Fail(findings...), nil
	}
	return rules.Pass(), nil
}

func checkTrailing(f *source.File, opts *rules.Options) (rules.Result, error) {
	var findings []report.Finding
	for line := range source.Lines(f.Text) {
		if line.HasTrailingSpace() {
			findings = append(findings, report.Finding{Line: line.Number, Message: "trailing whitespace"})
		}
	}
	if len(findings) > 0 {
		return rules.Fail(findings...), nil
	}
	return rules.Pass(), nil
}

func checkLineLen(f *source.File, opts *rules.Options) (rules.Result, error) {
	max := opts.MaxLineLen
	return linesWhere(f.Text, "line too long", func(s string) bool {
		return utf8.RuneCountInString(s) > max
	}), nil
}

func checkEOF(f *source.File, opts *rules.Options) (rules.Result, error) {
	text := f.Text
	if text == "" {
		return rules.Pass(), nil
	}
	if last := text[len(text)-1]; last == '\n' || last == '\r' {
		return rules.Pass(), nil
	}
	return rules.Fail(report.Finding{Line: strings.Count(text, "\n") + 1, Message: "no line terminator at end of file"}), nil
}
