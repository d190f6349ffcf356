package rules

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"strings"

	"github.com/prettymuchbryce/fmtcheck/internal/report"
	"github.com/prettymuchbryce/fmtcheck/internal/source"
	"github.com/prettymuchbryce/fmtcheck/internal/srctree"
	"github.com/prettymuchbryce/fmtcheck/internal/textenc"

	"github.com/spf13/afero"
)

// maxLoggedLines bounds the line numbers listed in a verbose log line.
const maxLoggedLines = 10

// Report aggregates a check run.
type Report struct {
	// Counts maps a check name to the number of files failing it.
	Counts   map[string]int
	Files    int
	Errors   int
	FailFast bool

	rules []*CheckRule
	opts  *Options
}

// Failed reports whether any check failed or any file could not be checked.
func (r *Report) Failed() bool {
	if r.FailFast || r.Errors > 0 {
		return true
	}
	for _, n := range r.Counts {
		if n > 0 {
			return true
		}
	}
	return false
}

// Err maps the report to ErrFailFast, ErrCheckFailed, ErrFilesFailed or nil.
func (r *Report) Err() error {
	switch {
	case r.FailFast:
		return ErrFailFast
	case r.Failed() && len(r.Counts) > 0:
		return ErrCheckFailed
	case r.Errors > 0:
		return ErrFilesFailed
	}
	return nil
}

// Summary renders the report for a reporter.
func (r *Report) Summary() report.Summary {
	s := report.Summary{
		Command:  "check",
		Files:    r.Files,
		Errors:   r.Errors,
		FailFast: r.FailFast,
		Failed:   true,
	}
	for _, rule := range r.rules {
		if n := r.Counts[rule.Name]; n > 0 {
			s.Rows = append(s.Rows, report.SummaryRow{Label: rule.Label(r.opts), Count: n})
		}
	}
	return s
}

// CheckRunner runs the enabled checks over a walk.
type CheckRunner struct {
	opts     *Options
	rules    []*CheckRule
	loader   *source.Loader
	reporter report.Reporter

	// checksEncoding is set when the encoding check is enabled and reports
	// undecodable files itself.
	checksEncoding bool
}

// NewCheckRunner creates a CheckRunner reading through fsys.
// If reporter is nil, NullReporter is used.
func NewCheckRunner(fsys afero.Fs, opts *Options, reporter report.Reporter) (*CheckRunner, error) {
	rules, err := CheckRules(opts.Checks)
	if err != nil {
		return nil, err
	}
	return newCheckRunner(fsys, opts, rules, reporter)
}

func newCheckRunner(fsys afero.Fs, opts *Options, rules []*CheckRule, reporter report.Reporter) (*CheckRunner, error) {
	loader, err := newLoader(fsys, opts, true)
	if err != nil {
		return nil, err
	}
	if reporter == nil {
		reporter = report.NullReporter{}
	}

	enabled := rules[:0:0]
	checksEncoding := false
	for _, rule := range rules {
		if rule.Enabled != nil && !rule.Enabled(opts) {
			slog.Debug("check disabled by configuration", "check", rule.Name)
			continue
		}
		enabled = append(enabled, rule)
		checksEncoding = checksEncoding || rule.Name == "encoding"
	}

	return &CheckRunner{
		opts:           opts,
		rules:          enabled,
		loader:         loader,
		reporter:       reporter,
		checksEncoding: checksEncoding,
	}, nil
}

// newLoader builds the shared file loader. Decoding is only needed by runners
// that look at text.
func newLoader(fsys afero.Fs, opts *Options, decode bool) (*source.Loader, error) {
	skipData, err := source.CompileSkipData(opts.SkipData)
	if err != nil {
		return nil, err
	}
	loader := &source.Loader{Fs: fsys, SkipData: skipData, SkipBinary: opts.SkipBinary, MaxSize: opts.MaxSize}
	if decode {
		loader.Codec, err = textenc.Lookup(opts.EncodingName())
		if err != nil {
			return nil, err
		}
	}
	return loader, nil
}

// Run checks every file in entries. Walk errors are counted and the run
// continues; with FailFast the run stops at the first failing check.
func (cr *CheckRunner) Run(entries iter.Seq2[srctree.Entry, error]) *Report {
	rep := &Report{Counts: map[string]int{}, rules: cr.rules, opts: cr.opts}

	cr.reporter.StartRun("check")
	for e, err := range srctree.Files(entries) {
		if err != nil {
			logFileError("cannot scan path, skipping", e.Path, err)
			cr.reporter.ReportError(e.Path, err)
			rep.Errors++
			continue
		}
		if !cr.checkFile(e, rep) {
			rep.FailFast = true
			break
		}
	}
	cr.reporter.EndRun(rep.Summary())

	return rep
}

// checkFile returns false when the run must stop.
func (cr *CheckRunner) checkFile(e srctree.Entry, rep *Report) bool {
	f, err := cr.loader.Load(e)
	if err != nil {
		logFileError("cannot read file, skipping", e.Path, err)
		cr.reporter.ReportError(e.Path, err)
		rep.Errors++
		return true
	}
	if f == nil {
		return true
	}
	if !f.HasLines() && !cr.checksEncoding {
		err := fmt.Errorf("cannot check %s: %w", e.Path, f.DecodeErr)
		logFileError("cannot decode file, skipping", e.Path, err)
		cr.reporter.ReportError(e.Path, err)
		rep.Errors++
		return true
	}
	rep.Files++

	cr.reporter.StartFile(e.Path)
	defer cr.reporter.EndFile()

	for _, rule := range cr.rules {
		res, err := cr.evaluate(rule, f)
		if err != nil {
			logFileError("check could not run", e.Path, err)
			cr.reporter.ReportRule(rule.Name, report.RuleResult{Outcome: report.OutcomeFailed, Error: err.Error()})
			rep.Errors++
			continue
		}

		label := rule.Label(cr.opts)
		cr.reporter.ReportRule(rule.Name, report.RuleResult{
			Outcome:  res.Outcome,
			Label:    label,
			Detail:   res.Detail,
			Findings: res.Findings,
		})

		switch res.Outcome {
		case report.OutcomeNA:
			slog.Debug("check not applicable", "path", e.Path, "check", rule.Name, "reason", res.Detail)
		case report.OutcomeFail:
			rep.Counts[rule.Name]++
			logFailure(e.Path, label, res.Findings)
			if cr.opts.FailFast {
				return false
			}
		}
	}
	return true
}

func (cr *CheckRunner) evaluate(rule *CheckRule, f *source.File) (Result, error) {
	if rule.Applies != nil && !rule.Applies(f) {
		return NotApplicable("not applicable to this file type"), nil
	}
	if !runsOn(rule.NeedsText, rule.ByteLevel, f) {
		return NotApplicable("not decodable as " + cr.loader.Codec.Name()), nil
	}
	return rule.Check(f, cr.opts)
}

// logFailure logs one line per failing check, and each finding at debug.
func logFailure(path, label string, findings []report.Finding) {
	var lines []string
	for _, f := range findings {
		if f.Line > 0 {
			slog.Debug(label, "path", path, "line", f.Line, "detail", f.Message)
			if len(lines) < maxLoggedLines {
				lines = append(lines, strconv.Itoa(f.Line))
			}
		}
	}
	if len(lines) == 0 {
		slog.Info(label, "path", path)
		return
	}
	slog.Info(label, "path", path, "lines", strings.Join(lines, ","))
}

// IsFailFast reports whether err is the fail-fast signal.
func IsFailFast(err error) bool {
	return errors.Is(err, ErrFailFast)
}
