package rules

import (
	"bytes"
	"fmt"
	"iter"
	"log/slog"
	"os"

	"github.com/prettymuchbryce/fmtcheck/internal/fs"
	"github.com/prettymuchbryce/fmtcheck/internal/report"
	"github.com/prettymuchbryce/fmtcheck/internal/source"
	"github.com/prettymuchbryce/fmtcheck/internal/srctree"
)

// FixOutcome lists the fixes applied to one file.
type FixOutcome struct {
	Path string

	// Applied names the fixes that changed the file, in application order.
	Applied []string

	// Err is set when the file could not be read, fixed or written.
	Err error
}

// FixErr returns ErrFilesFailed if any outcome carries an error.
func FixErr(outcomes []FixOutcome) error {
	for _, o := range outcomes {
		if o.Err != nil {
			return ErrFilesFailed
		}
	}
	return nil
}

// FixSummary counts, per fix, the files it changed.
func FixSummary(outcomes []FixOutcome) report.Summary {
	s := report.Summary{Command: "fix"}
	counts := map[string]int{}
	for _, o := range outcomes {
		if o.Err != nil {
			s.Errors++
			continue
		}
		s.Files++
		for _, name := range o.Applied {
			counts[name]++
		}
	}
	for _, name := range ordered(keys(counts), FixOrder) {
		s.Rows = append(s.Rows, report.SummaryRow{Label: name, Count: counts[name]})
	}
	return s
}

// FixRunner applies the enabled fixes over a walk.
type FixRunner struct {
	fs       fs.FileSystem
	opts     *Options
	rules    []*FixRule
	loader   *source.Loader
	reporter report.Reporter
}

// NewFixRunner creates a FixRunner that writes through fsys.
// If reporter is nil, NullReporter is used.
func NewFixRunner(fsys fs.FileSystem, opts *Options, reporter report.Reporter) (*FixRunner, error) {
	rules, err := FixRules(opts.Fixes)
	if err != nil {
		return nil, err
	}
	return newFixRunner(fsys, opts, rules, reporter)
}

func newFixRunner(fsys fs.FileSystem, opts *Options, rules []*FixRule, reporter report.Reporter) (*FixRunner, error) {
	loader, err := newLoader(fsys, opts, true)
	if err != nil {
		return nil, err
	}
	if reporter == nil {
		reporter = report.NullReporter{}
	}

	enabled := rules[:0:0]
	for _, rule := range rules {
		if rule.Enabled != nil && !rule.Enabled(opts) {
			slog.Debug("fix disabled by configuration", "fix", rule.Name)
			continue
		}
		enabled = append(enabled, rule)
	}

	return &FixRunner{
		fs:       fsys,
		opts:     opts,
		rules:    enabled,
		loader:   loader,
		reporter: reporter,
	}, nil
}

// Run fixes every file in entries and returns one outcome per visited file.
// Errors are recorded per file and never stop the run.
func (fr *FixRunner) Run(entries iter.Seq2[srctree.Entry, error]) []FixOutcome {
	var outcomes []FixOutcome

	fr.reporter.StartRun("fix")
	for e, err := range srctree.Files(entries) {
		if err != nil {
			logFileError("cannot scan path, skipping", e.Path, err)
			fr.reporter.ReportError(e.Path, err)
			outcomes = append(outcomes, FixOutcome{Path: e.Path, Err: err})
			continue
		}
		if o, ok := fr.fixFile(e); ok {
			outcomes = append(outcomes, o)
		}
	}
	fr.reporter.EndRun(FixSummary(outcomes))

	return outcomes
}

// fixFile returns false when the file was skipped by content.
func (fr *FixRunner) fixFile(e srctree.Entry) (FixOutcome, bool) {
	outcome := FixOutcome{Path: e.Path}

	f, err := fr.loader.Load(e)
	if err != nil {
		logFileError("cannot read file, skipping", e.Path, err)
		fr.reporter.ReportError(e.Path, err)
		outcome.Err = err
		return outcome, true
	}
	if f == nil {
		return outcome, false
	}

	fr.reporter.StartFile(e.Path)
	defer fr.reporter.EndFile()

	content := []byte(f.Text)
	mode := f.Mode.Perm()
	contentChanged := false

	for _, rule := range fr.rules {
		if rule.Applies != nil && !rule.Applies(f) {
			continue
		}

		if rule.Mode != nil {
			if fixed := rule.Mode(mode); fixed != mode {
				mode = fixed
				outcome.Applied = append(outcome.Applied, rule.Name)
				fr.reporter.ReportRule(rule.Name, report.RuleResult{Outcome: report.OutcomeFixed})
			}
			continue
		}

		if !runsOn(rule.NeedsText, rule.ByteLevel, f) {
			detail := "not decodable as " + fr.loader.Codec.Name()
			fr.reporter.ReportRule(rule.Name, report.RuleResult{Outcome: report.OutcomeNA, Detail: detail})
			if !f.HasLines() && outcome.Err == nil {
				outcome.Err = fmt.Errorf("cannot fix %s: %w", e.Path, f.DecodeErr)
				logFileError("cannot decode file, fixes skipped", e.Path, outcome.Err)
			}
			continue
		}

		fixed, err := rule.Content(content, f, fr.opts)
		if err != nil {
			logFileError("fix could not run", e.Path, err)
			fr.reporter.ReportRule(rule.Name, report.RuleResult{Outcome: report.OutcomeFailed, Error: err.Error()})
			outcome.Err = err
			continue
		}
		if !bytes.Equal(fixed, content) {
			content = fixed
			contentChanged = true
			outcome.Applied = append(outcome.Applied, rule.Name)
			fr.reporter.ReportRule(rule.Name, report.RuleResult{Outcome: report.OutcomeFixed})
		}
	}

	if len(outcome.Applied) == 0 {
		return outcome, true
	}

	if err := fr.write(f, content, contentChanged, mode); err != nil {
		logFileError("cannot write file", e.Path, err)
		fr.reporter.ReportError(e.Path, err)
		outcome.Applied = nil
		outcome.Err = err
		return outcome, true
	}

	slog.Info("fixed", "path", e.Path, "fixes", outcome.Applied)
	return outcome, true
}

// write saves the optional backup, then replaces the content or only the mode.
func (fr *FixRunner) write(f *source.File, content []byte, contentChanged bool, mode os.FileMode) error {
	if !contentChanged {
		return fr.fs.Chmod(f.Path, mode)
	}

	// Raw content never went through the codec
	data := content
	if f.Decoded() {
		encoded, err := fr.loader.Codec.Encode(string(content))
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", f.Path, err)
		}
		data = encoded
	}

	if fr.opts.Backup {
		if err := fr.fs.Copy(f.Path, fs.BackupPath(f.Path)); err != nil {
			return fmt.Errorf("failed to back up: %w", err)
		}
	}
	return fr.fs.Replace(f.Path, data, mode)
}
