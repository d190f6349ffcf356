package rules

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/prettymuchbryce/fmtcheck/internal/copyright"
	"github.com/prettymuchbryce/fmtcheck/internal/fs"
	"github.com/prettymuchbryce/fmtcheck/internal/report"
	"github.com/prettymuchbryce/fmtcheck/internal/source"
	"github.com/prettymuchbryce/fmtcheck/internal/srctree"
)

// CopyrightOutcome is what the copyright runner did to one file.
type CopyrightOutcome struct {
	Path   string
	Year   int
	Action copyright.Action
	Err    error
}

// CopyrightErr returns ErrFilesFailed if any outcome carries an error.
func CopyrightErr(outcomes []CopyrightOutcome) error {
	for _, o := range outcomes {
		if o.Err != nil {
			return ErrFilesFailed
		}
	}
	return nil
}

// CopyrightSummary counts files per action. Unchanged files are not listed.
func CopyrightSummary(outcomes []CopyrightOutcome) report.Summary {
	s := report.Summary{Command: "copyright"}
	counts := map[copyright.Action]int{}
	for _, o := range outcomes {
		if o.Err != nil {
			s.Errors++
			continue
		}
		s.Files++
		counts[o.Action]++
	}
	for _, a := range []copyright.Action{copyright.ActionUpdated, copyright.ActionInserted, copyright.ActionSkippedNoTemplate} {
		if n := counts[a]; n > 0 {
			s.Rows = append(s.Rows, report.SummaryRow{Label: string(a), Count: n})
		}
	}
	return s
}

// CopyrightRunner inserts or updates copyright statements over a walk.
type CopyrightRunner struct {
	fs       fs.FileSystem
	opts     *Options
	manager  *copyright.Manager
	loader   *source.Loader
	reporter report.Reporter
}

// NewCopyrightRunner creates a CopyrightRunner. opts.Copyright must be set.
// If reporter is nil, NullReporter is used.
func NewCopyrightRunner(fsys fs.FileSystem, opts *Options, reporter report.Reporter) (*CopyrightRunner, error) {
	if opts.Copyright == nil {
		return nil, errors.New("copyright runner requires a copyright configuration")
	}
	loader, err := newLoader(fsys, opts, false)
	if err != nil {
		return nil, err
	}
	if reporter == nil {
		reporter = report.NullReporter{}
	}
	return &CopyrightRunner{
		fs:       fsys,
		opts:     opts,
		manager:  opts.Copyright,
		loader:   loader,
		reporter: reporter,
	}, nil
}

// Run processes every file in entries exactly once.
func (cr *CopyrightRunner) Run(entries iter.Seq2[srctree.Entry, error]) []CopyrightOutcome {
	var outcomes []CopyrightOutcome

	cr.reporter.StartRun("copyright")
	for e, err := range srctree.Files(entries) {
		if err != nil {
			logFileError("cannot scan path, skipping", e.Path, err)
			cr.reporter.ReportError(e.Path, err)
			outcomes = append(outcomes, CopyrightOutcome{Path: e.Path, Err: err})
			continue
		}
		if o, ok := cr.updateFile(e); ok {
			outcomes = append(outcomes, o)
		}
	}
	cr.reporter.EndRun(CopyrightSummary(outcomes))

	return outcomes
}

func (cr *CopyrightRunner) updateFile(e srctree.Entry) (CopyrightOutcome, bool) {
	outcome := CopyrightOutcome{Path: e.Path}

	f, err := cr.loader.Load(e)
	if err != nil {
		logFileError("cannot read file, skipping", e.Path, err)
		cr.reporter.ReportError(e.Path, err)
		outcome.Err = err
		return outcome, true
	}
	if f == nil {
		return outcome, false
	}

	outcome.Year = cr.opts.Years.Resolve(e.Path, e.ModTime)
	updated, action := cr.manager.Update(f.Data, outcome.Year, e.Path)
	outcome.Action = action

	cr.reporter.StartFile(e.Path)
	defer cr.reporter.EndFile()

	switch action {
	case copyright.ActionSkippedNoTemplate:
		slog.Info("no copyright statement and no template", "path", e.Path)
		cr.reporter.ReportRule("copyright", report.RuleResult{Outcome: report.OutcomeFail, Label: "missing copyright", Detail: string(action)})
		return outcome, true
	case copyright.ActionUnchanged:
		cr.reporter.ReportRule("copyright", report.RuleResult{Outcome: report.OutcomePass})
		return outcome, true
	}

	if err := cr.write(f, updated); err != nil {
		logFileError("cannot write file", e.Path, err)
		cr.reporter.ReportRule("copyright", report.RuleResult{Outcome: report.OutcomeFailed, Error: err.Error()})
		outcome.Err = err
		return outcome, true
	}

	slog.Info("copyright "+string(action), "path", e.Path, "year", outcome.Year)
	cr.reporter.ReportRule("copyright", report.RuleResult{Outcome: report.OutcomeFixed, Detail: string(action)})
	return outcome, true
}

func (cr *CopyrightRunner) write(f *source.File, data []byte) error {
	if cr.opts.Backup {
		if err := cr.fs.Copy(f.Path, fs.BackupPath(f.Path)); err != nil {
			return fmt.Errorf("failed to back up: %w", err)
		}
	}
	return cr.fs.Replace(f.Path, data, f.Mode.Perm())
}
