package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/xlab/treeprint"
)

// Styles for the structured reporter
var (
	runStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")) // Cyan
	pathStyle   = lipgloss.NewStyle().Bold(true)
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // Green
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // Red
	skipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // Yellow
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // Gray
)

const (
	passIcon = "✓"
	failIcon = "✗"
	skipIcon = "⊘"
	fixIcon  = "✎"
)

// maxFindingLines bounds how many line numbers are listed per rule.
const maxFindingLines = 10

// ruleEntry stores rule data for deferred formatting.
type ruleEntry struct {
	name   string
	result RuleResult
}

// StructuredReporter outputs a tree per noteworthy file and a summary per run.
//
// Without verbose only the summary is printed. With verbose, files with a
// failed check, an applied fix or an error are printed as trees.
type StructuredReporter struct {
	w       io.Writer
	verbose bool

	// Current run state
	command      string
	printedFiles int

	// Current file state
	currentPath string
	rules       []ruleEntry
	noteworthy  bool
}

// NewStructuredWithWriter creates a StructuredReporter writing to a custom writer.
func NewStructuredWithWriter(w io.Writer, verbose bool) *StructuredReporter {
	return &StructuredReporter{
		w:       w,
		verbose: verbose,
	}
}

// StartRun begins reporting for a command.
func (r *StructuredReporter) StartRun(command string) {
	r.command = command
	r.printedFiles = 0
	if r.verbose {
		fmt.Fprintf(r.w, "\n%s\n", runStyle.Render("━━━ "+command+" ━━━"))
	}
}

// EndRun prints the summary of the run.
func (r *StructuredReporter) EndRun(s Summary) {
	if s.FailFast {
		fmt.Fprintf(r.w, "%s\n", failStyle.Render(s.Command+" failed (fail-fast)"))
	}

	switch {
	case len(s.Rows) > 0 && s.Failed:
		fmt.Fprintf(r.w, "%s\n", failStyle.Render(s.Command+" failed"))
	case len(s.Rows) > 0:
		fmt.Fprintf(r.w, "%s\n", passStyle.Render(s.Command+" changed files"))
	case s.Errors == 0 && !s.FailFast:
		fmt.Fprintf(r.w, "%s\n", passStyle.Render(s.Command+" completed successfully"))
	}

	for _, row := range s.Rows {
		fmt.Fprintf(r.w, "%7d: %s\n", row.Count, row.Label)
	}
	if s.Errors > 0 {
		fmt.Fprintf(r.w, "%s\n", failStyle.Render(fmt.Sprintf("%7d: errors", s.Errors)))
	}
	if r.verbose {
		fmt.Fprintf(r.w, "%s\n", detailStyle.Render(fmt.Sprintf("%d files scanned", s.Files)))
	}
}

// StartFile begins reporting for a file.
func (r *StructuredReporter) StartFile(path string) {
	r.currentPath = path
	r.rules = nil
	r.noteworthy = false
}

// ReportRule records a rule result for the current file.
func (r *StructuredReporter) ReportRule(name string, result RuleResult) {
	r.rules = append(r.rules, ruleEntry{name: name, result: result})
	switch result.Outcome {
	case OutcomeFail, OutcomeFixed, OutcomeFailed:
		r.noteworthy = true
	}
}

// ReportError prints a path that could not be processed.
func (r *StructuredReporter) ReportError(path string, err error) {
	if !r.verbose {
		return
	}
	tree := treeprint.NewWithRoot(pathStyle.Render(path))
	tree.AddNode(failStyle.Render(failIcon) + " " + detailStyle.Render(err.Error()))
	fmt.Fprint(r.w, tree.String())
}

// EndFile finishes reporting for current file.
func (r *StructuredReporter) EndFile() bool {
	if r.currentPath == "" {
		return false
	}
	defer func() { r.currentPath = "" }()

	if !r.verbose || !r.noteworthy {
		return false
	}
	r.printedFiles++
	r.printFile()
	return true
}

// printFile outputs the full file report with tree connectors.
func (r *StructuredReporter) printFile() {
	tree := treeprint.NewWithRoot(pathStyle.Render(r.currentPath))

	maxWidth := 0
	for _, e := range r.rules {
		if len(e.name) > maxWidth {
			maxWidth = len(e.name)
		}
	}

	branch := tree.AddBranch(r.command + ":")
	for _, e := range r.rules {
		if e.result.Outcome == OutcomePass || e.result.Outcome == OutcomeNA {
			branch.AddNode(r.formatRule(e, maxWidth))
			continue
		}
		node := branch.AddBranch(r.formatRule(e, maxWidth))
		if len(e.result.Findings) > 0 {
			node.AddNode(detailStyle.Render(formatFindings(e.result.Findings)))
		}
	}

	fmt.Fprint(r.w, tree.String())
}

// formatRule formats a rule entry with padding for alignment.
func (r *StructuredReporter) formatRule(e ruleEntry, maxWidth int) string {
	var icon, status string

	switch e.result.Outcome {
	case OutcomePass:
		icon = passStyle.Render(passIcon)
		status = "ok"

	case OutcomeFail:
		icon = failStyle.Render(failIcon)
		status = e.result.Label

	case OutcomeNA:
		icon = skipStyle.Render(skipIcon)
		status = "n/a"

	case OutcomeFixed:
		icon = passStyle.Render(fixIcon)
		status = "fixed"

	case OutcomeFailed:
		icon = failStyle.Render(failIcon)
		status = "failed"
		if e.result.Error != "" {
			status += " " + detailStyle.Render("("+e.result.Error+")")
		}
	}

	if e.result.Detail != "" && e.result.Outcome != OutcomeFailed {
		status += " " + detailStyle.Render("("+e.result.Detail+")")
	}

	return fmt.Sprintf("%-*s %s %s", maxWidth+1, e.name+":", icon, status)
}

// formatFindings lists the line numbers of findings.
func formatFindings(findings []Finding) string {
	var lines []string
	for _, f := range findings {
		if f.Line == 0 {
			continue
		}
		if len(lines) == maxFindingLines {
			lines = append(lines, "…")
			break
		}
		lines = append(lines, strconv.Itoa(f.Line))
	}
	if len(lines) == 0 {
		return findings[0].Message
	}
	return "lines " + strings.Join(lines, ", ")
}

// NullReporter is a no-op reporter for when reporting is disabled.
// It allows runners to call methods unconditionally.
type NullReporter struct{}

func (NullReporter) StartRun(command string)                   {}
func (NullReporter) EndRun(summary Summary)                    {}
func (NullReporter) StartFile(path string)                     {}
func (NullReporter) ReportRule(name string, result RuleResult) {}
func (NullReporter) ReportError(path string, err error)        {}
func (NullReporter) EndFile() bool                             { return false }
