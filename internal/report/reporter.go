package report

// Reporter provides structured output for check, fix and copyright runs.
// Implementations can format output as tree-style text, JSON, etc.
type Reporter interface {
	// StartRun begins reporting for a command ("check", "fix", "copyright").
	StartRun(command string)

	// EndRun finishes the run and prints its summary.
	EndRun(summary Summary)

	// StartFile begins reporting for a file
	StartFile(path string)

	// ReportRule records the result of one rule on the current file.
	ReportRule(name string, result RuleResult)

	// ReportError records a path that could not be processed.
	ReportError(path string, err error)

	// EndFile finishes reporting for current file.
	// Returns true if anything was printed for it.
	EndFile() bool
}

// Outcome represents the result of a rule on a file.
type Outcome int

const (
	OutcomePass   Outcome = iota // Check passed or fix was a no-op
	OutcomeFail                  // Check failed
	OutcomeNA                    // Rule does not apply to this file
	OutcomeFixed                 // Fix changed the file
	OutcomeFailed                // Rule could not run because of an error
)

func (o Outcome) String() string {
	switch o {
	case OutcomePass:
		return "pass"
	case OutcomeFail:
		return "fail"
	case OutcomeNA:
		return "n/a"
	case OutcomeFixed:
		return "fixed"
	case OutcomeFailed:
		return "error"
	default:
		return "unknown"
	}
}

// Finding is a single occurrence of a problem.
type Finding struct {
	Line    int // 1-based, 0 when the finding is not tied to a line
	Message string
}

// RuleResult describes the outcome of a rule on a file.
type RuleResult struct {
	Outcome  Outcome
	Label    string    // Human-readable rule description
	Detail   string    // Short explanation, e.g. why a rule was not applicable
	Findings []Finding // Occurrences for failed checks
	Error    string    // Error message for failed rules
}

// SummaryRow is one line of a run summary.
type SummaryRow struct {
	Label string
	Count int
}

// Summary aggregates a whole run.
type Summary struct {
	Command  string
	Rows     []SummaryRow // Only rows with a non-zero count
	Files    int
	Errors   int
	FailFast bool

	// Failed is true when the rows describe failures rather than changes.
	Failed bool
}
