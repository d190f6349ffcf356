package rules

import (
	"fmt"
	"io/fs"
	"slices"
	"sort"

	"github.com/prettymuchbryce/fmtcheck/internal/report"
	"github.com/prettymuchbryce/fmtcheck/internal/source"
)

// CheckOrder is the order checks run in, and the order of the summary.
var CheckOrder = []string{
	"tabs", "eol", "trailing", "encoding", "linelen", "eof",
	"copyright", "relative-include", "mode", "clang-format",
}

// DefaultChecks are enabled when no checks are configured.
var DefaultChecks = []string{"tabs", "eol", "trailing", "encoding", "linelen", "eof"}

// FixOrder is the order fixes are applied in. Content fixes come first and
// are chained; mode only touches permission bits.
var FixOrder = []string{"trailing", "tabs", "eol", "eof", "clang-format", "mode"}

// DefaultFixes are enabled when no fixes are configured.
var DefaultFixes = []string{"trailing", "tabs", "eol", "eof"}

// Result is the outcome of a check on one file.
type Result struct {
	Outcome  report.Outcome // OutcomePass, OutcomeFail or OutcomeNA
	Findings []report.Finding
	Detail   string
}

// Pass is a passing Result.
func Pass() Result { return Result{Outcome: report.OutcomePass} }

// Fail is a failing Result with optional findings.
func Fail(findings ...report.Finding) Result {
	return Result{Outcome: report.OutcomeFail, Findings: findings}
}

// NotApplicable is a Result for a rule that could not judge the file.
func NotApplicable(detail string) Result {
	return Result{Outcome: report.OutcomeNA, Detail: detail}
}

// CheckRule is a named predicate over a file.
type CheckRule struct {
	Name string

	// Label describes a failure in reports, e.g. "trailing spaces".
	Label func(opts *Options) string

	// NeedsText rules report n/a when the file could not be decoded.
	NeedsText bool

	// ByteLevel rules only look at ASCII whitespace and line terminators, so
	// they still run on the raw content of an undecodable file.
	ByteLevel bool

	// Enabled can turn a selected rule off for a configuration; nil means on.
	Enabled func(opts *Options) bool

	// Applies restricts the rule to some files; nil means every file.
	Applies func(f *source.File) bool

	Check func(f *source.File, opts *Options) (Result, error)
}

// FixRule rewrites a file's content or its permission bits.
type FixRule struct {
	Name      string
	NeedsText bool
	ByteLevel bool
	Enabled   func(opts *Options) bool
	Applies   func(f *source.File) bool

	// Content returns the fixed content. Returning equal content is a no-op.
	Content func(content []byte, f *source.File, opts *Options) ([]byte, error)

	// Mode returns the fixed permission bits.
	Mode func(mode fs.FileMode) fs.FileMode
}

// runsOn reports whether a text rule can judge f.
func runsOn(needsText, byteLevel bool, f *source.File) bool {
	if !needsText || f.Decoded() {
		return true
	}
	return byteLevel && f.Raw
}

// Label returns a constant label function.
func Label(s string) func(*Options) string {
	return func(*Options) string { return s }
}

// checkRegistry holds registered check rules.
var checkRegistry = map[string]*CheckRule{}

// fixRegistry holds registered fix rules.
var fixRegistry = map[string]*FixRule{}

// RegisterCheck registers a check rule by name.
func RegisterCheck(rule *CheckRule) {
	checkRegistry[rule.Name] = rule
}

// RegisterFix registers a fix rule by name.
func RegisterFix(rule *FixRule) {
	fixRegistry[rule.Name] = rule
}

// AvailableChecks returns the names of all registered checks in run order.
func AvailableChecks() []string {
	return ordered(keys(checkRegistry), CheckOrder)
}

// AvailableFixes returns the names of all registered fixes in run order.
func AvailableFixes() []string {
	return ordered(keys(fixRegistry), FixOrder)
}

// CheckRules resolves names to registered checks, in run order.
func CheckRules(names []string) ([]*CheckRule, error) {
	var out []*CheckRule
	for _, name := range ordered(names, CheckOrder) {
		rule, ok := checkRegistry[name]
		if !ok {
			return nil, fmt.Errorf("unknown check %q, available: %v", name, AvailableChecks())
		}
		out = append(out, rule)
	}
	return out, nil
}

// FixRules resolves names to registered fixes, in run order.
func FixRules(names []string) ([]*FixRule, error) {
	var out []*FixRule
	for _, name := range ordered(names, FixOrder) {
		rule, ok := fixRegistry[name]
		if !ok {
			return nil, fmt.Errorf("unknown fix %q, available: %v", name, AvailableFixes())
		}
		out = append(out, rule)
	}
	return out, nil
}

// ordered deduplicates names and sorts them by their position in order.
// Names missing from order sort last, alphabetically.
func ordered(names, order []string) []string {
	out := slices.Clone(names)
	slices.Sort(out)
	out = slices.Compact(out)

	rank := func(name string) int {
		if i := slices.Index(order, name); i >= 0 {
			return i
		}
		return len(order)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return rank(out[i]) < rank(out[j])
	})
	return out
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
