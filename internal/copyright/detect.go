package copyright

import (
	"bytes"
	"regexp"
	"strconv"
)

// DefaultHeaderLines is how many leading lines are searched for a statement.
const DefaultHeaderLines = 40

// notice matches the copyright marker followed by a year or year range.
// Group 1 is the first year, group 2 the optional last year.
const notice = `(?:(?i:copyright)(?:[ \t]*(?:\([cC]\)|©))?|\([cC]\)|©)[ \t:]*(\d{4})(?:[ \t]*[-–][ \t]*(\d{4}))?`

// syntax is one comment style a statement may be written in.
type syntax struct {
	name string
	re   *regexp.Regexp
}

func commented(name, prefix string) syntax {
	return syntax{name: name, re: regexp.MustCompile(`^[ \t]*` + prefix + `[ \t]*` + notice)}
}

// syntaxes is evaluated in order against each line; the first line matching
// any entry is the statement.
var syntaxes = []syntax{
	commented("hash", `#+`),
	commented("line", `//+!?`),
	commented("block", `/\*+!?`),
	commented("block-continuation", `\*+`),
	commented("dash", `--+`),
	commented("semicolon", `;+`),
	commented("batch", `(?i:rem\b|::)`),
	commented("xml", `<!--`),
	commented("rst-comment", `\.\.`),
	{
		name: "rst-field",
		re:   regexp.MustCompile(`^[ \t]*:(?i:copyright):[ \t]*(?:(?:\([cC]\)|©)[ \t]*)?(\d{4})(?:[ \t]*[-–][ \t]*(\d{4}))?`),
	},
	commented("plain", ``),
}

// Statement is a copyright statement found in file content.
type Statement struct {
	Syntax string
	Line   int // 1-based

	// Start and End delimit the line holding the statement, terminator excluded.
	Start, End int

	// YearStart and YearEnd delimit the year or year range.
	YearStart, YearEnd int

	FirstYear, LastYear int
}

// Detect finds the first copyright statement within the first headerLines
// lines of content. A headerLines of zero or less searches the whole content.
// It returns nil when no statement is found.
func Detect(content []byte, headerLines int) *Statement {
	start := 0
	for line := 1; start < len(content); line++ {
		if headerLines > 0 && line > headerLines {
			return nil
		}

		end := len(content)
		next := len(content)
		if i := bytes.IndexByte(content[start:], '\n'); i >= 0 {
			end = start + i
			next = end + 1
		}
		if line == 1 && bytes.HasPrefix(content, utf8BOM) {
			start = len(utf8BOM)
		}
		text := bytes.TrimSuffix(content[start:end], []byte("\r"))

		for _, s := range syntaxes {
			m := s.re.FindSubmatchIndex(text)
			if m == nil {
				continue
			}
			return newStatement(s.name, line, start, start+len(text), text, m)
		}

		start = next
	}
	return nil
}

func newStatement(name string, line, start, end int, text []byte, m []int) *Statement {
	first, _ := strconv.Atoi(string(text[m[2]:m[3]]))
	last := first
	yearEnd := m[3]
	if m[4] >= 0 {
		last, _ = strconv.Atoi(string(text[m[4]:m[5]]))
		yearEnd = m[5]
	}
	return &Statement{
		Syntax:    name,
		Line:      line,
		Start:     start,
		End:       end,
		YearStart: start + m[2],
		YearEnd:   start + yearEnd,
		FirstYear: first,
		LastYear:  last,
	}
}

// Latest returns the most recent year the statement covers.
func (s *Statement) Latest() int {
	if s.LastYear > s.FirstYear {
		return s.LastYear
	}
	return s.FirstYear
}

// HasRange reports whether the statement spells a year range.
func (s *Statement) HasRange() bool {
	return s.YearEnd-s.YearStart > 4
}
