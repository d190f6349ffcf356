// Package copyright detects, updates and inserts copyright statements.
//
// Detection is a single forward scan over the leading lines of a file that
// stops at the first line matching one of a fixed table of comment syntaxes.
// Update and insertion are computed from that one scan, so applying Update
// to its own output leaves the content unchanged.
package copyright

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/prettymuchbryce/fmtcheck/internal/eol"
	"github.com/prettymuchbryce/fmtcheck/internal/utils"
)

// Action is what Update did to a file.
type Action string

const (
	ActionUnchanged         Action = "unchanged"
	ActionUpdated           Action = "updated"
	ActionInserted          Action = "inserted"
	ActionSkippedNoTemplate Action = "skipped-no-template"
)

// Manager applies copyright updates with a fixed configuration.
type Manager struct {
	// Template is rendered and inserted when a file has no statement.
	// An empty template disables insertion.
	Template utils.Template

	// UpdateExisting extends the year range of existing statements.
	UpdateExisting bool

	// HeaderLines bounds detection; zero or less searches whole files.
	HeaderLines int
}

// NewManager validates the template and returns a Manager.
//
// A template must render into a statement Detect recognizes, carrying the
// rendered year as its latest year, within the header window. Anything else
// would be inserted again on every run.
func NewManager(template string, updateExisting bool, headerLines int) (*Manager, error) {
	m := &Manager{
		Template:       utils.Template(template),
		UpdateExisting: updateExisting,
		HeaderLines:    headerLines,
	}
	if template == "" {
		return m, nil
	}

	if !m.Template.HasVariable("year") {
		return nil, fmt.Errorf("copyright template has no {year} placeholder")
	}

	const probe = 2999
	rendered := m.render(probe, "probe.txt", time.Now())
	st := Detect(rendered, 0)
	if st == nil {
		return nil, fmt.Errorf("copyright template does not contain a recognizable copyright statement")
	}
	if st.Latest() != probe {
		return nil, fmt.Errorf("copyright statement in template must end with the {year} placeholder")
	}
	// Insertion may land after a shebang and a coding line.
	if headerLines > 0 && st.Line+2 > headerLines {
		return nil, fmt.Errorf("copyright statement in template is on line %d, beyond the %d header lines searched", st.Line, headerLines)
	}
	return m, nil
}

// Detect finds the statement in content within the configured header window.
func (m *Manager) Detect(content []byte) *Statement {
	return Detect(content, m.HeaderLines)
}

// Update returns content with its copyright statement brought up to year.
// path is only used for template variables.
func (m *Manager) Update(content []byte, year int, path string) ([]byte, Action) {
	st := m.Detect(content)
	if st != nil {
		slog.Debug("copyright statement found", "path", path, "line", st.Line, "start", st.Start, "end", st.End, "syntax", st.Syntax, "first", st.FirstYear, "last", st.LastYear)
		if !m.UpdateExisting || st.Latest() >= year {
			return content, ActionUnchanged
		}
		return updateYear(content, st, year), ActionUpdated
	}

	if m.Template == "" {
		return content, ActionSkippedNoTemplate
	}

	block := m.render(year, path, referenceTime(year))
	return insert(content, block), ActionInserted
}

func (m *Manager) render(year int, path string, now time.Time) []byte {
	rendered := m.Template.ExpandYear(year).ExpandWithNameExt(path).ExpandDate(now).String()
	out := []byte(rendered)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return out
}

// referenceTime is the time {date:...} tokens are formatted with.
func referenceTime(year int) time.Time {
	now := time.Now()
	if now.Year() == year {
		return now
	}
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
}

// updateYear rewrites the year portion only, keeping the range separator.
func updateYear(content []byte, st *Statement, year int) []byte {
	var repl []byte
	if st.HasRange() {
		prefix := content[st.YearStart : st.YearEnd-4]
		repl = append(append([]byte{}, prefix...), strconv.Itoa(year)...)
	} else {
		repl = []byte(fmt.Sprintf("%d-%d", st.FirstYear, year))
	}

	out := make([]byte, 0, len(content)+len(repl))
	out = append(out, content[:st.YearStart]...)
	out = append(out, repl...)
	return append(out, content[st.YearEnd:]...)
}

var (
	utf8BOM    = []byte("\xef\xbb\xbf")
	codingLine = regexp.MustCompile(`^[ \t\f]*#.*?coding[:=][ \t]*[-\w.]+`)
)

// insert places block at the top of content, after any leading line that must
// stay first: a byte order mark, a shebang, a coding declaration or an XML
// declaration. The block uses the line terminator style of content.
func insert(content, block []byte) []byte {
	block = eol.Normalize(block, eol.Detect(content, eol.Unix))

	pos := 0
	if bytes.HasPrefix(content, utf8BOM) {
		pos = len(utf8BOM)
	}
	if bytes.HasPrefix(content[pos:], []byte("#!")) || bytes.HasPrefix(content[pos:], []byte("<?xml")) {
		pos = lineEnd(content, pos)
	}
	if codingLine.Match(firstLine(content[pos:])) {
		pos = lineEnd(content, pos)
	}

	out := make([]byte, 0, len(content)+len(block)+2)
	out = append(out, content[:pos]...)
	if pos > 0 && pos == len(content) && content[pos-1] != '\n' && !bytes.Equal(content, utf8BOM) {
		out = append(out, eol.Detect(block, eol.Unix).Bytes()...)
	}
	out = append(out, block...)
	return append(out, content[pos:]...)
}

// lineEnd returns the offset just past the terminator of the line at pos.
func lineEnd(content []byte, pos int) int {
	if i := bytes.IndexByte(content[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(content)
}

func firstLine(content []byte) []byte {
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		return content[:i]
	}
	return content
}
