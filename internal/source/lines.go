package source

import (
	"iter"
	"strings"
)

// Line is one line of text.
type Line struct {
	Number int    // 1-based
	Text   string // content without the terminator
	EOL    string // "\n", "\r\n" (or any run of '\r' before '\n'), or "" for an unterminated last line
}

// Lines splits text into lines. An unterminated last line is yielded with an
// empty EOL; empty text yields nothing.
func Lines(text string) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		for n := 1; text != ""; n++ {
			var line Line
			i := strings.IndexByte(text, '\n')
			if i < 0 {
				line = Line{Number: n, Text: text}
				text = ""
			} else {
				body := strings.TrimRight(text[:i], "\r")
				line = Line{Number: n, Text: body, EOL: text[len(body) : i+1]}
				text = text[i+1:]
			}
			if !yield(line) {
				return
			}
		}
	}
}

// Trimmed returns the line with its terminator and without trailing
// whitespace. Carriage returns mixed into that whitespace are kept as one run
// ahead of the line feed.
func (l Line) Trimmed() string {
	rest := l.Text + strings.TrimSuffix(l.EOL, "\n")
	body := strings.TrimRight(rest, " \t\r")
	crs := strings.Repeat("\r", strings.Count(rest[len(body):], "\r"))
	if strings.HasSuffix(l.EOL, "\n") {
		return body + crs + "\n"
	}
	return body + crs
}

// HasTrailingSpace reports whether Trimmed changes the line.
func (l Line) HasTrailingSpace() bool {
	return l.Trimmed() != l.Text+l.EOL
}
