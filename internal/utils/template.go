package utils

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/itchyny/timefmt-go"
)

// variablePattern matches {var}, ${var} and {var:arg} placeholders.
var variablePattern = regexp.MustCompile(`\$?\{([a-z]+)(?::([^}]*))?\}`)

// Template is a string that supports placeholder expansion.
// It can contain {year}, {name}, {ext} variables and {date:FORMAT} tokens,
// where FORMAT uses strftime directives like %Y, %m, %d.
// The ${var} spelling is accepted for every variable.
type Template string

// ExpandYear replaces every {year} placeholder.
func (t Template) ExpandYear(year int) Template {
	return replaceVariables(t, func(name, _ string) (string, bool) {
		if name == "year" {
			return strconv.Itoa(year), true
		}
		return "", false
	})
}

// ExpandWithNameExt replaces {name} and {ext} with parts of the file name.
func (t Template) ExpandWithNameExt(path string) Template {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return replaceVariables(t, func(v, _ string) (string, bool) {
		switch v {
		case "name":
			return name, true
		case "ext":
			return ext, true
		}
		return "", false
	})
}

// ExpandDate formats every {date:FORMAT} token with the given time.
func (t Template) ExpandDate(now time.Time) Template {
	return replaceVariables(t, func(name, arg string) (string, bool) {
		if name == "date" {
			if arg == "" {
				arg = "%Y-%m-%d"
			}
			return timefmt.Format(now, arg), true
		}
		return "", false
	})
}

// HasVariable reports whether the template contains the named placeholder.
func (t Template) HasVariable(name string) bool {
	for _, m := range variablePattern.FindAllStringSubmatch(string(t), -1) {
		if m[1] == name {
			return true
		}
	}
	return false
}

func (t Template) String() string {
	return string(t)
}

func replaceVariables(template Template, lookup func(name, arg string) (string, bool)) Template {
	result := variablePattern.ReplaceAllStringFunc(string(template), func(match string) string {
		m := variablePattern.FindStringSubmatch(match)
		if val, ok := lookup(m[1], m[2]); ok {
			return val
		}
		return match // leave unchanged if not found
	})
	return Template(result)
}
