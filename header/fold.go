package header

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MaxLineLength is the exclusive upper bound, in bytes, of a rendered header
// line including the trailing CRLF.
const MaxLineLength = 8192

const valueSeparator = ", "

// ErrValueTooLong is returned when a single value cannot fit on a line of its own.
var ErrValueTooLong = errors.New("header value exceeds line limit")

// Line is one rendered "Name: v1, v2" header line.
type Line struct {
	Name  string
	Value string
}

// String renders the line without its CRLF terminator.
func (l Line) String() string {
	return l.Name + ": " + l.Value
}

// Len returns the rendered length including CRLF.
func (l Line) Len() int {
	return len(l.Name) + len(": ") + len(l.Value) + len("\r\n")
}

// Capitalize upper-cases the first letter of every hyphen-delimited token and
// lower-cases the rest: "content-type" becomes "Content-Type".
func Capitalize(name string) string {
	tokens := strings.Split(name, "-")
	for i, tok := range tokens {
		if tok == "" {
			continue
		}
		tokens[i] = strings.ToUpper(tok[:1]) + strings.ToLower(tok[1:])
	}
	return strings.Join(tokens, "-")
}

// Fold splits the values of one header across as many lines as needed so that
// no line reaches MaxLineLength. Each value is first split on ", " and trimmed;
// values are packed greedily in order. Joining the emitted values with ", "
// yields the split sequence again.
func Fold(name string, values ...string) ([]Line, error) {
	name = Capitalize(name)
	overhead := len(name) + len(": ") + len("\r\n")

	var items []string
	for _, v := range values {
		for _, part := range strings.Split(v, valueSeparator) {
			items = append(items, strings.TrimSpace(part))
		}
	}

	var lines []Line
	var current strings.Builder
	flush := func() {
		lines = append(lines, Line{Name: name, Value: current.String()})
		current.Reset()
	}

	for _, item := range items {
		if overhead+len(item) >= MaxLineLength {
			return nil, fmt.Errorf("%w: %s (%d bytes)", ErrValueTooLong, name, len(item))
		}
		next := len(item)
		if current.Len() > 0 {
			next += current.Len() + len(valueSeparator)
		}
		if current.Len() > 0 && overhead+next >= MaxLineLength {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(valueSeparator)
		}
		current.WriteString(item)
	}
	if current.Len() > 0 || len(items) > 0 {
		flush()
	}
	return lines, nil
}

// FoldAll folds every header in h. Lines are ordered by capitalized name.
func FoldAll(h map[string][]string) ([]Line, error) {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return Capitalize(names[i]) < Capitalize(names[j]) })

	var out []Line
	for _, name := range names {
		lines, err := Fold(name, h[name]...)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}
	return out, nil
}
