package header

import (
	"regexp"
	"strings"
)

var (
	statusLinePattern = regexp.MustCompile(`(?is)\AHTTP(?:/(\d+(?:\.\d+)?))?\s+(\d\d\d)\s*(.*)\z`)
	fieldPattern      = regexp.MustCompile(`\A([^:]+):\s*`)
)

// Headers is a case-insensitive multi-value header map. Keys are stored
// lower-cased.
type Headers map[string][]string

// Add appends value under name.
func (h Headers) Add(name, value string) {
	key := strings.ToLower(name)
	h[key] = append(h[key], value)
}

// Get returns the first value for name, or "".
func (h Headers) Get(name string) string {
	if vs := h[strings.ToLower(name)]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Values returns all values for name.
func (h Headers) Values(name string) []string {
	return h[strings.ToLower(name)]
}

// Has reports whether name is present.
func (h Headers) Has(name string) bool {
	_, ok := h[strings.ToLower(name)]
	return ok
}

// Parse adds the field carried by line, if any. Status lines and lines
// without a "name:" prefix are ignored.
func (h Headers) Parse(line string) {
	if name, value, ok := ParseLine(line); ok {
		h.Add(name, value)
	}
}

// ParseLine splits a single header line on its first colon. ok is false for
// status lines and for lines with no field name.
func ParseLine(line string) (name, value string, ok bool) {
	if statusLinePattern.MatchString(line) {
		return "", "", false
	}
	trimmed := strings.TrimSpace(line)
	m := fieldPattern.FindStringSubmatchIndex(trimmed)
	if m == nil {
		return "", "", false
	}
	return trimmed[m[2]:m[3]], trimmed[m[1]:], true
}

// Parse builds Headers from a raw, newline-delimited header block.
func Parse(raw string) Headers {
	h := Headers{}
	for _, line := range strings.Split(raw, "\n") {
		h.Parse(line)
	}
	return h
}
