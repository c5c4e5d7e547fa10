package uri

import (
	"strings"
	"sync"
)

const upperHex = "0123456789ABCDEF"

// Escaper is the byte-level escaping primitive used by Encoder.
// Escape percent-encodes the first n bytes of b.
type Escaper interface {
	Escape(b []byte, n int) string
}

// tableEscaper escapes every byte outside the RFC 3986 unreserved set.
// The lookup table is immutable once built.
type tableEscaper struct {
	unreserved [256]bool
}

var (
	defaultEscaper     *tableEscaper
	defaultEscaperOnce sync.Once
)

// DefaultEscaper returns the process-wide RFC 3986 escaper. It is built on
// first use and shared read-only afterwards.
func DefaultEscaper() Escaper {
	defaultEscaperOnce.Do(func() {
		defaultEscaper = newTableEscaper()
	})
	return defaultEscaper
}

func newTableEscaper() *tableEscaper {
	e := &tableEscaper{}
	for c := 'A'; c <= 'Z'; c++ {
		e.unreserved[c] = true
	}
	for c := 'a'; c <= 'z'; c++ {
		e.unreserved[c] = true
	}
	for c := '0'; c <= '9'; c++ {
		e.unreserved[c] = true
	}
	for _, c := range []byte("-._~") {
		e.unreserved[c] = true
	}
	return e
}

// Escape implements Escaper.
func (e *tableEscaper) Escape(b []byte, n int) string {
	if n > len(b) {
		n = len(b)
	}
	if n <= 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow(n * 3)
	for _, c := range b[:n] {
		if e.unreserved[c] {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperHex[c>>4])
		sb.WriteByte(upperHex[c&0x0F])
	}
	return sb.String()
}
