package uri

import (
	"fmt"
	"strconv"
)

// Encoder percent-encodes scalar values through an Escaper.
type Encoder struct {
	escaper Escaper
}

// NewEncoder returns an Encoder backed by escaper. A nil escaper selects
// DefaultEscaper.
func NewEncoder(escaper Escaper) *Encoder {
	if escaper == nil {
		escaper = DefaultEscaper()
	}
	return &Encoder{escaper: escaper}
}

// Encode converts value to its string form and escapes each of its bytes
// independently. Multi-byte UTF-8 sequences become one %XX per byte.
func (e *Encoder) Encode(value any) string {
	s := ToString(value)
	return e.escaper.Escape([]byte(s), len(s))
}

// PercentEncode encodes value with the default escaper.
func PercentEncode(value any) string {
	return NewEncoder(nil).Encode(value)
}

// ToString renders a scalar the way it appears in a URI.
func ToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
