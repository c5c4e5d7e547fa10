package uri

import (
	"errors"
	"reflect"
)

// ErrEmptyPath is returned when a path spec has no segments once its
// trailing parameter map is removed.
var ErrEmptyPath = errors.New("resource path too short")

// PathSpec is an ordered list of path segments. The last element may be a
// Params (or map[string]any) holding query parameters. Nested slices are
// flattened.
type PathSpec []any

// Path builds a PathSpec from its arguments.
func Path(parts ...any) PathSpec {
	return PathSpec(parts)
}

// Split separates the segments from the trailing parameter map. ok reports
// whether a parameter map was present.
func (p PathSpec) Split() (segments []string, params Params, ok bool) {
	parts := []any(p)
	if n := len(parts); n > 0 {
		if m, isMap := asParams(parts[n-1]); isMap {
			params, ok = m, true
			parts = parts[:n-1]
		}
	}
	segments = flatten(segments, parts)
	return segments, params, ok
}

// Segments returns the path segments without the parameter map.
func (p PathSpec) Segments() []string {
	segments, _, _ := p.Split()
	return segments
}

// Params returns the trailing parameter map, if any.
func (p PathSpec) Params() (Params, bool) {
	_, params, ok := p.Split()
	return params, ok
}

// WithoutParams returns a copy of p with the trailing parameter map removed.
func (p PathSpec) WithoutParams() PathSpec {
	if n := len(p); n > 0 {
		if _, isMap := asParams(p[n-1]); isMap {
			return append(PathSpec(nil), p[:n-1]...)
		}
	}
	return append(PathSpec(nil), p...)
}

// Validate returns ErrEmptyPath when p has no segments.
func (p PathSpec) Validate() error {
	if len(p.Segments()) == 0 {
		return ErrEmptyPath
	}
	return nil
}

func asParams(v any) (Params, bool) {
	switch m := v.(type) {
	case Params:
		return m, true
	case map[string]any:
		return Params(m), true
	case map[string]string:
		out := make(Params, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, true
	case map[string][]string:
		out := make(Params, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, true
	}
	return nil, false
}

func flatten(dst []string, parts []any) []string {
	for _, part := range parts {
		if part == nil {
			continue
		}
		rv := reflect.ValueOf(part)
		if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
			nested := make([]any, rv.Len())
			for i := range nested {
				nested[i] = rv.Index(i).Interface()
			}
			dst = flatten(dst, nested)
			continue
		}
		dst = append(dst, ToString(part))
	}
	return dst
}
