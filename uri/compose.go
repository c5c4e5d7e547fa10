package uri

import (
	"fmt"
	"net/url"
	"strings"
)

// Root is an immutable base URI (scheme, user info and host, plus an
// optional base path) that resource paths are composed onto.
type Root struct {
	base *url.URL
}

// ParseRoot parses raw into a Root. An empty string yields an empty root,
// which composes host-less paths.
func ParseRoot(raw string) (Root, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Root{}, fmt.Errorf("invalid root uri %q: %w", raw, err)
	}
	return Root{base: u}, nil
}

// MustParseRoot is ParseRoot that panics on error.
func MustParseRoot(raw string) Root {
	r, err := ParseRoot(raw)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the root as given.
func (r Root) String() string {
	if r.base == nil {
		return ""
	}
	return r.base.String()
}

// Compose renders the path spec under the root with the default encoder.
func (r Root) Compose(spec PathSpec) string {
	return r.ComposeWith(NewEncoder(nil), spec)
}

// ComposeWith joins the root path and the segments with "/", collapses runs
// of slashes and guarantees a single leading slash. A trailing parameter map
// becomes the query, replacing any query on the root.
//
// Segments are inserted verbatim; only the query is percent-encoded. Callers
// that need escaped segments pass them through Encoder.Encode first.
func (r Root) ComposeWith(enc *Encoder, spec PathSpec) string {
	segments, params, hasParams := spec.Split()

	var prefix, rootPath, query string
	if r.base != nil {
		head := *r.base
		rootPath = head.Path
		query = head.RawQuery
		head.Path, head.RawPath, head.RawQuery, head.Fragment = "", "", "", ""
		head.ForceQuery = false
		prefix = head.String()
	}
	if hasParams {
		query = enc.BuildQueryString(params)
	}

	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, rootPath)
	parts = append(parts, segments...)

	out := prefix + collapseSlashes("/"+strings.Join(parts, "/"))
	if query != "" {
		out += "?" + query
	}
	return out
}

func collapseSlashes(p string) string {
	var sb strings.Builder
	sb.Grow(len(p))
	prevSlash := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// AppendQuery appends an already-encoded query to target, using "&" when
// target already carries one.
func AppendQuery(target, query string) string {
	if query == "" {
		return target
	}
	if strings.Contains(target, "?") {
		return target + "&" + query
	}
	return target + "?" + query
}
