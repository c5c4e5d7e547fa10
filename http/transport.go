package http

import (
	"context"
	"time"

	"github.com/gaborage/zephyr/uri"
)

// ReturnCode is the transport's low-level outcome, independent of the HTTP
// status.
type ReturnCode int

const (
	// ReturnOK means a response was received.
	ReturnOK ReturnCode = iota
	// ReturnConnectFailed means no connection could be established.
	ReturnConnectFailed
	// ReturnResolveFailed means the host name could not be resolved.
	ReturnResolveFailed
	// ReturnTimedOut means the attempt hit its deadline.
	ReturnTimedOut
	// ReturnError covers every other transport failure (TLS, protocol, I/O).
	ReturnError
)

func (c ReturnCode) String() string {
	switch c {
	case ReturnOK:
		return "ok"
	case ReturnConnectFailed:
		return "connect_failed"
	case ReturnResolveFailed:
		return "resolve_failed"
	case ReturnTimedOut:
		return "timed_out"
	default:
		return "error"
	}
}

// Transport performs one blocking request. It never returns an error:
// failures are reported through TransportResponse.
type Transport interface {
	RoundTrip(ctx context.Context, req *TransportRequest) *TransportResponse
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *TransportRequest) *TransportResponse

// RoundTrip implements Transport.
func (f TransportFunc) RoundTrip(ctx context.Context, req *TransportRequest) *TransportResponse {
	return f(ctx, req)
}

// TransportRequest is what the client hands to a Transport.
type TransportRequest struct {
	URL    string
	Method Method
	// Headers holds folded header lines; each value is one line.
	Headers map[string][]string
	Timeout time.Duration
	// Body is nil when no entity is sent.
	Body []byte
	// Params, when non-nil, are appended to URL as a query string.
	Params  uri.Params
	Verbose bool
	// FollowRedirects is always false for requests built by the client.
	FollowRedirects bool
	TLS             TLSOptions

	encoder *uri.Encoder
}

// TargetURL returns URL with Params appended.
func (r *TransportRequest) TargetURL() string {
	if r.Params == nil {
		return r.URL
	}
	enc := r.encoder
	if enc == nil {
		enc = uri.NewEncoder(nil)
	}
	return uri.AppendQuery(r.URL, enc.BuildQueryString(r.Params))
}

// TransportResponse is the raw outcome of one attempt.
type TransportResponse struct {
	// StatusCode is 0 when no response was received.
	StatusCode int
	// RawHeaders is the header block as received, status line included.
	RawHeaders string
	Body       []byte
	TimedOut   bool
	ReturnCode ReturnCode
	// EffectiveURL is the URL the final request was sent to.
	EffectiveURL string
	// Err is the underlying transport error, if any.
	Err error
}
