package http

import (
	"context"
	"strings"
	"time"

	"github.com/gaborage/zephyr/header"
	"github.com/gaborage/zephyr/uri"
)

// Method is an HTTP request method.
type Method string

const (
	MethodHead   Method = "HEAD"
	MethodGet    Method = "GET"
	MethodPut    Method = "PUT"
	MethodPost   Method = "POST"
	MethodDelete Method = "DELETE"
)

// CustomMethod returns the method for an arbitrary verb such as PURGE.
func CustomMethod(name string) Method {
	return Method(strings.ToUpper(strings.TrimSpace(name)))
}

func (m Method) String() string {
	return string(m)
}

// acceptsBody reports whether a request entity is sent for m.
func (m Method) acceptsBody() bool {
	return m == MethodPost || m == MethodPut
}

// Client issues single-attempt requests against a root URI.
type Client interface {
	Head(ctx context.Context, req *Request) (*Response, error)
	Get(ctx context.Context, req *Request) (*Response, error)
	GetJSON(ctx context.Context, req *Request) (*Response, error)
	Put(ctx context.Context, req *Request) (*Response, error)
	PutJSON(ctx context.Context, req *Request, entity any) (*Response, error)
	Post(ctx context.Context, req *Request) (*Response, error)
	PostJSON(ctx context.Context, req *Request, entity any) (*Response, error)
	Delete(ctx context.Context, req *Request) (*Response, error)
	Custom(ctx context.Context, method string, req *Request) (*Response, error)
	Do(ctx context.Context, method Method, req *Request) (*Response, error)
	// URI composes the path under the client's root.
	URI(path uri.PathSpec) string
}

// Request describes one call.
type Request struct {
	// Expect lists the acceptable status codes.
	Expect []int `validate:"min=1,dive,gte=100,lte=599"`
	// Timeout bounds the whole attempt.
	Timeout time.Duration `validate:"gte=1ms"`
	// Path is the resource path, optionally ending in uri.Params.
	Path uri.PathSpec
	// Headers override the client defaults.
	Headers map[string]string
	// Body is a []byte, string or io.Reader. It is sent for POST and PUT only;
	// readers are drained before dispatch and an empty body counts as none.
	Body any
}

// Expect is shorthand for a list of expected status codes.
func Expect(codes ...int) []int {
	return codes
}

// Response is the normalized result of a successful call.
type Response struct {
	StatusCode int
	Headers    header.Headers
	// Body is nil when HasBody is false.
	Body    []byte
	HasBody bool
	// JSON holds the decoded payload on the *JSON paths when the response
	// content type is application/json.
	JSON  any
	Stats Stats
}

// Stats contains request execution statistics.
type Stats struct {
	ElapsedTime time.Duration
	CallCount   int64
}

// TLSOptions selects client certificate material handed to the transport.
type TLSOptions struct {
	CACert string
	Cert   string
	Key    string
}

// IsZero reports whether no TLS material is configured.
func (o TLSOptions) IsZero() bool {
	return o.CACert == "" && o.Cert == "" && o.Key == ""
}

// RequestInterceptor runs after the transport request is prepared and before
// it is dispatched. An error aborts the call.
type RequestInterceptor func(ctx context.Context, req *TransportRequest) error

// Config holds the client configuration.
type Config struct {
	Root                string
	UserAgent           string
	DefaultHeaders      map[string]string
	Debug               bool
	TLS                 TLSOptions
	RequestInterceptors []RequestInterceptor
}
