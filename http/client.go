package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	nethttp "net/http"
	"os"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/gaborage/zephyr/header"
	"github.com/gaborage/zephyr/http/internal/tracking"
	"github.com/gaborage/zephyr/logger"
	"github.com/gaborage/zephyr/uri"
)

const (
	// DefaultUserAgent is sent unless overridden.
	DefaultUserAgent = "zephyr"

	// DefaultAccept prefers JSON but accepts anything.
	DefaultAccept = "application/json;q=0.7, */*;q=0.5"
)

var errNoTransportResponse = errors.New("transport returned no response")

// client implements the Client interface
type client struct {
	root                uri.Root
	encoder             *uri.Encoder
	transport           Transport
	logger              logger.Logger
	config              *Config
	codec               Codec
	recorder            *tracking.Recorder
	requestInterceptors []RequestInterceptor
	callCount           int64
}

// New creates a client for root with the default configuration.
func New(root string) (Client, error) {
	return NewBuilder(root).Build()
}

// Builder provides a fluent interface for configuring the client
type Builder struct {
	config         *Config
	logger         logger.Logger
	transport      Transport
	escaper        uri.Escaper
	codec          Codec
	tracerProvider oteltrace.TracerProvider
	meterProvider  metric.MeterProvider
}

// NewBuilder creates a new client builder for root.
func NewBuilder(root string) *Builder {
	return &Builder{
		config: &Config{
			Root:                root,
			UserAgent:           DefaultUserAgent,
			DefaultHeaders:      make(map[string]string),
			RequestInterceptors: []RequestInterceptor{},
		},
	}
}

// WithLogger sets the logger. Without one, logger.Default() is used at call
// time.
func (b *Builder) WithLogger(log logger.Logger) *Builder {
	b.logger = log
	return b
}

// WithTransport replaces the resty transport.
func (b *Builder) WithTransport(t Transport) *Builder {
	b.transport = t
	return b
}

// WithEscaper replaces the query escaper.
func (b *Builder) WithEscaper(e uri.Escaper) *Builder {
	b.escaper = e
	return b
}

// WithCodec replaces the JSON codec used by the *JSON calls.
func (b *Builder) WithCodec(c Codec) *Builder {
	b.codec = c
	return b
}

// WithUserAgent sets the User-Agent header.
func (b *Builder) WithUserAgent(ua string) *Builder {
	b.config.UserAgent = ua
	return b
}

// WithDefaultHeader adds a header sent on every request.
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	b.config.DefaultHeaders[key] = value
	return b
}

// WithDebug turns on verbose transport output.
func (b *Builder) WithDebug(debug bool) *Builder {
	b.config.Debug = debug
	return b
}

// WithTLS sets certificate material for every request.
func (b *Builder) WithTLS(opts TLSOptions) *Builder {
	b.config.TLS = opts
	return b
}

// WithRequestInterceptor adds a request interceptor
func (b *Builder) WithRequestInterceptor(interceptor RequestInterceptor) *Builder {
	b.config.RequestInterceptors = append(b.config.RequestInterceptors, interceptor)
	return b
}

// WithRequestID stamps X-Request-ID on every request.
func (b *Builder) WithRequestID() *Builder {
	return b.WithRequestInterceptor(NewRequestIDInterceptor())
}

// WithRateLimit caps outgoing requests per second across all goroutines
// sharing the client.
func (b *Builder) WithRateLimit(requestsPerSecond int) *Builder {
	if requestsPerSecond <= 0 {
		return b
	}
	return b.WithRequestInterceptor(NewRateLimitInterceptor(requestsPerSecond))
}

// WithTracerProvider overrides the global tracer provider.
func (b *Builder) WithTracerProvider(tp oteltrace.TracerProvider) *Builder {
	b.tracerProvider = tp
	return b
}

// WithMeterProvider overrides the global meter provider.
func (b *Builder) WithMeterProvider(mp metric.MeterProvider) *Builder {
	b.meterProvider = mp
	return b
}

// Build creates the client. It fails only when the root is not a valid URI.
func (b *Builder) Build() (Client, error) {
	root, err := uri.ParseRoot(b.config.Root)
	if err != nil {
		return nil, NewValidationError(err.Error(), "root")
	}

	transport := b.transport
	if transport == nil {
		var opts []RestyOption
		if b.logger != nil {
			opts = append(opts, WithRestyLogger(b.logger))
		}
		transport = NewRestyTransport(opts...)
	}

	codec := b.codec
	if codec == nil {
		codec = JSONCodec{}
	}

	// The client gets its own copy so later builder calls cannot reach it.
	cfg := b.config.clone()

	return &client{
		root:                root,
		encoder:             uri.NewEncoder(b.escaper),
		transport:           transport,
		logger:              b.logger,
		config:              cfg,
		codec:               codec,
		recorder:            tracking.New(b.tracerProvider, b.meterProvider),
		requestInterceptors: cfg.RequestInterceptors,
	}, nil
}

func (c *Config) clone() *Config {
	out := *c
	out.DefaultHeaders = maps.Clone(c.DefaultHeaders)
	out.RequestInterceptors = slices.Clone(c.RequestInterceptors)
	return &out
}

// String describes the client and its root.
func (c *client) String() string {
	return fmt.Sprintf("zephyr.Client{root=%s}", c.root)
}

// URI composes path under the client's root.
func (c *client) URI(path uri.PathSpec) string {
	return c.root.ComposeWith(c.encoder, path)
}

// Head performs a HEAD request. The response never carries a body.
func (c *client) Head(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, MethodHead, req)
}

// Get performs a GET request
func (c *client) Get(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, MethodGet, req)
}

// Put performs a PUT request
func (c *client) Put(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, MethodPut, req)
}

// Post performs a POST request
func (c *client) Post(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, MethodPost, req)
}

// Delete performs a DELETE request
func (c *client) Delete(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, MethodDelete, req)
}

// Custom performs a request with an arbitrary method. No body is sent.
func (c *client) Custom(ctx context.Context, method string, req *Request) (*Response, error) {
	m := CustomMethod(method)
	if m == "" {
		return nil, NewValidationError("method cannot be empty", "method")
	}
	return c.Do(ctx, m, req)
}

// GetJSON performs a GET and decodes a JSON response into Response.JSON.
func (c *client) GetJSON(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.Do(ctx, MethodGet, req)
	if err != nil {
		return nil, err
	}
	return c.attachJSON(resp)
}

// PutJSON encodes entity as JSON, performs a PUT and decodes the response.
func (c *client) PutJSON(ctx context.Context, req *Request, entity any) (*Response, error) {
	return c.doJSON(ctx, MethodPut, req, entity)
}

// PostJSON encodes entity as JSON, performs a POST and decodes the response.
func (c *client) PostJSON(ctx context.Context, req *Request, entity any) (*Response, error) {
	return c.doJSON(ctx, MethodPost, req, entity)
}

func (c *client) doJSON(ctx context.Context, method Method, req *Request, entity any) (*Response, error) {
	if req == nil {
		return nil, NewValidationError("request cannot be nil", "request")
	}
	data, err := c.codec.Marshal(entity)
	if err != nil {
		return nil, NewCodecError("failed to encode request entity", err)
	}

	withBody := *req
	withBody.Body = data
	withBody.Headers = make(map[string]string, len(req.Headers)+1)
	for k, v := range req.Headers {
		if strings.EqualFold(k, "Content-Type") {
			continue
		}
		withBody.Headers[k] = v
	}
	withBody.Headers["Content-Type"] = ContentTypeJSON

	resp, err := c.Do(ctx, method, &withBody)
	if err != nil {
		return nil, err
	}
	return c.attachJSON(resp)
}

// attachJSON decodes the body when the response declares a JSON content type.
// Other responses are returned unchanged.
func (c *client) attachJSON(resp *Response) (*Response, error) {
	if !resp.HasBody || len(resp.Body) == 0 {
		return resp, nil
	}
	if !isJSONContentType(resp.Headers.Get("content-type")) {
		return resp, nil
	}
	var payload any
	if err := c.codec.Unmarshal(resp.Body, &payload); err != nil {
		return nil, NewCodecError("failed to decode response body", err)
	}
	resp.JSON = payload
	return resp, nil
}

// Do performs one attempt with the given method.
func (c *client) Do(ctx context.Context, method Method, req *Request) (*Response, error) {
	treq, err := c.prepare(ctx, method, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	callCount := atomic.AddInt64(&c.callCount, 1)

	ctx, span := c.recorder.Start(ctx, method.String(), treq.TargetURL())
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(nethttp.Header(treq.Headers)))

	tresp := c.transport.RoundTrip(ctx, treq)
	elapsed := time.Since(start)

	if tresp == nil {
		tresp = &TransportResponse{ReturnCode: ReturnError, Err: errNoTransportResponse}
	} else {
		// Transports may hand out shared responses.
		copied := *tresp
		tresp = &copied
	}
	if tresp.EffectiveURL == "" {
		tresp.EffectiveURL = treq.TargetURL()
	}

	if !tresp.TimedOut && statusExpected(req.Expect, tresp.StatusCode) {
		resp := c.buildResponse(method, tresp, elapsed, callCount)
		c.recorder.Finish(ctx, span, tracking.Result{
			Method:     method.String(),
			URL:        tresp.EffectiveURL,
			StatusCode: tresp.StatusCode,
			Elapsed:    elapsed,
			Succeeded:  true,
		})
		c.logSuccess(method, tresp, elapsed)
		return resp, nil
	}

	failed := &FailedRequest{
		Method:   method,
		URI:      tresp.EffectiveURL,
		Expected: append([]int(nil), req.Expect...),
		Timeout:  req.Timeout,
		Response: tresp,
	}
	c.recorder.Finish(ctx, span, tracking.Result{
		Method:     method.String(),
		URL:        tresp.EffectiveURL,
		StatusCode: tresp.StatusCode,
		Elapsed:    elapsed,
		Retryable:  failed.Retryable(),
		TimedOut:   failed.TimedOut(),
		Err:        failed,
	})
	c.logFailure(failed, elapsed)
	return nil, failed
}

// prepare validates req and builds the transport request.
func (c *client) prepare(ctx context.Context, method Method, req *Request) (*TransportRequest, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var body []byte
	if method.acceptsBody() {
		if err := req.Path.Validate(); err != nil {
			return nil, wrapValidationError("You must supply both a resource path and a body.", "path", err)
		}
		data, err := readBody(req.Body)
		if err != nil {
			return nil, err
		}
		if len(data) > 0 {
			body = data
		}
	} else if err := req.Path.Validate(); err != nil {
		return nil, wrapValidationError("Resource path too short", "path", err)
	}

	headers, err := c.foldHeaders(req.Headers)
	if err != nil {
		return nil, err
	}

	treq := &TransportRequest{
		Method:  method,
		Headers: headers,
		Timeout: req.Timeout,
		Body:    body,
		Verbose: c.config.Debug,
		TLS:     c.config.TLS,
		encoder: c.encoder,
	}

	// Trailing params travel separately only when no body is sent; otherwise
	// they stay part of the path and render into the URI query.
	path := req.Path
	if params, ok := path.Params(); ok && body == nil {
		treq.Params = params
		path = path.WithoutParams()
	}
	treq.URL = c.root.ComposeWith(c.encoder, path)

	for _, interceptor := range c.requestInterceptors {
		if err := interceptor(ctx, treq); err != nil {
			return nil, NewInterceptorError("request interceptor failed", "request", err)
		}
	}
	return treq, nil
}

// readBody normalizes the accepted body types. Readers are drained.
func readBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	case io.Reader:
		data, err := io.ReadAll(b)
		if err != nil {
			return nil, wrapValidationError("failed to read request body", "body", err)
		}
		return data, nil
	default:
		return nil, NewValidationError(fmt.Sprintf("Request body must be a string, []byte or io.Reader, got %T", body), "body")
	}
}

// foldHeaders merges defaults with overrides (case-insensitively) and folds
// the result into protocol-safe lines.
func (c *client) foldHeaders(overrides map[string]string) (map[string][]string, error) {
	merged := make(map[string]string)
	set := func(name, value string) {
		merged[header.Capitalize(strings.TrimSpace(name))] = value
	}
	set("Accept", DefaultAccept)
	if c.config.UserAgent != "" {
		set("User-Agent", c.config.UserAgent)
	}
	for k, v := range c.config.DefaultHeaders {
		set(k, v)
	}
	for k, v := range overrides {
		set(k, v)
	}

	grouped := make(map[string][]string, len(merged))
	for k, v := range merged {
		grouped[k] = []string{v}
	}
	lines, err := header.FoldAll(grouped)
	if err != nil {
		return nil, wrapValidationError(err.Error(), "headers", err)
	}

	out := make(map[string][]string, len(lines))
	for _, line := range lines {
		out[line.Name] = append(out[line.Name], line.Value)
	}
	return out, nil
}

func (c *client) buildResponse(method Method, tresp *TransportResponse, elapsed time.Duration, callCount int64) *Response {
	resp := &Response{
		StatusCode: tresp.StatusCode,
		Headers:    header.Parse(tresp.RawHeaders),
		Stats: Stats{
			ElapsedTime: elapsed,
			CallCount:   callCount,
		},
	}
	if returnsBody(method, tresp.StatusCode) {
		resp.HasBody = true
		resp.Body = tresp.Body
		if resp.Body == nil {
			resp.Body = []byte{}
		}
	}
	return resp
}

func (c *client) log() logger.Logger {
	if c.logger != nil {
		return c.logger
	}
	return logger.Default()
}

// logSuccess writes the per-attempt info line.
func (c *client) logSuccess(method Method, tresp *TransportResponse, elapsed time.Duration) {
	c.log().Info().
		Int("pid", os.Getpid()).
		Str("method", method.String()).
		Str("url", tresp.EffectiveURL).
		Int("status", tresp.StatusCode).
		Float64("elapsed_seconds", elapsed.Seconds()).
		Msgf("%q %d %0.4f", method.String()+" "+tresp.EffectiveURL, tresp.StatusCode, elapsed.Seconds())
}

// logFailure writes the per-attempt error line.
func (c *client) logFailure(failed *FailedRequest, elapsed time.Duration) {
	c.log().Error().
		Int("pid", os.Getpid()).
		Str("method", failed.Method.String()).
		Str("url", failed.URI).
		Int("status", failed.StatusCode()).
		Float64("elapsed_seconds", elapsed.Seconds()).
		Bool("timed_out", failed.TimedOut()).
		Bool("retryable", failed.Retryable()).
		Msg(failed.Error())
}
