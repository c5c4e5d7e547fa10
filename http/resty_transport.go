package http

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	nethttp "net/http"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/go-resty/resty/v2"

	"github.com/gaborage/zephyr/logger"
)

// RestyTransport is the default Transport, backed by go-resty.
//
// One resty client is kept per distinct TLS/verbosity combination. Redirects
// are never followed and resty's own retries are disabled.
type RestyTransport struct {
	logger logger.Logger

	mu      sync.Mutex
	clients map[restyKey]*resty.Client
}

type restyKey struct {
	tls     TLSOptions
	verbose bool
}

// RestyOption configures a RestyTransport.
type RestyOption func(*RestyTransport)

// WithRestyLogger routes resty's internal and debug output to log.
func WithRestyLogger(log logger.Logger) RestyOption {
	return func(t *RestyTransport) {
		t.logger = log
	}
}

// NewRestyTransport creates the default transport.
func NewRestyTransport(opts ...RestyOption) *RestyTransport {
	t := &RestyTransport{
		clients: make(map[restyKey]*resty.Client),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RoundTrip implements Transport.
func (t *RestyTransport) RoundTrip(ctx context.Context, req *TransportRequest) *TransportResponse {
	target := req.TargetURL()

	client, err := t.client(req.TLS, req.Verbose)
	if err != nil {
		return &TransportResponse{ReturnCode: ReturnError, EffectiveURL: target, Err: err}
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	r := client.R().SetContext(ctx)
	for name, values := range req.Headers {
		for _, v := range values {
			r.Header.Add(name, v)
		}
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method.String(), target)
	if err != nil {
		timedOut, code := classifyTransportError(err)
		out := &TransportResponse{
			TimedOut:     timedOut,
			ReturnCode:   code,
			EffectiveURL: target,
			Err:          err,
		}
		// A redirect that was not followed still yields a response.
		if resp != nil && resp.RawResponse != nil {
			fillResponse(out, resp)
		}
		return out
	}

	out := &TransportResponse{ReturnCode: ReturnOK, EffectiveURL: target}
	fillResponse(out, resp)
	return out
}

func fillResponse(out *TransportResponse, resp *resty.Response) {
	raw := resp.RawResponse
	out.StatusCode = resp.StatusCode()
	out.Body = resp.Body()
	out.RawHeaders = rawHeaderBlock(raw)
	if raw.Request != nil && raw.Request.URL != nil {
		out.EffectiveURL = raw.Request.URL.String()
	}
}

// rawHeaderBlock renders the status line and header fields as received.
func rawHeaderBlock(raw *nethttp.Response) string {
	var b strings.Builder
	proto := raw.Proto
	if proto == "" {
		proto = "HTTP/1.1"
	}
	status := raw.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", raw.StatusCode, nethttp.StatusText(raw.StatusCode))
	}
	b.WriteString(proto)
	b.WriteByte(' ')
	b.WriteString(status)
	b.WriteString("\r\n")
	_ = raw.Header.Write(&b)
	b.WriteString("\r\n")
	return b.String()
}

func (t *RestyTransport) client(opts TLSOptions, verbose bool) (*resty.Client, error) {
	key := restyKey{tls: opts, verbose: verbose}

	t.mu.Lock()
	defer t.mu.Unlock()

	if c, ok := t.clients[key]; ok {
		return c, nil
	}

	c := resty.New().
		SetRetryCount(0).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*nethttp.Request, []*nethttp.Request) error {
			return nethttp.ErrUseLastResponse
		})).
		SetDebug(verbose)
	if t.logger != nil {
		c.SetLogger(restyLogger{log: t.logger})
	}
	if !opts.IsZero() {
		cfg, err := tlsConfig(opts)
		if err != nil {
			return nil, err
		}
		c.SetTLSClientConfig(cfg)
	}

	t.clients[key] = c
	return c, nil
}

func tlsConfig(opts TLSOptions) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if opts.CACert != "" {
		pem, err := os.ReadFile(opts.CACert)
		if err != nil {
			return nil, fmt.Errorf("read CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", opts.CACert)
		}
		cfg.RootCAs = pool
	}

	if opts.Cert != "" {
		key := opts.Key
		if key == "" {
			key = opts.Cert
		}
		cert, err := tls.LoadX509KeyPair(opts.Cert, key)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}

// classifyTransportError maps a transport error to the timeout flag and a
// return code.
func classifyTransportError(err error) (timedOut bool, code ReturnCode) {
	if errors.Is(err, context.DeadlineExceeded) {
		return true, ReturnTimedOut
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true, ReturnTimedOut
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return false, ReturnResolveFailed
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return false, ReturnConnectFailed
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return false, ReturnConnectFailed
	}
	return false, ReturnError
}

// restyLogger adapts logger.Logger to resty.Logger.
type restyLogger struct {
	log logger.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error().Str("component", "resty").Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn().Str("component", "resty").Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug().Str("component", "resty").Msgf(format, v...)
}
