package http

import (
	"bytes"
	"context"
	"encoding/pem"
	"io"
	"net"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/zephyr/header"
	"github.com/gaborage/zephyr/logger"
	testconsts "github.com/gaborage/zephyr/testing"
	"github.com/gaborage/zephyr/uri"
)

func newIPv4TestServer(t *testing.T, handler nethttp.Handler) *httptest.Server {
	t.Helper()
	lc := net.ListenConfig{}
	listener, err := lc.Listen(context.Background(), "tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test: unable to bind IPv4 listener: %v", err)
		return &httptest.Server{}
	}

	server := &httptest.Server{
		Listener: listener,
		Config:   &nethttp.Server{Handler: handler},
	}
	server.Start()
	t.Cleanup(server.Close)
	return server
}

func TestRestyTransportRoundTrip(t *testing.T) {
	var gotMethod, gotQuery string
	var gotBody []byte
	var gotTags []string
	server := newIPv4TestServer(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		gotTags = r.Header.Values("X-Tags")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Add("Set-Cookie", "a=1")
		w.Header().Add("Set-Cookie", "b=2")
		w.WriteHeader(nethttp.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	transport := NewRestyTransport()
	resp := transport.RoundTrip(context.Background(), &TransportRequest{
		URL:     server.URL + "/items",
		Method:  MethodPost,
		Headers: map[string][]string{"X-Tags": {"a, b", "c"}},
		Timeout: 2 * time.Second,
		Body:    []byte("entity"),
		Params:  uri.Params{"q": "a b"},
	})

	require.NotNil(t, resp)
	require.NoError(t, resp.Err)
	assert.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, ReturnOK, resp.ReturnCode)
	assert.False(t, resp.TimedOut)
	assert.Equal(t, []byte(`{"ok":true}`), resp.Body)
	assert.Equal(t, server.URL+"/items?q=a%20b", resp.EffectiveURL)

	assert.Equal(t, "POST", gotMethod)
	assert.Equal(t, "q=a%20b", gotQuery)
	assert.Equal(t, []byte("entity"), gotBody)
	assert.Equal(t, []string{"a, b", "c"}, gotTags)

	assert.True(t, strings.HasPrefix(resp.RawHeaders, "HTTP/1.1 201 Created\r\n"))
	parsed := header.Parse(resp.RawHeaders)
	assert.Equal(t, "application/json", parsed.Get("content-type"))
	assert.Equal(t, []string{"a=1", "b=2"}, parsed.Values("set-cookie"))
}

func TestRestyTransportDoesNotFollowRedirects(t *testing.T) {
	server := newIPv4TestServer(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path == "/old" {
			nethttp.Redirect(w, r, "/new", nethttp.StatusFound)
			return
		}
		w.WriteHeader(nethttp.StatusOK)
	}))

	resp := NewRestyTransport().RoundTrip(context.Background(), &TransportRequest{
		URL:     server.URL + "/old",
		Method:  MethodGet,
		Timeout: 2 * time.Second,
	})

	assert.Equal(t, 302, resp.StatusCode)
	assert.False(t, resp.TimedOut)
	assert.Equal(t, "/new", header.Parse(resp.RawHeaders).Get("location"))
	assert.Equal(t, server.URL+"/old", resp.EffectiveURL)
}

func TestRestyTransportTimeout(t *testing.T) {
	release := make(chan struct{})
	server := newIPv4TestServer(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer close(release)

	resp := NewRestyTransport().RoundTrip(context.Background(), &TransportRequest{
		URL:     server.URL + "/slow",
		Method:  MethodGet,
		Timeout: testconsts.TestShortTimeout,
	})

	assert.True(t, resp.TimedOut)
	assert.Equal(t, 0, resp.StatusCode)
	assert.Equal(t, ReturnTimedOut, resp.ReturnCode)
	assert.ErrorIs(t, resp.Err, context.DeadlineExceeded)
	assert.True(t, IsRetryable(resp))
}

func TestRestyTransportConnectionRefused(t *testing.T) {
	server := newIPv4TestServer(t, nethttp.NotFoundHandler())
	target := server.URL
	server.Close()

	resp := NewRestyTransport().RoundTrip(context.Background(), &TransportRequest{
		URL:     target + "/gone",
		Method:  MethodGet,
		Timeout: time.Second,
	})

	assert.Equal(t, 0, resp.StatusCode)
	assert.Equal(t, ReturnConnectFailed, resp.ReturnCode)
	assert.Error(t, resp.Err)
	assert.True(t, IsRetryable(resp))
	assert.True(t, TimedOut(resp))
}

func TestRestyTransportBadTLSMaterial(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "ca.pem")
	require.NoError(t, os.WriteFile(bogus, []byte("not a certificate"), 0o600))

	resp := NewRestyTransport().RoundTrip(context.Background(), &TransportRequest{
		URL:     "https://127.0.0.1:1/",
		Method:  MethodGet,
		Timeout: time.Second,
		TLS:     TLSOptions{CACert: bogus},
	})

	assert.Equal(t, 0, resp.StatusCode)
	assert.Equal(t, ReturnError, resp.ReturnCode)
	require.Error(t, resp.Err)
	assert.Contains(t, resp.Err.Error(), "no certificates found")

	resp = NewRestyTransport().RoundTrip(context.Background(), &TransportRequest{
		URL:     "https://127.0.0.1:1/",
		Method:  MethodGet,
		Timeout: time.Second,
		TLS:     TLSOptions{Cert: filepath.Join(dir, "missing.pem")},
	})
	assert.Equal(t, ReturnError, resp.ReturnCode)
	assert.Contains(t, resp.Err.Error(), "load client certificate")
}

func TestRestyTransportTrustsConfiguredCA(t *testing.T) {
	server := httptest.NewTLSServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.WriteHeader(nethttp.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	caFile := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(caFile, pemEncodeCert(server.Certificate().Raw), 0o600))

	resp := NewRestyTransport().RoundTrip(context.Background(), &TransportRequest{
		URL:     server.URL + "/secure",
		Method:  MethodGet,
		Timeout: 2 * time.Second,
		TLS:     TLSOptions{CACert: caFile},
	})

	require.NoError(t, resp.Err)
	assert.Equal(t, 204, resp.StatusCode)
}

func TestRestyTransportReusesClients(t *testing.T) {
	transport := NewRestyTransport()

	a, err := transport.client(TLSOptions{}, false)
	require.NoError(t, err)
	b, err := transport.client(TLSOptions{}, false)
	require.NoError(t, err)
	c, err := transport.client(TLSOptions{}, true)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestRestyLoggerAdapter(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "debug", false)
	adapter := restyLogger{log: log}

	adapter.Errorf("failed %d", 1)
	adapter.Warnf("careful %s", "now")
	adapter.Debugf("detail")

	out := buf.String()
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, "failed 1")
	assert.Contains(t, out, "careful now")
	assert.Contains(t, out, `"component":"resty"`)
}

func TestClientWithRestyTransport(t *testing.T) {
	server := newIPv4TestServer(t, nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Header.Get("User-Agent") != "zephyr" {
			w.WriteHeader(nethttp.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"a":1}`))
	}))

	var buf bytes.Buffer
	client, err := NewBuilder(server.URL).WithLogger(logger.NewWithWriter(&buf, "info", false)).Build()
	require.NoError(t, err)

	resp, err := client.GetJSON(context.Background(), &Request{
		Expect:  []int{200},
		Timeout: 2 * time.Second,
		Path:    uri.Path("users", 1),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, resp.JSON)

	_, err = client.Get(context.Background(), &Request{
		Expect:  []int{201},
		Timeout: 2 * time.Second,
		Path:    uri.Path("users", 1),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected 201 from the server but received 200.")
}

func pemEncodeCert(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}
