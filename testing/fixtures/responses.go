package fixtures

import (
	"context"
	"fmt"
	nethttp "net/http"
	"sort"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/gaborage/zephyr/http"
	"github.com/gaborage/zephyr/testing/mocks"
)

// Content type constants
const (
	ApplicationJSONContentType = "application/json"
	TextPlainContentType       = "text/plain"
)

// Status returns a transport response with the given status and no body.
func Status(code int) *http.TransportResponse {
	return Response(code, "", nil)
}

// Response builds a transport response with a raw header block rendered from
// headers (name to value).
func Response(code int, body string, headers map[string]string) *http.TransportResponse {
	resp := &http.TransportResponse{
		StatusCode: code,
		RawHeaders: RawHeaders(code, headers),
		ReturnCode: http.ReturnOK,
	}
	if body != "" {
		resp.Body = []byte(body)
	}
	return resp
}

// JSON returns a response carrying body as application/json.
func JSON(code int, body string) *http.TransportResponse {
	return Response(code, body, map[string]string{"Content-Type": ApplicationJSONContentType})
}

// TimedOut returns a response for an attempt that hit its deadline.
func TimedOut() *http.TransportResponse {
	return &http.TransportResponse{
		TimedOut:   true,
		ReturnCode: http.ReturnTimedOut,
		Err:        context.DeadlineExceeded,
	}
}

// ConnectionRefused returns a response for an attempt that could not connect.
func ConnectionRefused() *http.TransportResponse {
	return &http.TransportResponse{
		ReturnCode: http.ReturnConnectFailed,
	}
}

// RawHeaders renders a status line and header fields the way a server sends
// them. Fields are sorted by name.
func RawHeaders(code int, headers map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/1.1 %d %s\r\n", code, nethttp.StatusText(code))

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %s\r\n", name, headers[name])
	}
	b.WriteString("\r\n")
	return b.String()
}

// NewStatusTransport returns a mock transport answering every request with resp.
func NewStatusTransport(resp *http.TransportResponse) *mocks.MockTransport {
	transport := &mocks.MockTransport{}
	transport.ExpectRoundTrip(resp)
	return transport
}

// NewEchoTransport returns a mock transport answering 200 with the request
// body echoed back.
func NewEchoTransport() *mocks.MockTransport {
	transport := &mocks.MockTransport{}
	transport.On("RoundTrip", mock.Anything, mock.Anything).Return(
		func(_ context.Context, req *http.TransportRequest) *http.TransportResponse {
			return Response(nethttp.StatusOK, string(req.Body), map[string]string{"Content-Type": TextPlainContentType})
		},
	)
	return transport
}
