package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/gaborage/zephyr/http"
)

// MockTransport provides a testify-based mock implementation of http.Transport.
// Every dispatched request is also recorded for later inspection.
//
// Example usage:
//
//	transport := &mocks.MockTransport{}
//	transport.On("RoundTrip", mock.Anything, mock.Anything).Return(fixtures.Status(200))
//
//	client, _ := http.NewBuilder("http://example.com").WithTransport(transport).Build()
type MockTransport struct {
	mock.Mock

	mu       sync.Mutex
	requests []*http.TransportRequest
}

// RoundTrip implements http.Transport
func (m *MockTransport) RoundTrip(ctx context.Context, req *http.TransportRequest) *http.TransportResponse {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	arguments := m.Called(ctx, req)
	if fn, ok := arguments.Get(0).(func(context.Context, *http.TransportRequest) *http.TransportResponse); ok {
		return fn(ctx, req)
	}
	if resp, ok := arguments.Get(0).(*http.TransportResponse); ok {
		return resp
	}
	return nil
}

// Requests returns the requests seen so far, in dispatch order.
func (m *MockTransport) Requests() []*http.TransportRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*http.TransportRequest(nil), m.requests...)
}

// LastRequest returns the most recent request, or nil.
func (m *MockTransport) LastRequest() *http.TransportRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// ExpectRoundTrip registers a RoundTrip expectation for any request.
func (m *MockTransport) ExpectRoundTrip(resp *http.TransportResponse) *mock.Call {
	return m.On("RoundTrip", mock.Anything, mock.Anything).Return(resp)
}
