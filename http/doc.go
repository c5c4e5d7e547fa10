// Package http is a blocking request/response facade over a pluggable
// transport.
//
// Each call names a method, the status codes the caller will accept, a
// timeout and a resource path. The client composes the URI from its root and
// the path, folds headers into protocol-safe lines, performs exactly one
// attempt through the Transport and either returns a normalized Response or
// a *FailedRequest.
//
// Outcomes
//   - Success: the transport did not time out and the status is one of the
//     expected codes. Bodies are dropped for HEAD and for 204, 205 and 304.
//   - FailedRequest: a timeout (status 0 counts as one) or an unexpected
//     status. The error carries the raw transport response.
//   - ValidationError: the request was rejected before dispatch.
//
// # Retries
//
// The client never retries. IsRetryable (and FailedRequest.Retryable)
// report whether a response is eligible: timeouts, connection failures and
// 5xx statuses. Backoff and attempt limits belong to the caller.
//
// Every attempt emits one log line (info on success, error on failure), one
// client span and the http.client.* metrics.
package http
