package http

// TimedOut reports whether the attempt timed out. A zero status always counts
// as a timeout.
func TimedOut(resp *TransportResponse) bool {
	if resp == nil {
		return true
	}
	return resp.TimedOut || resp.StatusCode == 0
}

// IsRetryable reports whether a caller may retry the attempt: it timed out,
// the connection could not be established, or the server answered 5xx.
func IsRetryable(resp *TransportResponse) bool {
	if TimedOut(resp) {
		return true
	}
	if resp.ReturnCode == ReturnConnectFailed {
		return true
	}
	return isServerError(resp.StatusCode)
}

func isServerError(code int) bool {
	return code >= 500 && code <= 599
}

// statusExpected reports whether actual is one of expected.
func statusExpected(expected []int, actual int) bool {
	for _, code := range expected {
		if code == actual {
			return true
		}
	}
	return false
}

// returnsBody reports whether a successful response keeps its body.
func returnsBody(method Method, code int) bool {
	return method != MethodHead && !statusExpected([]int{204, 205, 304}, code)
}
