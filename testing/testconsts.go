package testing

import "time"

// Logger levels shared by test files.
const (
	TestLoggerLevelDebug    = "debug"
	TestLoggerLevelInfo     = "info"
	TestLoggerLevelError    = "error"
	TestLoggerLevelDisabled = "disabled"
)

// Endpoints used across client tests. The host is never dialed unless a test
// points a real transport at it.
const (
	TestRoot      = "http://www.example.com"
	TestUsersURL  = "http://www.example.com/users/1"
	TestUserAgent = "zephyr-test"
)

// Timeouts used across client tests.
const (
	TestTimeout      = time.Second
	TestShortTimeout = 50 * time.Millisecond
)
