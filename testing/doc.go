// Package testing provides testing utilities for code built on the zephyr
// HTTP client.
//
// # Mocks
//
// The mocks subpackage provides a testify-based http.Transport that records
// every dispatched request, so tests can assert on the composed URL, folded
// headers and body without a network.
//
// # Fixtures
//
// The fixtures subpackage builds canned transport responses for common
// scenarios:
//   - plain status codes and JSON bodies
//   - timeouts and refused connections
//   - raw header blocks with continuation lines
//
// # Usage
//
// Import the specific subpackages you need:
//
//	import (
//		"github.com/gaborage/zephyr/testing/mocks"
//		"github.com/gaborage/zephyr/testing/fixtures"
//	)
package testing
