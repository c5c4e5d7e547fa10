// Package header folds outgoing header values into lines that stay under the
// 8 KiB line limit servers enforce, and parses raw response header blocks into
// a case-insensitive multi-value map.
package header
