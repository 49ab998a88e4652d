// Package expiry derives the absolute expiry instant of a signed object-storage URL
// from its query string.
//
// # Query parameters
//
// Signed URLs carry a validity window as two parameters:
//
//	X-Amz-Expires — window length in seconds
//	X-Amz-Date    — issue instant in compact form, e.g. 20240101T000000Z
//
// The compact issue timestamp is decoded by fixed-position substring slicing
// rather than a general date parser: the encoding is not an ISO 8601 variant
// and must never be confused with one.
//
// # Fallback
//
// When either parameter is missing or malformed, [At] returns now plus the
// caller's fallback window instead of an error. Callers always receive a
// usable instant; the fallback is chosen to match the backend's default
// signing duration, so a guessed expiry errs toward refreshing too early,
// never too late.
//
// # What this package must NOT do
//
//   - Perform I/O or read clocks on its own — the caller supplies now.
//   - Import any other urlkeeper package.
//   - Return an error; parse failures degrade to the fallback instant.
package expiry
