// Package sanitizer normalizes user input before validation and storage.
//
// All functions are idempotent: applying them twice yields the same result.
// Invalid input is returned in a form the validators will reject rather than
// as an error, so callers can sanitize unconditionally.
//
// Normalization includes:
//   - Codes: trim, upper-case, spaces become '-', anything outside [A-Z0-9_-] dropped
//   - Names and free text: collapse whitespace, trim
//   - Phone numbers: E.164 via libphonenumber with a default region
//   - Borrowed items: drop non-positive quantities, sanitize item codes
package sanitizer
