// Package sanitizer normalizes user supplied booking and account fields
// before validation and storage.
//
// All functions are idempotent. Invalid input is returned in its trimmed form
// rather than rejected, leaving the decision to the validators.
//
//   - Phone numbers: E.164 when parseable for the configured default region
//   - Strings: collapse whitespace, trim leading/trailing spaces
//   - Emails: trimmed and lower-cased
package sanitizer
