// Package httpapi is the thin HTTP presentation adapter of the agreement ledger.
//
// It resolves the caller from the profile_id header, translates requests into commands and
// queries, and maps the error taxonomy onto HTTP status codes. Every response body has the
// shape {"ok", "errorKind", "data", "message"}.
package httpapi
