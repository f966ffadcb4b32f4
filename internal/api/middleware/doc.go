// Package middleware holds the gin middleware shared by the HTTP API:
// CORS headers, JSON-only request bodies and per-client rate limiting.
package middleware
