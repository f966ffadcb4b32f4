// Package http exposes the resolve, download and install workflow as a
// JSON API on gin. Workflow errors are mapped onto status codes in one
// place (statusFor) so every route reports them the same way.
package http
