// Package server wires configuration into the resolver, download manager,
// installer and store service, and serves them over HTTP with graceful
// shutdown.
package server
