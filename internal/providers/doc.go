// Package providers groups the adapters storefetch uses to talk to the
// outside world.
//
// Subpackages:
//   - resolver: form POST against the package resolver
//   - scraper: file table extraction from resolver pages
//   - download: single-task download manager and local package library
//   - installer: Add-AppxPackage wrapper and package manifest inspection
//   - http/client: resty client with retries and a circuit breaker
package providers
