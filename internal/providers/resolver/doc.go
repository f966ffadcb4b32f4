// Package resolver talks to the store resolver service.
//
// A lookup is a form POST with four fields: type (ProductId, url, ...),
// url (the identifier or detail-page URL), ring (RP, WIF, WIS, Retail)
// and lang. The answer is an HTML page; Resolve runs it through the
// scraper to get file records.
//
// The configuration is a value handed to New, not package state, so
// several resolvers with different endpoints can coexist.
package resolver
