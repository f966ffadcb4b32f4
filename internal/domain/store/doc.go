// Package store is the storefetch workflow: normalize what the user typed,
// look it up through the resolver, narrow the records, then download and
// optionally install one.
//
// Input is either a bare identifier (looked up with the configured type,
// ProductId by default) or an apps.microsoft.com detail-page URL (looked
// up with type "url"). Any other URL is rejected with ErrNotDetailPage.
package store
