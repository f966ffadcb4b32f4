// Package scraper turns resolver HTML pages into file records.
//
// The resolver answers a lookup with an HTML page holding at most one
// table.tftable. Each data row is [name+link, expiry, SHA-1, size]; the
// first row is a header. Extract walks that table with goquery and
// returns one types.FileDescriptor per usable row, in order.
//
// Parsing is tolerant: broken markup, a missing table or short rows yield
// fewer records, never an error.
//
// Built on:
//   - goquery / x/net/html: forgiving HTML tree and CSS selection
//   - x/net/html/charset + chardet: body decoding
//   - htmlquery: XPath lookup of the resolver's notice text
//   - bluemonday: sanitizing pages rendered back to clients
//
// Example Usage:
//
//	files := scraper.Extract(page)
//	for _, f := range files {
//	    fmt.Println(f.Name, f.Size)
//	}
package scraper
