// Package download fetches resolved packages into the downloads directory.
//
// A Manager runs at most one transfer at a time; starting another while
// one is active returns ErrBusy. Each transfer moves through
//
//	pending -> downloading -> completed | cancelled | interrupted
//
// and publishes Task snapshots to subscribers as bytes arrive. Cancelled
// and interrupted transfers remove their partial file. Existing files are
// never overwritten: a clash saves as "name (1).ext", "name (2).ext", ...
//
// Files go through an afero.Fs so tests can run against memory.
package download
