package source

import "io"

// Fetcher supplies raw sector bytes to a Source. Implementations decide how
// sectors are physically retrieved: a local file, an HTTP range request, or
// something else entirely.
type Fetcher interface {
	// Fetch returns count sectors of raw bytes starting at sector.
	Fetch(sector uint32, count uint32) ([]byte, error)

	// OpenStream returns a reader over length bytes starting at sector,
	// without requiring the whole extent to be buffered in memory. Used
	// for file content, where callers may want to stream large extents.
	OpenStream(sector uint32, length uint32) (io.ReadCloser, error)
}
