// Package isoerr defines the error taxonomy shared across the decoding
// layers: the source's buffer and endian errors, descriptor validation
// errors, SUSP decode errors, and path resolution errors.
package isoerr

import "fmt"

// Kind classifies an error so callers can distinguish recoverable failures
// (NotFound, SUSPDecode) from fatal ones (BufferUnderrun, EndianMismatch,
// BadDescriptor, RewindUnderrun) without string matching.
type Kind string

const (
	// BufferUnderrun is raised when a read would extend past the currently
	// loaded working window.
	BufferUnderrun Kind = "buffer_underrun"
	// EndianMismatch is raised when a both-endian field's little- and
	// big-endian halves disagree.
	EndianMismatch Kind = "endian_mismatch"
	// BadDescriptor is raised on a wrong standard identifier, wrong
	// version, or unrecognized descriptor type byte.
	BadDescriptor Kind = "bad_descriptor"
	// SUSPDecode classifies a SUSP entry payload that fails a per-entry
	// assertion. The entry decoders in pkg/susp and pkg/rockridge report
	// such failures as plain errors, not with this kind, and the SUSP
	// engine turns any decoder failure into an UnknownEntry, so no error
	// of this kind reaches a caller of the engine.
	SUSPDecode Kind = "susp_decode"
	// NotFound is raised when a path component or child name cannot be
	// resolved. Recoverable and expected during path resolution.
	NotFound Kind = "not_found"
	// RewindUnderrun is raised when a rewind would move the cursor before
	// the start of the working window. Indicates a decoder bug, not bad
	// input.
	RewindUnderrun Kind = "rewind_underrun"
)

// Error is the typed error the source, descriptor, directory, path table
// and facade layers return. Fetcher I/O errors, datetime parse errors and
// SUSP entry decoder errors are plain errors, not *Error.
type Error struct {
	Kind   Kind
	Sector uint32
	Offset int
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("iso9660rr: %s at sector %d+%d: %s", e.Kind, e.Sector, e.Offset, e.Detail)
}

// New constructs an *Error for the given kind at the given sector/offset.
func New(kind Kind, sector uint32, offset int, detail string) error {
	return &Error{Kind: kind, Sector: sector, Offset: offset, Detail: detail}
}

// Newf is New with a formatted detail string.
func Newf(kind Kind, sector uint32, offset int, format string, args ...interface{}) error {
	return New(kind, sector, offset, fmt.Sprintf(format, args...))
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == kind
}
