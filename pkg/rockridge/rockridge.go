// Package rockridge decodes the Rock Ridge Interchange Protocol's SUSP
// entries: long filenames (NM), symbolic links (SL), POSIX metadata (PX,
// PN), timestamps (TF), and the legacy fragment-presence bitfield (RR).
// Every entry here registers itself with pkg/susp's registry on import, so
// a caller need only blank- or value-import this package to enable Rock
// Ridge decoding.
package rockridge

import "github.com/rstms/iso9660rr/pkg/source"

// RRIP1991A and IEEEP1282 are the two Rock Ridge extension versions this
// package implements entries for. A source's ER entries are checked
// against these to decide whether Rock Ridge is active.
var (
	RRIP1991A = source.ExtensionID{ID: "RRIP_1991A", Version: 1}
	IEEEP1282 = source.ExtensionID{ID: "IEEE_P1282", Version: 1}
)

// Versions lists the recognized Rock Ridge extension identifiers, for a
// facade to test a source's advertised ER entries against.
var Versions = []source.ExtensionID{RRIP1991A, IEEEP1282}

// IsRockRidge reports whether ext names a recognized Rock Ridge version.
func IsRockRidge(ext source.ExtensionID) bool {
	for _, v := range Versions {
		if v == ext {
			return true
		}
	}
	return false
}
