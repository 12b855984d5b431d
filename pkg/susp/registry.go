package susp

import (
	"sync"

	"github.com/rstms/iso9660rr/pkg/source"
)

// Constructor decodes the payload of a recognized SUSP entry. It must
// consume exactly payloadLen bytes from src; DecodeNext treats any other
// outcome (an error, or a cursor that doesn't land exactly on the expected
// boundary) as a decode failure and falls back to an UnknownEntry.
type Constructor func(h Header, payloadLen int, src *source.Source) (Entry, error)

type registryKey struct {
	signature [2]byte
	version   uint8
}

type candidate struct {
	ext  source.ExtensionID
	ctor Constructor
}

var (
	registryMu sync.RWMutex
	registry   = map[registryKey][]candidate{}
)

// Register adds a constructor for the given signature and version. ext
// identifies which SUSP extension this entry belongs to; a zero-value
// ExtensionID (IsBase true) means the entry belongs to base SUSP and is
// matched regardless of which extension is active, per the SP/CE/ST/ER
// entries' empty _implements convention.
func Register(signature string, version uint8, ext source.ExtensionID, ctor Constructor) {
	var sig [2]byte
	copy(sig[:], signature)
	key := registryKey{signature: sig, version: version}

	registryMu.Lock()
	defer registryMu.Unlock()
	registry[key] = append(registry[key], candidate{ext: ext, ctor: ctor})
}

// lookup finds the constructor registered for signature/version that
// applies under the given candidate extension (base entries always apply;
// extension-scoped entries apply only when extID matches and hasExt is
// true).
func lookup(signature [2]byte, version uint8, extID source.ExtensionID, hasExt bool) (Constructor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, c := range registry[registryKey{signature: signature, version: version}] {
		if c.ext.IsBase() {
			return c.ctor, true
		}
		if hasExt && c.ext == extID {
			return c.ctor, true
		}
	}
	return nil, false
}
