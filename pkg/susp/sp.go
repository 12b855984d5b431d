package susp

import (
	"fmt"

	"github.com/rstms/iso9660rr/pkg/source"
)

// SP is the SUSP start-of-area marker. It must be the first entry in the
// root directory's current-directory record when SUSP is in use; its
// LenSkp field is the byte offset every subsequent record's system-use
// area begins at.
type SP struct {
	Header Header
	LenSkp uint8
}

func (e *SP) SUSPHeader() Header { return e.Header }

func init() {
	Register("SP", 1, source.ExtensionID{}, decodeSP)
}

func decodeSP(h Header, payloadLen int, src *source.Source) (Entry, error) {
	if payloadLen != 3 {
		return nil, fmt.Errorf("SP: unexpected payload length %d", payloadLen)
	}
	raw, err := src.UnpackRaw(3)
	if err != nil {
		return nil, err
	}
	if raw[0] != 0xBE || raw[1] != 0xEF {
		return nil, fmt.Errorf("SP: bad check bytes %#x %#x", raw[0], raw[1])
	}
	return &SP{Header: h, LenSkp: raw[2]}, nil
}
