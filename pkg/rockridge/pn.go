package rockridge

import (
	"fmt"

	"github.com/rstms/iso9660rr/pkg/source"
	"github.com/rstms/iso9660rr/pkg/susp"
)

// PN carries a device's major/minor numbers, for character and block
// special files.
type PN struct {
	Header  susp.Header
	DevHigh uint32
	DevLow  uint32
}

func (e *PN) SUSPHeader() susp.Header { return e.Header }

func init() {
	for _, ext := range Versions {
		susp.Register("PN", 1, ext, decodePN)
	}
}

func decodePN(h susp.Header, payloadLen int, src *source.Source) (susp.Entry, error) {
	if payloadLen != 16 {
		return nil, fmt.Errorf("PN: unexpected payload length %d", payloadLen)
	}
	high, err := src.UnpackUint32Both()
	if err != nil {
		return nil, err
	}
	low, err := src.UnpackUint32Both()
	if err != nil {
		return nil, err
	}
	return &PN{Header: h, DevHigh: high, DevLow: low}, nil
}
