package rockridge

import (
	"fmt"

	"github.com/rstms/iso9660rr/pkg/source"
	"github.com/rstms/iso9660rr/pkg/susp"
)

// RR fragment-presence bits, from the superseded pre-SUSP Rock Ridge
// revision that declared which other Rock Ridge entries a record carried
// up front rather than relying on ER-based extension discovery.
const (
	RRPX uint8 = 1
	RRPN uint8 = 2
	RRSL uint8 = 4
	RRNM uint8 = 8
	RRCL uint8 = 16
	RRPL uint8 = 32
	RRRE uint8 = 64
	RRTF uint8 = 128
)

// RR is the legacy fragment-presence bitfield entry. Modern Rock Ridge
// writers rely on ER-based extension discovery instead, but some older
// images still carry it.
type RR struct {
	Header susp.Header
	Flags  uint8
}

func (e *RR) SUSPHeader() susp.Header { return e.Header }

func init() {
	susp.Register("RR", 1, RRIP1991A, decodeRR)
}

func decodeRR(h susp.Header, payloadLen int, src *source.Source) (susp.Entry, error) {
	if payloadLen != 1 {
		return nil, fmt.Errorf("RR: unexpected payload length %d", payloadLen)
	}
	flags, err := src.UnpackUint8()
	if err != nil {
		return nil, err
	}
	return &RR{Header: h, Flags: flags}, nil
}
