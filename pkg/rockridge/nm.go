package rockridge

import (
	"fmt"

	"github.com/rstms/iso9660rr/pkg/source"
	"github.com/rstms/iso9660rr/pkg/susp"
)

// NM flag bits.
const (
	NMContinue uint8 = 1
	NMCurrent  uint8 = 2
	NMParent   uint8 = 4
)

// NM carries one fragment of a Rock Ridge long filename. Consecutive NM
// entries chain while each one's CONTINUE bit is set; the reassembled name
// is the concatenation of every fragment in the chain.
type NM struct {
	Header susp.Header
	Flags  uint8
	Name   string
}

func (e *NM) SUSPHeader() susp.Header { return e.Header }

// Continues reports whether another NM fragment follows this one.
func (e *NM) Continues() bool { return e.Flags&NMContinue != 0 }

func init() {
	for _, ext := range Versions {
		susp.Register("NM", 1, ext, decodeNM)
	}
}

func decodeNM(h susp.Header, payloadLen int, src *source.Source) (susp.Entry, error) {
	if payloadLen < 1 {
		return nil, fmt.Errorf("NM: payload too short: %d", payloadLen)
	}
	flags, err := src.UnpackUint8()
	if err != nil {
		return nil, err
	}

	switch {
	case flags == NMCurrent:
		if payloadLen != 1 {
			return nil, fmt.Errorf("NM: CURRENT entry must have no name content")
		}
		return &NM{Header: h, Flags: flags, Name: "."}, nil
	case flags == NMParent:
		if payloadLen != 1 {
			return nil, fmt.Errorf("NM: PARENT entry must have no name content")
		}
		return &NM{Header: h, Flags: flags, Name: ".."}, nil
	case flags == 0 || flags == NMContinue:
		if payloadLen <= 1 {
			return nil, fmt.Errorf("NM: name fragment must be non-empty")
		}
		raw, err := src.UnpackRaw(payloadLen - 1)
		if err != nil {
			return nil, err
		}
		return &NM{Header: h, Flags: flags, Name: string(raw)}, nil
	default:
		return nil, fmt.Errorf("NM: unrecognized flags %#x", flags)
	}
}
