package rockridge

import (
	"fmt"

	"github.com/rstms/iso9660rr/pkg/source"
	"github.com/rstms/iso9660rr/pkg/susp"
)

// SL component flag bits.
const (
	SLContinue uint8 = 1
	SLCurrent  uint8 = 2
	SLParent   uint8 = 4
	SLRoot     uint8 = 8
)

// SL carries one fragment of a Rock Ridge symbolic link target, expressed
// as a sequence of components. Path reassembles the components of this
// fragment into a "/"-separated string; a full symlink target is the
// concatenation of Path across a CONTINUE-chained run of SL entries.
type SL struct {
	Header susp.Header
	Flags  uint8
	Path   string
}

func (e *SL) SUSPHeader() susp.Header { return e.Header }

// Continues reports whether another SL fragment follows this one.
func (e *SL) Continues() bool { return e.Flags&SLContinue != 0 }

func init() {
	for _, ext := range Versions {
		susp.Register("SL", 1, ext, decodeSL)
	}
}

func decodeSL(h susp.Header, payloadLen int, src *source.Source) (susp.Entry, error) {
	if payloadLen < 2 {
		return nil, fmt.Errorf("SL: payload too short: %d", payloadLen)
	}
	target := src.Cursor() + payloadLen

	flags, err := src.UnpackUint8()
	if err != nil {
		return nil, err
	}

	path := ""
	for src.Cursor() < target {
		compFlags, err := src.UnpackUint8()
		if err != nil {
			return nil, err
		}
		compLen, err := src.UnpackUint8()
		if err != nil {
			return nil, err
		}
		compContent, err := src.UnpackRaw(int(compLen))
		if err != nil {
			return nil, err
		}
		if src.Cursor() > target {
			return nil, fmt.Errorf("SL: component overran entry payload")
		}

		switch {
		case compFlags == SLCurrent:
			if compLen != 0 {
				return nil, fmt.Errorf("SL: CURRENT component must be empty")
			}
			path += "."
		case compFlags == SLParent:
			if compLen != 0 {
				return nil, fmt.Errorf("SL: PARENT component must be empty")
			}
			path += ".."
		case compFlags == SLRoot:
			if compLen != 0 {
				return nil, fmt.Errorf("SL: ROOT component must be empty")
			}
		case compFlags == 0 || compFlags == SLContinue:
			if compLen == 0 {
				return nil, fmt.Errorf("SL: plain component must be non-empty")
			}
			path += string(compContent)
		default:
			return nil, fmt.Errorf("SL: unrecognized component flags %#x", compFlags)
		}

		switch {
		case compFlags == SLContinue:
			// A continued component doesn't end here; no separator.
		case compFlags == 0 && src.Cursor() == target && flags&SLContinue == 0:
			// Last component of the final fragment; no trailing separator.
		default:
			path += "/"
		}
	}
	return &SL{Header: h, Flags: flags, Path: path}, nil
}
