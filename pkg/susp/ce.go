package susp

import (
	"fmt"

	"github.com/rstms/iso9660rr/pkg/source"
)

// CE is a continuation-area pointer: the system-use area ran out of room,
// and the remaining entries continue at (Location, Offset) for Length
// bytes.
type CE struct {
	Header   Header
	Location uint32
	Offset   uint32
	Length   uint32
}

func (e *CE) SUSPHeader() Header { return e.Header }

func init() {
	Register("CE", 1, source.ExtensionID{}, decodeCE)
}

func decodeCE(h Header, payloadLen int, src *source.Source) (Entry, error) {
	if payloadLen != 24 {
		return nil, fmt.Errorf("CE: unexpected payload length %d", payloadLen)
	}
	location, err := src.UnpackUint32Both()
	if err != nil {
		return nil, err
	}
	offset, err := src.UnpackUint32Both()
	if err != nil {
		return nil, err
	}
	length, err := src.UnpackUint32Both()
	if err != nil {
		return nil, err
	}
	return &CE{Header: h, Location: location, Offset: offset, Length: length}, nil
}
