package rockridge

import (
	"fmt"

	"github.com/rstms/iso9660rr/pkg/source"
	"github.com/rstms/iso9660rr/pkg/susp"
)

// PX carries POSIX file attributes: mode, link count, owner, and group.
// The payload is 32 bytes normally, or 40 bytes when an inode number is
// also present.
type PX struct {
	Header susp.Header
	Mode   uint32
	NLinks uint32
	UID    uint32
	GID    uint32
	Ino    uint32
	HasIno bool
}

func (e *PX) SUSPHeader() susp.Header { return e.Header }

func init() {
	for _, ext := range Versions {
		susp.Register("PX", 1, ext, decodePX)
	}
}

func decodePX(h susp.Header, payloadLen int, src *source.Source) (susp.Entry, error) {
	switch payloadLen {
	case 32:
		vals, err := src.UnpackSmart("IIII")
		if err != nil {
			return nil, err
		}
		return &PX{
			Header: h,
			Mode:   vals[0].(uint32),
			NLinks: vals[1].(uint32),
			UID:    vals[2].(uint32),
			GID:    vals[3].(uint32),
		}, nil
	case 40:
		vals, err := src.UnpackSmart("IIIII")
		if err != nil {
			return nil, err
		}
		return &PX{
			Header: h,
			Mode:   vals[0].(uint32),
			NLinks: vals[1].(uint32),
			UID:    vals[2].(uint32),
			GID:    vals[3].(uint32),
			Ino:    vals[4].(uint32),
			HasIno: true,
		}, nil
	default:
		return nil, fmt.Errorf("PX: unexpected payload length %d", payloadLen)
	}
}
