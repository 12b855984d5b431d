package susp

import (
	"fmt"

	"github.com/rstms/iso9660rr/pkg/source"
)

// ST terminates a record's SUSP entry stream: both the embedded list and
// any pending continuation-area chase stop here.
type ST struct {
	Header Header
}

func (e *ST) SUSPHeader() Header { return e.Header }

func init() {
	Register("ST", 1, source.ExtensionID{}, decodeST)
}

func decodeST(h Header, payloadLen int, _ *source.Source) (Entry, error) {
	if payloadLen != 0 {
		return nil, fmt.Errorf("ST: unexpected payload length %d", payloadLen)
	}
	return &ST{Header: h}, nil
}
