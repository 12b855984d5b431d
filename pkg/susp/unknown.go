package susp

// UnknownEntry preserves the raw payload of a SUSP entry whose signature
// wasn't registered, or whose registered decoder failed or mis-consumed
// its declared length. Per spec, an unrecognized extension's bytes are
// preserved rather than interpreted.
type UnknownEntry struct {
	Header  Header
	Payload []byte
}

func NewUnknownEntry(h Header, payload []byte) *UnknownEntry {
	return &UnknownEntry{Header: h, Payload: payload}
}

func (e *UnknownEntry) SUSPHeader() Header { return e.Header }
