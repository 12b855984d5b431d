package susp

import (
	"fmt"

	"github.com/rstms/iso9660rr/pkg/source"
)

// ER declares an extension in use on this disc: the extension identifier
// and version that Rock Ridge (or any other SUSP extension) entries'
// registrations are keyed against.
type ER struct {
	Header        Header
	ExtID         string
	ExtVersion    uint8
	ExtDescriptor string
	ExtSource     string
}

func (e *ER) SUSPHeader() Header { return e.Header }

// Extension returns the ExtensionID this ER entry advertises, for matching
// against a registered Constructor's scope.
func (e *ER) Extension() source.ExtensionID {
	return source.ExtensionID{ID: e.ExtID, Version: e.ExtVersion}
}

func init() {
	Register("ER", 1, source.ExtensionID{}, decodeER)
}

func decodeER(h Header, payloadLen int, src *source.Source) (Entry, error) {
	if payloadLen < 4 {
		return nil, fmt.Errorf("ER: payload too short: %d", payloadLen)
	}
	lenID, err := src.UnpackUint8()
	if err != nil {
		return nil, err
	}
	lenDes, err := src.UnpackUint8()
	if err != nil {
		return nil, err
	}
	lenSrc, err := src.UnpackUint8()
	if err != nil {
		return nil, err
	}
	extVer, err := src.UnpackUint8()
	if err != nil {
		return nil, err
	}
	if int(lenID)+int(lenDes)+int(lenSrc) != payloadLen-4 {
		return nil, fmt.Errorf("ER: field lengths %d+%d+%d don't match payload %d", lenID, lenDes, lenSrc, payloadLen-4)
	}
	id, err := src.UnpackRaw(int(lenID))
	if err != nil {
		return nil, err
	}
	des, err := src.UnpackRaw(int(lenDes))
	if err != nil {
		return nil, err
	}
	srcBytes, err := src.UnpackRaw(int(lenSrc))
	if err != nil {
		return nil, err
	}
	return &ER{
		Header:        h,
		ExtID:         string(id),
		ExtVersion:    extVer,
		ExtDescriptor: string(des),
		ExtSource:     string(srcBytes),
	}, nil
}
