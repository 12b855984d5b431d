package susp

import (
	"github.com/rstms/iso9660rr/pkg/source"
)

// DecodeNext decodes the next SUSP entry from src, where maxlen is the
// number of bytes remaining before the end of the enclosing system-use or
// continuation area. extensions is the source's recognized extension list
// and possibleExtension indexes into it to pick the candidate (ext_id,
// ext_ver) scope this call should try, mirroring unpack_susp's
// possible_extension parameter.
//
// Returns (nil, nil) when the area has been exhausted (maxlen < 4, or the
// declared entry length exceeds maxlen). Returns a non-nil error only on a
// fatal Source failure (buffer underrun); a malformed or unrecognized
// entry is never an error here, it decodes as an UnknownEntry instead.
func DecodeNext(src *source.Source, maxlen int, extensions []source.ExtensionID, possibleExtension int) (Entry, error) {
	if maxlen < 4 {
		return nil, nil
	}
	startCursor := src.Cursor()

	header, err := src.UnpackRaw(4)
	if err != nil {
		return nil, err
	}
	var sig [2]byte
	copy(sig[:], header[0:2])
	length := header[2]
	version := header[3]

	if int(length) > maxlen {
		if err := src.RewindRaw(4); err != nil {
			return nil, err
		}
		return nil, nil
	}

	payloadLen := int(length) - 4

	var extID source.ExtensionID
	hasExt := possibleExtension < len(extensions)
	if hasExt {
		extID = extensions[possibleExtension]
	}

	ctor, found := lookup(sig, version, extID, hasExt)

	afterHeader := src.SaveCursor()
	var entry Entry
	if found && payloadLen >= 0 {
		entry, err = ctor(Header{Signature: sig, Length: length, Version: version}, payloadLen, src)
	}

	targetCursor := startCursor + int(length)
	if !found || payloadLen < 0 || err != nil || src.Cursor() != targetCursor {
		src.RestoreCursor(afterHeader)
		if payloadLen < 0 {
			payloadLen = 0
		}
		payload, rerr := src.UnpackRaw(payloadLen)
		if rerr != nil {
			return nil, rerr
		}
		entry = NewUnknownEntry(Header{Signature: sig, Length: length, Version: version}, payload)
	}
	return entry, nil
}
