// Package encoding decodes the two on-disc datetime formats ECMA-119 and
// Rock Ridge's TF entry use, plus the UCS-2 big-endian strings carried by a
// Joliet supplementary descriptor's identification fields.
package encoding

import (
	"fmt"
	"time"
	"unicode/utf16"
)

// UnmarshalDateTime decodes a 17-byte volume-descriptor datetime field
// (ECMA-119 8.4.26.1): 16 ASCII digits "YYYYMMDDhhmmsscc" followed by a
// signed quarter-hour GMT offset. All-zero digits with a zero offset means
// "not specified" and decodes to the zero time.
func UnmarshalDateTime(b [17]byte) (time.Time, error) {
	unspecified := true
	for i := 0; i < 16; i++ {
		if b[i] != '0' {
			unspecified = false
			break
		}
	}
	if unspecified && b[16] == 0 {
		return time.Time{}, nil
	}

	var year, mon, day, hour, min, sec, hundredths int
	if _, err := fmt.Sscanf(string(b[:16]), "%4d%2d%2d%2d%2d%2d%2d",
		&year, &mon, &day, &hour, &min, &sec, &hundredths); err != nil {
		return time.Time{}, fmt.Errorf("volume descriptor datetime: %w", err)
	}

	offset15 := int8(b[16])
	loc := offsetZone(offset15)
	nsec := hundredths * 10_000_000
	return time.Date(year, time.Month(mon), day, hour, min, sec, nsec, loc), nil
}

// UnmarshalRecordingDateTime decodes a 7-byte directory-record datetime
// field (ECMA-119 9.1.5): numeric (not ASCII) years-since-1900, month, day,
// hour, minute, second, and a signed quarter-hour GMT offset. All-zero bytes
// means "not specified" and decodes to the zero time.
func UnmarshalRecordingDateTime(b [7]byte) (time.Time, error) {
	allZero := true
	for _, v := range b {
		if v != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return time.Time{}, nil
	}

	year := int(b[0]) + 1900
	month := time.Month(b[1])
	day := int(b[2])
	hour := int(b[3])
	minute := int(b[4])
	second := int(b[5])
	offset15 := int8(b[6])

	return time.Date(year, month, day, hour, minute, second, 0, offsetZone(offset15)), nil
}

// offsetZone turns a signed count of 15-minute intervals from GMT into a
// fixed time.Location, matching the original parser's ISO_tzinfo behavior.
func offsetZone(offset15 int8) *time.Location {
	offsetSec := int(offset15) * 15 * 60
	if offsetSec == 0 {
		return time.UTC
	}
	return time.FixedZone("", offsetSec)
}

// DecodeUCS2BigEndian converts a UCS-2 big-endian byte string (the encoding
// a Joliet supplementary descriptor uses for identifiers) into a Go string.
// Used only where a caller explicitly opts into Joliet identifier decoding;
// the facade itself only identifies the Joliet escape sequence, per spec.
func DecodeUCS2BigEndian(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", fmt.Errorf("ucs-2: odd byte length %d", len(b))
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return string(utf16.Decode(units)), nil
}
