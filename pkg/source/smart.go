package source

import (
	"fmt"
	"sync"

	"github.com/rstms/iso9660rr/pkg/isoerr"
)

// smartKind identifies one field in a compiled UnpackSmart plan.
type smartKind int

const (
	smartInt8 smartKind = iota
	smartUint8
	smartByte
	smartInt16Both
	smartUint16Both
	smartInt32Both
	smartUint32Both
	smartRecordingDateTime
	smartVolumeDescriptorDateTime
)

var smartPlanCache sync.Map // format string -> []smartKind

// compileSmartPlan parses a format string into an ordered plan of field
// kinds, caching the result by format string so repeated decodes of the
// same layout (every PX entry, for instance) pay the parse cost once.
//
// Format codes: b/B int8/uint8, c raw byte, h/H both-endian int16/uint16,
// i/I both-endian int32/uint32, t a 7-byte directory-record datetime, T a
// 17-byte volume-descriptor datetime.
func compileSmartPlan(format string) ([]smartKind, error) {
	if cached, ok := smartPlanCache.Load(format); ok {
		return cached.([]smartKind), nil
	}
	plan := make([]smartKind, 0, len(format))
	for _, code := range format {
		switch code {
		case 'b':
			plan = append(plan, smartInt8)
		case 'B':
			plan = append(plan, smartUint8)
		case 'c':
			plan = append(plan, smartByte)
		case 'h':
			plan = append(plan, smartInt16Both)
		case 'H':
			plan = append(plan, smartUint16Both)
		case 'i':
			plan = append(plan, smartInt32Both)
		case 'I':
			plan = append(plan, smartUint32Both)
		case 't':
			plan = append(plan, smartRecordingDateTime)
		case 'T':
			plan = append(plan, smartVolumeDescriptorDateTime)
		default:
			return nil, fmt.Errorf("unpack_smart: unknown format code %q", code)
		}
	}
	smartPlanCache.Store(format, plan)
	return plan, nil
}

// UnpackSmart decodes a sequence of fields described by format, returning
// one value per format code in order. See compileSmartPlan for the
// supported codes.
func (s *Source) UnpackSmart(format string) ([]any, error) {
	plan, err := compileSmartPlan(format)
	if err != nil {
		return nil, err
	}
	values := make([]any, 0, len(plan))
	for _, kind := range plan {
		switch kind {
		case smartInt8:
			v, err := s.UnpackInt8()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		case smartUint8:
			v, err := s.UnpackUint8()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		case smartByte:
			raw, err := s.UnpackRaw(1)
			if err != nil {
				return nil, err
			}
			values = append(values, raw[0])
		case smartInt16Both:
			v, err := s.UnpackInt16Both()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		case smartUint16Both:
			v, err := s.UnpackUint16Both()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		case smartInt32Both:
			v, err := s.UnpackInt32Both()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		case smartUint32Both:
			v, err := s.UnpackUint32Both()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		case smartRecordingDateTime:
			v, err := s.UnpackRecordingDateTime()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		case smartVolumeDescriptorDateTime:
			v, err := s.UnpackVolumeDescriptorDateTime()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		default:
			return nil, isoerr.Newf(isoerr.BadDescriptor, s.sectorStart, s.cursor, "unreachable smart kind %d", kind)
		}
	}
	return values, nil
}
