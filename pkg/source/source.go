// Package source provides the cursor-and-sector-cache abstraction every
// decoding layer in this module reads through: a bounded in-memory working
// window backed by a pluggable Fetcher, both-endian and ECMA-119 datetime
// primitives, and the save/restore cursor discipline SUSP continuation-area
// traversal depends on.
package source

import (
	"encoding/binary"
	"io"
	"time"

	"github.com/rstms/iso9660rr/pkg/consts"
	"github.com/rstms/iso9660rr/pkg/encoding"
	"github.com/rstms/iso9660rr/pkg/isoerr"
	"github.com/rstms/iso9660rr/pkg/logging"
)

// Source is a cursor over a working window of sectors fetched on demand
// from a Fetcher, with a sector cache that keeps every cached sector for the
// Source's lifetime (it has no size limit). Decoders read through a
// Source sequentially via the Unpack* methods; SaveCursor/RestoreCursor let
// a decoder detour into a continuation area (an SUSP CE entry, a symlink
// target) and return to exactly where it left off.
type Source struct {
	fetcher Fetcher
	opts    Options

	buf         []byte
	length      int
	cursor      int
	sectorStart uint32 // logical sector the current window begins at
	sectors     map[uint32][]byte

	// SuspStart tracks whether this source's directory records carry an
	// SUSP SP marker, and if so at what fixed byte offset their system-use
	// area begins. See SuspStart.
	SuspStart SuspStart
	// SuspExtensions lists the SUSP extensions this source's ER entries
	// have advertised, in the order they were declared.
	SuspExtensions []ExtensionID
	// RockRidge reports whether a Rock Ridge extension has been detected
	// among SuspExtensions.
	RockRidge bool
}

// New constructs a Source reading through fetcher.
func New(fetcher Fetcher, opts ...Option) *Source {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Source{
		fetcher:   fetcher,
		opts:      o,
		sectors:   make(map[uint32][]byte),
		SuspStart: UnknownSuspStart(),
	}
}

// Len reports the number of unread bytes remaining in the current window.
func (s *Source) Len() int {
	return s.length - s.cursor
}

// Cursor reports the current byte offset into the window.
func (s *Source) Cursor() int {
	return s.cursor
}

// SetCursor moves the cursor to an arbitrary byte offset within the
// current window, used to resume a directory child scan at a previously
// recorded offset without re-fetching the window.
func (s *Source) SetCursor(n int) error {
	if n < 0 || n > s.length {
		return isoerr.Newf(isoerr.RewindUnderrun, s.sectorStart, s.cursor,
			"set cursor %d out of window [0,%d]", n, s.length)
	}
	s.cursor = n
	return nil
}

// cursorState is the opaque snapshot SaveCursor/RestoreCursor exchange.
type cursorState struct {
	buf         []byte
	length      int
	cursor      int
	sectorStart uint32
}

// SaveCursor snapshots the current window and cursor position so a decoder
// can seek elsewhere (e.g. to follow an SUSP continuation pointer) and
// later return to precisely this position via RestoreCursor.
func (s *Source) SaveCursor() any {
	return cursorState{buf: s.buf, length: s.length, cursor: s.cursor, sectorStart: s.sectorStart}
}

// RestoreCursor restores a window and cursor position previously captured
// by SaveCursor.
func (s *Source) RestoreCursor(saved any) {
	cs := saved.(cursorState)
	s.buf = cs.buf
	s.length = cs.length
	s.cursor = cs.cursor
	s.sectorStart = cs.sectorStart
}

// Seek loads a working window of length bytes starting at startSector. If
// isContent is true and CacheContent is false, the fetched sectors are not
// retained in the sector cache (file content is usually read once and can
// be large; metadata sectors are revisited constantly during traversal).
func (s *Source) Seek(startSector uint32, length int, isContent bool) error {
	doCaching := !isContent || s.opts.CacheContent
	nSectors := 1 + (length-1)/consts.SectorLength
	fetchSectors := nSectors
	if doCaching && s.opts.MinFetch > fetchSectors {
		fetchSectors = s.opts.MinFetch
	}

	buf := make([]byte, 0, fetchSectors*consts.SectorLength)

	var needStart uint32
	haveNeed := false

	fetchNeeded := func(needCount uint32) error {
		data, err := s.fetcher.Fetch(needStart, needCount)
		if err != nil {
			return err
		}
		buf = append(buf, data...)
		if doCaching {
			for i := uint32(0); i < needCount; i++ {
				lo := i * consts.SectorLength
				hi := lo + consts.SectorLength
				if int(hi) <= len(data) {
					s.sectors[needStart+i] = data[lo:hi]
				}
			}
		}
		return nil
	}

	for sector := startSector; sector < startSector+uint32(fetchSectors); sector++ {
		if cached, ok := s.sectors[sector]; ok {
			if haveNeed {
				if err := fetchNeeded(sector - needStart); err != nil {
					return err
				}
				haveNeed = false
			}
			if sector >= startSector+uint32(nSectors) {
				break
			}
			buf = append(buf, cached...)
		} else if !haveNeed {
			needStart = sector
			haveNeed = true
		}
	}
	if haveNeed {
		if err := fetchNeeded(startSector + uint32(fetchSectors) - needStart); err != nil {
			return err
		}
	}

	if len(buf) > length {
		buf = buf[:length]
	}
	s.buf = buf
	s.length = length
	s.sectorStart = startSector
	s.cursor = 0
	if s.opts.Logger != nil {
		s.opts.Logger.Trace("seek", "sector", startSector, "length", length, "content", isContent)
	}
	return nil
}

// OpenStream returns a streaming reader over length bytes starting at
// startSector, bypassing the sector cache entirely. Used for file content
// extraction where buffering the whole extent would be wasteful.
func (s *Source) OpenStream(startSector uint32, length uint32) (io.ReadCloser, error) {
	return s.fetcher.OpenStream(startSector, length)
}

// UnpackRaw reads n bytes and advances the cursor, failing if fewer than n
// bytes remain in the current window.
func (s *Source) UnpackRaw(n int) ([]byte, error) {
	if s.cursor+n > s.length {
		return nil, isoerr.Newf(isoerr.BufferUnderrun, s.sectorStart, s.cursor,
			"need %d bytes, %d remain", n, s.length-s.cursor)
	}
	data := s.buf[s.cursor : s.cursor+n]
	s.cursor += n
	return data, nil
}

// RewindRaw moves the cursor back n bytes.
func (s *Source) RewindRaw(n int) error {
	if s.cursor < n {
		return isoerr.Newf(isoerr.RewindUnderrun, s.sectorStart, s.cursor,
			"rewind %d past start of window", n)
	}
	s.cursor -= n
	return nil
}

// UnpackAll reads every remaining byte in the window.
func (s *Source) UnpackAll() ([]byte, error) {
	return s.UnpackRaw(s.Len())
}

// UnpackBoundary reads up to the next sector boundary, used to skip the
// padding bytes after a directory record's system-use area.
func (s *Source) UnpackBoundary() ([]byte, error) {
	remainder := consts.SectorLength - (s.cursor % consts.SectorLength)
	return s.UnpackRaw(remainder)
}

// UnpackString reads n bytes and trims trailing spaces, the padding ECMA-119
// uses for fixed-width d-character and a-character fields.
func (s *Source) UnpackString(n int) (string, error) {
	raw, err := s.UnpackRaw(n)
	if err != nil {
		return "", err
	}
	return trimTrailingSpaces(string(raw)), nil
}

func trimTrailingSpaces(s string) string {
	i := len(s)
	for i > 0 && s[i-1] == ' ' {
		i--
	}
	return s[:i]
}

// UnpackUint8 reads a single unsigned byte.
func (s *Source) UnpackUint8() (uint8, error) {
	raw, err := s.UnpackRaw(1)
	if err != nil {
		return 0, err
	}
	return raw[0], nil
}

// UnpackInt8 reads a single signed byte.
func (s *Source) UnpackInt8() (int8, error) {
	raw, err := s.UnpackRaw(1)
	if err != nil {
		return 0, err
	}
	return int8(raw[0]), nil
}

// unpackBothWidth reads 2*width bytes, decodes the first width as
// little-endian and the second width as big-endian, and requires they
// agree: the redundant both-byte-order encoding ECMA-119 uses for 16- and
// 32-bit fields.
func (s *Source) unpackBothWidth(width int) (uint64, error) {
	start := s.cursor
	raw, err := s.UnpackRaw(width * 2)
	if err != nil {
		return 0, err
	}
	var le, be uint64
	switch width {
	case 2:
		le = uint64(binary.LittleEndian.Uint16(raw[:2]))
		be = uint64(binary.BigEndian.Uint16(raw[2:4]))
	case 4:
		le = uint64(binary.LittleEndian.Uint32(raw[:4]))
		be = uint64(binary.BigEndian.Uint32(raw[4:8]))
	default:
		return 0, isoerr.Newf(isoerr.EndianMismatch, s.sectorStart, start, "unsupported both-endian width %d", width)
	}
	if le != be {
		return 0, isoerr.Newf(isoerr.EndianMismatch, s.sectorStart, start, "le=%d be=%d", le, be)
	}
	return le, nil
}

// UnpackUint16Both reads a redundantly-encoded both-byte-order uint16.
func (s *Source) UnpackUint16Both() (uint16, error) {
	v, err := s.unpackBothWidth(2)
	return uint16(v), err
}

// UnpackInt16Both reads a redundantly-encoded both-byte-order int16.
func (s *Source) UnpackInt16Both() (int16, error) {
	v, err := s.unpackBothWidth(2)
	return int16(v), err
}

// UnpackUint32Both reads a redundantly-encoded both-byte-order uint32.
func (s *Source) UnpackUint32Both() (uint32, error) {
	v, err := s.unpackBothWidth(4)
	return uint32(v), err
}

// UnpackInt32Both reads a redundantly-encoded both-byte-order int32.
func (s *Source) UnpackInt32Both() (int32, error) {
	v, err := s.unpackBothWidth(4)
	return int32(v), err
}

// UnpackRecordingDateTime reads a 7-byte directory-record datetime field.
func (s *Source) UnpackRecordingDateTime() (time.Time, error) {
	raw, err := s.UnpackRaw(7)
	if err != nil {
		return time.Time{}, err
	}
	return encoding.UnmarshalRecordingDateTime([7]byte(raw))
}

// UnpackLazyRecordingDateTime reads the raw 7 bytes of a directory-record
// datetime field but defers decoding until the returned function is called,
// so a caller that never inspects a timestamp (the common case when walking
// a directory for names only) never pays the decode cost.
func (s *Source) UnpackLazyRecordingDateTime() (func() (time.Time, error), error) {
	raw, err := s.UnpackRaw(7)
	if err != nil {
		return nil, err
	}
	var b [7]byte
	copy(b[:], raw)
	return func() (time.Time, error) {
		return encoding.UnmarshalRecordingDateTime(b)
	}, nil
}

// UnpackVolumeDescriptorDateTime reads a 17-byte volume-descriptor datetime
// field.
func (s *Source) UnpackVolumeDescriptorDateTime() (time.Time, error) {
	raw, err := s.UnpackRaw(17)
	if err != nil {
		return time.Time{}, err
	}
	return encoding.UnmarshalDateTime([17]byte(raw))
}

// Logger returns the Logger this Source was configured with.
func (s *Source) Logger() *logging.Logger {
	return s.opts.Logger
}
