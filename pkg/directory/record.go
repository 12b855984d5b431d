// Package directory decodes ISO 9660 directory records and walks the
// directory tree they form, including the Rock Ridge/SUSP system-use area
// embedded in each record.
package directory

import (
	"io"
	"iter"
	"strings"
	"time"

	"github.com/rstms/iso9660rr/pkg/consts"
	"github.com/rstms/iso9660rr/pkg/isoerr"
	"github.com/rstms/iso9660rr/pkg/rockridge"
	"github.com/rstms/iso9660rr/pkg/source"
	"github.com/rstms/iso9660rr/pkg/susp"
	"github.com/rstms/iso9660rr/pkg/validation"
)

type childScanState int

const (
	childScanNotStarted childScanState = iota
	childScanResume
	childScanExhausted
)

// Record is one ISO 9660 directory record: a file or a directory entry,
// together with whatever SUSP/Rock Ridge entries its system-use area
// carries.
type Record struct {
	src *source.Source

	// Location is the logical block number of the extent's first sector.
	Location uint32
	// DataLength is the extent's length in bytes.
	DataLength uint32
	// DateTime is the recording date and time of the extent's contents.
	DateTime time.Time
	// Flags is the file-flags byte.
	Flags Flags
	// RawName is the ISO 9660 identifier with any ";version" suffix
	// stripped. Empty for the "current directory" entry; "\x01" for the
	// "parent directory" entry.
	RawName string

	embeddedSuspEntries []susp.Entry

	content []byte

	childCache     map[string]*Record
	childScanState childScanState
	childScanAt    int
}

// IsDirectory reports whether this record identifies a directory.
func (r *Record) IsDirectory() bool { return r.Flags.Directory() }

// IsSpecial reports whether this is the "current directory" or "parent
// directory" entry every directory extent starts with.
func (r *Record) IsSpecial() bool { return r.RawName == "" || r.RawName == "\x01" }

// HasValidISO9660Identifier reports whether RawName conforms to ECMA-119's
// restricted identifier character set. Rock Ridge names carried in NM
// entries are unconstrained and never checked by this method; it inspects
// only the plain ISO 9660 identifier every record carries regardless of
// Rock Ridge.
func (r *Record) HasValidISO9660Identifier() bool {
	if r.IsSpecial() {
		return validation.ValidDirectoryIdentifier(r.RawName)
	}
	if r.IsDirectory() {
		return validation.ValidDirectoryIdentifier(r.RawName)
	}
	return validation.ValidFileIdentifier(r.RawName)
}

// DecodeRecord decodes one directory record from src, where length is the
// entry's declared length minus the length byte the caller has already
// consumed. The cursor is advanced to exactly length bytes past its
// starting position regardless of how much of the system-use area was
// understood.
func DecodeRecord(src *source.Source, length int) (*Record, error) {
	target := src.Cursor() + length

	if _, err := src.UnpackUint8(); err != nil { // extended attribute record length, ignored
		return nil, err
	}
	location, err := src.UnpackUint32Both()
	if err != nil {
		return nil, err
	}
	dataLength, err := src.UnpackUint32Both()
	if err != nil {
		return nil, err
	}
	dt, err := src.UnpackRecordingDateTime()
	if err != nil {
		return nil, err
	}
	flagByte, err := src.UnpackUint8()
	if err != nil {
		return nil, err
	}
	if _, err := src.UnpackUint8(); err != nil { // file unit size, ignored (interleave)
		return nil, err
	}
	if _, err := src.UnpackUint8(); err != nil { // interleave gap size, ignored
		return nil, err
	}
	if _, err := src.UnpackInt16Both(); err != nil { // volume sequence number, ignored
		return nil, err
	}
	nameLength, err := src.UnpackUint8()
	if err != nil {
		return nil, err
	}
	nameRaw, err := src.UnpackRaw(int(nameLength))
	if err != nil {
		return nil, err
	}
	rawName := string(nameRaw)
	if idx := strings.IndexByte(rawName, ';'); idx >= 0 {
		rawName = rawName[:idx]
	}
	if rawName == "\x00" {
		rawName = ""
	}
	if nameLength%2 == 0 {
		if _, err := src.UnpackRaw(1); err != nil { // parity pad
			return nil, err
		}
	}

	embedded, err := decodeSystemUseArea(src, target)
	if err != nil {
		return nil, err
	}

	if remaining := target - src.Cursor(); remaining > 0 {
		if _, err := src.UnpackRaw(remaining); err != nil {
			return nil, err
		}
	} else if remaining < 0 {
		return nil, isoerr.Newf(isoerr.BadDescriptor, 0, src.Cursor(), "directory record overran its declared length")
	}

	return &Record{
		src:                 src,
		Location:            location,
		DataLength:          dataLength,
		DateTime:            dt,
		Flags:               Flags(flagByte),
		RawName:             rawName,
		embeddedSuspEntries: embedded,
	}, nil
}

// decodeSystemUseArea implements the three SuspStart regimes: speculative
// SP probe when unknown (root bootstrap), fixed-offset skip then decode
// loop when known, or no decoding at all when SUSP is disabled.
func decodeSystemUseArea(src *source.Source, target int) ([]susp.Entry, error) {
	var entries []susp.Entry
	skip := 0
	decode := true

	switch {
	case src.SuspStart.IsUnknown():
		entry, err := susp.DecodeNext(src, target-src.Cursor(), src.SuspExtensions, 0)
		if err != nil {
			return nil, err
		}
		if sp, ok := entry.(*susp.SP); ok {
			entries = append(entries, sp)
			if sp.LenSkp > 7 {
				skip = int(sp.LenSkp) - 7
			}
		}
	case src.SuspStart.IsDisabled():
		decode = false
	default:
		n, _ := src.SuspStart.Skip()
		skip = n
	}

	if !decode {
		return entries, nil
	}

	if skip > 0 {
		if _, err := src.UnpackRaw(skip); err != nil {
			return nil, err
		}
	}
	for {
		entry, err := susp.DecodeNext(src, target-src.Cursor(), src.SuspExtensions, 0)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			break
		}
		entries = append(entries, entry)
		if _, ok := entry.(*susp.ST); ok {
			break
		}
	}
	return entries, nil
}

// decodeDirectoryEntry reads one directory record's length byte and, if
// non-zero, decodes the record that follows. A zero length byte means the
// remainder of the current sector is padding; the cursor is rewound one
// byte and (nil, nil) is returned so the caller can skip to the next
// sector boundary.
func decodeDirectoryEntry(src *source.Source) (*Record, error) {
	start := src.Cursor()
	length, err := src.UnpackUint8()
	if err != nil {
		return nil, err
	}
	if length == 0 {
		if err := src.RewindRaw(1); err != nil {
			return nil, err
		}
		return nil, nil
	}
	rec, err := DecodeRecord(src, int(length)-1)
	if err != nil {
		return nil, err
	}
	if src.Cursor() != start+int(length) {
		return nil, isoerr.Newf(isoerr.BadDescriptor, 0, src.Cursor(), "directory record decode did not consume its declared length")
	}
	return rec, nil
}

// SuspEntriesUnsafe yields this record's SUSP entries in on-disc order,
// embedded entries first, chasing any CE continuation chain across
// sectors. The source cursor moves on every iteration step; a consumer
// that needs to touch the cursor between yields must save and restore it
// first. Use SuspEntries for a safe, eagerly-materialized alternative.
func (r *Record) SuspEntriesUnsafe() iter.Seq2[susp.Entry, error] {
	return func(yield func(susp.Entry, error) bool) {
		embedded := r.embeddedSuspEntries
		embeddedIdx := 0
		embeddedActive := true
		target := 0
		targetSet := false
		var pendingCE *susp.CE

		for embeddedActive || targetSet || pendingCE != nil {
			var entry susp.Entry

			switch {
			case embeddedActive:
				if embeddedIdx >= len(embedded) {
					embeddedActive = false
					continue
				}
				entry = embedded[embeddedIdx]
				embeddedIdx++
			case targetSet:
				e, err := susp.DecodeNext(r.src, target-r.src.Cursor(), r.src.SuspExtensions, 0)
				if err != nil {
					yield(nil, err)
					return
				}
				if e == nil {
					targetSet = false
					continue
				}
				entry = e
			case pendingCE != nil:
				ce := pendingCE
				pendingCE = nil
				if err := r.src.Seek(ce.Location, int(ce.Offset+ce.Length), false); err != nil {
					yield(nil, err)
					return
				}
				if _, err := r.src.UnpackRaw(int(ce.Offset)); err != nil {
					yield(nil, err)
					return
				}
				target = r.src.Cursor() + int(ce.Length)
				targetSet = true
				continue
			}

			if !yield(entry, nil) {
				return
			}

			switch e := entry.(type) {
			case *susp.ST:
				embeddedActive = false
				targetSet = false
				pendingCE = nil
			case *susp.CE:
				pendingCE = e
			}
		}
	}
}

// SuspEntries eagerly materializes SuspEntriesUnsafe.
func (r *Record) SuspEntries() ([]susp.Entry, error) {
	var out []susp.Entry
	for entry, err := range r.SuspEntriesUnsafe() {
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// FindSuspEntry returns the first SUSP entry for which pred returns true,
// or nil if none matches.
func (r *Record) FindSuspEntry(pred func(susp.Entry) bool) (susp.Entry, error) {
	for entry, err := range r.SuspEntriesUnsafe() {
		if err != nil {
			return nil, err
		}
		if pred(entry) {
			return entry, nil
		}
	}
	return nil, nil
}

// Name returns the record's Rock Ridge-aware name: the concatenation of a
// chained NM fragment run if one is present, otherwise RawName.
func (r *Record) Name() (string, error) {
	var name string
	for entry, err := range r.SuspEntriesUnsafe() {
		if err != nil {
			return "", err
		}
		nm, ok := entry.(*rockridge.NM)
		if !ok {
			continue
		}
		name += nm.Name
		if !nm.Continues() {
			break
		}
	}
	if name == "" {
		return r.RawName, nil
	}
	return name, nil
}

// SymlinkTarget returns the concatenation of a chained SL fragment run, or
// a NotFound error if the record carries no SL entry.
func (r *Record) SymlinkTarget() (string, error) {
	var path string
	found := false
	for entry, err := range r.SuspEntriesUnsafe() {
		if err != nil {
			return "", err
		}
		sl, ok := entry.(*rockridge.SL)
		if !ok {
			continue
		}
		found = true
		path += sl.Path
		if !sl.Continues() {
			break
		}
	}
	if !found {
		return "", isoerr.New(isoerr.NotFound, r.Location, 0, "record carries no SL entry")
	}
	return path, nil
}

// ChildrenUnsafe yields this directory's child records in on-disc order.
// When skipCurrentParent is true the leading "." and ".." entries are
// consumed and not yielded. startOffset positions the scan within the
// extent before any skipping, letting a caller resume a previous scan.
// The cursor moves between yields; see SuspEntriesUnsafe for the
// reentrancy obligation this places on the caller. Use Children for a
// safe, eagerly-materialized alternative.
func (r *Record) ChildrenUnsafe(skipCurrentParent bool, startOffset int) iter.Seq2[*Record, error] {
	return func(yield func(*Record, error) bool) {
		if err := r.src.Seek(r.Location, int(r.DataLength), false); err != nil {
			yield(nil, err)
			return
		}
		if err := r.src.SetCursor(startOffset); err != nil {
			yield(nil, err)
			return
		}
		if skipCurrentParent {
			if _, err := decodeDirectoryEntry(r.src); err != nil { // current directory
				yield(nil, err)
				return
			}
			if _, err := decodeDirectoryEntry(r.src); err != nil { // parent directory
				yield(nil, err)
				return
			}
		}
		for r.src.Len() > 0 {
			rec, err := decodeDirectoryEntry(r.src)
			if err != nil {
				yield(nil, err)
				return
			}
			if rec == nil {
				if _, err := r.src.UnpackBoundary(); err != nil {
					yield(nil, err)
					return
				}
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// Children eagerly materializes ChildrenUnsafe, skipping the leading "."
// and ".." entries.
func (r *Record) Children() ([]*Record, error) {
	var out []*Record
	for rec, err := range r.ChildrenUnsafe(true, 0) {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// FindChild resolves a child by name, maintaining a name-to-record cache
// and resuming a scan already in progress rather than restarting from the
// top of the extent on every call.
func (r *Record) FindChild(name string) (*Record, error) {
	if r.childCache == nil {
		r.childCache = make(map[string]*Record)
	}
	if rec, ok := r.childCache[name]; ok {
		return rec, nil
	}
	if r.childScanState == childScanExhausted {
		return nil, isoerr.Newf(isoerr.NotFound, r.Location, 0, "child %q not found", name)
	}

	var it iter.Seq2[*Record, error]
	if r.childScanState == childScanResume {
		it = r.ChildrenUnsafe(false, r.childScanAt)
	} else {
		it = r.ChildrenUnsafe(true, 0)
	}

	for child, err := range it {
		if err != nil {
			return nil, err
		}
		saved := r.src.SaveCursor()
		childName, err := child.Name()
		r.src.RestoreCursor(saved)
		if err != nil {
			return nil, err
		}
		r.childCache[childName] = child
		r.childScanState = childScanResume
		r.childScanAt = r.src.Cursor()
		if childName == name {
			if !child.IsDirectory() {
				clone := *child
				return &clone, nil
			}
			return child, nil
		}
	}
	r.childScanState = childScanExhausted
	return nil, isoerr.Newf(isoerr.NotFound, r.Location, 0, "child %q not found", name)
}

// RecordAtLocation decodes the "." entry of the directory extent starting
// at location, recovering a directory record (including its correct
// DataLength) from its location alone. Used by path-table resolution,
// which tracks a directory's location but not its length.
func RecordAtLocation(src *source.Source, location uint32) (*Record, error) {
	if err := src.Seek(location, consts.SectorLength, false); err != nil {
		return nil, err
	}
	return decodeDirectoryEntry(src)
}

// CurrentDirectory returns this directory's "." entry.
func (r *Record) CurrentDirectory() (*Record, error) {
	if err := r.src.Seek(r.Location, int(r.DataLength), false); err != nil {
		return nil, err
	}
	return decodeDirectoryEntry(r.src)
}

// ParentDirectory returns this directory's ".." entry.
func (r *Record) ParentDirectory() (*Record, error) {
	if err := r.src.Seek(r.Location, int(r.DataLength), false); err != nil {
		return nil, err
	}
	if _, err := decodeDirectoryEntry(r.src); err != nil {
		return nil, err
	}
	return decodeDirectoryEntry(r.src)
}

// Content reads and caches a file record's complete contents.
func (r *Record) Content() ([]byte, error) {
	if r.content != nil {
		return r.content, nil
	}
	if err := r.src.Seek(r.Location, int(r.DataLength), true); err != nil {
		return nil, err
	}
	data, err := r.src.UnpackAll()
	if err != nil {
		return nil, err
	}
	r.content = data
	return r.content, nil
}

// Stream returns a sequential reader over a file record's extent without
// buffering its contents.
func (r *Record) Stream() (io.ReadCloser, error) {
	return r.src.OpenStream(r.Location, r.DataLength)
}
