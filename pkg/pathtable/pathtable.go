// Package pathtable decodes the little-endian path table image a Primary
// Volume Descriptor points at, and resolves path components against it.
package pathtable

import (
	"encoding/binary"
	"strings"

	"github.com/rstms/iso9660rr/pkg/isoerr"
	"github.com/rstms/iso9660rr/pkg/source"
)

// Entry is one path table record: a directory's extent location, its
// parent's 1-based index into the table, and its name relative to that
// parent.
type Entry struct {
	Location              uint32
	ExtendedAttributeLength uint8
	ParentDirectoryNumber uint16
	Name                  string
}

// PathTable is a mapping from path components, taken from the root, to the
// directory they name. Only directories are covered; file lookups fall
// through to a directory's own child walk.
type PathTable struct {
	entries []Entry // 1-indexed; entries[0] is the root at index 1
}

// Decode reads a path table image of the given byte size from the source's
// current window, which must already be positioned at the table's start
// sector via Seek.
func Decode(src *source.Source, size int) (*PathTable, error) {
	pt := &PathTable{}
	consumed := 0
	for consumed < size {
		nameLen, err := src.UnpackUint8()
		if err != nil {
			return nil, err
		}
		if nameLen == 0 {
			break
		}
		eaLen, err := src.UnpackUint8()
		if err != nil {
			return nil, err
		}
		locRaw, err := src.UnpackRaw(4)
		if err != nil {
			return nil, err
		}
		location := binary.LittleEndian.Uint32(locRaw)
		parentRaw, err := src.UnpackRaw(2)
		if err != nil {
			return nil, err
		}
		parent := binary.LittleEndian.Uint16(parentRaw)
		nameBytes, err := src.UnpackRaw(int(nameLen))
		if err != nil {
			return nil, err
		}
		recLen := 8 + int(nameLen)
		if nameLen%2 != 0 {
			if _, err := src.UnpackRaw(1); err != nil {
				return nil, err
			}
			recLen++
		}
		consumed += recLen
		pt.entries = append(pt.entries, Entry{
			Location:                location,
			ExtendedAttributeLength: eaLen,
			ParentDirectoryNumber:   parent,
			Name:                    string(nameBytes),
		})
	}
	return pt, nil
}

// children returns the indices (1-based table position) of entries whose
// parent is parentIndex.
func (pt *PathTable) children(parentIndex uint16) []int {
	var out []int
	for i, e := range pt.entries {
		if e.ParentDirectoryNumber == parentIndex {
			out = append(out, i+1)
		}
	}
	return out
}

// Record resolves every component of path against the table, returning the
// directory entry for the final component. The table only tracks
// directories, so a path naming a file (or any other component the table
// doesn't carry) is expected to fail here; the caller falls back to a
// directory child walk for that trailing component. Record never returns a
// partial match: any unmatched component, first or not, is a NotFound error,
// so a non-error return always means every requested component matched.
func (pt *PathTable) Record(path ...string) (*Entry, error) {
	if len(pt.entries) == 0 {
		return nil, isoerr.New(isoerr.NotFound, 0, 0, "empty path table")
	}
	if len(path) == 0 {
		root := pt.entries[0]
		return &root, nil
	}

	current := uint16(1)
	var matched *Entry
	for _, component := range path {
		found := false
		for _, idx := range pt.children(current) {
			e := pt.entries[idx-1]
			if strings.EqualFold(e.Name, component) {
				matched = &e
				current = uint16(idx)
				found = true
				break
			}
		}
		if !found {
			return nil, isoerr.Newf(isoerr.NotFound, 0, 0, "path component %q not found", component)
		}
	}
	return matched, nil
}
