// Package imagefixture builds small synthetic ISO 9660 images in memory,
// for tests that exercise the facade end-to-end without needing a real
// disc image on disk.
package imagefixture

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/rstms/iso9660rr/pkg/consts"
)

// MemFetcher is a source.Fetcher backed by an in-memory sector map.
type MemFetcher struct {
	Sectors map[uint32][]byte
}

func (f *MemFetcher) Fetch(sector uint32, count uint32) ([]byte, error) {
	out := make([]byte, 0, count*consts.SectorLength)
	for i := uint32(0); i < count; i++ {
		s, ok := f.Sectors[sector+i]
		if !ok {
			s = make([]byte, consts.SectorLength)
		}
		out = append(out, s...)
	}
	return out, nil
}

func (f *MemFetcher) OpenStream(sector uint32, length uint32) (io.ReadCloser, error) {
	count := uint32(1)
	if length > 0 {
		count = 1 + (length-1)/consts.SectorLength
	}
	data, err := f.Fetch(sector, count)
	if err != nil {
		return nil, err
	}
	if uint32(len(data)) > length {
		data = data[:length]
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *MemFetcher) put(sector uint32, data []byte) {
	buf := make([]byte, consts.SectorLength)
	copy(buf, data)
	f.Sectors[sector] = buf
}

func putBoth32(dst []byte, v uint32) {
	binary.LittleEndian.PutUint32(dst[0:4], v)
	binary.BigEndian.PutUint32(dst[4:8], v)
}

func putBoth16(dst []byte, v uint16) {
	binary.LittleEndian.PutUint16(dst[0:2], v)
	binary.BigEndian.PutUint16(dst[2:4], v)
}

func padString(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	for i := len(s); i < n; i++ {
		b[i] = ' '
	}
	return b
}

// unsetVolumeDateTime is the 17-byte "not specified" encoding ECMA-119
// 8.4.26.1 defines: sixteen ASCII '0' digits followed by a zero GMT offset.
func unsetVolumeDateTime() []byte {
	b := make([]byte, 17)
	for i := 0; i < 16; i++ {
		b[i] = '0'
	}
	return b
}

// record assembles one raw directory record, including its length byte.
func record(location, length uint32, flags byte, name string, systemUse []byte) []byte {
	nameBytes := []byte(name)
	pad := 0
	if len(nameBytes)%2 == 0 {
		pad = 1
	}
	total := 1 + 1 + 8 + 8 + 7 + 1 + 1 + 1 + 4 + 1 + len(nameBytes) + pad + len(systemUse)
	buf := make([]byte, total)
	i := 0
	buf[i] = byte(total)
	i++
	buf[i] = 0
	i++
	putBoth32(buf[i:i+8], location)
	i += 8
	putBoth32(buf[i:i+8], length)
	i += 8
	copy(buf[i:i+7], []byte{124, 1, 1, 0, 0, 0, 0}) // 2024-01-01 00:00:00 GMT
	i += 7
	buf[i] = flags
	i++
	buf[i] = 0
	i++
	buf[i] = 0
	i++
	putBoth16(buf[i:i+4], 1)
	i += 4
	buf[i] = byte(len(nameBytes))
	i++
	copy(buf[i:i+len(nameBytes)], nameBytes)
	i += len(nameBytes)
	if pad == 1 {
		buf[i] = 0
		i++
	}
	copy(buf[i:i+len(systemUse)], systemUse)
	return buf
}

const (
	flagDirectory = 1 << 1

	rootSector      = 20
	docsSector      = 21
	fileSector      = 22
	introSector     = 23
	pathTableSector = 18
	fileContentText  = "Hello, world!\n"
	introContentText = "Introductory text.\n"
)

// Build assembles a minimal, valid, Rock-Ridge-free ISO 9660 image: a root
// directory containing a "DOCS" subdirectory (itself containing an
// "INTRO.TXT" file, so resolving a file nested one level below a path-table
// directory is exercised) and a "HELLO.TXT" file directly under root.
func Build() *MemFetcher {
	f := &MemFetcher{Sectors: map[uint32][]byte{}}

	fileContent := []byte(fileContentText)
	f.put(fileSector, fileContent)

	introContent := []byte(introContentText)
	f.put(introSector, introContent)

	var docsExtent []byte
	docsExtent = append(docsExtent, record(docsSector, consts.SectorLength, flagDirectory, "\x00", nil)...)
	docsExtent = append(docsExtent, record(rootSector, consts.SectorLength, flagDirectory, "\x01", nil)...)
	docsExtent = append(docsExtent, record(introSector, uint32(len(introContent)), 0, "INTRO.TXT;1", nil)...)
	f.put(docsSector, docsExtent)

	var rootExtent []byte
	rootExtent = append(rootExtent, record(rootSector, consts.SectorLength, flagDirectory, "\x00", nil)...)
	rootExtent = append(rootExtent, record(rootSector, consts.SectorLength, flagDirectory, "\x01", nil)...)
	rootExtent = append(rootExtent, record(docsSector, consts.SectorLength, flagDirectory, "DOCS", nil)...)
	rootExtent = append(rootExtent, record(fileSector, uint32(len(fileContent)), 0, "HELLO.TXT;1", nil)...)
	f.put(rootSector, rootExtent)

	var pathTable []byte
	pathTable = append(pathTable, pathTableEntry("\x00", rootSector, 1)...)
	pathTable = append(pathTable, pathTableEntry("DOCS", docsSector, 1)...)
	f.put(pathTableSector, pathTable)

	primary := buildPrimarySector(uint32(len(pathTable)))
	f.put(16, primary)

	terminator := make([]byte, consts.SectorLength)
	terminator[0] = byte(consts.DescriptorTypeTerminator)
	copy(terminator[1:6], []byte(consts.StandardIdentifier))
	terminator[6] = byte(consts.VolumeDescriptorVersion)
	f.put(17, terminator)

	return f
}

func pathTableEntry(name string, location uint32, parent uint16) []byte {
	nameBytes := []byte(name)
	b := []byte{byte(len(nameBytes)), 0}
	loc := make([]byte, 4)
	binary.LittleEndian.PutUint32(loc, location)
	b = append(b, loc...)
	par := make([]byte, 2)
	binary.LittleEndian.PutUint16(par, parent)
	b = append(b, par...)
	b = append(b, nameBytes...)
	if len(nameBytes)%2 != 0 {
		b = append(b, 0)
	}
	return b
}

func buildPrimarySector(pathTableSize uint32) []byte {
	var buf []byte
	buf = append(buf, byte(consts.DescriptorTypePrimary))
	buf = append(buf, []byte(consts.StandardIdentifier)...)
	buf = append(buf, byte(consts.VolumeDescriptorVersion))
	buf = append(buf, 0)
	buf = append(buf, padString("FIXTURE", 32)...)
	buf = append(buf, padString("FIXTUREVOL", 32)...)
	buf = append(buf, make([]byte, 8)...)
	buf = append(buf, both32(100)...)
	buf = append(buf, make([]byte, 32)...)
	buf = append(buf, both16(1)...)
	buf = append(buf, both16(1)...)
	buf = append(buf, both16(consts.SectorLength)...)
	buf = append(buf, both32(pathTableSize)...)

	le := make([]byte, 4)
	binary.LittleEndian.PutUint32(le, pathTableSector)
	buf = append(buf, le...)
	buf = append(buf, make([]byte, 4)...)
	be := make([]byte, 4)
	binary.BigEndian.PutUint32(be, pathTableSector)
	buf = append(buf, be...)
	buf = append(buf, make([]byte, 4)...)

	root := record(rootSector, consts.SectorLength, flagDirectory, "\x00", nil)
	buf = append(buf, root...)

	buf = append(buf, padString("VOLSET", 128)...)
	buf = append(buf, padString("PUB", 128)...)
	buf = append(buf, padString("PREP", 128)...)
	buf = append(buf, padString("APP", 128)...)
	buf = append(buf, padString("", 37)...)
	buf = append(buf, padString("", 37)...)
	buf = append(buf, padString("", 37)...)
	buf = append(buf, unsetVolumeDateTime()...)
	buf = append(buf, unsetVolumeDateTime()...)
	buf = append(buf, unsetVolumeDateTime()...)
	buf = append(buf, unsetVolumeDateTime()...)
	buf = append(buf, 1)
	buf = append(buf, 0)
	buf = append(buf, make([]byte, 512)...)
	buf = append(buf, make([]byte, 653)...)
	return buf
}

func both32(v uint32) []byte {
	b := make([]byte, 8)
	putBoth32(b, v)
	return b
}

func both16(v uint16) []byte {
	b := make([]byte, 4)
	putBoth16(b, v)
	return b
}
