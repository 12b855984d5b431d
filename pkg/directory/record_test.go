package directory

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/rstms/iso9660rr/pkg/consts"
	"github.com/rstms/iso9660rr/pkg/isoerr"
	"github.com/rstms/iso9660rr/pkg/rockridge"
	"github.com/rstms/iso9660rr/pkg/source"
	"github.com/rstms/iso9660rr/pkg/susp"
	"github.com/stretchr/testify/require"
)

type diskFetcher struct {
	sectors map[uint32][]byte
}

func (d *diskFetcher) Fetch(sector uint32, count uint32) ([]byte, error) {
	out := make([]byte, 0, count*consts.SectorLength)
	for i := uint32(0); i < count; i++ {
		if s, ok := d.sectors[sector+i]; ok {
			out = append(out, s...)
		} else {
			out = append(out, make([]byte, consts.SectorLength)...)
		}
	}
	return out, nil
}

func (d *diskFetcher) OpenStream(sector uint32, length uint32) (io.ReadCloser, error) {
	count := uint32(1)
	if length > 0 {
		count = 1 + (length-1)/consts.SectorLength
	}
	data, err := d.Fetch(sector, count)
	if err != nil {
		return nil, err
	}
	if uint32(len(data)) > length {
		data = data[:length]
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func putSector(d *diskFetcher, sector uint32, data []byte) {
	buf := make([]byte, consts.SectorLength)
	copy(buf, data)
	d.sectors[sector] = buf
}

func putBoth32(dst []byte, v uint32) {
	binary.LittleEndian.PutUint32(dst[0:4], v)
	binary.BigEndian.PutUint32(dst[4:8], v)
}

func putBoth16(dst []byte, v uint16) {
	binary.LittleEndian.PutUint16(dst[0:2], v)
	binary.BigEndian.PutUint16(dst[2:4], v)
}

// buildRecordBytes assembles one raw directory record, including its
// length byte, per ECMA-119 9.1.
func buildRecordBytes(location, length uint32, flags byte, name string, systemUse []byte) []byte {
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
	buf[i] = 0 // extended attribute record length
	i++
	putBoth32(buf[i:i+8], location)
	i += 8
	putBoth32(buf[i:i+8], length)
	i += 8
	copy(buf[i:i+7], []byte{120, 1, 1, 0, 0, 0, 0}) // 2020-01-01 00:00:00 GMT
	i += 7
	buf[i] = flags
	i++
	buf[i] = 0 // file unit size
	i++
	buf[i] = 0 // interleave gap size
	i++
	putBoth16(buf[i:i+4], 1) // volume sequence number
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

func newSourceWithFetcher(f *diskFetcher, ext []source.ExtensionID) *source.Source {
	src := source.New(f)
	src.SuspStart = source.DisabledSuspStart()
	src.SuspExtensions = ext
	return src
}

func TestDecodeRecordFields(t *testing.T) {
	rec := buildRecordBytes(100, 5000, 0, "FOO.TXT;1", nil)
	f := &diskFetcher{sectors: map[uint32][]byte{}}
	putSector(f, 0, rec)

	src := newSourceWithFetcher(f, nil)
	require.NoError(t, src.Seek(0, len(rec), false))
	r, err := decodeDirectoryEntry(src)
	require.NoError(t, err)
	require.Equal(t, uint32(100), r.Location)
	require.Equal(t, uint32(5000), r.DataLength)
	require.Equal(t, "FOO.TXT", r.RawName)
	require.False(t, r.IsDirectory())
	require.Equal(t, 2020, r.DateTime.Year())
}

func TestHasValidISO9660Identifier(t *testing.T) {
	rec := buildRecordBytes(100, 5000, 0, "FOO.TXT;1", nil)
	f := &diskFetcher{sectors: map[uint32][]byte{}}
	putSector(f, 0, rec)
	src := newSourceWithFetcher(f, nil)
	require.NoError(t, src.Seek(0, len(rec), false))
	r, err := decodeDirectoryEntry(src)
	require.NoError(t, err)
	require.True(t, r.HasValidISO9660Identifier())

	lower := buildRecordBytes(100, 5000, 0, "foo.txt;1", nil)
	f2 := &diskFetcher{sectors: map[uint32][]byte{}}
	putSector(f2, 0, lower)
	src2 := newSourceWithFetcher(f2, nil)
	require.NoError(t, src2.Seek(0, len(lower), false))
	r2, err := decodeDirectoryEntry(src2)
	require.NoError(t, err)
	require.False(t, r2.HasValidISO9660Identifier())
}

func TestDecodeRecordZeroLengthSentinel(t *testing.T) {
	f := &diskFetcher{sectors: map[uint32][]byte{}}
	putSector(f, 0, []byte{0, 0, 0})
	src := newSourceWithFetcher(f, nil)
	require.NoError(t, src.Seek(0, 3, false))
	r, err := decodeDirectoryEntry(src)
	require.NoError(t, err)
	require.Nil(t, r)
	require.Equal(t, 0, src.Cursor())
}

func buildDirectoryExtent(entries ...[]byte) []byte {
	var buf []byte
	for _, e := range entries {
		buf = append(buf, e...)
	}
	return buf
}

func TestChildrenUnsafeSkipsCurrentParentAndPadding(t *testing.T) {
	current := buildRecordBytes(20, consts.SectorLength, directoryFlagsByte(), "\x00", nil)
	parent := buildRecordBytes(1, consts.SectorLength, directoryFlagsByte(), "\x01", nil)
	childA := buildRecordBytes(30, 100, 0, "A.TXT", nil)
	childB := buildRecordBytes(31, 200, 0, "B.TXT", nil)
	extent := buildDirectoryExtent(current, parent, childA, childB)

	f := &diskFetcher{sectors: map[uint32][]byte{}}
	putSector(f, 20, extent)

	src := newSourceWithFetcher(f, nil)
	dir := &Record{src: src, Location: 20, DataLength: consts.SectorLength, Flags: Flags(directoryFlagsByte())}

	children, err := dir.Children()
	require.NoError(t, err)
	require.Len(t, children, 2)
	require.Equal(t, "A.TXT", children[0].RawName)
	require.Equal(t, "B.TXT", children[1].RawName)
}

func directoryFlagsByte() byte { return FlagDirectory }

func TestCurrentAndParentDirectory(t *testing.T) {
	current := buildRecordBytes(20, consts.SectorLength, directoryFlagsByte(), "\x00", nil)
	parent := buildRecordBytes(1, consts.SectorLength, directoryFlagsByte(), "\x01", nil)
	extent := buildDirectoryExtent(current, parent)

	f := &diskFetcher{sectors: map[uint32][]byte{}}
	putSector(f, 20, extent)
	src := newSourceWithFetcher(f, nil)
	dir := &Record{src: src, Location: 20, DataLength: consts.SectorLength, Flags: Flags(directoryFlagsByte())}

	cur, err := dir.CurrentDirectory()
	require.NoError(t, err)
	require.True(t, cur.IsSpecial())
	require.Equal(t, "", cur.RawName)

	par, err := dir.ParentDirectory()
	require.NoError(t, err)
	require.True(t, par.IsSpecial())
	require.Equal(t, "\x01", par.RawName)
}

func TestFindChildCachesAndExhausts(t *testing.T) {
	current := buildRecordBytes(20, consts.SectorLength, directoryFlagsByte(), "\x00", nil)
	parent := buildRecordBytes(1, consts.SectorLength, directoryFlagsByte(), "\x01", nil)
	childA := buildRecordBytes(30, 100, 0, "A.TXT", nil)
	childB := buildRecordBytes(31, 200, 0, "B.TXT", nil)
	extent := buildDirectoryExtent(current, parent, childA, childB)

	f := &diskFetcher{sectors: map[uint32][]byte{}}
	putSector(f, 20, extent)
	src := newSourceWithFetcher(f, nil)
	dir := &Record{src: src, Location: 20, DataLength: consts.SectorLength, Flags: Flags(directoryFlagsByte())}

	b, err := dir.FindChild("B.TXT")
	require.NoError(t, err)
	require.Equal(t, uint32(31), b.Location)

	// A.TXT was visited (and cached) while scanning for B.TXT.
	a, err := dir.FindChild("A.TXT")
	require.NoError(t, err)
	require.Equal(t, uint32(30), a.Location)

	_, err = dir.FindChild("MISSING.TXT")
	require.Error(t, err)
	require.True(t, isoerr.Is(err, isoerr.NotFound))

	// A second miss hits the exhausted sentinel without rescanning.
	_, err = dir.FindChild("ALSO_MISSING.TXT")
	require.Error(t, err)
	require.True(t, isoerr.Is(err, isoerr.NotFound))
}

func TestContentAndStream(t *testing.T) {
	payload := []byte("HELLO WORLD")
	f := &diskFetcher{sectors: map[uint32][]byte{}}
	putSector(f, 10, payload)
	src := newSourceWithFetcher(f, nil)
	rec := &Record{src: src, Location: 10, DataLength: uint32(len(payload))}

	content, err := rec.Content()
	require.NoError(t, err)
	require.Equal(t, payload, content)

	// Cached: a second call returns the same slice without re-seeking.
	content2, err := rec.Content()
	require.NoError(t, err)
	require.Equal(t, payload, content2)

	stream, err := rec.Stream()
	require.NoError(t, err)
	defer stream.Close()
	streamed, err := io.ReadAll(stream)
	require.NoError(t, err)
	require.Equal(t, payload, streamed)
}

func TestDecodeRecordSpeculativeSPBootstrap(t *testing.T) {
	sp := []byte{'S', 'P', 7, 1, 0xBE, 0xEF, 7}
	rec := buildRecordBytes(20, consts.SectorLength, directoryFlagsByte(), "\x00", sp)

	f := &diskFetcher{sectors: map[uint32][]byte{}}
	putSector(f, 0, rec)
	src := source.New(f)
	src.SuspStart = source.UnknownSuspStart()

	require.NoError(t, src.Seek(0, len(rec), false))
	r, err := decodeDirectoryEntry(src)
	require.NoError(t, err)
	require.Len(t, r.embeddedSuspEntries, 1)
	spEntry, ok := r.embeddedSuspEntries[0].(*susp.SP)
	require.True(t, ok)
	require.Equal(t, uint8(7), spEntry.LenSkp)
}

func TestSuspEntriesUnsafeChasesContinuation(t *testing.T) {
	ce := make([]byte, 28)
	ce[0], ce[1] = 'C', 'E'
	ce[2] = 28
	ce[3] = 1
	putBoth32(ce[4:12], 5) // location
	putBoth32(ce[12:20], 0)
	putBoth32(ce[20:28], 4)

	rec := buildRecordBytes(1, 1, 0, "CEFILE", ce)

	st := []byte{'S', 'T', 4, 1}

	f := &diskFetcher{sectors: map[uint32][]byte{}}
	putSector(f, 0, rec)
	putSector(f, 5, st)

	src := source.New(f)
	src.SuspStart = source.SkipSuspStart(0)

	require.NoError(t, src.Seek(0, len(rec), false))
	r, err := decodeDirectoryEntry(src)
	require.NoError(t, err)

	entries, err := r.SuspEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	_, ok := entries[0].(*susp.CE)
	require.True(t, ok)
	_, ok = entries[1].(*susp.ST)
	require.True(t, ok)
}

func TestNameReassemblesRockRidgeNM(t *testing.T) {
	name := "a-much-longer-rock-ridge-name.txt"
	nm := append([]byte{'N', 'M', byte(5 + len(name)), 1, 0}, []byte(name)...)
	rec := buildRecordBytes(1, 1, 0, "SHORTNM.TXT", nm)

	f := &diskFetcher{sectors: map[uint32][]byte{}}
	putSector(f, 0, rec)

	src := source.New(f)
	src.SuspStart = source.SkipSuspStart(0)
	src.SuspExtensions = []source.ExtensionID{rockridge.RRIP1991A}

	require.NoError(t, src.Seek(0, len(rec), false))
	r, err := decodeDirectoryEntry(src)
	require.NoError(t, err)

	got, err := r.Name()
	require.NoError(t, err)
	require.Equal(t, name, got)
}
