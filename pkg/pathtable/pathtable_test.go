package pathtable

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/rstms/iso9660rr/pkg/source"
	"github.com/stretchr/testify/require"
)

type memFetcher struct {
	sectors map[uint32][]byte
}

func (f *memFetcher) Fetch(sector uint32, count uint32) ([]byte, error) {
	out := make([]byte, 0, count*2048)
	for i := uint32(0); i < count; i++ {
		s, ok := f.sectors[sector+i]
		if !ok {
			s = make([]byte, 2048)
		}
		out = append(out, s...)
	}
	return out, nil
}

func (f *memFetcher) OpenStream(sector uint32, length uint32) (io.ReadCloser, error) {
	panic("unused")
}

func putEntry(buf *[]byte, name string, location uint32, parent uint16) {
	eaLen := uint8(0)
	b := []byte{byte(len(name)), eaLen}
	loc := make([]byte, 4)
	binary.LittleEndian.PutUint32(loc, location)
	b = append(b, loc...)
	par := make([]byte, 2)
	binary.LittleEndian.PutUint16(par, parent)
	b = append(b, par...)
	b = append(b, []byte(name)...)
	if len(name)%2 != 0 {
		b = append(b, 0)
	}
	*buf = append(*buf, b...)
}

func TestDecodeAndResolve(t *testing.T) {
	var image []byte
	putEntry(&image, "\x00", 20, 1)
	putEntry(&image, "DOCS", 30, 1)
	putEntry(&image, "SUB", 40, 2)

	f := &memFetcher{sectors: map[uint32][]byte{0: image}}
	src := source.New(f)
	require.NoError(t, src.Seek(0, len(image), false))

	pt, err := Decode(src, len(image))
	require.NoError(t, err)
	require.Len(t, pt.entries, 3)

	docs, err := pt.Record("DOCS")
	require.NoError(t, err)
	require.Equal(t, uint32(30), docs.Location)

	sub, err := pt.Record("DOCS", "SUB")
	require.NoError(t, err)
	require.Equal(t, uint32(40), sub.Location)

	_, err = pt.Record("MISSING")
	require.Error(t, err)
}

func TestRecordRejectsPartialMatch(t *testing.T) {
	var image []byte
	putEntry(&image, "\x00", 20, 1)
	putEntry(&image, "DOCS", 30, 1)

	f := &memFetcher{sectors: map[uint32][]byte{0: image}}
	src := source.New(f)
	require.NoError(t, src.Seek(0, len(image), false))

	pt, err := Decode(src, len(image))
	require.NoError(t, err)

	// "INTRO.TXT" is a file, never present in the path table: a query for
	// "DOCS", "INTRO.TXT" must fail outright rather than silently returning
	// the DOCS entry as if the whole path had resolved.
	_, err = pt.Record("DOCS", "INTRO.TXT")
	require.Error(t, err)
}

func TestRecordEmptyPathReturnsRoot(t *testing.T) {
	var image []byte
	putEntry(&image, "\x00", 20, 1)

	f := &memFetcher{sectors: map[uint32][]byte{0: image}}
	src := source.New(f)
	require.NoError(t, src.Seek(0, len(image), false))

	pt, err := Decode(src, len(image))
	require.NoError(t, err)

	root, err := pt.Record()
	require.NoError(t, err)
	require.Equal(t, uint32(20), root.Location)
}
