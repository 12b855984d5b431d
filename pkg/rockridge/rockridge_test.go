package rockridge

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/rstms/iso9660rr/pkg/consts"
	"github.com/rstms/iso9660rr/pkg/source"
	"github.com/rstms/iso9660rr/pkg/susp"
	"github.com/stretchr/testify/require"
)

type byteFetcher struct{ data []byte }

func newByteFetcher(payload []byte) *byteFetcher {
	data := make([]byte, consts.SectorLength)
	copy(data, payload)
	return &byteFetcher{data: data}
}

func (f *byteFetcher) Fetch(sector uint32, count uint32) ([]byte, error) { return f.data, nil }
func (f *byteFetcher) OpenStream(sector uint32, length uint32) (io.ReadCloser, error) {
	panic("unused")
}

func newSourceOver(data []byte) *source.Source {
	f := newByteFetcher(data)
	src := source.New(f)
	_ = src.Seek(0, len(data), false)
	return src
}

func putBoth32(dst []byte, v uint32) {
	binary.LittleEndian.PutUint32(dst[0:4], v)
	binary.BigEndian.PutUint32(dst[4:8], v)
}

func TestDecodePX32(t *testing.T) {
	payload := make([]byte, 4+32)
	payload[0], payload[1] = 'P', 'X'
	payload[2] = byte(len(payload))
	payload[3] = 1
	putBoth32(payload[4:12], 0o100644)
	putBoth32(payload[12:20], 1)
	putBoth32(payload[20:28], 1000)
	putBoth32(payload[28:36], 1000)

	src := newSourceOver(payload)
	entry, err := susp.DecodeNext(src, len(payload), []source.ExtensionID{RRIP1991A}, 0)
	require.NoError(t, err)
	px, ok := entry.(*PX)
	require.True(t, ok)
	require.Equal(t, uint32(0o100644), px.Mode)
	require.False(t, px.HasIno)
}

func TestDecodePX40WithInode(t *testing.T) {
	payload := make([]byte, 4+40)
	payload[0], payload[1] = 'P', 'X'
	payload[2] = byte(len(payload))
	payload[3] = 1
	putBoth32(payload[4:12], 0o040755)
	putBoth32(payload[12:20], 2)
	putBoth32(payload[20:28], 0)
	putBoth32(payload[28:36], 0)
	putBoth32(payload[36:44], 42)

	src := newSourceOver(payload)
	entry, err := susp.DecodeNext(src, len(payload), []source.ExtensionID{RRIP1991A}, 0)
	require.NoError(t, err)
	px, ok := entry.(*PX)
	require.True(t, ok)
	require.True(t, px.HasIno)
	require.Equal(t, uint32(42), px.Ino)
}

func TestDecodeNMFragment(t *testing.T) {
	name := "longfilename.txt"
	payload := append([]byte{'N', 'M', byte(5 + len(name)), 1, 0}, []byte(name)...)

	src := newSourceOver(payload)
	entry, err := susp.DecodeNext(src, len(payload), []source.ExtensionID{RRIP1991A}, 0)
	require.NoError(t, err)
	nm, ok := entry.(*NM)
	require.True(t, ok)
	require.Equal(t, name, nm.Name)
	require.False(t, nm.Continues())
}

func TestDecodeSLScenario(t *testing.T) {
	// Components: ROOT, PARENT, "etc", "hosts" -> "/../etc/hosts"
	payload := []byte{'S', 'L', 0, 1, 0} // length patched below, flags=0
	components := []byte{
		SLRoot, 0,
		SLParent, 0,
		0, 3, 'e', 't', 'c',
		0, 5, 'h', 'o', 's', 't', 's',
	}
	payload = append(payload, components...)
	payload[2] = byte(len(payload))

	src := newSourceOver(payload)
	entry, err := susp.DecodeNext(src, len(payload), []source.ExtensionID{RRIP1991A}, 0)
	require.NoError(t, err)
	sl, ok := entry.(*SL)
	require.True(t, ok)
	require.Equal(t, "/../etc/hosts", sl.Path)
}

func TestDecodeTFShortFormLazy(t *testing.T) {
	payload := []byte{'T', 'F', 4 + 1 + 7, 1, TFModify, 120, 5, 15, 12, 34, 56, 0}
	src := newSourceOver(payload)
	entry, err := susp.DecodeNext(src, len(payload), []source.ExtensionID{RRIP1991A}, 0)
	require.NoError(t, err)
	tf, ok := entry.(*TF)
	require.True(t, ok)
	require.Nil(t, tf.Creation)
	require.NotNil(t, tf.Modify)

	modTime, err := tf.Modify.Get()
	require.NoError(t, err)
	require.Equal(t, 2020, modTime.Year())
}

func TestDecodeRR(t *testing.T) {
	payload := []byte{'R', 'R', 5, 1, RRPX | RRNM}
	src := newSourceOver(payload)
	entry, err := susp.DecodeNext(src, len(payload), []source.ExtensionID{RRIP1991A}, 0)
	require.NoError(t, err)
	rr, ok := entry.(*RR)
	require.True(t, ok)
	require.Equal(t, RRPX|RRNM, rr.Flags)
}

func TestIsRockRidge(t *testing.T) {
	require.True(t, IsRockRidge(RRIP1991A))
	require.True(t, IsRockRidge(IEEEP1282))
	require.False(t, IsRockRidge(source.ExtensionID{ID: "OTHER", Version: 1}))
}
