package source

import (
	"encoding/binary"
	"fmt"
	"io"
	"testing"

	"github.com/rstms/iso9660rr/pkg/consts"
	"github.com/stretchr/testify/require"
)

// memFetcher serves sectors out of an in-memory slice, and counts how many
// times Fetch is called so tests can assert on cache behavior.
type memFetcher struct {
	data       []byte
	fetchCalls int
}

func newMemFetcher(nSectors int) *memFetcher {
	data := make([]byte, nSectors*consts.SectorLength)
	return &memFetcher{data: data}
}

func (f *memFetcher) Fetch(sector uint32, count uint32) ([]byte, error) {
	f.fetchCalls++
	off := int(sector) * consts.SectorLength
	n := int(count) * consts.SectorLength
	if off+n > len(f.data) {
		return nil, fmt.Errorf("out of range")
	}
	return f.data[off : off+n], nil
}

func (f *memFetcher) OpenStream(sector uint32, length uint32) (io.ReadCloser, error) {
	off := int(sector) * consts.SectorLength
	return io.NopCloser(bytesReader(f.data[off : off+int(length)])), nil
}

type bytesReader []byte

func (b bytesReader) Read(p []byte) (int, error) {
	n := copy(p, b)
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func TestSeekReadsRequestedBytes(t *testing.T) {
	f := newMemFetcher(4)
	binary.LittleEndian.PutUint32(f.data[0:4], 0xdeadbeef)

	src := New(f, WithMinFetch(1))
	require.NoError(t, src.Seek(0, 16, false))
	raw, err := src.UnpackRaw(4)
	require.NoError(t, err)
	require.Equal(t, uint32(0xdeadbeef), binary.LittleEndian.Uint32(raw))
}

func TestSeekCachesMetadataSectors(t *testing.T) {
	f := newMemFetcher(4)
	src := New(f, WithMinFetch(1))

	require.NoError(t, src.Seek(0, consts.SectorLength, false))
	require.NoError(t, src.Seek(0, consts.SectorLength, false))
	require.Equal(t, 1, f.fetchCalls, "second seek of the same sector should hit cache")
}

func TestUnpackRawUnderrun(t *testing.T) {
	f := newMemFetcher(1)
	src := New(f, WithMinFetch(1))
	require.NoError(t, src.Seek(0, 4, false))
	_, err := src.UnpackRaw(8)
	require.Error(t, err)
}

func TestRewindRaw(t *testing.T) {
	f := newMemFetcher(1)
	src := New(f, WithMinFetch(1))
	require.NoError(t, src.Seek(0, 16, false))
	_, err := src.UnpackRaw(4)
	require.NoError(t, err)
	require.NoError(t, src.RewindRaw(4))
	require.Equal(t, 0, src.Cursor())
}

func TestRewindRawUnderrun(t *testing.T) {
	f := newMemFetcher(1)
	src := New(f, WithMinFetch(1))
	require.NoError(t, src.Seek(0, 16, false))
	require.Error(t, src.RewindRaw(1))
}

func TestUnpackBothMismatch(t *testing.T) {
	f := newMemFetcher(1)
	binary.LittleEndian.PutUint16(f.data[0:2], 100)
	binary.BigEndian.PutUint16(f.data[2:4], 101)

	src := New(f, WithMinFetch(1))
	require.NoError(t, src.Seek(0, 4, false))
	_, err := src.UnpackUint16Both()
	require.Error(t, err)
}

func TestUnpackBothAgree(t *testing.T) {
	f := newMemFetcher(1)
	binary.LittleEndian.PutUint32(f.data[0:4], 12345678)
	binary.BigEndian.PutUint32(f.data[4:8], 12345678)

	src := New(f, WithMinFetch(1))
	require.NoError(t, src.Seek(0, 8, false))
	v, err := src.UnpackUint32Both()
	require.NoError(t, err)
	require.Equal(t, uint32(12345678), v)
}

func TestSaveRestoreCursor(t *testing.T) {
	f := newMemFetcher(2)
	src := New(f, WithMinFetch(1))
	require.NoError(t, src.Seek(0, 16, false))
	_, err := src.UnpackRaw(4)
	require.NoError(t, err)

	saved := src.SaveCursor()
	require.NoError(t, src.Seek(1, 16, false))
	_, err = src.UnpackRaw(4)
	require.NoError(t, err)

	src.RestoreCursor(saved)
	require.Equal(t, 4, src.Cursor())
}

func TestUnpackSmartDecodesInOrder(t *testing.T) {
	f := newMemFetcher(1)
	f.data[0] = 7                                    // B
	binary.LittleEndian.PutUint16(f.data[1:3], 42)    // H (LE half)
	binary.BigEndian.PutUint16(f.data[3:5], 42)       // H (BE half)

	src := New(f, WithMinFetch(1))
	require.NoError(t, src.Seek(0, 8, false))
	values, err := src.UnpackSmart("BH")
	require.NoError(t, err)
	require.Equal(t, uint8(7), values[0])
	require.Equal(t, uint16(42), values[1])
}

func TestUnpackSmartCachesPlan(t *testing.T) {
	plan1, err := compileSmartPlan("BHI")
	require.NoError(t, err)
	plan2, err := compileSmartPlan("BHI")
	require.NoError(t, err)
	require.Equal(t, plan1, plan2)
	_, cached := smartPlanCache.Load("BHI")
	require.True(t, cached)
}

func TestSuspStartStates(t *testing.T) {
	u := UnknownSuspStart()
	require.True(t, u.IsUnknown())

	d := DisabledSuspStart()
	require.True(t, d.IsDisabled())

	sk := SkipSuspStart(5)
	n, ok := sk.Skip()
	require.True(t, ok)
	require.Equal(t, 5, n)
}
