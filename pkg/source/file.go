package source

import (
	"fmt"
	"io"
	"os"

	"github.com/rstms/iso9660rr/pkg/consts"
)

// FileFetcher fetches sectors from a local file or block device.
type FileFetcher struct {
	file *os.File
}

// NewFileFetcher opens path for reading and returns a FileFetcher over it.
// The caller is responsible for calling Close when done.
func NewFileFetcher(path string) (*FileFetcher, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &FileFetcher{file: f}, nil
}

// Close releases the underlying file handle.
func (f *FileFetcher) Close() error {
	return f.file.Close()
}

func (f *FileFetcher) Fetch(sector uint32, count uint32) ([]byte, error) {
	buf := make([]byte, int(count)*consts.SectorLength)
	off := int64(sector) * consts.SectorLength
	if _, err := f.file.ReadAt(buf, off); err != nil {
		return nil, fmt.Errorf("read %d sectors at sector %d: %w", count, sector, err)
	}
	return buf, nil
}

func (f *FileFetcher) OpenStream(sector uint32, length uint32) (io.ReadCloser, error) {
	return &fileStream{
		file:   f.file,
		offset: int64(sector) * consts.SectorLength,
		length: int64(length),
	}, nil
}

// fileStream is a read-only view of length bytes of the underlying file
// starting at offset. It does not close the file it reads from; the
// FileFetcher owns that lifetime.
type fileStream struct {
	file   *os.File
	offset int64
	length int64
	pos    int64
}

func (s *fileStream) Read(p []byte) (int, error) {
	if s.pos >= s.length {
		return 0, io.EOF
	}
	remaining := s.length - s.pos
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := s.file.ReadAt(p, s.offset+s.pos)
	s.pos += int64(n)
	return n, err
}

func (s *fileStream) Close() error {
	return nil
}
