package descriptor

import (
	"encoding/binary"

	"github.com/rstms/iso9660rr/pkg/consts"
	"github.com/rstms/iso9660rr/pkg/directory"
	"github.com/rstms/iso9660rr/pkg/source"
)

// Boot is a Boot Record Descriptor. Only its identifying fields are
// decoded; boot catalog parsing is out of scope.
type Boot struct {
	Header             Header
	BootSystemIdentifier string
	BootIdentifier       string
}

func (b *Boot) DescriptorHeader() Header { return b.Header }

func decodeBoot(src *source.Source, header Header) (*Boot, error) {
	sysID, err := src.UnpackString(32)
	if err != nil {
		return nil, err
	}
	bootID, err := src.UnpackString(32)
	if err != nil {
		return nil, err
	}
	if _, err := src.UnpackRaw(1977); err != nil { // boot system use, unused
		return nil, err
	}
	return &Boot{Header: header, BootSystemIdentifier: sysID, BootIdentifier: bootID}, nil
}

// Supplementary is a Supplementary Volume Descriptor, most commonly used to
// carry a Joliet extension. Its field layout mirrors Primary's exactly,
// except for VolumeFlags and EscapeSequence in place of two unused fields.
// Joliet names are UCS-2 on disc and are decoded here as raw bytes without
// translation; only identification (IsJoliet) is supported.
type Supplementary struct {
	Header         Header
	VolumeFlags    uint8
	EscapeSequence [32]byte

	VolumeSpaceSize       uint32
	LogicalBlockSize      uint16
	PathTableSize         uint32
	PathTableLLocation    uint32
	PathTableMLocation    uint32
	RootRecord            *directory.Record
}

func (s *Supplementary) DescriptorHeader() Header { return s.Header }

// IsJoliet reports whether the escape sequence identifies one of the three
// registered Joliet UCS-2 levels.
func (s *Supplementary) IsJoliet() bool {
	switch string(s.EscapeSequence[:3]) {
	case consts.JolietLevel1Escape, consts.JolietLevel2Escape, consts.JolietLevel3Escape:
		return true
	default:
		return false
	}
}

func decodeSupplementary(src *source.Source, header Header) (*Supplementary, error) {
	s := &Supplementary{Header: header}
	flags, err := src.UnpackUint8()
	if err != nil {
		return nil, err
	}
	s.VolumeFlags = flags
	if _, err := src.UnpackRaw(32); err != nil { // system identifier, unused
		return nil, err
	}
	if _, err := src.UnpackRaw(32); err != nil { // volume identifier, unused
		return nil, err
	}
	if _, err := src.UnpackRaw(8); err != nil { // unused
		return nil, err
	}
	if s.VolumeSpaceSize, err = src.UnpackUint32Both(); err != nil {
		return nil, err
	}
	esc, err := src.UnpackRaw(32)
	if err != nil {
		return nil, err
	}
	copy(s.EscapeSequence[:], esc)
	if _, err := src.UnpackRaw(4); err != nil { // volume set size
		return nil, err
	}
	if _, err := src.UnpackRaw(4); err != nil { // volume sequence number
		return nil, err
	}
	if s.LogicalBlockSize, err = src.UnpackUint16Both(); err != nil {
		return nil, err
	}
	if s.PathTableSize, err = src.UnpackUint32Both(); err != nil {
		return nil, err
	}

	raw, err := src.UnpackRaw(4)
	if err != nil {
		return nil, err
	}
	s.PathTableLLocation = binary.LittleEndian.Uint32(raw)
	if _, err := src.UnpackRaw(4); err != nil { // optional L-table location
		return nil, err
	}
	raw, err = src.UnpackRaw(4)
	if err != nil {
		return nil, err
	}
	s.PathTableMLocation = binary.BigEndian.Uint32(raw)
	if _, err := src.UnpackRaw(4); err != nil { // optional M-table location
		return nil, err
	}

	rootLen, err := src.UnpackUint8()
	if err != nil {
		return nil, err
	}
	root, err := directory.DecodeRecord(src, int(rootLen)-1)
	if err != nil {
		return nil, err
	}
	s.RootRecord = root

	if _, err := src.UnpackRaw(128 * 4); err != nil { // volume set/publisher/preparer/application identifiers, unused
		return nil, err
	}
	if _, err := src.UnpackRaw(37 * 3); err != nil { // copyright/abstract/bibliographic file identifiers, unused
		return nil, err
	}
	if _, err := src.UnpackRaw(17 * 4); err != nil { // the four volume descriptor datetimes, unused
		return nil, err
	}
	if _, err := src.UnpackRaw(1); err != nil { // file structure version
		return nil, err
	}
	if _, err := src.UnpackRaw(1); err != nil { // reserved
		return nil, err
	}
	if _, err := src.UnpackRaw(512); err != nil { // application use
		return nil, err
	}
	if _, err := src.UnpackRaw(653); err != nil { // reserved
		return nil, err
	}
	return s, nil
}

// Partition is a Volume Partition Descriptor.
type Partition struct {
	Header                  Header
	SystemIdentifier        string
	VolumePartitionIdentifier string
	VolumePartitionLocation uint32
	VolumePartitionSize     uint32
}

func (p *Partition) DescriptorHeader() Header { return p.Header }

func decodePartition(src *source.Source, header Header) (*Partition, error) {
	p := &Partition{Header: header}
	if _, err := src.UnpackRaw(1); err != nil { // unused
		return nil, err
	}
	sysID, err := src.UnpackString(32)
	if err != nil {
		return nil, err
	}
	p.SystemIdentifier = sysID
	partID, err := src.UnpackString(32)
	if err != nil {
		return nil, err
	}
	p.VolumePartitionIdentifier = partID
	if p.VolumePartitionLocation, err = src.UnpackUint32Both(); err != nil {
		return nil, err
	}
	if p.VolumePartitionSize, err = src.UnpackUint32Both(); err != nil {
		return nil, err
	}
	if _, err := src.UnpackRaw(1960); err != nil { // system use, unused
		return nil, err
	}
	return p, nil
}

// Terminator is the Volume Descriptor Set Terminator, marking the end of
// the descriptor sequence.
type Terminator struct {
	Header Header
}

func (t *Terminator) DescriptorHeader() Header { return t.Header }

func decodeTerminator(src *source.Source, header Header) (*Terminator, error) {
	if _, err := src.UnpackRaw(2041); err != nil { // unused
		return nil, err
	}
	return &Terminator{Header: header}, nil
}
