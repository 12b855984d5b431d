package descriptor

import (
	"encoding/binary"
	"time"

	"github.com/rstms/iso9660rr/pkg/directory"
	"github.com/rstms/iso9660rr/pkg/source"
)

// Primary is the Primary Volume Descriptor: the identifiers, path-table
// location, and root directory record every ISO 9660 image carries.
type Primary struct {
	Header Header

	SystemIdentifier string
	VolumeIdentifier string

	VolumeSpaceSize      uint32
	VolumeSetSize        uint16
	VolumeSequenceNumber uint16
	LogicalBlockSize     uint16
	PathTableSize        uint32

	// PathTableLLocation is the little-endian-ordered L-type path table's
	// starting sector; this is the one the path table decoder reads.
	PathTableLLocation      uint32
	PathTableLOptLocation   uint32
	PathTableMLocation      uint32
	PathTableMOptLocation   uint32

	RootRecord *directory.Record

	VolumeSetIdentifier         string
	PublisherIdentifier         string
	DataPreparerIdentifier      string
	ApplicationIdentifier       string
	CopyrightFileIdentifier     string
	AbstractFileIdentifier      string
	BibliographicFileIdentifier string

	VolumeCreationDateTime     time.Time
	VolumeModificationDateTime time.Time
	VolumeExpirationDateTime   time.Time
	VolumeEffectiveDateTime    time.Time

	FileStructureVersion uint8
}

func (p *Primary) DescriptorHeader() Header { return p.Header }

func decodePrimary(src *source.Source, header Header) (*Primary, error) {
	p := &Primary{Header: header}

	if _, err := src.UnpackRaw(1); err != nil { // unused
		return nil, err
	}
	sysID, err := src.UnpackString(32)
	if err != nil {
		return nil, err
	}
	p.SystemIdentifier = sysID
	volID, err := src.UnpackString(32)
	if err != nil {
		return nil, err
	}
	p.VolumeIdentifier = volID
	if _, err := src.UnpackRaw(8); err != nil { // unused
		return nil, err
	}
	if p.VolumeSpaceSize, err = src.UnpackUint32Both(); err != nil {
		return nil, err
	}
	if _, err := src.UnpackRaw(32); err != nil { // unused
		return nil, err
	}
	if p.VolumeSetSize, err = src.UnpackUint16Both(); err != nil {
		return nil, err
	}
	if p.VolumeSequenceNumber, err = src.UnpackUint16Both(); err != nil {
		return nil, err
	}
	if p.LogicalBlockSize, err = src.UnpackUint16Both(); err != nil {
		return nil, err
	}
	if p.PathTableSize, err = src.UnpackUint32Both(); err != nil {
		return nil, err
	}

	raw, err := src.UnpackRaw(4)
	if err != nil {
		return nil, err
	}
	p.PathTableLLocation = binary.LittleEndian.Uint32(raw)

	raw, err = src.UnpackRaw(4)
	if err != nil {
		return nil, err
	}
	p.PathTableLOptLocation = binary.LittleEndian.Uint32(raw)

	raw, err = src.UnpackRaw(4)
	if err != nil {
		return nil, err
	}
	p.PathTableMLocation = binary.BigEndian.Uint32(raw)

	raw, err = src.UnpackRaw(4)
	if err != nil {
		return nil, err
	}
	p.PathTableMOptLocation = binary.BigEndian.Uint32(raw)

	rootLen, err := src.UnpackUint8()
	if err != nil {
		return nil, err
	}
	root, err := directory.DecodeRecord(src, int(rootLen)-1)
	if err != nil {
		return nil, err
	}
	p.RootRecord = root

	for _, dest := range []*string{
		&p.VolumeSetIdentifier, &p.PublisherIdentifier, &p.DataPreparerIdentifier, &p.ApplicationIdentifier,
	} {
		s, err := src.UnpackString(128)
		if err != nil {
			return nil, err
		}
		*dest = s
	}
	for _, dest := range []*string{
		&p.CopyrightFileIdentifier, &p.AbstractFileIdentifier, &p.BibliographicFileIdentifier,
	} {
		s, err := src.UnpackString(37)
		if err != nil {
			return nil, err
		}
		*dest = s
	}

	for _, dest := range []*time.Time{
		&p.VolumeCreationDateTime, &p.VolumeModificationDateTime, &p.VolumeExpirationDateTime, &p.VolumeEffectiveDateTime,
	} {
		t, err := src.UnpackVolumeDescriptorDateTime()
		if err != nil {
			return nil, err
		}
		*dest = t
	}

	if p.FileStructureVersion, err = src.UnpackUint8(); err != nil {
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
	return p, nil
}
