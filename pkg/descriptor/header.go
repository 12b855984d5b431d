// Package descriptor decodes the ISO 9660 volume descriptor set: the
// fixed 7-byte header every descriptor starts with, and the five variants
// it can dispatch to.
package descriptor

import (
	"github.com/rstms/iso9660rr/pkg/consts"
	"github.com/rstms/iso9660rr/pkg/isoerr"
	"github.com/rstms/iso9660rr/pkg/source"
)

// Type is a volume descriptor's type byte, ECMA-119 8.1.1.
type Type uint8

const (
	TypeBoot          Type = consts.DescriptorTypeBoot
	TypePrimary       Type = consts.DescriptorTypePrimary
	TypeSupplementary Type = consts.DescriptorTypeSupplementary
	TypePartition     Type = consts.DescriptorTypePartition
	TypeTerminator    Type = consts.DescriptorTypeTerminator
)

// Header is the 7-byte frame common to every volume descriptor: type,
// standard identifier ("CD001"), and version (1).
type Header struct {
	DescriptorType Type
	Version        uint8
}

// Descriptor is any decoded volume descriptor variant.
type Descriptor interface {
	DescriptorHeader() Header
}

func decodeHeader(src *source.Source) (Header, error) {
	ty, err := src.UnpackUint8()
	if err != nil {
		return Header{}, err
	}
	id, err := src.UnpackRaw(5)
	if err != nil {
		return Header{}, err
	}
	if string(id) != consts.StandardIdentifier {
		return Header{}, isoerr.Newf(isoerr.BadDescriptor, 0, src.Cursor(), "bad standard identifier %q", id)
	}
	version, err := src.UnpackUint8()
	if err != nil {
		return Header{}, err
	}
	if version != consts.VolumeDescriptorVersion {
		return Header{}, isoerr.Newf(isoerr.BadDescriptor, 0, src.Cursor(), "unsupported descriptor version %d", version)
	}
	return Header{DescriptorType: Type(ty), Version: version}, nil
}

// Decode reads one volume descriptor: the 7-byte header, then dispatches
// on its type to decode the remaining 2041 bytes of the sector.
func Decode(src *source.Source) (Descriptor, error) {
	header, err := decodeHeader(src)
	if err != nil {
		return nil, err
	}
	switch header.DescriptorType {
	case TypeBoot:
		return decodeBoot(src, header)
	case TypePrimary:
		return decodePrimary(src, header)
	case TypeSupplementary:
		return decodeSupplementary(src, header)
	case TypePartition:
		return decodePartition(src, header)
	case TypeTerminator:
		return decodeTerminator(src, header)
	default:
		return nil, isoerr.Newf(isoerr.BadDescriptor, 0, src.Cursor(), "unknown volume descriptor type %d", header.DescriptorType)
	}
}
