// Package consts holds fixed values mandated by ECMA-119 (ISO 9660) and the
// SUSP/Rock Ridge extensions layered on top of it.
package consts

const (
	// SystemAreaSectors is the number of reserved sectors (0-15) preceding
	// the volume descriptor set.
	SystemAreaSectors = 16

	// StandardIdentifier is the 5-byte identifier every volume descriptor
	// must carry.
	StandardIdentifier = "CD001"

	// VolumeDescriptorVersion is the only version byte value this decoder
	// accepts.
	VolumeDescriptorVersion = 1

	// SectorLength is the fixed logical block size this decoder assumes.
	SectorLength = 2048

	// VolumeDescriptorHeaderSize is the length in bytes of type+identifier+version.
	VolumeDescriptorHeaderSize = 7

	// JolietLevel1Escape, JolietLevel2Escape, and JolietLevel3Escape are the
	// escape sequences recorded in a supplementary volume descriptor's
	// escape-sequence field that identify a Joliet level. Used only for
	// identification; decoding Joliet names is out of scope.
	JolietLevel1Escape = "%/@"
	JolietLevel2Escape = "%/C"
	JolietLevel3Escape = "%/E"

	// ElToritoBootSystemID is the boot-system identifier recorded in an
	// El Torito boot record descriptor. Used only for identification.
	ElToritoBootSystemID = "EL TORITO SPECIFICATION"

	// ACharacters and DCharacters are the restricted character sets ECMA-119
	// permits in identifiers (7.4.1, 7.4.2).
	ACharacters = " !\"%&'()*+,-./0123456789:;<=>?ABCDEFGHIJKLMNOPQRSTUVWXYZ_"
	DCharacters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ_"

	// Separator1 and Separator2 are the ISO 9660 filename separators: "."
	// between name and extension, ";" before the version number.
	Separator1 = "."
	Separator2 = ";"
)

// Descriptor type byte values, per ECMA-119 8.1.1.
const (
	DescriptorTypeBoot          = 0
	DescriptorTypePrimary       = 1
	DescriptorTypeSupplementary = 2
	DescriptorTypePartition     = 3
	DescriptorTypeTerminator    = 255
)
