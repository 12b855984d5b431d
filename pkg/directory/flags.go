package directory

// File flag bits, ECMA-119 9.1.6. Bits 5 and 6 are reserved.
const (
	FlagHidden         uint8 = 1 << 0
	FlagDirectory      uint8 = 1 << 1
	FlagAssociatedFile uint8 = 1 << 2
	FlagRecord         uint8 = 1 << 3
	FlagProtection     uint8 = 1 << 4
	FlagMultiExtent    uint8 = 1 << 7
)

// Flags is a directory record's file-flags byte.
type Flags uint8

// Hidden reports whether the file's existence should not be made known to
// the user.
func (f Flags) Hidden() bool { return f&FlagHidden != 0 }

// Directory reports whether this record identifies a directory rather
// than a file.
func (f Flags) Directory() bool { return f&FlagDirectory != 0 }

// AssociatedFile reports whether this is an associated file.
func (f Flags) AssociatedFile() bool { return f&FlagAssociatedFile != 0 }

// Record reports whether the file has a record format other than zero.
func (f Flags) Record() bool { return f&FlagRecord != 0 }

// Protection reports whether owner/group and permissions are specified in
// an associated Extended Attribute Record.
func (f Flags) Protection() bool { return f&FlagProtection != 0 }

// MultiExtent reports whether this is not the final directory record for
// the file.
func (f Flags) MultiExtent() bool { return f&FlagMultiExtent != 0 }
