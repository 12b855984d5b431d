// Package systemarea models the 16-sector system area ECMA-119 reserves
// ahead of the volume descriptor set. Its contents are never interpreted
// by this decoder (boot loaders and partition tables living there are
// platform-specific); it is exposed only as a raw byte blob for a caller
// that wants to inspect or re-save it.
package systemarea

import "github.com/rstms/iso9660rr/pkg/consts"

// SystemArea holds the raw bytes of sectors 0-15.
type SystemArea [consts.SystemAreaSectors * consts.SectorLength]byte

// IsEmpty reports whether the system area is entirely zero bytes, the
// common case for images with no boot loader installed.
func (s SystemArea) IsEmpty() bool {
	for _, b := range s {
		if b != 0 {
			return false
		}
	}
	return true
}
