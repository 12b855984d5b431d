// Package validation checks ISO 9660 identifier strings against the
// restricted d-character and a-character sets ECMA-119 permits.
package validation

import (
	"regexp"
	"strings"

	"github.com/rstms/iso9660rr/pkg/consts"
)

// ValidFileIdentifier reports whether identifier is a legal file
// identifier: d-characters plus the "." and ";" separators.
func ValidFileIdentifier(identifier string) bool {
	return validateIdentifierRune(identifier, ".;")
}

// ValidDirectoryIdentifier reports whether identifier is a legal directory
// identifier: d-characters, or one of the special "\x00"/"\x01" self and
// parent markers.
func ValidDirectoryIdentifier(identifier string) bool {
	if len(identifier) == 1 && (identifier[0] == 0x00 || identifier[0] == 0x01) {
		return true
	}
	return validateIdentifierRune(identifier, "")
}

// validateIdentifierRune checks each rune in identifier against the
// d-character set plus any additionally allowed characters.
func validateIdentifierRune(identifier string, additionalChars string) bool {
	allowed := consts.DCharacters + additionalChars
	for _, r := range identifier {
		if !strings.ContainsRune(allowed, r) {
			return false
		}
	}
	return true
}

var allowedRegexp = regexp.MustCompile(`^[` + regexp.QuoteMeta(consts.DCharacters) + `]+$`)

// validateIdentifierRegex is a regular-expression equivalent of
// validateIdentifierRune, kept for the benchmark comparison in
// validate_test.go.
func validateIdentifierRegex(id string) bool {
	return allowedRegexp.MatchString(id)
}
