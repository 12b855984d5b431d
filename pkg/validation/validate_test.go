package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidFileIdentifier(t *testing.T) {
	require.True(t, ValidFileIdentifier("README.TXT;1"))
	require.False(t, ValidFileIdentifier("readme.txt;1"))
}

func TestValidDirectoryIdentifier(t *testing.T) {
	require.True(t, ValidDirectoryIdentifier("DOCS"))
	require.True(t, ValidDirectoryIdentifier("\x00"))
	require.True(t, ValidDirectoryIdentifier("\x01"))
	require.False(t, ValidDirectoryIdentifier("docs"))
}

func BenchmarkValidateIdentifierRune(b *testing.B) {
	id := "HELLO123_456"
	for i := 0; i < b.N; i++ {
		if !validateIdentifierRune(id, "") {
			b.Fatal("rune validation failed for valid identifier")
		}
	}
}

func BenchmarkValidateIdentifierRegex(b *testing.B) {
	id := "HELLO123_456"
	for i := 0; i < b.N; i++ {
		if !validateIdentifierRegex(id) {
			b.Fatal("regex validation failed for valid identifier")
		}
	}
}
