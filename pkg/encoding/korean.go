// Package encoding provides text and path helpers for ROSE client files.
package encoding

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// EUCKRToUTF8 converts EUC-KR encoded bytes to a UTF-8 string.
// ASCII input and input that fails to decode is returned unchanged.
func EUCKRToUTF8(data []byte) string {
	if isASCII(data) {
		return string(data)
	}
	decoder := korean.EUCKR.NewDecoder()
	result, _, err := transform.Bytes(decoder, data)
	if err != nil || !utf8.Valid(result) {
		return string(data)
	}
	return string(result)
}

// EUCKRStringToUTF8 converts an EUC-KR encoded string to UTF-8.
func EUCKRStringToUTF8(s string) string {
	return EUCKRToUTF8([]byte(s))
}

// NormalizePath normalizes a client resource path for case-insensitive lookup.
// Client files reference each other with upper-case, backslash-separated
// paths such as `3DDATA\NPC\LIST_NPC.CHR`.
func NormalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.TrimPrefix(path, "./")
	path = strings.TrimLeft(path, "/")
	return strings.ToLower(path)
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
