package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// LogTokenLen is the number of hex characters kept by LogToken.
const LogTokenLen = 12

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// Prefix returns the first n characters of SHA256Hex(input), or the full
// hash when n is out of range.
func Prefix(input string, n int) string {
	full := SHA256Hex(input)
	if n <= 0 || n > len(full) {
		return full
	}
	return full[:n]
}

// LogToken pseudonymizes a value such as an IP address or email so that
// requests from the same source can be correlated in logs without storing
// the raw value.
func LogToken(input string) string {
	return Prefix(input, LogTokenLen)
}
