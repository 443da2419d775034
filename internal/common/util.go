package common

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateRandByteArray returns size cryptographically random bytes.
// It panics if the system random source fails, which on supported
// platforms does not happen in practice.
func GenerateRandByteArray(size int) []byte {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return buf
}

// MakeRandHexString generates a random hexadecimal string. The size
// parameter is the number of random bytes, so the resulting string is
// twice as long.
func MakeRandHexString(size int) string {
	return hex.EncodeToString(GenerateRandByteArray(size))
}
