// Package cryptox implements the symmetric encryption used for stored
// file content: AES-256-CBC with a random IV prepended to the ciphertext,
// plus key generation/normalization and the SHA-256 content digest used
// for integrity verification.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/ledgervault/internal/common"
)

// KeySize is the AES-256 key width in bytes.
const KeySize = 32

// GenerateKey produces a fresh random AES-256 key.
func GenerateKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}

// NormalizeKey decodes a hex-encoded key and coerces it to exactly
// KeySize bytes: shorter keys are right-padded with zero bytes, longer
// keys are truncated. The operation is deterministic and lossy; callers
// must not expect it to preserve entropy beyond KeySize.
func NormalizeKey(rawHex string) ([]byte, error) {
	raw, err := hex.DecodeString(rawHex)
	if err != nil {
		return nil, fmt.Errorf("%w: key is not valid hex: %v", common.ErrCipher, err)
	}

	switch {
	case len(raw) < KeySize:
		padded := make([]byte, KeySize)
		copy(padded, raw)
		return padded, nil
	case len(raw) > KeySize:
		return raw[:KeySize], nil
	default:
		return raw, nil
	}
}

// Encrypt encrypts plaintext under AES-256-CBC with a freshly generated
// random IV and returns iv‖ciphertext. The plaintext is PKCS#7-padded to
// the cipher block size, so two encryptions of the same input produce
// different output but both decrypt to the original bytes.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCipher, err)
	}

	iv := common.GenerateRandByteArray(aes.BlockSize)
	padded := pkcs7Pad(plaintext, aes.BlockSize)

	out := make([]byte, aes.BlockSize+len(padded))
	copy(out, iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[aes.BlockSize:], padded)

	return out, nil
}

// Decrypt splits blob into the leading IV and the remaining ciphertext,
// decrypts, and strips the PKCS#7 padding. Structural failures (blob
// shorter than one block, ciphertext not block-aligned, wrong key width,
// invalid padding) are reported as common.ErrCipher.
func Decrypt(blob, key []byte) ([]byte, error) {
	if len(blob) < aes.BlockSize {
		return nil, fmt.Errorf("%w: blob shorter than IV", common.ErrCipher)
	}

	iv, ciphertext := blob[:aes.BlockSize], blob[aes.BlockSize:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext is not block-aligned", common.ErrCipher)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCipher, err)
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}

// Digest returns the hex-encoded SHA-256 fingerprint of data. It is
// computed over the plaintext both before encryption and after
// decryption; a mismatch means corruption or substitution somewhere in
// the storage path.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: invalid padded length", common.ErrCipher)
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("%w: invalid padding", common.ErrCipher)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: invalid padding", common.ErrCipher)
		}
	}
	return data[:len(data)-n], nil
}
