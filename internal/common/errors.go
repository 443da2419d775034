// Package common defines shared constants and sentinel errors used across
// the LedgerVault components. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Caller input errors.
	ErrValidation = errors.New("validation error")

	// Lookup errors (unknown transaction id or unknown content locator).
	ErrNotFound = errors.New("not found")

	// Content store errors (backend unreachable or rejected the write).
	ErrStoreUnavailable = errors.New("content store unavailable")

	// Ledger errors (transport or protocol failure, including rejected
	// transactions; the ledger's acceptance rules are opaque to us).
	ErrLedgerUnavailable = errors.New("ledger communication error")

	// Asset payload does not decode to a well-formed file record.
	ErrMalformedAsset = errors.New("malformed asset")

	// Decryption failed structurally: truncated blob, bad padding,
	// wrong key width.
	ErrCipher = errors.New("cipher error")

	// Decrypted content does not match the recorded digest.
	ErrIntegrity = errors.New("integrity check failed")
)
