package ledger

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/ledgervault/internal/common"
)

// FileAsset is the metadata record committed to the ledger for every
// uploaded file. The ledger transaction that carries it is the sole
// system of record for this metadata.
type FileAsset struct {
	// Filename is the original display name. Opaque, not unique.
	Filename string
	// Locator identifies the ciphertext blob in the content store.
	Locator string
	// PlaintextHash is the hex SHA-256 of the unencrypted content.
	PlaintextHash string
	// EncryptionKey is the hex-encoded symmetric key used at
	// encryption time.
	EncryptionKey string
}

// wireAsset is the asset field layout the ledger backend expects. Field
// names follow the backend contract and predate this implementation.
type wireAsset struct {
	Filename      string          `json:"filename"`
	IPFSHash      string          `json:"ipfsHash"`
	FileHash      string          `json:"fileHash"`
	EncryptionKey json.RawMessage `json:"encryptionKey"`
}

type wireEnvelope struct {
	Data *wireAsset `json:"data"`
}

// bufferValue is the stringified byte-array structure some backend
// versions return for binary-ish fields ({"type":"Buffer","data":[...]}).
type bufferValue struct {
	Type string `json:"type"`
	Data []int  `json:"data"`
}

// EncodeAsset serializes a FileAsset into the payload string the ledger
// mutation accepts: a JSON document {"data":{filename, ipfsHash,
// fileHash, encryptionKey}} with the key as a plain hex string.
func EncodeAsset(a *FileAsset) (string, error) {
	keyJSON, err := json.Marshal(a.EncryptionKey)
	if err != nil {
		return "", fmt.Errorf("encode asset: %w", err)
	}
	env := wireEnvelope{Data: &wireAsset{
		Filename:      a.Filename,
		IPFSHash:      a.Locator,
		FileHash:      a.PlaintextHash,
		EncryptionKey: keyJSON,
	}}
	out, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("encode asset: %w", err)
	}
	return string(out), nil
}

// DecodeAsset parses the asset payload returned by a ledger query back
// into a FileAsset. Backends are not consistent about the payload's
// shape: it may come back as a structured object, as the JSON string
// submitted at create time, or as a Python-style single-quoted
// stringification of that document. All three are accepted; anything
// that does not yield a complete record is common.ErrMalformedAsset.
func DecodeAsset(payload any) (*FileAsset, error) {
	switch v := payload.(type) {
	case nil:
		return nil, fmt.Errorf("%w: empty payload", common.ErrMalformedAsset)
	case string:
		return decodeAssetJSON([]byte(v), v)
	case []byte:
		return decodeAssetJSON(v, string(v))
	case json.RawMessage:
		return decodeAssetJSON(v, string(v))
	default:
		// Structured value (e.g. map[string]any from a decoded GraphQL
		// response): round it through JSON into the wire layout.
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrMalformedAsset, err)
		}
		return decodeAssetJSON(raw, "")
	}
}

func decodeAssetJSON(raw []byte, original string) (*FileAsset, error) {
	var env wireEnvelope
	err := json.Unmarshal(raw, &env)
	if err != nil && strings.ContainsRune(original, '\'') {
		// Single-quoted stringification. Rewrite into valid JSON with a
		// quote-aware scan, not a blind character substitution.
		if fixed, convErr := normalizeSingleQuoted(original); convErr == nil {
			err = json.Unmarshal(fixed, &env)
		}
	}
	if err != nil {
		// The payload may itself be a JSON-encoded string holding the
		// document ("\"{\\\"data\\\"...}\"").
		var nested string
		if json.Unmarshal(raw, &nested) == nil && nested != string(raw) {
			return decodeAssetJSON([]byte(nested), nested)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedAsset, err)
	}

	wire := env.Data
	if wire == nil {
		// Tolerate a payload without the data envelope.
		var flat wireAsset
		if err := json.Unmarshal(raw, &flat); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrMalformedAsset, err)
		}
		wire = &flat
	}

	key, err := decodeKeyField(wire.EncryptionKey)
	if err != nil {
		return nil, err
	}

	asset := &FileAsset{
		Filename:      wire.Filename,
		Locator:       wire.IPFSHash,
		PlaintextHash: wire.FileHash,
		EncryptionKey: key,
	}
	if asset.Filename == "" || asset.Locator == "" || asset.PlaintextHash == "" || asset.EncryptionKey == "" {
		return nil, fmt.Errorf("%w: missing required fields", common.ErrMalformedAsset)
	}
	return asset, nil
}

// decodeKeyField accepts the encryption key either as a hex string or as
// a Buffer-style byte-array object and normalizes it to hex.
func decodeKeyField(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: missing encryption key", common.ErrMalformedAsset)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var buf bufferValue
	if err := json.Unmarshal(raw, &buf); err == nil && len(buf.Data) > 0 {
		b := make([]byte, len(buf.Data))
		for i, v := range buf.Data {
			if v < 0 || v > 255 {
				return "", fmt.Errorf("%w: byte value out of range", common.ErrMalformedAsset)
			}
			b[i] = byte(v)
		}
		return fmt.Sprintf("%x", b), nil
	}

	return "", fmt.Errorf("%w: unsupported encryption key shape", common.ErrMalformedAsset)
}

// normalizeSingleQuoted rewrites a single-quoted JSON-like document into
// standard JSON. It tracks string state character by character, so quote
// characters inside string values survive the conversion.
func normalizeSingleQuoted(s string) ([]byte, error) {
	var out strings.Builder
	out.Grow(len(s))

	const (
		outside = iota
		inSingle
		inDouble
	)
	state := outside

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch state {
		case outside:
			switch c {
			case '\'':
				out.WriteByte('"')
				state = inSingle
			case '"':
				out.WriteByte(c)
				state = inDouble
			default:
				out.WriteByte(c)
			}
		case inSingle:
			switch c {
			case '\\':
				if i+1 < len(s) && s[i+1] == '\'' {
					out.WriteByte('\'')
					i++
				} else {
					out.WriteByte(c)
				}
			case '"':
				out.WriteString(`\"`)
			case '\'':
				out.WriteByte('"')
				state = outside
			default:
				out.WriteByte(c)
			}
		case inDouble:
			if c == '\\' && i+1 < len(s) {
				out.WriteByte(c)
				out.WriteByte(s[i+1])
				i++
				continue
			}
			out.WriteByte(c)
			if c == '"' {
				state = outside
			}
		}
	}

	if state != outside {
		return nil, fmt.Errorf("unterminated string literal")
	}
	return []byte(out.String()), nil
}
