// Package vault composes the encryption, content-store, and ledger
// layers into the two end-to-end workflows: Upload (encrypt, store,
// commit) and Download (fetch, decrypt, verify). It holds no state of
// its own; the ledger owns the metadata and the content store owns the
// ciphertext.
package vault

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/dmitrijs2005/ledgervault/internal/blobstore"
	"github.com/dmitrijs2005/ledgervault/internal/common"
	"github.com/dmitrijs2005/ledgervault/internal/cryptox"
	"github.com/dmitrijs2005/ledgervault/internal/ledger"
	"github.com/dmitrijs2005/ledgervault/internal/logging"
)

// Ledger is the subset of the ledger client the workflows need.
type Ledger interface {
	Submit(ctx context.Context, assetPayload string) (string, error)
	Fetch(ctx context.Context, txID string) (any, error)
}

// File is the result of a successful download: the original name and
// the verified plaintext.
type File struct {
	Name string
	Data []byte
}

// Service implements the upload/download pipeline. All dependencies are
// injected; both external clients can be replaced with test doubles.
type Service struct {
	store  blobstore.Store
	ledger Ledger
	logger logging.Logger
}

// NewService constructs the pipeline service.
func NewService(store blobstore.Store, lc Ledger, logger logging.Logger) *Service {
	return &Service{
		store:  store,
		ledger: lc,
		logger: logger.With("module", "vault"),
	}
}

// Upload encrypts data under a fresh random key, stores the ciphertext
// in the content store, and commits the file metadata to the ledger.
// It returns the ledger transaction id, which is the caller's only
// handle on the file from then on.
//
// Failures abort the pipeline at the step they occur: a store failure
// means no ledger write happened; a ledger failure after a successful
// store write leaves the ciphertext orphaned (there is no compensating
// delete), which is logged and accepted.
func (s *Service) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	if filename == "" || len(data) == 0 {
		return "", fmt.Errorf("%w: missing file or filename", common.ErrValidation)
	}

	plaintextHash := cryptox.Digest(data)
	key := cryptox.GenerateKey()

	blob, err := cryptox.Encrypt(data, key)
	if err != nil {
		return "", err
	}

	locator, err := s.store.Put(ctx, blob)
	if err != nil {
		return "", err
	}

	payload, err := ledger.EncodeAsset(&ledger.FileAsset{
		Filename:      filename,
		Locator:       locator,
		PlaintextHash: plaintextHash,
		EncryptionKey: hex.EncodeToString(key),
	})
	if err != nil {
		return "", err
	}

	txID, err := s.ledger.Submit(ctx, payload)
	if err != nil {
		s.logger.Warn(ctx, "ledger submit failed after store write; ciphertext orphaned",
			"locator", locator)
		return "", err
	}

	s.logger.Info(ctx, "file uploaded", "filename", filename, "tx_id", txID, "size", len(data))
	return txID, nil
}

// Download resolves the transaction id to a file record, fetches and
// decrypts the ciphertext, and verifies the plaintext digest against the
// recorded one. Bytes are only returned after verification succeeds.
func (s *Service) Download(ctx context.Context, txID string) (*File, error) {
	if txID == "" {
		return nil, fmt.Errorf("%w: missing transaction id", common.ErrValidation)
	}

	payload, err := s.ledger.Fetch(ctx, txID)
	if err != nil {
		return nil, err
	}

	asset, err := ledger.DecodeAsset(payload)
	if err != nil {
		return nil, err
	}

	rc, err := s.store.Get(ctx, asset.Locator)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	blob, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: reading blob %s: %v", common.ErrStoreUnavailable, asset.Locator, err)
	}

	key, err := cryptox.NormalizeKey(asset.EncryptionKey)
	if err != nil {
		return nil, err
	}

	plaintext, err := cryptox.Decrypt(blob, key)
	if err != nil {
		return nil, err
	}

	if cryptox.Digest(plaintext) != asset.PlaintextHash {
		return nil, fmt.Errorf("%w: digest mismatch for tx %s", common.ErrIntegrity, txID)
	}

	s.logger.Info(ctx, "file downloaded", "filename", asset.Filename, "tx_id", txID, "size", len(plaintext))
	return &File{Name: asset.Filename, Data: plaintext}, nil
}
