package vault

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/ledgervault/internal/common"
	"github.com/dmitrijs2005/ledgervault/internal/logging"
)

// -------- test fakes --------

type fakeStore struct {
	blobs map[string][]byte

	putErr error
	getErr error

	putCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{blobs: map[string][]byte{}}
}

func (f *fakeStore) Put(ctx context.Context, data []byte) (string, error) {
	f.putCalls++
	if f.putErr != nil {
		return "", f.putErr
	}
	locator := fmt.Sprintf("blob-%d", len(f.blobs))
	f.blobs[locator] = append([]byte(nil), data...)
	return locator, nil
}

func (f *fakeStore) Get(ctx context.Context, locator string) (io.ReadCloser, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.blobs[locator]
	if !ok {
		return nil, fmt.Errorf("%w: blob %s", common.ErrNotFound, locator)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type fakeLedger struct {
	assets map[string]any

	submitErr error
	fetchErr  error

	submitCalls int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{assets: map[string]any{}}
}

func (f *fakeLedger) Submit(ctx context.Context, assetPayload string) (string, error) {
	f.submitCalls++
	if f.submitErr != nil {
		return "", f.submitErr
	}
	id := fmt.Sprintf("tx-%d", len(f.assets))
	f.assets[id] = assetPayload
	return id, nil
}

func (f *fakeLedger) Fetch(ctx context.Context, txID string) (any, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	payload, ok := f.assets[txID]
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s", common.ErrNotFound, txID)
	}
	return payload, nil
}

func newTestService(store *fakeStore, lc *fakeLedger) *Service {
	logger := logging.NewSlogLogger(slog.New(slog.DiscardHandler))
	return NewService(store, lc, logger)
}

// -------- tests --------

func TestUploadDownload_EndToEnd(t *testing.T) {
	store := newFakeStore()
	lc := newFakeLedger()
	svc := newTestService(store, lc)

	content := []byte("hello world")

	txID, err := svc.Upload(context.Background(), "a.txt", content)
	require.NoError(t, err)
	require.NotEmpty(t, txID)

	file, err := svc.Download(context.Background(), txID)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", file.Name)
	assert.Equal(t, content, file.Data)
}

func TestUpload_CiphertextNotPlaintext(t *testing.T) {
	store := newFakeStore()
	lc := newFakeLedger()
	svc := newTestService(store, lc)

	content := []byte("this must never be stored in the clear")

	_, err := svc.Upload(context.Background(), "secret.txt", content)
	require.NoError(t, err)

	require.Len(t, store.blobs, 1)
	for _, blob := range store.blobs {
		assert.NotContains(t, string(blob), string(content))
	}
}

func TestUpload_MissingInput(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"no filename", "", []byte("data")},
		{"no data", "a.txt", nil},
		{"empty data", "a.txt", []byte{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			lc := newFakeLedger()
			svc := newTestService(store, lc)

			_, err := svc.Upload(context.Background(), tt.filename, tt.data)
			require.ErrorIs(t, err, common.ErrValidation)

			// No side effects on either external system.
			assert.Zero(t, store.putCalls)
			assert.Zero(t, lc.submitCalls)
		})
	}
}

func TestUpload_StoreFailureAbortsBeforeLedger(t *testing.T) {
	store := newFakeStore()
	store.putErr = fmt.Errorf("%w: connection refused", common.ErrStoreUnavailable)
	lc := newFakeLedger()
	svc := newTestService(store, lc)

	_, err := svc.Upload(context.Background(), "a.txt", []byte("data"))
	require.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.Zero(t, lc.submitCalls, "no ledger write may happen after a store failure")
}

func TestUpload_LedgerFailure(t *testing.T) {
	store := newFakeStore()
	lc := newFakeLedger()
	lc.submitErr = fmt.Errorf("%w: 502", common.ErrLedgerUnavailable)
	svc := newTestService(store, lc)

	_, err := svc.Upload(context.Background(), "a.txt", []byte("data"))
	require.ErrorIs(t, err, common.ErrLedgerUnavailable)
	// The blob stays orphaned in the store; there is no compensation.
	assert.Len(t, store.blobs, 1)
}

func TestDownload_UnknownID(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeLedger())

	_, err := svc.Download(context.Background(), "nonexistent-id")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDownload_EmptyID(t *testing.T) {
	svc := newTestService(newFakeStore(), newFakeLedger())

	_, err := svc.Download(context.Background(), "")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestDownload_TamperedBlob(t *testing.T) {
	store := newFakeStore()
	lc := newFakeLedger()
	svc := newTestService(store, lc)

	txID, err := svc.Upload(context.Background(), "a.txt", []byte("original content"))
	require.NoError(t, err)

	// Replace the stored ciphertext with a different valid-looking blob.
	other, err := svc.Upload(context.Background(), "b.txt", []byte("substituted content"))
	require.NoError(t, err)
	_ = other

	var firstLocator string
	for locator := range store.blobs {
		if locator == "blob-0" {
			firstLocator = locator
		}
	}
	require.NotEmpty(t, firstLocator)
	store.blobs[firstLocator] = store.blobs["blob-1"]

	_, err = svc.Download(context.Background(), txID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrIntegrity) || errors.Is(err, common.ErrCipher),
		"tampering must surface as an integrity or cipher failure, got %v", err)
}

func TestDownload_TruncatedBlob(t *testing.T) {
	store := newFakeStore()
	lc := newFakeLedger()
	svc := newTestService(store, lc)

	txID, err := svc.Upload(context.Background(), "a.txt", []byte("some content here"))
	require.NoError(t, err)

	store.blobs["blob-0"] = store.blobs["blob-0"][:8]

	_, err = svc.Download(context.Background(), txID)
	require.ErrorIs(t, err, common.ErrCipher)
}

func TestDownload_MalformedAsset(t *testing.T) {
	store := newFakeStore()
	lc := newFakeLedger()
	lc.assets["tx-bad"] = `{"data": {"filename": "only-a-name"}}`
	svc := newTestService(store, lc)

	_, err := svc.Download(context.Background(), "tx-bad")
	require.ErrorIs(t, err, common.ErrMalformedAsset)
}

func TestDownload_MissingBlob(t *testing.T) {
	store := newFakeStore()
	lc := newFakeLedger()
	svc := newTestService(store, lc)

	txID, err := svc.Upload(context.Background(), "a.txt", []byte("content"))
	require.NoError(t, err)

	delete(store.blobs, "blob-0")

	_, err = svc.Download(context.Background(), txID)
	require.ErrorIs(t, err, common.ErrNotFound)
}
