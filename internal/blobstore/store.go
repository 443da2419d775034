// Package blobstore provides the content-addressed blob backend used for
// encrypted file content. A blob is written once and retrieved by the
// locator returned at write time; the service never references stored
// bytes any other way.
package blobstore

import (
	"context"
	"io"
)

// Store is the contract the upload/download pipeline depends on.
//
// Put stores the given bytes and returns an opaque locator sufficient to
// retrieve them later. Get streams the stored bytes back; the caller is
// responsible for draining and closing the reader.
//
// Implementations report common.ErrStoreUnavailable on backend
// communication failure and common.ErrNotFound for unknown locators.
type Store interface {
	Put(ctx context.Context, data []byte) (string, error)
	Get(ctx context.Context, locator string) (io.ReadCloser, error)
}
