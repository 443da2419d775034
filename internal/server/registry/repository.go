// Package registry keeps a local index of uploads that went through
// this node: transaction id, filename, and size. The ledger remains the
// system of record for file metadata; the registry only backs the
// file-listing endpoint and is written best effort.
package registry

import (
	"context"
	"time"
)

// Upload is one row in the local upload index.
type Upload struct {
	TxID      string    `json:"fileId"`
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository is the storage contract for the upload index.
type Repository interface {
	Create(ctx context.Context, u *Upload) error
	List(ctx context.Context) ([]*Upload, error)
}
