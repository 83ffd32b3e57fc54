package repositories

import "context"

// BlobStore holds raw document bytes outside the record store. Store returns
// an opaque reference that is persisted on the Document and later passed to
// Fetch or Delete.
type BlobStore interface {
	Store(ctx context.Context, data []byte, originalName, parentID string) (string, error)
	Fetch(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
}
