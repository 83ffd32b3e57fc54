package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"lorehold/internal/domain"
)

// BlobStore keeps raw content bytes in a map keyed by an opaque reference.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewBlobStore creates an empty in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		blobs: make(map[string][]byte),
	}
}

// Store saves the bytes and returns an opaque reference.
func (b *BlobStore) Store(ctx context.Context, data []byte, originalName, parentID string) (string, error) {
	ref := fmt.Sprintf("%s/%s-%s", parentID, uuid.NewString(), originalName)

	b.mu.Lock()
	defer b.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	b.blobs[ref] = cp
	return ref, nil
}

// Fetch returns the bytes stored under ref.
func (b *BlobStore) Fetch(ctx context.Context, ref string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.blobs[ref]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("blob %s not found", ref)}
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Delete removes the bytes stored under ref.
func (b *BlobStore) Delete(ctx context.Context, ref string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.blobs[ref]; !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("blob %s not found", ref)}
	}
	delete(b.blobs, ref)
	return nil
}
