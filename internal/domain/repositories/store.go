package repositories

import "context"

// Collection names used by the typed repositories.
const (
	CollectionGameSystems = "game_systems"
	CollectionDocuments   = "documents"
	CollectionWorlds      = "worlds"
)

// Store is a generic keyed-collection abstraction over the backing
// persistent store. Records are opaque JSON blobs; no transactions are
// assumed. Implementations: in-memory (tests, dev) and Postgres.
type Store interface {
	// Get retrieves a record by id. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, collection, id string) ([]byte, error)

	// List returns every record in a collection, in no particular order.
	List(ctx context.Context, collection string) ([][]byte, error)

	// Put inserts or replaces a record.
	Put(ctx context.Context, collection, id string, record []byte) error

	// Delete removes a record. Deleting an absent id is not an error.
	Delete(ctx context.Context, collection, id string) error
}
