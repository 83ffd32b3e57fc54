package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/jackc/pgx/v5/pgxpool"

	"lorehold/internal/domain"
	"lorehold/internal/domain/repositories"
)

// Collection names come from a fixed set inside the codebase, but the guard
// keeps a stray value from ever reaching the interpolated table name.
var collectionName = regexp.MustCompile(`^[a-z_]+$`)

// Store implements the generic keyed-collection interface on a pgx pool.
// Tables are created on demand, one per collection, prefixed per
// environment (dev_, test_, prod_).
type Store struct {
	pool   *pgxpool.Pool
	prefix string
	logger *slog.Logger
}

// NewStore creates a Postgres-backed store.
func NewStore(pool *pgxpool.Pool, prefix string, logger *slog.Logger) *Store {
	return &Store{
		pool:   pool,
		prefix: prefix,
		logger: logger,
	}
}

// EnsureSchema creates the tables for the known collections if they do not
// exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, collection := range []string{
		repositories.CollectionGameSystems,
		repositories.CollectionDocuments,
		repositories.CollectionWorlds,
	} {
		table, err := s.table(collection)
		if err != nil {
			return err
		}
		query := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				record JSONB NOT NULL
			)
		`, table)
		if _, err := s.pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("ensure table %s: %w", table, err)
		}
	}
	return nil
}

// Get retrieves a record by id.
func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, error) {
	table, err := s.table(collection)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT record FROM %s WHERE id = $1`, table)

	var record []byte
	if err := s.pool.QueryRow(ctx, query, id).Scan(&record); err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{
				Message: fmt.Sprintf("%s/%s not found", collection, id),
			}
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return record, nil
}

// List returns every record in a collection.
func (s *Store) List(ctx context.Context, collection string) ([][]byte, error) {
	table, err := s.table(collection)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT record FROM %s`, table)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var records [][]byte
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("scan %s record: %w", collection, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return records, nil
}

// Put inserts or replaces a record.
func (s *Store) Put(ctx context.Context, collection, id string, record []byte) error {
	table, err := s.table(collection)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, record) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET record = EXCLUDED.record
	`, table)

	if _, err := s.pool.Exec(ctx, query, id, record); err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a record. Absent ids are not an error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	table, err := s.table(collection)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table)

	if _, err := s.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) table(collection string) (string, error) {
	if !collectionName.MatchString(collection) {
		return "", fmt.Errorf("invalid collection name %q", collection)
	}
	return s.prefix + collection, nil
}
