package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lorehold/internal/clock"
	"lorehold/internal/domain"
	"lorehold/internal/domain/models"
	"lorehold/internal/domain/repositories"
	"lorehold/internal/domain/services"
	"lorehold/internal/lock"
	"lorehold/internal/repository/memory"
	"lorehold/internal/repository/records"
	"lorehold/internal/schema"
)

// gatedDocumentRepository stalls the persist of one specific document so a
// test can interleave a competing write between a service's uniqueness check
// and its update.
type gatedDocumentRepository struct {
	repositories.DocumentRepository
	gateID  string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	if doc.ID == g.gateID {
		g.once.Do(func() {
			close(g.entered)
			<-g.release
		})
	}
	return g.DocumentRepository.Update(ctx, doc)
}

// gatedGameSystemRepository is the same gate for game system updates.
type gatedGameSystemRepository struct {
	repositories.GameSystemRepository
	gateID  string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedGameSystemRepository) Update(ctx context.Context, system *models.GameSystem) error {
	if system.ID == g.gateID {
		g.once.Do(func() {
			close(g.entered)
			<-g.release
		})
	}
	return g.GameSystemRepository.Update(ctx, system)
}

func TestConcurrentDocumentRenameKeepsDisplayNameUnique(t *testing.T) {
	ctx := context.Background()

	store := memory.NewStore()
	blobs := memory.NewBlobStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	systemRepo := records.NewGameSystemRepository(store)
	docRepo := records.NewDocumentRepository(store)
	worldRepo := records.NewWorldRepository(store)

	clk := clock.NewFake(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	manager := lock.NewManager(clk, 30*time.Minute, logger)
	guard := lock.NewGuard(manager)

	gated := &gatedDocumentRepository{
		DocumentRepository: docRepo,
		entered:            make(chan struct{}),
		release:            make(chan struct{}),
	}
	systems := NewGameSystemService(systemRepo, worldRepo, guard, manager, logger)
	docs := NewDocumentService(gated, systemRepo, blobs, guard, schema.NewValidator(), logger)

	system, err := systems.CreateGameSystem(ctx, &services.CreateGameSystemRequest{Name: "Dragon Realms", OwnerID: "alice"})
	require.NoError(t, err)

	first, err := docs.CreateDocument(ctx, uploadRequest(system.ID, "a.md", "First", []byte("v1")))
	require.NoError(t, err)
	second, err := docs.CreateDocument(ctx, uploadRequest(system.ID, "b.md", "Second", []byte("v1")))
	require.NoError(t, err)

	gated.gateID = first.ID
	name := "Shared"

	firstErr := make(chan error, 1)
	go func() {
		_, err := docs.UpdateDocument(ctx, first.ID, "alice", &services.UpdateDocumentRequest{DisplayName: &name})
		firstErr <- err
	}()

	// The first rename has passed its uniqueness check and stalled mid-persist.
	<-gated.entered

	secondErr := make(chan error, 1)
	go func() {
		_, err := docs.UpdateDocument(ctx, second.ID, "alice", &services.UpdateDocumentRequest{DisplayName: &name})
		secondErr <- err
	}()

	// The competing rename must wait on the per-system critical section
	// rather than run its own check against the stale state.
	select {
	case err := <-secondErr:
		t.Fatalf("second rename finished while the first held the critical section: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(gated.release)

	require.NoError(t, <-firstErr)
	assert.ErrorIs(t, <-secondErr, domain.ErrConflict)

	active, err := docRepo.ListActiveByGameSystem(ctx, system.ID)
	require.NoError(t, err)
	shared := 0
	for i := range active {
		if active[i].DisplayName == "Shared" {
			shared++
		}
	}
	assert.Equal(t, 1, shared, "exactly one active document may end up named Shared")
}

func TestConcurrentSystemRenameKeepsNameUnique(t *testing.T) {
	ctx := context.Background()

	store := memory.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	systemRepo := records.NewGameSystemRepository(store)
	worldRepo := records.NewWorldRepository(store)

	clk := clock.NewFake(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	manager := lock.NewManager(clk, 30*time.Minute, logger)
	guard := lock.NewGuard(manager)

	gated := &gatedGameSystemRepository{
		GameSystemRepository: systemRepo,
		entered:              make(chan struct{}),
		release:              make(chan struct{}),
	}
	systems := NewGameSystemService(gated, worldRepo, guard, manager, logger)

	one, err := systems.CreateGameSystem(ctx, &services.CreateGameSystemRequest{Name: "One", OwnerID: "alice"})
	require.NoError(t, err)
	two, err := systems.CreateGameSystem(ctx, &services.CreateGameSystemRequest{Name: "Two", OwnerID: "alice"})
	require.NoError(t, err)

	gated.gateID = one.ID
	target := "Shared"
	targetLower := "shared"

	firstErr := make(chan error, 1)
	go func() {
		_, err := systems.UpdateGameSystem(ctx, one.ID, "alice", &services.UpdateGameSystemRequest{Name: &target})
		firstErr <- err
	}()

	<-gated.entered

	secondErr := make(chan error, 1)
	go func() {
		_, err := systems.UpdateGameSystem(ctx, two.ID, "alice", &services.UpdateGameSystemRequest{Name: &targetLower})
		secondErr <- err
	}()

	select {
	case err := <-secondErr:
		t.Fatalf("second rename finished while the first held the critical section: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(gated.release)

	require.NoError(t, <-firstErr)
	assert.ErrorIs(t, <-secondErr, domain.ErrConflict)

	owned, err := systemRepo.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	shared := 0
	for i := range owned {
		if owned[i].Name == "Shared" || owned[i].Name == "shared" {
			shared++
		}
	}
	assert.Equal(t, 1, shared, "only one system may end up with the contested name")
}
