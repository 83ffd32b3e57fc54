package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lorehold/internal/domain"
	"lorehold/internal/domain/models"
	"lorehold/internal/domain/services"
)

const bestiarySchema = `{
	"type": "object",
	"required": ["name", "hit_points"],
	"properties": {
		"name": {"type": "string"},
		"hit_points": {"type": "integer", "minimum": 1}
	}
}`

func uploadRequest(systemID, filename, displayName string, content []byte) *services.CreateDocumentRequest {
	return &services.CreateDocumentRequest{
		GameSystemID: systemID,
		UserID:       "alice",
		Filename:     filename,
		DisplayName:  displayName,
		Content:      content,
	}
}

func TestCreateDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("ingests a json upload", func(t *testing.T) {
		env := newTestEnv(t)
		system := env.mustCreateSystem(t, &services.CreateGameSystemRequest{Name: "Dragon Realms", OwnerID: "alice"})

		content := []byte(`{"name": "Goblin", "hit_points": 7}`)
		doc, err := env.documents.CreateDocument(ctx, uploadRequest(system.ID, "goblin.json", "Goblin", content))
		require.NoError(t, err)

		assert.Equal(t, models.DocumentTypeJSON, doc.Type)
		assert.Equal(t, "application/json", doc.MimeType)
		assert.Equal(t, int64(len(content)), doc.FileSize)
		assert.Equal(t, 1, doc.Version)
		assert.True(t, doc.Active)
		assert.Empty(t, doc.ValidationErrors)

		sum := sha256.Sum256(content)
		assert.Equal(t, hex.EncodeToString(sum[:]), doc.Checksum)
	})

	t.Run("detects type from extension", func(t *testing.T) {
		tests := []struct {
			filename string
			wantType models.DocumentType
			wantMime string
		}{
			{"rules.pdf", models.DocumentTypePDF, "application/pdf"},
			{"notes.md", models.DocumentTypeMarkdown, "text/markdown"},
			{"notes.markdown", models.DocumentTypeMarkdown, "text/markdown"},
			{"DATA.JSON", models.DocumentTypeJSON, "application/json"},
		}

		env := newTestEnv(t)
		system := env.mustCreateSystem(t, &services.CreateGameSystemRequest{Name: "Dragon Realms", OwnerID: "alice"})

		for _, tt := range tests {
			content := []byte("content")
			if tt.wantType == models.DocumentTypeJSON {
				content = []byte(`{}`)
			}
			doc, err := env.documents.CreateDocument(ctx, uploadRequest(system.ID, tt.filename, tt.filename, content))
			require.NoError(t, err, tt.filename)
			assert.Equal(t, tt.wantType, doc.Type, tt.filename)
			assert.Equal(t, tt.wantMime, doc.MimeType, tt.filename)
		}
	})

	t.Run("rejects unsupported extensions", func(t *testing.T) {
		env := newTestEnv(t)
		system := env.mustCreateSystem(t, &services.CreateGameSystemRequest{Name: "Dragon Realms", OwnerID: "alice"})

		_, err := env.documents.CreateDocument(ctx, uploadRequest(system.ID, "virus.exe", "Nope", []byte("x")))
		assert.ErrorIs(t, err, domain.ErrUnsupported)
	})

	t.Run("malformed json aborts and persists nothing", func(t *testing.T) {
		env := newTestEnv(t)
		system := env.mustCreateSystem(t, &services.CreateGameSystemRequest{Name: "Dragon Realms", OwnerID: "alice"})

		_, err := env.documents.CreateDocument(ctx, uploadRequest(system.ID, "broken.json", "Broken", []byte(`{"name":`)))
		assert.ErrorIs(t, err, domain.ErrMalformed)

		docs, err := env.documents.ListDocuments(ctx, system.ID)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("schema violations are recorded, not fatal", func(t *testing.T) {
		env := newTestEnv(t)
		system := env.mustCreateSystem(t, &services.CreateGameSystemRequest{
			Name:             "Dragon Realms",
			OwnerID:          "alice",
			ValidationSchema: json.RawMessage(bestiarySchema),
		})

		doc, err := env.documents.CreateDocument(ctx, uploadRequest(system.ID, "goblin.json", "Goblin", []byte(`{"name": "Goblin"}`)))
		require.NoError(t, err)
		require.Len(t, doc.ValidationErrors, 1)
		assert.Contains(t, doc.ValidationErrors[0], "hit_points")
	})

	t.Run("non-json uploads skip schema validation", func(t *testing.T) {
		env := newTestEnv(t)
		system := env.mustCreateSystem(t, &services.CreateGameSystemRequest{
			Name:             "Dragon Realms",
			OwnerID:          "alice",
			ValidationSchema: json.RawMessage(bestiarySchema),
		})

		doc, err := env.documents.CreateDocument(ctx, uploadRequest(system.ID, "notes.md", "Notes", []byte("# Goblins")))
		require.NoError(t, err)
		assert.Empty(t, doc.ValidationErrors)
	})

	t.Run("duplicate display name among active documents conflicts", func(t *testing.T) {
		env := newTestEnv(t)
		system := env.mustCreateSystem(t, &services.CreateGameSystemRequest{Name: "Dragon Realms", OwnerID: "alice"})

		_, err := env.documents.CreateDocument(ctx, uploadRequest(system.ID, "a.md", "Rules", []byte("v1")))
		require.NoError(t, err)

		_, err = env.documents.CreateDocument(ctx, uploadRequest(system.ID, "b.md", "Rules", []byte("v2")))
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("blocked while another user holds the system lock", func(t *testing.T) {
		env := newTestEnv(t)
		system := env.mustCreateSystem(t, &services.CreateGameSystemRequest{Name: "Dragon Realms", OwnerID: "alice"})

		_, err := env.locks.Acquire(system.ID, "bob", 0)
		require.NoError(t, err)

		_, err = env.documents.CreateDocument(ctx, uploadRequest(system.ID, "a.md", "Rules", []byte("v1")))
		var conflict *domain.LockConflictError
		assert.True(t, errors.As(err, &conflict))
	})

	t.Run("whitespace-only display name is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		system := env.mustCreateSystem(t, &services.CreateGameSystemRequest{Name: "Dragon Realms", OwnerID: "alice"})

		_, err := env.documents.CreateDocument(ctx, uploadRequest(system.ID, "rules.md", "   ", []byte("v1")))
		assert.ErrorIs(t, err, domain.ErrValidation)

		docs, err := env.documents.ListDocuments(ctx, system.ID)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("normalizes tags", func(t *testing.T) {
		env := newTestEnv(t)
		system := env.mustCreateSystem(t, &services.CreateGameSystemRequest{Name: "Dragon Realms", OwnerID: "alice"})

		req := uploadRequest(system.ID, "a.md", "Rules", []byte("v1"))
		req.Tags = []string{" monsters ", "core", "monsters", "", "core"}
		doc, err := env.documents.CreateDocument(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, []string{"core", "monsters"}, doc.Tags)
	})
}

func TestDocumentVersioning(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	system := env.mustCreateSystem(t, &services.CreateGameSystemRequest{Name: "Dragon Realms", OwnerID: "alice"})

	v1, err := env.documents.CreateDocument(ctx, uploadRequest(system.ID, "rules.md", "Rules", []byte("v1")))
	require.NoError(t, err)
	assert.Equal(t, 1, v1.Version)

	require.NoError(t, env.documents.DeleteDocument(ctx, v1.ID, "alice"))

	v2, err := env.documents.CreateDocument(ctx, uploadRequest(system.ID, "rules.md", "Rules", []byte("v2")))
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)

	// Only the live document shows up in listings.
	docs, err := env.documents.ListDocuments(ctx, system.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, v2.ID, docs[0].ID)

	// The soft-deleted predecessor appears as version history.
	withRel, err := env.documents.GetDocumentWithRelations(ctx, v2.ID)
	require.NoError(t, err)
	require.NotNil(t, withRel.GameSystem)
	assert.Equal(t, system.ID, withRel.GameSystem.ID)
	require.Len(t, withRel.PreviousVersions, 1)
	assert.Equal(t, v1.ID, withRel.PreviousVersions[0].ID)
	assert.False(t, withRel.PreviousVersions[0].Active)
}

func TestUpdateDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("renames and retags", func(t *testing.T) {
		env := newTestEnv(t)
		system := env.mustCreateSystem(t, &services.CreateGameSystemRequest{Name: "Dragon Realms", OwnerID: "alice"})
		doc, err := env.documents.CreateDocument(ctx, uploadRequest(system.ID, "rules.md", "Rules", []byte("v1")))
		require.NoError(t, err)

		name := "Core Rules"
		updated, err := env.documents.UpdateDocument(ctx, doc.ID, "alice", &services.UpdateDocumentRequest{
			DisplayName: &name,
			Tags:        []string{"core"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Core Rules", updated.DisplayName)
		assert.Equal(t, []string{"core"}, updated.Tags)
	})

	t.Run("rename onto another active document conflicts", func(t *testing.T) {
		env := newTestEnv(t)
		system := env.mustCreateSystem(t, &services.CreateGameSystemRequest{Name: "Dragon Realms", OwnerID: "alice"})
		_, err := env.documents.CreateDocument(ctx, uploadRequest(system.ID, "a.md", "Rules", []byte("v1")))
		require.NoError(t, err)
		other, err := env.documents.CreateDocument(ctx, uploadRequest(system.ID, "b.md", "Lore", []byte("v1")))
		require.NoError(t, err)

		name := "Rules"
		_, err = env.documents.UpdateDocument(ctx, other.ID, "alice", &services.UpdateDocumentRequest{DisplayName: &name})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("updating a soft-deleted document reads as not found", func(t *testing.T) {
		env := newTestEnv(t)
		system := env.mustCreateSystem(t, &services.CreateGameSystemRequest{Name: "Dragon Realms", OwnerID: "alice"})
		doc, err := env.documents.CreateDocument(ctx, uploadRequest(system.ID, "rules.md", "Rules", []byte("v1")))
		require.NoError(t, err)
		require.NoError(t, env.documents.DeleteDocument(ctx, doc.ID, "alice"))

		name := "Renamed"
		_, err = env.documents.UpdateDocument(ctx, doc.ID, "alice", &services.UpdateDocumentRequest{DisplayName: &name})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("blocked while another user holds the system lock", func(t *testing.T) {
		env := newTestEnv(t)
		system := env.mustCreateSystem(t, &services.CreateGameSystemRequest{Name: "Dragon Realms", OwnerID: "alice"})
		doc, err := env.documents.CreateDocument(ctx, uploadRequest(system.ID, "rules.md", "Rules", []byte("v1")))
		require.NoError(t, err)

		_, err = env.locks.Acquire(system.ID, "bob", 0)
		require.NoError(t, err)

		name := "Renamed"
		_, err = env.documents.UpdateDocument(ctx, doc.ID, "alice", &services.UpdateDocumentRequest{DisplayName: &name})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestDeleteDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting twice reads as not found", func(t *testing.T) {
		env := newTestEnv(t)
		system := env.mustCreateSystem(t, &services.CreateGameSystemRequest{Name: "Dragon Realms", OwnerID: "alice"})
		doc, err := env.documents.CreateDocument(ctx, uploadRequest(system.ID, "rules.md", "Rules", []byte("v1")))
		require.NoError(t, err)

		require.NoError(t, env.documents.DeleteDocument(ctx, doc.ID, "alice"))
		err = env.documents.DeleteDocument(ctx, doc.ID, "alice")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("record survives as inactive after blob cleanup", func(t *testing.T) {
		env := newTestEnv(t)
		system := env.mustCreateSystem(t, &services.CreateGameSystemRequest{Name: "Dragon Realms", OwnerID: "alice"})
		doc, err := env.documents.CreateDocument(ctx, uploadRequest(system.ID, "rules.md", "Rules", []byte("v1")))
		require.NoError(t, err)

		require.NoError(t, env.documents.DeleteDocument(ctx, doc.ID, "alice"))

		kept, err := env.documents.GetDocument(ctx, doc.ID)
		require.NoError(t, err)
		assert.False(t, kept.Active)

		_, _, err = env.documents.GetDocumentContent(ctx, doc.ID)
		assert.Error(t, err)
	})
}

func TestGetDocumentContent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	system := env.mustCreateSystem(t, &services.CreateGameSystemRequest{Name: "Dragon Realms", OwnerID: "alice"})

	content := []byte("# Rules")
	doc, err := env.documents.CreateDocument(ctx, uploadRequest(system.ID, "rules.md", "Rules", content))
	require.NoError(t, err)

	got, data, err := env.documents.GetDocumentContent(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, content, data)
}

func TestListDocumentsUnknownSystem(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.documents.ListDocuments(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
