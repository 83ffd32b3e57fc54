package services

import (
	"context"

	"lorehold/internal/domain/models"
)

// DocumentService handles the document ingestion pipeline: type detection,
// uniqueness enforcement, schema validation, checksum, blob storage and
// soft-delete versioning.
type DocumentService interface {
	// CreateDocument ingests an uploaded file into a game system
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*models.Document, error)

	// GetDocument retrieves a document by ID
	GetDocument(ctx context.Context, id string) (*models.Document, error)

	// GetDocumentWithRelations retrieves a document joined with its owning
	// game system and its prior soft-deleted versions
	GetDocumentWithRelations(ctx context.Context, id string) (*models.DocumentWithRelations, error)

	// GetDocumentContent retrieves a document and its raw bytes for download
	GetDocumentContent(ctx context.Context, id string) (*models.Document, []byte, error)

	// ListDocuments lists active documents of a game system
	ListDocuments(ctx context.Context, gameSystemID string) ([]models.Document, error)

	// UpdateDocument changes a document's display name and/or tags
	UpdateDocument(ctx context.Context, id, userID string, req *UpdateDocumentRequest) (*models.Document, error)

	// DeleteDocument soft-deletes a document, retaining it as version history
	DeleteDocument(ctx context.Context, id, userID string) error
}

// CreateDocumentRequest represents a document upload
type CreateDocumentRequest struct {
	GameSystemID string   `json:"game_system_id"`
	UserID       string   `json:"-"` // Set by handler from identity context
	Filename     string   `json:"filename"`
	DisplayName  string   `json:"display_name"`
	Tags         []string `json:"tags,omitempty"`
	Content      []byte   `json:"-"` // Raw file bytes from the multipart part
}

// UpdateDocumentRequest represents a document metadata update.
// Only display name and tags are mutable; content changes are new uploads.
type UpdateDocumentRequest struct {
	DisplayName *string  `json:"display_name,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}
