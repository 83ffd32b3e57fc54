package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"lorehold/internal/config"
	"lorehold/internal/domain"
	"lorehold/internal/domain/models"
	"lorehold/internal/domain/repositories"
	"lorehold/internal/domain/services"
	"lorehold/internal/lock"
	"lorehold/internal/schema"
)

// fileType pairs a document type with its mime type, derived from the
// uploaded filename's extension.
type fileType struct {
	docType models.DocumentType
	mime    string
}

var fileTypes = map[string]fileType{
	".json":     {models.DocumentTypeJSON, "application/json"},
	".pdf":      {models.DocumentTypePDF, "application/pdf"},
	".md":       {models.DocumentTypeMarkdown, "text/markdown"},
	".markdown": {models.DocumentTypeMarkdown, "text/markdown"},
}

// documentService implements the DocumentService interface: the ingestion
// pipeline plus soft-delete versioning.
type documentService struct {
	docs      repositories.DocumentRepository
	systems   repositories.GameSystemRepository
	blobs     repositories.BlobStore
	guard     *lock.Guard
	validator *schema.Validator
	keyed     keyedMutex
	logger    *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docs repositories.DocumentRepository,
	systems repositories.GameSystemRepository,
	blobs repositories.BlobStore,
	guard *lock.Guard,
	validator *schema.Validator,
	logger *slog.Logger,
) services.DocumentService {
	return &documentService{
		docs:      docs,
		systems:   systems,
		blobs:     blobs,
		guard:     guard,
		validator: validator,
		logger:    logger,
	}
}

// CreateDocument ingests an uploaded file into a game system.
//
// Schema violations are recorded on the document, never aborting creation;
// a JSON file that does not parse aborts the whole operation and nothing is
// persisted.
func (s *documentService) CreateDocument(ctx context.Context, req *services.CreateDocumentRequest) (*models.Document, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	system, err := s.systems.GetByID(ctx, req.GameSystemID)
	if err != nil {
		return nil, err
	}

	if err := s.guard.CheckWrite(system.ID, req.UserID); err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if err := validateName(displayName, config.MaxDisplayNameLength); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	ft, err := detectFileType(req.Filename)
	if err != nil {
		return nil, err
	}

	validationErrors := []string{}
	if ft.docType == models.DocumentTypeJSON {
		var parsed interface{}
		if err := json.Unmarshal(req.Content, &parsed); err != nil {
			return nil, &domain.MalformedError{
				Message: fmt.Sprintf("file %s is not valid JSON: %v", req.Filename, err),
			}
		}
		if system.HasValidationSchema() {
			if msgs := s.validator.Validate(parsed, system.ValidationSchema); len(msgs) > 0 {
				validationErrors = msgs
			}
		}
	}

	sum := sha256.Sum256(req.Content)
	checksum := hex.EncodeToString(sum[:])

	// Uniqueness and version assignment are check-then-act; serialize them
	// per game system.
	unlock := s.keyed.lock("system:" + system.ID)
	defer unlock()

	if err := s.checkDisplayNameAvailable(ctx, system.ID, displayName, ""); err != nil {
		return nil, err
	}

	version, err := s.nextVersion(ctx, system.ID, displayName)
	if err != nil {
		return nil, err
	}

	ref, err := s.blobs.Store(ctx, req.Content, req.Filename, system.ID)
	if err != nil {
		return nil, fmt.Errorf("store document content: %w", err)
	}

	now := time.Now()
	doc := &models.Document{
		ID:               uuid.NewString(),
		GameSystemID:     system.ID,
		Filename:         req.Filename,
		DisplayName:      displayName,
		Type:             ft.docType,
		StorageRef:       ref,
		FileSize:         int64(len(req.Content)),
		MimeType:         ft.mime,
		UploadedBy:       req.UserID,
		Checksum:         checksum,
		ValidationErrors: validationErrors,
		Tags:             normalizeTags(req.Tags),
		Version:          version,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"game_system_id", doc.GameSystemID,
		"display_name", doc.DisplayName,
		"type", doc.Type,
		"version", doc.Version,
		"validation_errors", len(doc.ValidationErrors),
	)

	return doc, nil
}

// GetDocument retrieves a document by ID
func (s *documentService) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return s.docs.GetByID(ctx, id)
}

// GetDocumentWithRelations retrieves a document joined with its owning game
// system and prior soft-deleted versions.
func (s *documentService) GetDocumentWithRelations(ctx context.Context, id string) (*models.DocumentWithRelations, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &models.DocumentWithRelations{
		Document:         *doc,
		PreviousVersions: []models.Document{},
	}

	// Weak reference: a missing owning system leaves the join empty.
	if system, err := s.systems.GetByID(ctx, doc.GameSystemID); err == nil {
		out.GameSystem = system
	}

	versions, err := s.docs.ListVersions(ctx, doc.GameSystemID, doc.DisplayName)
	if err != nil {
		return nil, err
	}
	for _, v := range versions {
		if v.Version < doc.Version && !v.Active {
			out.PreviousVersions = append(out.PreviousVersions, v)
		}
	}
	sort.Slice(out.PreviousVersions, func(i, j int) bool {
		return out.PreviousVersions[i].Version > out.PreviousVersions[j].Version
	})

	return out, nil
}

// GetDocumentContent retrieves a document and its raw bytes for download
func (s *documentService) GetDocumentContent(ctx context.Context, id string) (*models.Document, []byte, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.blobs.Fetch(ctx, doc.StorageRef)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch document content: %w", err)
	}
	return doc, data, nil
}

// ListDocuments lists active documents of a game system
func (s *documentService) ListDocuments(ctx context.Context, gameSystemID string) ([]models.Document, error) {
	if _, err := s.systems.GetByID(ctx, gameSystemID); err != nil {
		return nil, err
	}
	return s.docs.ListActiveByGameSystem(ctx, gameSystemID)
}

// UpdateDocument changes a document's display name and/or tags
func (s *documentService) UpdateDocument(ctx context.Context, id, userID string, req *services.UpdateDocumentRequest) (*models.Document, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.Active {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("document %s not found", id)}
	}

	if err := s.guard.CheckWrite(doc.GameSystemID, userID); err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		displayName := strings.TrimSpace(*req.DisplayName)
		if err := validateName(displayName, config.MaxDisplayNameLength); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		if displayName != doc.DisplayName {
			// The uniqueness check is only valid while no concurrent rename
			// can land between it and the persist below, so the critical
			// section holds until this update returns.
			unlock := s.keyed.lock("system:" + doc.GameSystemID)
			defer unlock()
			if err := s.checkDisplayNameAvailable(ctx, doc.GameSystemID, displayName, doc.ID); err != nil {
				return nil, err
			}
		}
		doc.DisplayName = displayName
	}

	if req.Tags != nil {
		doc.Tags = normalizeTags(req.Tags)
	}
	doc.UpdatedAt = time.Now()

	if err := s.docs.Update(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document updated",
		"id", doc.ID,
		"display_name", doc.DisplayName,
		"user_id", userID,
	)

	return doc, nil
}

// DeleteDocument soft-deletes a document. The record is never physically
// removed; it becomes version history for any later document created under
// the same game system and display name. Blob cleanup is best-effort.
func (s *documentService) DeleteDocument(ctx context.Context, id, userID string) error {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !doc.Active {
		return &domain.NotFoundError{Message: fmt.Sprintf("document %s not found", id)}
	}

	if err := s.guard.CheckWrite(doc.GameSystemID, userID); err != nil {
		return err
	}

	doc.Active = false
	doc.UpdatedAt = time.Now()
	if err := s.docs.Update(ctx, doc); err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, doc.StorageRef); err != nil {
		// The soft delete already succeeded; an orphaned blob must not
		// surface as a failure.
		s.logger.Warn("blob cleanup failed",
			"id", doc.ID,
			"storage_ref", doc.StorageRef,
			"error", err,
		)
	}

	s.logger.Info("document deleted", "id", doc.ID, "user_id", userID)
	return nil
}

// checkDisplayNameAvailable enforces display-name uniqueness among active
// documents of a game system. excludeID skips the document being renamed.
func (s *documentService) checkDisplayNameAvailable(ctx context.Context, gameSystemID, displayName, excludeID string) error {
	active, err := s.docs.ListActiveByGameSystem(ctx, gameSystemID)
	if err != nil {
		return err
	}
	for i := range active {
		if active[i].ID == excludeID {
			continue
		}
		if active[i].DisplayName == displayName {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("document named '%s' already exists in this game system", displayName),
				ResourceType: "document",
				ResourceID:   active[i].ID,
			}
		}
	}
	return nil
}

// nextVersion continues the version history of soft-deleted predecessors
// sharing the display name; a fresh name starts at 1.
func (s *documentService) nextVersion(ctx context.Context, gameSystemID, displayName string) (int, error) {
	versions, err := s.docs.ListVersions(ctx, gameSystemID, displayName)
	if err != nil {
		return 0, err
	}
	highest := 0
	for i := range versions {
		if versions[i].Version > highest {
			highest = versions[i].Version
		}
	}
	return highest + 1, nil
}

// detectFileType derives the document type and mime type from the filename
// extension.
func detectFileType(filename string) (fileType, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	ft, ok := fileTypes[ext]
	if !ok {
		return fileType{}, &domain.UnsupportedError{
			Message: fmt.Sprintf("unsupported file extension '%s' (expected .json, .pdf, .md or .markdown)", ext),
		}
	}
	return ft, nil
}

// normalizeTags trims, deduplicates and sorts tags into set form.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// validateCreateRequest validates a document upload request
func (s *documentService) validateCreateRequest(req *services.CreateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.GameSystemID, validation.Required),
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Filename, validation.Required),
		validation.Field(&req.DisplayName,
			validation.Required,
			validation.Length(1, config.MaxDisplayNameLength),
		),
	)
}
