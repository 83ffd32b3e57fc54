package models

import "time"

// DocumentType identifies the content format of an uploaded document.
type DocumentType string

const (
	DocumentTypeJSON     DocumentType = "JSON"
	DocumentTypePDF      DocumentType = "PDF"
	DocumentTypeMarkdown DocumentType = "MARKDOWN"
)

// Document is a file attached to a game system. GameSystemID is a weak
// reference; the owning system is resolved by lookup.
//
// Among active documents of one game system, DisplayName is unique.
// Soft-deleted documents (Active=false) are retained as version history for
// later documents created under the same game system and display name.
type Document struct {
	ID               string       `json:"id"`
	GameSystemID     string       `json:"game_system_id"`
	Filename         string       `json:"filename"`
	DisplayName      string       `json:"display_name"`
	Type             DocumentType `json:"type"`
	StorageRef       string       `json:"storage_ref"`
	FileSize         int64        `json:"file_size"`
	MimeType         string       `json:"mime_type"`
	UploadedBy       string       `json:"uploaded_by"`
	Checksum         string       `json:"checksum"`
	ValidationErrors []string     `json:"validation_errors"`
	Tags             []string     `json:"tags"`
	Version          int          `json:"version"`
	Active           bool         `json:"active"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// DocumentWithRelations joins a document with its owning game system and the
// inactive lower-versioned documents that share its display name.
type DocumentWithRelations struct {
	Document
	GameSystem       *GameSystem `json:"game_system,omitempty"`
	PreviousVersions []Document  `json:"previous_versions"`
}
