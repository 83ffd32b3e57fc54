package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"lorehold/internal/config"
	"lorehold/internal/domain/services"
	"lorehold/internal/httputil"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docs   services.DocumentService
	logger *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docs services.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docs:   docs,
		logger: logger,
	}
}

// CreateDocument ingests an uploaded file into a game system.
// POST /api/systems/{id}/documents (multipart/form-data: file, display_name, tags)
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "missing file part")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	displayName := r.FormValue("display_name")
	if displayName == "" {
		// Fall back to the filename without extension
		displayName = strings.TrimSuffix(header.Filename, fileExt(header.Filename))
	}

	req := &services.CreateDocumentRequest{
		GameSystemID: r.PathValue("id"),
		UserID:       httputil.GetUserID(r),
		Filename:     header.Filename,
		DisplayName:  displayName,
		Tags:         r.Form["tags"],
		Content:      content,
	}

	doc, err := h.docs.CreateDocument(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// ListDocuments lists active documents of a game system
// GET /api/systems/{id}/documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.ListDocuments(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}

// GetDocument retrieves a document with its owning system and version history
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.docs.GetDocumentWithRelations(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DownloadDocument streams a document's content.
// GET /api/documents/{id}/download
//
// The checksum doubles as the ETag; a matching If-None-Match short-circuits
// with 304.
func (h *DocumentHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	doc, data, err := h.docs.GetDocumentContent(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	etag := fmt.Sprintf("%q", doc.Checksum)
	w.Header().Set("ETag", etag)

	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// UpdateDocument changes a document's display name and/or tags
// PATCH /api/documents/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.docs.UpdateDocument(r.Context(), r.PathValue("id"), httputil.GetUserID(r), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument soft-deletes a document
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.docs.DeleteDocument(r.Context(), r.PathValue("id"), httputil.GetUserID(r)); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func fileExt(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return filename[i:]
	}
	return ""
}
