package handler

import (
	"log/slog"
	"net/http"

	kbSvc "knowledgebase/internal/domain/services/kb"
	"knowledgebase/internal/httputil"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService kbSvc.DocumentService
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService kbSvc.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// CreateDocument creates a new document
// POST /api/workspaces/{workspaceID}/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	sc, ok := scope(w, r)
	if !ok {
		return
	}

	var req kbSvc.CreateDocumentRequest
	if !parseBody(w, r, &req) {
		return
	}
	req.WorkspaceID = sc.workspaceID
	req.UserID = sc.userID

	doc, err := h.docService.CreateDocument(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument returns a document with content, tags, links and backlinks
// GET /api/workspaces/{workspaceID}/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	sc, ok := scope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "document ID")
	if !ok {
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), sc.userID, sc.workspaceID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// UpdateDocument replaces title and content
// PUT /api/workspaces/{workspaceID}/documents/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	sc, ok := scope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "document ID")
	if !ok {
		return
	}

	var req kbSvc.UpdateDocumentRequest
	if !parseBody(w, r, &req) {
		return
	}

	doc, err := h.docService.UpdateDocument(r.Context(), sc.userID, sc.workspaceID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// PatchDocument renames and/or moves a document. Rename is applied first.
// PATCH /api/workspaces/{workspaceID}/documents/{id}
func (h *DocumentHandler) PatchDocument(w http.ResponseWriter, r *http.Request) {
	sc, ok := scope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "document ID")
	if !ok {
		return
	}

	var req kbSvc.PatchDocumentRequest
	if !parseBody(w, r, &req) {
		return
	}
	if req.Title == nil && req.FolderID == nil {
		httputil.RespondError(w, http.StatusBadRequest, "title or folder_id is required")
		return
	}

	ctx := r.Context()
	var err error
	if req.Title != nil {
		if _, err = h.docService.RenameDocument(ctx, sc.userID, sc.workspaceID, id, *req.Title); err != nil {
			handleError(w, err)
			return
		}
	}
	if req.FolderID != nil {
		if _, err = h.docService.MoveDocument(ctx, sc.userID, sc.workspaceID, id, *req.FolderID); err != nil {
			handleError(w, err)
			return
		}
	}

	detail, err := h.docService.GetDocument(ctx, sc.userID, sc.workspaceID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, detail)
}

// DeleteDocument deletes a document and its assets
// DELETE /api/workspaces/{workspaceID}/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	sc, ok := scope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "document ID")
	if !ok {
		return
	}

	if err := h.docService.DeleteDocument(r.Context(), sc.userID, sc.workspaceID, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListDocumentsByTag lists documents carrying a tag
// GET /api/workspaces/{workspaceID}/tags/{tag}/documents
func (h *DocumentHandler) ListDocumentsByTag(w http.ResponseWriter, r *http.Request) {
	sc, ok := scope(w, r)
	if !ok {
		return
	}
	tag, ok := pathID(w, r, "tag", "tag")
	if !ok {
		return
	}

	docs, err := h.docService.ListDocumentsByTag(r.Context(), sc.userID, sc.workspaceID, tag)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}
