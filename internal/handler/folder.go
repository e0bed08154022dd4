package handler

import (
	"log/slog"
	"net/http"

	kbSvc "knowledgebase/internal/domain/services/kb"
	"knowledgebase/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService kbSvc.FolderService
	docService    kbSvc.DocumentService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService kbSvc.FolderService, docService kbSvc.DocumentService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		docService:    docService,
		logger:        logger,
	}
}

// CreateFolder creates a new folder
// POST /api/workspaces/{workspaceID}/folders
// Returns 409 with the existing folder's ID when the path is taken
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	sc, ok := scope(w, r)
	if !ok {
		return
	}

	var req kbSvc.CreateFolderRequest
	if !parseBody(w, r, &req) {
		return
	}
	req.WorkspaceID = sc.workspaceID
	req.UserID = sc.userID

	folder, err := h.folderService.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// ResolveFolderPath walks a slash-separated path, creating missing folders
// POST /api/workspaces/{workspaceID}/folders/resolve
func (h *FolderHandler) ResolveFolderPath(w http.ResponseWriter, r *http.Request) {
	sc, ok := scope(w, r)
	if !ok {
		return
	}

	var req struct {
		Path string `json:"path"`
	}
	if !parseBody(w, r, &req) {
		return
	}

	folder, err := h.folderService.ResolveFolderPath(r.Context(), sc.userID, sc.workspaceID, req.Path)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// GetFolder retrieves a folder
// GET /api/workspaces/{workspaceID}/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	sc, ok := scope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "folder ID")
	if !ok {
		return
	}

	folder, err := h.folderService.GetFolder(r.Context(), sc.userID, sc.workspaceID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// UpdateFolder renames and/or moves a folder, cascading to its subtree
// PATCH /api/workspaces/{workspaceID}/folders/{id}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	sc, ok := scope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "folder ID")
	if !ok {
		return
	}

	var req kbSvc.UpdateFolderRequest
	if !parseBody(w, r, &req) {
		return
	}

	folder, err := h.folderService.UpdateFolder(r.Context(), sc.userID, sc.workspaceID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder with everything beneath it
// DELETE /api/workspaces/{workspaceID}/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	sc, ok := scope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "folder ID")
	if !ok {
		return
	}

	if err := h.folderService.DeleteFolder(r.Context(), sc.userID, sc.workspaceID, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListChildren lists immediate child folders and documents
// GET /api/workspaces/{workspaceID}/folders/{id}/children
func (h *FolderHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	sc, ok := scope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "folder ID")
	if !ok {
		return
	}

	contents, err := h.folderService.ListChildren(r.Context(), sc.userID, sc.workspaceID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, contents)
}

// ListDocuments lists documents directly inside a folder
// GET /api/workspaces/{workspaceID}/folders/{id}/documents
func (h *FolderHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	sc, ok := scope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "folder ID")
	if !ok {
		return
	}

	docs, err := h.docService.ListDocuments(r.Context(), sc.userID, sc.workspaceID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}
