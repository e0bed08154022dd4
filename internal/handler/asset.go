package handler

import (
	"log/slog"
	"net/http"

	kbSvc "knowledgebase/internal/domain/services/kb"
	"knowledgebase/internal/httputil"
)

// AssetHandler handles image asset HTTP requests. Asset bytes never pass
// through it: clients upload and download with signed blob URLs.
type AssetHandler struct {
	assetService kbSvc.AssetService
	logger       *slog.Logger
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(assetService kbSvc.AssetService, logger *slog.Logger) *AssetHandler {
	return &AssetHandler{
		assetService: assetService,
		logger:       logger,
	}
}

// CreateAssetUpload registers an asset and returns its upload target
// POST /api/workspaces/{workspaceID}/documents/{id}/assets
func (h *AssetHandler) CreateAssetUpload(w http.ResponseWriter, r *http.Request) {
	sc, ok := scope(w, r)
	if !ok {
		return
	}
	docID, ok := pathID(w, r, "id", "document ID")
	if !ok {
		return
	}

	var req kbSvc.CreateAssetUploadRequest
	if !parseBody(w, r, &req) {
		return
	}
	req.WorkspaceID = sc.workspaceID
	req.UserID = sc.userID
	req.DocumentID = docID

	upload, err := h.assetService.CreateAssetUpload(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, upload)
}

// ListAssets lists a document's assets
// GET /api/workspaces/{workspaceID}/documents/{id}/assets
func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	sc, ok := scope(w, r)
	if !ok {
		return
	}
	docID, ok := pathID(w, r, "id", "document ID")
	if !ok {
		return
	}

	assets, err := h.assetService.ListAssets(r.Context(), sc.userID, sc.workspaceID, docID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, assets)
}

// GetDownloadURL returns a signed download URL
// GET /api/workspaces/{workspaceID}/assets/{id}/url
func (h *AssetHandler) GetDownloadURL(w http.ResponseWriter, r *http.Request) {
	sc, ok := scope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "asset ID")
	if !ok {
		return
	}

	download, err := h.assetService.GetAssetDownloadURL(r.Context(), sc.userID, sc.workspaceID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, download)
}

// DeleteAsset deletes an asset
// DELETE /api/workspaces/{workspaceID}/assets/{id}
func (h *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	sc, ok := scope(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "asset ID")
	if !ok {
		return
	}

	if err := h.assetService.DeleteAsset(r.Context(), sc.userID, sc.workspaceID, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
