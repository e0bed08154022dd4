package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"

	"knowledgebase/internal/httputil"
	"knowledgebase/internal/storage/blob"
)

// SignedBlobStore is a blob store that serves its own signed URLs
type SignedBlobStore interface {
	Verify(token, key, op string) (*blob.BlobClaims, error)
	Open(key string) (*os.File, string, error)
	WriteStream(ctx context.Context, key string, r io.Reader, mimeType string, limit int64) (int64, error)
}

// BlobHandler serves signed upload and download URLs of the filesystem blob
// store. Requests authenticate with the token in the URL, not a bearer token.
type BlobHandler struct {
	store  SignedBlobStore
	logger *slog.Logger
}

// NewBlobHandler creates a new blob handler
func NewBlobHandler(store SignedBlobStore, logger *slog.Logger) *BlobHandler {
	return &BlobHandler{
		store:  store,
		logger: logger,
	}
}

// GetBlob streams a blob
// GET /blobs/{key...}?token=
func (h *BlobHandler) GetBlob(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if _, err := h.store.Verify(r.URL.Query().Get("token"), key, blob.OpGet); err != nil {
		handleError(w, err)
		return
	}

	f, contentType, err := h.store.Open(key)
	if err != nil {
		handleError(w, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=300")
	http.ServeContent(w, r, "", info.ModTime(), f)
}

// PutBlob stores the request body under the signed key
// PUT /blobs/{key...}?token=
func (h *BlobHandler) PutBlob(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	claims, err := h.store.Verify(r.URL.Query().Get("token"), key, blob.OpPut)
	if err != nil {
		handleError(w, err)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if claims.ContentType != "" {
		mediaType, _, _ := mime.ParseMediaType(contentType)
		if mediaType != claims.ContentType {
			httputil.RespondError(w, http.StatusBadRequest, "content type must be "+claims.ContentType)
			return
		}
		contentType = claims.ContentType
	}
	if claims.MaxBytes > 0 && r.ContentLength > claims.MaxBytes {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "blob exceeds size limit")
		return
	}

	n, err := h.store.WriteStream(r.Context(), key, r.Body, contentType, claims.MaxBytes)
	if err != nil {
		if errors.Is(err, blob.ErrTooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "blob exceeds size limit")
			return
		}
		handleError(w, err)
		return
	}

	h.logger.Debug("blob uploaded", "key", key, "bytes", n)
	httputil.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"key":  key,
		"size": n,
	})
}
