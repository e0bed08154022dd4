package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"knowledgebase/internal/domain"
	models "knowledgebase/internal/domain/models/kb"
	kbSvc "knowledgebase/internal/domain/services/kb"
	"knowledgebase/internal/httputil"
	"knowledgebase/internal/storage/blob"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubFolders records calls and returns canned results
type stubFolders struct {
	kbSvc.FolderService
	err       error
	lastReq   *kbSvc.CreateFolderRequest
	lastPatch *kbSvc.UpdateFolderRequest
}

func (s *stubFolders) CreateFolder(ctx context.Context, req *kbSvc.CreateFolderRequest) (*models.Folder, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Folder{ID: "f1", WorkspaceID: req.WorkspaceID, Name: req.Name, Path: "knowledge-base/" + strings.ToLower(req.Name)}, nil
}

func (s *stubFolders) GetFolder(ctx context.Context, userID, workspaceID, folderID string) (*models.Folder, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Folder{ID: folderID, WorkspaceID: workspaceID}, nil
}

func (s *stubFolders) UpdateFolder(ctx context.Context, userID, workspaceID, folderID string, req *kbSvc.UpdateFolderRequest) (*models.Folder, error) {
	s.lastPatch = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Folder{ID: folderID, Name: *req.Name}, nil
}

func (s *stubFolders) DeleteFolder(ctx context.Context, userID, workspaceID, folderID string) error {
	return s.err
}

// stubDocuments records rename/move order
type stubDocuments struct {
	kbSvc.DocumentService
	err   error
	calls []string
}

func (s *stubDocuments) GetDocument(ctx context.Context, userID, workspaceID, documentID string) (*models.DocumentDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.DocumentDetail{Document: models.Document{ID: documentID, Title: "Doc"}, Tags: []string{}}, nil
}

func (s *stubDocuments) RenameDocument(ctx context.Context, userID, workspaceID, documentID, title string) (*models.Document, error) {
	s.calls = append(s.calls, "rename:"+title)
	return &models.Document{ID: documentID, Title: title}, s.err
}

func (s *stubDocuments) MoveDocument(ctx context.Context, userID, workspaceID, documentID, targetFolderID string) (*models.Document, error) {
	s.calls = append(s.calls, "move:"+targetFolderID)
	return &models.Document{ID: documentID, FolderID: targetFolderID}, s.err
}

func newTestMux(folders kbSvc.FolderService, docs kbSvc.DocumentService, blobs *BlobHandler) *http.ServeMux {
	logger := discardLogger()
	mux := http.NewServeMux()
	RegisterRoutes(mux, Handlers{
		Folders:   NewFolderHandler(folders, docs, logger),
		Documents: NewDocumentHandler(docs, logger),
		Assets:    NewAssetHandler(nil, logger),
		Tree:      NewTreeHandler(nil, logger),
		Blobs:     blobs,
	})
	return mux
}

func do(t *testing.T, h http.Handler, method, target, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != "" {
		req = httputil.WithUserID(req, userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestFolderHandler_Create(t *testing.T) {
	folders := &stubFolders{}
	mux := newTestMux(folders, &stubDocuments{}, nil)

	rec := do(t, mux, http.MethodPost, "/api/workspaces/ws-1/folders", "user-1", `{"name":"Specs","parent_folder_id":"root"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if folders.lastReq.WorkspaceID != "ws-1" || folders.lastReq.UserID != "user-1" || *folders.lastReq.ParentFolderID != "root" {
		t.Errorf("request = %+v", folders.lastReq)
	}
	if got := decode(t, rec)["path"]; got != "knowledge-base/specs" {
		t.Errorf("path = %v", got)
	}
}

func TestHandleError_Mapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		check    func(t *testing.T, body map[string]interface{})
	}{
		{
			name:     "validation",
			err:      &domain.ValidationError{Message: "name is required"},
			wantCode: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]interface{}) {
				if body["detail"] != "name is required" {
					t.Errorf("detail = %v", body["detail"])
				}
			},
		},
		{
			name:     "wrapped not found",
			err:      fmt.Errorf("load folder: %w", &domain.NotFoundError{Message: "folder x not found"}),
			wantCode: http.StatusNotFound,
		},
		{
			name:     "sentinel not found",
			err:      fmt.Errorf("blob k: %w", domain.ErrNotFound),
			wantCode: http.StatusNotFound,
		},
		{
			name:     "forbidden",
			err:      &domain.ForbiddenError{Message: "cannot move the root folder"},
			wantCode: http.StatusForbidden,
		},
		{
			name:     "conflict carries the existing resource",
			err:      &domain.ConflictError{Message: "path taken", ResourceType: "folder", ResourceID: "f-existing"},
			wantCode: http.StatusConflict,
			check: func(t *testing.T, body map[string]interface{}) {
				if body["resource_id"] != "f-existing" || body["resource_type"] != "folder" {
					t.Errorf("extras = %v", body)
				}
			},
		},
		{
			name:     "storage inconsistency is surfaced",
			err:      &domain.StorageInconsistentError{Message: "content missing for doc-1", Key: "k"},
			wantCode: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]interface{}) {
				if body["detail"] != "content missing for doc-1" {
					t.Errorf("detail = %v", body["detail"])
				}
			},
		},
		{
			name:     "unexpected errors are masked",
			err:      fmt.Errorf("dial tcp: refused"),
			wantCode: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]interface{}) {
				if body["detail"] != "internal server error" {
					t.Errorf("detail = %v", body["detail"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(&stubFolders{err: tt.err}, &stubDocuments{}, nil)
			rec := do(t, mux, http.MethodGet, "/api/workspaces/ws-1/folders/f1", "user-1", "")
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("content type = %q", ct)
			}
			if tt.check != nil {
				tt.check(t, decode(t, rec))
			}
		})
	}
}

func TestFolderHandler_RequestErrors(t *testing.T) {
	mux := newTestMux(&stubFolders{}, &stubDocuments{}, nil)

	tests := []struct {
		name     string
		method   string
		target   string
		userID   string
		body     string
		wantCode int
	}{
		{"no user", http.MethodGet, "/api/workspaces/ws-1/folders/f1", "", "", http.StatusUnauthorized},
		{"malformed json", http.MethodPost, "/api/workspaces/ws-1/folders", "user-1", `{"name":`, http.StatusBadRequest},
		{"empty body", http.MethodPost, "/api/workspaces/ws-1/folders", "user-1", "", http.StatusBadRequest},
		{"delete", http.MethodDelete, "/api/workspaces/ws-1/folders/f1", "user-1", "", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, mux, tt.method, tt.target, tt.userID, tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func TestDocumentHandler_Patch(t *testing.T) {
	docs := &stubDocuments{}
	mux := newTestMux(&stubFolders{}, docs, nil)

	rec := do(t, mux, http.MethodPatch, "/api/workspaces/ws-1/documents/d1", "user-1", `{"title":"New","folder_id":"f2"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if strings.Join(docs.calls, ",") != "rename:New,move:f2" {
		t.Errorf("calls = %v, want rename before move", docs.calls)
	}

	rec = do(t, mux, http.MethodPatch, "/api/workspaces/ws-1/documents/d1", "user-1", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty patch status = %d, want 400", rec.Code)
	}
}

func TestDocumentHandler_PatchStopsOnRenameFailure(t *testing.T) {
	docs := &stubDocuments{err: &domain.ForbiddenError{Message: "no"}}
	mux := newTestMux(&stubFolders{}, docs, nil)

	rec := do(t, mux, http.MethodPatch, "/api/workspaces/ws-1/documents/d1", "viewer", `{"title":"New","folder_id":"f2"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if len(docs.calls) != 1 {
		t.Errorf("calls = %v, want move skipped", docs.calls)
	}
}

func TestHealthCheck(t *testing.T) {
	mux := newTestMux(&stubFolders{}, &stubDocuments{}, nil)
	rec := do(t, mux, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK || decode(t, rec)["status"] != "ok" {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}
}

func newBlobMux(t *testing.T) (*http.ServeMux, *blob.FSStore) {
	t.Helper()
	store, err := blob.NewFSStore(blob.FSConfig{
		Root:       t.TempDir(),
		BaseURL:    "http://kb.test",
		SigningKey: []byte("handler-test-key"),
	}, discardLogger())
	if err != nil {
		t.Fatalf("NewFSStore() error = %v", err)
	}
	return newTestMux(&stubFolders{}, &stubDocuments{}, NewBlobHandler(store, discardLogger())), store
}

func requestURI(t *testing.T, signed string) string {
	t.Helper()
	u, err := url.Parse(signed)
	if err != nil {
		t.Fatalf("parse %q: %v", signed, err)
	}
	return u.RequestURI()
}

func TestBlobHandler_UploadThenDownload(t *testing.T) {
	ctx := context.Background()
	mux, store := newBlobMux(t)
	key := "ws-1/assets/doc-1/diagram.png"

	target, err := store.GenerateUploadURL(ctx, key, "image/png", 16)
	if err != nil {
		t.Fatalf("GenerateUploadURL() error = %v", err)
	}

	put := httptest.NewRequest(target.Method, requestURI(t, target.URL), strings.NewReader("png-bytes"))
	put.Header.Set("Content-Type", "image/png")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, put)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}

	download, err := store.GenerateDownloadURL(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("GenerateDownloadURL() error = %v", err)
	}
	rec = do(t, mux, http.MethodGet, requestURI(t, download), "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("download status = %d", rec.Code)
	}
	if rec.Body.String() != "png-bytes" || rec.Header().Get("Content-Type") != "image/png" {
		t.Errorf("download = %q (%s)", rec.Body.String(), rec.Header().Get("Content-Type"))
	}

	// A download token cannot be replayed as an upload
	replay := httptest.NewRequest(http.MethodPut, requestURI(t, download), strings.NewReader("x"))
	replay.Header.Set("Content-Type", "image/png")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, replay)
	if rec.Code != http.StatusForbidden {
		t.Errorf("replayed token status = %d, want 403", rec.Code)
	}
}

func TestBlobHandler_UploadRejections(t *testing.T) {
	ctx := context.Background()
	mux, store := newBlobMux(t)
	key := "ws-1/assets/doc-1/photo.jpg"

	target, err := store.GenerateUploadURL(ctx, key, "image/jpeg", 4)
	if err != nil {
		t.Fatalf("GenerateUploadURL() error = %v", err)
	}
	uri := requestURI(t, target.URL)

	tests := []struct {
		name        string
		uri         string
		contentType string
		body        string
		wantCode    int
	}{
		{"wrong content type", uri, "image/png", "abc", http.StatusBadRequest},
		{"too large", uri, "image/jpeg", "too many bytes", http.StatusRequestEntityTooLarge},
		{"missing token", "/blobs/" + key, "image/jpeg", "abc", http.StatusUnauthorized},
		{"other key", strings.Replace(uri, "photo.jpg", "other.jpg", 1), "image/jpeg", "abc", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, tt.uri, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}

	if _, found, _ := store.GetContent(ctx, key); found {
		t.Error("rejected upload was stored")
	}
}

func TestBlobHandler_DownloadMissing(t *testing.T) {
	mux, store := newBlobMux(t)
	download, err := store.GenerateDownloadURL(context.Background(), "ws-1/assets/doc-1/gone.png", time.Minute)
	if err != nil {
		t.Fatalf("GenerateDownloadURL() error = %v", err)
	}
	rec := do(t, mux, http.MethodGet, requestURI(t, download), "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
