package handler

import "net/http"

// Handlers bundles every HTTP handler the server mounts. Blobs is nil when
// the blob store signs its own URLs (S3).
type Handlers struct {
	Folders   *FolderHandler
	Documents *DocumentHandler
	Assets    *AssetHandler
	Tree      *TreeHandler
	Blobs     *BlobHandler
}

// RegisterRoutes mounts the API on mux
func RegisterRoutes(mux *http.ServeMux, h Handlers) {
	mux.HandleFunc("GET /health", HealthCheck)

	const ws = "/api/workspaces/{workspaceID}"

	mux.HandleFunc("GET "+ws+"/tree", h.Tree.GetTree)

	// Folder routes
	mux.HandleFunc("POST "+ws+"/folders", h.Folders.CreateFolder)
	mux.HandleFunc("POST "+ws+"/folders/resolve", h.Folders.ResolveFolderPath)
	mux.HandleFunc("GET "+ws+"/folders/{id}", h.Folders.GetFolder)
	mux.HandleFunc("PATCH "+ws+"/folders/{id}", h.Folders.UpdateFolder)
	mux.HandleFunc("DELETE "+ws+"/folders/{id}", h.Folders.DeleteFolder)
	mux.HandleFunc("GET "+ws+"/folders/{id}/children", h.Folders.ListChildren)
	mux.HandleFunc("GET "+ws+"/folders/{id}/documents", h.Folders.ListDocuments)

	// Document routes
	mux.HandleFunc("POST "+ws+"/documents", h.Documents.CreateDocument)
	mux.HandleFunc("GET "+ws+"/documents/{id}", h.Documents.GetDocument)
	mux.HandleFunc("PUT "+ws+"/documents/{id}", h.Documents.UpdateDocument)
	mux.HandleFunc("PATCH "+ws+"/documents/{id}", h.Documents.PatchDocument)
	mux.HandleFunc("DELETE "+ws+"/documents/{id}", h.Documents.DeleteDocument)
	mux.HandleFunc("GET "+ws+"/tags/{tag}/documents", h.Documents.ListDocumentsByTag)

	// Asset routes
	mux.HandleFunc("POST "+ws+"/documents/{id}/assets", h.Assets.CreateAssetUpload)
	mux.HandleFunc("GET "+ws+"/documents/{id}/assets", h.Assets.ListAssets)
	mux.HandleFunc("GET "+ws+"/assets/{id}/url", h.Assets.GetDownloadURL)
	mux.HandleFunc("DELETE "+ws+"/assets/{id}", h.Assets.DeleteAsset)

	if h.Blobs != nil {
		mux.HandleFunc("GET /blobs/{key...}", h.Blobs.GetBlob)
		mux.HandleFunc("PUT /blobs/{key...}", h.Blobs.PutBlob)
	}
}
