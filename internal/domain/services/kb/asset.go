package kb

import (
	"context"

	"knowledgebase/internal/domain/models/kb"
)

// AssetService handles image assets uploaded directly to the blob store
type AssetService interface {
	// CreateAssetUpload registers an asset and returns where to upload it
	CreateAssetUpload(ctx context.Context, req *CreateAssetUploadRequest) (*AssetUpload, error)

	// GetAssetDownloadURL returns a time-limited download URL
	GetAssetDownloadURL(ctx context.Context, userID, workspaceID, assetID string) (*AssetDownload, error)

	// ListAssets lists a document's assets
	ListAssets(ctx context.Context, userID, workspaceID, documentID string) ([]kb.Asset, error)

	// DeleteAsset deletes the asset row, then its blob
	DeleteAsset(ctx context.Context, userID, workspaceID, assetID string) error
}

// CreateAssetUploadRequest represents an asset upload request
type CreateAssetUploadRequest struct {
	WorkspaceID string `json:"-"`
	UserID      string `json:"-"`
	DocumentID  string `json:"-"`
	Filename    string `json:"filename"`
	MimeType    string `json:"mime_type"`
	Size        int64  `json:"size"`
}

// AssetUpload is the registered asset plus its upload target
type AssetUpload struct {
	Asset  *kb.Asset        `json:"asset"`
	Upload *kb.UploadTarget `json:"upload"`
}

// AssetDownload is a signed download URL
type AssetDownload struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expires_in"` // seconds
}
