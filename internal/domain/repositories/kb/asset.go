package kb

import (
	"context"

	"knowledgebase/internal/domain/models/kb"
)

// AssetRepository defines data access operations for document image assets
type AssetRepository interface {
	// Upsert inserts the asset, or refreshes mime type and size of the existing
	// row for the same (document, filename). asset.ID is set to the stored row's ID.
	Upsert(ctx context.Context, asset *kb.Asset) error

	// GetByID retrieves an asset by ID
	GetByID(ctx context.Context, id, workspaceID string) (*kb.Asset, error)

	// ListByDocuments lists assets of any of the documents
	ListByDocuments(ctx context.Context, workspaceID string, documentIDs []string) ([]kb.Asset, error)

	// Delete deletes a single asset
	Delete(ctx context.Context, id, workspaceID string) error

	// DeleteByDocuments deletes every asset of the documents
	DeleteByDocuments(ctx context.Context, workspaceID string, documentIDs []string) error

	// ListStorageKeys lists the storage key of every asset in a workspace
	ListStorageKeys(ctx context.Context, workspaceID string) ([]string, error)
}
