package kb

import (
	"context"

	"knowledgebase/internal/domain/models/kb"
)

// DocumentRepository defines data access operations for document metadata.
// Content is never stored here; see the blob store.
type DocumentRepository interface {
	// Create inserts a document. ID and timestamps are set by the caller.
	Create(ctx context.Context, doc *kb.Document) error

	// GetByID retrieves a document by ID
	GetByID(ctx context.Context, id, workspaceID string) (*kb.Document, error)

	// Update writes every mutable column
	Update(ctx context.Context, doc *kb.Document) error

	// DeleteByIDs deletes documents. Tags and links go with them.
	DeleteByIDs(ctx context.Context, workspaceID string, ids []string) error

	// ListByFolder lists documents directly inside a folder, ordered by title
	ListByFolder(ctx context.Context, workspaceID, folderID string) ([]kb.Document, error)

	// ListByFolders lists documents directly inside any of the folders
	ListByFolders(ctx context.Context, workspaceID string, folderIDs []string) ([]kb.Document, error)

	// ListByWorkspace lists every document in a workspace
	ListByWorkspace(ctx context.Context, workspaceID string) ([]kb.Document, error)

	// FindByTitles returns documents whose title case-insensitively equals one
	// of titles, oldest first
	FindByTitles(ctx context.Context, workspaceID string, titles []string) ([]kb.Document, error)

	// Reparent moves every document in fromFolderIDs into toFolderID
	Reparent(ctx context.Context, workspaceID string, fromFolderIDs []string, toFolderID string) error

	// ListStorageKeys lists the storage key of every document in a workspace
	ListStorageKeys(ctx context.Context, workspaceID string) ([]string, error)
}
