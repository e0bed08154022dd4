package kb

import (
	"context"

	"knowledgebase/internal/domain/models/kb"
)

// FolderRepository defines data access operations for knowledge-base folders.
// Every lookup is scoped to a workspace.
type FolderRepository interface {
	// Create inserts a folder. ID and timestamps are set by the caller.
	Create(ctx context.Context, folder *kb.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id, workspaceID string) (*kb.Folder, error)

	// GetByPath retrieves a folder by its materialized path
	GetByPath(ctx context.Context, workspaceID, path string) (*kb.Folder, error)

	// ListRoots lists folders with no parent, oldest first
	ListRoots(ctx context.Context, workspaceID string) ([]kb.Folder, error)

	// ListChildren lists immediate child folders, ordered by name
	ListChildren(ctx context.Context, workspaceID, parentID string) ([]kb.Folder, error)

	// ListByWorkspace retrieves all folders in a workspace (flat list)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]kb.Folder, error)

	// Update writes parent, name, path and updated_at
	Update(ctx context.Context, folder *kb.Folder) error

	// Reparent points every folder whose parent is in fromParentIDs at toParentID
	Reparent(ctx context.Context, workspaceID string, fromParentIDs []string, toParentID string) error

	// DeleteByIDs deletes the given folders
	DeleteByIDs(ctx context.Context, workspaceID string, ids []string) error

	// ListWorkspaceIDs lists every workspace that owns at least one folder
	ListWorkspaceIDs(ctx context.Context) ([]string, error)
}
