package kb

import (
	"context"

	"knowledgebase/internal/domain/models/kb"
)

// FolderService handles the folder hierarchy and its cascades
type FolderService interface {
	// EnsureRoot returns the workspace's single root folder, creating it or
	// merging duplicates as needed
	EnsureRoot(ctx context.Context, workspaceID string) (*kb.Folder, error)

	// CreateFolder creates a folder under an existing parent (root if omitted)
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*kb.Folder, error)

	// GetFolder retrieves a folder
	GetFolder(ctx context.Context, userID, workspaceID, folderID string) (*kb.Folder, error)

	// UpdateFolder renames and/or moves a folder. Rename is applied first.
	UpdateFolder(ctx context.Context, userID, workspaceID, folderID string, req *UpdateFolderRequest) (*kb.Folder, error)

	// MoveFolder moves a folder and its subtree under targetParentID
	MoveFolder(ctx context.Context, userID, workspaceID, folderID, targetParentID string) (*kb.Folder, error)

	// RenameFolder renames a folder, rewriting its subtree's paths and keys
	RenameFolder(ctx context.Context, userID, workspaceID, folderID, name string) (*kb.Folder, error)

	// DeleteFolder deletes a non-root folder with everything beneath it
	DeleteFolder(ctx context.Context, userID, workspaceID, folderID string) error

	// ListChildren lists immediate child folders and documents
	ListChildren(ctx context.Context, userID, workspaceID, folderID string) (*FolderContents, error)

	// ResolveFolderPath walks a slash-separated path from the root, creating
	// missing folders
	ResolveFolderPath(ctx context.Context, userID, workspaceID, path string) (*kb.Folder, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	WorkspaceID    string  `json:"-"`
	UserID         string  `json:"-"` // Set by handler from auth context
	Name           string  `json:"name"`
	ParentFolderID *string `json:"parent_folder_id,omitempty"`
}

// UpdateFolderRequest represents a folder update request
type UpdateFolderRequest struct {
	Name           *string `json:"name,omitempty"`             // rename
	ParentFolderID *string `json:"parent_folder_id,omitempty"` // move
}

// FolderContents represents a folder with its children
type FolderContents struct {
	Folder    *kb.Folder    `json:"folder"`
	Folders   []kb.Folder   `json:"folders"`
	Documents []kb.Document `json:"documents"`
}
