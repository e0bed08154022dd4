package kb

import (
	"context"

	"knowledgebase/internal/domain/models/kb"
)

// DocumentService handles document lifecycle. Every content write re-derives
// the storage key and re-syncs tags and links.
type DocumentService interface {
	// CreateDocument uploads content and inserts the document
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*kb.Document, error)

	// GetDocument returns metadata, content, tags, links and backlinks
	GetDocument(ctx context.Context, userID, workspaceID, documentID string) (*kb.DocumentDetail, error)

	// UpdateDocument replaces title and content, optionally moving the document
	UpdateDocument(ctx context.Context, userID, workspaceID, documentID string, req *UpdateDocumentRequest) (*kb.Document, error)

	// RenameDocument changes the title, migrating content to the new key
	RenameDocument(ctx context.Context, userID, workspaceID, documentID, title string) (*kb.Document, error)

	// MoveDocument moves the document, migrating content to the new key
	MoveDocument(ctx context.Context, userID, workspaceID, documentID, targetFolderID string) (*kb.Document, error)

	// DeleteDocument deletes the document with its assets
	DeleteDocument(ctx context.Context, userID, workspaceID, documentID string) error

	// ListDocuments lists documents directly inside a folder
	ListDocuments(ctx context.Context, userID, workspaceID, folderID string) ([]kb.Document, error)

	// ListDocumentsByTag lists documents carrying tag
	ListDocumentsByTag(ctx context.Context, userID, workspaceID, tag string) ([]kb.DocumentRef, error)
}

// CreateDocumentRequest represents a document creation request
type CreateDocumentRequest struct {
	WorkspaceID string  `json:"-"`
	UserID      string  `json:"-"` // Set by handler from auth context
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	FolderID    *string `json:"folder_id,omitempty"`   // root if omitted
	FolderPath  *string `json:"folder_path,omitempty"` // alternative: resolve/auto-create path below root
}

// UpdateDocumentRequest represents a full document write
type UpdateDocumentRequest struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	FolderID *string `json:"folder_id,omitempty"` // keep current folder if omitted
}

// PatchDocumentRequest is a partial update: rename and/or move
type PatchDocumentRequest struct {
	Title    *string `json:"title,omitempty"`
	FolderID *string `json:"folder_id,omitempty"`
}
