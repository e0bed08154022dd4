package kb

import (
	"time"
)

// Document is the metadata row for a markdown document. The body lives in the
// blob store under StorageKey.
type Document struct {
	ID          string    `json:"id" db:"id"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	FolderID    string    `json:"folder_id" db:"folder_id"`
	Title       string    `json:"title" db:"title"`
	Slug        string    `json:"slug" db:"slug"`
	StorageKey  string    `json:"storage_key" db:"storage_key"`
	ContentHash string    `json:"content_hash" db:"content_hash"`
	Summary     string    `json:"summary" db:"summary"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	UpdatedBy   string    `json:"updated_by" db:"updated_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// DocumentRef is the slim projection used for backlinks and tag listings.
type DocumentRef struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	FolderID  string    `json:"folder_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentDetail is a document with its content and index data resolved.
type DocumentDetail struct {
	Document
	FolderPath string        `json:"folder_path"`
	Content    string        `json:"content"`
	Tags       []string      `json:"tags"`
	Links      []DocumentRef `json:"links"`
	Backlinks  []DocumentRef `json:"backlinks"`
}
