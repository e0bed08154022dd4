package kb

import (
	"time"
)

// Folder is a node in a workspace's knowledge-base tree. Path is materialized:
// it is stored on the row and rewritten whenever the folder or an ancestor is
// renamed or moved.
type Folder struct {
	ID             string    `json:"id" db:"id"`
	WorkspaceID    string    `json:"workspace_id" db:"workspace_id"`
	ParentFolderID *string   `json:"parent_folder_id" db:"parent_folder_id"` // NULL only for the workspace root
	Name           string    `json:"name" db:"name"`
	Path           string    `json:"path" db:"path"`
	CreatedBy      string    `json:"created_by" db:"created_by"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether f is the workspace root folder.
func (f *Folder) IsRoot() bool {
	return f.ParentFolderID == nil
}
