package kb

import "time"

// TreeNode is the workspace tree, anchored at the root folder.
type TreeNode struct {
	Root *FolderTreeNode `json:"root"`
}

// FolderTreeNode represents a folder in the tree with nested children
type FolderTreeNode struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Path           string             `json:"path"`
	ParentFolderID *string            `json:"parent_folder_id"`
	CreatedAt      time.Time          `json:"created_at"`
	Folders        []*FolderTreeNode  `json:"folders"`
	Documents      []DocumentTreeNode `json:"documents"`
}

// DocumentTreeNode represents a document in the tree (metadata only, no content)
type DocumentTreeNode struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	FolderID  string    `json:"folder_id"`
	Summary   string    `json:"summary"`
	UpdatedAt time.Time `json:"updated_at"`
}
