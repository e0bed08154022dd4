package kb

import (
	"context"

	"knowledgebase/internal/domain/models/kb"
)

// TreeService builds nested folder/document trees
type TreeService interface {
	// GetWorkspaceTree returns the nested tree under the root (metadata only)
	GetWorkspaceTree(ctx context.Context, userID, workspaceID string) (*kb.TreeNode, error)
}
