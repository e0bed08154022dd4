package kb

import (
	"context"
	"log/slog"

	models "knowledgebase/internal/domain/models/kb"
	"knowledgebase/internal/domain/services"
	kbSvc "knowledgebase/internal/domain/services/kb"
)

// treeService implements the TreeService interface
type treeService struct {
	repos  Repositories
	roots  *RootRepairer
	access services.AccessController
	logger *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	repos Repositories,
	roots *RootRepairer,
	access services.AccessController,
	logger *slog.Logger,
) kbSvc.TreeService {
	return &treeService{
		repos:  repos,
		roots:  roots,
		access: access,
		logger: logger,
	}
}

// GetWorkspaceTree builds the nested folder/document tree under the root
func (s *treeService) GetWorkspaceTree(ctx context.Context, userID, workspaceID string) (*models.TreeNode, error) {
	if _, err := s.access.RequireAccess(ctx, userID, workspaceID, models.RoleViewer); err != nil {
		return nil, err
	}
	root, err := s.roots.ensureRoot(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	allFolders, err := s.repos.Folders.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	allDocuments, err := s.repos.Documents.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	// First pass: create all folder nodes
	folderMap := make(map[string]*models.FolderTreeNode, len(allFolders))
	for _, folder := range allFolders {
		folderMap[folder.ID] = &models.FolderTreeNode{
			ID:             folder.ID,
			Name:           folder.Name,
			Path:           folder.Path,
			ParentFolderID: folder.ParentFolderID,
			CreatedAt:      folder.CreatedAt,
			Folders:        []*models.FolderTreeNode{},
			Documents:      []models.DocumentTreeNode{},
		}
	}

	// Second pass: nest folders under their parents
	for _, folder := range allFolders {
		if folder.ParentFolderID == nil {
			continue
		}
		if parent, exists := folderMap[*folder.ParentFolderID]; exists {
			parent.Folders = append(parent.Folders, folderMap[folder.ID])
		}
	}

	// Third pass: attach documents
	for _, doc := range allDocuments {
		if parent, exists := folderMap[doc.FolderID]; exists {
			parent.Documents = append(parent.Documents, models.DocumentTreeNode{
				ID:        doc.ID,
				Title:     doc.Title,
				Slug:      doc.Slug,
				FolderID:  doc.FolderID,
				Summary:   doc.Summary,
				UpdatedAt: doc.UpdatedAt,
			})
		}
	}

	s.logger.Debug("workspace tree built",
		"workspace_id", workspaceID,
		"folder_count", len(allFolders),
		"document_count", len(allDocuments),
	)

	return &models.TreeNode{Root: folderMap[root.ID]}, nil
}
