package kb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"knowledgebase/internal/config"
	"knowledgebase/internal/domain"
	models "knowledgebase/internal/domain/models/kb"
	"knowledgebase/internal/domain/repositories"
	"knowledgebase/internal/domain/services"
	kbSvc "knowledgebase/internal/domain/services/kb"
)

type folderService struct {
	repos     Repositories
	blobs     kbSvc.BlobStore
	roots     *RootRepairer
	cascader  *cascader
	txManager repositories.TransactionManager
	access    services.AccessController
	opts      Options
	logger    *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	repos Repositories,
	blobs kbSvc.BlobStore,
	roots *RootRepairer,
	txManager repositories.TransactionManager,
	access services.AccessController,
	opts Options,
	logger *slog.Logger,
) kbSvc.FolderService {
	opts = opts.withDefaults()
	return &folderService{
		repos:     repos,
		blobs:     blobs,
		roots:     roots,
		cascader:  newCascader(repos, blobs, txManager, opts.CascadeConcurrency, logger),
		txManager: txManager,
		access:    access,
		opts:      opts,
		logger:    logger,
	}
}

// EnsureRoot returns the workspace root, repairing the tree if needed
func (s *folderService) EnsureRoot(ctx context.Context, workspaceID string) (*models.Folder, error) {
	return s.roots.EnsureRoot(ctx, workspaceID)
}

// CreateFolder creates a folder under req.ParentFolderID, or under the root
func (s *folderService) CreateFolder(ctx context.Context, req *kbSvc.CreateFolderRequest) (*models.Folder, error) {
	if err := validateCreateFolder(req); err != nil {
		return nil, err
	}
	if _, err := s.access.RequireAccess(ctx, req.UserID, req.WorkspaceID, models.RoleEditor); err != nil {
		return nil, err
	}

	root, err := s.roots.ensureRoot(ctx, req.WorkspaceID, req.UserID)
	if err != nil {
		return nil, err
	}

	name, err := cleanName("folder name", req.Name, config.MaxFolderNameLength)
	if err != nil {
		return nil, err
	}

	parent := root
	if req.ParentFolderID != nil && *req.ParentFolderID != "" {
		parent, err = s.repos.Folders.GetByID(ctx, *req.ParentFolderID, req.WorkspaceID)
		if err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
	}

	return s.createChild(ctx, req.WorkspaceID, req.UserID, parent, name)
}

func (s *folderService) createChild(ctx context.Context, workspaceID, userID string, parent *models.Folder, name string) (*models.Folder, error) {
	path := ChildPath(parent.Path, name)
	if err := checkFolderPath(path); err != nil {
		return nil, err
	}
	if err := s.checkPathFree(ctx, workspaceID, path, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	parentID := parent.ID
	folder := &models.Folder{
		ID:             uuid.NewString(),
		WorkspaceID:    workspaceID,
		ParentFolderID: &parentID,
		Name:           name,
		Path:           path,
		CreatedBy:      userID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repos.Folders.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"workspace_id", workspaceID,
		"parent_folder_id", parentID,
		"path", folder.Path,
	)

	return folder, nil
}

// GetFolder retrieves a folder
func (s *folderService) GetFolder(ctx context.Context, userID, workspaceID, folderID string) (*models.Folder, error) {
	if _, err := s.access.RequireAccess(ctx, userID, workspaceID, models.RoleViewer); err != nil {
		return nil, err
	}
	root, err := s.roots.ensureRoot(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if folderID == "" {
		return root, nil
	}
	return s.repos.Folders.GetByID(ctx, folderID, workspaceID)
}

// UpdateFolder applies a rename, then a move
func (s *folderService) UpdateFolder(ctx context.Context, userID, workspaceID, folderID string, req *kbSvc.UpdateFolderRequest) (*models.Folder, error) {
	if req.Name == nil && req.ParentFolderID == nil {
		return nil, validationError(errors.New("nothing to update"))
	}

	var folder *models.Folder
	var err error
	if req.Name != nil {
		if folder, err = s.RenameFolder(ctx, userID, workspaceID, folderID, *req.Name); err != nil {
			return nil, err
		}
	}
	if req.ParentFolderID != nil {
		if folder, err = s.MoveFolder(ctx, userID, workspaceID, folderID, *req.ParentFolderID); err != nil {
			return nil, err
		}
	}
	return folder, nil
}

// MoveFolder moves a folder and everything beneath it under targetParentID
func (s *folderService) MoveFolder(ctx context.Context, userID, workspaceID, folderID, targetParentID string) (*models.Folder, error) {
	if _, err := s.access.RequireAccess(ctx, userID, workspaceID, models.RoleEditor); err != nil {
		return nil, err
	}
	if _, err := s.roots.ensureRoot(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	all, err := s.repos.Folders.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	idx := newFolderIndex(all)

	folder, ok := idx.get(folderID)
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
	}
	if folder.IsRoot() {
		return nil, validationError(errors.New("the root folder cannot be moved"))
	}

	target, ok := idx.get(targetParentID)
	if !ok {
		return nil, fmt.Errorf("target folder %s: %w", targetParentID, domain.ErrNotFound)
	}
	for _, id := range idx.collectDescendantIDs(folder.ID) {
		if id == target.ID {
			return nil, validationError(errors.New("a folder cannot be moved into itself or its descendants"))
		}
	}

	if *folder.ParentFolderID == target.ID {
		return &folder, nil
	}

	oldPath := folder.Path
	folder.ParentFolderID = &target.ID
	folder.Path = ChildPath(target.Path, folder.Name)
	folder.UpdatedAt = time.Now().UTC()

	if err := s.rewriteSubtree(ctx, idx, folder, oldPath); err != nil {
		return nil, err
	}

	s.logger.Info("folder moved",
		"id", folder.ID,
		"workspace_id", workspaceID,
		"parent_folder_id", target.ID,
		"old_path", oldPath,
		"path", folder.Path,
	)

	return &folder, nil
}

// RenameFolder renames a folder, rewriting its subtree's paths and keys
func (s *folderService) RenameFolder(ctx context.Context, userID, workspaceID, folderID, name string) (*models.Folder, error) {
	if _, err := s.access.RequireAccess(ctx, userID, workspaceID, models.RoleEditor); err != nil {
		return nil, err
	}
	if _, err := s.roots.ensureRoot(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	name, err := cleanName("folder name", name, config.MaxFolderNameLength)
	if err != nil {
		return nil, err
	}

	all, err := s.repos.Folders.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	idx := newFolderIndex(all)

	folder, ok := idx.get(folderID)
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
	}
	if folder.IsRoot() {
		return nil, validationError(errors.New("the root folder cannot be renamed"))
	}
	if folder.Name == name {
		return &folder, nil
	}

	parent, ok := idx.get(*folder.ParentFolderID)
	if !ok {
		return nil, fmt.Errorf("parent folder %s: %w", *folder.ParentFolderID, domain.ErrNotFound)
	}

	oldPath := folder.Path
	folder.Name = name
	folder.Path = ChildPath(parent.Path, name)
	folder.UpdatedAt = time.Now().UTC()

	if err := s.rewriteSubtree(ctx, idx, folder, oldPath); err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed",
		"id", folder.ID,
		"workspace_id", workspaceID,
		"name", name,
		"old_path", oldPath,
		"path", folder.Path,
	)

	return &folder, nil
}

// rewriteSubtree commits folder (carrying its new parent, name and path) and
// cascades the path change to descendants and their documents
func (s *folderService) rewriteSubtree(ctx context.Context, idx *folderIndex, folder models.Folder, oldPath string) error {
	if err := checkFolderPath(folder.Path); err != nil {
		return err
	}
	if folder.Path != oldPath {
		if err := s.checkPathFree(ctx, folder.WorkspaceID, folder.Path, folder.ID); err != nil {
			return err
		}
	}

	plan, err := s.cascader.planSubtree(ctx, idx, folder, oldPath)
	if err != nil {
		return err
	}
	return s.cascader.apply(ctx, plan, nil)
}

// checkPathFree returns a ConflictError if a folder other than selfID
// already holds path
func (s *folderService) checkPathFree(ctx context.Context, workspaceID, path, selfID string) error {
	existing, err := s.repos.Folders.GetByPath(ctx, workspaceID, path)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return &domain.ConflictError{
		Message:      fmt.Sprintf("a folder at path %q already exists", path),
		ResourceType: "folder",
		ResourceID:   existing.ID,
	}
}

// DeleteFolder deletes a non-root folder, its descendant folders, their
// documents and the documents' assets. Blobs are removed after the rows.
func (s *folderService) DeleteFolder(ctx context.Context, userID, workspaceID, folderID string) error {
	if _, err := s.access.RequireAccess(ctx, userID, workspaceID, models.RoleEditor); err != nil {
		return err
	}
	if _, err := s.roots.ensureRoot(ctx, workspaceID, userID); err != nil {
		return err
	}

	all, err := s.repos.Folders.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("list folders: %w", err)
	}
	idx := newFolderIndex(all)

	folder, ok := idx.get(folderID)
	if !ok {
		return fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
	}
	if folder.IsRoot() {
		return validationError(errors.New("the root folder cannot be deleted"))
	}

	subtree := idx.collectDescendantIDs(folder.ID)
	docs, err := s.repos.Documents.ListByFolders(ctx, workspaceID, subtree)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	docIDs := make([]string, len(docs))
	keys := make([]string, 0, len(docs))
	for i, d := range docs {
		docIDs[i] = d.ID
		keys = append(keys, d.StorageKey)
	}
	assets, err := s.repos.Assets.ListByDocuments(ctx, workspaceID, docIDs)
	if err != nil {
		return fmt.Errorf("list assets: %w", err)
	}
	for _, a := range assets {
		keys = append(keys, a.StorageKey)
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Assets.DeleteByDocuments(txCtx, workspaceID, docIDs); err != nil {
			return err
		}
		if err := s.repos.Documents.DeleteByIDs(txCtx, workspaceID, docIDs); err != nil {
			return err
		}
		return s.repos.Folders.DeleteByIDs(txCtx, workspaceID, subtree)
	})
	if err != nil {
		return err
	}

	failed := deleteKeysBestEffort(ctx, s.blobs, keys, s.opts.CascadeConcurrency, s.logger, "folder delete")

	s.logger.Info("folder deleted",
		"id", folder.ID,
		"workspace_id", workspaceID,
		"path", folder.Path,
		"folders", len(subtree),
		"documents", len(docs),
		"assets", len(assets),
		"blob_failures", failed,
	)

	return nil
}

// ListChildren lists the immediate child folders and documents of a folder
// ("" for the root)
func (s *folderService) ListChildren(ctx context.Context, userID, workspaceID, folderID string) (*kbSvc.FolderContents, error) {
	folder, err := s.GetFolder(ctx, userID, workspaceID, folderID)
	if err != nil {
		return nil, err
	}

	folders, err := s.repos.Folders.ListChildren(ctx, workspaceID, folder.ID)
	if err != nil {
		return nil, fmt.Errorf("list child folders: %w", err)
	}
	docs, err := s.repos.Documents.ListByFolder(ctx, workspaceID, folder.ID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	return &kbSvc.FolderContents{
		Folder:    folder,
		Folders:   folders,
		Documents: docs,
	}, nil
}

// ResolveFolderPath walks path from the root by slug, creating any folder
// that does not exist yet. An empty path resolves to the root.
func (s *folderService) ResolveFolderPath(ctx context.Context, userID, workspaceID, path string) (*models.Folder, error) {
	if _, err := s.access.RequireAccess(ctx, userID, workspaceID, models.RoleEditor); err != nil {
		return nil, err
	}

	names, err := SplitFolderPath(path)
	if err != nil {
		return nil, validationError(err)
	}

	current, err := s.roots.ensureRoot(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		name, err := cleanName("folder name", name, config.MaxFolderNameLength)
		if err != nil {
			return nil, err
		}

		next, err := s.repos.Folders.GetByPath(ctx, workspaceID, ChildPath(current.Path, name))
		if errors.Is(err, domain.ErrNotFound) {
			next, err = s.createChild(ctx, workspaceID, userID, current, name)
			if errors.Is(err, domain.ErrConflict) {
				// Created concurrently
				next, err = s.repos.Folders.GetByPath(ctx, workspaceID, ChildPath(current.Path, name))
			}
		}
		if err != nil {
			return nil, fmt.Errorf("resolve folder %q: %w", name, err)
		}
		current = next
	}

	return current, nil
}
