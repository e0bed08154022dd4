package kb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"knowledgebase/internal/domain"
	models "knowledgebase/internal/domain/models/kb"
	"knowledgebase/internal/domain/repositories"
	kbSvc "knowledgebase/internal/domain/services/kb"
)

// RootRepairer guarantees each workspace has exactly one root folder at
// RootFolderPath. It is idempotent and cheap when the tree is healthy.
type RootRepairer struct {
	repos    Repositories
	cascader *cascader
	logger   *slog.Logger
}

// NewRootRepairer creates a new root folder repairer
func NewRootRepairer(
	repos Repositories,
	blobs kbSvc.BlobStore,
	txManager repositories.TransactionManager,
	opts Options,
	logger *slog.Logger,
) *RootRepairer {
	opts = opts.withDefaults()
	return &RootRepairer{
		repos:    repos,
		cascader: newCascader(repos, blobs, txManager, opts.CascadeConcurrency, logger),
		logger:   logger,
	}
}

// EnsureRoot returns the canonical root of workspaceID, creating it when
// missing and merging duplicates into the oldest one.
func (r *RootRepairer) EnsureRoot(ctx context.Context, workspaceID string) (*models.Folder, error) {
	return r.ensureRoot(ctx, workspaceID, SystemUserID)
}

func (r *RootRepairer) ensureRoot(ctx context.Context, workspaceID, actorID string) (*models.Folder, error) {
	roots, err := r.repos.Folders.ListRoots(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list root folders: %w", err)
	}

	if len(roots) == 0 {
		root, createErr := r.createRoot(ctx, workspaceID, actorID)
		if createErr == nil {
			return root, nil
		}
		if !errors.Is(createErr, domain.ErrConflict) {
			return nil, createErr
		}
		// A concurrent request created the root first
		roots, err = r.repos.Folders.ListRoots(ctx, workspaceID)
		if err != nil {
			return nil, fmt.Errorf("list root folders: %w", err)
		}
		if len(roots) == 0 {
			return nil, fmt.Errorf("create root folder: %w", createErr)
		}
	}

	if len(roots) == 1 && roots[0].Path == RootFolderPath {
		return &roots[0], nil
	}

	return r.repair(ctx, workspaceID, roots)
}

func (r *RootRepairer) createRoot(ctx context.Context, workspaceID, actorID string) (*models.Folder, error) {
	now := time.Now().UTC()
	root := &models.Folder{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		Name:        RootFolderName,
		Path:        RootFolderPath,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.repos.Folders.Create(ctx, root); err != nil {
		return nil, err
	}

	r.logger.Info("root folder created", "workspace_id", workspaceID, "id", root.ID)
	return root, nil
}

// repair merges every root after the oldest into it and recomputes all
// paths from RootFolderPath down. Children of merged roots whose path would
// collide get their id appended to their name.
func (r *RootRepairer) repair(ctx context.Context, workspaceID string, roots []models.Folder) (*models.Folder, error) {
	canonical := roots[0]
	duplicates := make(map[string]struct{}, len(roots)-1)
	dupIDs := make([]string, 0, len(roots)-1)
	for _, d := range roots[1:] {
		duplicates[d.ID] = struct{}{}
		dupIDs = append(dupIDs, d.ID)
	}

	all, err := r.repos.Folders.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	// Merged view: duplicates removed, their children under the canonical root
	now := time.Now().UTC()
	original := make(map[string]models.Folder, len(all))
	merged := make([]models.Folder, 0, len(all))
	for _, f := range all {
		if _, dup := duplicates[f.ID]; dup {
			continue
		}
		original[f.ID] = f
		if f.ParentFolderID != nil {
			if _, dup := duplicates[*f.ParentFolderID]; dup {
				parent := canonical.ID
				f.ParentFolderID = &parent
			}
		}
		merged = append(merged, f)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.Before(merged[j].CreatedAt)
		}
		return merged[i].ID < merged[j].ID
	})
	idx := newFolderIndex(merged)

	plan := &cascadePlan{workspaceID: workspaceID, staged: true}
	paths := map[string]string{canonical.ID: RootFolderPath}
	taken := map[string]struct{}{RootFolderPath: {}}

	for _, id := range idx.collectDescendantIDs(canonical.ID) {
		f, _ := idx.get(id)
		if id != canonical.ID {
			parentPath := paths[*f.ParentFolderID]
			path := ChildPath(parentPath, f.Name)
			if _, clash := taken[path]; clash {
				f.Name = fmt.Sprintf("%s %s", f.Name, shortID(f.ID))
				path = ChildPath(parentPath, f.Name)
				r.logger.Warn("renamed folder during root merge",
					"workspace_id", workspaceID,
					"folder_id", f.ID,
					"name", f.Name,
				)
			}
			f.Path = path
		} else {
			f.Path = RootFolderPath
		}
		paths[id] = f.Path
		taken[f.Path] = struct{}{}

		before := original[id]
		if f.Path != before.Path || f.Name != before.Name || !sameParent(f.ParentFolderID, before.ParentFolderID) {
			f.UpdatedAt = now
			plan.folders = append(plan.folders, f)
		}
	}

	docs, err := r.repos.Documents.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	reassign := make(map[string]string, len(dupIDs))
	for _, id := range dupIDs {
		reassign[id] = canonical.ID
	}
	r.cascader.planDocuments(plan, docs, paths, reassign)

	err = r.cascader.apply(ctx, plan, func(txCtx context.Context) error {
		if err := r.repos.Folders.Reparent(txCtx, workspaceID, dupIDs, canonical.ID); err != nil {
			return err
		}
		if err := r.repos.Documents.Reparent(txCtx, workspaceID, dupIDs, canonical.ID); err != nil {
			return err
		}
		return r.repos.Folders.DeleteByIDs(txCtx, workspaceID, dupIDs)
	})
	if err != nil {
		return nil, fmt.Errorf("repair root folders: %w", err)
	}

	canonical.Path = RootFolderPath
	r.logger.Info("root folders repaired",
		"workspace_id", workspaceID,
		"root_id", canonical.ID,
		"merged", len(dupIDs),
		"folders_rewritten", len(plan.folders),
		"documents_migrated", len(plan.migrations),
	)

	return &canonical, nil
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
