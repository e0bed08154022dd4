package kb

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	models "knowledgebase/internal/domain/models/kb"
	"knowledgebase/internal/domain/repositories"
	kbSvc "knowledgebase/internal/domain/services/kb"
)

// folderIndex is an id-addressed view of a workspace's folders with a
// parent → children adjacency map, built once per operation.
type folderIndex struct {
	folders  []models.Folder
	byID     map[string]int
	children map[string][]string
}

func newFolderIndex(folders []models.Folder) *folderIndex {
	idx := &folderIndex{
		folders:  folders,
		byID:     make(map[string]int, len(folders)),
		children: make(map[string][]string),
	}
	for i, f := range folders {
		idx.byID[f.ID] = i
		if f.ParentFolderID != nil {
			idx.children[*f.ParentFolderID] = append(idx.children[*f.ParentFolderID], f.ID)
		}
	}
	return idx
}

// get returns a copy of the folder with the given id
func (idx *folderIndex) get(id string) (models.Folder, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return models.Folder{}, false
	}
	return idx.folders[i], true
}

// collectDescendantIDs returns rootID and every folder beneath it, breadth first.
func (idx *folderIndex) collectDescendantIDs(rootID string) []string {
	ids := []string{rootID}
	seen := map[string]struct{}{rootID: {}}
	for head := 0; head < len(ids); head++ {
		for _, child := range idx.children[ids[head]] {
			if _, ok := seen[child]; ok {
				continue
			}
			seen[child] = struct{}{}
			ids = append(ids, child)
		}
	}
	return ids
}

// keyMigration moves one document body to a new key
type keyMigration struct {
	doc        models.Document // row as it will be committed
	oldKey     string
	folderPath string
}

// cascadePlan is everything a subtree rewrite will change, computed before
// any write happens.
type cascadePlan struct {
	workspaceID string
	folders     []models.Folder // rows whose parent, name or path change
	migrations  []keyMigration

	// staged updates write temporary paths first so rows can swap paths
	// within one transaction
	staged bool
}

// oldKeys lists the keys that become stale once the plan commits
func (p *cascadePlan) oldKeys() []string {
	keys := make([]string, len(p.migrations))
	for i, m := range p.migrations {
		keys[i] = m.oldKey
	}
	return keys
}

// cascader rewrites folder paths and migrates document blobs for a subtree
type cascader struct {
	repos       Repositories
	blobs       kbSvc.BlobStore
	txManager   repositories.TransactionManager
	concurrency int
	logger      *slog.Logger
}

func newCascader(repos Repositories, blobs kbSvc.BlobStore, txManager repositories.TransactionManager, concurrency int, logger *slog.Logger) *cascader {
	return &cascader{
		repos:       repos,
		blobs:       blobs,
		txManager:   txManager,
		concurrency: max(concurrency, 1),
		logger:      logger,
	}
}

// planSubtree plans moving/renaming moved (already carrying its new parent,
// name and path) whose path used to be oldPath. Descendant paths are
// rewritten by prefix replacement; documents get keys under their new folder
// path with their current slug.
func (c *cascader) planSubtree(ctx context.Context, idx *folderIndex, moved models.Folder, oldPath string) (*cascadePlan, error) {
	plan := &cascadePlan{workspaceID: moved.WorkspaceID}

	subtree := idx.collectDescendantIDs(moved.ID)
	paths := make(map[string]string, len(subtree))
	for _, id := range subtree {
		if id == moved.ID {
			plan.folders = append(plan.folders, moved)
			paths[id] = moved.Path
			continue
		}
		f, _ := idx.get(id)
		newPath := ReplacePathPrefix(f.Path, oldPath, moved.Path)
		paths[id] = newPath
		if newPath != f.Path {
			f.Path = newPath
			f.UpdatedAt = moved.UpdatedAt
			plan.folders = append(plan.folders, f)
		}
	}

	docs, err := c.repos.Documents.ListByFolders(ctx, moved.WorkspaceID, subtree)
	if err != nil {
		return nil, fmt.Errorf("list subtree documents: %w", err)
	}
	c.planDocuments(plan, docs, paths, nil)

	return plan, nil
}

// planDocuments adds a migration for every document whose key changes once
// its folder has path paths[folderID]. reassign optionally moves documents
// to another folder first.
func (c *cascader) planDocuments(plan *cascadePlan, docs []models.Document, paths map[string]string, reassign map[string]string) {
	for _, doc := range docs {
		if to, ok := reassign[doc.FolderID]; ok {
			doc.FolderID = to
		}
		folderPath, ok := paths[doc.FolderID]
		if !ok {
			continue
		}
		newKey := DocumentKey(doc.WorkspaceID, folderPath, doc.Slug, doc.ID)
		if newKey == doc.StorageKey {
			continue
		}
		oldKey := doc.StorageKey
		doc.StorageKey = newKey
		plan.migrations = append(plan.migrations, keyMigration{doc: doc, oldKey: oldKey, folderPath: folderPath})
	}
}

// apply executes plan: copy blobs to their new keys, commit every row in one
// transaction (running before first, inside it), then delete stale keys.
// If copying or the commit fails, the copies are deleted and rows are left
// untouched.
func (c *cascader) apply(ctx context.Context, plan *cascadePlan, before func(ctx context.Context) error) error {
	uploaded, err := c.copyAll(ctx, plan)
	if err != nil {
		deleteKeysBestEffort(ctx, c.blobs, uploaded, c.concurrency, c.logger, "cascade compensation")
		return err
	}

	err = c.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if before != nil {
			if err := before(txCtx); err != nil {
				return err
			}
		}
		if plan.staged {
			for _, f := range plan.folders {
				staging := f
				staging.Path = "~staging/" + f.ID
				if err := c.repos.Folders.Update(txCtx, &staging); err != nil {
					return fmt.Errorf("stage folder %s: %w", f.ID, err)
				}
			}
		}
		for i := range plan.folders {
			if err := c.repos.Folders.Update(txCtx, &plan.folders[i]); err != nil {
				return err
			}
		}
		for i := range plan.migrations {
			if err := c.repos.Documents.Update(txCtx, &plan.migrations[i].doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		deleteKeysBestEffort(ctx, c.blobs, uploaded, c.concurrency, c.logger, "cascade compensation")
		return err
	}

	deleteKeysBestEffort(ctx, c.blobs, plan.oldKeys(), c.concurrency, c.logger, "cascade stale keys")
	return nil
}

// copyAll uploads every migration's content under its new key, returning the
// keys written so far even on failure.
func (c *cascader) copyAll(ctx context.Context, plan *cascadePlan) ([]string, error) {
	var (
		mu       sync.Mutex
		uploaded []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i := range plan.migrations {
		m := &plan.migrations[i]
		g.Go(func() error {
			if err := copyDocumentContent(gctx, c.blobs, &m.doc, m.oldKey, m.doc.StorageKey, m.folderPath); err != nil {
				return err
			}
			mu.Lock()
			uploaded = append(uploaded, m.doc.StorageKey)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	return uploaded, err
}
