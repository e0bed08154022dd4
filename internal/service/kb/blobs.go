package kb

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"knowledgebase/internal/domain"
	models "knowledgebase/internal/domain/models/kb"
	kbSvc "knowledgebase/internal/domain/services/kb"
)

// copyDocumentContent re-uploads a document body from oldKey to newKey with
// fresh metadata. A missing source blob is a hard error: metadata points at
// content that is gone.
func copyDocumentContent(ctx context.Context, blobs kbSvc.BlobStore, doc *models.Document, oldKey, newKey, folderPath string) error {
	content, found, err := blobs.GetContent(ctx, oldKey)
	if err != nil {
		return fmt.Errorf("read document %s content: %w", doc.ID, err)
	}
	if !found {
		return &domain.StorageInconsistentError{
			Message: fmt.Sprintf("content of document %s is missing from storage", doc.ID),
			Key:     oldKey,
		}
	}

	metadata := BlobMetadata(doc.WorkspaceID, doc.Title, folderPath, ExtractTags(content))
	if err := blobs.UploadContent(ctx, newKey, content, MarkdownMimeType, metadata); err != nil {
		return fmt.Errorf("upload document %s content: %w", doc.ID, err)
	}
	return nil
}

// deleteKeysBestEffort deletes keys with bounded parallelism and returns how
// many deletions failed. Failures are logged, never returned.
//
// Cleanup runs detached from ctx cancellation: the caller's change is already
// committed or already failed.
func deleteKeysBestEffort(ctx context.Context, blobs kbSvc.BlobStore, keys []string, concurrency int, logger *slog.Logger, reason string) int {
	if len(keys) == 0 {
		return 0
	}
	ctx = context.WithoutCancel(ctx)

	var failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(max(concurrency, 1))
	for _, key := range keys {
		g.Go(func() error {
			if err := blobs.DeleteObject(ctx, key); err != nil {
				failed.Add(1)
				logger.Warn("blob delete failed", "reason", reason, "key", key, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if n := failed.Load(); n > 0 {
		logger.Warn("blob cleanup incomplete", "reason", reason, "failed", n, "total", len(keys))
		return int(n)
	}
	return 0
}
