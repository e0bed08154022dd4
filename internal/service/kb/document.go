package kb

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"knowledgebase/internal/config"
	"knowledgebase/internal/domain"
	models "knowledgebase/internal/domain/models/kb"
	"knowledgebase/internal/domain/repositories"
	"knowledgebase/internal/domain/services"
	kbSvc "knowledgebase/internal/domain/services/kb"
)

type documentService struct {
	repos     Repositories
	blobs     kbSvc.BlobStore
	roots     *RootRepairer
	folders   kbSvc.FolderService // resolves folder_path on create
	indexer   *Indexer
	analyzer  services.ContentAnalyzer
	txManager repositories.TransactionManager
	access    services.AccessController
	opts      Options
	logger    *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	repos Repositories,
	blobs kbSvc.BlobStore,
	roots *RootRepairer,
	folders kbSvc.FolderService,
	indexer *Indexer,
	analyzer services.ContentAnalyzer,
	txManager repositories.TransactionManager,
	access services.AccessController,
	opts Options,
	logger *slog.Logger,
) kbSvc.DocumentService {
	return &documentService{
		repos:     repos,
		blobs:     blobs,
		roots:     roots,
		folders:   folders,
		indexer:   indexer,
		analyzer:  analyzer,
		txManager: txManager,
		access:    access,
		opts:      opts.withDefaults(),
		logger:    logger,
	}
}

// CreateDocument uploads content under a fresh key, then inserts the row and
// its index in one transaction
func (s *documentService) CreateDocument(ctx context.Context, req *kbSvc.CreateDocumentRequest) (*models.Document, error) {
	if err := validateCreateDocument(req); err != nil {
		return nil, err
	}
	if _, err := s.access.RequireAccess(ctx, req.UserID, req.WorkspaceID, models.RoleEditor); err != nil {
		return nil, err
	}
	root, err := s.roots.ensureRoot(ctx, req.WorkspaceID, req.UserID)
	if err != nil {
		return nil, err
	}

	title, err := cleanName("title", req.Title, config.MaxDocumentTitleLength)
	if err != nil {
		return nil, err
	}

	folder := root
	switch {
	case req.FolderID != nil && *req.FolderID != "":
		folder, err = s.repos.Folders.GetByID(ctx, *req.FolderID, req.WorkspaceID)
	case req.FolderPath != nil:
		folder, err = s.folders.ResolveFolderPath(ctx, req.UserID, req.WorkspaceID, *req.FolderPath)
	}
	if err != nil {
		return nil, fmt.Errorf("target folder: %w", err)
	}

	now := time.Now().UTC()
	doc := &models.Document{
		ID:          uuid.NewString(),
		WorkspaceID: req.WorkspaceID,
		FolderID:    folder.ID,
		Title:       title,
		Slug:        Slugify(title),
		CreatedBy:   req.UserID,
		UpdatedBy:   req.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	doc.StorageKey = DocumentKey(doc.WorkspaceID, folder.Path, doc.Slug, doc.ID)
	s.applyContent(doc, req.Content)

	if err := s.upload(ctx, doc, folder.Path, req.Content); err != nil {
		return nil, err
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Documents.Create(txCtx, doc); err != nil {
			return err
		}
		_, err := s.indexer.Sync(txCtx, doc.WorkspaceID, doc.ID, req.Content)
		return err
	})
	if err != nil {
		deleteKeysBestEffort(ctx, s.blobs, []string{doc.StorageKey}, 1, s.logger, "document create compensation")
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"title", doc.Title,
		"workspace_id", doc.WorkspaceID,
		"folder_id", doc.FolderID,
		"storage_key", doc.StorageKey,
	)

	return doc, nil
}

// GetDocument returns metadata, content, tags, outgoing links and backlinks
func (s *documentService) GetDocument(ctx context.Context, userID, workspaceID, documentID string) (*models.DocumentDetail, error) {
	if _, err := s.access.RequireAccess(ctx, userID, workspaceID, models.RoleViewer); err != nil {
		return nil, err
	}
	if _, err := s.roots.ensureRoot(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	doc, err := s.repos.Documents.GetByID(ctx, documentID, workspaceID)
	if err != nil {
		return nil, err
	}
	folder, err := s.repos.Folders.GetByID(ctx, doc.FolderID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("document folder: %w", err)
	}

	content, found, err := s.blobs.GetContent(ctx, doc.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("read document content: %w", err)
	}
	if !found {
		return nil, &domain.StorageInconsistentError{
			Message: fmt.Sprintf("content of document %s is missing from storage", doc.ID),
			Key:     doc.StorageKey,
		}
	}

	tags, err := s.repos.Index.ListTags(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	links, err := s.repos.Index.ListOutgoing(ctx, workspaceID, doc.ID)
	if err != nil {
		return nil, err
	}
	backlinks, err := s.repos.Index.ListBacklinks(ctx, workspaceID, doc.ID)
	if err != nil {
		return nil, err
	}

	return &models.DocumentDetail{
		Document:   *doc,
		FolderPath: folder.Path,
		Content:    content,
		Tags:       nonNil(tags),
		Links:      nonNil(links),
		Backlinks:  nonNil(backlinks),
	}, nil
}

// UpdateDocument writes new title and content, optionally into another folder
func (s *documentService) UpdateDocument(ctx context.Context, userID, workspaceID, documentID string, req *kbSvc.UpdateDocumentRequest) (*models.Document, error) {
	if _, err := s.access.RequireAccess(ctx, userID, workspaceID, models.RoleEditor); err != nil {
		return nil, err
	}
	if _, err := s.roots.ensureRoot(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	title, err := cleanName("title", req.Title, config.MaxDocumentTitleLength)
	if err != nil {
		return nil, err
	}

	doc, err := s.repos.Documents.GetByID(ctx, documentID, workspaceID)
	if err != nil {
		return nil, err
	}

	folderID := doc.FolderID
	if req.FolderID != nil && *req.FolderID != "" {
		folderID = *req.FolderID
	}
	folder, err := s.repos.Folders.GetByID(ctx, folderID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("target folder: %w", err)
	}

	oldKey := doc.StorageKey
	doc.Title = title
	doc.Slug = Slugify(title)
	doc.FolderID = folder.ID
	doc.StorageKey = DocumentKey(workspaceID, folder.Path, doc.Slug, doc.ID)
	doc.UpdatedBy = userID
	doc.UpdatedAt = time.Now().UTC()
	s.applyContent(doc, req.Content)

	if err := s.upload(ctx, doc, folder.Path, req.Content); err != nil {
		return nil, err
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Documents.Update(txCtx, doc); err != nil {
			return err
		}
		_, err := s.indexer.Sync(txCtx, workspaceID, doc.ID, req.Content)
		return err
	})
	if err != nil {
		// Same key means the upload overwrote the live body; deleting it would lose the document
		if doc.StorageKey != oldKey {
			deleteKeysBestEffort(ctx, s.blobs, []string{doc.StorageKey}, 1, s.logger, "document update compensation")
		}
		return nil, err
	}

	if doc.StorageKey != oldKey {
		deleteKeysBestEffort(ctx, s.blobs, []string{oldKey}, 1, s.logger, "document stale key")
	}

	s.logger.Info("document updated",
		"id", doc.ID,
		"workspace_id", workspaceID,
		"title", doc.Title,
		"storage_key", doc.StorageKey,
		"key_changed", doc.StorageKey != oldKey,
	)

	return doc, nil
}

// RenameDocument changes the title; the body moves to the key derived from
// the new slug. Tags and links are untouched since content is unchanged.
func (s *documentService) RenameDocument(ctx context.Context, userID, workspaceID, documentID, title string) (*models.Document, error) {
	if _, err := s.access.RequireAccess(ctx, userID, workspaceID, models.RoleEditor); err != nil {
		return nil, err
	}
	if _, err := s.roots.ensureRoot(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	title, err := cleanName("title", title, config.MaxDocumentTitleLength)
	if err != nil {
		return nil, err
	}

	doc, err := s.repos.Documents.GetByID(ctx, documentID, workspaceID)
	if err != nil {
		return nil, err
	}
	if doc.Title == title {
		return doc, nil
	}

	folder, err := s.repos.Folders.GetByID(ctx, doc.FolderID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("document folder: %w", err)
	}

	doc.Title = title
	doc.Slug = Slugify(title)
	if err := s.relocate(ctx, userID, doc, folder); err != nil {
		return nil, err
	}

	s.logger.Info("document renamed",
		"id", doc.ID,
		"workspace_id", workspaceID,
		"title", title,
		"storage_key", doc.StorageKey,
	)

	return doc, nil
}

// MoveDocument moves the document to targetFolderID; the body moves to the
// key under the new folder path
func (s *documentService) MoveDocument(ctx context.Context, userID, workspaceID, documentID, targetFolderID string) (*models.Document, error) {
	if _, err := s.access.RequireAccess(ctx, userID, workspaceID, models.RoleEditor); err != nil {
		return nil, err
	}
	root, err := s.roots.ensureRoot(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if targetFolderID == "" {
		targetFolderID = root.ID
	}

	doc, err := s.repos.Documents.GetByID(ctx, documentID, workspaceID)
	if err != nil {
		return nil, err
	}
	if doc.FolderID == targetFolderID {
		return doc, nil
	}

	target, err := s.repos.Folders.GetByID(ctx, targetFolderID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("target folder: %w", err)
	}

	doc.FolderID = target.ID
	if err := s.relocate(ctx, userID, doc, target); err != nil {
		return nil, err
	}

	s.logger.Info("document moved",
		"id", doc.ID,
		"workspace_id", workspaceID,
		"folder_id", target.ID,
		"storage_key", doc.StorageKey,
	)

	return doc, nil
}

// relocate re-derives doc's key inside folder (doc already carries its new
// title/slug/folder), copies the body if the key changed, commits the row
// and deletes the old key
func (s *documentService) relocate(ctx context.Context, userID string, doc *models.Document, folder *models.Folder) error {
	oldKey := doc.StorageKey
	doc.StorageKey = DocumentKey(doc.WorkspaceID, folder.Path, doc.Slug, doc.ID)
	doc.UpdatedBy = userID
	doc.UpdatedAt = time.Now().UTC()

	keyChanged := doc.StorageKey != oldKey
	if keyChanged {
		if err := copyDocumentContent(ctx, s.blobs, doc, oldKey, doc.StorageKey, folder.Path); err != nil {
			return err
		}
	}

	if err := s.repos.Documents.Update(ctx, doc); err != nil {
		if keyChanged {
			deleteKeysBestEffort(ctx, s.blobs, []string{doc.StorageKey}, 1, s.logger, "document relocate compensation")
		}
		return err
	}

	if keyChanged {
		deleteKeysBestEffort(ctx, s.blobs, []string{oldKey}, 1, s.logger, "document stale key")
	}
	return nil
}

// DeleteDocument deletes the row and its asset rows, then their blobs
func (s *documentService) DeleteDocument(ctx context.Context, userID, workspaceID, documentID string) error {
	if _, err := s.access.RequireAccess(ctx, userID, workspaceID, models.RoleEditor); err != nil {
		return err
	}
	if _, err := s.roots.ensureRoot(ctx, workspaceID, userID); err != nil {
		return err
	}

	doc, err := s.repos.Documents.GetByID(ctx, documentID, workspaceID)
	if err != nil {
		return err
	}
	assets, err := s.repos.Assets.ListByDocuments(ctx, workspaceID, []string{doc.ID})
	if err != nil {
		return fmt.Errorf("list assets: %w", err)
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.repos.Assets.DeleteByDocuments(txCtx, workspaceID, []string{doc.ID}); err != nil {
			return err
		}
		return s.repos.Documents.DeleteByIDs(txCtx, workspaceID, []string{doc.ID})
	})
	if err != nil {
		return err
	}

	keys := []string{doc.StorageKey}
	for _, a := range assets {
		keys = append(keys, a.StorageKey)
	}
	failed := deleteKeysBestEffort(ctx, s.blobs, keys, s.opts.CascadeConcurrency, s.logger, "document delete")

	s.logger.Info("document deleted",
		"id", doc.ID,
		"workspace_id", workspaceID,
		"assets", len(assets),
		"blob_failures", failed,
	)

	return nil
}

// ListDocuments lists documents directly inside folderID ("" for the root)
func (s *documentService) ListDocuments(ctx context.Context, userID, workspaceID, folderID string) ([]models.Document, error) {
	if _, err := s.access.RequireAccess(ctx, userID, workspaceID, models.RoleViewer); err != nil {
		return nil, err
	}
	root, err := s.roots.ensureRoot(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	if folderID == "" {
		folderID = root.ID
	} else if _, err := s.repos.Folders.GetByID(ctx, folderID, workspaceID); err != nil {
		return nil, err
	}

	return s.repos.Documents.ListByFolder(ctx, workspaceID, folderID)
}

// ListDocumentsByTag lists documents tagged with tag (case-insensitive, "#" optional)
func (s *documentService) ListDocumentsByTag(ctx context.Context, userID, workspaceID, tag string) ([]models.DocumentRef, error) {
	if _, err := s.access.RequireAccess(ctx, userID, workspaceID, models.RoleViewer); err != nil {
		return nil, err
	}
	if _, err := s.roots.ensureRoot(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	tag = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
	if tag == "" {
		return nil, validationError(fmt.Errorf("tag cannot be empty"))
	}

	refs, err := s.repos.Index.ListDocumentsByTag(ctx, workspaceID, tag)
	if err != nil {
		return nil, err
	}
	return nonNil(refs), nil
}

// applyContent recomputes the content-derived columns
func (s *documentService) applyContent(doc *models.Document, content string) {
	doc.ContentHash = ContentHash(content)
	doc.Summary = s.analyzer.Summarize(content, config.SummaryLength)
}

func (s *documentService) upload(ctx context.Context, doc *models.Document, folderPath, content string) error {
	metadata := BlobMetadata(doc.WorkspaceID, doc.Title, folderPath, ExtractTags(content))
	if err := s.blobs.UploadContent(ctx, doc.StorageKey, content, MarkdownMimeType, metadata); err != nil {
		return fmt.Errorf("upload document content: %w", err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
