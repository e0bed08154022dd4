package kb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	models "knowledgebase/internal/domain/models/kb"
	"knowledgebase/internal/domain/services"
	kbSvc "knowledgebase/internal/domain/services/kb"
)

type assetService struct {
	repos  Repositories
	blobs  kbSvc.BlobStore
	roots  *RootRepairer
	access services.AccessController
	opts   Options
	logger *slog.Logger
}

// NewAssetService creates a new image asset service
func NewAssetService(
	repos Repositories,
	blobs kbSvc.BlobStore,
	roots *RootRepairer,
	access services.AccessController,
	opts Options,
	logger *slog.Logger,
) kbSvc.AssetService {
	return &assetService{
		repos:  repos,
		blobs:  blobs,
		roots:  roots,
		access: access,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// CreateAssetUpload registers the asset row and returns a direct upload target.
// Re-uploading the same filename for a document replaces the earlier asset.
func (s *assetService) CreateAssetUpload(ctx context.Context, req *kbSvc.CreateAssetUploadRequest) (*kbSvc.AssetUpload, error) {
	if err := validateAssetUpload(req, s.opts.AssetMaxBytes); err != nil {
		return nil, err
	}
	if _, err := s.access.RequireAccess(ctx, req.UserID, req.WorkspaceID, models.RoleEditor); err != nil {
		return nil, err
	}
	if _, err := s.roots.ensureRoot(ctx, req.WorkspaceID, req.UserID); err != nil {
		return nil, err
	}

	doc, err := s.repos.Documents.GetByID(ctx, req.DocumentID, req.WorkspaceID)
	if err != nil {
		return nil, err
	}

	asset := &models.Asset{
		ID:          uuid.NewString(),
		WorkspaceID: req.WorkspaceID,
		DocumentID:  doc.ID,
		Filename:    SanitizeFilename(req.Filename),
		MimeType:    req.MimeType,
		Size:        req.Size,
		StorageKey:  AssetKey(req.WorkspaceID, doc.ID, req.Filename),
		CreatedBy:   req.UserID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repos.Assets.Upsert(ctx, asset); err != nil {
		return nil, err
	}

	target, err := s.blobs.GenerateUploadURL(ctx, asset.StorageKey, asset.MimeType, s.opts.AssetMaxBytes)
	if err != nil {
		return nil, fmt.Errorf("generate upload url: %w", err)
	}

	s.logger.Info("asset upload created",
		"id", asset.ID,
		"document_id", doc.ID,
		"workspace_id", req.WorkspaceID,
		"storage_key", asset.StorageKey,
		"size", asset.Size,
	)

	return &kbSvc.AssetUpload{Asset: asset, Upload: target}, nil
}

// GetAssetDownloadURL returns a signed URL valid for the configured TTL
func (s *assetService) GetAssetDownloadURL(ctx context.Context, userID, workspaceID, assetID string) (*kbSvc.AssetDownload, error) {
	if _, err := s.access.RequireAccess(ctx, userID, workspaceID, models.RoleViewer); err != nil {
		return nil, err
	}

	asset, err := s.repos.Assets.GetByID(ctx, assetID, workspaceID)
	if err != nil {
		return nil, err
	}

	url, err := s.blobs.GenerateDownloadURL(ctx, asset.StorageKey, s.opts.AssetURLTTL)
	if err != nil {
		return nil, fmt.Errorf("generate download url: %w", err)
	}

	return &kbSvc.AssetDownload{
		URL:       url,
		ExpiresIn: int64(s.opts.AssetURLTTL / time.Second),
	}, nil
}

// ListAssets lists a document's assets
func (s *assetService) ListAssets(ctx context.Context, userID, workspaceID, documentID string) ([]models.Asset, error) {
	if _, err := s.access.RequireAccess(ctx, userID, workspaceID, models.RoleViewer); err != nil {
		return nil, err
	}

	if _, err := s.repos.Documents.GetByID(ctx, documentID, workspaceID); err != nil {
		return nil, err
	}

	assets, err := s.repos.Assets.ListByDocuments(ctx, workspaceID, []string{documentID})
	if err != nil {
		return nil, err
	}
	return nonNil(assets), nil
}

// DeleteAsset deletes the row, then the blob best-effort
func (s *assetService) DeleteAsset(ctx context.Context, userID, workspaceID, assetID string) error {
	if _, err := s.access.RequireAccess(ctx, userID, workspaceID, models.RoleEditor); err != nil {
		return err
	}

	asset, err := s.repos.Assets.GetByID(ctx, assetID, workspaceID)
	if err != nil {
		return err
	}
	if err := s.repos.Assets.Delete(ctx, asset.ID, workspaceID); err != nil {
		return err
	}

	deleteKeysBestEffort(ctx, s.blobs, []string{asset.StorageKey}, 1, s.logger, "asset delete")

	s.logger.Info("asset deleted",
		"id", asset.ID,
		"document_id", asset.DocumentID,
		"workspace_id", workspaceID,
	)

	return nil
}
