package kb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"knowledgebase/internal/domain"
	models "knowledgebase/internal/domain/models/kb"
	kbRepo "knowledgebase/internal/domain/repositories/kb"
	"knowledgebase/internal/repository/postgres"
)

const assetColumns = `id, workspace_id, document_id, filename, mime_type, size, storage_key, created_by, created_at`

// PostgresAssetRepository implements the AssetRepository interface
type PostgresAssetRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(config *postgres.RepositoryConfig) kbRepo.AssetRepository {
	return &PostgresAssetRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Upsert inserts the asset or refreshes the existing (document, filename) row
func (r *PostgresAssetRepository) Upsert(ctx context.Context, asset *models.Asset) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (document_id, filename) DO UPDATE
		SET mime_type = EXCLUDED.mime_type, size = EXCLUDED.size, storage_key = EXCLUDED.storage_key
		RETURNING id, created_by, created_at
	`, r.tables.Assets, assetColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		asset.ID,
		asset.WorkspaceID,
		asset.DocumentID,
		asset.Filename,
		asset.MimeType,
		asset.Size,
		asset.StorageKey,
		asset.CreatedBy,
		asset.CreatedAt,
	).Scan(&asset.ID, &asset.CreatedBy, &asset.CreatedAt)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("document %s: %w", asset.DocumentID, domain.ErrNotFound)
		}
		return fmt.Errorf("upsert asset: %w", err)
	}

	return nil
}

// GetByID retrieves an asset by ID
func (r *PostgresAssetRepository) GetByID(ctx context.Context, id, workspaceID string) (*models.Asset, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND workspace_id = $2
	`, assetColumns, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	asset, err := scanAsset(executor.QueryRow(ctx, query, id, workspaceID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return asset, nil
}

// ListByDocuments lists assets of any of the documents
func (r *PostgresAssetRepository) ListByDocuments(ctx context.Context, workspaceID string, documentIDs []string) ([]models.Asset, error) {
	if len(documentIDs) == 0 {
		return []models.Asset{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE workspace_id = $1 AND document_id = ANY($2)
		ORDER BY created_at ASC
	`, assetColumns, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID, documentIDs)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	assets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Asset, error) {
		asset, err := scanAsset(row)
		if err != nil {
			return models.Asset{}, err
		}
		return *asset, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan asset: %w", err)
	}
	return assets, nil
}

// Delete deletes a single asset
func (r *PostgresAssetRepository) Delete(ctx context.Context, id, workspaceID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND workspace_id = $2`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, workspaceID)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteByDocuments deletes every asset of the documents
func (r *PostgresAssetRepository) DeleteByDocuments(ctx context.Context, workspaceID string, documentIDs []string) error {
	if len(documentIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE workspace_id = $1 AND document_id = ANY($2)`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, workspaceID, documentIDs); err != nil {
		return fmt.Errorf("delete assets: %w", err)
	}
	return nil
}

// ListStorageKeys lists the storage key of every asset in a workspace
func (r *PostgresAssetRepository) ListStorageKeys(ctx context.Context, workspaceID string) ([]string, error) {
	query := fmt.Sprintf(`SELECT storage_key FROM %s WHERE workspace_id = $1`, r.tables.Assets)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list asset keys: %w", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan asset key: %w", err)
	}
	return keys, nil
}

func scanAsset(row pgx.Row) (*models.Asset, error) {
	var asset models.Asset
	err := row.Scan(
		&asset.ID,
		&asset.WorkspaceID,
		&asset.DocumentID,
		&asset.Filename,
		&asset.MimeType,
		&asset.Size,
		&asset.StorageKey,
		&asset.CreatedBy,
		&asset.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &asset, nil
}
