package kb

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"knowledgebase/internal/domain"
	models "knowledgebase/internal/domain/models/kb"
	kbRepo "knowledgebase/internal/domain/repositories/kb"
	"knowledgebase/internal/repository/postgres"
)

const documentColumns = `id, workspace_id, folder_id, title, slug, storage_key, content_hash, summary, created_by, updated_by, created_at, updated_at`

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) kbRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, r.tables.Documents, documentColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		doc.ID,
		doc.WorkspaceID,
		doc.FolderID,
		doc.Title,
		doc.Slug,
		doc.StorageKey,
		doc.ContentHash,
		doc.Summary,
		doc.CreatedBy,
		doc.UpdatedBy,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("document %s already exists", doc.ID),
				ResourceType: "document",
				ResourceID:   doc.ID,
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder %s: %w", doc.FolderID, domain.ErrNotFound)
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by ID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id, workspaceID string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND workspace_id = $2
	`, documentColumns, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	doc, err := scanDocument(executor.QueryRow(ctx, query, id, workspaceID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return doc, nil
}

// Update updates a document
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, title = $2, slug = $3, storage_key = $4, content_hash = $5,
			summary = $6, updated_by = $7, updated_at = $8
		WHERE id = $9 AND workspace_id = $10
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		doc.FolderID,
		doc.Title,
		doc.Slug,
		doc.StorageKey,
		doc.ContentHash,
		doc.Summary,
		doc.UpdatedBy,
		doc.UpdatedAt,
		doc.ID,
		doc.WorkspaceID,
	)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder %s: %w", doc.FolderID, domain.ErrNotFound)
		}
		return fmt.Errorf("update document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}

	return nil
}

// DeleteByIDs deletes documents; tag and link rows cascade
func (r *PostgresDocumentRepository) DeleteByIDs(ctx context.Context, workspaceID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE workspace_id = $1 AND id = ANY($2)
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, workspaceID, ids); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}

	return nil
}

// ListByFolder lists documents directly inside a folder
func (r *PostgresDocumentRepository) ListByFolder(ctx context.Context, workspaceID, folderID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE workspace_id = $1 AND folder_id = $2
		ORDER BY title ASC
	`, documentColumns, r.tables.Documents)

	return r.list(ctx, query, workspaceID, folderID)
}

// ListByFolders lists documents inside any of the folders
func (r *PostgresDocumentRepository) ListByFolders(ctx context.Context, workspaceID string, folderIDs []string) ([]models.Document, error) {
	if len(folderIDs) == 0 {
		return []models.Document{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE workspace_id = $1 AND folder_id = ANY($2)
		ORDER BY created_at ASC
	`, documentColumns, r.tables.Documents)

	return r.list(ctx, query, workspaceID, folderIDs)
}

// ListByWorkspace lists every document in a workspace
func (r *PostgresDocumentRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE workspace_id = $1
		ORDER BY title ASC
	`, documentColumns, r.tables.Documents)

	return r.list(ctx, query, workspaceID)
}

// FindByTitles matches titles case-insensitively, oldest document first
func (r *PostgresDocumentRepository) FindByTitles(ctx context.Context, workspaceID string, titles []string) ([]models.Document, error) {
	if len(titles) == 0 {
		return []models.Document{}, nil
	}

	lowered := make([]string, len(titles))
	for i, t := range titles {
		lowered[i] = strings.ToLower(t)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE workspace_id = $1 AND lower(title) = ANY($2)
		ORDER BY created_at ASC, id ASC
	`, documentColumns, r.tables.Documents)

	return r.list(ctx, query, workspaceID, lowered)
}

// Reparent moves every document in fromFolderIDs into toFolderID
func (r *PostgresDocumentRepository) Reparent(ctx context.Context, workspaceID string, fromFolderIDs []string, toFolderID string) error {
	if len(fromFolderIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, updated_at = NOW()
		WHERE workspace_id = $2 AND folder_id = ANY($3)
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, toFolderID, workspaceID, fromFolderIDs); err != nil {
		return fmt.Errorf("reparent documents: %w", err)
	}

	return nil
}

// ListStorageKeys lists the storage key of every document in a workspace
func (r *PostgresDocumentRepository) ListStorageKeys(ctx context.Context, workspaceID string) ([]string, error) {
	query := fmt.Sprintf(`SELECT storage_key FROM %s WHERE workspace_id = $1`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list document keys: %w", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan document key: %w", err)
	}
	return keys, nil
}

func (r *PostgresDocumentRepository) list(ctx context.Context, query string, args ...any) ([]models.Document, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.ID,
		&doc.WorkspaceID,
		&doc.FolderID,
		&doc.Title,
		&doc.Slug,
		&doc.StorageKey,
		&doc.ContentHash,
		&doc.Summary,
		&doc.CreatedBy,
		&doc.UpdatedBy,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
