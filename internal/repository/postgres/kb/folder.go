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

const folderColumns = `id, workspace_id, parent_folder_id, name, path, created_by, created_at, updated_at`

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) kbRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Folders, folderColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		folder.ID,
		folder.WorkspaceID,
		folder.ParentFolderID,
		folder.Name,
		folder.Path,
		folder.CreatedBy,
		folder.CreatedAt,
		folder.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.conflict(ctx, folder.WorkspaceID, folder.Path, err)
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id, workspaceID string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND workspace_id = $2
	`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id, workspaceID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// GetByPath retrieves a folder by its materialized path
func (r *PostgresFolderRepository) GetByPath(ctx context.Context, workspaceID, path string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE workspace_id = $1 AND path = $2
	`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, workspaceID, path))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder by path: %w", err)
	}

	return folder, nil
}

// ListRoots lists folders with no parent, oldest first
func (r *PostgresFolderRepository) ListRoots(ctx context.Context, workspaceID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE workspace_id = $1 AND parent_folder_id IS NULL
		ORDER BY created_at ASC, id ASC
	`, folderColumns, r.tables.Folders)

	return r.list(ctx, query, workspaceID)
}

// ListChildren lists immediate child folders
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, workspaceID, parentID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE workspace_id = $1 AND parent_folder_id = $2
		ORDER BY name ASC
	`, folderColumns, r.tables.Folders)

	return r.list(ctx, query, workspaceID, parentID)
}

// ListByWorkspace retrieves all folders in a workspace (flat list)
func (r *PostgresFolderRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE workspace_id = $1
		ORDER BY path ASC
	`, folderColumns, r.tables.Folders)

	return r.list(ctx, query, workspaceID)
}

// Update updates a folder
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_folder_id = $1, name = $2, path = $3, updated_at = $4
		WHERE id = $5 AND workspace_id = $6
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		folder.ParentFolderID,
		folder.Name,
		folder.Path,
		folder.UpdatedAt,
		folder.ID,
		folder.WorkspaceID,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return r.conflict(ctx, folder.WorkspaceID, folder.Path, err)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// Reparent points children of any folder in fromParentIDs at toParentID
func (r *PostgresFolderRepository) Reparent(ctx context.Context, workspaceID string, fromParentIDs []string, toParentID string) error {
	if len(fromParentIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_folder_id = $1, updated_at = NOW()
		WHERE workspace_id = $2 AND parent_folder_id = ANY($3)
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, toParentID, workspaceID, fromParentIDs); err != nil {
		if postgres.IsPgDuplicateError(err) {
			return fmt.Errorf("reparent folders: %w", domain.ErrConflict)
		}
		return fmt.Errorf("reparent folders: %w", err)
	}

	return nil
}

// DeleteByIDs deletes the given folders in one statement, so parent/child
// references inside the set are resolved together
func (r *PostgresFolderRepository) DeleteByIDs(ctx context.Context, workspaceID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE workspace_id = $1 AND id = ANY($2)
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, workspaceID, ids); err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder still referenced: %w", domain.ErrConflict)
		}
		return fmt.Errorf("delete folders: %w", err)
	}

	return nil
}

// ListWorkspaceIDs lists every workspace that owns at least one folder
func (r *PostgresFolderRepository) ListWorkspaceIDs(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT DISTINCT workspace_id FROM %s ORDER BY workspace_id`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan workspace id: %w", err)
	}
	return ids, nil
}

func (r *PostgresFolderRepository) list(ctx context.Context, query string, args ...any) ([]models.Folder, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// conflict builds a ConflictError naming the folder already holding path
func (r *PostgresFolderRepository) conflict(ctx context.Context, workspaceID, path string, cause error) error {
	if postgres.ConstraintName(cause) == postgres.RootIndexName(r.tables) {
		return &domain.ConflictError{
			Message:      "workspace already has a root folder",
			ResourceType: "folder",
		}
	}

	conflict := &domain.ConflictError{
		Message:      fmt.Sprintf("folder path '%s' already exists", path),
		ResourceType: "folder",
	}
	// Best effort; the existing folder may be in a concurrent transaction
	if existing, err := r.GetByPath(ctx, workspaceID, path); err == nil {
		conflict.ResourceID = existing.ID
	}
	return conflict
}

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.WorkspaceID,
		&folder.ParentFolderID,
		&folder.Name,
		&folder.Path,
		&folder.CreatedBy,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}
