package kb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	models "knowledgebase/internal/domain/models/kb"
	kbRepo "knowledgebase/internal/domain/repositories/kb"
	"knowledgebase/internal/repository/postgres"
)

// PostgresIndexRepository implements the IndexRepository interface
type PostgresIndexRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewIndexRepository creates a new tag/link index repository
func NewIndexRepository(config *postgres.RepositoryConfig) kbRepo.IndexRepository {
	return &PostgresIndexRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// ReplaceTags deletes then inserts the document's tags
func (r *PostgresIndexRepository) ReplaceTags(ctx context.Context, documentID string, tags []string) error {
	executor := postgres.GetExecutor(ctx, r.pool)

	del := fmt.Sprintf(`DELETE FROM %s WHERE document_id = $1`, r.tables.Tags)
	if _, err := executor.Exec(ctx, del, documentID); err != nil {
		return fmt.Errorf("delete tags: %w", err)
	}
	if len(tags) == 0 {
		return nil
	}

	ins := fmt.Sprintf(`
		INSERT INTO %s (document_id, tag)
		SELECT $1, unnest($2::text[])
		ON CONFLICT DO NOTHING
	`, r.tables.Tags)
	if _, err := executor.Exec(ctx, ins, documentID, tags); err != nil {
		return fmt.Errorf("insert tags: %w", err)
	}
	return nil
}

// ReplaceLinks deletes then inserts the source's outgoing links
func (r *PostgresIndexRepository) ReplaceLinks(ctx context.Context, sourceDocumentID string, links []models.Link) error {
	executor := postgres.GetExecutor(ctx, r.pool)

	del := fmt.Sprintf(`DELETE FROM %s WHERE source_document_id = $1`, r.tables.Links)
	if _, err := executor.Exec(ctx, del, sourceDocumentID); err != nil {
		return fmt.Errorf("delete links: %w", err)
	}

	ins := fmt.Sprintf(`
		INSERT INTO %s (source_document_id, target_document_id, link_type, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`, r.tables.Links)
	for _, link := range links {
		if _, err := executor.Exec(ctx, ins, sourceDocumentID, link.TargetDocumentID, link.LinkType, link.CreatedAt); err != nil {
			return fmt.Errorf("insert link to %s: %w", link.TargetDocumentID, err)
		}
	}
	return nil
}

// ListTags lists a document's tags, sorted
func (r *PostgresIndexRepository) ListTags(ctx context.Context, documentID string) ([]string, error) {
	query := fmt.Sprintf(`SELECT tag FROM %s WHERE document_id = $1 ORDER BY tag`, r.tables.Tags)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	tags, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan tag: %w", err)
	}
	return tags, nil
}

// ListOutgoing lists documents the source links to
func (r *PostgresIndexRepository) ListOutgoing(ctx context.Context, workspaceID, sourceDocumentID string) ([]models.DocumentRef, error) {
	query := fmt.Sprintf(`
		SELECT d.id, d.title, d.slug, d.folder_id, d.updated_at
		FROM %s l
		JOIN %s d ON d.id = l.target_document_id
		WHERE l.source_document_id = $1 AND d.workspace_id = $2
		ORDER BY d.title ASC
	`, r.tables.Links, r.tables.Documents)

	return r.listRefs(ctx, query, sourceDocumentID, workspaceID)
}

// ListBacklinks lists documents linking to the target
func (r *PostgresIndexRepository) ListBacklinks(ctx context.Context, workspaceID, targetDocumentID string) ([]models.DocumentRef, error) {
	query := fmt.Sprintf(`
		SELECT d.id, d.title, d.slug, d.folder_id, d.updated_at
		FROM %s l
		JOIN %s d ON d.id = l.source_document_id
		WHERE l.target_document_id = $1 AND d.workspace_id = $2
		ORDER BY d.title ASC
	`, r.tables.Links, r.tables.Documents)

	return r.listRefs(ctx, query, targetDocumentID, workspaceID)
}

// ListDocumentsByTag lists documents carrying tag
func (r *PostgresIndexRepository) ListDocumentsByTag(ctx context.Context, workspaceID, tag string) ([]models.DocumentRef, error) {
	query := fmt.Sprintf(`
		SELECT d.id, d.title, d.slug, d.folder_id, d.updated_at
		FROM %s t
		JOIN %s d ON d.id = t.document_id
		WHERE t.tag = $1 AND d.workspace_id = $2
		ORDER BY d.title ASC
	`, r.tables.Tags, r.tables.Documents)

	return r.listRefs(ctx, query, tag, workspaceID)
}

func (r *PostgresIndexRepository) listRefs(ctx context.Context, query string, args ...any) ([]models.DocumentRef, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list document refs: %w", err)
	}
	refs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.DocumentRef, error) {
		var ref models.DocumentRef
		err := row.Scan(&ref.ID, &ref.Title, &ref.Slug, &ref.FolderID, &ref.UpdatedAt)
		return ref, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan document ref: %w", err)
	}
	return refs, nil
}
