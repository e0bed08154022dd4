package kb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"knowledgebase/internal/domain"
	models "knowledgebase/internal/domain/models/kb"
	kbRepo "knowledgebase/internal/domain/repositories/kb"
	"knowledgebase/internal/repository/postgres"
)

// PostgresMemberRepository implements the MemberRepository interface
type PostgresMemberRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewMemberRepository creates a new workspace membership repository
func NewMemberRepository(config *postgres.RepositoryConfig) kbRepo.MemberRepository {
	return &PostgresMemberRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Get returns the membership of userID in workspaceID
func (r *PostgresMemberRepository) Get(ctx context.Context, workspaceID, userID string) (*models.Member, error) {
	query := fmt.Sprintf(`
		SELECT workspace_id, user_id, role, created_at
		FROM %s
		WHERE workspace_id = $1 AND user_id = $2
	`, r.tables.Members)

	var m models.Member
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, workspaceID, userID).Scan(&m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("membership: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return &m, nil
}

// Upsert creates or changes a membership
func (r *PostgresMemberRepository) Upsert(ctx context.Context, member *models.Member) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (workspace_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (workspace_id, user_id) DO UPDATE SET role = EXCLUDED.role
		RETURNING created_at
	`, r.tables.Members)

	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, member.WorkspaceID, member.UserID, member.Role, member.CreatedAt).Scan(&member.CreatedAt); err != nil {
		return fmt.Errorf("upsert membership: %w", err)
	}
	return nil
}
