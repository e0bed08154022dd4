package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"knowledgebase/internal/domain"
	models "knowledgebase/internal/domain/models/kb"
	kbRepo "knowledgebase/internal/domain/repositories/kb"
	"knowledgebase/internal/domain/services"
)

// RoleBasedAuthorizer implements AccessController from workspace memberships.
// Roles are ordered viewer < editor < admin < owner.
type RoleBasedAuthorizer struct {
	memberRepo kbRepo.MemberRepository
	logger     *slog.Logger
}

// NewRoleBasedAuthorizer creates a new membership-based authorizer
func NewRoleBasedAuthorizer(memberRepo kbRepo.MemberRepository, logger *slog.Logger) *RoleBasedAuthorizer {
	return &RoleBasedAuthorizer{
		memberRepo: memberRepo,
		logger:     logger,
	}
}

// RequireAccess returns the membership if its role is at least minRole
func (a *RoleBasedAuthorizer) RequireAccess(ctx context.Context, userID, workspaceID string, minRole models.Role) (*models.Member, error) {
	if userID == "" {
		return nil, &domain.UnauthorizedError{Message: "missing user"}
	}

	member, err := a.memberRepo.Get(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.ForbiddenError{Message: fmt.Sprintf("no access to workspace %s", workspaceID)}
		}
		return nil, fmt.Errorf("check workspace access: %w", err)
	}

	if !member.Role.AtLeast(minRole) {
		a.logger.Debug("insufficient workspace role",
			"user_id", userID,
			"workspace_id", workspaceID,
			"role", member.Role,
			"required", minRole,
		)
		return nil, &domain.ForbiddenError{Message: fmt.Sprintf("%s access to workspace %s requires role %s", member.Role, workspaceID, minRole)}
	}

	return member, nil
}

// Grant creates or changes a membership
func (a *RoleBasedAuthorizer) Grant(ctx context.Context, workspaceID, userID string, role models.Role) (*models.Member, error) {
	if !role.Valid() {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("unknown role %q", role)}
	}

	member := &models.Member{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.memberRepo.Upsert(ctx, member); err != nil {
		return nil, err
	}

	a.logger.Info("workspace membership granted", "workspace_id", workspaceID, "user_id", userID, "role", role)
	return member, nil
}

type systemAccess struct{}

// SystemAccess grants owner access to everything. Only maintenance commands
// that act on behalf of the operator use it.
func SystemAccess() services.AccessController {
	return systemAccess{}
}

func (systemAccess) RequireAccess(_ context.Context, userID, workspaceID string, _ models.Role) (*models.Member, error) {
	return &models.Member{WorkspaceID: workspaceID, UserID: userID, Role: models.RoleOwner}, nil
}
