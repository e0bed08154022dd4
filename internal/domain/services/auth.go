package services

import (
	"context"

	"knowledgebase/internal/domain/models/kb"
)

// AccessController checks workspace membership before services touch a
// workspace's folders, documents or assets.
//
// Services call RequireAccess first and only then look the resource up, so a
// caller without membership learns nothing about what exists.
type AccessController interface {
	// RequireAccess returns the caller's membership if its role is at least
	// minRole, or a ForbiddenError otherwise
	RequireAccess(ctx context.Context, userID, workspaceID string, minRole kb.Role) (*kb.Member, error)
}
