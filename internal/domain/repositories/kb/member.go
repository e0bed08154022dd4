package kb

import (
	"context"

	"knowledgebase/internal/domain/models/kb"
)

// MemberRepository reads and writes workspace memberships
type MemberRepository interface {
	// Get returns the membership of userID in workspaceID
	Get(ctx context.Context, workspaceID, userID string) (*kb.Member, error)

	// Upsert creates or changes a membership
	Upsert(ctx context.Context, member *kb.Member) error
}
