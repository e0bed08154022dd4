package kb

import (
	"context"

	"knowledgebase/internal/domain/models/kb"
)

// IndexRepository stores the tag and wiki-link index derived from content.
type IndexRepository interface {
	// ReplaceTags deletes every tag row for the document, then inserts tags
	ReplaceTags(ctx context.Context, documentID string, tags []string) error

	// ReplaceLinks deletes every outgoing link of the source, then inserts links
	ReplaceLinks(ctx context.Context, sourceDocumentID string, links []kb.Link) error

	// ListTags lists a document's tags, sorted
	ListTags(ctx context.Context, documentID string) ([]string, error)

	// ListOutgoing lists documents the source links to
	ListOutgoing(ctx context.Context, workspaceID, sourceDocumentID string) ([]kb.DocumentRef, error)

	// ListBacklinks lists documents linking to the target
	ListBacklinks(ctx context.Context, workspaceID, targetDocumentID string) ([]kb.DocumentRef, error)

	// ListDocumentsByTag lists documents carrying tag
	ListDocumentsByTag(ctx context.Context, workspaceID, tag string) ([]kb.DocumentRef, error)
}
