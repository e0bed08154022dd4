package kb

import "time"

// LinkTypeWiki marks edges created from [[Title]] references.
const LinkTypeWiki = "wiki"

// Tag associates a lowercase hashtag with a document.
type Tag struct {
	DocumentID string `json:"document_id" db:"document_id"`
	Tag        string `json:"tag" db:"tag"`
}

// Link is a directed edge from a document to a document it references.
// Backlinks are this relation read in reverse.
type Link struct {
	SourceDocumentID string    `json:"source_document_id" db:"source_document_id"`
	TargetDocumentID string    `json:"target_document_id" db:"target_document_id"`
	LinkType         string    `json:"link_type" db:"link_type"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
