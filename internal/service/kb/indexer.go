package kb

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	models "knowledgebase/internal/domain/models/kb"
	kbRepo "knowledgebase/internal/domain/repositories/kb"
)

var (
	tagPattern      = regexp.MustCompile(`(?:^|\s)#([\w-]+)`)
	wikiLinkPattern = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)
)

// ExtractTags returns the distinct lowercase hashtags in content, sorted.
// A tag must start the content or follow whitespace, so headings and
// anchors like "page#section" are not tags.
func ExtractTags(content string) []string {
	seen := make(map[string]struct{})
	for _, m := range tagPattern.FindAllStringSubmatch(content, -1) {
		seen[strings.ToLower(m[1])] = struct{}{}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ExtractWikiLinks returns the distinct trimmed titles referenced as
// [[Title]], in order of first appearance.
func ExtractWikiLinks(content string) []string {
	seen := make(map[string]struct{})
	var titles []string
	for _, m := range wikiLinkPattern.FindAllStringSubmatch(content, -1) {
		title := strings.TrimSpace(m[1])
		if title == "" {
			continue
		}
		if _, ok := seen[title]; ok {
			continue
		}
		seen[title] = struct{}{}
		titles = append(titles, title)
	}
	return titles
}

// BlobMetadata is attached to every document upload so a workspace can be
// audited or recovered from the blob store alone.
func BlobMetadata(workspaceID, title, folderPath string, tags []string) map[string]string {
	return map[string]string{
		"workspace_id": workspaceID,
		"title":        title,
		"tags":         strings.Join(tags, ","),
		"folder_path":  folderPath,
	}
}

// IndexResult describes what Sync stored.
type IndexResult struct {
	Tags              []string
	LinkedDocumentIDs []string
	UnresolvedTitles  []string
}

// Indexer rebuilds a document's tag and outgoing-link rows from its content.
type Indexer struct {
	docRepo   kbRepo.DocumentRepository
	indexRepo kbRepo.IndexRepository
	logger    *slog.Logger
}

// NewIndexer creates a new tag/link indexer
func NewIndexer(
	docRepo kbRepo.DocumentRepository,
	indexRepo kbRepo.IndexRepository,
	logger *slog.Logger,
) *Indexer {
	return &Indexer{
		docRepo:   docRepo,
		indexRepo: indexRepo,
		logger:    logger,
	}
}

// Sync replaces the tags and outgoing links of documentID with those found
// in content. Each wiki-link title resolves to the oldest document in the
// workspace whose title matches case-insensitively; self-links are dropped.
//
// Sync does not open a transaction; callers run it inside theirs.
func (x *Indexer) Sync(ctx context.Context, workspaceID, documentID, content string) (*IndexResult, error) {
	result := &IndexResult{
		Tags:              ExtractTags(content),
		LinkedDocumentIDs: []string{},
	}

	if err := x.indexRepo.ReplaceTags(ctx, documentID, result.Tags); err != nil {
		return nil, fmt.Errorf("sync tags: %w", err)
	}

	titles := ExtractWikiLinks(content)
	targets := make(map[string]string, len(titles))
	if len(titles) > 0 {
		matches, err := x.docRepo.FindByTitles(ctx, workspaceID, titles)
		if err != nil {
			return nil, fmt.Errorf("resolve wiki-links: %w", err)
		}
		// Oldest first, so the first match per title wins
		for _, doc := range matches {
			key := strings.ToLower(doc.Title)
			if _, ok := targets[key]; !ok {
				targets[key] = doc.ID
			}
		}
	}

	now := time.Now().UTC()
	linked := make(map[string]struct{})
	var links []models.Link
	for _, title := range titles {
		targetID, ok := targets[strings.ToLower(title)]
		if !ok {
			result.UnresolvedTitles = append(result.UnresolvedTitles, title)
			continue
		}
		if targetID == documentID {
			continue
		}
		if _, dup := linked[targetID]; dup {
			continue
		}
		linked[targetID] = struct{}{}
		links = append(links, models.Link{
			SourceDocumentID: documentID,
			TargetDocumentID: targetID,
			LinkType:         models.LinkTypeWiki,
			CreatedAt:        now,
		})
		result.LinkedDocumentIDs = append(result.LinkedDocumentIDs, targetID)
	}

	if err := x.indexRepo.ReplaceLinks(ctx, documentID, links); err != nil {
		return nil, fmt.Errorf("sync links: %w", err)
	}

	x.logger.Debug("document index synced",
		"document_id", documentID,
		"tags", len(result.Tags),
		"links", len(links),
		"unresolved", len(result.UnresolvedTitles),
	)

	return result, nil
}
