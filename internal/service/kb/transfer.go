package kb

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"knowledgebase/internal/domain"
	kbSvc "knowledgebase/internal/domain/services/kb"
	"knowledgebase/internal/utils"
)

// ExportResult summarizes an export
type ExportResult struct {
	Documents int      `json:"documents"`
	Files     []string `json:"files"`
}

// Exporter writes a workspace as a directory of markdown files with YAML
// frontmatter, laid out by folder path
type Exporter struct {
	repos  Repositories
	blobs  kbSvc.BlobStore
	logger *slog.Logger
}

// NewExporter creates a new workspace exporter
func NewExporter(repos Repositories, blobs kbSvc.BlobStore, logger *slog.Logger) *Exporter {
	return &Exporter{repos: repos, blobs: blobs, logger: logger}
}

// Export writes every document of workspaceID under dir as
// {folder path}/{slug}.md. Slug collisions within a folder get the document
// id appended.
func (e *Exporter) Export(ctx context.Context, workspaceID, dir string) (*ExportResult, error) {
	folders, err := e.repos.Folders.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	paths := make(map[string]string, len(folders))
	for _, f := range folders {
		paths[f.ID] = f.Path
	}

	docs, err := e.repos.Documents.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{Files: []string{}}
	written := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		folderPath, ok := paths[doc.FolderID]
		if !ok {
			return nil, fmt.Errorf("document %s: folder %s: %w", doc.ID, doc.FolderID, domain.ErrNotFound)
		}

		content, found, err := e.blobs.GetContent(ctx, doc.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", doc.ID, err)
		}
		if !found {
			return nil, &domain.StorageInconsistentError{
				Message: fmt.Sprintf("content of document %s is missing from storage", doc.ID),
				Key:     doc.StorageKey,
			}
		}
		tags, err := e.repos.Index.ListTags(ctx, doc.ID)
		if err != nil {
			return nil, err
		}

		rel := filepath.Join(filepath.FromSlash(folderPath), doc.Slug+".md")
		if _, dup := written[rel]; dup {
			rel = filepath.Join(filepath.FromSlash(folderPath), doc.Slug+"-"+doc.ID+".md")
		}
		written[rel] = struct{}{}

		out, err := utils.RenderFrontmatter(&utils.Frontmatter{
			ID:         doc.ID,
			Title:      doc.Title,
			Tags:       tags,
			FolderPath: folderPath,
		}, content)
		if err != nil {
			return nil, err
		}

		target := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("create export directory: %w", err)
		}
		if err := os.WriteFile(target, out, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", rel, err)
		}

		result.Documents++
		result.Files = append(result.Files, filepath.ToSlash(rel))
	}

	e.logger.Info("workspace exported",
		"workspace_id", workspaceID,
		"documents", result.Documents,
		"dir", dir,
	)

	return result, nil
}

// ImportResult summarizes an import
type ImportResult struct {
	Created int           `json:"created"`
	Skipped int           `json:"skipped"`
	Errors  []ImportError `json:"errors,omitempty"`
}

// ImportError records a file that could not be imported
type ImportError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Importer creates documents from a directory of markdown files
type Importer struct {
	documents kbSvc.DocumentService
	logger    *slog.Logger
}

// NewImporter creates a new importer
func NewImporter(documents kbSvc.DocumentService, logger *slog.Logger) *Importer {
	return &Importer{documents: documents, logger: logger}
}

// Import walks dir for *.md files and creates one document per file. The
// file's directory, relative to dir, becomes its folder path, with a leading
// RootFolderPath segment dropped so exports import back in place. Titles come
// from frontmatter, falling back to the file name. Files that fail are
// recorded and skipped.
func (im *Importer) Import(ctx context.Context, workspaceID, userID, dir string) (*ImportResult, error) {
	result := &ImportResult{}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".md") {
			result.Skipped++
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if err := im.importFile(ctx, workspaceID, userID, path, rel); err != nil {
			// Access problems apply to every file
			if errors.Is(err, domain.ErrForbidden) {
				return err
			}
			im.logger.Warn("import failed", "file", rel, "error", err)
			result.Errors = append(result.Errors, ImportError{File: rel, Error: err.Error()})
			return nil
		}
		result.Created++
		return nil
	})
	if err != nil {
		return result, err
	}

	im.logger.Info("workspace imported",
		"workspace_id", workspaceID,
		"created", result.Created,
		"skipped", result.Skipped,
		"failed", len(result.Errors),
	)

	return result, nil
}

func (im *Importer) importFile(ctx context.Context, workspaceID, userID, path, rel string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fm, body, err := utils.ParseFrontmatter(raw)
	if err != nil {
		return err
	}

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	}

	folderPath := strings.TrimSuffix(rel, filepath.Base(rel))
	folderPath = strings.Trim(folderPath, "/")
	if folderPath == RootFolderPath {
		folderPath = ""
	} else {
		folderPath = strings.TrimPrefix(folderPath, RootFolderPath+"/")
	}

	req := &kbSvc.CreateDocumentRequest{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Title:       title,
		Content:     body,
	}
	if folderPath != "" {
		req.FolderPath = &folderPath
	}
	_, err = im.documents.CreateDocument(ctx, req)
	return err
}
