package postgres

import (
	"context"
	"fmt"
	"strings"
)

// RunSchema creates tables and indexes if they don't exist.
//
// The one-root-per-workspace index is left to EnsureRootIndex so that
// databases carrying duplicate roots can be repaired first.
func RunSchema(ctx context.Context, db DBTX, tables *TableNames) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id UUID PRIMARY KEY,
			workspace_id UUID NOT NULL,
			parent_folder_id UUID REFERENCES ` + tables.Folders + `(id),
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			created_by UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT ` + tables.Folders + `_path_key UNIQUE (workspace_id, path)
		)`,
		`CREATE INDEX IF NOT EXISTS ` + tables.Folders + `_parent_idx ON ` + tables.Folders + ` (workspace_id, parent_folder_id)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Documents + ` (
			id UUID PRIMARY KEY,
			workspace_id UUID NOT NULL,
			folder_id UUID NOT NULL REFERENCES ` + tables.Folders + `(id),
			title TEXT NOT NULL,
			slug TEXT NOT NULL,
			storage_key TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			created_by UUID NOT NULL,
			updated_by UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS ` + tables.Documents + `_folder_idx ON ` + tables.Documents + ` (workspace_id, folder_id)`,
		`CREATE INDEX IF NOT EXISTS ` + tables.Documents + `_title_idx ON ` + tables.Documents + ` (workspace_id, lower(title))`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Tags + ` (
			document_id UUID NOT NULL REFERENCES ` + tables.Documents + `(id) ON DELETE CASCADE,
			tag TEXT NOT NULL,
			PRIMARY KEY (document_id, tag)
		)`,
		`CREATE INDEX IF NOT EXISTS ` + tables.Tags + `_tag_idx ON ` + tables.Tags + ` (tag)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Links + ` (
			source_document_id UUID NOT NULL REFERENCES ` + tables.Documents + `(id) ON DELETE CASCADE,
			target_document_id UUID NOT NULL REFERENCES ` + tables.Documents + `(id) ON DELETE CASCADE,
			link_type TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (source_document_id, target_document_id, link_type)
		)`,
		`CREATE INDEX IF NOT EXISTS ` + tables.Links + `_target_idx ON ` + tables.Links + ` (target_document_id)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Assets + ` (
			id UUID PRIMARY KEY,
			workspace_id UUID NOT NULL,
			document_id UUID NOT NULL REFERENCES ` + tables.Documents + `(id) ON DELETE CASCADE,
			filename TEXT NOT NULL,
			mime_type TEXT NOT NULL,
			size BIGINT NOT NULL,
			storage_key TEXT NOT NULL,
			created_by UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT ` + tables.Assets + `_document_filename_key UNIQUE (document_id, filename)
		)`,

		`CREATE TABLE IF NOT EXISTS ` + tables.Members + ` (
			workspace_id UUID NOT NULL,
			user_id UUID NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('viewer', 'editor', 'admin', 'owner')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (workspace_id, user_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("run schema statement %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// EnsureRootIndex enforces at most one root folder per workspace.
// It fails while duplicate roots exist.
func EnsureRootIndex(ctx context.Context, db DBTX, tables *TableNames) error {
	stmt := `CREATE UNIQUE INDEX IF NOT EXISTS ` + RootIndexName(tables) + ` ON ` + tables.Folders +
		` (workspace_id) WHERE parent_folder_id IS NULL`
	if _, err := db.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create root index: %w", err)
	}
	return nil
}

// RootIndexName is the name of the one-root-per-workspace index
func RootIndexName(tables *TableNames) string {
	return tables.Folders + "_root_key"
}

// DropTables drops every knowledge-base table. Used by integration tests.
func DropTables(ctx context.Context, db DBTX, tables *TableNames) error {
	for _, t := range []string{tables.Assets, tables.Links, tables.Tags, tables.Documents, tables.Folders, tables.Members} {
		if _, err := db.Exec(ctx, "DROP TABLE IF EXISTS "+t+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", t, err)
		}
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
