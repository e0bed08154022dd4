package kb

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strings"
)

// MarkdownMimeType is the content type documents are stored with.
const MarkdownMimeType = "text/markdown; charset=utf-8"

// DocumentKey derives the blob key of a document. The id component keeps
// keys unique when two titles slugify alike.
//
//	DocumentKey("ws", "knowledge-base/specs", "api-guide", "d1") → "ws/knowledge-base/specs/api-guide-d1.md"
func DocumentKey(workspaceID, folderPath, slug, documentID string) string {
	return workspaceID + "/" + folderPath + "/" + slug + "-" + documentID + ".md"
}

// AssetKey derives the blob key of an image asset. It does not depend on the
// document's folder, so it survives moves and renames.
func AssetKey(workspaceID, documentID, filename string) string {
	return workspaceID + "/assets/" + documentID + "/" + SanitizeFilename(filename)
}

// WorkspacePrefix is the key prefix shared by every blob of a workspace.
func WorkspacePrefix(workspaceID string) string {
	return workspaceID + "/"
}

// SanitizeFilename slugifies the stem of filename and lowercases its extension.
func SanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	ext = strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(ext), "-"), "-")
	if ext == "" {
		return Slugify(stem)
	}
	return Slugify(stem) + "." + ext
}

// ContentHash returns the hex SHA-256 of content.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
