package kb

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// RootFolderPath is the fixed materialized path of every workspace root.
	RootFolderPath = "knowledge-base"

	// RootFolderName is the display name given to an auto-created root.
	RootFolderName = "Knowledge Base"

	// fallbackSlug is used when a name has no slug-able characters.
	fallbackSlug = "document"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name and collapses every run of characters outside
// [a-z0-9] into a single "-". Names without any such character become "document".
//
// Slugify is idempotent.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return fallbackSlug
	}
	return slug
}

// ChildPath returns the materialized path of a folder called name under parentPath.
func ChildPath(parentPath, name string) string {
	return parentPath + "/" + Slugify(name)
}

// ReplacePathPrefix rewrites path when it equals oldPrefix or lies under it.
// Paths that merely share a string prefix ("a/bc" vs "a/b") are left alone.
func ReplacePathPrefix(path, oldPrefix, newPrefix string) string {
	if path == oldPrefix {
		return newPrefix
	}
	if strings.HasPrefix(path, oldPrefix+"/") {
		return newPrefix + path[len(oldPrefix):]
	}
	return path
}

// IsWithinPath reports whether path equals prefix or lies under it.
func IsWithinPath(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// SplitFolderPath splits a slash-separated folder path into trimmed names.
// Empty segments are skipped; "." and ".." are rejected.
//
// Examples:
//   - SplitFolderPath("/Product/ Specs/") → ["Product", "Specs"]
//   - SplitFolderPath("") → []
func SplitFolderPath(path string) ([]string, error) {
	var names []string
	for _, segment := range strings.Split(path, "/") {
		segment = strings.TrimSpace(segment)
		switch segment {
		case "":
			continue
		case ".", "..":
			return nil, fmt.Errorf("folder path cannot contain '.' or '..'")
		}
		names = append(names, segment)
	}
	return names, nil
}
