package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxDocumentTitleLength is the maximum length for document titles.
	MaxDocumentTitleLength = 255

	// MaxFolderPathLength bounds the materialized folder path. Deeper
	// hierarchies than this indicate an import gone wrong.
	MaxFolderPathLength = 1000

	// MaxAssetFilenameLength is the maximum length for asset filenames.
	MaxAssetFilenameLength = 255

	// DefaultAssetMaxBytes caps a single image asset at 10MB.
	DefaultAssetMaxBytes = 10 << 20

	// DefaultCascadeConcurrency is how many blob copies a folder cascade
	// runs at once.
	DefaultCascadeConcurrency = 8

	// SummaryLength is the number of characters kept in a document summary.
	SummaryLength = 200
)
