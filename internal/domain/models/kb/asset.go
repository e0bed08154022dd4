package kb

import "time"

// Asset is an image embedded in a document. Its storage key depends only on
// the document id and filename, so folder cascades never rewrite it.
type Asset struct {
	ID          string    `json:"id" db:"id"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	DocumentID  string    `json:"document_id" db:"document_id"`
	Filename    string    `json:"filename" db:"filename"`
	MimeType    string    `json:"mime_type" db:"mime_type"`
	Size        int64     `json:"size" db:"size"`
	StorageKey  string    `json:"storage_key" db:"storage_key"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// UploadTarget tells a client how to send bytes straight to the blob store.
// Fields is non-empty for form-based (POST policy) uploads.
type UploadTarget struct {
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Fields    map[string]string `json:"fields,omitempty"`
	ExpiresAt time.Time         `json:"expires_at"`
}
