package kb

import "testing"

func TestDocumentKey(t *testing.T) {
	got := DocumentKey("ws", "knowledge-base/product-specs", "api-guide", "d1")
	want := "ws/knowledge-base/product-specs/api-guide-d1.md"
	if got != want {
		t.Errorf("DocumentKey() = %q, want %q", got, want)
	}

	// Same slug, different ids never share a key
	if DocumentKey("ws", "kb", "notes", "a") == DocumentKey("ws", "kb", "notes", "b") {
		t.Error("colliding slugs produced the same key")
	}
}

func TestAssetKey(t *testing.T) {
	got := AssetKey("ws", "d1", "My Diagram.PNG")
	if got != "ws/assets/d1/my-diagram.png" {
		t.Errorf("AssetKey() = %q", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"Screen Shot 2024.PNG", "screen-shot-2024.png"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\Photo.JPG`, "photo.jpg"},
		{"archive.tar.gz", "archive-tar.gz"},
		{"noext", "noext"},
		{"weird.p n g", "weird.p-n-g"},
		{"trailing.", "trailing"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestContentHash(t *testing.T) {
	if got := ContentHash(""); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("ContentHash(\"\") = %q", got)
	}
	if ContentHash("a") == ContentHash("b") {
		t.Error("different content hashed alike")
	}
}
