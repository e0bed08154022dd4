package kb

import (
	"slices"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces", "Product Specs", "product-specs"},
		{"surrounding whitespace", "  API Guide  ", "api-guide"},
		{"punctuation runs", "Hello, World!!", "hello-world"},
		{"symbols only between words", "C++ & Go", "c-go"},
		{"underscores collapse", "snake__case_name", "snake-case-name"},
		{"already a slug", "release-notes-2024", "release-notes-2024"},
		{"non-latin falls back", "日本語", "document"},
		{"empty falls back", "", "document"},
		{"only separators", " --- ", "document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slugify(tt.in)
			if got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := Slugify(got); again != got {
				t.Errorf("Slugify is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestChildPath(t *testing.T) {
	if got := ChildPath(RootFolderPath, "Product Specs"); got != "knowledge-base/product-specs" {
		t.Errorf("ChildPath() = %q", got)
	}
	if got := ChildPath("knowledge-base/a", "!!!"); got != "knowledge-base/a/document" {
		t.Errorf("ChildPath() with unsluggable name = %q", got)
	}
}

func TestReplacePathPrefix(t *testing.T) {
	tests := []struct {
		path, oldPrefix, newPrefix string
		want                       string
	}{
		{"kb/a", "kb/a", "kb/b", "kb/b"},
		{"kb/a/x/y", "kb/a", "kb/b", "kb/b/x/y"},
		{"kb/abc", "kb/a", "kb/b", "kb/abc"},
		{"kb/other", "kb/a", "kb/b", "kb/other"},
		{"kb/a/x", "kb/a", "kb/z/a", "kb/z/a/x"},
	}

	for _, tt := range tests {
		if got := ReplacePathPrefix(tt.path, tt.oldPrefix, tt.newPrefix); got != tt.want {
			t.Errorf("ReplacePathPrefix(%q, %q, %q) = %q, want %q", tt.path, tt.oldPrefix, tt.newPrefix, got, tt.want)
		}
	}
}

func TestIsWithinPath(t *testing.T) {
	tests := []struct {
		path, prefix string
		want         bool
	}{
		{"kb/a", "kb/a", true},
		{"kb/a/b", "kb/a", true},
		{"kb/ab", "kb/a", false},
		{"kb", "kb/a", false},
	}
	for _, tt := range tests {
		if got := IsWithinPath(tt.path, tt.prefix); got != tt.want {
			t.Errorf("IsWithinPath(%q, %q) = %v, want %v", tt.path, tt.prefix, got, tt.want)
		}
	}
}

func TestSplitFolderPath(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{"simple", "Product/Specs", []string{"Product", "Specs"}, false},
		{"trims and skips empties", "/Product/ Specs //", []string{"Product", "Specs"}, false},
		{"empty", "", nil, false},
		{"dot segment", "a/./b", nil, true},
		{"parent segment", "../b", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitFolderPath(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitFolderPath(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("SplitFolderPath(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
