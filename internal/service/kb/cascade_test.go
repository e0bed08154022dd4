package kb

import (
	"slices"
	"testing"

	models "knowledgebase/internal/domain/models/kb"
)

func TestFolderIndex_CollectDescendantIDs(t *testing.T) {
	idx := newFolderIndex([]models.Folder{
		{ID: "root"},
		{ID: "a", ParentFolderID: ptr("root")},
		{ID: "b", ParentFolderID: ptr("root")},
		{ID: "a1", ParentFolderID: ptr("a")},
		{ID: "a1x", ParentFolderID: ptr("a1")},
		// A corrupt cycle must not loop forever
		{ID: "c1", ParentFolderID: ptr("c2")},
		{ID: "c2", ParentFolderID: ptr("c1")},
	})

	tests := []struct {
		from string
		want []string
	}{
		{"root", []string{"root", "a", "b", "a1", "a1x"}},
		{"a", []string{"a", "a1", "a1x"}},
		{"b", []string{"b"}},
		{"c1", []string{"c1", "c2"}},
	}
	for _, tt := range tests {
		got := idx.collectDescendantIDs(tt.from)
		if !slices.Equal(got, tt.want) {
			t.Errorf("collectDescendantIDs(%q) = %v, want %v", tt.from, got, tt.want)
		}
	}

	if _, ok := idx.get("missing"); ok {
		t.Error("get(missing) reported a folder")
	}
}
