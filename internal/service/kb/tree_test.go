package kb

import (
	"context"
	"errors"
	"testing"

	"knowledgebase/internal/domain"
)

func TestTreeService_GetWorkspaceTree(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	specs := env.createFolder(t, "Specs", nil)
	api := env.createFolder(t, "API", &specs.ID)
	env.createDocument(t, "Overview", "Short summary of things.", nil)
	env.createDocument(t, "Endpoints", "GET /items", &api.ID)

	tree, err := env.tree.GetWorkspaceTree(ctx, viewerUser, testWS)
	if err != nil {
		t.Fatalf("GetWorkspaceTree() error = %v", err)
	}

	root := tree.Root
	if root == nil || root.Path != RootFolderPath {
		t.Fatalf("root = %+v", root)
	}
	if len(root.Documents) != 1 || root.Documents[0].Title != "Overview" || root.Documents[0].Summary != "Short summary of things." {
		t.Errorf("root documents = %+v", root.Documents)
	}
	if len(root.Folders) != 1 || root.Folders[0].ID != specs.ID {
		t.Fatalf("root folders = %+v", root.Folders)
	}
	specsNode := root.Folders[0]
	if len(specsNode.Documents) != 0 || len(specsNode.Folders) != 1 {
		t.Fatalf("specs node = %+v", specsNode)
	}
	apiNode := specsNode.Folders[0]
	if apiNode.Path != "knowledge-base/specs/api" || len(apiNode.Documents) != 1 || apiNode.Documents[0].Title != "Endpoints" {
		t.Errorf("api node = %+v", apiNode)
	}
	if apiNode.Folders == nil || apiNode.Documents == nil {
		t.Error("empty children must be non-nil slices")
	}

	if _, err := env.tree.GetWorkspaceTree(ctx, outsider, testWS); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("outsider error = %v, want ErrForbidden", err)
	}
}

func TestTreeService_EmptyWorkspace(t *testing.T) {
	env := newTestEnv(t)

	tree, err := env.tree.GetWorkspaceTree(context.Background(), testUser, testWS)
	if err != nil {
		t.Fatalf("GetWorkspaceTree() error = %v", err)
	}
	if tree.Root == nil || len(tree.Root.Folders) != 0 || len(tree.Root.Documents) != 0 {
		t.Errorf("tree = %+v", tree.Root)
	}
}
