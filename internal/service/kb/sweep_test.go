package kb

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"
)

func TestSweeper_Sweep(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env.blobs.now = func() time.Time { return now.Add(-3 * time.Hour) }

	doc := env.createDocument(t, "Live", "live", nil)

	oldOrphan := testWS + "/knowledge-base/old-orphan.md"
	freshOrphan := testWS + "/knowledge-base/fresh-orphan.md"
	failing := testWS + "/assets/gone/img.png"
	otherWS := "ws-2/knowledge-base/theirs.md"
	env.blobs.put(oldOrphan, "x", now.Add(-2*time.Hour))
	env.blobs.put(freshOrphan, "x", now.Add(-time.Minute))
	env.blobs.put(failing, "x", now.Add(-2*time.Hour))
	env.blobs.put(otherWS, "x", now.Add(-48*time.Hour))

	sweeper := NewSweeper(env.repos, env.blobs, Options{}, discardLogger())
	sweeper.now = func() time.Time { return now }

	dry, err := sweeper.Sweep(ctx, testWS, SweepOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Sweep(dry run) error = %v", err)
	}
	if want := []string{failing, oldOrphan}; !slices.Equal(dry.Orphans, want) {
		t.Errorf("orphans = %v, want %v", dry.Orphans, want)
	}
	if dry.Scanned != 4 || dry.Referenced != 1 || dry.SkippedRecent != 1 || dry.Deleted != 0 {
		t.Errorf("dry run result = %+v", dry)
	}
	if !env.blobs.has(oldOrphan) {
		t.Error("dry run deleted a blob")
	}

	env.blobs.failDelete[failing] = errors.New("storage unavailable")
	result, err := sweeper.Sweep(ctx, testWS, SweepOptions{})
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if result.Deleted != 1 || result.Failed != 1 {
		t.Errorf("result = %+v", result)
	}
	if env.blobs.has(oldOrphan) {
		t.Error("old orphan survived")
	}
	for _, key := range []string{freshOrphan, doc.StorageKey, otherWS} {
		if !env.blobs.has(key) {
			t.Errorf("%s deleted", key)
		}
	}

	// A shorter minimum age reaches the fresh orphan too
	short, err := sweeper.Sweep(ctx, testWS, SweepOptions{MinAge: time.Second})
	if err != nil {
		t.Fatalf("Sweep(min age) error = %v", err)
	}
	if !slices.Contains(short.Orphans, freshOrphan) || env.blobs.has(freshOrphan) {
		t.Errorf("fresh orphan not swept: %+v", short)
	}
}
