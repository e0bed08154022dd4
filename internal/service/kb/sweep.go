package kb

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	kbSvc "knowledgebase/internal/domain/services/kb"
)

// DefaultSweepMinAge protects blobs written by operations still in flight.
const DefaultSweepMinAge = time.Hour

// SweepOptions controls an orphan sweep
type SweepOptions struct {
	DryRun bool
	MinAge time.Duration // orphans younger than this are kept
}

// SweepResult summarizes an orphan sweep
type SweepResult struct {
	Scanned       int      `json:"scanned"`
	Referenced    int      `json:"referenced"`
	Orphans       []string `json:"orphans"`
	SkippedRecent int      `json:"skipped_recent"`
	Deleted       int      `json:"deleted"`
	Failed        int      `json:"failed"`
}

// Sweeper removes blobs no document or asset row points at. Such orphans are
// left behind when a process dies between a blob write and its row commit, or
// when a stale-key delete fails.
type Sweeper struct {
	repos       Repositories
	blobs       kbSvc.BlobStore
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// NewSweeper creates a new orphan sweeper
func NewSweeper(repos Repositories, blobs kbSvc.BlobStore, opts Options, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		repos:       repos,
		blobs:       blobs,
		concurrency: opts.withDefaults().CascadeConcurrency,
		logger:      logger,
		now:         time.Now,
	}
}

// Sweep lists every blob of workspaceID and deletes those that are
// unreferenced and older than opts.MinAge
func (s *Sweeper) Sweep(ctx context.Context, workspaceID string, opts SweepOptions) (*SweepResult, error) {
	if opts.MinAge <= 0 {
		opts.MinAge = DefaultSweepMinAge
	}

	// List blobs before reading references: a blob written after the listing
	// is never considered, and one committed after it is still referenced.
	objects, err := s.blobs.List(ctx, WorkspacePrefix(workspaceID))
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}

	docKeys, err := s.repos.Documents.ListStorageKeys(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	assetKeys, err := s.repos.Assets.ListStorageKeys(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	referenced := make(map[string]struct{}, len(docKeys)+len(assetKeys))
	for _, k := range docKeys {
		referenced[k] = struct{}{}
	}
	for _, k := range assetKeys {
		referenced[k] = struct{}{}
	}

	result := &SweepResult{Scanned: len(objects), Orphans: []string{}}
	cutoff := s.now().Add(-opts.MinAge)
	for _, obj := range objects {
		if _, ok := referenced[obj.Key]; ok {
			result.Referenced++
			continue
		}
		if obj.LastModified.After(cutoff) {
			result.SkippedRecent++
			continue
		}
		result.Orphans = append(result.Orphans, obj.Key)
	}
	sort.Strings(result.Orphans)

	if !opts.DryRun {
		result.Failed = deleteKeysBestEffort(ctx, s.blobs, result.Orphans, s.concurrency, s.logger, "orphan sweep")
		result.Deleted = len(result.Orphans) - result.Failed
	}

	s.logger.Info("orphan sweep finished",
		"workspace_id", workspaceID,
		"dry_run", opts.DryRun,
		"scanned", result.Scanned,
		"orphans", len(result.Orphans),
		"deleted", result.Deleted,
		"failed", result.Failed,
		"skipped_recent", result.SkippedRecent,
	)

	return result, nil
}
