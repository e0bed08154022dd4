package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"knowledgebase/internal/repository/postgres"
	serviceKB "knowledgebase/internal/service/kb"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables, repair every workspace root, then enforce one root per workspace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := postgres.RunSchema(ctx, app.pool, app.tables); err != nil {
			return err
		}
		repaired, err := repairWorkspaces(cmd, "")
		if err != nil {
			return err
		}
		if err := postgres.EnsureRootIndex(ctx, app.pool, app.tables); err != nil {
			return err
		}
		app.logger.Info("migration complete", "workspaces", repaired)
		return nil
	},
}

var repairWorkspace string

var repairRootsCmd = &cobra.Command{
	Use:   "repair-roots",
	Short: "Ensure each workspace has exactly one root folder",
	Long: `repair-roots creates missing root folders and merges duplicate roots into
the oldest one, moving content to the keys of its new paths.

Without --workspace every workspace that owns a folder is repaired.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := repairWorkspaces(cmd, repairWorkspace)
		if err != nil {
			return err
		}
		app.logger.Info("roots repaired", "workspaces", n)
		return nil
	},
}

func repairWorkspaces(cmd *cobra.Command, only string) (int, error) {
	ctx := cmd.Context()

	workspaces := []string{only}
	if only == "" {
		ids, err := app.repos.Folders.ListWorkspaceIDs(ctx)
		if err != nil {
			return 0, err
		}
		workspaces = ids
	}

	for _, ws := range workspaces {
		root, err := app.kb.Roots.EnsureRoot(ctx, ws)
		if err != nil {
			return 0, fmt.Errorf("repair workspace %s: %w", ws, err)
		}
		app.logger.Debug("workspace root", "workspace_id", ws, "root_id", root.ID)
	}
	return len(workspaces), nil
}

var (
	sweepWorkspace string
	sweepDryRun    bool
	sweepMinAge    time.Duration
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete blobs no document or asset points at",
	Long: `sweep lists a workspace's blobs and deletes those no document or asset
row references. Blobs younger than --min-age are kept, since a write may
still be about to commit its row.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := app.kb.Sweeper.Sweep(cmd.Context(), sweepWorkspace, serviceKB.SweepOptions{
			DryRun: sweepDryRun,
			MinAge: sweepMinAge,
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	repairRootsCmd.Flags().StringVar(&repairWorkspace, "workspace", "", "only repair this workspace")

	sweepCmd.Flags().StringVar(&sweepWorkspace, "workspace", "", "workspace to sweep")
	sweepCmd.Flags().BoolVar(&sweepDryRun, "dry-run", false, "report orphans without deleting")
	sweepCmd.Flags().DurationVar(&sweepMinAge, "min-age", serviceKB.DefaultSweepMinAge, "keep orphans younger than this")
	_ = sweepCmd.MarkFlagRequired("workspace")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
