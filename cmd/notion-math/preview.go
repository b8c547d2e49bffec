// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/notion-math/internal/mirror"
	"github.com/pdiddy/notion-math/internal/report"
	"github.com/pdiddy/notion-math/internal/snapshot"
	"github.com/pdiddy/notion-math/pkg/types"
)

var previewCmd = &cobra.Command{
	Use:   "preview [page-id]",
	Short: "Show the blocks publish would write, without writing them",
	Long: `Preview runs the pipeline up to the write step and prints the outbound
blocks in the API's block object form. Records come from a fresh fetch of
the page, or from a stored snapshot with --snapshot.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	addFetchFlags(previewCmd)
	previewCmd.Flags().String("format", "json", "output format: json or yaml")
	previewCmd.Flags().Int64("snapshot", 0, "read records from this snapshot instead of fetching")
	previewCmd.Flags().Bool("latest", false, "read records from the page's most recent snapshot")

	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}
	snapID, _ := cmd.Flags().GetInt64("snapshot")
	latest, _ := cmd.Flags().GetBool("latest")

	var records []types.FlatRecord
	if snapID > 0 {
		recs, err := snapshotRecords(cmd.Context(), loadConfig().Snapshot, snapID)
		if err != nil {
			return err
		}
		records = recs
	} else {
		pageID, cfg, err := pageConfig(cmd, args)
		if err != nil {
			return err
		}
		if latest {
			records, err = latestRecords(cmd.Context(), cfg.Snapshot, pageID)
		} else {
			records, err = liveRecords(cmd.Context(), cfg, pageID)
		}
		if err != nil {
			return err
		}
	}

	format, _ := cmd.Flags().GetString("format")
	return report.WriteBlocks(os.Stdout, mirror.Transform(records), format)
}

func liveRecords(ctx context.Context, cfg types.Config, pageID string) ([]types.FlatRecord, error) {
	m, err := newMirror(cfg)
	if err != nil {
		return nil, err
	}
	return fetchTree(ctx, m, pageID).Records, nil
}

// latestRecords loads the records of pageID's most recent snapshot.
func latestRecords(ctx context.Context, cfg types.SnapshotConfig, pageID string) ([]types.FlatRecord, error) {
	store, err := snapshot.NewStore(cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	snap, records, err := store.Latest(ctx, pageID)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "Using snapshot %d taken %s\n", snap.ID, snap.TakenAt.Format("2006-01-02 15:04:05"))
	if !snap.Complete {
		fmt.Fprintf(os.Stderr, "Warning: snapshot %d was taken from an incomplete fetch\n", snap.ID)
	}
	return records, nil
}

// snapshotRecords loads the records of a stored snapshot.
func snapshotRecords(ctx context.Context, cfg types.SnapshotConfig, id int64) ([]types.FlatRecord, error) {
	store, err := snapshot.NewStore(cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	snap, records, err := store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %d: %w", id, err)
	}
	if !snap.Complete {
		fmt.Fprintf(os.Stderr, "Warning: snapshot %d was taken from an incomplete fetch\n", id)
	}
	return records, nil
}
