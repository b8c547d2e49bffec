// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pdiddy/notion-math/internal/mirror"
	"github.com/pdiddy/notion-math/internal/report"
	"github.com/pdiddy/notion-math/pkg/types"
)

var publishCmd = &cobra.Command{
	Use:   "publish [page-id]",
	Short: "Rewrite a page's math as equations and append the blocks back",
	Long: `Publish fetches the page (or loads --snapshot), stores a snapshot of what
it read, rewrites $$...$$ and $...$ spans into equation rich text, and
appends the blocks to the target page in batches.

Blocks are appended, not replaced: clear the page in Notion before
continuing. Use --target to write to a different page instead. A failed
batch is reported and the remaining batches are still sent.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPublish,
}

func init() {
	addFetchFlags(publishCmd)
	publishCmd.Flags().Int("batch-size", 0, "blocks per append request (default 10, max 100)")
	publishCmd.Flags().Duration("batch-delay", 0, "pause between append requests")
	publishCmd.Flags().Int64("snapshot", 0, "publish records from this snapshot instead of fetching")
	publishCmd.Flags().Bool("latest", false, "publish records from the page's most recent snapshot")
	publishCmd.Flags().String("target", "", "page to append to (default: the source page)")
	publishCmd.Flags().BoolP("yes", "y", false, "skip the clear-page confirmation")

	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}
	pageID, cfg, err := pageConfig(cmd, args)
	if err != nil {
		return err
	}
	target, _ := cmd.Flags().GetString("target")
	if target == "" {
		target = pageID
	}

	m, err := newMirror(cfg)
	if err != nil {
		return err
	}

	records, err := publishRecords(cmd, m, cfg, pageID)
	if err != nil {
		return err
	}
	blocks := mirror.Transform(records)
	log.Info().Int("records", len(records)).Int("blocks", len(blocks)).Msg("transformed records")

	yes, _ := cmd.Flags().GetBool("yes")
	if target == pageID && !yes {
		ok, err := askClear(target)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "Aborted; nothing was written.")
			return nil
		}
	}

	rep := m.Publish(cmd.Context(), target, blocks)
	fmt.Println(report.PublishSummary(rep))
	if rep.HasFailures() {
		return fmt.Errorf("%d batch(es) failed to publish", len(rep.Failed()))
	}
	return nil
}

func publishRecords(cmd *cobra.Command, m *mirror.Mirror, cfg types.Config, pageID string) ([]types.FlatRecord, error) {
	snapID, _ := cmd.Flags().GetInt64("snapshot")
	if snapID > 0 {
		return snapshotRecords(cmd.Context(), cfg.Snapshot, snapID)
	}
	if latest, _ := cmd.Flags().GetBool("latest"); latest {
		return latestRecords(cmd.Context(), cfg.Snapshot, pageID)
	}

	tree := fetchTree(cmd.Context(), m, pageID)
	snap, err := saveSnapshot(cmd.Context(), cfg.Snapshot, pageID, tree)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "Stored snapshot %d (%d records); restore it with --snapshot %d\n",
		snap.ID, len(tree.Records), snap.ID)
	return tree.Records, nil
}

func askClear(pageID string) (bool, error) {
	ui, err := promptUI()
	if errors.Is(err, errNotInteractive) {
		return false, fmt.Errorf("publishing appends to page %s: clear it first and pass --yes", pageID)
	}
	if err != nil {
		return false, err
	}
	return confirmCleared(ui, pageID)
}
