// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/notion-math/internal/report"
	"github.com/pdiddy/notion-math/internal/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage stored snapshots (list, show, export, delete)",
	Long: `Snapshot manages the local SQLite store of fetched records. Every fetch
and publish stores one snapshot per run.`,
}

// --- list subcommand ---

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		snaps, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		return report.WriteSnapshots(os.Stdout, snaps)
	},
}

// --- show subcommand ---

var snapshotShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print the records of a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSnapshotID(args[0])
		if err != nil {
			return err
		}
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		_, records, err := store.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return report.WriteRecords(os.Stdout, records, format)
	},
}

// --- export subcommand ---

var snapshotExportCmd = &cobra.Command{
	Use:   "export ID",
	Short: "Write a snapshot to a YAML or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSnapshotID(args[0])
		if err != nil {
			return err
		}
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		format, _ := cmd.Flags().GetString("format")
		var path string
		switch format {
		case "yaml":
			path, err = store.ExportYAML(cmd.Context(), id)
		case "json":
			path, err = store.ExportJSON(cmd.Context(), id)
		default:
			return fmt.Errorf("unsupported export format: %s (use yaml or json)", format)
		}
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

// --- delete subcommand ---

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a snapshot and its records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSnapshotID(args[0])
		if err != nil {
			return err
		}
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Deleted snapshot %d\n", id)
		return nil
	},
}

func init() {
	snapshotCmd.PersistentFlags().String("snapshot-dir", "snapshots", "base directory for snapshots")
	snapshotShowCmd.Flags().String("format", "table", "output format: table, json, yaml")
	snapshotExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func openStore(cmd *cobra.Command) (*snapshot.Store, error) {
	if err := bindFlags(cmd); err != nil {
		return nil, err
	}
	return snapshot.NewStore(loadConfig().Snapshot)
}

func parseSnapshotID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid snapshot id %q", s)
	}
	return id, nil
}
