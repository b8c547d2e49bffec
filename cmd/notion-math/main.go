// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the notion-math CLI.
// It fetches a Notion page's block tree, rewrites $...$ and $$...$$
// delimited text into native equations, and appends the result back.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/notion-math/internal/logging"
	"github.com/pdiddy/notion-math/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// apiKey holds the Notion API key found by secrets.FindAPIKey at startup.
var apiKey string

// rootCmd is the base command for the notion-math CLI.
var rootCmd = &cobra.Command{
	Use:   "notion-math",
	Short: "Convert $-delimited math in Notion pages into native equations",
	Long: `notion-math mirrors a Notion page's block tree, finds math written as
$$...$$ (block) or $...$ (inline) in its text, and writes the blocks back
with those spans turned into equation rich text.

Fetched trees are kept as local snapshots so a page can be previewed,
published, or restored without another round of reads.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(logging.Config{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		}, os.Stderr); err != nil {
			return err
		}

		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		legacyPath, _ := cmd.Flags().GetString("legacy-config")
		key, source, err := secrets.FindAPIKey(secretsDir, legacyPath)
		switch {
		case errors.Is(err, secrets.ErrNoAPIKey):
			// Commands that reach the API report the missing key themselves.
		case err != nil:
			return err
		default:
			apiKey = key
			log.Debug().Str("source", source).Msg("loaded Notion API key")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./notion-math.yaml or ~/.config/notion-math/notion-math.yaml)")
	pf.String("secrets-dir", ".secrets/", "directory holding the notion-api-key file")
	pf.String("legacy-config", "config.json", "JSON config file with a NOTION_API_KEY field")
	pf.String("log-level", "info", "log level: trace, debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")

	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", pf.Lookup("log-format"))

	setDefaults()
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("notion-math")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "notion-math"))
		}
	}

	viper.SetEnvPrefix("NOTION_MATH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
