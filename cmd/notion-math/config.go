// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/notion-math/internal/fetch"
	"github.com/pdiddy/notion-math/internal/httputil"
	"github.com/pdiddy/notion-math/internal/mirror"
	"github.com/pdiddy/notion-math/internal/publish"
	"github.com/pdiddy/notion-math/internal/secrets"
	"github.com/pdiddy/notion-math/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "notion-math/0.1"
)

func setDefaults() {
	viper.SetDefault("notion.version", types.DefaultNotionVersion)
	viper.SetDefault("notion.base_url", types.DefaultNotionBaseURL)
	viper.SetDefault("notion.timeout", defaultTimeout)
	viper.SetDefault("fetch.max_retries", httputil.DefaultMaxAttempts)
	viper.SetDefault("fetch.max_depth", fetch.DefaultMaxDepth)
	viper.SetDefault("fetch.page_size", 100)
	viper.SetDefault("publish.batch_size", publish.DefaultBatchSize)
	viper.SetDefault("publish.batch_delay", time.Duration(0))
	viper.SetDefault("snapshot.dir", "snapshots")
}

// flagKeys maps command flags to the viper keys they override.
var flagKeys = map[string]string{
	"max-retries":  "fetch.max_retries",
	"max-depth":    "fetch.max_depth",
	"batch-size":   "publish.batch_size",
	"batch-delay":  "publish.batch_delay",
	"snapshot-dir": "snapshot.dir",
}

// bindFlags binds the flags cmd defines to their viper keys. Binding
// happens per invocation because several commands share a key.
func bindFlags(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// loadConfig assembles the component configuration from viper.
func loadConfig() types.Config {
	key := viper.GetString("notion.api_key")
	if key == "" {
		key = apiKey
	}
	return types.Config{
		Notion: types.NotionConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("notion.timeout"),
				UserAgent: defaultUserAgent,
			},
			APIKey:   key,
			Version:  viper.GetString("notion.version"),
			BaseURL:  viper.GetString("notion.base_url"),
			PageSize: viper.GetInt("fetch.page_size"),
		},
		Fetch: types.FetchConfig{
			MaxRetries: viper.GetInt("fetch.max_retries"),
			MaxDepth:   viper.GetInt("fetch.max_depth"),
		},
		Publish: types.PublishConfig{
			BatchSize:  viper.GetInt("publish.batch_size"),
			BatchDelay: viper.GetDuration("publish.batch_delay"),
		},
		Snapshot: types.SnapshotConfig{
			Dir: viper.GetString("snapshot.dir"),
		},
	}
}

// newMirror builds the pipeline from cfg. It fails early when no API key
// was configured.
func newMirror(cfg types.Config) (*mirror.Mirror, error) {
	if cfg.Notion.APIKey == "" {
		return nil, fmt.Errorf("%w: write it to .secrets/%s, set NOTION_MATH_NOTION_API_KEY, or add %s to config.json",
			secrets.ErrNoAPIKey, secrets.APIKeyFile, secrets.LegacyAPIKeyField)
	}
	return mirror.New(cfg, &http.Client{Timeout: cfg.Notion.Timeout})
}
