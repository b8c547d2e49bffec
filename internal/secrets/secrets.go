// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads the Notion integration key. Two sources are read:
// a directory of plain-text files, where each filename is a key name and
// the trimmed contents are the value (the key lives in "notion-api-key"),
// and a legacy JSON config file holding {"NOTION_API_KEY": "..."}.
package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	// APIKeyFile is the secrets-directory entry holding the integration key.
	APIKeyFile = "notion-api-key"

	// LegacyAPIKeyField is the field name in the legacy JSON config file.
	LegacyAPIKeyField = "NOTION_API_KEY"
)

// ErrNoAPIKey is returned when no source provides a key.
var ErrNoAPIKey = errors.New("no Notion API key found")

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory is not an error; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn().Err(err).Str("secret", name).Msg("could not read secret")
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadLegacyConfig reads the API key from a JSON config file. A missing
// file yields "" and no error; a file that is not valid JSON is an error.
func LoadLegacyConfig(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg map[string]any
	if err := json.Unmarshal(data, &cfg); err != nil {
		return "", fmt.Errorf("%s is not valid JSON: %w", path, err)
	}
	key, _ := cfg[LegacyAPIKeyField].(string)
	return strings.TrimSpace(key), nil
}

// FindAPIKey returns the first key found in dir, then in legacyPath, and
// names the source it came from.
func FindAPIKey(dir, legacyPath string) (key, source string, err error) {
	s, err := Load(dir)
	if err != nil {
		return "", "", err
	}
	if v := s[APIKeyFile]; v != "" {
		return v, filepath.Join(dir, APIKeyFile), nil
	}

	v, err := LoadLegacyConfig(legacyPath)
	if err != nil {
		return "", "", err
	}
	if v != "" {
		return v, legacyPath, nil
	}

	return "", "", fmt.Errorf("%w: write it to %s or set %q in %s",
		ErrNoAPIKey, filepath.Join(dir, APIKeyFile), LegacyAPIKeyField, legacyPath)
}
