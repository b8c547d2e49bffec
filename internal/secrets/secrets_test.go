// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "notion-api-key", "  secret_abc  \n")
				writeFile(t, dir, "other-key", "xyz")
				return dir
			},
			want: map[string]string{
				"notion-api-key": "secret_abc",
				"other-key":      "xyz",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "notion-api-key", "valid")
				writeFile(t, dir, "blank", "   \n\t  ")
				return dir
			},
			want: map[string]string{"notion-api-key": "valid"},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden", "secret")
				writeFile(t, dir, "notion-api-key", "real")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{"notion-api-key": "real"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files without permission bits")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func TestLoadLegacyConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string // empty means no file
		want    string
		errMsg  string
	}{
		{name: "missing file", want: ""},
		{name: "key present", content: `{"NOTION_API_KEY": " secret_1 "}`, want: "secret_1"},
		{name: "key absent", content: `{"OTHER": "x"}`, want: ""},
		{name: "key not a string", content: `{"NOTION_API_KEY": 5}`, want: ""},
		{name: "invalid JSON", content: `{not json`, errMsg: "not valid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if tt.content != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			}
			got, err := LoadLegacyConfig(path)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindAPIKey(t *testing.T) {
	t.Run("secrets directory wins", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, APIKeyFile, "from-dir")
		legacy := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(legacy, []byte(`{"NOTION_API_KEY":"from-json"}`), 0o644))

		key, source, err := FindAPIKey(dir, legacy)
		require.NoError(t, err)
		assert.Equal(t, "from-dir", key)
		assert.Equal(t, filepath.Join(dir, APIKeyFile), source)
	})

	t.Run("falls back to legacy config", func(t *testing.T) {
		legacy := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(legacy, []byte(`{"NOTION_API_KEY":"from-json"}`), 0o644))

		key, source, err := FindAPIKey(t.TempDir(), legacy)
		require.NoError(t, err)
		assert.Equal(t, "from-json", key)
		assert.Equal(t, legacy, source)
	})

	t.Run("no key anywhere", func(t *testing.T) {
		_, _, err := FindAPIKey(t.TempDir(), filepath.Join(t.TempDir(), "config.json"))
		assert.ErrorIs(t, err, ErrNoAPIKey)
		assert.Contains(t, err.Error(), "NOTION_API_KEY")
	})
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
