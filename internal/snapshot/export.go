// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/notion-math/pkg/types"
)

// Export is the file form of a snapshot.
type Export struct {
	Snapshot `yaml:",inline"`
	Records  []types.FlatRecord `json:"records" yaml:"records"`
}

// ExportYAML writes snapshot id to dir/exports/snapshot-<id>.yaml and
// returns the path.
func (s *Store) ExportYAML(ctx context.Context, id int64) (string, error) {
	exp, err := s.export(ctx, id)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(exp)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return s.writeExport(id, "yaml", data)
}

// ExportJSON writes snapshot id to dir/exports/snapshot-<id>.json and
// returns the path.
func (s *Store) ExportJSON(ctx context.Context, id int64) (string, error) {
	exp, err := s.export(ctx, id)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return s.writeExport(id, "json", data)
}

// ReadExport loads an export file written by ExportYAML or ExportJSON,
// choosing the decoder by extension.
func ReadExport(path string) (Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Export{}, err
	}
	var exp Export
	switch filepath.Ext(path) {
	case ".json":
		err = json.Unmarshal(data, &exp)
	default:
		err = yaml.Unmarshal(data, &exp)
	}
	if err != nil {
		return Export{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return exp, nil
}

func (s *Store) export(ctx context.Context, id int64) (Export, error) {
	snap, records, err := s.Get(ctx, id)
	if err != nil {
		return Export{}, fmt.Errorf("loading snapshot %d for export: %w", id, err)
	}
	return Export{Snapshot: snap, Records: records}, nil
}

func (s *Store) writeExport(id int64, ext string, data []byte) (string, error) {
	dir := filepath.Join(s.dir, exportDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("snapshot-%d.%s", id, ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
