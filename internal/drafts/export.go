// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package drafts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/post-engine/pkg/types"
)

// ExportFile is the on-disk representation of an export.
type ExportFile struct {
	Posts []types.Draft `json:"posts" yaml:"posts"`
}

// ExportYAML writes every stored post to w as YAML.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	file, err := s.exportFile(ctx)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes every stored post to w as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer) error {
	file, err := s.exportFile(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func (s *Store) exportFile(ctx context.Context) (ExportFile, error) {
	posts, err := s.List(ctx)
	if err != nil {
		return ExportFile{}, fmt.Errorf("querying for export: %w", err)
	}
	if posts == nil {
		posts = []types.Draft{}
	}
	return ExportFile{Posts: posts}, nil
}
