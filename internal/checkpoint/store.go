// Package checkpoint persists full result-set snapshots to disk.
package checkpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/econlabs/nber-paper-crawler/internal/scraper"
)

// Store writes and reads JSON snapshots of accepted papers. Each write is a
// complete snapshot replacing whatever was at the path; checkpoints are never
// appended or merged.
type Store struct {
	logger *zap.Logger
}

// NewStore builds a Store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{logger: logger}
}

// Save serializes the papers to path, creating parent directories as needed.
// Non-ASCII text is written verbatim; no escaping losses.
func (s *Store) Save(ctx context.Context, papers []scraper.Paper, path string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("checkpoint canceled: %w", err)
	}
	if papers == nil {
		papers = []scraper.Paper{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(papers); err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create checkpoint dir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write checkpoint %s: %w", path, err)
	}
	s.logger.Debug("checkpoint saved", zap.String("path", path), zap.Int("papers", len(papers)))
	return nil
}

// Load reads a snapshot back. Used by the report command and round-trip
// tests; the scan itself never reads checkpoints.
func Load(path string) ([]scraper.Paper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint %s: %w", path, err)
	}
	var papers []scraper.Paper
	if err := json.Unmarshal(data, &papers); err != nil {
		return nil, fmt.Errorf("parse checkpoint %s: %w", path, err)
	}
	return papers, nil
}
