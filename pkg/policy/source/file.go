package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"sentinel-hq/sentinel/pkg/policy"
)

// FileSource loads policies from YAML files on disk.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a file-based policy source. The path can be a
// single file or a directory; for a directory, all .yaml and .yml files
// are loaded.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:   path,
		logger: logger.With("component", "policy.source"),
	}
}

// Load loads all policies from the configured path.
func (s *FileSource) Load(ctx context.Context) ([]*policy.Policy, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %q: %w", s.path, err)
	}

	var policies []*policy.Policy

	if info.IsDir() {
		policies, err = s.loadDirectory(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		p, err := policy.ParseFile(s.path)
		if err != nil {
			return nil, err
		}
		policies = []*policy.Policy{p}
	}

	s.logger.Info("loaded policies from source",
		"path", s.path,
		"policy_count", len(policies),
	)
	return policies, nil
}

// loadDirectory loads all policy files from a directory. Files that fail
// to parse are skipped with a warning.
func (s *FileSource) loadDirectory(ctx context.Context) ([]*policy.Policy, error) {
	var policies []*policy.Policy

	err := filepath.Walk(s.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		p, err := policy.ParseFile(path)
		if err != nil {
			s.logger.Warn("failed to load policy file, skipping",
				"path", path,
				"error", err,
			)
			return nil
		}

		policies = append(policies, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %q: %w", s.path, err)
	}

	return policies, nil
}
