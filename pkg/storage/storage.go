// Package storage writes converted documents and batch summaries to the
// output directory.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

type Storage struct {
	outputDir string
}

// New ensures the output directory exists.
func New(outputDir string) (*Storage, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Storage{outputDir: outputDir}, nil
}

// Save writes content under the output directory and returns the full path.
func (s *Storage) Save(name string, content []byte) (string, error) {
	path := filepath.Join(s.outputDir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	return path, nil
}

// Dir returns the output directory path.
func (s *Storage) Dir() string {
	return s.outputDir
}
