package models

import "time"

// Run records one document-conversion pass in the run history database.
type Run struct {
	RunID      int64          `yaml:"run_id"`
	Source     string         `yaml:"source"` // URL, file path, or "stdin"
	Title      string         `yaml:"title,omitempty"`
	Language   string         `yaml:"language,omitempty"`
	Elements   int            `yaml:"elements"` // eligible elements scanned
	Matches    int            `yaml:"matches"`  // tokens matched
	Converted  int            `yaml:"converted"`
	Ambiguous  int            `yaml:"ambiguous"`
	CreatedAt  time.Time      `yaml:"created_at"`
	UnitCounts map[string]int `yaml:"units,omitempty"` // source unit display form -> rewrite count
}
