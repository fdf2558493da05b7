package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"customer-analytics/models"
	"customer-analytics/utils"
)

// JSONWriter persists run results as a pretty-printed JSON file, the
// shape the presentation layer consumes.
type JSONWriter struct {
	filePath string
	logger   *utils.Logger
}

// NewJSONWriter creates a new JSONWriter
func NewJSONWriter(filePath string, logger *utils.Logger) *JSONWriter {
	return &JSONWriter{filePath: filePath, logger: logger}
}

// Save writes the results to the configured path, creating parent
// directories as needed.
func (w *JSONWriter) Save(results *models.Results) error {
	dir := filepath.Dir(w.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	payload, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(w.filePath, payload, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	w.logger.Info("Results written to: %s", w.filePath)
	return nil
}

// Close implements ResultsSink; a file writer holds no resources.
func (w *JSONWriter) Close() error { return nil }
