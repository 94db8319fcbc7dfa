package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// MarshalReport renders a report as indented JSON.
func MarshalReport(report any) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// WriteReport writes the report as indented JSON to path, creating parent
// directories as needed.
func WriteReport(path string, report any) error {
	data, err := MarshalReport(report)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
