package prescriptions

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/giygas/medications-normalizer/logging"
)

// WriteTable encodes t as CSV, header first.
func WriteTable(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

// WriteFile writes t to path through a temporary file in the same directory,
// so readers never see a half-written output.
func WriteFile(path string, t *Table) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".prescriptions-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temporary output file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := WriteTable(tmp, t); err != nil {
		_ = tmp.Close()
		removeTemp(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		removeTemp(tmpPath)
		return fmt.Errorf("failed to close temporary output file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		removeTemp(tmpPath)
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

func removeTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Warn("Failed to remove temporary output file", "path", path, "error", err)
	}
}
