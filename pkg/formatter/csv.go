package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kataras/figma-keytheme/pkg/separator"
)

// WriteCSV serializes the table as comma-separated values: a header row with the
// columns, then one line per key. Cells containing a comma, quote or newline are quoted.
func WriteCSV(w io.Writer, table *separator.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(table.Records()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteCSVFile writes the table to path, creating parent directories as needed.
// The file is written next to its destination and renamed into place, so a failed
// write never leaves a truncated table behind.
func WriteCSVFile(path string, table *separator.Table) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create file in %q: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, table); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file %q: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set permissions on %q: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %q into place: %w", path, err)
	}

	return nil
}
