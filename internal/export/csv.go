// Package export writes enriched report rows as flat files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kiranshivaraju/reportgen/pkg/models"
)

// Columns returns the canonical column list for rows: the first record's
// columns, or fallback when rows is empty.
func Columns(rows []models.Record, fallback []string) []string {
	if len(rows) > 0 {
		return rows[0].Columns()
	}
	out := make([]string, len(fallback))
	copy(out, fallback)
	return out
}

// SiblingPath returns path with its extension replaced by ext (".csv").
func SiblingPath(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// WriteCSV writes a header row and one line per record to path, creating
// parent directories. An empty rows slice writes a header-only file built
// from fallback. Values missing from a record are written as "".
func WriteCSV(path string, rows []models.Record, fallback []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv %s: %w", path, err)
	}
	defer f.Close()

	header := Columns(rows, fallback)
	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	line := make([]string, len(header))
	for _, r := range rows {
		for i, col := range header {
			line[i] = r.Display(col)
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}
