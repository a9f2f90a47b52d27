package sqltext

import (
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Placeholder tokens recognised in report SQL.
const (
	ProjectToken = "@project_id"
	DatasetToken = "@dataset_id"
	VendorToken  = "@vendor_name"
)

// Params holds the literal values substituted into report SQL.
type Params struct {
	ProjectID  string
	DatasetID  string
	VendorName string
}

// Builder loads report SQL and fills in placeholders.
// All methods are pure apart from the file reads in Load and LoadFile.
// Zero value is ready to use.
type Builder struct{}

// Render replaces each placeholder whose parameter is non-empty.
// Substitution is literal; values are not quoted or escaped.
func (b Builder) Render(sql string, p Params) string {
	pairs := make([]string, 0, 6)
	if p.ProjectID != "" {
		pairs = append(pairs, ProjectToken, p.ProjectID)
	}
	if p.DatasetID != "" {
		pairs = append(pairs, DatasetToken, p.DatasetID)
	}
	if p.VendorName != "" {
		pairs = append(pairs, VendorToken, p.VendorName)
	}
	if len(pairs) == 0 {
		return sql
	}
	return strings.NewReplacer(pairs...).Replace(sql)
}

// Unresolved returns the known placeholders still present in sql.
func (b Builder) Unresolved(sql string) []string {
	var left []string
	for _, tok := range []string{ProjectToken, DatasetToken, VendorToken} {
		if strings.Contains(sql, tok) {
			left = append(left, tok)
		}
	}
	return left
}

// Build renders sql and fails if any known placeholder is left unfilled.
func (b Builder) Build(sql string, p Params) (string, error) {
	out := b.Render(sql, p)
	if left := b.Unresolved(out); len(left) > 0 {
		return "", fmt.Errorf("unresolved placeholders: %s", strings.Join(left, ", "))
	}
	return out, nil
}

// Load reads a named SQL file from fsys.
func (b Builder) Load(fsys fs.FS, name string) (string, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", fmt.Errorf("read sql %s: %w", name, err)
	}
	return string(data), nil
}

// LoadFile reads SQL from a path on disk.
func (b Builder) LoadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read sql file %s: %w", path, err)
	}
	return string(data), nil
}
