// Package queries embeds the fixed SQL text for each report.
package queries

import "embed"

// Report SQL file names.
const (
	FamilyReport = "ncen_family_exec_report.sql"
	VendorReport = "quality_edgar_vendor_report.sql"
)

//go:embed *.sql
var FS embed.FS
