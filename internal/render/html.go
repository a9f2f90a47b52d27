// Package render builds the HTML report documents and rasterizes them to PDF.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kiranshivaraju/reportgen/internal/scoring"
	"github.com/kiranshivaraju/reportgen/pkg/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// FamilyTitle is the heading of the family report's summary section.
const FamilyTitle = "NCEN Family Executive Report"

// FamilyInput is everything the family document needs.
type FamilyInput struct {
	RunID    string
	Funds    []models.Fund
	Families []scoring.Family
	// DedupeForms counts each CIK's form-type breakdown once.
	DedupeForms bool
}

// VendorInput is everything the vendor document needs. Rows are enriched records.
type VendorInput struct {
	RunID      string
	VendorName string
	Rows       []models.Record
}

type familyDocument struct {
	Title       string
	RunID       string
	GeneratedAt string
	Summary     Summary
	Pages       []familyPage
}

type familyPage struct {
	Name       string
	Assessment scoring.FamilyAssessment
	Funds      []models.Fund
	PageBreak  bool
}

type vendorDocument struct {
	VendorName  string
	RunID       string
	GeneratedAt string
	Rows        []models.Record
}

// Renderer executes the embedded report templates. Values are escaped by
// html/template; missing values render as empty strings.
type Renderer struct {
	tmpl *template.Template
	now  func() time.Time
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	printer := message.NewPrinter(language.English)
	funcs := template.FuncMap{
		"field": func(r models.Record, key string) string { return r.Display(key) },
		"flag":  func(r models.Record, key string) bool { return r.Bool(key) },
		"num":   func(n int) string { return printer.Sprintf("%d", n) },
		"pct":   func(f float64) string { return fmt.Sprintf("%.2f", f) },
	}

	tmpl, err := template.New("report").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Renderer{
		tmpl: tmpl,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithClock sets a custom clock function for deterministic output.
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	r.now = now
	return r
}

// Family renders the grouped report: a run summary followed by one page per
// family in name order.
func (r *Renderer) Family(in FamilyInput) ([]byte, error) {
	doc := familyDocument{
		Title:       FamilyTitle,
		RunID:       in.RunID,
		GeneratedAt: r.now().Format(time.RFC3339),
		Summary:     Summarize(in.Funds, in.Families, in.DedupeForms),
		Pages:       make([]familyPage, 0, len(in.Families)),
	}
	for i, fam := range in.Families {
		doc.Pages = append(doc.Pages, familyPage{
			Name:       fam.Name,
			Assessment: fam.Assessment,
			Funds:      fam.Funds,
			PageBreak:  i < len(in.Families)-1,
		})
	}
	return r.execute("family", doc)
}

// Vendor renders the flat one-row-per-company report.
func (r *Renderer) Vendor(in VendorInput) ([]byte, error) {
	doc := vendorDocument{
		VendorName:  in.VendorName,
		RunID:       in.RunID,
		GeneratedAt: r.now().Format(time.RFC3339),
		Rows:        in.Rows,
	}
	return r.execute("vendor", doc)
}

func (r *Renderer) execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s template: %w", name, err)
	}
	return buf.Bytes(), nil
}
