// Package report runs one report end to end: query, score, render, export.
package report

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kiranshivaraju/reportgen/internal/export"
	"github.com/kiranshivaraju/reportgen/internal/render"
	"github.com/kiranshivaraju/reportgen/internal/scoring"
	"github.com/kiranshivaraju/reportgen/internal/warehouse"
	"github.com/kiranshivaraju/reportgen/pkg/models"
	"github.com/kiranshivaraju/reportgen/pkg/sqltext"
	"github.com/kiranshivaraju/reportgen/queries"
)

// Default PDF file names, placed under the configured output directory.
const (
	VendorPDFName = "quality_edgar_vendor_report.pdf"
	FamilyPDFName = "ncen_family_exec_report.pdf"
)

// ExecutorFactory opens a warehouse executor for a resolved project.
type ExecutorFactory func(ctx context.Context, projectID string) (warehouse.Executor, error)

// VendorRequest holds validated parameters for a vendor report run.
type VendorRequest struct {
	ProjectID  string
	DatasetID  string
	VendorName string
	Output     string
	// SQLFile replaces the embedded query when set.
	SQLFile string
	XLSX    bool
}

// FamilyRequest holds validated parameters for a family report run.
type FamilyRequest struct {
	ProjectID   string
	Output      string
	SQLFile     string
	DedupeForms bool
	XLSX        bool
}

// Result describes the artifacts written by one run.
type Result struct {
	RunID    string
	PDFPath  string
	CSVPath  string
	XLSXPath string
	Rows     int
}

// Service orchestrates report runs.
type Service struct {
	newExecutor ExecutorFactory
	rasterizer  render.Rasterizer
	renderer    *render.Renderer
	sql         sqltext.Builder
	queries     fs.FS
	newRunID    func() string
}

// NewService creates a new Service.
func NewService(newExecutor ExecutorFactory, rasterizer render.Rasterizer, renderer *render.Renderer) *Service {
	return &Service{
		newExecutor: newExecutor,
		rasterizer:  rasterizer,
		renderer:    renderer,
		queries:     queries.FS,
		newRunID:    func() string { return uuid.NewString() },
	}
}

// WithRunIDs sets a custom run id generator for deterministic output.
func (s *Service) WithRunIDs(next func() string) *Service {
	s.newRunID = next
	return s
}

// RunVendor builds the flat vendor report.
func (s *Service) RunVendor(ctx context.Context, req VendorRequest) (*Result, error) {
	runID := s.newRunID()
	log := slog.With("run_id", runID, "report", "vendor")
	start := time.Now()

	text, err := s.loadSQL(queries.VendorReport, req.SQLFile, sqltext.Params{
		ProjectID:  req.ProjectID,
		DatasetID:  req.DatasetID,
		VendorName: req.VendorName,
	})
	if err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, log, req.ProjectID, text)
	if err != nil {
		return nil, err
	}

	companies, err := models.CompaniesFromRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("decode vendor rows: %w", err)
	}
	enriched := scoring.EnrichCompanies(companies, req.VendorName)

	html, err := s.renderer.Vendor(render.VendorInput{
		RunID:      runID,
		VendorName: req.VendorName,
		Rows:       enriched,
	})
	if err != nil {
		return nil, err
	}

	fallback := append(append([]string{}, models.CompanyColumns...), scoring.VendorDerivedColumns...)
	res, err := s.write(ctx, runID, req.Output, html, enriched, fallback, req.XLSX)
	if err != nil {
		return nil, err
	}

	log.Info("report complete", "rows", res.Rows, "duration_ms", time.Since(start).Milliseconds())
	return res, nil
}

// RunFamily builds the grouped family report.
func (s *Service) RunFamily(ctx context.Context, req FamilyRequest) (*Result, error) {
	runID := s.newRunID()
	log := slog.With("run_id", runID, "report", "family")
	start := time.Now()

	text, err := s.loadSQL(queries.FamilyReport, req.SQLFile, sqltext.Params{ProjectID: req.ProjectID})
	if err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, log, req.ProjectID, text)
	if err != nil {
		return nil, err
	}

	funds, err := models.FundsFromRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("decode family rows: %w", err)
	}
	families := scoring.GroupFamilies(funds)
	enriched := scoring.EnrichFamilies(families)
	log.Info("families scored", "funds", len(funds), "families", len(families))

	html, err := s.renderer.Family(render.FamilyInput{
		RunID:       runID,
		Funds:       funds,
		Families:    families,
		DedupeForms: req.DedupeForms,
	})
	if err != nil {
		return nil, err
	}

	fallback := append(append([]string{}, models.FundColumns...), scoring.FamilyDerivedColumns...)
	res, err := s.write(ctx, runID, req.Output, html, enriched, fallback, req.XLSX)
	if err != nil {
		return nil, err
	}

	log.Info("report complete", "rows", res.Rows, "duration_ms", time.Since(start).Milliseconds())
	return res, nil
}

func (s *Service) loadSQL(embedded, override string, p sqltext.Params) (string, error) {
	var (
		text string
		err  error
	)
	if override != "" {
		text, err = s.sql.LoadFile(override)
	} else {
		text, err = s.sql.Load(s.queries, embedded)
	}
	if err != nil {
		return "", err
	}
	return s.sql.Build(text, p)
}

func (s *Service) query(ctx context.Context, log *slog.Logger, projectID, text string) ([]models.Record, error) {
	wh, err := s.newExecutor(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}
	defer func() {
		if err := wh.Close(); err != nil {
			log.Warn("closing warehouse executor", "error", err)
		}
	}()

	start := time.Now()
	rows, err := wh.Query(ctx, text)
	if err != nil {
		return nil, err
	}
	log.Info("query complete",
		"backend", wh.Name(),
		"project_id", projectID,
		"rows", len(rows),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rows, nil
}

func (s *Service) write(ctx context.Context, runID, output string, html []byte, rows []models.Record, fallback []string, xlsx bool) (*Result, error) {
	res := &Result{
		RunID:   runID,
		PDFPath: output,
		CSVPath: export.SiblingPath(output, ".csv"),
		Rows:    len(rows),
	}

	if err := render.WritePDF(ctx, s.rasterizer, html, res.PDFPath); err != nil {
		return nil, err
	}
	if err := export.WriteCSV(res.CSVPath, rows, fallback); err != nil {
		return nil, err
	}
	if xlsx {
		res.XLSXPath = export.SiblingPath(output, ".xlsx")
		if err := export.WriteXLSX(res.XLSXPath, rows, fallback); err != nil {
			return nil, err
		}
	}
	return res, nil
}
