package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/reportgen/internal/cmdexec"
	"github.com/kiranshivaraju/reportgen/internal/config"
	"github.com/kiranshivaraju/reportgen/internal/render"
	"github.com/kiranshivaraju/reportgen/internal/report"
	"github.com/kiranshivaraju/reportgen/internal/target"
	"github.com/kiranshivaraju/reportgen/internal/warehouse"
)

// newRootCmd builds the command tree. Flags write straight into cfg, so
// every subcommand sees environment defaults overridden by flags. runner
// executes gcloud, bq and weasyprint.
func newRootCmd(cfg *config.Config, runner cmdexec.Runner) *cobra.Command {
	root := &cobra.Command{
		Use:   "reportgen",
		Short: "Generate warehouse-backed PDF and CSV business reports",
		Long: `reportgen queries the EDGAR filing warehouse, scores each company or fund
family, and writes a PDF report with a CSV mirror of the scored rows.

Examples:
  # Vendor report against a dataset
  reportgen vendor --project-id my-proj --dataset-id edgar

  # Family report using the native BigQuery client and weasyprint
  reportgen family --backend bigquery --rasterizer weasyprint --dedupe-forms`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return cfg.Validate()
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&cfg.Warehouse.Backend, "backend", cfg.Warehouse.Backend, "warehouse backend: bq-cli, bigquery, postgres or clickhouse")
	f.StringVar(&cfg.Render.Rasterizer, "rasterizer", cfg.Render.Rasterizer, "PDF rasterizer: chrome or weasyprint")
	f.StringVar(&cfg.Report.SQLFile, "sql-file", cfg.Report.SQLFile, "read the report query from this file instead of the built-in one")
	f.BoolVar(&cfg.Report.XLSX, "xlsx", cfg.Report.XLSX, "also write an .xlsx workbook next to the PDF")

	root.AddCommand(newVendorCmd(cfg, runner))
	root.AddCommand(newFamilyCmd(cfg, runner))
	return root
}

func newResolver(cfg *config.Config, runner cmdexec.Runner) *target.Resolver {
	r := target.NewResolver(cfg.Warehouse.ProjectCandidates...)
	r.Runner = runner
	return r
}

func newService(cfg *config.Config, runner cmdexec.Runner) (*report.Service, error) {
	rasterizer, err := render.NewRasterizer(cfg.Render, runner)
	if err != nil {
		return nil, fmt.Errorf("create rasterizer: %w", err)
	}
	renderer, err := render.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	factory := func(ctx context.Context, projectID string) (warehouse.Executor, error) {
		return warehouse.NewExecutor(ctx, cfg.Warehouse, projectID, runner)
	}
	return report.NewService(factory, rasterizer, renderer), nil
}

func printResult(w io.Writer, res *report.Result) {
	fmt.Fprintf(w, "Created report: %s\n", res.PDFPath)
	fmt.Fprintf(w, "Created flat data: %s\n", res.CSVPath)
	if res.XLSXPath != "" {
		fmt.Fprintf(w, "Created workbook: %s\n", res.XLSXPath)
	}
}
