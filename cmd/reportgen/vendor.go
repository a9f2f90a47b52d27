package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/reportgen/internal/cmdexec"
	"github.com/kiranshivaraju/reportgen/internal/config"
	"github.com/kiranshivaraju/reportgen/internal/report"
	"github.com/kiranshivaraju/reportgen/internal/target"
)

func newVendorCmd(cfg *config.Config, runner cmdexec.Runner) *cobra.Command {
	var opts struct {
		projectID string
		datasetID string
		output    string
	}

	cmd := &cobra.Command{
		Use:   "vendor",
		Short: "One row per company filed by the vendor, with revenue and switch ranks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			projectID, err := newResolver(cfg, runner).Resolve(ctx, opts.projectID)
			if err != nil {
				return err
			}
			datasetID, err := target.RequireDataset(opts.datasetID, cfg.Warehouse.DatasetID)
			if err != nil {
				return err
			}

			svc, err := newService(cfg, runner)
			if err != nil {
				return err
			}
			res, err := svc.RunVendor(ctx, report.VendorRequest{
				ProjectID:  projectID,
				DatasetID:  datasetID,
				VendorName: cfg.Report.VendorName,
				Output:     opts.output,
				SQLFile:    cfg.Report.SQLFile,
				XLSX:       cfg.Report.XLSX,
			})
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.projectID, "project-id", "", "warehouse project (default: BQ_PROJECT_ID, GOOGLE_CLOUD_PROJECT, then gcloud config)")
	f.StringVar(&opts.datasetID, "dataset-id", "", "warehouse dataset (default: BQ_DATASET_ID)")
	f.StringVar(&opts.output, "output", filepath.Join(cfg.Report.OutputDir, report.VendorPDFName), "PDF output path; the CSV is written alongside")
	f.StringVar(&cfg.Report.VendorName, "vendor-name", cfg.Report.VendorName, "filing agent the report is about")
	return cmd
}
