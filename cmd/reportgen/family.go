package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/reportgen/internal/cmdexec"
	"github.com/kiranshivaraju/reportgen/internal/config"
	"github.com/kiranshivaraju/reportgen/internal/report"
)

func newFamilyCmd(cfg *config.Config, runner cmdexec.Runner) *cobra.Command {
	var opts struct {
		projectID   string
		output      string
		dedupeForms bool
	}

	cmd := &cobra.Command{
		Use:   "family",
		Short: "One page per N-CEN fund family with openness, value and priority tier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			projectID, err := newResolver(cfg, runner).Resolve(ctx, opts.projectID)
			if err != nil {
				return err
			}

			svc, err := newService(cfg, runner)
			if err != nil {
				return err
			}
			res, err := svc.RunFamily(ctx, report.FamilyRequest{
				ProjectID:   projectID,
				Output:      opts.output,
				SQLFile:     cfg.Report.SQLFile,
				DedupeForms: opts.dedupeForms,
				XLSX:        cfg.Report.XLSX,
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
	f.StringVar(&opts.output, "output", filepath.Join(cfg.Report.OutputDir, report.FamilyPDFName), "PDF output path; the CSV is written alongside")
	f.BoolVar(&opts.dedupeForms, "dedupe-forms", false, "count each company's form-type breakdown once in the summary")
	return cmd
}
