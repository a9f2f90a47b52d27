package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kiranshivaraju/reportgen/internal/cmdexec"
	"github.com/kiranshivaraju/reportgen/internal/config"
	"github.com/kiranshivaraju/reportgen/internal/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vendorPayload = `[
  {
    "companyName": "Acme",
    "companyCIK": "1",
    "total_filings": "90",
    "qes_filings": "72",
    "qes_percentage": "80.0",
    "is_qes_dominant_filer": "true",
    "other_agents_count": "0",
    "qes_vendor_since": "2019-01-04",
    "qes_last_filing_date": "2024-05-30",
    "qes_last_form_type": "10-K"
  }
]`

const familyPayload = `[
  {"ncen_family_investment_company_name": "Beta Fund", "companyName": "Beta Core", "companyCik": "201", "total_filings_in_window": "5", "qes_filings_in_window": "5"},
  {"ncen_family_investment_company_name": "Alpha Fund", "companyName": "Alpha Growth", "companyCik": "101", "total_filings_in_window": "50", "qes_filings_in_window": "10"}
]`

// fakeTools answers gcloud, bq and weasyprint the way the real binaries would.
type fakeTools struct {
	gcloudProject string
	bqOut         string
	bqExit        int
	calls         []string
	bqArgs        []string
}

func (f *fakeTools) Run(_ context.Context, _ []byte, name string, args ...string) (cmdexec.Result, error) {
	f.calls = append(f.calls, name)
	switch name {
	case "gcloud":
		return cmdexec.Result{Stdout: []byte(f.gcloudProject + "\n")}, nil
	case "bq":
		f.bqArgs = args
		if f.bqExit != 0 {
			return cmdexec.Result{ExitCode: f.bqExit, Stderr: []byte("Not found: Dataset")}, nil
		}
		return cmdexec.Result{Stdout: []byte(f.bqOut)}, nil
	case "weasyprint":
		return cmdexec.Result{Stdout: []byte("%PDF-1.7")}, nil
	}
	return cmdexec.Result{}, os.ErrNotExist
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Render.Rasterizer = config.RasterizerWeasyPrint
	return cfg
}

func execute(t *testing.T, cfg *config.Config, tools *fakeTools, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(cfg, tools)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVendorCommand(t *testing.T) {
	tools := &fakeTools{bqOut: vendorPayload}
	pdf := filepath.Join(t.TempDir(), "output", "vendor.pdf")

	out, err := execute(t, testConfig(), tools,
		"vendor", "--project-id", "proj-1", "--dataset-id", "edgar", "--output", pdf)
	require.NoError(t, err)

	csvPath := strings.TrimSuffix(pdf, ".pdf") + ".csv"
	assert.Equal(t, "Created report: "+pdf+"\nCreated flat data: "+csvPath+"\n", out)
	assert.FileExists(t, pdf)
	assert.FileExists(t, csvPath)
	assert.Equal(t, []string{"bq", "weasyprint"}, tools.calls)
	assert.Contains(t, tools.bqArgs, "proj-1")

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "money_rank")
	assert.Contains(t, string(data), "$$$$")
}

func TestVendorCommand_MissingDataset(t *testing.T) {
	tools := &fakeTools{bqOut: vendorPayload}

	_, err := execute(t, testConfig(), tools, "vendor", "--project-id", "proj-1",
		"--output", filepath.Join(t.TempDir(), "v.pdf"))
	assert.ErrorIs(t, err, target.ErrNoDataset)
	assert.NotContains(t, tools.calls, "bq")
}

func TestVendorCommand_DatasetFromEnvironmentConfig(t *testing.T) {
	tools := &fakeTools{bqOut: "[]"}
	cfg := testConfig()
	cfg.Warehouse.DatasetID = "edgar"

	_, err := execute(t, cfg, tools, "vendor", "--project-id", "proj-1",
		"--output", filepath.Join(t.TempDir(), "v.pdf"))
	require.NoError(t, err)
}

func TestFamilyCommand_ProjectFromGcloud(t *testing.T) {
	tools := &fakeTools{gcloudProject: "proj-from-gcloud", bqOut: familyPayload}
	cfg := testConfig()
	cfg.Warehouse.ProjectCandidates = []string{"(unset)", ""}
	pdf := filepath.Join(t.TempDir(), "family.pdf")

	out, err := execute(t, cfg, tools, "family", "--output", pdf, "--xlsx", "--dedupe-forms")
	require.NoError(t, err)

	assert.Equal(t, []string{"gcloud", "bq", "weasyprint"}, tools.calls)
	assert.Contains(t, tools.bqArgs, "proj-from-gcloud")
	assert.Contains(t, out, "Created report: "+pdf)
	assert.Contains(t, out, "Created workbook: "+strings.TrimSuffix(pdf, ".pdf")+".xlsx")
}

func TestFamilyCommand_NoProject(t *testing.T) {
	tools := &fakeTools{gcloudProject: "(unset)"}

	_, err := execute(t, testConfig(), tools, "family", "--output", filepath.Join(t.TempDir(), "f.pdf"))
	assert.ErrorIs(t, err, target.ErrNoProject)
	assert.Equal(t, []string{"gcloud"}, tools.calls)
}

func TestFamilyCommand_QueryFailure(t *testing.T) {
	tools := &fakeTools{bqExit: 2}
	pdf := filepath.Join(t.TempDir(), "f.pdf")

	out, err := execute(t, testConfig(), tools, "family", "--project-id", "p", "--output", pdf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not found: Dataset")
	assert.Empty(t, out)
	assert.NoFileExists(t, pdf)
}

func TestRootCommand_InvalidBackendFlag(t *testing.T) {
	_, err := execute(t, testConfig(), &fakeTools{}, "family", "--project-id", "p", "--backend", "oracle")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPORTGEN_BACKEND")
}

func TestRootCommand_DefaultOutputUnderOutputDir(t *testing.T) {
	cfg := testConfig()
	cfg.Report.OutputDir = t.TempDir()
	tools := &fakeTools{bqOut: familyPayload}

	out, err := execute(t, cfg, tools, "family", "--project-id", "p")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(cfg.Report.OutputDir, "ncen_family_exec_report.pdf"))
}

func TestRootCommand_BackendFlagOverridesInvalidEnvironment(t *testing.T) {
	tools := &fakeTools{bqOut: familyPayload}
	cfg := testConfig()
	cfg.Warehouse.Backend = "bogus"

	_, err := execute(t, cfg, tools, "family", "--backend", config.BackendBQCLI,
		"--project-id", "proj-1", "--output", filepath.Join(t.TempDir(), "f.pdf"))
	require.NoError(t, err)
	assert.Contains(t, tools.calls, "bq")
}

func TestVendorCommand_EmptyVendorName(t *testing.T) {
	tools := &fakeTools{bqOut: vendorPayload}

	_, err := execute(t, testConfig(), tools, "vendor", "--project-id", "proj-1",
		"--dataset-id", "edgar", "--vendor-name", "",
		"--output", filepath.Join(t.TempDir(), "v.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPORTGEN_VENDOR_NAME")
	assert.Empty(t, tools.calls)
}

func TestVendorCommand_VendorNameFlag(t *testing.T) {
	tools := &fakeTools{bqOut: vendorPayload}
	cfg := testConfig()
	pdf := filepath.Join(t.TempDir(), "v.pdf")

	_, err := execute(t, cfg, tools, "vendor", "--project-id", "proj-1",
		"--dataset-id", "edgar", "--vendor-name", "ACME FILINGS", "--output", pdf)
	require.NoError(t, err)
	assert.Equal(t, "ACME FILINGS", cfg.Report.VendorName)

	data, err := os.ReadFile(strings.TrimSuffix(pdf, ".pdf") + ".csv")
	require.NoError(t, err)
	assert.Contains(t, string(data), "ACME FILINGS share=")
}
