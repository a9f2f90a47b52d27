package report_test

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kiranshivaraju/reportgen/internal/render"
	"github.com/kiranshivaraju/reportgen/internal/report"
	"github.com/kiranshivaraju/reportgen/internal/scoring"
	"github.com/kiranshivaraju/reportgen/internal/warehouse"
	"github.com/kiranshivaraju/reportgen/internal/warehouse/mock"
	"github.com/kiranshivaraju/reportgen/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// fakeRasterizer returns the HTML it was given as the "PDF" so tests can inspect it.
type fakeRasterizer struct {
	err   error
	calls int
}

func (f *fakeRasterizer) Name() string { return "fake" }

func (f *fakeRasterizer) Rasterize(_ context.Context, html []byte) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return html, nil
}

var _ render.Rasterizer = (*fakeRasterizer)(nil)

type harness struct {
	svc        *report.Service
	exec       *mock.MockExecutor
	rasterizer *fakeRasterizer
	projects   []string
}

func newHarness(t *testing.T, exec *mock.MockExecutor) *harness {
	t.Helper()
	h := &harness{exec: exec, rasterizer: &fakeRasterizer{}}

	renderer, err := render.NewRenderer()
	require.NoError(t, err)

	factory := func(_ context.Context, projectID string) (warehouse.Executor, error) {
		h.projects = append(h.projects, projectID)
		return h.exec, nil
	}
	h.svc = report.NewService(factory, h.rasterizer, renderer).
		WithRunIDs(func() string { return "run-test" })
	return h
}

func record(kv ...any) models.Record {
	r := models.NewRecord()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i].(string), kv[i+1])
	}
	return r
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	out, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return out
}

func familyRows() []models.Record {
	return []models.Record{
		record(models.ColFamilyName, "Beta Fund", models.ColFundName, "Beta Core", models.ColFundCIK, "201",
			models.ColFundTotalFilings, "5", models.ColFundQESFilings, "5"),
		record(models.ColFamilyName, "Alpha Fund", models.ColFundName, "Alpha Growth", models.ColFundCIK, "101",
			models.ColFundTotalFilings, "50", models.ColFundQESFilings, "10"),
		record(models.ColFamilyName, "Alpha Fund", models.ColFundName, "Alpha Income", models.ColFundCIK, "102",
			models.ColFundTotalFilings, "60", models.ColFundQESFilings, "15"),
	}
}

func TestRunFamily(t *testing.T) {
	h := newHarness(t, mock.NewMockExecutor(familyRows()))
	out := filepath.Join(t.TempDir(), "output", "ncen_family_exec_report.pdf")

	res, err := h.svc.RunFamily(context.Background(), report.FamilyRequest{ProjectID: "proj-1", Output: out})
	require.NoError(t, err)

	assert.Equal(t, "run-test", res.RunID)
	assert.Equal(t, out, res.PDFPath)
	assert.Equal(t, strings.TrimSuffix(out, ".pdf")+".csv", res.CSVPath)
	assert.Empty(t, res.XLSXPath)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, []string{"proj-1"}, h.projects)
	assert.True(t, h.exec.Closed)

	require.Len(t, h.exec.Queries, 1)
	assert.Contains(t, h.exec.Queries[0], "edgar_warehouse")

	pdf, err := os.ReadFile(res.PDFPath)
	require.NoError(t, err)
	assert.Contains(t, string(pdf), "Total Funds in Dataset:</b> 3")
	assert.Less(t, strings.Index(string(pdf), ">Alpha Fund<"), strings.Index(string(pdf), ">Beta Fund<"))
	assert.Contains(t, string(pdf), "Run run-test")

	got := readCSV(t, res.CSVPath)
	require.Len(t, got, 4)
	header := got[0]
	assert.Equal(t, scoring.FamilyDerivedColumns, header[len(header)-len(scoring.FamilyDerivedColumns):])
	// Rows follow family order: Alpha funds first.
	assert.Equal(t, "Alpha Growth", got[1][1])
	assert.Equal(t, "Alpha Income", got[2][1])
	assert.Equal(t, "Beta Core", got[3][1])
}

func TestRunFamily_EmptyResultWritesHeaderOnlyCSV(t *testing.T) {
	h := newHarness(t, mock.NewMockExecutor([]models.Record{}))
	out := filepath.Join(t.TempDir(), "family.pdf")

	res, err := h.svc.RunFamily(context.Background(), report.FamilyRequest{ProjectID: "p", Output: out})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Rows)

	got := readCSV(t, res.CSVPath)
	require.Len(t, got, 1)
	want := append(append([]string{}, models.FundColumns...), scoring.FamilyDerivedColumns...)
	assert.Equal(t, want, got[0])
}

func TestRunFamily_XLSX(t *testing.T) {
	h := newHarness(t, mock.NewMockExecutor(familyRows()))
	out := filepath.Join(t.TempDir(), "family.pdf")

	res, err := h.svc.RunFamily(context.Background(), report.FamilyRequest{ProjectID: "p", Output: out, XLSX: true})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(out), "family.xlsx"), res.XLSXPath)

	f, err := excelize.OpenFile(res.XLSXPath)
	require.NoError(t, err)
	defer f.Close()
	sheetRows, err := f.GetRows("Report Data")
	require.NoError(t, err)
	assert.Len(t, sheetRows, 4)
}

func TestRunFamily_MissingFamilyColumn(t *testing.T) {
	h := newHarness(t, mock.NewMockExecutor([]models.Record{record("companyName", "x")}))

	_, err := h.svc.RunFamily(context.Background(), report.FamilyRequest{
		ProjectID: "p",
		Output:    filepath.Join(t.TempDir(), "f.pdf"),
	})
	assert.ErrorIs(t, err, models.ErrMissingColumn)
	assert.Zero(t, h.rasterizer.calls)
}

func TestRunFamily_QueryFailureWritesNothing(t *testing.T) {
	h := newHarness(t, mock.NewFailingExecutor(warehouse.ErrQueryFailed))
	out := filepath.Join(t.TempDir(), "f.pdf")

	_, err := h.svc.RunFamily(context.Background(), report.FamilyRequest{ProjectID: "p", Output: out})
	assert.ErrorIs(t, err, warehouse.ErrQueryFailed)
	assert.NoFileExists(t, out)
	assert.True(t, h.exec.Closed)
}

func TestRunFamily_RasterizeFailure(t *testing.T) {
	h := newHarness(t, mock.NewMockExecutor(familyRows()))
	h.rasterizer.err = render.ErrRasterize
	out := filepath.Join(t.TempDir(), "f.pdf")

	_, err := h.svc.RunFamily(context.Background(), report.FamilyRequest{ProjectID: "p", Output: out})
	assert.ErrorIs(t, err, render.ErrRasterize)
	assert.NoFileExists(t, strings.TrimSuffix(out, ".pdf")+".csv")
}

func TestRunVendor(t *testing.T) {
	rows := []models.Record{
		record(models.ColCompanyName, "Acme", models.ColCompanyCIK, "1",
			models.ColTotalFilings, "90", models.ColQESFilings, "72", models.ColQESPercentage, "80",
			models.ColQESDominant, "true", models.ColOtherAgentsCount, "0", models.ColQESLastFormType, "10-K"),
	}
	h := newHarness(t, mock.NewMockExecutor(rows))
	out := filepath.Join(t.TempDir(), "vendor.pdf")

	res, err := h.svc.RunVendor(context.Background(), report.VendorRequest{
		ProjectID:  "proj-1",
		DatasetID:  "edgar",
		VendorName: "QUALITY EDGAR SOLUTIONS",
		Output:     out,
	})
	require.NoError(t, err)

	require.Len(t, h.exec.Queries, 1)
	sql := h.exec.Queries[0]
	assert.Contains(t, sql, "proj-1.edgar.")
	assert.Contains(t, sql, "'QUALITY EDGAR SOLUTIONS'")
	assert.NotContains(t, sql, "@project_id")

	got := readCSV(t, res.CSVPath)
	require.Len(t, got, 2)
	assert.Equal(t, []string{
		models.ColCompanyName, models.ColCompanyCIK, models.ColTotalFilings, models.ColQESFilings,
		models.ColQESPercentage, models.ColQESDominant, models.ColOtherAgentsCount, models.ColQESLastFormType,
		scoring.ColMoneyRank, scoring.ColSwitchRank, scoring.ColAIReasoning,
	}, got[0])
	assert.Equal(t, "$$$$", got[1][8])
	assert.Equal(t, "Very Low", got[1][9])
}

func TestRunVendor_SQLFileOverride(t *testing.T) {
	h := newHarness(t, mock.NewMockExecutor(nil))
	dir := t.TempDir()
	sqlPath := filepath.Join(dir, "custom.sql")
	require.NoError(t, os.WriteFile(sqlPath, []byte("SELECT * FROM @dataset_id.companies WHERE v = '@vendor_name'"), 0o644))

	res, err := h.svc.RunVendor(context.Background(), report.VendorRequest{
		ProjectID:  "p",
		DatasetID:  "warehouse",
		VendorName: "QES",
		Output:     filepath.Join(dir, "v.pdf"),
		SQLFile:    sqlPath,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT * FROM warehouse.companies WHERE v = 'QES'"}, h.exec.Queries)

	got := readCSV(t, res.CSVPath)
	want := append(append([]string{}, models.CompanyColumns...), scoring.VendorDerivedColumns...)
	assert.Equal(t, [][]string{want}, got)
}

func TestRunVendor_UnresolvedPlaceholder(t *testing.T) {
	h := newHarness(t, mock.NewMockExecutor(nil))

	_, err := h.svc.RunVendor(context.Background(), report.VendorRequest{
		ProjectID:  "p",
		VendorName: "QES",
		Output:     filepath.Join(t.TempDir(), "v.pdf"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "@dataset_id")
	assert.Empty(t, h.exec.Queries)
}

func TestRunVendor_ExecutorOpenFailure(t *testing.T) {
	renderer, err := render.NewRenderer()
	require.NoError(t, err)
	boom := errors.New("no credentials")
	svc := report.NewService(func(context.Context, string) (warehouse.Executor, error) {
		return nil, boom
	}, &fakeRasterizer{}, renderer)

	_, err = svc.RunVendor(context.Background(), report.VendorRequest{
		ProjectID: "p", DatasetID: "d", VendorName: "QES",
		Output: filepath.Join(t.TempDir(), "v.pdf"),
	})
	assert.ErrorIs(t, err, boom)
}
