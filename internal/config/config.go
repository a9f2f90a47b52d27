package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for a reportgen run. Flags override these
// values; nothing below the CLI reads the environment directly.
type Config struct {
	Warehouse WarehouseConfig
	Render    RenderConfig
	Report    ReportConfig
}

type WarehouseConfig struct {
	Backend string

	// ProjectCandidates are environment-provided project ids in priority order.
	ProjectCandidates []string
	DatasetID         string

	BQ         BQConfig
	Postgres   PostgresConfig
	ClickHouse ClickHouseConfig
}

type BQConfig struct {
	Binary  string
	MaxRows int
}

type PostgresConfig struct {
	URL      string
	MaxConns int
}

type ClickHouseConfig struct {
	DSN string
}

type RenderConfig struct {
	Rasterizer       string
	ChromePath       string
	WeasyPrintBinary string
}

type ReportConfig struct {
	OutputDir  string
	VendorName string
	SQLFile    string
	XLSX       bool
}

// Supported warehouse backends.
const (
	BackendBQCLI      = "bq-cli"
	BackendBigQuery   = "bigquery"
	BackendPostgres   = "postgres"
	BackendClickHouse = "clickhouse"
)

// Supported rasterizers.
const (
	RasterizerChrome     = "chrome"
	RasterizerWeasyPrint = "weasyprint"
)

var validBackends = map[string]bool{
	BackendBQCLI:      true,
	BackendBigQuery:   true,
	BackendPostgres:   true,
	BackendClickHouse: true,
}

var validRasterizers = map[string]bool{
	RasterizerChrome:     true,
	RasterizerWeasyPrint: true,
}

// Load reads configuration from environment variables after loading an
// optional .env file. It does not validate: flags may still override the
// result, so callers run Validate once they are applied.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("ignoring unreadable .env file", "error", err)
	}

	cfg := Default()
	cfg.Warehouse.Backend = envString("REPORTGEN_BACKEND", cfg.Warehouse.Backend)
	cfg.Warehouse.ProjectCandidates = []string{
		os.Getenv("BQ_PROJECT_ID"),
		os.Getenv("GOOGLE_CLOUD_PROJECT"),
	}
	cfg.Warehouse.DatasetID = os.Getenv("BQ_DATASET_ID")
	cfg.Warehouse.BQ.Binary = envString("BQ_CLI_PATH", cfg.Warehouse.BQ.Binary)
	cfg.Warehouse.BQ.MaxRows = envInt("BQ_MAX_ROWS", cfg.Warehouse.BQ.MaxRows)
	cfg.Warehouse.Postgres.URL = os.Getenv("WAREHOUSE_POSTGRES_URL")
	cfg.Warehouse.Postgres.MaxConns = envInt("WAREHOUSE_POSTGRES_MAX_CONNS", cfg.Warehouse.Postgres.MaxConns)
	cfg.Warehouse.ClickHouse.DSN = os.Getenv("WAREHOUSE_CLICKHOUSE_DSN")

	cfg.Render.Rasterizer = envString("REPORTGEN_RASTERIZER", cfg.Render.Rasterizer)
	cfg.Render.ChromePath = os.Getenv("CHROME_PATH")
	cfg.Render.WeasyPrintBinary = envString("WEASYPRINT_PATH", cfg.Render.WeasyPrintBinary)

	cfg.Report.OutputDir = envString("REPORTGEN_OUTPUT_DIR", cfg.Report.OutputDir)
	cfg.Report.VendorName = envString("REPORTGEN_VENDOR_NAME", cfg.Report.VendorName)
	cfg.Report.SQLFile = os.Getenv("REPORTGEN_SQL_FILE")
	cfg.Report.XLSX = envBool("REPORTGEN_XLSX", cfg.Report.XLSX)

	return cfg, nil
}

// Default returns the built-in configuration without consulting the environment.
func Default() *Config {
	return &Config{
		Warehouse: WarehouseConfig{
			Backend: BackendBQCLI,
			BQ: BQConfig{
				Binary:  "bq",
				MaxRows: 1000000,
			},
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Render: RenderConfig{
			Rasterizer:       RasterizerChrome,
			WeasyPrintBinary: "weasyprint",
		},
		Report: ReportConfig{
			OutputDir:  "output",
			VendorName: "QUALITY EDGAR SOLUTIONS",
		},
	}
}

// Validate checks the combination of settings. It is exported so the CLI can
// re-validate after applying flag overrides.
func (c *Config) Validate() error {
	if !validBackends[c.Warehouse.Backend] {
		return fmt.Errorf("REPORTGEN_BACKEND must be one of bq-cli, bigquery, postgres, clickhouse; got %q", c.Warehouse.Backend)
	}
	if c.Warehouse.Backend == BackendBQCLI && c.Warehouse.BQ.MaxRows <= 0 {
		return fmt.Errorf("BQ_MAX_ROWS must be positive, got %d", c.Warehouse.BQ.MaxRows)
	}
	if c.Warehouse.Backend == BackendPostgres && c.Warehouse.Postgres.URL == "" {
		return fmt.Errorf("WAREHOUSE_POSTGRES_URL is required when backend is postgres")
	}
	if c.Warehouse.Backend == BackendClickHouse {
		if c.Warehouse.ClickHouse.DSN == "" {
			return fmt.Errorf("WAREHOUSE_CLICKHOUSE_DSN is required when backend is clickhouse")
		}
		if !strings.HasPrefix(c.Warehouse.ClickHouse.DSN, "clickhouse://") {
			return fmt.Errorf("WAREHOUSE_CLICKHOUSE_DSN must start with clickhouse://, got %q", c.Warehouse.ClickHouse.DSN)
		}
	}

	if !validRasterizers[c.Render.Rasterizer] {
		return fmt.Errorf("REPORTGEN_RASTERIZER must be one of chrome, weasyprint; got %q", c.Render.Rasterizer)
	}

	if strings.TrimSpace(c.Report.OutputDir) == "" {
		return fmt.Errorf("REPORTGEN_OUTPUT_DIR must not be empty")
	}
	if strings.TrimSpace(c.Report.VendorName) == "" {
		return fmt.Errorf("REPORTGEN_VENDOR_NAME must not be empty")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}
