package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/kiranshivaraju/reportgen/internal/cmdexec"
	"github.com/kiranshivaraju/reportgen/internal/config"
)

// ErrRasterize wraps every HTML-to-PDF conversion failure.
var ErrRasterize = errors.New("rasterize pdf")

// Rasterizer converts a complete HTML document into PDF bytes.
type Rasterizer interface {
	Rasterize(ctx context.Context, html []byte) ([]byte, error)
	Name() string
}

// NewRasterizer constructs the rasterizer named by cfg.Rasterizer.
// runner is only used by the weasyprint rasterizer; nil means os/exec.
func NewRasterizer(cfg config.RenderConfig, runner cmdexec.Runner) (Rasterizer, error) {
	switch cfg.Rasterizer {
	case config.RasterizerChrome:
		return NewChromeRasterizer(cfg.ChromePath), nil
	case config.RasterizerWeasyPrint:
		return NewCommandRasterizer(cfg.WeasyPrintBinary, runner), nil
	default:
		return nil, fmt.Errorf("unknown rasterizer %q: must be one of chrome, weasyprint", cfg.Rasterizer)
	}
}

// ChromeRasterizer prints HTML to PDF with headless Chrome via the DevTools protocol.
type ChromeRasterizer struct {
	execPath string
}

// NewChromeRasterizer uses the Chrome binary at execPath, or the first one
// found on PATH when execPath is empty.
func NewChromeRasterizer(execPath string) *ChromeRasterizer {
	return &ChromeRasterizer{execPath: execPath}
}

func (r *ChromeRasterizer) Name() string { return config.RasterizerChrome }

func (r *ChromeRasterizer) Rasterize(ctx context.Context, html []byte) ([]byte, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: chrome: %v", ErrRasterize, err)
	}
	return pdf, nil
}

// CommandRasterizer pipes HTML through a command-line converter that reads
// stdin and writes PDF to stdout (weasyprint - -).
type CommandRasterizer struct {
	binary string
	runner cmdexec.Runner
}

// NewCommandRasterizer creates a CommandRasterizer. A nil runner uses os/exec.
func NewCommandRasterizer(binary string, runner cmdexec.Runner) *CommandRasterizer {
	if runner == nil {
		runner = cmdexec.ExecRunner{}
	}
	return &CommandRasterizer{binary: binary, runner: runner}
}

func (r *CommandRasterizer) Name() string { return config.RasterizerWeasyPrint }

func (r *CommandRasterizer) Rasterize(ctx context.Context, html []byte) ([]byte, error) {
	res, err := r.runner.Run(ctx, html, r.binary, "-", "-")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterize, err)
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("%w: %s exited %d: %s", ErrRasterize, r.binary, res.ExitCode,
			res.Diagnostic("no output"))
	}
	if len(res.Stdout) == 0 {
		return nil, fmt.Errorf("%w: %s produced no output", ErrRasterize, r.binary)
	}
	return res.Stdout, nil
}

// WritePDF rasterizes html and writes it to path, creating parent directories.
func WritePDF(ctx context.Context, r Rasterizer, html []byte, path string) error {
	start := time.Now()
	pdf, err := r.Rasterize(ctx, html)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	slog.Info("pdf written",
		"path", path,
		"rasterizer", r.Name(),
		"bytes", len(pdf),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

var (
	_ Rasterizer = (*ChromeRasterizer)(nil)
	_ Rasterizer = (*CommandRasterizer)(nil)
)
