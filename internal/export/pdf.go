package export

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sadopc/billr/internal/billing"
)

// A4 in inches, the unit Chrome prints in.
const (
	a4WidthIn  = 210 / 25.4
	a4HeightIn = 297 / 25.4
	cssPxPerIn = 96
)

// Printer turns a complete HTML page into a one-page PDF.
type Printer interface {
	PrintPDF(ctx context.Context, html string) ([]byte, error)
}

// ChromeConfig configures the headless Chrome printer.
type ChromeConfig struct {
	// RemoteURL points at a running Chrome DevTools endpoint. When empty a
	// local browser is launched.
	RemoteURL string
	// NoSandbox is needed when running as root or in containers.
	NoSandbox bool
	Timeout   time.Duration
}

// ChromePrinter prints HTML to PDF through the Chrome DevTools Protocol.
type ChromePrinter struct {
	config      ChromeConfig
	logger      zerolog.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

func NewChromePrinter(config ChromeConfig) *ChromePrinter {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	p := &ChromePrinter{
		config: config,
		logger: log.With().Str("component", "pdf").Logger(),
	}

	if config.RemoteURL != "" {
		p.allocCtx, p.allocCancel = chromedp.NewRemoteAllocator(context.Background(), config.RemoteURL)
		return p
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	p.allocCtx, p.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return p
}

// PrintPDF loads html into a blank tab and prints it on a single A4 page,
// shrinking the content to fit both page width and height.
func (p *ChromePrinter) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(p.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			p.logger.Debug().Msgf(format, args...)
		}),
	)
	defer browserCancel()

	// Tie the browser tab to the caller's deadline.
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	var (
		width, height float64
		pdf           []byte
	)
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.Evaluate(`document.documentElement.scrollWidth`, &width),
		chromedp.Evaluate(`document.documentElement.scrollHeight`, &height),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4WidthIn).
				WithPaperHeight(a4HeightIn).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithScale(fitScale(width, height)).
				WithPageRanges("1").
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("print pdf: %w", ctx.Err())
		}
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("print pdf: empty output")
	}
	return pdf, nil
}

func (p *ChromePrinter) Close() error {
	if p.allocCancel != nil {
		p.allocCancel()
	}
	return nil
}

// fitScale is the print scale that fits content of the given CSS pixel
// size onto one A4 page. Chrome accepts scales in [0.1, 2].
func fitScale(width, height float64) float64 {
	if width <= 0 || height <= 0 {
		return 1
	}
	s := math.Min(a4WidthIn*cssPxPerIn/width, a4HeightIn*cssPxPerIn/height)
	return math.Max(0.1, math.Min(1, s))
}

// DocumentExporter renders documents to PDF files.
type DocumentExporter struct {
	templates Templates
	printer   Printer
}

func NewDocumentExporter(templates Templates, printer Printer) *DocumentExporter {
	return &DocumentExporter{templates: templates, printer: printer}
}

// ExportDocument renders doc and writes the PDF to path. It fails with
// billing.ErrMissingRenderTarget when there is nothing to render.
func (e *DocumentExporter) ExportDocument(ctx context.Context, kind billing.Kind, doc *billing.Document, path string) error {
	html, err := e.templates.Render(kind, doc)
	if err != nil {
		return err
	}

	start := time.Now()
	data, err := e.printer.PrintPDF(ctx, html)
	if err != nil {
		return fmt.Errorf("export %s %s: %w", kind, doc.Number, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write pdf file: %w", err)
	}

	log.Info().
		Str("kind", string(kind)).
		Str("number", string(doc.Number)).
		Str("path", path).
		Int("bytes", len(data)).
		Dur("took", time.Since(start)).
		Msg("document exported")
	return nil
}
