package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"clinicpulse/internal/report"
)

// Paper geometry for the printed report, in inches. Sized to hold the
// 1000x800 px figure at 96 DPI with a small margin.
const (
	paperWidthIn  = 11.0
	paperHeightIn = 8.5
	paperMarginIn = 0.25
)

// PDF renders the figure page in headless Chrome and prints it to PDF.
// One Chrome instance per call: the pipeline is request scoped and keeps
// no browser state between runs.
func (e *Exporter) PDF(ctx context.Context, fig *report.Figure) ([]byte, error) {
	html, err := e.HTML(fig)
	if err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", e.cfg.Headless),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	timeout := e.cfg.PDFTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	runCtx, cancelRun := context.WithTimeout(browserCtx, timeout)
	defer cancelRun()

	start := time.Now()
	var pdf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.WaitVisible(`body[data-report-ready="1"]`, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidthIn).
				WithPaperHeight(paperHeightIn).
				WithMarginTop(paperMarginIn).
				WithMarginBottom(paperMarginIn).
				WithMarginLeft(paperMarginIn).
				WithMarginRight(paperMarginIn).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to print report to PDF: %w", err)
	}

	e.logger.InfoContext(ctx, "rendered report PDF",
		slog.Int("bytes", len(pdf)),
		slog.String("duration", time.Since(start).String()))

	return pdf, nil
}
