package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"resume-builder/internal/export"
)

// ChromedpRenderer drives a headless Chrome per request. It captures
// template roots for the raster exporter and prints pages for print mode.
type ChromedpRenderer struct {
	ExecPath string
	Timeout  time.Duration
}

func NewChromedpRenderer(execPath string, timeout time.Duration) *ChromedpRenderer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChromedpRenderer{ExecPath: execPath, Timeout: timeout}
}

// browser starts Chrome with a page loaded from html. The returned cleanup
// closes the browser and removes the temporary files; it is always safe to
// call.
func (r *ChromedpRenderer) browser(ctx context.Context, html string) (context.Context, string, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// prepare exec allocator with optional CHROME_PATH
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1024, 1448),
	)
	execPath := r.ExecPath
	if execPath == "" {
		execPath = os.Getenv("CHROME_PATH")
	}
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	cleanups = append(cleanups, cancelAlloc)
	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	cleanups = append(cleanups, cancelCtx)
	tctx, cancelTimeout := context.WithTimeout(cctx, r.Timeout)
	cleanups = append(cleanups, cancelTimeout)

	tmpDir, err := os.MkdirTemp("", "resume-")
	if err != nil {
		cleanup()
		return nil, "", func() {}, err
	}
	cleanups = append(cleanups, func() { _ = os.RemoveAll(tmpDir) })

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		cleanup()
		return nil, "", func() {}, err
	}
	return tctx, "file://" + htmlPath, cleanup, nil
}

type rootGeometry struct {
	Width   float64         `json:"width"`
	Height  float64         `json:"height"`
	Anchors []export.Anchor `json:"anchors"`
}

// Capture rasterizes the element req.RootID at req.Scale on a white
// background, with req.OverrideCSS applied to this page only.
func (r *ChromedpRenderer) Capture(ctx context.Context, req export.CaptureRequest) (*export.Capture, error) {
	cctx, url, cleanup, err := r.browser(ctx, req.HTML)
	defer cleanup()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", export.ErrCapture, err)
	}

	var found bool
	err = chromedp.Run(cctx,
		emulation.SetDefaultBackgroundColorOverride().WithColor(&cdp.RGBA{R: 255, G: 255, B: 255, A: 1}),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(fmt.Sprintf("document.getElementById(%q) !== null", req.RootID), &found),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", export.ErrCapture, err)
	}
	if !found {
		return nil, export.ErrElementNotFound
	}

	css, err := json.Marshal(req.OverrideCSS)
	if err != nil {
		return nil, err
	}
	scale := req.Scale
	if scale < 1 {
		scale = 2
	}

	var (
		injected bool
		geo      rootGeometry
		shot     []byte
	)
	err = chromedp.Run(cctx,
		chromedp.Evaluate(fmt.Sprintf(injectScript, css, req.RootID), &injected),
		chromedp.Evaluate(fmt.Sprintf(anchorsScript, req.RootID), &geo),
		chromedp.ScreenshotScale("#"+req.RootID, scale, &shot, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", export.ErrCapture, err)
	}
	return &export.Capture{PNG: shot, RootWidth: geo.Width, RootHeight: geo.Height, Anchors: geo.Anchors}, nil
}

// PrintPDF renders html through Chrome's print path on A4 paper.
func (r *ChromedpRenderer) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	cctx, url, cleanup, err := r.browser(ctx, html)
	defer cleanup()
	if err != nil {
		return nil, err
	}

	var pdfBuf []byte
	err = chromedp.Run(cctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4: 210mm x 297mm -> inches: 8.27 x 11.69
			pdfBuf, _, err = page.PrintToPDF().WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuf, nil
}

// injectScript adds the override stylesheet and pins the root to the page
// width. Arguments: JSON-encoded CSS, root id.
const injectScript = `(() => {
	const style = document.createElement('style');
	style.textContent = %s;
	document.head.appendChild(style);
	const root = document.getElementById(%q);
	root.style.maxWidth = 'none';
	root.style.width = '210mm';
	return true;
})()`

// anchorsScript measures the root and every anchor inside it in CSS pixels
// relative to the root. Argument: root id.
const anchorsScript = `(() => {
	const root = document.getElementById(%q);
	const rr = root.getBoundingClientRect();
	const anchors = Array.from(root.querySelectorAll('a[href]')).map((a) => {
		try {
			const r = a.getBoundingClientRect();
			return {href: a.href, box: {x: r.left - rr.left, y: r.top - rr.top, w: r.width, h: r.height}};
		} catch (e) {
			return {href: a.href || '', box: {x: 0, y: 0, w: 0, h: 0}, error: String(e)};
		}
	});
	return {width: rr.width, height: rr.height, anchors: anchors};
})()`
