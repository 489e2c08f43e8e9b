// Package export turns a rendered resume template into a downloadable PDF.
//
// In raster mode the template's capture root is rasterized by a headless
// browser, fitted onto an A4 page and overlaid with clickable regions for
// its outbound links. In print mode the browser's own print path produces
// the document. Only one export runs at a time.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"resume-builder/internal/model"
	"resume-builder/internal/templates"
)

// Mode selects how a PDF is produced.
type Mode string

const (
	ModeRaster Mode = "raster"
	ModePrint  Mode = "print"
)

// ParseMode maps s to a Mode; anything but "print" selects raster.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModePrint {
		return ModePrint
	}
	return ModeRaster
}

// Request is a snapshot to export.
type Request struct {
	Title    string
	Template model.TemplateID
	Data     model.ResumeData
	Mode     Mode
}

// Artifact is a finished export.
type Artifact struct {
	FileName string
	PDF      []byte
	Pages    int
	Links    int
}

// Exporter runs export requests one at a time.
type Exporter struct {
	capturer   Capturer
	printer    Printer
	slot       *semaphore.Weighted
	page       Size
	scale      float64
	timeout    time.Duration
	archiveDir string
	optimize   bool
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Exporter)

func WithPrinter(p Printer) Option { return func(e *Exporter) { e.printer = p } }
func WithLogger(l *slog.Logger) Option { return func(e *Exporter) { e.logger = l } }
func WithPage(s Size) Option { return func(e *Exporter) { e.page = s } }
func WithTimeout(d time.Duration) Option { return func(e *Exporter) { e.timeout = d } }
func WithArchiveDir(dir string) Option { return func(e *Exporter) { e.archiveDir = dir } }
func WithOptimize(on bool) Option { return func(e *Exporter) { e.optimize = on } }
func WithClock(now func() time.Time) Option { return func(e *Exporter) { e.now = now } }

// WithScale sets the bitmap oversampling factor. Values below 1 are ignored.
func WithScale(s float64) Option {
	return func(e *Exporter) {
		if s >= 1 {
			e.scale = s
		}
	}
}

// New returns an exporter capturing through c.
func New(c Capturer, opts ...Option) *Exporter {
	e := &Exporter{
		capturer: c,
		slot:     semaphore.NewWeighted(1),
		page:     A4,
		scale:    2,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

var whitespace = regexp.MustCompile(`\s+`)

// FileName is the download name for a resume titled title.
func FileName(title string, tpl model.TemplateID) string {
	base := whitespace.ReplaceAllString(title, "_")
	if strings.Trim(base, "_") == "" {
		base = "resume"
	}
	return base + "_" + string(tpl) + ".pdf"
}

// Export renders req and produces a PDF. It fails fast with
// ErrExportInProgress while another export is running.
func (e *Exporter) Export(ctx context.Context, req Request) (*Artifact, error) {
	if !e.slot.TryAcquire(1) {
		return nil, ErrExportInProgress
	}
	defer e.slot.Release(1)

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	tpl := templates.Lookup(req.Template)
	var html bytes.Buffer
	if err := tpl.Render(&html, req.Data); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	logger := e.logger.With(slog.String("template", string(tpl.ID())), slog.String("mode", string(req.Mode)))
	started := e.now()

	var (
		pdf   []byte
		links int
		err   error
	)
	switch req.Mode {
	case ModePrint:
		pdf, err = e.print(ctx, html.String())
	default:
		pdf, links, err = e.raster(ctx, html.String(), logger)
	}
	if err != nil {
		logger.Error("export failed", slog.String("error", err.Error()))
		return nil, err
	}

	if e.optimize {
		if opt, oerr := optimize(pdf); oerr != nil {
			logger.Warn("export: optimize failed, keeping original", slog.String("error", oerr.Error()))
		} else {
			pdf = opt
		}
	}
	pages, err := pageCount(pdf)
	if err != nil {
		logger.Error("export produced an unreadable document", slog.String("error", err.Error()))
		return nil, err
	}

	art := &Artifact{FileName: FileName(req.Title, tpl.ID()), PDF: pdf, Pages: pages, Links: links}
	e.archive(art, html.Bytes(), logger)
	logger.Info("export complete",
		slog.String("file", art.FileName),
		slog.Int("bytes", len(pdf)),
		slog.Int("pages", pages),
		slog.Int("links", links),
		slog.Duration("took", e.now().Sub(started)),
	)
	return art, nil
}

// DownloadPDF exports req and writes the document to w. It reports whether
// a complete document was written; failures are logged.
func (e *Exporter) DownloadPDF(ctx context.Context, req Request, w io.Writer) bool {
	art, err := e.Export(ctx, req)
	if err != nil {
		return false
	}
	if _, err := w.Write(art.PDF); err != nil {
		e.logger.Error("export: write failed", slog.String("file", art.FileName), slog.String("error", err.Error()))
		return false
	}
	return true
}

func (e *Exporter) raster(ctx context.Context, html string, logger *slog.Logger) ([]byte, int, error) {
	c, err := e.capturer.Capture(ctx, CaptureRequest{
		HTML:        html,
		RootID:      templates.RootID,
		Scale:       e.scale,
		OverrideCSS: templates.CaptureCSS(),
	})
	if err != nil {
		return nil, 0, captureErr(err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(c.PNG))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: decode bitmap: %v", ErrCapture, err)
	}
	pl, err := Fit(e.page, float64(cfg.Width), float64(cfg.Height))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCapture, err)
	}

	pxPerCSS := e.scale
	if c.RootWidth > 0 {
		pxPerCSS = float64(cfg.Width) / c.RootWidth
	}
	links := overlay(c.Anchors, pxPerCSS, pl, logger)

	pdf, err := compose(c.PNG, pl, links, e.page)
	if err != nil {
		return nil, 0, err
	}
	return pdf, len(links), nil
}

func (e *Exporter) print(ctx context.Context, html string) ([]byte, error) {
	if e.printer == nil {
		return nil, fmt.Errorf("%w: print mode is not available", ErrCapture)
	}
	pdf, err := e.printer.PrintPDF(ctx, html)
	if err != nil {
		return nil, captureErr(err)
	}
	return pdf, nil
}

func captureErr(err error) error {
	if errors.Is(err, ErrElementNotFound) || errors.Is(err, ErrCapture) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrCapture, err)
}

// archive keeps a copy of the document and its HTML. Failures are logged.
func (e *Exporter) archive(art *Artifact, html []byte, logger *slog.Logger) {
	if e.archiveDir == "" {
		return
	}
	if err := os.MkdirAll(e.archiveDir, 0o755); err != nil {
		logger.Warn("export: archive dir unavailable", slog.String("dir", e.archiveDir), slog.String("error", err.Error()))
		return
	}
	stem := e.now().UTC().Format("20060102T150405.000") + "_" + strings.TrimSuffix(filepath.Base(art.FileName), ".pdf")
	for name, b := range map[string][]byte{stem + ".pdf": art.PDF, stem + ".html": html} {
		if err := os.WriteFile(filepath.Join(e.archiveDir, name), b, 0o644); err != nil {
			logger.Warn("export: archive write failed", slog.String("file", name), slog.String("error", err.Error()))
		}
	}
}
