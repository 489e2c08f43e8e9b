package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"resume-builder/internal/model"
	"resume-builder/internal/templates"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func syntheticPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

type fakeCapturer struct {
	capture *Capture
	err     error

	mu   sync.Mutex
	reqs []CaptureRequest

	entered chan struct{}
	release chan struct{}
}

func (f *fakeCapturer) Capture(ctx context.Context, req CaptureRequest) (*Capture, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.capture, nil
}

type fakePrinter struct {
	pdf []byte
	err error
}

func (f fakePrinter) PrintPDF(ctx context.Context, html string) ([]byte, error) {
	return f.pdf, f.err
}

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestFitA4Bitmap(t *testing.T) {
	pl, err := Fit(A4, 2000, 2828)
	if err != nil {
		t.Fatal(err)
	}
	const tol = 0.1
	if !near(pl.Image.W, 0.95*210, tol) || !near(pl.Image.H, 0.95*297, tol) {
		t.Errorf("scaled size = %.3f x %.3f", pl.Image.W, pl.Image.H)
	}
	if !near(pl.Image.X, 0.025*210, tol) || !near(pl.Image.Y, 0.025*297, tol) {
		t.Errorf("offset = %.3f, %.3f", pl.Image.X, pl.Image.Y)
	}
	if !near(pl.Ratio, 210.0/2000, 1e-9) || !near(pl.Scale, pl.Ratio*FillFactor, 1e-12) {
		t.Errorf("ratio = %v scale = %v", pl.Ratio, pl.Scale)
	}
}

func TestFitWideBitmapIsCenteredVertically(t *testing.T) {
	pl, err := Fit(A4, 4000, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if !near(pl.Image.W, 0.95*210, 1e-9) {
		t.Errorf("width = %v", pl.Image.W)
	}
	if !near(pl.Image.Y, (297-pl.Image.H)/2, 1e-9) || pl.Image.Y < 100 {
		t.Errorf("y offset = %v", pl.Image.Y)
	}
	if _, err := Fit(A4, 0, 10); err == nil {
		t.Error("Fit accepted an empty bitmap")
	}
}

func TestProjectUsesPlacement(t *testing.T) {
	pl, _ := Fit(A4, 2000, 2828)
	got := pl.Project(Rect{X: 0, Y: 0, W: 2000, H: 2828})
	if !near(got.X, pl.Image.X, 1e-9) || !near(got.W, pl.Image.W, 1e-9) || !near(got.H, pl.Image.H, 1e-9) {
		t.Errorf("full-bitmap box = %+v, want %+v", got, pl.Image)
	}
	mid := pl.Project(Rect{X: 1000, Y: 1414, W: 10, H: 10})
	if !near(mid.X, 105, 0.01) || !near(mid.Y, 148.5, 0.01) {
		t.Errorf("center maps to %.3f, %.3f", mid.X, mid.Y)
	}
}

func TestLinkable(t *testing.T) {
	tests := []struct {
		href string
		want bool
	}{
		{"https://x", true},
		{"http://x", true},
		{"HTTPS://X", true},
		{"mailto:a@b.c", true},
		{"ftp://x", false},
		{"file:///tmp/x.html#ZgotmplZ", false},
		{"javascript:alert(1)", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := linkable(tt.href); got != tt.want {
			t.Errorf("linkable(%q) = %v", tt.href, got)
		}
	}
}

func TestOverlaySkipsUnplaceableAnchors(t *testing.T) {
	pl, _ := Fit(A4, 1000, 1414)
	links := overlay([]Anchor{
		{Href: "https://ok", Box: Rect{X: 10, Y: 10, W: 50, H: 12}},
		{Href: "https://measure-failed", Err: "detached"},
		{Href: "https://zero", Box: Rect{X: 10, Y: 10}},
		{Href: "https://nan", Box: Rect{X: math.NaN(), Y: 1, W: 1, H: 1}},
		{Href: "ftp://x", Box: Rect{X: 1, Y: 1, W: 1, H: 1}},
		{Href: "mailto:a@b.c", Box: Rect{X: 0, Y: 0, W: 20, H: 10}},
	}, 2, pl, discardLogger())

	if len(links) != 2 || links[0].URL != "https://ok" || links[1].URL != "mailto:a@b.c" {
		t.Fatalf("links = %+v", links)
	}
	want := pl.Project(Rect{X: 20, Y: 20, W: 100, H: 24})
	if links[0].Rect != want {
		t.Errorf("rect = %+v, want %+v", links[0].Rect, want)
	}
}

func rasterCapturer(t *testing.T, anchors ...Anchor) *fakeCapturer {
	t.Helper()
	return &fakeCapturer{capture: &Capture{
		PNG:        syntheticPNG(t, 420, 594),
		RootWidth:  210,
		RootHeight: 297,
		Anchors:    anchors,
	}}
}

func TestExportKeepsOnlyWebAndMailLinks(t *testing.T) {
	fc := rasterCapturer(t,
		Anchor{Href: "ftp://x", Box: Rect{X: 10, Y: 10, W: 40, H: 10}},
		Anchor{Href: "https://x", Box: Rect{X: 10, Y: 30, W: 40, H: 10}},
	)
	e := New(fc, WithLogger(discardLogger()))

	art, err := e.Export(context.Background(), Request{Title: "My Resume", Template: model.TemplateTech})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if art.Links != 1 {
		t.Errorf("links = %d, want 1", art.Links)
	}
	if art.Pages != 1 {
		t.Errorf("pages = %d, want 1", art.Pages)
	}
	if n := bytes.Count(art.PDF, []byte("/Subtype /Link")); n != 1 {
		t.Errorf("link annotations = %d, want 1", n)
	}
	if !bytes.Contains(art.PDF, []byte("https://x")) || bytes.Contains(art.PDF, []byte("ftp://x")) {
		t.Error("link annotations do not match the anchors")
	}
	if art.FileName != "My_Resume_tech.pdf" {
		t.Errorf("file name = %q", art.FileName)
	}

	req := fc.reqs[0]
	if req.RootID != templates.RootID || req.Scale != 2 || req.OverrideCSS != templates.CaptureCSS() {
		t.Errorf("capture request = %+v", req)
	}
	if !strings.Contains(req.HTML, `id="`+templates.RootID+`"`) {
		t.Error("capture HTML lacks the root element")
	}
}

func TestExportMissingRootAborts(t *testing.T) {
	archive := t.TempDir()
	fc := &fakeCapturer{err: ErrElementNotFound}
	e := New(fc, WithLogger(discardLogger()), WithArchiveDir(archive))

	art, err := e.Export(context.Background(), Request{Title: "x"})
	if !errors.Is(err, ErrElementNotFound) || art != nil {
		t.Fatalf("Export = %v, %v", art, err)
	}
	if entries, _ := os.ReadDir(archive); len(entries) != 0 {
		t.Errorf("archive has %d entries after a failed export", len(entries))
	}
}

func TestExportWrapsRasterizationErrors(t *testing.T) {
	e := New(&fakeCapturer{err: errors.New("chrome crashed")}, WithLogger(discardLogger()))
	if _, err := e.Export(context.Background(), Request{}); !errors.Is(err, ErrCapture) {
		t.Errorf("err = %v, want ErrCapture", err)
	}

	bad := &fakeCapturer{capture: &Capture{PNG: []byte("not a png")}}
	if _, err := New(bad, WithLogger(discardLogger())).Export(context.Background(), Request{}); !errors.Is(err, ErrCapture) {
		t.Errorf("undecodable bitmap: err = %v", err)
	}
}

func TestConcurrentExportRejected(t *testing.T) {
	fc := rasterCapturer(t)
	fc.entered = make(chan struct{})
	fc.release = make(chan struct{})
	e := New(fc, WithLogger(discardLogger()))

	done := make(chan error, 1)
	go func() {
		_, err := e.Export(context.Background(), Request{Title: "first"})
		done <- err
	}()
	<-fc.entered

	if _, err := e.Export(context.Background(), Request{Title: "second"}); !errors.Is(err, ErrExportInProgress) {
		t.Errorf("second export: err = %v, want ErrExportInProgress", err)
	}
	close(fc.release)
	if err := <-done; err != nil {
		t.Fatalf("first export: %v", err)
	}

	fc.entered = nil
	if _, err := e.Export(context.Background(), Request{Title: "third"}); err != nil {
		t.Errorf("export after release: %v", err)
	}
}

func TestDownloadPDF(t *testing.T) {
	var buf bytes.Buffer
	ok := New(rasterCapturer(t), WithLogger(discardLogger())).DownloadPDF(context.Background(), Request{Title: "a"}, &buf)
	if !ok || !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("DownloadPDF = %v, %d bytes", ok, buf.Len())
	}

	buf.Reset()
	ok = New(&fakeCapturer{err: ErrElementNotFound}, WithLogger(discardLogger())).DownloadPDF(context.Background(), Request{}, &buf)
	if ok || buf.Len() != 0 {
		t.Errorf("failed export: DownloadPDF = %v, wrote %d bytes", ok, buf.Len())
	}
}

func TestPrintMode(t *testing.T) {
	pl, _ := Fit(A4, 420, 594)
	doc, err := compose(syntheticPNG(t, 420, 594), pl, nil, A4)
	if err != nil {
		t.Fatal(err)
	}

	fc := rasterCapturer(t)
	e := New(fc, WithLogger(discardLogger()), WithPrinter(fakePrinter{pdf: doc}))
	art, err := e.Export(context.Background(), Request{Title: "p", Mode: ParseMode("print")})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if art.Pages != 1 || len(fc.reqs) != 0 {
		t.Errorf("pages = %d, captures = %d", art.Pages, len(fc.reqs))
	}

	noPrinter := New(fc, WithLogger(discardLogger()))
	if _, err := noPrinter.Export(context.Background(), Request{Mode: ModePrint}); !errors.Is(err, ErrCapture) {
		t.Errorf("print without printer: err = %v", err)
	}
}

func TestArchive(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "archive")
	clock := func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	e := New(rasterCapturer(t), WithLogger(discardLogger()), WithArchiveDir(dir), WithClock(clock))

	if _, err := e.Export(context.Background(), Request{Title: "Ada L", Template: model.TemplateClassic}); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"20240501T120000.000_Ada_L_classic.pdf", "20240501T120000.000_Ada_L_classic.html"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("archive missing %s: %v", name, err)
		}
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		title string
		tpl   model.TemplateID
		want  string
	}{
		{"Senior  Go Engineer", model.TemplateModern, "Senior_Go_Engineer_modern.pdf"},
		{"Resume", model.TemplateTech, "Resume_tech.pdf"},
		{"a\tb\nc", model.TemplateMinimal, "a_b_c_minimal.pdf"},
		{"", model.TemplateClassic, "resume_classic.pdf"},
		{"   ", model.TemplateClassic, "resume_classic.pdf"},
	}
	for _, tt := range tests {
		if got := FileName(tt.title, tt.tpl); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"print": ModePrint, " PRINT ": ModePrint, "": ModeRaster, "raster": ModeRaster, "other": ModeRaster} {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q) = %q", in, got)
		}
	}
}
