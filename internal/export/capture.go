package export

import (
	"context"
	"errors"
)

var (
	// ErrElementNotFound means the capture root is absent from the page.
	ErrElementNotFound = errors.New("export: capture root not found")
	// ErrCapture wraps rasterization and print failures.
	ErrCapture = errors.New("export: capture failed")
	// ErrExportInProgress is returned while another export holds the
	// capture slot.
	ErrExportInProgress = errors.New("export: another export is in progress")
)

// CaptureRequest describes one rasterization of a rendered template.
type CaptureRequest struct {
	HTML   string
	RootID string
	// Scale is the device pixel ratio used for the bitmap.
	Scale float64
	// OverrideCSS is injected into the capture page only.
	OverrideCSS string
}

// Anchor is one hyperlink found inside the capture root. Box is in CSS
// pixels relative to the root's top-left corner. Err is set when the
// anchor's geometry could not be measured.
type Anchor struct {
	Href string `json:"href"`
	Box  Rect   `json:"box"`
	Err  string `json:"error,omitempty"`
}

// Capture is the result of rasterizing the capture root.
type Capture struct {
	PNG []byte
	// Root size in CSS pixels.
	RootWidth, RootHeight float64
	Anchors               []Anchor
}

// Capturer rasterizes a rendered template.
type Capturer interface {
	Capture(ctx context.Context, req CaptureRequest) (*Capture, error)
}

// Printer renders HTML to a PDF through the browser's print path.
type Printer interface {
	PrintPDF(ctx context.Context, html string) ([]byte, error)
}
