package export

import (
	"errors"
	"math"
)

// Size is a page or bitmap extent.
type Size struct {
	W, H float64
}

// A4 in millimetres.
var A4 = Size{W: 210, H: 297}

// FillFactor is the share of the fitted page area the bitmap occupies.
const FillFactor = 0.95

// Rect is an axis-aligned box with its origin at the top-left.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) valid() bool {
	for _, v := range []float64{r.X, r.Y, r.W, r.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.W > 0 && r.H > 0
}

// Placement positions a bitmap on a page.
type Placement struct {
	// Ratio is the largest uniform scale that fits the bitmap on the page.
	Ratio float64
	// Scale is Ratio reduced by FillFactor; page units per bitmap pixel.
	Scale float64
	// Image is where the bitmap lands, in page units.
	Image Rect
}

var errEmptyBitmap = errors.New("export: empty bitmap")

// Fit scales a bitmap of bw×bh pixels onto page and centers it.
func Fit(page Size, bw, bh float64) (Placement, error) {
	if bw <= 0 || bh <= 0 {
		return Placement{}, errEmptyBitmap
	}
	ratio := math.Min(page.W/bw, page.H/bh)
	scale := ratio * FillFactor
	w, h := bw*scale, bh*scale
	return Placement{
		Ratio: ratio,
		Scale: scale,
		Image: Rect{X: (page.W - w) / 2, Y: (page.H - h) / 2, W: w, H: h},
	}, nil
}

// Project maps a box given in bitmap pixels, relative to the bitmap origin,
// into page units.
func (p Placement) Project(r Rect) Rect {
	return Rect{
		X: p.Image.X + r.X*p.Scale,
		Y: p.Image.Y + r.Y*p.Scale,
		W: r.W * p.Scale,
		H: r.H * p.Scale,
	}
}
