package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const captureImage = "capture"

// compose builds a single-page PDF holding the bitmap at pl with an
// invisible link annotation per entry in links.
func compose(png []byte, pl Placement, links []link, page Size) ([]byte, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: page.W, Ht: page.H},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(captureImage, opts, bytes.NewReader(png))
	pdf.ImageOptions(captureImage, pl.Image.X, pl.Image.Y, pl.Image.W, pl.Image.H, false, opts, 0, "")

	for _, l := range links {
		pdf.LinkString(l.Rect.X, l.Rect.Y, l.Rect.W, l.Rect.H, l.URL)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("export: compose: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("export: compose: %w", err)
	}
	return buf.Bytes(), nil
}
