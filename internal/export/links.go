package export

import (
	"log/slog"
	"strings"
)

type link struct {
	URL  string
	Rect Rect
}

// linkable reports whether href may become a clickable region.
func linkable(href string) bool {
	h := strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(h, "http") || strings.HasPrefix(h, "mailto:")
}

// overlay converts anchors to page-space link regions. pxPerCSS converts
// the anchors' CSS pixel boxes to bitmap pixels. Anchors that cannot be
// placed are logged and skipped.
func overlay(anchors []Anchor, pxPerCSS float64, pl Placement, logger *slog.Logger) []link {
	out := make([]link, 0, len(anchors))
	for _, a := range anchors {
		if !linkable(a.Href) {
			continue
		}
		if a.Err != "" {
			logger.Warn("export: skipping link", slog.String("href", a.Href), slog.String("error", a.Err))
			continue
		}
		px := Rect{X: a.Box.X * pxPerCSS, Y: a.Box.Y * pxPerCSS, W: a.Box.W * pxPerCSS, H: a.Box.H * pxPerCSS}
		r := pl.Project(px)
		if !r.valid() {
			logger.Warn("export: skipping link with unusable geometry", slog.String("href", a.Href), slog.Any("box", a.Box))
			continue
		}
		out = append(out, link{URL: strings.TrimSpace(a.Href), Rect: r})
	}
	return out
}
