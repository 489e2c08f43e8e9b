// Package templates renders a resume document into a printable HTML page.
// Every variant draws inside a fixed 210mm wide root element whose id is
// RootID, which the exporter captures.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"resume-builder/internal/model"
)

// RootID is the id of the element every variant renders into.
const RootID = "pdf-resume-preview"

//go:embed layouts/*.html assets/*.css
var files embed.FS

// Template is a pure rendering of a resume document.
type Template interface {
	ID() model.TemplateID
	Name() string
	Description() string
	Render(w io.Writer, data model.ResumeData) error
}

// Palette names the color utility classes a variant draws with. Every class
// used here must have a literal RGB override in assets/capture.css.
type Palette struct {
	Heading string
	Text    string
	Muted   string
	Contact string
	Accent  string
	Chip    string
	Rule    string
	Band    string
}

type variant struct {
	id          model.TemplateID
	name        string
	description string
	palette     Palette
	tmpl        *template.Template
}

type page struct {
	model.ResumeData
	RootID  string
	Variant model.TemplateID
	Name    string
	Palette Palette
	Style   template.CSS
}

func (v *variant) ID() model.TemplateID { return v.id }
func (v *variant) Name() string         { return v.name }
func (v *variant) Description() string  { return v.description }

// Render writes a complete HTML document. Nothing is written on failure.
func (v *variant) Render(w io.Writer, data model.ResumeData) error {
	p := page{
		ResumeData: data.Clone(),
		RootID:     RootID,
		Variant:    v.id,
		Name:       v.name,
		Palette:    v.palette,
		Style:      template.CSS(stylesheet),
	}
	var buf bytes.Buffer
	if err := v.tmpl.ExecuteTemplate(&buf, "base", p); err != nil {
		return fmt.Errorf("render %s: %w", v.id, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

var (
	stylesheet = mustRead("assets/style.css")
	captureCSS = mustRead("assets/capture.css")
	registry   = mustLoad()
)

var definitions = []struct {
	id          model.TemplateID
	name        string
	description string
	palette     Palette
}{
	{model.TemplateModern, "Modern Professional", "Clean and contemporary design with a professional look", Palette{
		Heading: "text-gray-900", Text: "text-gray-700", Muted: "text-gray-600", Contact: "text-gray-600",
		Accent: "text-blue-600", Chip: "bg-blue-50 text-blue-800", Rule: "border-blue-600",
	}},
	{model.TemplateClassic, "Classic Traditional", "Traditional format perfect for conservative industries", Palette{
		Heading: "text-gray-900", Text: "text-gray-800", Muted: "text-gray-600", Contact: "text-gray-600",
		Accent: "text-gray-800", Chip: "bg-gray-100 text-gray-800", Rule: "border-gray-800",
	}},
	{model.TemplateCreative, "Creative Design", "Bold and creative template for design-focused roles", Palette{
		Heading: "text-gray-900", Text: "text-gray-700", Muted: "text-gray-500", Contact: "text-gray-500",
		Accent: "text-purple-600", Chip: "bg-purple-50 text-purple-600", Rule: "border-purple-600", Band: "bg-purple-50",
	}},
	{model.TemplateMinimal, "Minimal Clean", "Minimalist design focusing on content clarity", Palette{
		Heading: "text-gray-900", Text: "text-gray-700", Muted: "text-gray-500", Contact: "text-gray-500",
		Accent: "text-gray-900", Chip: "text-gray-700", Rule: "border-gray-200",
	}},
	{model.TemplateExecutive, "Executive Premium", "Premium template for senior-level positions", Palette{
		Heading: "text-gray-900", Text: "text-gray-800", Muted: "text-gray-600", Contact: "text-gray-200",
		Accent: "text-amber-600", Chip: "bg-gray-100 text-gray-800", Rule: "border-amber-600", Band: "bg-slate-900",
	}},
	{model.TemplateTech, "Tech Professional", "Modern template optimized for tech professionals", Palette{
		Heading: "text-gray-900", Text: "text-gray-700", Muted: "text-gray-500", Contact: "text-gray-200",
		Accent: "text-emerald-600", Chip: "bg-gray-100 text-emerald-600", Rule: "border-emerald-600", Band: "bg-slate-900",
	}},
}

func mustRead(name string) string {
	b, err := files.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func mustLoad() map[model.TemplateID]*variant {
	out := make(map[model.TemplateID]*variant, len(definitions))
	for _, d := range definitions {
		t, err := template.New("base").Funcs(funcs).ParseFS(files,
			"layouts/base.html",
			"layouts/partials.html",
			"layouts/"+string(d.id)+".html",
		)
		if err != nil {
			panic(fmt.Sprintf("templates: parse %s: %v", d.id, err))
		}
		out[d.id] = &variant{id: d.id, name: d.name, description: d.description, palette: d.palette, tmpl: t}
	}
	return out
}

// Lookup returns the variant for id, or the modern variant when id is not
// known.
func Lookup(id model.TemplateID) Template {
	if v, ok := registry[id]; ok {
		return v
	}
	return registry[model.DefaultTemplate]
}

// All returns every variant in display order.
func All() []Template {
	out := make([]Template, 0, len(model.TemplateIDs))
	for _, id := range model.TemplateIDs {
		out = append(out, registry[id])
	}
	return out
}

// CaptureCSS is the stylesheet injected into a capture page. It pins every
// color utility class to a literal RGB value and forces a white background.
func CaptureCSS() string { return captureCSS }

var funcs = template.FuncMap{
	"href":    Href,
	"display": display,
}

// Href turns a user-entered link into an absolute URL. Bare addresses get an
// https scheme, bare e-mail addresses a mailto scheme.
func Href(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "mailto:"):
		return s
	case strings.Contains(s, "://"):
		return s
	case strings.Contains(s, "@") && !strings.Contains(s, "/"):
		return "mailto:" + s
	}
	return "https://" + s
}

func display(raw string) string {
	s := strings.TrimSpace(raw)
	for _, p := range []string{"https://", "http://", "mailto:"} {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			s = s[len(p):]
			break
		}
	}
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimSuffix(s, "/")
}
