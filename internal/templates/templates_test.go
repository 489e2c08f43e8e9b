package templates

import (
	"regexp"
	"strings"
	"testing"

	"resume-builder/internal/model"
)

func sample() model.ResumeData {
	return model.ResumeData{
		PersonalInfo: model.PersonalInfo{
			FullName: "Ada Lovelace",
			Email:    "ada@example.com",
			Phone:    "+44 20 0000",
			Website:  "ada.dev",
			LinkedIn: "https://linkedin.com/in/ada",
			Summary:  "Writes programs for engines.",
		},
		Experience: []model.Experience{
			{ID: 1, Company: "Acme", Position: "Engineer", Date: "2020-2022"},
			{ID: 2, Company: "Globex", Position: "Lead", Date: "2022-2024"},
		},
		Education: []model.Education{{ID: 3, Institution: "Cambridge", Degree: "BSc"}},
		Skills:    []string{"Go", "SQL"},
		Projects: []model.Project{{
			ID: 4, Title: "Engine", Link: "engine.example.com", GithubLink: "https://github.com/ada/engine",
			KeyHighlights: []model.KeyHighlight{{ID: 5, Text: "First program"}},
		}},
		Certifications: []model.Certification{{ID: 6, Name: "CKA", Issuer: "CNCF", Date: "2023"}},
	}
}

func render(t *testing.T, tpl Template, data model.ResumeData) string {
	t.Helper()
	var sb strings.Builder
	if err := tpl.Render(&sb, data); err != nil {
		t.Fatalf("%s: Render: %v", tpl.ID(), err)
	}
	return sb.String()
}

func TestLookupFallsBackToModern(t *testing.T) {
	for _, id := range []model.TemplateID{"foo", "", "MODERN"} {
		if got := Lookup(id).ID(); got != model.TemplateModern {
			t.Errorf("Lookup(%q) = %q", id, got)
		}
	}
	for _, id := range model.TemplateIDs {
		if got := Lookup(id).ID(); got != id {
			t.Errorf("Lookup(%q) = %q", id, got)
		}
	}
	if len(All()) != 6 {
		t.Errorf("All() has %d variants", len(All()))
	}
}

func TestEveryVariantRendersRootAndLinks(t *testing.T) {
	for _, tpl := range All() {
		out := render(t, tpl, sample())
		if !strings.Contains(out, `id="`+RootID+`"`) {
			t.Errorf("%s: capture root missing", tpl.ID())
		}
		for _, href := range []string{
			`href="mailto:ada@example.com"`,
			`href="https://ada.dev"`,
			`href="https://linkedin.com/in/ada"`,
			`href="https://engine.example.com"`,
			`href="https://github.com/ada/engine"`,
		} {
			if !strings.Contains(out, href) {
				t.Errorf("%s: missing anchor %s", tpl.ID(), href)
			}
		}
		if !strings.Contains(out, "width: 210mm") {
			t.Errorf("%s: root is not bounded to the page width", tpl.ID())
		}
	}
}

func TestListOrderPreserved(t *testing.T) {
	for _, tpl := range All() {
		out := render(t, tpl, sample())
		if a, g := strings.Index(out, "Acme"), strings.Index(out, "Globex"); a < 0 || g < a {
			t.Errorf("%s: experience out of order (Acme@%d, Globex@%d)", tpl.ID(), a, g)
		}
		if a, b := strings.Index(out, ">Go<"), strings.Index(out, ">SQL<"); a < 0 || b < a {
			t.Errorf("%s: skills out of order", tpl.ID())
		}
	}
}

func TestEmptySectionsOmitted(t *testing.T) {
	for _, tpl := range All() {
		out := render(t, tpl, model.ResumeData{})
		if strings.Contains(out, `class="section-title`) {
			t.Errorf("%s: empty document rendered a section header", tpl.ID())
		}
		if strings.Contains(out, "<a ") {
			t.Errorf("%s: empty document rendered an anchor", tpl.ID())
		}
	}

	data := model.ResumeData{Skills: []string{"Go"}}
	out := render(t, Lookup(model.TemplateClassic), data)
	if got := strings.Count(out, `class="section-title`); got != 1 {
		t.Errorf("sections rendered = %d, want 1", got)
	}
}

func TestRenderEscapesContent(t *testing.T) {
	data := model.ResumeData{Skills: []string{"<script>alert(1)</script>"}}
	out := render(t, Lookup(model.TemplateModern), data)
	if strings.Contains(out, "<script>alert") {
		t.Error("skill rendered unescaped")
	}
}

func TestHref(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"  ", ""},
		{"example.com", "https://example.com"},
		{"http://example.com", "http://example.com"},
		{"HTTPS://Example.com", "HTTPS://Example.com"},
		{"me@example.com", "mailto:me@example.com"},
		{"mailto:me@example.com", "mailto:me@example.com"},
		{"ftp://files.example.com", "ftp://files.example.com"},
		{"linkedin.com/in/a@b", "https://linkedin.com/in/a@b"},
	}
	for _, tt := range tests {
		if got := Href(tt.in); got != tt.want {
			t.Errorf("Href(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

var colorClass = regexp.MustCompile(`\.((?:text|bg|border)-[a-z]+(?:-\d+)?)\s*\{[^}]*(?:color|background-color|border-color)`)

func TestCaptureCSSCoversEveryColorClass(t *testing.T) {
	overrides := map[string]bool{}
	for _, m := range colorClass.FindAllStringSubmatch(CaptureCSS(), -1) {
		overrides[m[1]] = true
	}
	for _, m := range colorClass.FindAllStringSubmatch(stylesheet, -1) {
		if !overrides[m[1]] {
			t.Errorf("color class %s has no capture override", m[1])
		}
	}
	for _, d := range definitions {
		p := d.palette
		for _, classes := range []string{p.Heading, p.Text, p.Muted, p.Contact, p.Accent, p.Chip, p.Rule, p.Band} {
			for _, c := range strings.Fields(classes) {
				if !overrides[c] {
					t.Errorf("%s: palette class %s has no capture override", d.id, c)
				}
			}
		}
	}
	if strings.Contains(CaptureCSS(), "oklch") {
		t.Error("capture stylesheet uses oklch")
	}
}
