package model

import (
	"bytes"
	"encoding/json"
)

// Go models for the resume document edited by the builder and consumed by
// the templates and the exporter.

// TemplateID names one of the visual templates.
type TemplateID string

const (
	TemplateModern    TemplateID = "modern"
	TemplateClassic   TemplateID = "classic"
	TemplateCreative  TemplateID = "creative"
	TemplateMinimal   TemplateID = "minimal"
	TemplateExecutive TemplateID = "executive"
	TemplateTech      TemplateID = "tech"

	DefaultTemplate = TemplateModern
)

// TemplateIDs lists the known templates in display order.
var TemplateIDs = []TemplateID{
	TemplateModern,
	TemplateClassic,
	TemplateCreative,
	TemplateMinimal,
	TemplateExecutive,
	TemplateTech,
}

// Known reports whether t is one of the known templates.
func (t TemplateID) Known() bool {
	for _, id := range TemplateIDs {
		if id == t {
			return true
		}
	}
	return false
}

// ParseTemplateID returns the template for s, or DefaultTemplate when s is
// not a known identifier.
func ParseTemplateID(s string) TemplateID {
	if t := TemplateID(s); t.Known() {
		return t
	}
	return DefaultTemplate
}

type PersonalInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Website  string `json:"website"`
	LinkedIn string `json:"linkedin"`
	Summary  string `json:"summary"`
}

type Education struct {
	ID           int64  `json:"id"`
	Institution  string `json:"institution"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldOfStudy"`
	Date         string `json:"date"`
	Description  string `json:"description"`
}

type Experience struct {
	ID          int64  `json:"id"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// KeyHighlight is a single bullet attached to a project.
type KeyHighlight struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// UnmarshalJSON accepts both the {id, text} form kept in drafts and the
// plain string form returned by the resume service.
func (h *KeyHighlight) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*h = KeyHighlight{Text: s}
		return nil
	}
	type plain KeyHighlight
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*h = KeyHighlight(p)
	return nil
}

type Project struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Technologies  string         `json:"technologies"`
	Link          string         `json:"link"`
	GithubLink    string         `json:"githubLink"`
	KeyHighlights []KeyHighlight `json:"keyHighlights"`
}

// HighlightTexts returns the highlight texts in order.
func (p Project) HighlightTexts() []string {
	out := make([]string, 0, len(p.KeyHighlights))
	for _, h := range p.KeyHighlights {
		out = append(out, h.Text)
	}
	return out
}

type Certification struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
}

// ResumeData is the composite, read-only view of a resume document.
type ResumeData struct {
	PersonalInfo   PersonalInfo    `json:"personalInfo"`
	Education      []Education     `json:"education"`
	Experience     []Experience    `json:"experience"`
	Skills         []string        `json:"skills"`
	Projects       []Project       `json:"projects"`
	Certifications []Certification `json:"certifications"`
}

// Clone returns a deep copy so callers never alias document state.
func (d ResumeData) Clone() ResumeData {
	out := ResumeData{
		PersonalInfo:   d.PersonalInfo,
		Education:      append([]Education{}, d.Education...),
		Experience:     append([]Experience{}, d.Experience...),
		Skills:         append([]string{}, d.Skills...),
		Projects:       make([]Project, len(d.Projects)),
		Certifications: append([]Certification{}, d.Certifications...),
	}
	for i, p := range d.Projects {
		p.KeyHighlights = append([]KeyHighlight{}, p.KeyHighlights...)
		out.Projects[i] = p
	}
	return out
}
