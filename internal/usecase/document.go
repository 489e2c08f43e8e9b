package usecase

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"resume-builder/internal/draft"
	"resume-builder/internal/model"
)

// Document is the single source of truth for one editing session. Every
// mutator commits in memory, recomputes the composite view and then writes
// exactly one draft slot, all under the same lock, so slot writes for a
// field always carry its latest committed value.
type Document struct {
	mu     sync.RWMutex
	store  *draft.Store
	ids    *IDSource
	logger *slog.Logger

	personalInfo   model.PersonalInfo
	education      []model.Education
	experience     []model.Experience
	skills         []string
	projects       []model.Project
	certifications []model.Certification
	template       model.TemplateID

	// highlights staged for the next AddProject
	staged []model.KeyHighlight

	view model.ResumeData
}

// NewDocument builds a document hydrated from store. Missing or corrupt
// slots fall back to their defaults.
func NewDocument(store *draft.Store, ids *IDSource, logger *slog.Logger) *Document {
	if ids == nil {
		ids = DefaultIDs
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &Document{store: store, ids: ids, logger: logger}
	d.mu.Lock()
	d.hydrate()
	d.mu.Unlock()
	return d
}

// Rehydrate reloads every field from the draft store, discarding the
// in-memory state. Staged highlights are kept.
func (d *Document) Rehydrate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hydrate()
}

func (d *Document) hydrate() {
	d.personalInfo = draft.Load(d.store, draft.KeyPersonalInfo, model.PersonalInfo{})
	d.education = draft.Load(d.store, draft.KeyEducation, []model.Education{})
	d.experience = draft.Load(d.store, draft.KeyExperience, []model.Experience{})
	d.skills = dedupeSkills(draft.Load(d.store, draft.KeySkills, []string{}))
	d.projects = draft.Load(d.store, draft.KeyProjects, []model.Project{})
	d.certifications = draft.Load(d.store, draft.KeyCertifications, []model.Certification{})
	d.template = model.ParseTemplateID(draft.Load(d.store, draft.KeyTemplate, string(model.DefaultTemplate)))

	for _, e := range d.education {
		d.ids.Observe(e.ID)
	}
	for _, e := range d.experience {
		d.ids.Observe(e.ID)
	}
	for _, p := range d.projects {
		d.ids.Observe(p.ID)
		for _, h := range p.KeyHighlights {
			d.ids.Observe(h.ID)
		}
	}
	for _, c := range d.certifications {
		d.ids.Observe(c.ID)
	}
	d.recompute()
}

func dedupeSkills(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// recompute rebuilds the composite view. Callers hold d.mu.
func (d *Document) recompute() {
	d.view = model.ResumeData{
		PersonalInfo:   d.personalInfo,
		Education:      d.education,
		Experience:     d.experience,
		Skills:         d.skills,
		Projects:       d.projects,
		Certifications: d.certifications,
	}.Clone()
}

// ResumeData returns a copy of the composite view.
func (d *Document) ResumeData() model.ResumeData {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.view.Clone()
}

// Template returns the selected template.
func (d *Document) Template() model.TemplateID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.template
}

// SetPersonalInfo replaces the personal info block.
func (d *Document) SetPersonalInfo(p model.PersonalInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.personalInfo = p
	d.recompute()
	d.store.Save(draft.KeyPersonalInfo, d.personalInfo)
}

// SetTemplate selects a template; unknown identifiers select the default.
func (d *Document) SetTemplate(id string) model.TemplateID {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.template = model.ParseTemplateID(id)
	d.store.Save(draft.KeyTemplate, d.template)
	return d.template
}

func (d *Document) AddEducation(e model.Education) model.Education {
	d.mu.Lock()
	defer d.mu.Unlock()
	e.ID = d.ids.Next()
	d.education = append(slices.Clip(d.education), e)
	d.recompute()
	d.store.Save(draft.KeyEducation, d.education)
	return e
}

func (d *Document) RemoveEducation(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.education = slices.DeleteFunc(slices.Clone(d.education), func(e model.Education) bool { return e.ID == id })
	d.recompute()
	d.store.Save(draft.KeyEducation, d.education)
}

func (d *Document) AddExperience(e model.Experience) model.Experience {
	d.mu.Lock()
	defer d.mu.Unlock()
	e.ID = d.ids.Next()
	d.experience = append(slices.Clip(d.experience), e)
	d.recompute()
	d.store.Save(draft.KeyExperience, d.experience)
	return e
}

func (d *Document) RemoveExperience(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.experience = slices.DeleteFunc(slices.Clone(d.experience), func(e model.Experience) bool { return e.ID == id })
	d.recompute()
	d.store.Save(draft.KeyExperience, d.experience)
}

func (d *Document) AddCertification(c model.Certification) model.Certification {
	d.mu.Lock()
	defer d.mu.Unlock()
	c.ID = d.ids.Next()
	d.certifications = append(slices.Clip(d.certifications), c)
	d.recompute()
	d.store.Save(draft.KeyCertifications, d.certifications)
	return c
}

func (d *Document) RemoveCertification(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.certifications = slices.DeleteFunc(slices.Clone(d.certifications), func(c model.Certification) bool { return c.ID == id })
	d.recompute()
	d.store.Save(draft.KeyCertifications, d.certifications)
}

// AddSkill appends name unless it is blank or already present. It reports
// whether the skill list changed.
func (d *Document) AddSkill(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if slices.Contains(d.skills, name) {
		return false
	}
	d.skills = append(slices.Clip(d.skills), name)
	d.recompute()
	d.store.Save(draft.KeySkills, d.skills)
	return true
}

// RemoveSkill removes name and reports whether it was present.
func (d *Document) RemoveSkill(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := slices.Index(d.skills, name)
	if i < 0 {
		return false
	}
	d.skills = slices.Delete(slices.Clone(d.skills), i, i+1)
	d.recompute()
	d.store.Save(draft.KeySkills, d.skills)
	return true
}

// StageHighlight queues a highlight for the next project. Blank text is
// ignored.
func (d *Document) StageHighlight(text string) (model.KeyHighlight, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.KeyHighlight{}, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	h := model.KeyHighlight{ID: d.ids.Next(), Text: text}
	d.staged = append(d.staged, h)
	return h, true
}

func (d *Document) UnstageHighlight(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.staged = slices.DeleteFunc(d.staged, func(h model.KeyHighlight) bool { return h.ID == id })
}

// StagedHighlights returns the highlights waiting for the next project.
func (d *Document) StagedHighlights() []model.KeyHighlight {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.KeyHighlight{}, d.staged...)
}

// AddProject appends p with the staged highlights as its key highlights and
// empties the staging list. Highlights already on p are replaced.
func (d *Document) AddProject(p model.Project) model.Project {
	d.mu.Lock()
	defer d.mu.Unlock()
	p.ID = d.ids.Next()
	p.KeyHighlights = append([]model.KeyHighlight{}, d.staged...)
	d.staged = nil
	d.projects = append(slices.Clip(d.projects), p)
	d.recompute()
	d.store.Save(draft.KeyProjects, d.projects)
	return p
}

func (d *Document) RemoveProject(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.projects = slices.DeleteFunc(slices.Clone(d.projects), func(p model.Project) bool { return p.ID == id })
	d.recompute()
	d.store.Save(draft.KeyProjects, d.projects)
}

// ClearAll resets every field to its default and erases all draft slots.
func (d *Document) ClearAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.personalInfo = model.PersonalInfo{}
	d.education = []model.Education{}
	d.experience = []model.Experience{}
	d.skills = []string{}
	d.projects = []model.Project{}
	d.certifications = []model.Certification{}
	d.template = model.DefaultTemplate
	d.staged = nil
	d.recompute()
	d.store.Clear(draft.Keys...)
	d.logger.Info("document cleared")
}
