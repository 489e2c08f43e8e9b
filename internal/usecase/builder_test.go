package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"resume-builder/internal/domain"
	"resume-builder/internal/draft"
	"resume-builder/internal/export"
	"resume-builder/internal/model"
)

type fakeExporter struct {
	mu   sync.Mutex
	err  error
	reqs []export.Request
}

func (f *fakeExporter) Export(ctx context.Context, req export.Request) (*export.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &export.Artifact{FileName: export.FileName(req.Title, req.Template), PDF: []byte("%PDF-1.4"), Pages: 1}, nil
}

type fakeResumes struct {
	mu        sync.Mutex
	createErr error
	saved     map[string]*domain.SavedResume
	public    map[string]bool
	payloads  []model.SavePayload
}

func newFakeResumes() *fakeResumes {
	return &fakeResumes{saved: map[string]*domain.SavedResume{}, public: map[string]bool{}}
}

func (f *fakeResumes) Create(ctx context.Context, p model.SavePayload) (*domain.SavedResume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
	if f.createErr != nil {
		return nil, f.createErr
	}
	r := &domain.SavedResume{ID: uuid.NewString(), Title: p.Title, Template: p.Template, IsPublic: p.IsPublic, Theme: p.Theme, Skills: p.Skills}
	f.saved[r.ID] = r
	f.public[r.ID] = p.IsPublic
	return r, nil
}

func (f *fakeResumes) List(ctx context.Context) ([]domain.SavedResume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.SavedResume{}
	for _, r := range f.saved {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeResumes) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved, id)
	return nil
}

func (f *fakeResumes) Get(ctx context.Context, id string) (*domain.SavedResume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.saved[id]; ok {
		return r, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeResumes) GetPublic(ctx context.Context, id string) (*domain.SavedResume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.saved[id]; ok && f.public[id] {
		return r, nil
	}
	return nil, errors.New("not public")
}

func newTestBuilder(t *testing.T) (*Builder, *fakeExporter, *fakeResumes, *recordingBackend) {
	t.Helper()
	doc, rb := newTestDocument(t)
	ex := &fakeExporter{}
	rs := newFakeResumes()
	b := NewBuilder(doc, BuilderConfig{Exporter: ex, Resumes: rs, PublicBase: "https://resumes.example/", Logger: discardLogger()})
	return b, ex, rs, rb
}

func TestFinalizeSavesExportsAndClears(t *testing.T) {
	b, ex, rs, rb := newTestBuilder(t)
	b.Document().SetPersonalInfo(model.PersonalInfo{FullName: "Ada"})
	b.Document().AddSkill("Go")
	b.Document().StageHighlight("Fast")
	b.Document().AddProject(model.Project{Title: "P", Description: "d"})
	b.Document().SetTemplate("executive")

	res, err := b.Finalize(context.Background(), "Ada CV", true)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if res.Artifact == nil || res.Artifact.FileName != "Ada_CV_executive.pdf" {
		t.Errorf("artifact = %+v", res.Artifact)
	}
	if want := "https://resumes.example/resume/" + res.Saved.ID; res.ShareURL != want {
		t.Errorf("share url = %q, want %q", res.ShareURL, want)
	}

	p := rs.payloads[0]
	if p.Title != "Ada CV" || p.Template != model.TemplateExecutive || !p.IsPublic || p.Theme != model.DefaultTheme {
		t.Errorf("payload = %+v", p)
	}
	if len(p.Projects) != 1 || len(p.Projects[0].KeyHighlights) != 1 || p.Projects[0].KeyHighlights[0] != "Fast" {
		t.Errorf("projects = %+v", p.Projects)
	}
	if ex.reqs[0].Template != model.TemplateExecutive || ex.reqs[0].Data.PersonalInfo.FullName != "Ada" {
		t.Errorf("export request = %+v", ex.reqs[0])
	}

	if got := b.Document().ResumeData(); got.PersonalInfo.FullName != "" || len(got.Skills) != 0 {
		t.Errorf("document not cleared: %+v", got)
	}
	if _, err := rb.Get(draft.KeySkills); !errors.Is(err, draft.ErrNotFound) {
		t.Error("draft slots not cleared")
	}
}

func TestFinalizeFailedSaveKeepsDocument(t *testing.T) {
	b, ex, rs, _ := newTestBuilder(t)
	rs.createErr = errors.New("boom")
	b.Document().AddSkill("Go")

	res, err := b.Finalize(context.Background(), "CV", false)
	if !errors.Is(err, ErrSave) || res != nil {
		t.Fatalf("Finalize = %v, %v", res, err)
	}
	if len(ex.reqs) != 0 {
		t.Error("exported after a failed save")
	}
	if got := b.Document().ResumeData().Skills; len(got) != 1 {
		t.Errorf("skills = %v", got)
	}
}

func TestFinalizeFailedExportKeepsDraft(t *testing.T) {
	b, ex, _, _ := newTestBuilder(t)
	ex.err = export.ErrElementNotFound
	b.Document().AddSkill("Go")

	res, err := b.Finalize(context.Background(), "CV", false)
	if !errors.Is(err, export.ErrElementNotFound) {
		t.Fatalf("err = %v", err)
	}
	if res == nil || res.Saved == nil || res.ShareURL != "" {
		t.Errorf("result = %+v", res)
	}
	if got := b.Document().ResumeData().Skills; len(got) != 1 {
		t.Errorf("draft cleared after failed export: %v", got)
	}
}

func TestViewSavedFallsBackToOwner(t *testing.T) {
	b, _, rs, _ := newTestBuilder(t)
	ctx := context.Background()
	pub, _ := rs.Create(ctx, model.SavePayload{Title: "pub", IsPublic: true})
	priv, _ := rs.Create(ctx, model.SavePayload{Title: "priv"})

	r, public, err := b.ViewSaved(ctx, pub.ID)
	if err != nil || !public || r.Title != "pub" {
		t.Errorf("public view = %+v, %v, %v", r, public, err)
	}
	r, public, err = b.ViewSaved(ctx, priv.ID)
	if err != nil || public || r.Title != "priv" {
		t.Errorf("owner view = %+v, %v, %v", r, public, err)
	}
	if _, _, err := b.ViewSaved(ctx, "missing"); err == nil {
		t.Error("missing resume found")
	}
}

func TestPreviewUsesRequestedOrDocumentTemplate(t *testing.T) {
	b, _, _, _ := newTestBuilder(t)
	b.Document().SetTemplate("minimal")

	var sb strings.Builder
	if err := b.Preview(&sb, ""); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), "resume-minimal") {
		t.Error("preview ignored the document template")
	}
	sb.Reset()
	if err := b.Preview(&sb, "foo"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), "resume-modern") {
		t.Error("unknown template did not fall back to modern")
	}
}

func TestExportSavedUsesItsTemplate(t *testing.T) {
	b, ex, _, _ := newTestBuilder(t)
	r := &domain.SavedResume{Title: "Old CV", Template: "nope", Skills: []string{"Go"}}
	art, err := b.ExportSaved(context.Background(), r, export.ModeRaster)
	if err != nil {
		t.Fatal(err)
	}
	if art.FileName != "Old_CV_modern.pdf" || ex.reqs[0].Data.Skills[0] != "Go" {
		t.Errorf("artifact = %+v, request = %+v", art, ex.reqs[0])
	}
}
