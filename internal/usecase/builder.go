package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"resume-builder/internal/domain"
	"resume-builder/internal/export"
	"resume-builder/internal/model"
	"resume-builder/internal/templates"
)

// ErrSave wraps a failed remote save during Finalize.
var ErrSave = errors.New("save failed")

// Builder is one editing session: the document plus the collaborators that
// preview, export and publish it.
type Builder struct {
	doc        *Document
	exporter   Exporter
	resumes    ResumeService
	auth       AuthService
	publicBase string
	logger     *slog.Logger
}

type BuilderConfig struct {
	Exporter Exporter
	Resumes  ResumeService
	Auth     AuthService
	// PublicBase prefixes share links: <PublicBase>/resume/<id>.
	PublicBase string
	Logger     *slog.Logger
}

func NewBuilder(doc *Document, cfg BuilderConfig) *Builder {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Builder{
		doc:        doc,
		exporter:   cfg.Exporter,
		resumes:    cfg.Resumes,
		auth:       cfg.Auth,
		publicBase: strings.TrimRight(cfg.PublicBase, "/"),
		logger:     cfg.Logger,
	}
}

func (b *Builder) Document() *Document { return b.doc }

// Analysis scores the current document.
func (b *Builder) Analysis() Analysis { return Analyze(b.doc.ResumeData()) }

// Preview renders the document with tpl, or with the document's own
// template when tpl is empty.
func (b *Builder) Preview(w io.Writer, tpl string) error {
	id := b.doc.Template()
	if tpl != "" {
		id = model.ParseTemplateID(tpl)
	}
	return templates.Lookup(id).Render(w, b.doc.ResumeData())
}

// Export produces a PDF of the current document.
func (b *Builder) Export(ctx context.Context, title string, mode export.Mode) (*export.Artifact, error) {
	return b.exporter.Export(ctx, export.Request{
		Title:    title,
		Template: b.doc.Template(),
		Data:     b.doc.ResumeData(),
		Mode:     mode,
	})
}

// FinalizeResult is the outcome of a save followed by an export.
type FinalizeResult struct {
	Saved    *domain.SavedResume `json:"saved"`
	ShareURL string              `json:"shareUrl,omitempty"`
	Artifact *export.Artifact    `json:"-"`
}

// Finalize saves the document remotely, exports it and, when both succeed,
// clears the local draft. A failed save leaves the document untouched. A
// failed export after a successful save returns the saved resume together
// with the error, and keeps the draft.
func (b *Builder) Finalize(ctx context.Context, title string, isPublic bool) (*FinalizeResult, error) {
	data := b.doc.ResumeData()
	tpl := b.doc.Template()

	saved, err := b.resumes.Create(ctx, model.NewSavePayload(data, tpl, title, isPublic))
	if err != nil {
		b.logger.Warn("finalize: save failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrSave, err)
	}
	res := &FinalizeResult{Saved: saved}
	if isPublic && saved.Key() != "" {
		res.ShareURL = b.ShareURL(saved.Key())
	}

	art, err := b.exporter.Export(ctx, export.Request{Title: title, Template: tpl, Data: data, Mode: export.ModeRaster})
	if err != nil {
		return res, err
	}
	res.Artifact = art
	b.doc.ClearAll()
	b.logger.Info("finalize complete", slog.String("resume", saved.Key()), slog.String("file", art.FileName))
	return res, nil
}

// ShareURL is the public link for a saved resume.
func (b *Builder) ShareURL(id string) string {
	return b.publicBase + "/resume/" + id
}

func (b *Builder) SavedResumes(ctx context.Context) ([]domain.SavedResume, error) {
	return b.resumes.List(ctx)
}

func (b *Builder) DeleteSaved(ctx context.Context, id string) error {
	return b.resumes.Delete(ctx, id)
}

// ViewSaved loads a saved resume, trying the public endpoint first and the
// owner endpoint second. It reports whether the public copy was used.
func (b *Builder) ViewSaved(ctx context.Context, id string) (*domain.SavedResume, bool, error) {
	r, err := b.resumes.GetPublic(ctx, id)
	if err == nil {
		return r, true, nil
	}
	b.logger.Debug("public fetch failed, trying owner access", slog.String("id", id), slog.String("error", err.Error()))
	r, ownerErr := b.resumes.Get(ctx, id)
	if ownerErr != nil {
		return nil, false, ownerErr
	}
	return r, false, nil
}

// ExportSaved exports a saved resume with its own template.
func (b *Builder) ExportSaved(ctx context.Context, r *domain.SavedResume, mode export.Mode) (*export.Artifact, error) {
	return b.exporter.Export(ctx, export.Request{
		Title:    r.Title,
		Template: model.ParseTemplateID(string(r.Template)),
		Data:     r.Data(),
		Mode:     mode,
	})
}

func (b *Builder) CurrentUser(ctx context.Context) (*domain.User, error) {
	return b.auth.CurrentUser(ctx)
}

func (b *Builder) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	return b.auth.Login(ctx, creds)
}

func (b *Builder) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	return b.auth.Register(ctx, reg)
}

func (b *Builder) Logout(ctx context.Context) error {
	return b.auth.Logout(ctx)
}
