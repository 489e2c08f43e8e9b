package http

import (
	"bytes"
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"resume-builder/internal/domain"
	"resume-builder/internal/export"
	"resume-builder/internal/model"
	"resume-builder/internal/templates"
	"resume-builder/internal/usecase"
)

const localsBuilder = "builder"

type Handler struct {
	sessions *usecase.Sessions
	cookie   string
	logger   *slog.Logger
}

func NewHandler(s *usecase.Sessions, cookieName string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{sessions: s, cookie: cookieName, logger: logger}
}

// Routes mounts every route on r.
func (h *Handler) Routes(r fiber.Router) {
	r.Get("/health/live", h.Live)
	r.Get("/templates", h.Templates)

	b := r.Group("/builder", h.session)
	b.Get("/resume", h.GetResume)
	b.Put("/personal-info", h.SetPersonalInfo)
	b.Put("/template", h.SetTemplate)
	b.Post("/education", h.AddEducation)
	b.Delete("/education/:id", h.RemoveEducation)
	b.Post("/experience", h.AddExperience)
	b.Delete("/experience/:id", h.RemoveExperience)
	b.Post("/certifications", h.AddCertification)
	b.Delete("/certifications/:id", h.RemoveCertification)
	b.Post("/projects", h.AddProject)
	b.Delete("/projects/:id", h.RemoveProject)
	b.Post("/skills", h.AddSkill)
	b.Delete("/skills/:name", h.RemoveSkill)
	b.Post("/highlights", h.StageHighlight)
	b.Delete("/highlights/:id", h.UnstageHighlight)
	b.Delete("/", h.ClearAll)
	b.Get("/preview", h.Preview)
	b.Post("/export", h.Export)
	b.Post("/finalize", h.Finalize)
	b.Get("/saved", h.ListSaved)
	b.Delete("/saved/:id", h.DeleteSaved)

	p := r.Group("/public", h.session)
	p.Get("/resume/:id", h.ViewPublic)
	p.Get("/resume/:id/pdf", h.ExportPublic)

	a := r.Group("/auth", h.session)
	a.Post("/login", h.Login)
	a.Post("/register", h.SignUp)
	a.Post("/logout", h.Logout)
	a.Get("/me", h.Me)
}

func (h *Handler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

type templateInfo struct {
	ID          model.TemplateID `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
}

func (h *Handler) Templates(c *fiber.Ctx) error {
	out := []templateInfo{}
	for _, t := range templates.All() {
		out = append(out, templateInfo{ID: t.ID(), Name: t.Name(), Description: t.Description()})
	}
	return c.JSON(out)
}

func builderOf(c *fiber.Ctx) *usecase.Builder {
	return c.Locals(localsBuilder).(*usecase.Builder)
}

type resumeView struct {
	Data     model.ResumeData     `json:"data"`
	Template model.TemplateID     `json:"template"`
	Analysis usecase.Analysis     `json:"analysis"`
	Staged   []model.KeyHighlight `json:"stagedHighlights"`
}

func viewOf(b *usecase.Builder) resumeView {
	doc := b.Document()
	return resumeView{
		Data:     doc.ResumeData(),
		Template: doc.Template(),
		Analysis: b.Analysis(),
		Staged:   doc.StagedHighlights(),
	}
}

func (h *Handler) GetResume(c *fiber.Ctx) error {
	return c.JSON(viewOf(builderOf(c)))
}

// bind parses the body into v and runs its form validation.
func bind[T interface{ Validate() error }](c *fiber.Ctx, v *T) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	if err := (*v).Validate(); err != nil {
		return validationError(err)
	}
	return nil
}

func (h *Handler) SetPersonalInfo(c *fiber.Ctx) error {
	var in model.PersonalInfo
	if err := bind(c, &in); err != nil {
		return err
	}
	builderOf(c).Document().SetPersonalInfo(in)
	return c.JSON(viewOf(builderOf(c)))
}

func (h *Handler) SetTemplate(c *fiber.Ctx) error {
	var in struct {
		Template string `json:"template"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	return c.JSON(fiber.Map{"template": builderOf(c).Document().SetTemplate(in.Template)})
}

func (h *Handler) AddEducation(c *fiber.Ctx) error {
	var in model.Education
	if err := bind(c, &in); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(builderOf(c).Document().AddEducation(in))
}

func (h *Handler) AddExperience(c *fiber.Ctx) error {
	var in model.Experience
	if err := bind(c, &in); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(builderOf(c).Document().AddExperience(in))
}

func (h *Handler) AddCertification(c *fiber.Ctx) error {
	var in model.Certification
	if err := bind(c, &in); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(builderOf(c).Document().AddCertification(in))
}

func (h *Handler) AddProject(c *fiber.Ctx) error {
	var in model.Project
	if err := bind(c, &in); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(builderOf(c).Document().AddProject(in))
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// remove runs fn with the path id. Unknown ids are not an error.
func remove(fn func(*usecase.Document, int64)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		fn(builderOf(c).Document(), id)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func (h *Handler) RemoveEducation(c *fiber.Ctx) error {
	return remove((*usecase.Document).RemoveEducation)(c)
}

func (h *Handler) RemoveExperience(c *fiber.Ctx) error {
	return remove((*usecase.Document).RemoveExperience)(c)
}

func (h *Handler) RemoveCertification(c *fiber.Ctx) error {
	return remove((*usecase.Document).RemoveCertification)(c)
}

func (h *Handler) RemoveProject(c *fiber.Ctx) error {
	return remove((*usecase.Document).RemoveProject)(c)
}

func (h *Handler) UnstageHighlight(c *fiber.Ctx) error {
	return remove((*usecase.Document).UnstageHighlight)(c)
}

func (h *Handler) AddSkill(c *fiber.Ctx) error {
	var in struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	doc := builderOf(c).Document()
	added := doc.AddSkill(in.Name)
	return c.JSON(fiber.Map{"added": added, "skills": doc.ResumeData().Skills})
}

func (h *Handler) RemoveSkill(c *fiber.Ctx) error {
	name, err := urlParam(c, "name")
	if err != nil {
		return err
	}
	builderOf(c).Document().RemoveSkill(name)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) StageHighlight(c *fiber.Ctx) error {
	var in struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	hl, ok := builderOf(c).Document().StageHighlight(in.Text)
	if !ok {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Highlight text is required")
	}
	return c.Status(fiber.StatusCreated).JSON(hl)
}

func (h *Handler) ClearAll(c *fiber.Ctx) error {
	builderOf(c).Document().ClearAll()
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) Preview(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := builderOf(c).Preview(&buf, c.Query("template")); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

type exportReq struct {
	Title string `json:"title"`
	Mode  string `json:"mode"`
}

func (h *Handler) Export(c *fiber.Ctx) error {
	var in exportReq
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	art, err := builderOf(c).Export(c.UserContext(), in.Title, export.ParseMode(in.Mode))
	if err != nil {
		return exportError(err)
	}
	return sendPDF(c, art)
}

func sendPDF(c *fiber.Ctx, art *export.Artifact) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Attachment(art.FileName)
	return c.Send(art.PDF)
}

type finalizeReq struct {
	Title    string `json:"title"`
	IsPublic bool   `json:"isPublic"`
}

type finalizeResp struct {
	Saved    *domain.SavedResume `json:"saved"`
	ShareURL string              `json:"shareUrl,omitempty"`
	FileName string              `json:"fileName,omitempty"`
	PDF      []byte              `json:"pdf,omitempty"`
	Error    string              `json:"error,omitempty"`
}

func (h *Handler) Finalize(c *fiber.Ctx) error {
	var in finalizeReq
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	res, err := builderOf(c).Finalize(c.UserContext(), in.Title, in.IsPublic)
	switch {
	case errors.Is(err, usecase.ErrSave):
		return remoteError(err, "Failed to save resume")
	case err != nil:
		// saved remotely, export failed; the draft is kept
		h.logger.Error("finalize export failed", slog.String("error", err.Error()))
		fe := exportError(err)
		return c.Status(fe.Code).JSON(finalizeResp{Saved: res.Saved, ShareURL: res.ShareURL, Error: fe.Message})
	}
	return c.Status(fiber.StatusCreated).JSON(finalizeResp{
		Saved:    res.Saved,
		ShareURL: res.ShareURL,
		FileName: res.Artifact.FileName,
		PDF:      res.Artifact.PDF,
	})
}

func (h *Handler) ListSaved(c *fiber.Ctx) error {
	list, err := builderOf(c).SavedResumes(c.UserContext())
	if err != nil {
		return remoteError(err, "Failed to load resumes")
	}
	return c.JSON(list)
}

func (h *Handler) DeleteSaved(c *fiber.Ctx) error {
	id, err := urlParam(c, "id")
	if err != nil {
		return err
	}
	if err := builderOf(c).DeleteSaved(c.UserContext(), id); err != nil {
		return remoteError(err, "Failed to delete resume")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) loadSaved(c *fiber.Ctx) (*domain.SavedResume, error) {
	id, err := urlParam(c, "id")
	if err != nil {
		return nil, err
	}
	r, _, err := builderOf(c).ViewSaved(c.UserContext(), id)
	if err != nil {
		return nil, remoteError(err, "Resume not found or is not public")
	}
	return r, nil
}

func (h *Handler) ViewPublic(c *fiber.Ctx) error {
	r, err := h.loadSaved(c)
	if err != nil {
		return err
	}
	tpl := r.Template
	if q := c.Query("template"); q != "" {
		tpl = model.ParseTemplateID(q)
	}
	var buf bytes.Buffer
	if err := templates.Lookup(tpl).Render(&buf, r.Data()); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *Handler) ExportPublic(c *fiber.Ctx) error {
	r, err := h.loadSaved(c)
	if err != nil {
		return err
	}
	art, err := builderOf(c).ExportSaved(c.UserContext(), r, export.ParseMode(c.Query("mode")))
	if err != nil {
		return exportError(err)
	}
	return sendPDF(c, art)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var in domain.Credentials
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	u, err := builderOf(c).Login(c.UserContext(), in)
	if err != nil {
		return remoteError(err, "Login failed")
	}
	return c.JSON(u)
}

// SignUp creates an account on the resume service.
func (h *Handler) SignUp(c *fiber.Ctx) error {
	var in domain.Registration
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	u, err := builderOf(c).Register(c.UserContext(), in)
	if err != nil {
		return remoteError(err, "Registration failed")
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := builderOf(c).Logout(c.UserContext()); err != nil {
		return remoteError(err, "Logout failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) Me(c *fiber.Ctx) error {
	u, err := builderOf(c).CurrentUser(c.UserContext())
	if err != nil {
		return remoteError(err, "Not authenticated")
	}
	return c.JSON(u)
}
