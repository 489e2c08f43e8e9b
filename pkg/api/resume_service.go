package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"resume-builder/internal/domain"
	"resume-builder/internal/model"
)

// ResumeService calls the /resume endpoints.
type ResumeService struct {
	c *Client
}

// Create saves a finished resume. The payload is checked against the save
// schema before it is sent.
func (s *ResumeService) Create(ctx context.Context, payload model.SavePayload) (*domain.SavedResume, error) {
	if err := model.ValidateSavePayload(payload); err != nil {
		return nil, fmt.Errorf("api: create resume: %w", err)
	}
	var out domain.SavedResume
	if err := s.c.do(ctx, http.MethodPost, "/resume/create", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns the signed-in user's resumes.
func (s *ResumeService) List(ctx context.Context) ([]domain.SavedResume, error) {
	out := []domain.SavedResume{}
	if err := s.c.do(ctx, http.MethodGet, "/resume/get-resumeOfUser", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ResumeService) Delete(ctx context.Context, id string) error {
	return s.c.do(ctx, http.MethodDelete, "/resume/"+url.PathEscape(id), nil, nil)
}

// Get fetches one of the signed-in user's resumes.
func (s *ResumeService) Get(ctx context.Context, id string) (*domain.SavedResume, error) {
	return s.get(ctx, "/resume/get-resume/"+url.PathEscape(id))
}

// GetPublic fetches a resume shared publicly; no session is needed.
func (s *ResumeService) GetPublic(ctx context.Context, id string) (*domain.SavedResume, error) {
	return s.get(ctx, "/resume/public/"+url.PathEscape(id))
}

func (s *ResumeService) get(ctx context.Context, path string) (*domain.SavedResume, error) {
	var out domain.SavedResume
	if err := s.c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
