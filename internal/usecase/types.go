package usecase

import (
	"context"

	"resume-builder/internal/domain"
	"resume-builder/internal/export"
	"resume-builder/internal/model"
)

// Exporter turns a document snapshot into a PDF artifact.
type Exporter interface {
	Export(ctx context.Context, req export.Request) (*export.Artifact, error)
}

// ResumeService is the remote store for finished resumes.
type ResumeService interface {
	Create(ctx context.Context, payload model.SavePayload) (*domain.SavedResume, error)
	List(ctx context.Context) ([]domain.SavedResume, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.SavedResume, error)
	GetPublic(ctx context.Context, id string) (*domain.SavedResume, error)
}

// AuthService manages the cookie session with the remote service.
type AuthService interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
	Login(ctx context.Context, creds domain.Credentials) (*domain.User, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.User, error)
	Logout(ctx context.Context) error
}
