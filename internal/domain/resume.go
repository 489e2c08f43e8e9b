package domain

import (
	"time"

	"resume-builder/internal/model"
)

// SavedResume is a resume stored by the remote resume service.
type SavedResume struct {
	ID             string                `json:"id"`
	LegacyID       string                `json:"_id,omitempty"`
	Title          string                `json:"title"`
	Template       model.TemplateID      `json:"template"`
	IsPublic       bool                  `json:"isPublic"`
	Theme          string                `json:"theme"`
	PersonalInfo   model.PersonalInfo    `json:"personalInfo"`
	Education      []model.Education     `json:"education"`
	Experience     []model.Experience    `json:"experience"`
	Skills         []string              `json:"skills"`
	Projects       []model.Project       `json:"projects"`
	Certifications []model.Certification `json:"certifications"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// Key returns the identifier the service addresses this resume by. Older
// deployments only send the Mongo-style _id.
func (r *SavedResume) Key() string {
	if r.ID != "" {
		return r.ID
	}
	return r.LegacyID
}

// Data returns the resume content as a composite document view.
func (r *SavedResume) Data() model.ResumeData {
	return model.ResumeData{
		PersonalInfo:   r.PersonalInfo,
		Education:      r.Education,
		Experience:     r.Experience,
		Skills:         r.Skills,
		Projects:       r.Projects,
		Certifications: r.Certifications,
	}.Clone()
}
