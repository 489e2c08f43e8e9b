package model

// DefaultTheme is sent with every save; the service only knows this one.
const DefaultTheme = "professional"

// SavedProject is a project as the resume service stores it: highlights
// travel as plain strings.
type SavedProject struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Technologies  string   `json:"technologies"`
	Link          string   `json:"link"`
	GithubLink    string   `json:"githubLink"`
	KeyHighlights []string `json:"keyHighlights"`
}

// SavePayload is the body of POST /resume/create.
type SavePayload struct {
	Title          string          `json:"title"`
	Template       TemplateID      `json:"template"`
	PersonalInfo   PersonalInfo    `json:"personalInfo"`
	Education      []Education     `json:"education"`
	Experience     []Experience    `json:"experience"`
	Skills         []string        `json:"skills"`
	Projects       []SavedProject  `json:"projects"`
	Certifications []Certification `json:"certifications"`
	IsPublic       bool            `json:"isPublic"`
	Theme          string          `json:"theme"`
}

// NewSavePayload flattens a document snapshot into the shape the resume
// service accepts.
func NewSavePayload(data ResumeData, tpl TemplateID, title string, isPublic bool) SavePayload {
	data = data.Clone()
	projects := make([]SavedProject, 0, len(data.Projects))
	for _, p := range data.Projects {
		projects = append(projects, SavedProject{
			ID:            p.ID,
			Title:         p.Title,
			Description:   p.Description,
			Technologies:  p.Technologies,
			Link:          p.Link,
			GithubLink:    p.GithubLink,
			KeyHighlights: p.HighlightTexts(),
		})
	}
	return SavePayload{
		Title:          title,
		Template:       tpl,
		PersonalInfo:   data.PersonalInfo,
		Education:      data.Education,
		Experience:     data.Experience,
		Skills:         data.Skills,
		Projects:       projects,
		Certifications: data.Certifications,
		IsPublic:       isPublic,
		Theme:          DefaultTheme,
	}
}
