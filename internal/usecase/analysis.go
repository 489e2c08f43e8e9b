package usecase

import (
	"math"
	"strings"

	"resume-builder/internal/model"
)

// Analysis summarizes how complete a resume is.
type Analysis struct {
	Score       int      `json:"score"`
	Suggestions []string `json:"suggestions"`
}

const (
	SuggestSummary    = "Add a professional summary to make a strong first impression"
	SuggestExperience = "Add work experience to showcase your professional background"
	SuggestSkills     = "Add more skills to highlight your technical abilities"
	SuggestProjects   = "Include projects to demonstrate practical experience"
	SuggestLinkedIn   = "Add LinkedIn profile to improve professional networking"

	minSkills = 5
)

// Analyze scores the document over three contact fields and the five list
// sections, and lists the most useful additions.
func Analyze(data model.ResumeData) Analysis {
	checks := []bool{
		notBlank(data.PersonalInfo.FullName),
		notBlank(data.PersonalInfo.Email),
		notBlank(data.PersonalInfo.Phone),
		len(data.Education) > 0,
		len(data.Experience) > 0,
		len(data.Skills) > 0,
		len(data.Projects) > 0,
		len(data.Certifications) > 0,
	}
	completed := 0
	for _, ok := range checks {
		if ok {
			completed++
		}
	}

	suggestions := []string{}
	if !notBlank(data.PersonalInfo.Summary) {
		suggestions = append(suggestions, SuggestSummary)
	}
	if len(data.Experience) == 0 {
		suggestions = append(suggestions, SuggestExperience)
	}
	if len(data.Skills) < minSkills {
		suggestions = append(suggestions, SuggestSkills)
	}
	if len(data.Projects) == 0 {
		suggestions = append(suggestions, SuggestProjects)
	}
	if !notBlank(data.PersonalInfo.LinkedIn) {
		suggestions = append(suggestions, SuggestLinkedIn)
	}

	return Analysis{
		Score:       int(math.Round(100 * float64(completed) / float64(len(checks)))),
		Suggestions: suggestions,
	}
}

func notBlank(s string) bool { return strings.TrimSpace(s) != "" }
