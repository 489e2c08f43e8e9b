package usecase

import (
	"slices"
	"testing"

	"resume-builder/internal/model"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name      string
		data      model.ResumeData
		score     int
		suggested []string
		omitted   []string
	}{
		{
			name:      "empty",
			score:     0,
			suggested: []string{SuggestSummary, SuggestExperience, SuggestSkills, SuggestProjects, SuggestLinkedIn},
		},
		{
			name: "contact only",
			data: model.ResumeData{PersonalInfo: model.PersonalInfo{FullName: "Ada", Email: "a@b.c", Phone: "1"}},
			// 3 of 8
			score: 38,
		},
		{
			name: "complete",
			data: model.ResumeData{
				PersonalInfo:   model.PersonalInfo{FullName: "Ada", Email: "a@b.c", Phone: "1", Summary: "s", LinkedIn: "in/ada"},
				Education:      []model.Education{{ID: 1}},
				Experience:     []model.Experience{{ID: 2}},
				Skills:         []string{"a", "b", "c", "d", "e"},
				Projects:       []model.Project{{ID: 3}},
				Certifications: []model.Certification{{ID: 4}},
			},
			score:   100,
			omitted: []string{SuggestSummary, SuggestExperience, SuggestSkills, SuggestProjects, SuggestLinkedIn},
		},
		{
			name:      "few skills",
			data:      model.ResumeData{Skills: []string{"Go", "SQL"}},
			score:     13,
			suggested: []string{SuggestSkills},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.data)
			if got.Score != tt.score {
				t.Errorf("score = %d, want %d", got.Score, tt.score)
			}
			for _, s := range tt.suggested {
				if !slices.Contains(got.Suggestions, s) {
					t.Errorf("missing suggestion %q", s)
				}
			}
			for _, s := range tt.omitted {
				if slices.Contains(got.Suggestions, s) {
					t.Errorf("unexpected suggestion %q", s)
				}
			}
		})
	}
}
