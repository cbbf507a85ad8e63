// Package types provides type definitions for structured data used throughout the resume-editor system.
package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-editor/internal/sections"
)

// ScoreLabel is the band an ATS score falls into.
type ScoreLabel string

// Score bands, lowest first.
const (
	LabelNeedsImprovement ScoreLabel = "Needs Improvement"
	LabelModerateMatch    ScoreLabel = "Moderate Match"
	LabelStrongMatch      ScoreLabel = "Strong Match"
	LabelExcellentMatch   ScoreLabel = "Excellent Match"
)

// Valid reports whether l is one of the four bands.
func (l ScoreLabel) Valid() bool {
	switch l {
	case LabelNeedsImprovement, LabelModerateMatch, LabelStrongMatch, LabelExcellentMatch:
		return true
	}
	return false
}

// LabelForScore maps a 0-100 score to its band: 0-40, 41-60, 61-80, 81-100.
func LabelForScore(score int) ScoreLabel {
	switch {
	case score <= 40:
		return LabelNeedsImprovement
	case score <= 60:
		return LabelModerateMatch
	case score <= 80:
		return LabelStrongMatch
	default:
		return LabelExcellentMatch
	}
}

// AnalysisResult is the record returned by the external analysis model. Only Suggestions and
// Improvements feed the editor; everything else is passed through for display.
type AnalysisResult struct {
	RoleDetected    *string                `json:"role_detected"`
	ExperienceLevel *string                `json:"experience_level"`
	ATSScore        int                    `json:"ats_score" validate:"min=0,max=100"`
	ScoreLabel      ScoreLabel             `json:"score_label" validate:"score_label"`
	Explanation     *string                `json:"explanation"`
	MissingSkills   map[string][]string    `json:"missing_skills"`
	Suggestions     []string               `json:"suggestions"`
	Improvements    []sections.Improvement `json:"improvements" validate:"dive"`
	SkillRoadmap    []string               `json:"skill_roadmap"`
	PredictedScore  *int                   `json:"predicted_score" validate:"omitempty,min=0,max=100"`
}

// Validate validates the AnalysisResult using the validator.
func (r *AnalysisResult) Validate() error {
	return newValidator().Struct(r)
}

// Normalize repairs the fields a model commonly gets wrong: scores are clamped to 0-100, a
// missing or unknown label is derived from the score, empty skill categories are dropped and
// nil lists become empty.
func (r *AnalysisResult) Normalize() {
	r.ATSScore = clampScore(r.ATSScore)
	if r.PredictedScore != nil {
		p := clampScore(*r.PredictedScore)
		r.PredictedScore = &p
	}
	if !r.ScoreLabel.Valid() {
		r.ScoreLabel = LabelForScore(r.ATSScore)
	}

	skills := make(map[string][]string, len(r.MissingSkills))
	for category, names := range r.MissingSkills {
		kept := make([]string, 0, len(names))
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				kept = append(kept, n)
			}
		}
		if strings.TrimSpace(category) != "" && len(kept) > 0 {
			skills[category] = kept
		}
	}
	r.MissingSkills = skills

	if r.Suggestions == nil {
		r.Suggestions = []string{}
	}
	if r.Improvements == nil {
		r.Improvements = []sections.Improvement{}
	}
	if r.SkillRoadmap == nil {
		r.SkillRoadmap = []string{}
	}
}

// FallbackResult is returned when the model's answer cannot be decoded.
func FallbackResult() *AnalysisResult {
	unknown := "Unknown"
	explanation := "We had trouble analyzing your resume. Please try again."
	return &AnalysisResult{
		RoleDetected:    &unknown,
		ExperienceLevel: &unknown,
		ATSScore:        0,
		ScoreLabel:      LabelNeedsImprovement,
		Explanation:     &explanation,
		MissingSkills:   map[string][]string{},
		Suggestions:     []string{"Please try uploading your resume again."},
		Improvements:    []sections.Improvement{},
		SkillRoadmap:    []string{},
	}
}

func clampScore(s int) int {
	return min(max(s, 0), 100)
}

// newValidator returns a validator with the domain-specific tags registered.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("score_label", func(fl validator.FieldLevel) bool {
		return ScoreLabel(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("input_mode", func(fl validator.FieldLevel) bool {
		return InputMode(fl.Field().String()).Valid()
	})
	return v
}
