//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/jonathan/resume-editor/internal/sections"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelForScore(t *testing.T) {
	tests := []struct {
		score int
		want  ScoreLabel
	}{
		{0, LabelNeedsImprovement},
		{40, LabelNeedsImprovement},
		{41, LabelModerateMatch},
		{60, LabelModerateMatch},
		{61, LabelStrongMatch},
		{80, LabelStrongMatch},
		{81, LabelExcellentMatch},
		{100, LabelExcellentMatch},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LabelForScore(tt.score), "score %d", tt.score)
	}
}

func TestAnalysisResult_UnmarshalSchema(t *testing.T) {
	raw := `{
		"role_detected": "Backend Engineer",
		"experience_level": null,
		"ats_score": 72,
		"score_label": "Strong Match",
		"explanation": "Solid Go background.",
		"missing_skills": {"Tools": ["Docker"], "Concepts": []},
		"suggestions": ["Add Kubernetes"],
		"improvements": [{"before": "Built stuff", "after": "Built scalable microservices"}],
		"skill_roadmap": ["Learn Helm"],
		"predicted_score": 85
	}`

	var r AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(raw), &r))

	require.NotNil(t, r.RoleDetected)
	assert.Equal(t, "Backend Engineer", *r.RoleDetected)
	assert.Nil(t, r.ExperienceLevel)
	assert.Equal(t, 72, r.ATSScore)
	assert.Equal(t, LabelStrongMatch, r.ScoreLabel)
	assert.Equal(t, []sections.Improvement{{Before: "Built stuff", After: "Built scalable microservices"}}, r.Improvements)
	require.NotNil(t, r.PredictedScore)
	assert.Equal(t, 85, *r.PredictedScore)
	assert.NoError(t, r.Validate())
}

func TestAnalysisResult_Validate(t *testing.T) {
	over := 101
	tests := []struct {
		name    string
		result  AnalysisResult
		wantErr bool
	}{
		{"valid", AnalysisResult{ATSScore: 55, ScoreLabel: LabelModerateMatch}, false},
		{"score too high", AnalysisResult{ATSScore: 120, ScoreLabel: LabelExcellentMatch}, true},
		{"negative score", AnalysisResult{ATSScore: -1, ScoreLabel: LabelNeedsImprovement}, true},
		{"unknown label", AnalysisResult{ATSScore: 50, ScoreLabel: "Great"}, true},
		{"predicted out of range", AnalysisResult{ATSScore: 50, ScoreLabel: LabelModerateMatch, PredictedScore: &over}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.result.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAnalysisResult_Normalize(t *testing.T) {
	predicted := 140
	r := AnalysisResult{
		ATSScore:       -5,
		ScoreLabel:     "Needs Improvement (0-40)",
		MissingSkills:  map[string][]string{"Frontend": {"React", " "}, "Database": {}, " ": {"x"}},
		PredictedScore: &predicted,
	}

	r.Normalize()

	assert.Equal(t, 0, r.ATSScore)
	assert.Equal(t, LabelNeedsImprovement, r.ScoreLabel)
	assert.Equal(t, map[string][]string{"Frontend": {"React"}}, r.MissingSkills)
	require.NotNil(t, r.PredictedScore)
	assert.Equal(t, 100, *r.PredictedScore)
	assert.NotNil(t, r.Suggestions)
	assert.NotNil(t, r.Improvements)
	assert.NotNil(t, r.SkillRoadmap)
	assert.NoError(t, r.Validate())
}

func TestAnalysisResult_NormalizeKeepsValidLabel(t *testing.T) {
	r := AnalysisResult{ATSScore: 90, ScoreLabel: LabelStrongMatch}
	r.Normalize()
	assert.Equal(t, LabelStrongMatch, r.ScoreLabel, "model label is kept when it is a known band")
}

func TestFallbackResult(t *testing.T) {
	r := FallbackResult()
	assert.Equal(t, 0, r.ATSScore)
	assert.Equal(t, LabelNeedsImprovement, r.ScoreLabel)
	assert.Nil(t, r.PredictedScore)
	assert.Len(t, r.Suggestions, 1)
	assert.Empty(t, r.Improvements)
	assert.NoError(t, r.Validate())
}
