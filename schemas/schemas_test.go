package schemas_test

import (
	"encoding/json"
	"testing"

	"github.com/jonathan/resume-editor/internal/schemas"
	rootschemas "github.com/jonathan/resume-editor/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisResult_ValidJSONSchema(t *testing.T) {
	var schemaObj map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(rootschemas.AnalysisResult), &schemaObj))

	assert.Equal(t, "object", schemaObj["type"])
	assert.Contains(t, schemaObj, "$schema")
	assert.Contains(t, schemaObj, "properties")
}

func TestAnalysisResult_AcceptsModelOutput(t *testing.T) {
	doc := `{
		"role_detected": "Data Analyst",
		"experience_level": null,
		"ats_score": 48,
		"score_label": "Moderate Match",
		"explanation": "Good SQL, little visualisation work.",
		"missing_skills": {"Tools": ["Tableau"]},
		"suggestions": ["Tableau"],
		"improvements": [{"before": "Made reports", "after": "Automated 12 weekly reports"}],
		"skill_roadmap": [],
		"predicted_score": 67
	}`
	assert.NoError(t, schemas.ValidateJSONString(rootschemas.AnalysisResult, doc))
}

func TestAnalysisResult_RejectsWrongShapes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing score", `{"suggestions": []}`},
		{"score as string", `{"ats_score": "72"}`},
		{"improvement without after", `{"ats_score": 10, "improvements": [{"before": "x"}]}`},
		{"skills not a list", `{"ats_score": 10, "missing_skills": {"Tools": "Docker"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schemas.ValidateJSONString(rootschemas.AnalysisResult, tt.doc)
			require.Error(t, err)
			_, ok := err.(*schemas.ValidationError)
			assert.True(t, ok, "expected ValidationError, got %T", err)
		})
	}
}
