package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(AnalysisFile, KeySystem)
	require.NoError(t, err)
	assert.Contains(t, prompt, `"ats_score"`)
	assert.Contains(t, prompt, "Excellent Match")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(AnalysisFile, "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestFormat(t *testing.T) {
	data := map[string]string{"RoleQuery": "junior Go developer", "ResumeText": "Skills\nGo"}
	result := Format("Goal: {{.RoleQuery}}\n{{.ResumeText}}", data)
	assert.Equal(t, "Goal: junior Go developer\nSkills\nGo", result)

	assert.Equal(t, "Hello {{.Name}}", Format("Hello {{.Name}}", nil), "unknown placeholders are left alone")
}

func TestRender(t *testing.T) {
	ClearCache()

	out, err := Render(AnalysisFile, KeyAnalyzeJD, map[string]string{
		"JobDescription": "Senior Go engineer",
		"ResumeText":     "Experience\nBuilt APIs",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Senior Go engineer")
	assert.Contains(t, out, "Built APIs")
	assert.NotContains(t, out, "{{.")

	_, err = Render(AnalysisFile, KeyAnalyzeRole, map[string]string{"ResumeText": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{{.RoleQuery}}")
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List(AnalysisFile)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyAnalyzeJD, KeyAnalyzeRole, KeyExtractText, KeyExtractTextSystem, KeySystem}, keys)
}
