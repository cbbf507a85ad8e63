package db

import (
	"io/fs"
	"testing"
	"time"

	"github.com/jonathan/resume-editor/internal/fetch"
	"github.com/jonathan/resume-editor/internal/sections"
	"github.com/jonathan/resume-editor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ fetch.PageCache = (*DB)(nil)

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"migrations/00001_resumes_analyses.sql",
		"migrations/00002_job_pages.sql",
	}, names)

	for _, name := range names {
		data, err := fs.ReadFile(migrations, name)
		require.NoError(t, err)
		assert.Contains(t, string(data), "-- +goose Up", name)
		assert.Contains(t, string(data), "-- +goose Down", name)
	}
}

func TestResultColumns_RoundTrip(t *testing.T) {
	in := &types.AnalysisResult{
		ATSScore:      64,
		ScoreLabel:    types.LabelStrongMatch,
		MissingSkills: map[string][]string{"Cloud": {"AWS"}, "Empty": {}},
		Suggestions:   []string{"Add Terraform"},
		Improvements:  []sections.Improvement{{Before: "Did ops", After: "Automated deploys"}},
	}

	cols, err := encodeResultColumns(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Cloud":["AWS"]}`, string(cols.missingSkills))
	assert.JSONEq(t, `[]`, string(cols.skillRoadmap))

	var out types.AnalysisResult
	require.NoError(t, cols.decodeInto(&out))
	assert.Equal(t, map[string][]string{"Cloud": {"AWS"}}, out.MissingSkills)
	assert.Equal(t, in.Suggestions, out.Suggestions)
	assert.Equal(t, in.Improvements, out.Improvements)
	assert.Empty(t, out.SkillRoadmap)

	assert.Len(t, in.MissingSkills, 2, "encoding must not normalize the caller's result")
}

func TestResultColumns_Errors(t *testing.T) {
	_, err := encodeResultColumns(nil)
	assert.Error(t, err)

	cols := resultColumns{suggestions: []byte(`{"not":"a list"}`)}
	err = cols.decodeInto(&types.AnalysisResult{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "suggestions")
}

func TestIsFresh(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		fetched time.Time
		maxAge  time.Duration
		want    bool
	}{
		{"within age", now.Add(-time.Hour), 24 * time.Hour, true},
		{"exactly max age", now.Add(-24 * time.Hour), 24 * time.Hour, true},
		{"too old", now.Add(-25 * time.Hour), 24 * time.Hour, false},
		{"no limit", now.Add(-1000 * time.Hour), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isFresh(tt.fetched, tt.maxAge, now))
		})
	}
}
