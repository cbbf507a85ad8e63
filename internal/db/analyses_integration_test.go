//go:build integration

package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-editor/internal/sections"
	"github.com/jonathan/resume-editor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getTestDB connects to TEST_DATABASE_URL and applies migrations
func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	if err != nil {
		t.Skipf("database unreachable: %v", err)
	}
	require.NoError(t, db.Migrate(ctx))
	return db
}

func TestIntegration_ResumeAndAnalysis(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	userID := uuid.New()
	resumeID, err := db.SaveResume(ctx, &userID, "cv.pdf", "Skills\nGo")
	require.NoError(t, err)

	resume, err := db.GetResume(ctx, resumeID)
	require.NoError(t, err)
	require.NotNil(t, resume)
	assert.Equal(t, "cv.pdf", resume.FileName)
	assert.Equal(t, &userID, resume.UserID)

	role := "Backend Engineer"
	predicted := 80
	result := &types.AnalysisResult{
		RoleDetected:   &role,
		ATSScore:       62,
		ScoreLabel:     types.LabelStrongMatch,
		MissingSkills:  map[string][]string{"Tools": {"Docker"}},
		Suggestions:    []string{"Add Docker"},
		Improvements:   []sections.Improvement{{Before: "Wrote code", After: "Shipped Go services"}},
		PredictedScore: &predicted,
	}
	actx := types.AnalysisContext{InputMode: types.ModeRole, RoleQuery: "backend"}

	id, err := db.SaveAnalysis(ctx, &userID, &resumeID, actx, result)
	require.NoError(t, err)

	stored, err := db.GetAnalysis(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, actx, stored.Context)
	assert.Equal(t, 62, stored.Result.ATSScore)
	assert.Equal(t, result.Improvements, stored.Result.Improvements)
	assert.Equal(t, result.MissingSkills, stored.Result.MissingSkills)
	require.NotNil(t, stored.Result.PredictedScore)
	assert.Equal(t, 80, *stored.Result.PredictedScore)

	list, err := db.ListAnalyses(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, types.LabelStrongMatch, list[0].ScoreLabel)

	missing, err := db.GetAnalysis(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestIntegration_JobPages(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	url := "https://jobs.test.example.com/" + uuid.NewString()

	_, ok, err := db.GetJobPage(ctx, url, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.SaveJobPage(ctx, url, "first"))
	require.NoError(t, db.SaveJobPage(ctx, url, "second"))

	text, ok, err := db.GetJobPage(ctx, url, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", text)

	_, err = db.PurgeJobPages(ctx, time.Hour)
	require.NoError(t, err)
}
