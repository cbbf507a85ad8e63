package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/resume-editor/internal/sections"
	"github.com/jonathan/resume-editor/internal/types"
)

// SaveResume stores extracted resume text and returns its ID. userID may be nil for anonymous
// uploads.
func (db *DB) SaveResume(ctx context.Context, userID *uuid.UUID, fileName, parsedText string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO resumes (user_id, file_name, parsed_text)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		userID, fileName, parsedText,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save resume: %w", err)
	}
	return id, nil
}

// GetResume retrieves a resume by ID, returning nil when it does not exist
func (db *DB) GetResume(ctx context.Context, id uuid.UUID) (*Resume, error) {
	var r Resume
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, file_name, parsed_text, created_at FROM resumes WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.UserID, &r.FileName, &r.ParsedText, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	return &r, nil
}

// SaveAnalysis stores an analysis result with the context it was requested for
func (db *DB) SaveAnalysis(ctx context.Context, userID, resumeID *uuid.UUID, actx types.AnalysisContext, result *types.AnalysisResult) (uuid.UUID, error) {
	if result == nil {
		return uuid.Nil, fmt.Errorf("analysis result is nil")
	}
	res := *result
	res.Normalize()
	cols, err := encodeResultColumns(&res)
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO analyses (user_id, resume_id, input_mode, job_description, role_query, job_url,
		                       role_detected, experience_level, ats_score, score_label, explanation,
		                       missing_skills, suggestions, improvements, skill_roadmap, predicted_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id`,
		userID, resumeID, string(actx.InputMode), actx.JobDescription, actx.RoleQuery, actx.JobURL,
		res.RoleDetected, res.ExperienceLevel, res.ATSScore, string(res.ScoreLabel), res.Explanation,
		cols.missingSkills, cols.suggestions, cols.improvements, cols.skillRoadmap, res.PredictedScore,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save analysis: %w", err)
	}
	return id, nil
}

// GetAnalysis retrieves an analysis by ID, returning nil when it does not exist
func (db *DB) GetAnalysis(ctx context.Context, id uuid.UUID) (*StoredAnalysis, error) {
	var a StoredAnalysis
	var mode, label string
	var cols resultColumns

	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, resume_id, input_mode, job_description, role_query, job_url,
		        role_detected, experience_level, ats_score, score_label, explanation,
		        missing_skills, suggestions, improvements, skill_roadmap, predicted_score, created_at
		 FROM analyses WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.UserID, &a.ResumeID, &mode, &a.Context.JobDescription, &a.Context.RoleQuery, &a.Context.JobURL,
		&a.Result.RoleDetected, &a.Result.ExperienceLevel, &a.Result.ATSScore, &label, &a.Result.Explanation,
		&cols.missingSkills, &cols.suggestions, &cols.improvements, &cols.skillRoadmap, &a.Result.PredictedScore, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	a.Context.InputMode = types.InputMode(mode)
	a.Result.ScoreLabel = types.ScoreLabel(label)
	if err := cols.decodeInto(&a.Result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis %s: %w", id, err)
	}
	a.Result.Normalize()
	return &a, nil
}

// ListAnalyses returns a user's analyses, newest first
func (db *DB) ListAnalyses(ctx context.Context, userID uuid.UUID, limit int) ([]AnalysisSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, role_detected, experience_level, ats_score, score_label, created_at
		 FROM analyses WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	summaries := []AnalysisSummary{}
	for rows.Next() {
		var s AnalysisSummary
		var label string
		if err := rows.Scan(&s.ID, &s.RoleDetected, &s.ExperienceLevel, &s.ATSScore, &label, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		s.ScoreLabel = types.ScoreLabel(label)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return summaries, nil
}

// resultColumns holds the JSONB columns of an analysis row
type resultColumns struct {
	missingSkills []byte
	suggestions   []byte
	improvements  []byte
	skillRoadmap  []byte
}

func encodeResultColumns(r *types.AnalysisResult) (resultColumns, error) {
	if r == nil {
		return resultColumns{}, fmt.Errorf("analysis result is nil")
	}
	normalized := *r
	normalized.Normalize()

	var cols resultColumns
	var err error
	if cols.missingSkills, err = json.Marshal(normalized.MissingSkills); err != nil {
		return cols, fmt.Errorf("failed to marshal missing_skills: %w", err)
	}
	if cols.suggestions, err = json.Marshal(normalized.Suggestions); err != nil {
		return cols, fmt.Errorf("failed to marshal suggestions: %w", err)
	}
	if cols.improvements, err = json.Marshal(normalized.Improvements); err != nil {
		return cols, fmt.Errorf("failed to marshal improvements: %w", err)
	}
	if cols.skillRoadmap, err = json.Marshal(normalized.SkillRoadmap); err != nil {
		return cols, fmt.Errorf("failed to marshal skill_roadmap: %w", err)
	}
	return cols, nil
}

func (c resultColumns) decodeInto(r *types.AnalysisResult) error {
	fields := []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"missing_skills", c.missingSkills, &r.MissingSkills},
		{"suggestions", c.suggestions, &r.Suggestions},
		{"improvements", c.improvements, &r.Improvements},
		{"skill_roadmap", c.skillRoadmap, &r.SkillRoadmap},
	}
	for _, f := range fields {
		if len(f.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	if r.Improvements == nil {
		r.Improvements = []sections.Improvement{}
	}
	return nil
}
