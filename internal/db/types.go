package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-editor/internal/types"
)

// Resume is an uploaded resume after text extraction
type Resume struct {
	ID         uuid.UUID  `json:"id"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	FileName   string     `json:"file_name"`
	ParsedText string     `json:"parsed_text"`
	CreatedAt  time.Time  `json:"created_at"`
}

// StoredAnalysis is a persisted analysis together with the context it was produced for
type StoredAnalysis struct {
	ID        uuid.UUID             `json:"id"`
	UserID    *uuid.UUID            `json:"user_id,omitempty"`
	ResumeID  *uuid.UUID            `json:"resume_id,omitempty"`
	Context   types.AnalysisContext `json:"context"`
	Result    types.AnalysisResult  `json:"result"`
	CreatedAt time.Time             `json:"created_at"`
}

// AnalysisSummary is the row shown in a user's analysis history
type AnalysisSummary struct {
	ID              uuid.UUID        `json:"id"`
	RoleDetected    *string          `json:"role_detected"`
	ExperienceLevel *string          `json:"experience_level"`
	ATSScore        int              `json:"ats_score"`
	ScoreLabel      types.ScoreLabel `json:"score_label"`
	CreatedAt       time.Time        `json:"created_at"`
}

// DefaultListLimit caps ListAnalyses when no limit is given
const DefaultListLimit = 50
