package types

import (
	"strings"

	"github.com/jonathan/resume-editor/internal/sections"
)

// InputMode says how the target role was described.
type InputMode string

// Input modes.
const (
	// ModeJobDescription analyzes against a pasted (or fetched) job description.
	ModeJobDescription InputMode = "jd"
	// ModeRole analyzes against a free-text role query.
	ModeRole InputMode = "role"
)

// Valid reports whether m is a known mode.
func (m InputMode) Valid() bool {
	return m == ModeJobDescription || m == ModeRole
}

// AnalysisContext is the targeting information that accompanies resume text to the analysis
// and is echoed back unchanged on every re-analysis.
type AnalysisContext struct {
	InputMode      InputMode `json:"input_mode" validate:"input_mode"`
	JobDescription string    `json:"job_description,omitempty"`
	RoleQuery      string    `json:"role_query,omitempty"`
	JobURL         string    `json:"job_url,omitempty" validate:"omitempty,url"`
}

// Validate checks the mode and that the mode's free text is present. In jd mode a job URL
// stands in for the description until it has been fetched.
func (c *AnalysisContext) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		return err
	}
	switch c.InputMode {
	case ModeJobDescription:
		if strings.TrimSpace(c.JobDescription) == "" && c.JobURL == "" {
			return &ValidationError{Field: "job_description", Message: "job description or job_url is required in jd mode"}
		}
	case ModeRole:
		if strings.TrimSpace(c.RoleQuery) == "" {
			return &ValidationError{Field: "role_query", Message: "role query is required in role mode"}
		}
	}
	return nil
}

// Contact is the optional header printed on exported documents.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty"`
}

// CreateSessionRequest opens an editing session. Either Analysis or AnalysisID supplies the
// suggestions and improvements.
type CreateSessionRequest struct {
	ResumeText string          `json:"resume_text" validate:"required"`
	Analysis   *AnalysisResult `json:"analysis,omitempty"`
	AnalysisID string          `json:"analysis_id,omitempty" validate:"omitempty,uuid"`
	AnalysisContext
	Contact Contact `json:"contact"`
}

// Validate validates the CreateSessionRequest using the validator.
func (r *CreateSessionRequest) Validate() error {
	if err := newValidator().Struct(r); err != nil {
		return err
	}
	if r.Analysis == nil && r.AnalysisID == "" {
		return &ValidationError{Field: "analysis", Message: "analysis or analysis_id is required"}
	}
	return r.AnalysisContext.Validate()
}

// UpdateSectionRequest edits a section. Nil fields are left unchanged.
type UpdateSectionRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Validate rejects requests that change nothing.
func (r *UpdateSectionRequest) Validate() error {
	if r.Title == nil && r.Content == nil {
		return &ValidationError{Field: "title", Message: "title or content is required"}
	}
	return nil
}

// UpdateContactRequest replaces the session's contact details.
type UpdateContactRequest struct {
	Contact
}

// Validate validates the UpdateContactRequest using the validator.
func (r *UpdateContactRequest) Validate() error {
	return newValidator().Struct(r)
}

// SessionView is the API representation of an editing session.
type SessionView struct {
	ID                  string             `json:"id"`
	Sections            []sections.Section `json:"sections"`
	Analysis            *AnalysisResult    `json:"analysis"`
	Context             AnalysisContext    `json:"context"`
	Contact             Contact            `json:"contact"`
	AppliedSuggestions  []int              `json:"applied_suggestions"`
	AppliedImprovements []int              `json:"applied_improvements"`
	Reanalyzing         bool               `json:"reanalyzing"`
}
