// Package editor holds editing sessions: a parsed section collection together with the
// analysis it is being edited against and the bookkeeping of applied recommendations.
package editor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-editor/internal/analysis"
	"github.com/jonathan/resume-editor/internal/rendering"
	"github.com/jonathan/resume-editor/internal/sections"
	"github.com/jonathan/resume-editor/internal/types"
)

var (
	// ErrAlreadyApplied is returned when a suggestion or improvement index was merged before.
	ErrAlreadyApplied = errors.New("already applied")
	// ErrIndexOutOfRange is returned for an index the current analysis does not have.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrNoAnalysis is returned when a session has no analysis to apply from.
	ErrNoAnalysis = errors.New("session has no analysis")
	// ErrReanalysisInProgress is returned when a re-analysis is requested while one is pending.
	ErrReanalysisInProgress = errors.New("re-analysis already in progress")
)

// Session is one user's editing state. It is not safe for concurrent use; Store serialises
// access per session.
type Session struct {
	ID        uuid.UUID
	Sections  *sections.Collection
	Analysis  *types.AnalysisResult
	Context   types.AnalysisContext
	Contact   types.Contact
	UpdatedAt time.Time

	appliedSuggestions  map[int]bool
	appliedImprovements map[int]bool
	reanalyzing         bool
}

// NewSession parses resumeText into a fresh section collection.
func NewSession(resumeText string, result *types.AnalysisResult, actx types.AnalysisContext) *Session {
	return &Session{
		ID:                  uuid.New(),
		Sections:            sections.Parse(resumeText),
		Analysis:            result,
		Context:             actx,
		UpdatedAt:           time.Now(),
		appliedSuggestions:  make(map[int]bool),
		appliedImprovements: make(map[int]bool),
	}
}

// UpdateSection applies the non-nil fields of req to section id. It reports false when the
// section does not exist.
func (s *Session) UpdateSection(id sections.ID, req types.UpdateSectionRequest) bool {
	if _, ok := s.Sections.Get(id); !ok {
		return false
	}
	if req.Title != nil {
		s.Sections.UpdateTitle(id, *req.Title)
	}
	if req.Content != nil {
		s.Sections.UpdateContent(id, *req.Content)
	}
	s.touch()
	return true
}

// AddSection appends an empty user section.
func (s *Session) AddSection() sections.Section {
	sec := s.Sections.Add()
	s.touch()
	return sec
}

// RemoveSection removes a user section; always-present sections are refused.
func (s *Session) RemoveSection(id sections.ID) error {
	if err := s.Sections.Remove(id); err != nil {
		return fmt.Errorf("remove %s: %w", id, err)
	}
	s.touch()
	return nil
}

// SetContact replaces the contact details used on exports.
func (s *Session) SetContact(c types.Contact) {
	s.Contact = c
	s.touch()
}

// ApplySuggestion merges suggestion index of the current analysis into the skills section.
// Each index is applied at most once per analysis.
func (s *Session) ApplySuggestion(index int) error {
	if s.Analysis == nil {
		return ErrNoAnalysis
	}
	if index < 0 || index >= len(s.Analysis.Suggestions) {
		return fmt.Errorf("suggestion %d: %w", index, ErrIndexOutOfRange)
	}
	if s.appliedSuggestions[index] {
		return fmt.Errorf("suggestion %d: %w", index, ErrAlreadyApplied)
	}

	s.Sections.ApplySuggestion(s.Analysis.Suggestions[index])
	s.appliedSuggestions[index] = true
	s.touch()
	return nil
}

// ApplyImprovement merges improvement index of the current analysis. It reports whether the
// before text was replaced in place (false means it was appended to experience).
func (s *Session) ApplyImprovement(index int) (bool, error) {
	if s.Analysis == nil {
		return false, ErrNoAnalysis
	}
	if index < 0 || index >= len(s.Analysis.Improvements) {
		return false, fmt.Errorf("improvement %d: %w", index, ErrIndexOutOfRange)
	}
	if s.appliedImprovements[index] {
		return false, fmt.Errorf("improvement %d: %w", index, ErrAlreadyApplied)
	}

	replaced := s.Sections.ApplyImprovement(s.Analysis.Improvements[index])
	s.appliedImprovements[index] = true
	s.touch()
	return replaced, nil
}

// AppliedSuggestions returns the applied suggestion indices in ascending order.
func (s *Session) AppliedSuggestions() []int {
	return sortedKeys(s.appliedSuggestions)
}

// AppliedImprovements returns the applied improvement indices in ascending order.
func (s *Session) AppliedImprovements() []int {
	return sortedKeys(s.appliedImprovements)
}

// Reanalyzing reports whether a re-analysis is in flight.
func (s *Session) Reanalyzing() bool {
	return s.reanalyzing
}

// BeginReanalysis marks a re-analysis as in flight and returns the request to submit: the
// serialized sections with the session's original context. It fails with
// ErrReanalysisInProgress when one is already pending.
func (s *Session) BeginReanalysis() (analysis.Request, error) {
	if s.reanalyzing {
		return analysis.Request{}, ErrReanalysisInProgress
	}
	s.reanalyzing = true
	return analysis.Request{ResumeText: s.Sections.Serialize(), Context: s.Context}, nil
}

// FinishReanalysis clears the in-flight flag. On success the new analysis replaces the old one
// and the applied sets are reset, since their indices referred to the old lists. On failure
// nothing else changes.
func (s *Session) FinishReanalysis(result *types.AnalysisResult, err error) {
	s.reanalyzing = false
	if err != nil || result == nil {
		return
	}
	s.Analysis = result
	s.appliedSuggestions = make(map[int]bool)
	s.appliedImprovements = make(map[int]bool)
	s.touch()
}

// Reanalyze submits the edited resume to analyzer while holding the session. Store.Reanalyze
// is the variant that releases the session lock during the call.
func (s *Session) Reanalyze(ctx context.Context, analyzer analysis.Analyzer) error {
	req, err := s.BeginReanalysis()
	if err != nil {
		return err
	}
	result, err := analyzer.Analyze(ctx, req)
	s.FinishReanalysis(result, err)
	return err
}

// ExportDocument returns what the export renderer consumes.
func (s *Session) ExportDocument() rendering.Document {
	return rendering.Document{Contact: s.Contact, Sections: s.Sections.Sections()}
}

// View returns the API representation of the session.
func (s *Session) View() types.SessionView {
	return types.SessionView{
		ID:                  s.ID.String(),
		Sections:            s.Sections.Sections(),
		Analysis:            s.Analysis,
		Context:             s.Context,
		Contact:             s.Contact,
		AppliedSuggestions:  s.AppliedSuggestions(),
		AppliedImprovements: s.AppliedImprovements(),
		Reanalyzing:         s.reanalyzing,
	}
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}

func sortedKeys(m map[int]bool) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
