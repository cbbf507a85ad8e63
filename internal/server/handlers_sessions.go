package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonathan/resume-editor/internal/editor"
	"github.com/jonathan/resume-editor/internal/sections"
	"github.com/jonathan/resume-editor/internal/types"
)

// ImprovementResponse is returned when an improvement is applied
type ImprovementResponse struct {
	Replaced bool              `json:"replaced"` // false means the text was appended to experience
	Session  types.SessionView `json:"session"`
}

// handleCreateSession opens an editing session from resume text and an analysis. The analysis
// is sent inline or referenced by analysis_id; a referenced analysis also supplies the context
// when the request omits input_mode.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req types.CreateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	if req.Analysis == nil && req.AnalysisID != "" {
		stored, err := s.lookupAnalysis(r, req.AnalysisID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		req.Analysis = &stored.Result
		if req.InputMode == "" {
			req.AnalysisContext = stored.Context
		}
	}

	// Scores are clamped and labels derived before validation.
	if req.Analysis != nil {
		req.Analysis.Normalize()
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	session := editor.NewSession(req.ResumeText, req.Analysis, req.AnalysisContext)
	session.SetContact(req.Contact)
	s.jsonResponse(w, http.StatusCreated, s.sessions.Add(session))
}

// handleGetSession returns the session view
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	view, err := s.sessions.View(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}

// handleDeleteSession discards a session
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	s.sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

// handleAddSection appends an empty custom section
func (s *Server) handleAddSection(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, http.StatusCreated, func(sess *editor.Session) (any, error) {
		return sess.AddSection(), nil
	})
}

// handleUpdateSection edits a section's title and/or content
func (s *Server) handleUpdateSection(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateSectionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	sectionID := sections.ID(r.PathValue("section_id"))
	s.mutate(w, r, http.StatusOK, func(sess *editor.Session) (any, error) {
		if !sess.UpdateSection(sectionID, req) {
			return nil, &ErrNotFound{Resource: "section", ID: string(sectionID)}
		}
		return sess.View(), nil
	})
}

// handleRemoveSection removes a custom section; the four always-present sections answer 409
func (s *Server) handleRemoveSection(w http.ResponseWriter, r *http.Request) {
	sectionID := sections.ID(r.PathValue("section_id"))
	s.mutate(w, r, http.StatusOK, func(sess *editor.Session) (any, error) {
		if err := sess.RemoveSection(sectionID); err != nil {
			return nil, err
		}
		return sess.View(), nil
	})
}

// handleApplySuggestion merges a suggestion into the skills section
func (s *Server) handleApplySuggestion(w http.ResponseWriter, r *http.Request) {
	index, ok := s.pathIndex(w, r)
	if !ok {
		return
	}
	s.mutate(w, r, http.StatusOK, func(sess *editor.Session) (any, error) {
		if err := sess.ApplySuggestion(index); err != nil {
			return nil, err
		}
		return sess.View(), nil
	})
}

// handleApplyImprovement merges a before/after rewrite
func (s *Server) handleApplyImprovement(w http.ResponseWriter, r *http.Request) {
	index, ok := s.pathIndex(w, r)
	if !ok {
		return
	}
	s.mutate(w, r, http.StatusOK, func(sess *editor.Session) (any, error) {
		replaced, err := sess.ApplyImprovement(index)
		if err != nil {
			return nil, err
		}
		return ImprovementResponse{Replaced: replaced, Session: sess.View()}, nil
	})
}

// handleUpdateContact replaces the contact header used on exports
func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateContactRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	s.mutate(w, r, http.StatusOK, func(sess *editor.Session) (any, error) {
		sess.SetContact(req.Contact)
		return sess.View(), nil
	})
}

// handleReanalyze submits the edited resume with the session's original context. The session
// stays readable while the model runs; on failure it is left unchanged.
func (s *Server) handleReanalyze(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	view, err := s.sessions.Reanalyze(r.Context(), id, s.analyzer)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}

// mutate runs fn under the session lock and writes its result with status.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, status int, fn func(*editor.Session) (any, error)) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	var result any
	err := s.sessions.Update(id, func(sess *editor.Session) error {
		var err error
		result, err = fn(sess)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, status, result)
}

// sessionID parses the {id} path value. Malformed IDs are reported as unknown sessions.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, editor.ErrSessionNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "index", Message: "must be an integer"})
		return 0, false
	}
	return index, true
}
