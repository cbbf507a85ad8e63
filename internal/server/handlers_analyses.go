package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-editor/internal/db"
	"github.com/jonathan/resume-editor/internal/extraction"
	"github.com/jonathan/resume-editor/internal/server/middleware"
	"github.com/jonathan/resume-editor/internal/types"
)

// Analysis stages reported by the streaming endpoint.
const (
	StepExtracting = "extracting"
	StepAnalyzing  = "analyzing"
	StepSaving     = "saving"
)

// AnalysisResponse is returned by POST /analyses
type AnalysisResponse struct {
	AnalysisID string                `json:"analysis_id,omitempty"`
	ResumeText string                `json:"resume_text"`
	Context    types.AnalysisContext `json:"context"`
	Analysis   *types.AnalysisResult `json:"analysis"`
}

// StoredAnalysisResponse is returned by GET /analyses/{id}
type StoredAnalysisResponse struct {
	ID        string                `json:"id"`
	ResumeID  string                `json:"resume_id,omitempty"`
	Context   types.AnalysisContext `json:"context"`
	Analysis  types.AnalysisResult  `json:"analysis"`
	CreatedAt string                `json:"created_at"`
}

// analysisUpload is a parsed POST /analyses form.
type analysisUpload struct {
	file    extraction.File
	context types.AnalysisContext
}

// handleCreateAnalysis extracts and analyzes an uploaded resume
func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, err := s.analysisUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	upload, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp, err := s.runAnalysis(r.Context(), upload, userID, func(string) {})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleCreateAnalysisStream is handleCreateAnalysis with progress reported as SSE events
func (s *Server) handleCreateAnalysisStream(w http.ResponseWriter, r *http.Request) {
	userID, err := s.analysisUser(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	upload, err := s.readUpload(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp, err := s.runAnalysis(r.Context(), upload, userID, sse.WriteStep)
	if err != nil {
		status := HTTPStatus(err)
		message := err.Error()
		if status == http.StatusInternalServerError {
			log.Printf("[server] streamed analysis failed: %v", err)
			message = "internal server error"
		}
		sse.WriteError(status, message)
		return
	}
	sse.WriteComplete(resp)
}

// runAnalysis runs ingestion and analysis, then persists the result for signed-in users.
// Persistence failures are logged; the caller still gets the analysis.
func (s *Server) runAnalysis(ctx context.Context, upload *analysisUpload, userID *uuid.UUID, progress func(step string)) (*AnalysisResponse, error) {
	progress(StepExtracting)
	req, err := s.ingest.Prepare(ctx, upload.file, upload.context)
	if err != nil {
		return nil, err
	}

	progress(StepAnalyzing)
	result, err := s.analyzer.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &AnalysisResponse{ResumeText: req.ResumeText, Context: req.Context, Analysis: result}
	if s.repo == nil || userID == nil {
		return resp, nil
	}

	progress(StepSaving)
	resumeID, err := s.repo.SaveResume(ctx, userID, upload.file.Name, req.ResumeText)
	if err != nil {
		log.Printf("[server] failed to save resume: %v", err)
		return resp, nil
	}
	analysisID, err := s.repo.SaveAnalysis(ctx, userID, &resumeID, req.Context, result)
	if err != nil {
		log.Printf("[server] failed to save analysis: %v", err)
		return resp, nil
	}
	resp.AnalysisID = analysisID.String()
	return resp, nil
}

// analysisUser returns the signed-in user, or nil for anonymous callers when auth is optional.
func (s *Server) analysisUser(r *http.Request) (*uuid.UUID, error) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		if s.cfg.RequireAuth {
			return nil, &ErrUnauthorized{}
		}
		return nil, nil
	}
	return &userID, nil
}

// readUpload parses the multipart form. The resume comes from the "file" part or, for plain
// text, the "resume_text" field.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*analysisUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &ErrValidation{Field: "file", Message: "upload exceeds " + strconv.FormatInt(s.cfg.MaxUploadBytes, 10) + " bytes"}
		}
		return nil, &ErrValidation{Field: "body", Message: "expected multipart form: " + err.Error()}
	}

	upload := &analysisUpload{
		context: types.AnalysisContext{
			InputMode:      types.InputMode(strings.TrimSpace(r.FormValue("input_mode"))),
			JobDescription: r.FormValue("job_description"),
			RoleQuery:      r.FormValue("role_query"),
			JobURL:         strings.TrimSpace(r.FormValue("job_url")),
		},
	}

	part, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer func() { _ = part.Close() }()
		data, err := io.ReadAll(part)
		if err != nil {
			return nil, &ErrValidation{Field: "file", Message: err.Error()}
		}
		upload.file = extraction.File{
			Name:     header.Filename,
			MIMEType: header.Header.Get("Content-Type"),
			Data:     data,
		}
	case errors.Is(err, http.ErrMissingFile):
		text := r.FormValue("resume_text")
		if strings.TrimSpace(text) == "" {
			return nil, &ErrValidation{Field: "file", Message: "file or resume_text is required"}
		}
		upload.file = extraction.File{Name: "resume.txt", MIMEType: extraction.MIMEText, Data: []byte(text)}
	default:
		return nil, &ErrValidation{Field: "file", Message: err.Error()}
	}

	return upload, nil
}

// handleGetAnalysis returns one of the caller's stored analyses
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	stored, err := s.lookupAnalysis(r, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := StoredAnalysisResponse{
		ID:        stored.ID.String(),
		Context:   stored.Context,
		Analysis:  stored.Result,
		CreatedAt: stored.CreatedAt.Format(time.RFC3339),
	}
	if stored.ResumeID != nil {
		resp.ResumeID = stored.ResumeID.String()
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleListAnalyses returns the caller's analysis history, newest first
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.writeError(w, &ErrUnavailable{Feature: "analysis history"})
		return
	}
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.writeError(w, &ErrUnauthorized{})
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = n
	}

	summaries, err := s.repo.ListAnalyses(r.Context(), userID, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"analyses": summaries, "count": len(summaries)})
}

// lookupAnalysis loads a stored analysis owned by the caller. Analyses belonging to someone
// else are reported as not found.
func (s *Server) lookupAnalysis(r *http.Request, rawID string) (*db.StoredAnalysis, error) {
	if s.repo == nil {
		return nil, &ErrUnavailable{Feature: "analysis history"}
	}
	userID, err := middleware.GetUserID(r)
	if err != nil {
		return nil, &ErrUnauthorized{}
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, &ErrValidation{Field: "id", Message: "invalid analysis ID format"}
	}

	stored, err := s.repo.GetAnalysis(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if stored == nil || stored.UserID == nil || *stored.UserID != userID {
		return nil, &ErrNotFound{Resource: "analysis", ID: rawID}
	}
	return stored, nil
}
