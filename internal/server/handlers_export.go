package server

import (
	"net/http"

	"github.com/jonathan/resume-editor/internal/editor"
	"github.com/jonathan/resume-editor/internal/rendering"
)

// handleSessionText returns the serialized resume, the same text a re-analysis submits
func (s *Server) handleSessionText(w http.ResponseWriter, r *http.Request) {
	s.writeSessionText(w, r, "", func(sess *editor.Session) (string, error) {
		return sess.Sections.Serialize(), nil
	})
}

// handleExportText returns the printable plain-text export with the contact header
func (s *Server) handleExportText(w http.ResponseWriter, r *http.Request) {
	s.writeSessionText(w, r, "resume.txt", func(sess *editor.Session) (string, error) {
		return rendering.RenderText(sess.ExportDocument()), nil
	})
}

// handleExportLaTeX renders the session through the LaTeX template
func (s *Server) handleExportLaTeX(w http.ResponseWriter, r *http.Request) {
	s.writeSessionText(w, r, "resume.tex", func(sess *editor.Session) (string, error) {
		return rendering.RenderLaTeX(sess.ExportDocument(), s.cfg.TemplatePath)
	})
}

// writeSessionText renders under the session lock and writes the result as a text download.
// An empty filename serves the text inline.
func (s *Server) writeSessionText(w http.ResponseWriter, r *http.Request, filename string, render func(*editor.Session) (string, error)) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	var out string
	err := s.sessions.Update(id, func(sess *editor.Session) error {
		var err error
		out, err = render(sess)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	contentType := "text/plain; charset=utf-8"
	if filename == "resume.tex" {
		contentType = "application/x-tex; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}
