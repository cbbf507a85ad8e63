package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/resume-editor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploadFile struct {
	name        string
	contentType string
	data        []byte
}

// postMultipart sends fields and an optional file part to path.
func (ts *testServer) postMultipart(t *testing.T, path string, fields map[string]string, file *uploadFile, auth string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+file.name+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(w, req)
	return w
}

func roleFields() map[string]string {
	return map[string]string{"input_mode": "role", "role_query": "Backend Go engineer"}
}

func TestCreateAnalysis_ResumeTextField(t *testing.T) {
	ts := newTestServer(t)

	fields := roleFields()
	fields["resume_text"] = sampleResume
	w := ts.postMultipart(t, "/analyses", fields, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeBody[AnalysisResponse](t, w)
	assert.Empty(t, resp.AnalysisID, "anonymous analyses are not stored")
	assert.Contains(t, resp.ResumeText, "Wrote Go code at Acme")
	assert.Equal(t, types.ModeRole, resp.Context.InputMode)
	require.NotNil(t, resp.Analysis)
	assert.Equal(t, []string{"Kubernetes", "Terraform"}, resp.Analysis.Suggestions)

	req := ts.analyzer.lastRequest()
	assert.Equal(t, "Backend Go engineer", req.Context.RoleQuery)
	assert.Empty(t, ts.repo.analyses)
}

func TestCreateAnalysis_FileUpload(t *testing.T) {
	ts := newTestServer(t)

	fields := map[string]string{"input_mode": "jd", "job_description": "We need a Go engineer with Kubernetes"}
	file := &uploadFile{name: "resume.txt", contentType: "text/plain", data: []byte(sampleResume)}
	w := ts.postMultipart(t, "/analyses", fields, file, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req := ts.analyzer.lastRequest()
	assert.Equal(t, types.ModeJobDescription, req.Context.InputMode)
	assert.Equal(t, "We need a Go engineer with Kubernetes", req.Context.JobDescription)
	assert.Contains(t, req.ResumeText, "BSc Computer Science")
}

func TestCreateAnalysis_Errors(t *testing.T) {
	ts := newTestServer(t)

	t.Run("missing resume", func(t *testing.T) {
		w := ts.postMultipart(t, "/analyses", roleFields(), nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "file")
	})

	t.Run("missing role query", func(t *testing.T) {
		fields := map[string]string{"input_mode": "role", "resume_text": sampleResume}
		w := ts.postMultipart(t, "/analyses", fields, nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unsupported file", func(t *testing.T) {
		file := &uploadFile{name: "photo.png", contentType: "image/png", data: []byte("\x89PNG\r\n\x1a\n")}
		w := ts.postMultipart(t, "/analyses", roleFields(), file, "")
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/analyses", map[string]string{"resume_text": sampleResume}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateAnalysis_UploadTooLarge(t *testing.T) {
	ts := newTestServer(t, func(c *Config, _ *Dependencies) { c.MaxUploadBytes = 256 })

	fields := roleFields()
	fields["resume_text"] = strings.Repeat("Go developer\n", 100)
	w := ts.postMultipart(t, "/analyses", fields, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAnalysis_RequireAuth(t *testing.T) {
	ts := newTestServer(t, withRequireAuth())

	fields := roleFields()
	fields["resume_text"] = sampleResume
	w := ts.postMultipart(t, "/analyses", fields, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	auth, _ := ts.token(t)
	w = ts.postMultipart(t, "/analyses", fields, nil, auth)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestStoredAnalyses(t *testing.T) {
	ts := newTestServer(t)
	auth, _ := ts.token(t)

	fields := roleFields()
	fields["resume_text"] = sampleResume
	w := ts.postMultipart(t, "/analyses", fields, nil, auth)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decodeBody[AnalysisResponse](t, w)
	require.NotEmpty(t, created.AnalysisID)

	w = ts.do(t, http.MethodGet, "/analyses/"+created.AnalysisID, nil, auth)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stored := decodeBody[StoredAnalysisResponse](t, w)
	assert.Equal(t, created.AnalysisID, stored.ID)
	assert.NotEmpty(t, stored.ResumeID)
	assert.Equal(t, 55, stored.Analysis.ATSScore)
	assert.Equal(t, "Backend Go engineer", stored.Context.RoleQuery)

	w = ts.do(t, http.MethodGet, "/analyses", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[map[string]any](t, w)
	assert.EqualValues(t, 1, list["count"])

	t.Run("other users see not found", func(t *testing.T) {
		other, _ := ts.token(t)
		w := ts.do(t, http.MethodGet, "/analyses/"+created.AnalysisID, nil, other)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("anonymous callers are rejected", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/analyses/"+created.AnalysisID, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		w = ts.do(t, http.MethodGet, "/analyses", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad ids", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/analyses/not-a-uuid", nil, auth)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		w = ts.do(t, http.MethodGet, "/analyses/"+uuid.NewString(), nil, auth)
		assert.Equal(t, http.StatusNotFound, w.Code)
		w = ts.do(t, http.MethodGet, "/analyses?limit=zero", nil, auth)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("session from stored analysis", func(t *testing.T) {
		body := map[string]any{"resume_text": created.ResumeText, "analysis_id": created.AnalysisID}
		w := ts.do(t, http.MethodPost, "/sessions", body, auth)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		view := decodeBody[types.SessionView](t, w)
		assert.Equal(t, types.ModeRole, view.Context.InputMode, "context comes from the stored analysis")
		assert.Equal(t, []string{"Kubernetes", "Terraform"}, view.Analysis.Suggestions)

		other, _ := ts.token(t)
		w = ts.do(t, http.MethodPost, "/sessions", body, other)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestStoredAnalyses_PersistenceFailureStillAnswers(t *testing.T) {
	ts := newTestServer(t)
	ts.repo.saveErr = assert.AnError
	auth, _ := ts.token(t)

	fields := roleFields()
	fields["resume_text"] = sampleResume
	w := ts.postMultipart(t, "/analyses", fields, nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody[AnalysisResponse](t, w).AnalysisID)
}

func TestStoredAnalyses_WithoutRepository(t *testing.T) {
	ts := newTestServer(t, withoutRepo())
	auth, _ := ts.token(t)

	w := ts.do(t, http.MethodGet, "/analyses", nil, auth)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = ts.do(t, http.MethodGet, "/analyses/"+uuid.NewString(), nil, auth)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	health := decodeBody[map[string]any](t, ts.do(t, http.MethodGet, "/health", nil, ""))
	assert.NotContains(t, health, "database")
}

type sseEvent struct {
	name string
	data map[string]any
}

func readEvents(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	var current sseEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &current.data))
		case line == "":
			events = append(events, current)
			current = sseEvent{}
		}
	}
	return events
}

func TestCreateAnalysisStream(t *testing.T) {
	ts := newTestServer(t)
	auth, _ := ts.token(t)

	fields := roleFields()
	fields["resume_text"] = sampleResume
	w := ts.postMultipart(t, "/analyses/stream", fields, nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	events := readEvents(t, w.Body.String())
	require.Len(t, events, 4)
	steps := []string{}
	for _, e := range events[:3] {
		assert.Equal(t, "step", e.name)
		steps = append(steps, e.data["step"].(string))
	}
	assert.Equal(t, []string{StepExtracting, StepAnalyzing, StepSaving}, steps)
	assert.Equal(t, "complete", events[3].name)
	assert.NotEmpty(t, events[3].data["analysis_id"])
}

func TestCreateAnalysisStream_Error(t *testing.T) {
	ts := newTestServer(t)

	file := &uploadFile{name: "photo.png", contentType: "image/png", data: []byte("\x89PNG")}
	w := ts.postMultipart(t, "/analyses/stream", roleFields(), file, "")
	require.Equal(t, http.StatusOK, w.Code)

	events := readEvents(t, w.Body.String())
	require.Len(t, events, 2)
	assert.Equal(t, "step", events[0].name)
	assert.Equal(t, "error", events[1].name)
	assert.EqualValues(t, http.StatusUnsupportedMediaType, events[1].data["status"])
}

func TestExports(t *testing.T) {
	ts := newTestServer(t)
	view := ts.createSession(t)
	base := "/sessions/" + view.ID

	w := ts.do(t, http.MethodGet, base+"/text", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "Professional Summary\nJohn Doe"))

	w = ts.do(t, http.MethodGet, base+"/export.txt", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "resume.txt")
	assert.True(t, strings.HasPrefix(w.Body.String(), "John Doe\njohn@example.com"))
	assert.Contains(t, w.Body.String(), "Skills\nGo, SQL")

	w = ts.do(t, http.MethodGet, base+"/export.tex", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "application/x-tex")
	assert.Contains(t, w.Body.String(), `\section*{Work Experience}`)

	w = ts.do(t, http.MethodGet, "/sessions/"+uuid.NewString()+"/export.tex", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
