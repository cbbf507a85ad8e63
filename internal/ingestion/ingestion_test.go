package ingestion

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/jonathan/resume-editor/internal/analysis"
	"github.com/jonathan/resume-editor/internal/extraction"
	"github.com/jonathan/resume-editor/internal/fetch"
	"github.com/jonathan/resume-editor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	text  string
	err   error
	calls atomic.Int32
}

func (f *stubFetcher) JobDescription(ctx context.Context, _ string) (string, error) {
	f.calls.Add(1)
	return f.text, f.err
}

func resumeFile() extraction.File {
	return extraction.File{Name: "cv.txt", Data: []byte("Skills\r\nGo\r\n")}
}

func TestPrepare_RoleMode(t *testing.T) {
	fetcher := &stubFetcher{}
	p := &Preparer{Extractor: extraction.NewExtractor(nil), Fetcher: fetcher}

	actx := types.AnalysisContext{InputMode: types.ModeRole, RoleQuery: "data engineer"}
	req, err := p.Prepare(t.Context(), resumeFile(), actx)
	require.NoError(t, err)

	assert.Equal(t, "Skills\nGo", req.ResumeText)
	assert.Equal(t, actx, req.Context)
	assert.Zero(t, fetcher.calls.Load())
}

func TestPrepare_FetchesJobURL(t *testing.T) {
	fetcher := &stubFetcher{text: "Senior Go engineer"}
	p := &Preparer{Extractor: extraction.NewExtractor(nil), Fetcher: fetcher}

	actx := types.AnalysisContext{InputMode: types.ModeJobDescription, JobURL: "https://jobs.lever.co/acme/1"}
	req, err := p.Prepare(t.Context(), resumeFile(), actx)
	require.NoError(t, err)

	assert.Equal(t, "Senior Go engineer", req.Context.JobDescription)
	assert.Equal(t, "https://jobs.lever.co/acme/1", req.Context.JobURL)
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestPrepare_InlineDescriptionWins(t *testing.T) {
	fetcher := &stubFetcher{text: "fetched"}
	p := &Preparer{Extractor: extraction.NewExtractor(nil), Fetcher: fetcher}

	actx := types.AnalysisContext{InputMode: types.ModeJobDescription, JobDescription: "inline", JobURL: "https://example.com/job"}
	req, err := p.Prepare(t.Context(), resumeFile(), actx)
	require.NoError(t, err)

	assert.Equal(t, "inline", req.Context.JobDescription)
	assert.Zero(t, fetcher.calls.Load())
}

func TestPrepare_Errors(t *testing.T) {
	jdByURL := types.AnalysisContext{InputMode: types.ModeJobDescription, JobURL: "https://example.com/job"}

	t.Run("invalid context", func(t *testing.T) {
		p := &Preparer{Extractor: extraction.NewExtractor(nil)}
		_, err := p.Prepare(t.Context(), resumeFile(), types.AnalysisContext{InputMode: types.ModeRole})
		var valErr *analysis.ValidationError
		assert.True(t, errors.As(err, &valErr))
	})

	t.Run("url without fetcher", func(t *testing.T) {
		p := &Preparer{Extractor: extraction.NewExtractor(nil)}
		_, err := p.Prepare(t.Context(), resumeFile(), jdByURL)
		var valErr *analysis.ValidationError
		require.True(t, errors.As(err, &valErr))
		assert.Equal(t, "job_url", valErr.Field)
	})

	t.Run("fetch failure", func(t *testing.T) {
		p := &Preparer{Extractor: extraction.NewExtractor(nil), Fetcher: &stubFetcher{err: &fetch.Error{URL: jdByURL.JobURL, Message: "HTTP status 404"}}}
		_, err := p.Prepare(t.Context(), resumeFile(), jdByURL)
		var fetchErr *fetch.Error
		assert.True(t, errors.As(err, &fetchErr))
	})

	t.Run("extraction failure", func(t *testing.T) {
		p := &Preparer{Extractor: extraction.NewExtractor(nil), Fetcher: &stubFetcher{text: "jd"}}
		_, err := p.Prepare(t.Context(), extraction.File{Name: "scan.png", MIMEType: "image/png"}, jdByURL)
		var unsupported *extraction.UnsupportedFormatError
		assert.True(t, errors.As(err, &unsupported))
	})
}
