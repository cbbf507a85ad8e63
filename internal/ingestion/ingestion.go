// Package ingestion prepares an uploaded resume for analysis: the file is turned into text
// and, for job-description mode with a posting URL, the posting is fetched at the same time.
package ingestion

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/resume-editor/internal/analysis"
	"github.com/jonathan/resume-editor/internal/extraction"
	"github.com/jonathan/resume-editor/internal/types"
	"golang.org/x/sync/errgroup"
)

// TextExtractor turns an uploaded file into resume text.
type TextExtractor interface {
	Extract(ctx context.Context, f extraction.File) (string, error)
}

// JobFetcher resolves a job posting URL to its description text.
type JobFetcher interface {
	JobDescription(ctx context.Context, url string) (string, error)
}

// Preparer runs ingestion. Fetcher may be nil, in which case job URLs are rejected.
type Preparer struct {
	Extractor TextExtractor
	Fetcher   JobFetcher
}

// Prepare validates actx, then extracts the resume text and fetches the job posting
// concurrently. A job description supplied inline takes precedence over the URL. In jd mode
// the description is cleaned with CleanJobDescription.
func (p *Preparer) Prepare(ctx context.Context, file extraction.File, actx types.AnalysisContext) (analysis.Request, error) {
	if err := actx.Validate(); err != nil {
		return analysis.Request{}, &analysis.ValidationError{Field: "context", Message: err.Error()}
	}

	needsFetch := actx.InputMode == types.ModeJobDescription &&
		strings.TrimSpace(actx.JobDescription) == "" &&
		actx.JobURL != ""
	if needsFetch && p.Fetcher == nil {
		return analysis.Request{}, &analysis.ValidationError{Field: "job_url", Message: "fetching job postings is not enabled"}
	}

	var resumeText, jobText string
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		text, err := p.Extractor.Extract(gctx, file)
		if err != nil {
			return err
		}
		resumeText = text
		return nil
	})

	if needsFetch {
		g.Go(func() error {
			text, err := p.Fetcher.JobDescription(gctx, actx.JobURL)
			if err != nil {
				return fmt.Errorf("job posting: %w", err)
			}
			jobText = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return analysis.Request{}, err
	}

	if needsFetch {
		actx.JobDescription = jobText
	}
	if actx.InputMode == types.ModeJobDescription {
		actx.JobDescription = CleanJobDescription(actx.JobDescription)
	}
	return analysis.Request{ResumeText: resumeText, Context: actx}, nil
}
