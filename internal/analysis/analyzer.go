// Package analysis submits resume text to the analysis model and decodes its answer into a
// types.AnalysisResult.
package analysis

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/jonathan/resume-editor/internal/llm"
	"github.com/jonathan/resume-editor/internal/prompts"
	"github.com/jonathan/resume-editor/internal/schemas"
	"github.com/jonathan/resume-editor/internal/types"
)

// Request is one analysis submission.
type Request struct {
	ResumeText string
	Context    types.AnalysisContext
}

// Analyzer produces an analysis for a resume. Service is the model-backed implementation.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*types.AnalysisResult, error)
}

// Service analyzes resumes with an llm.Client.
type Service struct {
	client      llm.Client
	tier        llm.ModelTier
	temperature float32
	strict      bool
}

// Option configures a Service.
type Option func(*Service)

// WithTier selects the model tier used for analysis. The default is llm.TierStandard.
func WithTier(tier llm.ModelTier) Option {
	return func(s *Service) { s.tier = tier }
}

// WithStrict makes Analyze return a *ParseError for an unusable model response instead of
// the fallback result.
func WithStrict(strict bool) Option {
	return func(s *Service) { s.strict = strict }
}

// NewService creates a Service over client.
func NewService(client llm.Client, opts ...Option) *Service {
	s := &Service{client: client, tier: llm.TierStandard, temperature: 0.3}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze builds the prompt for req's input mode, calls the model and decodes the answer. A
// response that is not a valid analysis yields types.FallbackResult unless the service is
// strict.
func (s *Service) Analyze(ctx context.Context, req Request) (*types.AnalysisResult, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	system, err := prompts.Get(prompts.AnalysisFile, prompts.KeySystem)
	if err != nil {
		return nil, &APICallError{Message: "failed to load system prompt", Cause: err}
	}

	raw, err := s.client.GenerateJSON(ctx, prompt, s.tier,
		llm.WithSystemInstruction(system),
		llm.WithTemperature(s.temperature),
	)
	if err != nil {
		return nil, &APICallError{Message: "failed to generate analysis", Cause: err}
	}

	result, err := ParseResult(raw)
	if err != nil {
		if s.strict {
			return nil, err
		}
		log.Printf("[analysis] unusable model response, returning fallback: %v", err)
		return types.FallbackResult(), nil
	}
	return result, nil
}

// BuildPrompt renders the user prompt for req. Job-description mode needs the description
// text itself; a job URL must be resolved before this point.
func BuildPrompt(req Request) (string, error) {
	if strings.TrimSpace(req.ResumeText) == "" {
		return "", &ValidationError{Field: "resume_text", Message: "resume text is empty"}
	}
	if err := req.Context.Validate(); err != nil {
		return "", &ValidationError{Field: "context", Message: err.Error()}
	}

	var (
		key  string
		data = map[string]string{"ResumeText": strings.TrimSpace(req.ResumeText)}
	)
	switch req.Context.InputMode {
	case types.ModeJobDescription:
		jd := strings.TrimSpace(req.Context.JobDescription)
		if jd == "" {
			return "", &ValidationError{Field: "job_description", Message: "job description text is required"}
		}
		key = prompts.KeyAnalyzeJD
		data["JobDescription"] = jd
	default:
		key = prompts.KeyAnalyzeRole
		data["RoleQuery"] = strings.TrimSpace(req.Context.RoleQuery)
	}

	prompt, err := prompts.Render(prompts.AnalysisFile, key, data)
	if err != nil {
		return "", &ValidationError{Message: err.Error()}
	}
	return prompt, nil
}

// ParseResult decodes a model response: code fences and surrounding prose are stripped, the
// JSON is checked against the analysis schema, then decoded and normalized.
func ParseResult(raw string) (*types.AnalysisResult, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if cleaned == "" {
		return nil, &ParseError{Message: "empty response"}
	}

	if err := schemas.ValidateAnalysisResult(cleaned); err != nil {
		return nil, &ParseError{Message: "response does not match analysis schema", Cause: err}
	}

	var result types.AnalysisResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, &ParseError{Message: "failed to decode analysis", Cause: err}
	}
	result.Normalize()
	return &result, nil
}
