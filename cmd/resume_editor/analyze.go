package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-editor/internal/analysis"
	"github.com/jonathan/resume-editor/internal/extraction"
	"github.com/jonathan/resume-editor/internal/fetch"
	"github.com/jonathan/resume-editor/internal/ingestion"
	"github.com/jonathan/resume-editor/internal/llm"
	"github.com/jonathan/resume-editor/internal/observability"
	"github.com/jonathan/resume-editor/internal/types"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a resume against a job description or target role",
	Long: `Extracts the resume text, sends it to the analysis model together with the job description
(--job or --job-url) or the target role (--role) and writes the result as JSON. The output file
can be passed to "export" to merge the suggestions.`,
	RunE: runAnalyze,
}

var (
	analyzeConfigPath string
	analyzeResume     string
	analyzeRole       string
	analyzeJob        string
	analyzeJobURL     string
	analyzeOut        string
	analyzeAPIKey     string
	analyzeTier       string
	analyzeStrict     bool
	analyzeVerbose    bool
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeConfigPath, "config", "", "Path to config.json file")
	analyzeCmd.Flags().StringVarP(&analyzeResume, "resume", "r", "", "Path to the resume file: txt, pdf or docx (required)")
	analyzeCmd.Flags().StringVar(&analyzeRole, "role", "", "Target role, e.g. \"junior Go developer\"")
	analyzeCmd.Flags().StringVarP(&analyzeJob, "job", "j", "", "Path to a job description text file")
	analyzeCmd.Flags().StringVar(&analyzeJobURL, "job-url", "", "URL of the job posting to fetch")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "Write the result to this file instead of stdout")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	analyzeCmd.Flags().StringVar(&analyzeTier, "tier", string(llm.TierStandard), "Model tier: lite, standard or advanced")
	analyzeCmd.Flags().BoolVar(&analyzeStrict, "strict", false, "Fail on an unreadable model answer instead of returning the fallback result")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print a summary of the analysis to stderr")
	_ = analyzeCmd.MarkFlagRequired("resume")
	analyzeCmd.MarkFlagsMutuallyExclusive("role", "job", "job-url")
	analyzeCmd.MarkFlagsOneRequired("role", "job", "job-url")
	rootCmd.AddCommand(analyzeCmd)
}

// analysisFile is the JSON written by analyze and read by export.
type analysisFile struct {
	ResumeText string                `json:"resume_text"`
	Context    types.AnalysisContext `json:"context"`
	Analysis   *types.AnalysisResult `json:"analysis"`
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	tier := llm.ModelTier(analyzeTier)
	if tier != llm.TierLite && tier != llm.TierStandard && tier != llm.TierAdvanced {
		return fmt.Errorf("unknown tier %q: expected lite, standard or advanced", analyzeTier)
	}
	actx, err := analyzeContext()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(analyzeConfigPath)
	if err != nil {
		return err
	}
	client, err := newLLMClient(ctx, cfg, analyzeAPIKey)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	data, err := os.ReadFile(analyzeResume)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	fetchOpts := fetch.DefaultOptions()
	fetchOpts.UseBrowser = cfg.UseBrowser
	fetchOpts.Verbose = cfg.Verbose
	extractor := extraction.NewExtractor(client)
	extractor.Verbose = cfg.Verbose
	preparer := &ingestion.Preparer{Extractor: extractor, Fetcher: fetch.NewFetcher(fetchOpts)}

	req, err := preparer.Prepare(ctx, extraction.File{Name: filepath.Base(analyzeResume), Data: data}, actx)
	if err != nil {
		return err
	}

	service := analysis.NewService(client, analysis.WithTier(tier), analysis.WithStrict(analyzeStrict))
	result, err := service.Analyze(ctx, req)
	if err != nil {
		return err
	}

	if analyzeVerbose || cfg.Verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintAnalysis(result)
	}
	return writeJSON(cmd, analyzeOut, analysisFile{ResumeText: req.ResumeText, Context: req.Context, Analysis: result})
}

func analyzeContext() (types.AnalysisContext, error) {
	switch {
	case analyzeRole != "":
		return types.AnalysisContext{InputMode: types.ModeRole, RoleQuery: analyzeRole}, nil
	case analyzeJob != "":
		text, err := ingestion.ReadJobDescription(analyzeJob)
		if err != nil {
			return types.AnalysisContext{}, err
		}
		return types.AnalysisContext{InputMode: types.ModeJobDescription, JobDescription: text}, nil
	default:
		return types.AnalysisContext{InputMode: types.ModeJobDescription, JobURL: analyzeJobURL}, nil
	}
}

// writeJSON writes v indented to path, or to the command output when path is empty.
func writeJSON(cmd *cobra.Command, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Analysis written to %s\n", path)
	return nil
}
