package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jonathan/resume-editor/internal/editor"
	"github.com/jonathan/resume-editor/internal/rendering"
	"github.com/jonathan/resume-editor/internal/types"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Merge analysis recommendations into a resume and render it",
	Long: `Opens an editing session from the output of "analyze", applies the selected suggestions and
improvements and renders the result as plain text or LaTeX.

Indices refer to the suggestions and improvements arrays of the analysis file.`,
	RunE: runExport,
}

var (
	exportAnalysis     string
	exportResume       string
	exportSuggestions  string
	exportImprovements string
	exportApplyAll     bool
	exportFormat       string
	exportTemplate     string
	exportName         string
	exportEmail        string
	exportPhone        string
	exportOut          string
)

func init() {
	exportCmd.Flags().StringVarP(&exportAnalysis, "analysis", "a", "", "Path to the JSON written by analyze (required)")
	exportCmd.Flags().StringVarP(&exportResume, "resume", "r", "", "Resume file to use instead of the text stored in the analysis")
	exportCmd.Flags().StringVar(&exportSuggestions, "suggestions", "", "Comma-separated suggestion indices to apply")
	exportCmd.Flags().StringVar(&exportImprovements, "improvements", "", "Comma-separated improvement indices to apply")
	exportCmd.Flags().BoolVar(&exportApplyAll, "apply-all", false, "Apply every suggestion and improvement")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "txt", "Output format: txt or tex")
	exportCmd.Flags().StringVarP(&exportTemplate, "template", "t", "", "Path to a LaTeX template (tex only)")
	exportCmd.Flags().StringVarP(&exportName, "name", "n", "", "Candidate name")
	exportCmd.Flags().StringVarP(&exportEmail, "email", "e", "", "Candidate email")
	exportCmd.Flags().StringVar(&exportPhone, "phone", "", "Candidate phone number")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
	_ = exportCmd.MarkFlagRequired("analysis")
	exportCmd.MarkFlagsMutuallyExclusive("apply-all", "suggestions")
	exportCmd.MarkFlagsMutuallyExclusive("apply-all", "improvements")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if exportFormat != "txt" && exportFormat != "tex" {
		return fmt.Errorf("unknown format %q: expected txt or tex", exportFormat)
	}

	input, err := readAnalysisFile(exportAnalysis)
	if err != nil {
		return err
	}
	resumeText := input.ResumeText
	if exportResume != "" {
		if resumeText, err = readResume(cmd, exportResume); err != nil {
			return err
		}
	}
	if strings.TrimSpace(resumeText) == "" {
		return fmt.Errorf("no resume text: the analysis file has none and --resume was not given")
	}

	session := editor.NewSession(resumeText, input.Analysis, input.Context)
	session.SetContact(types.Contact{Name: exportName, Email: exportEmail, Phone: exportPhone})

	suggestions, improvements, err := exportSelection(input.Analysis)
	if err != nil {
		return err
	}
	for _, i := range suggestions {
		if err := session.ApplySuggestion(i); err != nil {
			return err
		}
	}
	appended := 0
	for _, i := range improvements {
		replaced, err := session.ApplyImprovement(i)
		if err != nil {
			return err
		}
		if !replaced {
			appended++
		}
	}

	var out string
	if exportFormat == "tex" {
		if out, err = rendering.RenderLaTeX(session.ExportDocument(), exportTemplate); err != nil {
			return err
		}
	} else {
		out = rendering.RenderText(session.ExportDocument())
	}

	if exportOut == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	}
	if err := os.WriteFile(exportOut, []byte(out+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOut, err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Applied %d suggestion(s) and %d improvement(s) (%d appended to experience)\n",
		len(suggestions), len(improvements), appended)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Resume written to %s\n", exportOut)
	return nil
}

func readAnalysisFile(path string) (*analysisFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis: %w", err)
	}
	var input analysisFile
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse analysis JSON: %w", err)
	}
	if input.Analysis == nil {
		return nil, fmt.Errorf("analysis file %s has no analysis", path)
	}
	input.Analysis.Normalize()
	return &input, nil
}

// exportSelection resolves the indices to apply from the flags.
func exportSelection(result *types.AnalysisResult) (suggestions, improvements []int, err error) {
	if exportApplyAll {
		for i := range result.Suggestions {
			suggestions = append(suggestions, i)
		}
		for i := range result.Improvements {
			improvements = append(improvements, i)
		}
		return suggestions, improvements, nil
	}
	if suggestions, err = parseIndices("suggestions", exportSuggestions); err != nil {
		return nil, nil, err
	}
	if improvements, err = parseIndices("improvements", exportImprovements); err != nil {
		return nil, nil, err
	}
	return suggestions, improvements, nil
}

func parseIndices(flag, value string) ([]int, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(value, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid --%s index %q", flag, part)
		}
		out = append(out, n)
	}
	return out, nil
}
