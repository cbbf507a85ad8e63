package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-editor/internal/extraction"
	"github.com/jonathan/resume-editor/internal/observability"
	"github.com/jonathan/resume-editor/internal/sections"
	"github.com/spf13/cobra"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "Split a resume into its editable sections",
	Long: `Reads a resume (plain text, PDF or DOCX), extracts its text locally and prints the parsed
sections. Scanned documents that need the model for transcription are not supported here.`,
	RunE: runSections,
}

var (
	sectionsInput   string
	sectionsFormat  string
	sectionsVerbose bool
)

func init() {
	sectionsCmd.Flags().StringVarP(&sectionsInput, "in", "i", "", "Path to the resume file (required)")
	sectionsCmd.Flags().StringVarP(&sectionsFormat, "format", "f", "json", "Output format: json or text")
	sectionsCmd.Flags().BoolVarP(&sectionsVerbose, "verbose", "v", false, "Print a section overview to stderr")
	_ = sectionsCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(sectionsCmd)
}

func runSections(cmd *cobra.Command, _ []string) error {
	text, err := readResume(cmd, sectionsInput)
	if err != nil {
		return err
	}
	collection := sections.Parse(text)
	if sectionsVerbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintSections(collection.Sections())
	}

	out := cmd.OutOrStdout()
	switch sectionsFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(collection)
	case "text":
		_, err := fmt.Fprintln(out, collection.Serialize())
		return err
	default:
		return fmt.Errorf("unknown format %q: expected json or text", sectionsFormat)
	}
}

// readResume extracts the text of a resume file without a model client.
func readResume(cmd *cobra.Command, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read resume: %w", err)
	}
	return extraction.NewExtractor(nil).Extract(cmd.Context(), extraction.File{Name: filepath.Base(path), Data: data})
}
