// Package extraction turns an uploaded resume file into plain text for the section parser.
package extraction

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-editor/internal/llm"
	"github.com/jonathan/resume-editor/internal/prompts"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// File is an uploaded resume.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Extractor reads resume files. Text, PDF and DOCX are read locally; any other format, and a
// PDF with no text layer, is transcribed by the model when a client is configured.
type Extractor struct {
	client  llm.Client
	tier    llm.ModelTier
	Verbose bool
}

// NewExtractor creates an Extractor. client may be nil, which disables the model fallback.
func NewExtractor(client llm.Client) *Extractor {
	return &Extractor{client: client, tier: llm.TierLite}
}

// Extract returns the normalized text of f.
func (e *Extractor) Extract(ctx context.Context, f File) (string, error) {
	format := DetectFormat(f.Name, f.MIMEType, f.Data)

	var (
		text string
		err  error
	)
	switch format {
	case FormatText:
		text, err = readText(f.Data)
	case FormatPDF:
		text, err = readPDF(f.Data)
	case FormatDOCX:
		text, err = readDOCX(f.Data)
	default:
		if e.client == nil {
			return "", &UnsupportedFormatError{FileName: f.Name, MIMEType: f.MIMEType}
		}
	}
	if err != nil {
		return "", &ExtractError{FileName: f.Name, Format: format, Cause: err}
	}

	text = NormalizeText(text)
	if text == "" && e.client != nil && format != FormatText && format != FormatDOCX {
		if e.Verbose {
			log.Printf("[extract] no local text for %s (%s), asking the model", f.Name, format)
		}
		text, err = e.transcribe(ctx, f, format)
		if err != nil {
			return "", err
		}
		text = NormalizeText(text)
	}

	if text == "" {
		return "", &EmptyDocumentError{FileName: f.Name}
	}
	if e.Verbose {
		log.Printf("[extract] %s: %d characters (%s)", f.Name, len(text), format)
	}
	return text, nil
}

func (e *Extractor) transcribe(ctx context.Context, f File, format Format) (string, error) {
	mimeType := format.MIMEType(f.MIMEType)
	prompt, err := prompts.Render(prompts.AnalysisFile, prompts.KeyExtractText, map[string]string{
		"FileName": f.Name,
		"MIMEType": mimeType,
	})
	if err != nil {
		return "", err
	}
	system, err := prompts.Get(prompts.AnalysisFile, prompts.KeyExtractTextSystem)
	if err != nil {
		return "", err
	}

	text, err := e.client.GenerateFromDocument(ctx, llm.Document{MIMEType: mimeType, Data: f.Data}, prompt, e.tier,
		llm.WithSystemInstruction(system))
	if err != nil {
		return "", &ExtractError{FileName: f.Name, Format: format, Cause: err}
	}
	return text, nil
}

func readText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", fmt.Errorf("text file is not valid UTF-8")
	}
	return string(data), nil
}

// readPDF reads the text layer glyph by glyph and rebuilds lines from glyph positions, so
// headers stay on their own lines.
func readPDF(data []byte) (text string, err error) {
	// The pdf package panics on some malformed content streams.
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", p)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, line := range groupLines(page.Content().Text) {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// groupLines buckets glyphs by baseline, top of the page first, and joins each bucket left to
// right.
func groupLines(glyphs []pdf.Text) []string {
	rows := make(map[int64][]pdf.Text)
	for _, g := range glyphs {
		y := int64(math.Round(g.Y))
		rows[y] = append(rows[y], g)
	}

	ys := make([]int64, 0, len(rows))
	for y := range rows {
		ys = append(ys, y)
	}
	sort.Slice(ys, func(i, j int) bool { return ys[i] > ys[j] })

	lines := make([]string, 0, len(ys))
	for _, y := range ys {
		row := rows[y]
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		lines = append(lines, joinRow(row))
	}
	return lines
}

// joinRow concatenates the glyphs of one line, inserting a space where the horizontal gap
// between glyphs is wider than a fraction of the font size. Space glyphs are not emitted by
// the pdf package, so gaps are the only word boundary.
func joinRow(texts []pdf.Text) string {
	var sb strings.Builder
	for i, t := range texts {
		if i > 0 {
			prev := texts[i-1]
			gap := t.X - (prev.X + prev.W)
			if gap > math.Max(prev.FontSize, 1)*0.25 && !strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(t.S, " ") {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(t.S)
	}
	return sb.String()
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>|<w:br/>|<w:br [^>]*/>`)
	docxTab          = regexp.MustCompile(`<w:tab/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
)

// readDOCX loads the document part and flattens its XML, one line per paragraph.
func readDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	content = docxParagraphEnd.ReplaceAllString(content, "\n")
	content = docxTab.ReplaceAllString(content, "\t")
	content = xmlTag.ReplaceAllString(content, "")
	return html.UnescapeString(content), nil
}

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\v\x{00A0}\x{2007}\x{202F}]+`)
	blankRuns       = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText collapses horizontal whitespace, trims every line and keeps at most one blank
// line between blocks. Line structure is otherwise preserved.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\x00", "")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
