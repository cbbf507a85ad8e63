// Package rendering turns an edited resume into export formats: a LaTeX source built from a
// template and a plain-text document.
package rendering

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/jonathan/resume-editor/internal/sections"
	"github.com/jonathan/resume-editor/internal/types"
)

//go:embed templates/default.tex
var templateFS embed.FS

const defaultTemplate = "templates/default.tex"

// Document is everything an export needs.
type Document struct {
	Contact  types.Contact
	Sections []sections.Section
}

// TemplateData represents the data structure passed to the LaTeX template. All strings are
// already escaped.
type TemplateData struct {
	Name        string
	ContactLine string
	Sections    []SectionData
}

// SectionData is one non-empty section.
type SectionData struct {
	Title  string
	Blocks []Block
}

// Block is either a run of bullet items or a single line of text.
type Block struct {
	Items []string
	Text  string
}

// RenderLaTeX renders doc with the template at templatePath, or with the built-in template
// when templatePath is empty.
func RenderLaTeX(doc Document, templatePath string) (string, error) {
	tmpl, err := parseTemplate(templatePath)
	if err != nil {
		return "", err
	}

	data := BuildTemplateData(doc)
	if len(data.Sections) == 0 {
		return "", &RenderError{Message: "document has no content"}
	}

	var result strings.Builder
	if err := tmpl.Execute(&result, data); err != nil {
		return "", &TemplateError{
			Message: "failed to execute template",
			Cause:   err,
		}
	}
	return result.String(), nil
}

func parseTemplate(templatePath string) (*template.Template, error) {
	var (
		content []byte
		err     error
	)
	if templatePath == "" {
		content, err = templateFS.ReadFile(defaultTemplate)
	} else {
		content, err = os.ReadFile(templatePath)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateError{
				Message: fmt.Sprintf("template file not found: %s", templatePath),
				Cause:   err,
			}
		}
		return nil, &TemplateError{
			Message: fmt.Sprintf("failed to read template file: %s", templatePath),
			Cause:   err,
		}
	}

	tmpl, err := template.New("resume").Funcs(template.FuncMap{
		"escape": EscapeLaTeX,
	}).Parse(string(content))
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to parse template",
			Cause:   err,
		}
	}
	return tmpl, nil
}

// BuildTemplateData escapes doc and splits each section's content into blocks. Lines that
// start with a bullet marker become itemize entries; empty sections are skipped.
func BuildTemplateData(doc Document) *TemplateData {
	data := &TemplateData{
		Name:        EscapeLaTeX(strings.TrimSpace(doc.Contact.Name)),
		ContactLine: EscapeLaTeX(contactLine(doc.Contact)),
	}

	for _, sec := range doc.Sections {
		blocks := splitBlocks(sec.Content)
		if len(blocks) == 0 {
			continue
		}
		data.Sections = append(data.Sections, SectionData{
			Title:  EscapeLaTeX(strings.TrimSpace(sec.Title)),
			Blocks: blocks,
		})
	}
	return data
}

func splitBlocks(content string) []Block {
	var blocks []Block
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		item, isBullet := stripBullet(line)
		if !isBullet {
			blocks = append(blocks, Block{Text: EscapeLaTeX(line)})
			continue
		}
		if n := len(blocks); n > 0 && blocks[n-1].Items != nil {
			blocks[n-1].Items = append(blocks[n-1].Items, EscapeLaTeX(item))
			continue
		}
		blocks = append(blocks, Block{Items: []string{EscapeLaTeX(item)}})
	}
	return blocks
}

var bulletMarkers = []string{"•", "-", "*", "–", "▪", "◦"}

// stripBullet removes a leading bullet marker. A marker must be followed by whitespace so that
// "-5% churn" or "*nix" stay text.
func stripBullet(line string) (string, bool) {
	for _, m := range bulletMarkers {
		rest, ok := strings.CutPrefix(line, m)
		if !ok {
			continue
		}
		if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
			return line, false
		}
		return strings.TrimSpace(rest), true
	}
	return line, false
}

func contactLine(c types.Contact) string {
	var parts []string
	for _, p := range []string{c.Email, c.Phone} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " | ")
}
