package rendering

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/resume-editor/internal/sections"
	"github.com/jonathan/resume-editor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	return Document{
		Contact: types.Contact{Name: "Jane Doe", Email: "jane@example.com", Phone: "+1 555 0100"},
		Sections: []sections.Section{
			{ID: sections.Summary, Title: "Professional Summary", Content: "Backend engineer & SRE"},
			{ID: sections.Experience, Title: "Work Experience", Content: "Acme Corp\n• Cut p99 latency 40%\n- Owned on_call rotation\n\nGlobex"},
			{ID: sections.Skills, Title: "Skills", Content: "• Go\n• Kubernetes"},
			{ID: sections.Education, Title: "Education", Content: ""},
		},
	}
}

func TestBuildTemplateData(t *testing.T) {
	data := BuildTemplateData(sampleDocument())

	assert.Equal(t, "Jane Doe", data.Name)
	assert.Equal(t, "jane@example.com | +1 555 0100", data.ContactLine)
	require.Len(t, data.Sections, 3, "empty sections are skipped")

	assert.Equal(t, []Block{{Text: `Backend engineer \& SRE`}}, data.Sections[0].Blocks)
	assert.Equal(t, []Block{
		{Text: "Acme Corp"},
		{Items: []string{`Cut p99 latency 40\%`, `Owned on\_call rotation`}},
		{Text: "Globex"},
	}, data.Sections[1].Blocks)
	assert.Equal(t, []Block{{Items: []string{"Go", "Kubernetes"}}}, data.Sections[2].Blocks)
}

func TestStripBullet(t *testing.T) {
	tests := []struct {
		line   string
		want   string
		bullet bool
	}{
		{"• Go", "Go", true},
		{"-  Docker", "Docker", true},
		{"* Helm", "Helm", true},
		{"-5% churn", "-5% churn", false},
		{"*nix tooling", "*nix tooling", false},
		{"•", "•", false},
		{"Go", "Go", false},
	}
	for _, tt := range tests {
		got, ok := stripBullet(tt.line)
		assert.Equal(t, tt.want, got, tt.line)
		assert.Equal(t, tt.bullet, ok, tt.line)
	}
}

func TestRenderLaTeX_DefaultTemplate(t *testing.T) {
	out, err := RenderLaTeX(sampleDocument(), "")
	require.NoError(t, err)

	assert.Contains(t, out, `\documentclass`)
	assert.Contains(t, out, `{\LARGE\bfseries Jane Doe}`)
	assert.Contains(t, out, `\section*{Work Experience}`)
	assert.Contains(t, out, `\item Cut p99 latency 40\%`)
	assert.Contains(t, out, `\item Kubernetes`)
	assert.NotContains(t, out, `\section*{Education}`)
	assert.Contains(t, out, `\end{document}`)
}

func TestRenderLaTeX_CustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mini.tex")
	tmpl := "{{.Name}}{{range .Sections}}|{{.Title}}{{end}}|{{escape \"50%\"}}"
	require.NoError(t, os.WriteFile(path, []byte(tmpl), 0o644))

	out, err := RenderLaTeX(sampleDocument(), path)
	require.NoError(t, err)
	assert.Equal(t, `Jane Doe|Professional Summary|Work Experience|Skills|50\%`, out)
}

func TestRenderLaTeX_Errors(t *testing.T) {
	var tmplErr *TemplateError

	_, err := RenderLaTeX(sampleDocument(), filepath.Join(t.TempDir(), "missing.tex"))
	require.True(t, errors.As(err, &tmplErr))
	assert.Contains(t, err.Error(), "not found")

	bad := filepath.Join(t.TempDir(), "bad.tex")
	require.NoError(t, os.WriteFile(bad, []byte("{{range}}"), 0o644))
	_, err = RenderLaTeX(sampleDocument(), bad)
	assert.True(t, errors.As(err, &tmplErr))

	wrongField := filepath.Join(t.TempDir(), "field.tex")
	require.NoError(t, os.WriteFile(wrongField, []byte("{{.Company}}"), 0o644))
	_, err = RenderLaTeX(sampleDocument(), wrongField)
	assert.True(t, errors.As(err, &tmplErr))

	var renderErr *RenderError
	_, err = RenderLaTeX(Document{Sections: sections.DefaultSections()}, "")
	assert.True(t, errors.As(err, &renderErr))
}

func TestRenderText(t *testing.T) {
	out := RenderText(sampleDocument())
	assert.Equal(t, "Jane Doe\njane@example.com | +1 555 0100\n\n"+
		"Professional Summary\nBackend engineer & SRE\n\n"+
		"Work Experience\nAcme Corp\n• Cut p99 latency 40%\n- Owned on_call rotation\n\nGlobex\n\n"+
		"Skills\n• Go\n• Kubernetes", out)

	noContact := RenderText(Document{Sections: []sections.Section{{ID: sections.Skills, Title: "Skills", Content: "Go"}}})
	assert.Equal(t, "Skills\nGo", noContact)

	assert.Equal(t, "Jane", RenderText(Document{Contact: types.Contact{Name: "Jane"}}))
}
