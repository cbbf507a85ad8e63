// Package sections holds the editable section model of a resume: the canonical taxonomy,
// the header-driven parser that rebuilds it from extracted text, the editing operations and
// the merge of AI suggestions and improvements into it.
package sections

// ID identifies a section. Canonical ids are fixed; user-added sections get generated ids.
type ID string

// Canonical section ids, in default display order.
const (
	Summary        ID = "summary"
	Experience     ID = "experience"
	Skills         ID = "skills"
	Education      ID = "education"
	Projects       ID = "projects"
	Certifications ID = "certifications"
)

// CustomIDPrefix prefixes ids generated for user-added sections.
const CustomIDPrefix = "custom-"

// NewSectionTitle is the placeholder title of a user-added section.
const NewSectionTitle = "New Section"

// Bullet prefixes lines merged in from suggestions and improvements.
const Bullet = "• "

// Section is one named block of resume content. Title is editable independently of ID.
type Section struct {
	ID      ID     `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// defaultTitles holds the canonical titles in taxonomy order.
var defaultTitles = []struct {
	id    ID
	title string
}{
	{Summary, "Professional Summary"},
	{Experience, "Work Experience"},
	{Skills, "Skills"},
	{Education, "Education"},
	{Projects, "Projects"},
	{Certifications, "Certifications"},
}

// DefaultSections returns the six canonical sections with empty content.
func DefaultSections() []Section {
	out := make([]Section, 0, len(defaultTitles))
	for _, d := range defaultTitles {
		out = append(out, Section{ID: d.id, Title: d.title})
	}
	return out
}

// DefaultTitle returns the canonical title for id, or "" for non-canonical ids.
func DefaultTitle(id ID) string {
	for _, d := range defaultTitles {
		if d.id == id {
			return d.title
		}
	}
	return ""
}

// AlwaysPresent reports whether id is one of the permanent slots that survive parsing
// when empty and can never be removed.
func AlwaysPresent(id ID) bool {
	switch id {
	case Summary, Experience, Skills, Education:
		return true
	default:
		return false
	}
}
