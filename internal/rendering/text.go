package rendering

import (
	"strings"

	"github.com/jonathan/resume-editor/internal/sections"
)

// RenderText renders doc as plain text: a contact header followed by the serialized sections.
func RenderText(doc Document) string {
	body := sections.NewCollection(doc.Sections...).Serialize()

	var header []string
	if name := strings.TrimSpace(doc.Contact.Name); name != "" {
		header = append(header, name)
	}
	if line := contactLine(doc.Contact); line != "" {
		header = append(header, line)
	}
	if len(header) == 0 {
		return body
	}
	if body == "" {
		return strings.Join(header, "\n")
	}
	return strings.Join(header, "\n") + "\n\n" + body
}
