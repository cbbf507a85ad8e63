package sections

import "strings"

// Improvement is a before/after rewrite proposed by the analysis.
type Improvement struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// ApplySuggestion appends text as a bullet line to the skills section, creating the section
// when it is missing. Calling it twice appends twice.
func (c *Collection) ApplySuggestion(text string) {
	bullet := Bullet + text
	if i := c.indexOf(Skills); i >= 0 {
		c.sections[i].Content = appendLine(c.sections[i].Content, bullet)
		return
	}
	c.sections = append(c.sections, Section{ID: Skills, Title: DefaultTitle(Skills), Content: bullet})
}

// ApplyImprovement replaces the first occurrence of imp.Before in the first section, in
// display order, whose content contains it. Only that section changes. When no section
// contains it, imp.After is appended as a bullet to the experience section instead.
//
// Before is matched verbatim; a paraphrased Before falls through to the append. It reports
// whether an in-place replacement happened.
func (c *Collection) ApplyImprovement(imp Improvement) bool {
	if imp.Before != "" {
		for i := range c.sections {
			if strings.Contains(c.sections[i].Content, imp.Before) {
				c.sections[i].Content = strings.Replace(c.sections[i].Content, imp.Before, imp.After, 1)
				return true
			}
		}
	}

	if i := c.indexOf(Experience); i >= 0 {
		c.sections[i].Content = appendLine(c.sections[i].Content, Bullet+imp.After)
	}
	return false
}

func appendLine(content, line string) string {
	if content == "" {
		return line
	}
	return content + "\n" + line
}
