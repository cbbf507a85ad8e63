package sections

import (
	"regexp"
	"strings"
)

// HeaderRule maps a line-start pattern to the section a matching header line opens.
type HeaderRule struct {
	ID      ID
	Pattern *regexp.Regexp
}

// Matches reports whether line opens the rule's section.
func (r HeaderRule) Matches(line string) bool {
	return r.Pattern != nil && r.Pattern.MatchString(line)
}

// headerPattern builds a case-insensitive, line-start anchored alternation. Spaces inside a
// synonym match any run of whitespace, including none ("WorkExperience").
func headerPattern(synonyms ...string) *regexp.Regexp {
	alts := make([]string, 0, len(synonyms))
	for _, s := range synonyms {
		words := strings.Fields(s)
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		alts = append(alts, strings.Join(words, `\s*`))
	}
	return regexp.MustCompile(`(?i)^(` + strings.Join(alts, "|") + `)`)
}

var defaultRules = []HeaderRule{
	{Summary, headerPattern("professional summary", "summary", "objective", "about me", "profile")},
	{Experience, headerPattern("work experience", "experience", "employment", "professional experience", "work history")},
	{Skills, headerPattern("skills", "technical skills", "core competencies", "competencies", "technologies")},
	{Education, headerPattern("education", "academic", "qualifications", "academic qualifications")},
	{Projects, headerPattern("projects", "personal projects", "academic projects", "key projects")},
	{Certifications, headerPattern("certifications", "certificates", "licenses", "awards", "achievements")},
}

// DefaultHeaderRules returns the header rules in priority order. The first matching rule wins.
func DefaultHeaderRules() []HeaderRule {
	out := make([]HeaderRule, len(defaultRules))
	copy(out, defaultRules)
	return out
}

// Parse rebuilds the canonical section collection from extracted resume text.
func Parse(text string) *Collection {
	return ParseWith(text, defaultRules)
}

// ParseWith parses text using rules instead of the default header rules. Rules naming ids
// outside the canonical taxonomy are ignored since the parser never invents sections.
//
// Lines before the first recognized header belong to the summary. Header lines are consumed;
// blank lines are dropped. Projects and certifications are kept only when they received
// content.
func ParseWith(text string, rules []HeaderRule) *Collection {
	secs := DefaultSections()
	index := make(map[ID]int, len(secs))
	for i, s := range secs {
		index[s.ID] = i
	}

	active := make([]HeaderRule, 0, len(rules))
	for _, r := range rules {
		if _, known := index[r.ID]; known {
			active = append(active, r)
		}
	}

	current := Summary
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if id, ok := matchHeader(trimmed, active); ok {
			current = id
			continue
		}

		s := &secs[index[current]]
		if s.Content != "" {
			s.Content += "\n"
		}
		s.Content += trimmed
	}

	kept := make([]Section, 0, len(secs))
	for _, s := range secs {
		if strings.TrimSpace(s.Content) != "" || AlwaysPresent(s.ID) {
			kept = append(kept, s)
		}
	}
	return &Collection{sections: kept}
}

func matchHeader(line string, rules []HeaderRule) (ID, bool) {
	for _, r := range rules {
		if r.Matches(line) {
			return r.ID, true
		}
	}
	return "", false
}
