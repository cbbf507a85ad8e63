package rendering

import "strings"

// latexReplacements maps characters with special meaning in LaTeX to their escaped form.
var latexReplacements = map[rune]string{
	'\\': `\textbackslash{}`,
	'{':  `\{`,
	'}':  `\}`,
	'$':  `\$`,
	'&':  `\&`,
	'%':  `\%`,
	'#':  `\#`,
	'^':  `\textasciicircum{}`,
	'_':  `\_`,
	'~':  `\textasciitilde{}`,
	'<':  `\textless{}`,
	'>':  `\textgreater{}`,
	'•':  `\textbullet{}`,
}

// EscapeLaTeX escapes characters that LaTeX would otherwise interpret.
func EscapeLaTeX(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) * 2)
	for _, r := range text {
		if repl, ok := latexReplacements[r]; ok {
			result.WriteString(repl)
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}
