package chunk_engine

import (
	"regexp"
	"strings"
)

// heading matches numbered headings at line start: "2 Details", "3.1.4 Title".
var heading = regexp.MustCompile(`(?m)^\d+(?:\.\d+)*\s+.+$`)

// Section is a contiguous span of document text under an optional heading.
// Sections never overlap, and concatenating Text() over a document's
// sections in order reproduces the input exactly.
type Section struct {
	Heading string // heading line, empty for preamble or unsplit text
	Text    string // full span including the heading line
}

// SplitSections cuts text at numbered headings; the span from one heading up
// to the next forms a section. Text before the first heading becomes a
// preamble section. Fewer than two headings means the structure heuristic
// has nothing to work with, so the whole text is one section.
func SplitSections(text string) []Section {
	locs := heading.FindAllStringIndex(text, -1)
	if len(locs) < 2 {
		return []Section{{Text: text}}
	}

	var sections []Section
	if locs[0][0] > 0 {
		sections = append(sections, Section{Text: text[:locs[0][0]]})
	}
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		span := text[loc[0]:end]
		line := text[loc[0]:loc[1]]
		sections = append(sections, Section{
			Heading: strings.TrimSpace(line),
			Text:    span,
		})
	}
	return sections
}
