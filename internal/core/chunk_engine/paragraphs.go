package chunk_engine

import (
	"regexp"
	"strings"
)

// tocLine matches table-of-contents entries: "1.2 Some Title ..... 17".
var tocLine = regexp.MustCompile(`^\d+(?:\.\d+)*\s+.+\s+\d+$`)

// summaryWords matches headings that introduce non-content front matter.
// Portuguese keywords are kept alongside English ones; the corpus is mixed.
// \b is ASCII-only in Go, so the boundaries are spelled out with \p{L}.
var summaryWords = regexp.MustCompile(`(?:^|[^\p{L}])(sum[aá]rio|índice|table of contents|contents?)(?:[^\p{L}]|$)`)

// DefaultMinParagraphLen drops fragments too short to carry meaning.
const DefaultMinParagraphLen = 50

// FilterParagraphs splits text on blank lines and drops non-content
// paragraphs: short fragments, ToC-style lines and summary/index blocks.
// The three checks are independent exclusion predicates; a paragraph
// survives only by failing all of them.
func FilterParagraphs(text string, minLen int) []string {
	if minLen <= 0 {
		minLen = DefaultMinParagraphLen
	}

	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if len(p) < minLen {
			continue
		}
		if tocLine.MatchString(p) {
			continue
		}
		if summaryWords.MatchString(strings.ToLower(p)) {
			continue
		}
		out = append(out, p)
	}
	return out
}
