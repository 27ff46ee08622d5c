package chunk_engine

import (
	"sort"
	"strings"

	"github.com/estavel/ingesta/internal/models"
)

// Thesaurus looks up related terms for a single lowercase token.
type Thesaurus interface {
	Synonyms(token string) []string
}

// StaticThesaurus is a table-backed Thesaurus. The default table covers the
// recall-critical domain vocabulary; a richer backend can be swapped in at
// construction time.
type StaticThesaurus map[string][]string

func (t StaticThesaurus) Synonyms(token string) []string {
	return t[token]
}

// DefaultThesaurus returns the built-in synonym table.
func DefaultThesaurus() StaticThesaurus {
	return StaticThesaurus{
		"vulnerability": {"flaw", "weakness", "exposure"},
		"attack":        {"exploit", "intrusion", "compromise"},
		"error":         {"fault", "failure", "defect"},
		"document":      {"file", "record", "report"},
		"security":      {"safety", "protection"},
		"network":       {"lan", "infrastructure"},
		"user":          {"account", "identity"},
		"update":        {"patch", "upgrade", "fix"},
	}
}

// maxSynonymsPerToken caps expansion so a single token cannot flood the query.
const maxSynonymsPerToken = 5

// ExpandQuery returns a copy of meta with a query_expanded key when meta
// carries a query: the original query followed by space-joined related
// terms. The input map is never mutated; absent a query (or a nil
// thesaurus) the input is returned unchanged.
func ExpandQuery(meta models.Metadata, th Thesaurus) models.Metadata {
	query, ok := meta.Query()
	if !ok || th == nil {
		return meta
	}

	seen := map[string]struct{}{}
	var terms []string
	for _, token := range strings.Fields(strings.ToLower(query)) {
		syns := th.Synonyms(token)
		if len(syns) > maxSynonymsPerToken {
			syns = syns[:maxSynonymsPerToken]
		}
		for _, s := range syns {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			terms = append(terms, s)
		}
	}
	if len(terms) == 0 {
		return meta
	}
	sort.Strings(terms) // deterministic output for identical inputs

	out := meta.Clone()
	out[models.MetaQueryExpanded] = query + " " + strings.Join(terms, " ")
	return out
}
