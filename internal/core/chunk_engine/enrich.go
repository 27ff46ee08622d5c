package chunk_engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/estavel/ingesta/internal/core"
)

// Enricher densifies long sections before re-measuring their token count:
// a short summary, a named-entity list and a paraphrase are prepended to the
// original text. Every sub-step is best-effort: a failed step degrades to
// the previous text rather than failing the section.
type Enricher struct {
	llm      core.LLMProvider
	minWords int
	logger   *slog.Logger
}

// DefaultEnrichMinWords: below this there is nothing to distill.
const DefaultEnrichMinWords = 10

// NewEnricher builds an enricher over an LLM provider. A nil provider gives
// a pass-through enricher, which keeps the chunker wiring uniform.
func NewEnricher(llm core.LLMProvider, minWords int, logger *slog.Logger) *Enricher {
	if minWords <= 0 {
		minWords = DefaultEnrichMinWords
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{llm: llm, minWords: minWords, logger: logger.With("component", "enricher")}
}

const (
	summarizePrompt  = "Summarize the following text in at most half its length. Reply with the summary only."
	entitiesPrompt   = "List the named entities (people, organizations, places, products) in the following text, separated by '; '. Reply with the list only, or an empty line if there are none."
	paraphrasePrompt = "Rewrite the following text in different words, keeping its meaning. Reply with the rewritten text only."
)

// Enrich returns the enriched form of a section. Sections under the word
// minimum come back unchanged; enrichment never replaces the original text
// (an "Original:" block is always retained).
func (e *Enricher) Enrich(ctx context.Context, section string) string {
	if e.llm == nil {
		return section
	}
	if len(strings.Fields(section)) <= e.minWords {
		return section
	}

	// Summarization failure reuses the full section as the summary.
	summary, err := e.llm.Generate(ctx, summarizePrompt, section)
	if err != nil || strings.TrimSpace(summary) == "" {
		e.logger.Debug("summarization degraded", "err", err)
		summary = section
	}

	entities := ""
	if ents, err := e.llm.Generate(ctx, entitiesPrompt, section); err == nil {
		entities = strings.TrimSpace(ents)
	} else {
		e.logger.Debug("entity extraction degraded", "err", err)
	}

	// Paraphrase failure reuses the summary.
	paraphrase, err := e.llm.Generate(ctx, paraphrasePrompt, summary)
	if err != nil || strings.TrimSpace(paraphrase) == "" {
		e.logger.Debug("paraphrase degraded", "err", err)
		paraphrase = summary
	}

	var b strings.Builder
	if entities != "" {
		b.WriteString("Entities: ")
		b.WriteString(entities)
		b.WriteByte('\n')
	}
	b.WriteString("Paraphrase: ")
	b.WriteString(strings.TrimSpace(paraphrase))
	b.WriteByte('\n')
	b.WriteString("Original: ")
	b.WriteString(section)
	return b.String()
}
