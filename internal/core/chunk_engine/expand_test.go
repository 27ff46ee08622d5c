package chunk_engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estavel/ingesta/internal/models"
)

func TestExpandQueryAddsSortedSynonyms(t *testing.T) {
	th := StaticThesaurus{
		"vulnerability": {"flaw", "weakness"},
		"attack":        {"exploit"},
	}
	meta := models.Metadata{models.MetaQuery: "Vulnerability attack report"}

	out := ExpandQuery(meta, th)

	expanded, ok := out[models.MetaQueryExpanded].(string)
	require.True(t, ok)
	assert.Equal(t, "Vulnerability attack report exploit flaw weakness", expanded)
}

func TestExpandQueryNeverMutatesInput(t *testing.T) {
	meta := models.Metadata{models.MetaQuery: "vulnerability"}
	out := ExpandQuery(meta, DefaultThesaurus())

	_, leaked := meta[models.MetaQueryExpanded]
	assert.False(t, leaked, "input metadata must not gain keys")
	assert.NotEqual(t, meta, out)
}

func TestExpandQueryNoQueryPassesThrough(t *testing.T) {
	meta := models.Metadata{"parent": "doc.pdf"}
	out := ExpandQuery(meta, DefaultThesaurus())
	assert.Equal(t, meta, out)
}

func TestExpandQueryNoMatchesPassesThrough(t *testing.T) {
	meta := models.Metadata{models.MetaQuery: "completely unrelated tokens"}
	out := ExpandQuery(meta, DefaultThesaurus())
	_, has := out[models.MetaQueryExpanded]
	assert.False(t, has)
}

func TestExpandQueryNilThesaurus(t *testing.T) {
	meta := models.Metadata{models.MetaQuery: "vulnerability"}
	assert.Equal(t, meta, ExpandQuery(meta, nil))
}

func TestExpandQueryDeterministic(t *testing.T) {
	meta := models.Metadata{models.MetaQuery: "vulnerability attack error update"}
	first := ExpandQuery(meta, DefaultThesaurus())
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ExpandQuery(meta, DefaultThesaurus()))
	}
}

func TestExpandQueryCapsSynonyms(t *testing.T) {
	th := StaticThesaurus{"x": {"a", "b", "c", "d", "e", "f", "g"}}
	out := ExpandQuery(models.Metadata{models.MetaQuery: "x"}, th)
	assert.Equal(t, "x a b c d e", out[models.MetaQueryExpanded])
}
