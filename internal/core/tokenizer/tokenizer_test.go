package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicCount(t *testing.T) {
	cases := map[string]int{
		"":         0,
		"a":        1,
		"abcd":     1,
		"abcde":    2,
		"çéñüíàõâ": 2, // runes, not bytes
	}
	for in, want := range cases {
		got, err := Heuristic{}.Count(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "%q", in)
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(ModelInfo{Name: "mini", Dim: 384, MaxSeqLen: 256})

	info, err := r.Lookup("mini")
	require.NoError(t, err)
	assert.Equal(t, 384, info.Dim)
	assert.Equal(t, 256, info.MaxSeqLen)

	_, err = r.Lookup("missing")
	assert.Error(t, err)
}

func TestRegistryHeuristicForEmptyEncoding(t *testing.T) {
	r := NewRegistry()
	r.Register(ModelInfo{Name: "mini", Dim: 8, MaxSeqLen: 64})

	tok, err := r.Tokenizer("mini")
	require.NoError(t, err)

	n, err := tok.Count("abcdefgh")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRegistryCachesTokenizer(t *testing.T) {
	r := NewRegistry()
	r.Register(ModelInfo{Name: "mini", Dim: 8, MaxSeqLen: 64})

	first, err := r.Tokenizer("mini")
	require.NoError(t, err)
	second, err := r.Tokenizer("mini")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRegistryReRegisterDropsCache(t *testing.T) {
	r := NewRegistry()
	r.Register(ModelInfo{Name: "mini", Dim: 8, MaxSeqLen: 64})
	_, err := r.Tokenizer("mini")
	require.NoError(t, err)

	r.Register(ModelInfo{Name: "mini", Dim: 16, MaxSeqLen: 128})
	info, err := r.Lookup("mini")
	require.NoError(t, err)
	assert.Equal(t, 16, info.Dim)
}

func TestRegistryUnknownModelTokenizer(t *testing.T) {
	_, err := NewRegistry().Tokenizer("nope")
	assert.Error(t, err)
}
