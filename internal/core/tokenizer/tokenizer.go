package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/estavel/ingesta/internal/core"
)

// ModelInfo describes one embedding model as the chunker and writer need it:
// how wide its vectors are, how many tokens it accepts, and which tokenizer
// encoding approximates its own.
type ModelInfo struct {
	Name      string
	Dim       int
	MaxSeqLen int
	Encoding  string // tiktoken encoding name; empty means heuristic counting
}

// Registry resolves model names to ModelInfo and caches one tokenizer per
// model with get-or-load semantics. Safe for concurrent use; the process
// holds exactly one Registry, owned by the composition root.
type Registry struct {
	mu     sync.Mutex
	models map[string]ModelInfo
	cache  map[string]core.Tokenizer
}

func NewRegistry() *Registry {
	return &Registry{
		models: make(map[string]ModelInfo),
		cache:  make(map[string]core.Tokenizer),
	}
}

// Register declares a model. Re-registering a name replaces its info and
// drops any cached tokenizer for it.
func (r *Registry) Register(info ModelInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[info.Name] = info
	delete(r.cache, info.Name)
}

// Lookup returns the info for a registered model.
func (r *Registry) Lookup(name string) (ModelInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.models[name]
	if !ok {
		return ModelInfo{}, fmt.Errorf("unknown embedding model %q", name)
	}
	return info, nil
}

// Tokenizer returns the cached tokenizer for a model, loading it on first
// use. Models without a tiktoken encoding get the rune heuristic.
func (r *Registry) Tokenizer(name string) (core.Tokenizer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tk, ok := r.cache[name]; ok {
		return tk, nil
	}
	info, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown embedding model %q", name)
	}

	var tk core.Tokenizer
	if info.Encoding == "" {
		tk = Heuristic{}
	} else {
		enc, err := tiktoken.GetEncoding(info.Encoding)
		if err != nil {
			return nil, fmt.Errorf("load encoding %q for model %q: %w", info.Encoding, name, err)
		}
		tk = &bpeTokenizer{enc: enc}
	}
	r.cache[name] = tk
	return tk, nil
}

// bpeTokenizer counts tokens with a tiktoken BPE encoding.
type bpeTokenizer struct {
	enc *tiktoken.Tiktoken
}

func (t *bpeTokenizer) Count(text string) (int, error) {
	return len(t.enc.Encode(text, nil, nil)), nil
}
