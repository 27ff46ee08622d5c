package embed_engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider returns a fixed vector or a scripted sequence of errors.
type fakeProvider struct {
	vec      []float32
	errs     []error // consumed one per call; nil entries mean success
	calls    int
	released int
}

func (f *fakeProvider) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	defer func() { f.calls++ }()
	if f.calls < len(f.errs) && f.errs[f.calls] != nil {
		return nil, f.errs[f.calls]
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

func (f *fakeProvider) ReleaseMemory() { f.released++ }

func TestEmbedNativeWidthMatches(t *testing.T) {
	p := &fakeProvider{vec: []float32{1, 2, 3, 4}}
	g := NewGenerator(p, nil, 4, nil)

	vec, degraded := g.Embed(context.Background(), "text")
	assert.False(t, degraded)
	assert.Equal(t, []float32{1, 2, 3, 4}, vec)
}

func TestEmbedShortVectorZeroPadded(t *testing.T) {
	p := &fakeProvider{vec: []float32{1, 2}}
	g := NewGenerator(p, nil, 4, nil)

	vec, degraded := g.Embed(context.Background(), "text")
	assert.False(t, degraded)
	assert.Equal(t, []float32{1, 2, 0, 0}, vec)
}

func TestEmbedLongVectorTruncated(t *testing.T) {
	p := &fakeProvider{vec: []float32{1, 2, 3, 4, 5, 6}}
	g := NewGenerator(p, nil, 4, nil)

	vec, degraded := g.Embed(context.Background(), "text")
	assert.False(t, degraded)
	assert.Equal(t, []float32{1, 2, 3, 4}, vec)
}

func TestEmbedNonOOMErrorDegradesImmediately(t *testing.T) {
	p := &fakeProvider{errs: []error{errors.New("connection refused")}}
	g := NewGenerator(p, nil, 3, nil)

	vec, degraded := g.Embed(context.Background(), "text")
	assert.True(t, degraded)
	assert.Equal(t, []float32{0, 0, 0}, vec)
	assert.Equal(t, 1, p.calls, "no retry for non-OOM failures")
}

func TestEmbedOOMRetriesOnFallback(t *testing.T) {
	primary := &fakeProvider{errs: []error{errors.New("CUDA out of memory")}}
	fallback := &fakeProvider{vec: []float32{7, 8, 9}}
	g := NewGenerator(primary, fallback, 3, nil)

	vec, degraded := g.Embed(context.Background(), "text")
	assert.False(t, degraded)
	assert.Equal(t, []float32{7, 8, 9}, vec)
	assert.Equal(t, 1, primary.released, "primary must release memory before the retry")
	assert.Equal(t, 1, fallback.calls)
}

func TestEmbedOOMWithoutFallbackRetriesPrimary(t *testing.T) {
	primary := &fakeProvider{vec: []float32{5, 5, 5}, errs: []error{errors.New("resource exhausted")}}
	g := NewGenerator(primary, nil, 3, nil)

	vec, degraded := g.Embed(context.Background(), "text")
	assert.False(t, degraded)
	assert.Equal(t, []float32{5, 5, 5}, vec)
	assert.Equal(t, 2, primary.calls)
}

func TestEmbedDoubleOOMDegradesToZeroVector(t *testing.T) {
	oom := errors.New("out of memory")
	primary := &fakeProvider{errs: []error{oom}}
	fallback := &fakeProvider{errs: []error{oom}}
	g := NewGenerator(primary, fallback, 4, nil)

	vec, degraded := g.Embed(context.Background(), "text")
	assert.True(t, degraded)
	assert.Equal(t, make([]float32, 4), vec)
}

func TestIsOOM(t *testing.T) {
	for _, msg := range []string{
		"CUDA out of memory",
		"RESOURCE EXHAUSTED: quota",
		"insufficient memory on device",
		"oom killed",
	} {
		assert.True(t, IsOOM(errors.New(msg)), msg)
	}
	assert.False(t, IsOOM(errors.New("bad request")))
	assert.False(t, IsOOM(nil))
}

func TestTargetDim(t *testing.T) {
	g := NewGenerator(&fakeProvider{}, nil, 384, nil)
	require.Equal(t, 384, g.TargetDim())
}
