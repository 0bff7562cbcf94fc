package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"autoprice/internal/llm"
	"autoprice/internal/port"
	"autoprice/mocks"
)

func generation(provider string) *port.Generation {
	return &port.Generation{Text: `{"year": 2020}`, Model: provider + "-model", Provider: provider}
}

func TestFallbackGenerator_FirstSucceeds(t *testing.T) {
	g1 := new(mocks.MockTextGenerator)
	g2 := new(mocks.MockTextGenerator)
	g1.On("Generate", mock.Anything, "prompt").Return(generation("gemini"), nil)

	fg := llm.NewFallbackGenerator([]port.TextGenerator{g1, g2}, []string{"gemini", "claude"}, zap.NewNop())

	out, err := fg.Generate(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "gemini", out.Provider)
	g2.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestFallbackGenerator_FirstFails_SecondSucceeds(t *testing.T) {
	g1 := new(mocks.MockTextGenerator)
	g2 := new(mocks.MockTextGenerator)
	g1.On("Generate", mock.Anything, "prompt").Return(nil, errors.New("boom"))
	g2.On("Generate", mock.Anything, "prompt").Return(generation("claude"), nil)

	fg := llm.NewFallbackGenerator([]port.TextGenerator{g1, g2}, []string{"gemini", "claude"}, zap.NewNop())

	out, err := fg.Generate(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "claude", out.Provider)
}

func TestFallbackGenerator_RateLimitedOpensCircuit(t *testing.T) {
	g1 := new(mocks.MockTextGenerator)
	g2 := new(mocks.MockTextGenerator)
	g1.On("Generate", mock.Anything, "prompt").Return(nil, llm.NewRateLimitError("gemini", errors.New("429"), 60)).Once()
	g2.On("Generate", mock.Anything, "prompt").Return(generation("claude"), nil)

	fg := llm.NewFallbackGenerator([]port.TextGenerator{g1, g2}, []string{"gemini", "claude"}, zap.NewNop())

	_, err := fg.Generate(context.Background(), "prompt")
	require.NoError(t, err)

	// Second call skips the rate-limited generator entirely.
	out, err := fg.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "claude", out.Provider)
	g1.AssertNumberOfCalls(t, "Generate", 1)
	g2.AssertNumberOfCalls(t, "Generate", 2)
}

func TestFallbackGenerator_AllRateLimited(t *testing.T) {
	g1 := new(mocks.MockTextGenerator)
	g2 := new(mocks.MockTextGenerator)
	g1.On("Generate", mock.Anything, "prompt").Return(nil, llm.NewRateLimitError("gemini", errors.New("429"), 30))
	g2.On("Generate", mock.Anything, "prompt").Return(nil, llm.NewRateLimitError("claude", errors.New("429"), 90))

	fg := llm.NewFallbackGenerator([]port.TextGenerator{g1, g2}, []string{"gemini", "claude"}, zap.NewNop())

	_, err := fg.Generate(context.Background(), "prompt")

	var rlErr *llm.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)
	assert.InDelta(t, 30, rlErr.RetryAfter.Seconds(), 1)
}

func TestFallbackGenerator_AllFailed(t *testing.T) {
	g1 := new(mocks.MockTextGenerator)
	g2 := new(mocks.MockTextGenerator)
	last := errors.New("server exploded")
	g1.On("Generate", mock.Anything, "prompt").Return(nil, llm.NewRateLimitError("gemini", errors.New("429"), 30))
	g2.On("Generate", mock.Anything, "prompt").Return(nil, last)

	fg := llm.NewFallbackGenerator([]port.TextGenerator{g1, g2}, []string{"gemini", "claude"}, zap.NewNop())

	_, err := fg.Generate(context.Background(), "prompt")

	assert.ErrorIs(t, err, last)
	var rlErr *llm.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestFallbackGenerator_NoProviders(t *testing.T) {
	fg := llm.NewFallbackGenerator(nil, nil, zap.NewNop())

	_, err := fg.Generate(context.Background(), "prompt")

	assert.ErrorIs(t, err, llm.ErrNoProviders)
}
