package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitday/gitday/internal/config"
	"github.com/gitday/gitday/internal/models"
)

// fakeCompleter stands in for a provider client
type fakeCompleter struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompleter) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.response, f.err
}

func (f *fakeCompleter) Name() string { return "fake" }

func testAnalyzer(client completer) *Analyzer {
	return &Analyzer{
		client:  client,
		timeout: 5 * time.Second,
		logger:  slog.Default(),
	}
}

func TestAnalyze_StructuredResponse(t *testing.T) {
	fake := &fakeCompleter{
		response: `{"summary": "Shipped exports.", "key_values": ["Reporting unblocked"], "next_steps": "Add tests."}`,
	}
	a := testAnalyzer(fake)

	n := a.Analyze(context.Background(), aggFixture())

	assert.Equal(t, models.ProvenanceAI, n.Provenance)
	assert.Equal(t, "fake", n.Provider)
	assert.Equal(t, "Shipped exports.", n.Summary)
	assert.Equal(t, "Add tests.", n.NextSteps)
	assert.Empty(t, n.AnalysisErr)
	assert.Equal(t, 1, fake.calls, "exactly one attempt, no retries")
}

func TestAnalyze_ProviderErrorFallsBack(t *testing.T) {
	fake := &fakeCompleter{err: fmt.Errorf("rate limited")}
	a := testAnalyzer(fake)

	n := a.Analyze(context.Background(), aggFixture())

	assert.Equal(t, models.ProvenanceFallback, n.Provenance)
	assert.NotEmpty(t, n.Summary, "fallback always produces a summary")
	assert.Contains(t, n.AnalysisErr, "rate limited")
	assert.Equal(t, 1, fake.calls)
}

func TestAnalyze_RawTextFallsBack(t *testing.T) {
	fake := &fakeCompleter{response: "You had a productive day!"}
	a := testAnalyzer(fake)

	n := a.Analyze(context.Background(), aggFixture())

	assert.Equal(t, models.ProvenanceFallback, n.Provenance)
	assert.NotEmpty(t, n.AnalysisErr)
}

func TestAnalyze_InvalidSchemaFallsBack(t *testing.T) {
	fake := &fakeCompleter{response: `{"key_values": ["no summary field"]}`}
	a := testAnalyzer(fake)

	n := a.Analyze(context.Background(), aggFixture())

	assert.Equal(t, models.ProvenanceFallback, n.Provenance)
	assert.NotEmpty(t, n.AnalysisErr)
}

func TestAnalyze_NilClientSkipsAI(t *testing.T) {
	a := testAnalyzer(nil)

	n := a.Analyze(context.Background(), aggFixture())

	assert.Equal(t, models.ProvenanceFallback, n.Provenance)
	assert.Empty(t, n.AnalysisErr, "fallback-only path is not an AI failure")
}

func TestAnalyze_EmptyAggregateSkipsAI(t *testing.T) {
	fake := &fakeCompleter{response: `{"summary": "x", "key_values": ["y"]}`}
	a := testAnalyzer(fake)

	n := a.Analyze(context.Background(), &models.DayAggregate{})

	assert.Equal(t, models.ProvenanceFallback, n.Provenance)
	assert.Equal(t, 0, fake.calls, "no provider call for an empty day")
}

// slowCompleter blocks until the call's deadline expires
type slowCompleter struct{}

func (s *slowCompleter) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (s *slowCompleter) Name() string { return "slow" }

func TestAnalyze_TimeoutFallsBack(t *testing.T) {
	a := &Analyzer{
		client:  &slowCompleter{},
		timeout: 20 * time.Millisecond,
		logger:  slog.Default(),
	}

	n := a.Analyze(context.Background(), aggFixture())

	assert.Equal(t, models.ProvenanceFallback, n.Provenance)
	assert.NotEmpty(t, n.Summary, "the run completes with a narrative despite the timeout")
	assert.Contains(t, n.AnalysisErr, "deadline")
}

func TestAnalyze_CancelledContextFallsBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fake := &fakeCompleter{response: `{"summary": "x", "key_values": ["y"]}`}
	a := testAnalyzer(fake)

	n := a.Analyze(ctx, aggFixture())

	assert.Equal(t, models.ProvenanceFallback, n.Provenance)
	assert.NotEmpty(t, n.AnalysisErr)
}

func TestNew_DisabledConfig(t *testing.T) {
	cfg := config.Default()
	cfg.AI.Enabled = false

	a := New(context.Background(), cfg)
	assert.False(t, a.Enabled())
	assert.Equal(t, "none", a.Provider())
}

func TestNew_NoCredential(t *testing.T) {
	cfg := config.Default()
	cfg.AI.Enabled = true
	cfg.AI.Provider = "openai"
	cfg.AI.OpenAIKey = ""

	a := New(context.Background(), cfg)
	assert.False(t, a.Enabled(), "enabled without a key still means fallback only")
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.AI.Enabled = true
	cfg.AI.Provider = "mystery"
	cfg.AI.GeminiKey = "k"

	a := New(context.Background(), cfg)
	assert.False(t, a.Enabled())
}

func TestNew_OpenAI(t *testing.T) {
	cfg := config.Default()
	cfg.AI.Enabled = true
	cfg.AI.Provider = "openai"
	cfg.AI.OpenAIKey = "sk-test"

	a := New(context.Background(), cfg)
	require.True(t, a.Enabled())
	assert.Equal(t, "openai", a.Provider())
}

func TestBuildPrompt(t *testing.T) {
	agg := aggFixture()
	agg.Repos[0].Commits[0].Message = "fix race in pool"

	prompt := BuildPrompt(agg)
	assert.Contains(t, prompt, "alpha")
	assert.Contains(t, prompt, "fix race in pool")
	assert.LessOrEqual(t, len(prompt), maxPromptChars+100)
}
