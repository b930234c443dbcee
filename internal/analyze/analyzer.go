// Package analyze turns a day's aggregate into a ValueNarrative.
//
// Two paths produce the narrative: a one-shot LLM call (OpenAI or
// Gemini) gated on configuration and credentials, and a deterministic
// fallback derived from the category histogram. The analyzer never
// returns an error to its caller; every failure on the AI path is
// logged and replaced by the fallback, and the narrative's provenance
// flag records which path actually ran.
package analyze

import (
	"context"
	"log/slog"
	"time"

	"github.com/gitday/gitday/internal/config"
	apperrors "github.com/gitday/gitday/internal/errors"
	"github.com/gitday/gitday/internal/models"
)

// completer is the provider-side interface: one JSON-mode completion
type completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Name() string
}

// Analyzer produces exactly one ValueNarrative per run
type Analyzer struct {
	client  completer // nil when AI analysis is unavailable
	timeout time.Duration
	logger  *slog.Logger
}

// New creates an analyzer from configuration. When AI analysis is
// disabled, uncredentialed, or the provider client cannot be built,
// the analyzer still works: it just always takes the fallback path.
func New(ctx context.Context, cfg *config.Config) *Analyzer {
	logger := slog.Default().With("component", "analyzer")

	a := &Analyzer{
		timeout: cfg.AI.Timeout,
		logger:  logger,
	}
	if a.timeout <= 0 {
		a.timeout = 60 * time.Second
	}

	if !cfg.AI.Enabled {
		logger.Info("ai analysis disabled, fallback path only")
		return a
	}
	if cfg.Credential() == "" {
		logger.Warn("ai analysis enabled but no api key configured", "provider", cfg.AI.Provider)
		return a
	}

	switch cfg.AI.Provider {
	case "openai":
		a.client = newOpenAIClient(cfg.AI.OpenAIKey, cfg.AI.OpenAIModel)
		logger.Info("openai client initialized", "model", cfg.AI.OpenAIModel)
	case "gemini":
		client, err := newGeminiClient(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiModel)
		if err != nil {
			logger.Warn("failed to create gemini client, fallback path only", "error", err)
			return a
		}
		a.client = client
		logger.Info("gemini client initialized", "model", cfg.AI.GeminiModel)
	default:
		logger.Warn("unknown ai provider, fallback path only", "provider", cfg.AI.Provider)
	}
	return a
}

// Enabled reports whether the AI path will be attempted
func (a *Analyzer) Enabled() bool {
	return a.client != nil
}

// Provider returns the active provider name, or "none"
func (a *Analyzer) Provider() string {
	if a.client == nil {
		return "none"
	}
	return a.client.Name()
}

// Analyze returns the narrative for the day. It never fails: any
// AI-path error is logged, recorded on the narrative for report
// disclosure, and answered with the deterministic fallback.
func (a *Analyzer) Analyze(ctx context.Context, agg *models.DayAggregate) models.ValueNarrative {
	if a.client == nil || agg.Empty() {
		return Fallback(agg)
	}

	narrative, err := a.analyzeAI(ctx, agg)
	if err != nil {
		a.logger.Warn("ai analysis failed, using fallback", "provider", a.client.Name(), "error", err)
		fb := Fallback(agg)
		fb.AnalysisErr = err.Error()
		return fb
	}
	return narrative
}

// analyzeAI makes the single LLM attempt. No retry: a failed or
// timed-out call is an AnalysisError and the caller falls back.
func (a *Analyzer) analyzeAI(ctx context.Context, agg *models.DayAggregate) (models.ValueNarrative, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := BuildPrompt(agg)
	a.logger.Debug("ai analysis request", "provider", a.client.Name(), "prompt_length", len(prompt))

	raw, err := a.client.CompleteJSON(ctx, systemPrompt, prompt)
	if err != nil {
		return models.ValueNarrative{}, apperrors.AnalysisError(err, "completion failed")
	}

	parsed := ParseResponse(raw)
	switch parsed.Kind {
	case ResponseStructured:
		return models.ValueNarrative{
			Summary:      parsed.Narrative.Summary,
			KeyValues:    parsed.Narrative.KeyValues,
			Achievements: parsed.Narrative.Achievements,
			NextSteps:    parsed.Narrative.NextSteps,
			Provenance:   models.ProvenanceAI,
			Provider:     a.client.Name(),
		}, nil
	case ResponseRawText:
		return models.ValueNarrative{}, apperrors.AnalysisErrorf("response is not a json object")
	default:
		return models.ValueNarrative{}, apperrors.AnalysisError(parsed.Err, "response failed schema validation")
	}
}
