package budget

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/sevigo/lltranslate/prompts"
	"github.com/sevigo/lltranslate/tokenizer"
)

// Estimator counts the tokens of a rendered translation prompt. It keeps no
// state between calls, so identical inputs yield identical estimates.
type Estimator struct {
	counter     tokenizer.Counter
	template    prompts.PromptTemplate
	limits      Limits
	outputRatio float64
	policy      Policy
	logger      *slog.Logger
}

type Option func(*Estimator)

func WithLimits(limits Limits) Option {
	return func(e *Estimator) {
		e.limits = limits
	}
}

// WithOutputRatio sets the output/input token multiplier.
func WithOutputRatio(ratio float64) Option {
	return func(e *Estimator) {
		if ratio > 0 {
			e.outputRatio = ratio
		}
	}
}

func WithContextMargin(margin int) Option {
	return func(e *Estimator) {
		if margin >= 0 {
			e.policy.Margin = margin
		}
	}
}

func WithSafetyFactor(factor float64) Option {
	return func(e *Estimator) {
		if factor > 0 && factor < 1 {
			e.policy.SafetyFactor = factor
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Estimator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEstimator returns an estimator for prompts built from template. A nil
// counter falls back to the character heuristic.
func NewEstimator(counter tokenizer.Counter, template prompts.PromptTemplate, opts ...Option) *Estimator {
	if counter == nil {
		counter = tokenizer.NewHeuristic(tokenizer.DefaultCharsPerToken)
	}
	e := &Estimator{
		counter:     counter,
		template:    template,
		limits:      Limits{ContextLimit: DefaultContextLimit, MaxCeiling: DefaultMaxCeiling},
		outputRatio: DefaultOutputRatio,
		policy:      DefaultPolicy(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "budget_estimator")
	return e
}

func (e *Estimator) Limits() Limits {
	return e.limits
}

func (e *Estimator) Policy() Policy {
	return e.policy
}

// CounterName identifies the token counter behind the estimates.
func (e *Estimator) CounterName() string {
	return e.counter.Name()
}

// Estimate counts the template without its placeholder, the text alone and
// the rendered prompt, then predicts the output from the input count.
func (e *Estimator) Estimate(ctx context.Context, text string) (TokenEstimate, error) {
	system, err := e.counter.CountTokens(ctx, e.template.Strip())
	if err != nil {
		return TokenEstimate{}, fmt.Errorf("count template tokens: %w", err)
	}
	input, err := e.counter.CountTokens(ctx, text)
	if err != nil {
		return TokenEstimate{}, fmt.Errorf("count input tokens: %w", err)
	}
	totalInput, err := e.counter.CountTokens(ctx, e.template.Render(text))
	if err != nil {
		return TokenEstimate{}, fmt.Errorf("count prompt tokens: %w", err)
	}

	output := int(float64(input) * e.outputRatio)
	return TokenEstimate{
		SystemTokens:     system,
		InputTokens:      input,
		TotalInputTokens: totalInput,
		OutputTokens:     output,
		TotalTokens:      totalInput + output,
		Counter:          e.counter.Name(),
	}, nil
}

// Evaluate estimates text and decides which band it falls into.
func (e *Estimator) Evaluate(ctx context.Context, text string) (Report, error) {
	est, err := e.Estimate(ctx, text)
	if err != nil {
		return Report{}, err
	}

	chars := utf8.RuneCountInString(text)
	report := Report{
		Chars:    chars,
		Limits:   e.limits,
		Estimate: est,
		Decision: e.policy.Decide(est, chars, e.limits),
	}

	e.logger.DebugContext(ctx, "token budget evaluated",
		"chars", chars,
		"total_tokens", est.TotalTokens,
		"context_limit", e.limits.ContextLimit,
		"band", report.Decision.Band.String(),
		"counter", est.Counter,
	)
	return report, nil
}
