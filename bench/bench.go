// Package bench compares decoding settings by translating a fixed set of
// sample texts under each of them.
package bench

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sevigo/lltranslate/chains"
	"github.com/sevigo/lltranslate/llms"
	"github.com/sevigo/lltranslate/prompts"
	"github.com/sevigo/lltranslate/quality"
	"github.com/sevigo/lltranslate/tokenizer"
)

const (
	// DefaultPause separates two benchmark requests.
	DefaultPause = time.Second
	// DefaultRequestTimeout bounds a single benchmark request.
	DefaultRequestTimeout = 60 * time.Second
)

// DefaultCases are short wuxia sentences used when no cases are given.
var DefaultCases = []string{
	"The young master's face turned red with anger.",
	"The ancient formation began to glow with spiritual energy.",
	"Elder Zhang stroked his beard thoughtfully.",
}

// DefaultProfiles are the decoding settings compared by default.
var DefaultProfiles = []llms.CallOptions{
	{Temperature: llms.Ptr(0.2), TopP: llms.Ptr(0.85), MaxTokens: 2000, NumCtx: 8192},
	{Temperature: llms.Ptr(0.3), TopP: llms.Ptr(0.9), MaxTokens: 4000, NumCtx: 8192},
	{Temperature: llms.Ptr(0.1), TopP: llms.Ptr(0.8), MaxTokens: 3000, NumCtx: 16384},
}

// Result is the outcome of one case under one profile.
type Result struct {
	Profile      int
	Case         int
	Success      bool
	Err          error
	ResponseTime time.Duration
	InputTokens  int
	OutputTokens int
	Quality      float64
	Response     string
}

// Summary aggregates the successful results of one profile.
type Summary struct {
	Profile         int
	Settings        llms.CallOptions
	Runs            int
	Successes       int
	AverageTime     time.Duration
	AverageQuality  float64
	AverageOutToken float64
}

// SuccessRate is the share of successful runs.
func (s Summary) SuccessRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Runs)
}

func (s Summary) String() string {
	return fmt.Sprintf("profile %d: %d/%d ok, avg %.2fs, quality %.2f",
		s.Profile+1, s.Successes, s.Runs, s.AverageTime.Seconds(), s.AverageQuality)
}

type Runner struct {
	llm     llms.Model
	prompt  prompts.PromptTemplate
	counter tokenizer.Counter
	pause   time.Duration
	timeout time.Duration
	sleep   chains.SleepFunc
	logger  *slog.Logger
}

type Option func(*Runner)

func WithPause(d time.Duration) Option {
	return func(r *Runner) {
		r.pause = d
	}
}

// WithRequestTimeout bounds each request. Zero or negative disables it.
func WithRequestTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithSleep replaces the function used for the pause between requests.
func WithSleep(sleep chains.SleepFunc) Option {
	return func(r *Runner) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRunner(llm llms.Model, prompt prompts.PromptTemplate, counter tokenizer.Counter, opts ...Option) *Runner {
	if counter == nil {
		counter = tokenizer.NewHeuristic(tokenizer.DefaultCharsPerToken)
	}
	r := &Runner{
		llm:     llm,
		prompt:  prompt,
		counter: counter,
		pause:   DefaultPause,
		timeout: DefaultRequestTimeout,
		sleep:   chains.Sleep,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "bench")
	return r
}

// Run translates every case under every profile, one request at a time.
// Failed requests are recorded, never returned. Only a canceled context
// stops the run early.
func (r *Runner) Run(ctx context.Context, cases []string, profiles []llms.CallOptions) ([]Result, error) {
	results := make([]Result, 0, len(cases)*len(profiles))
	for p, profile := range profiles {
		r.logger.InfoContext(ctx, "benchmarking profile", "profile", p+1, "decoding", profile)

		for c, text := range cases {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			results = append(results, r.runOne(ctx, p, c, text, profile))
			if err := r.sleep(ctx, r.pause); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, profile, idx int, text string, settings llms.CallOptions) Result {
	prompt := r.prompt.Render(text)
	res := Result{Profile: profile, Case: idx}
	res.InputTokens = r.countTokens(ctx, prompt, "input")

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := r.llm.Call(callCtx, prompt, llms.WithOptions(settings))
	res.ResponseTime = time.Since(start)
	if err != nil {
		res.Err = err
		r.logger.WarnContext(ctx, "benchmark request failed", "profile", profile+1, "case", idx+1, "error", err)
		return res
	}

	res.Success = true
	res.Response = out
	res.OutputTokens = r.countTokens(ctx, out, "output")
	res.Quality = quality.Score(out, text)
	return res
}

// countTokens returns 0 when the counter fails.
func (r *Runner) countTokens(ctx context.Context, text, kind string) int {
	n, err := r.counter.CountTokens(ctx, text)
	if err != nil {
		r.logger.WarnContext(ctx, "token counting failed", "kind", kind, "error", err)
		return 0
	}
	return n
}

// Summarize groups results by profile.
func Summarize(results []Result, profiles []llms.CallOptions) []Summary {
	summaries := make([]Summary, len(profiles))
	for i := range summaries {
		summaries[i] = Summary{Profile: i, Settings: profiles[i]}
	}

	for _, res := range results {
		if res.Profile < 0 || res.Profile >= len(summaries) {
			continue
		}
		s := &summaries[res.Profile]
		s.Runs++
		if !res.Success {
			continue
		}
		s.Successes++
		s.AverageTime += res.ResponseTime
		s.AverageQuality += res.Quality
		s.AverageOutToken += float64(res.OutputTokens)
	}

	for i := range summaries {
		s := &summaries[i]
		if s.Successes == 0 {
			continue
		}
		s.AverageTime /= time.Duration(s.Successes)
		s.AverageQuality /= float64(s.Successes)
		s.AverageOutToken /= float64(s.Successes)
	}
	return summaries
}
