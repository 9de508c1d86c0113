package budget

import (
	"context"
	"fmt"
	"strings"

	"github.com/sevigo/lltranslate/llms"
	"github.com/sevigo/lltranslate/textsplitter"
)

const (
	// PracticalContextCap bounds num_ctx recommendations regardless of the
	// model's advertised maximum.
	PracticalContextCap = 32768
	DefaultMaxTokens    = 4000

	RecommendedTemperature = 0.2
	RecommendedTopP        = 0.85
)

// Recommendation lists recommended settings. Zero fields carry no
// recommendation.
type Recommendation struct {
	ChunkSize   int     `json:"chunk_size,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	NumCtx      int     `json:"num_ctx,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
}

// Advice is the outcome of Advise.
type Advice struct {
	ChunkSize     int              `json:"chunk_size"`
	Current       llms.CallOptions `json:"current_settings"`
	Estimate      TokenEstimate    `json:"estimate"`
	Recommended   Recommendation   `json:"recommended_settings"`
	Warnings      []string         `json:"warnings"`
	Optimizations []string         `json:"optimizations"`
}

// Advise estimates a synthetic chunk of chunkSize characters under the
// current decoding settings and recommends changes. The estimator ceiling
// stands in for the model's maximum context length.
func (e *Estimator) Advise(ctx context.Context, chunkSize int, current llms.CallOptions) (Advice, error) {
	if chunkSize <= 0 {
		return Advice{}, fmt.Errorf("%w: %d", textsplitter.ErrInvalidChunkSize, chunkSize)
	}
	if current.NumCtx <= 0 {
		current.NumCtx = e.limits.ContextLimit
	}
	if current.MaxTokens <= 0 {
		current.MaxTokens = DefaultMaxTokens
	}

	est, err := e.Estimate(ctx, strings.Repeat("x", chunkSize))
	if err != nil {
		return Advice{}, err
	}

	advice := Advice{
		ChunkSize: chunkSize,
		Current:   current,
		Estimate:  est,
		Recommended: Recommendation{
			Temperature: RecommendedTemperature,
			TopP:        RecommendedTopP,
		},
	}

	total := est.TotalTokens
	if total > current.NumCtx {
		advice.Warnings = append(advice.Warnings,
			fmt.Sprintf("Estimated total tokens (%d) exceeds current context length (%d)", total, current.NumCtx))
		safe := int(float64(chunkSize) * (float64(current.NumCtx) / float64(total)) * e.policy.SafetyFactor)
		advice.Recommended.ChunkSize = safe
		advice.Optimizations = append(advice.Optimizations,
			fmt.Sprintf("Reduce chunk size to %d for safe processing", safe))
	}

	if est.OutputTokens > current.MaxTokens {
		advice.Warnings = append(advice.Warnings,
			fmt.Sprintf("Estimated output tokens (%d) may exceed max_tokens (%d)", est.OutputTokens, current.MaxTokens))
		advice.Recommended.MaxTokens = int(float64(est.OutputTokens) * e.outputRatio)
	}

	maxCtx := min(e.limits.ceiling(), PracticalContextCap)
	if total*2 < maxCtx && maxCtx > current.NumCtx {
		advice.Recommended.NumCtx = maxCtx
		advice.Optimizations = append(advice.Optimizations,
			fmt.Sprintf("Increase num_ctx to %d for better context handling", maxCtx))
	}

	return advice, nil
}
