// Package budget predicts how many tokens a translation request will use and
// recommends chunk or context-window changes when the prediction does not
// fit. Every result is advisory.
package budget

import (
	"fmt"
	"math"
)

const (
	// DefaultOutputRatio is the expected length of the translation relative
	// to its input. Thai output runs about 20% longer than English input.
	DefaultOutputRatio = 1.2
	// DefaultContextMargin is added to the estimate when recommending a
	// larger context window.
	DefaultContextMargin = 1000
	// DefaultSafetyFactor leaves headroom for estimation error when
	// shrinking a chunk.
	DefaultSafetyFactor = 0.8
	DefaultContextLimit = 8192
	DefaultMaxCeiling   = 131072
)

// Limits are the context-window bounds a request is checked against.
// A zero MaxCeiling makes ContextLimit act as the ceiling.
type Limits struct {
	ContextLimit int `json:"context_limit"`
	MaxCeiling   int `json:"max_ceiling"`
}

func (l Limits) ceiling() int {
	if l.MaxCeiling <= 0 {
		return l.ContextLimit
	}
	return l.MaxCeiling
}

// TokenEstimate holds the token counts of one prompt. It is always derived
// from a chunk and a template.
type TokenEstimate struct {
	SystemTokens     int    `json:"system_prompt_tokens"`
	InputTokens      int    `json:"input_text_tokens"`
	TotalInputTokens int    `json:"total_input_tokens"`
	OutputTokens     int    `json:"estimated_output_tokens"`
	TotalTokens      int    `json:"total_estimated_tokens"`
	Counter          string `json:"counter"`
}

type Band int

const (
	BandWithin Band = iota
	BandRaiseContext
	BandShrinkChunk
)

func (b Band) String() string {
	switch b {
	case BandWithin:
		return "within budget"
	case BandRaiseContext:
		return "raise context"
	case BandShrinkChunk:
		return "exceeds maximum"
	default:
		return fmt.Sprintf("band(%d)", int(b))
	}
}

// Decision is the recommendation for one estimate. Only the field that
// matches Band is set.
type Decision struct {
	Band                Band `json:"band"`
	SuggestedContext    int  `json:"suggested_context,omitempty"`
	SuggestedChunkChars int  `json:"suggested_chunk_chars,omitempty"`
}

// Policy holds the tunable constants of the decision bands.
type Policy struct {
	Margin       int
	SafetyFactor float64
}

func DefaultPolicy() Policy {
	return Policy{Margin: DefaultContextMargin, SafetyFactor: DefaultSafetyFactor}
}

// Decide places the estimate in one of three bands:
//
//	total <= limit            within budget
//	limit < total <= ceiling  raise the context window to total + margin
//	total > ceiling           shrink the chunk to chars * ceiling/total * safety
func (p Policy) Decide(est TokenEstimate, chars int, limits Limits) Decision {
	total := est.TotalTokens
	ceiling := limits.ceiling()

	switch {
	case total <= limits.ContextLimit:
		return Decision{Band: BandWithin}
	case total <= ceiling:
		return Decision{Band: BandRaiseContext, SuggestedContext: total + p.Margin}
	default:
		factor := float64(ceiling) / float64(total)
		suggested := int(math.Floor(float64(chars) * factor * p.SafetyFactor))
		return Decision{Band: BandShrinkChunk, SuggestedChunkChars: suggested}
	}
}

// Decide applies DefaultPolicy.
func Decide(est TokenEstimate, chars int, limits Limits) Decision {
	return DefaultPolicy().Decide(est, chars, limits)
}

// Report pairs an estimate with its decision.
type Report struct {
	Chars    int           `json:"chars"`
	Limits   Limits        `json:"limits"`
	Estimate TokenEstimate `json:"estimate"`
	Decision Decision      `json:"decision"`
}

// Fits reports whether the request fits the configured context limit.
func (r Report) Fits() bool {
	return r.Decision.Band == BandWithin
}

// Plan describes how to split a text that does not fit in one request.
type Plan struct {
	Parts        int `json:"parts"`
	CharsPerPart int `json:"chars_per_part"`
}

// SplitPlan divides a text of chars characters, estimated at total tokens,
// into total/contextLimit + 1 equal parts.
func SplitPlan(total, chars, contextLimit int) Plan {
	if contextLimit <= 0 {
		return Plan{Parts: 1, CharsPerPart: chars}
	}
	parts := total/contextLimit + 1
	return Plan{Parts: parts, CharsPerPart: chars / parts}
}
