package tokenizer

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// DefaultCharsPerToken is the documented approximation of one token per four
// characters.
const DefaultCharsPerToken = 4.0

// Heuristic estimates tokens as characters divided by a fixed ratio.
type Heuristic struct {
	CharsPerToken float64
}

var _ Counter = Heuristic{}

func NewHeuristic(charsPerToken float64) Heuristic {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return Heuristic{CharsPerToken: charsPerToken}
}

// CountTokens never fails.
func (h Heuristic) CountTokens(_ context.Context, text string) (int, error) {
	return h.Count(text), nil
}

// Count returns floor(runes / CharsPerToken).
func (h Heuristic) Count(text string) int {
	ratio := h.CharsPerToken
	if ratio <= 0 {
		ratio = DefaultCharsPerToken
	}
	return int(float64(utf8.RuneCountInString(text)) / ratio)
}

func (h Heuristic) Name() string {
	return fmt.Sprintf("heuristic(%g chars/token)", h.CharsPerToken)
}
