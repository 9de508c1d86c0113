package tokenizer

import (
	"context"

	"github.com/sevigo/lltranslate/llms"
)

// Model counts tokens with the serving model's own tokenizer, e.g. the
// prompt evaluation count reported by an Ollama server.
type Model struct {
	tokenizer llms.Tokenizer
}

var _ Counter = (*Model)(nil)

func NewModel(t llms.Tokenizer) *Model {
	return &Model{tokenizer: t}
}

func (m *Model) CountTokens(ctx context.Context, text string) (int, error) {
	if m.tokenizer == nil {
		return 0, ErrNoModelCounter
	}
	return m.tokenizer.CountTokens(ctx, text)
}

func (m *Model) Name() string {
	return "model"
}
