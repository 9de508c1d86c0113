package llms

import (
	"context"
	"errors"

	"github.com/sevigo/lltranslate/schema"
)

// ErrEmptyResponse is returned when a model answers without any choice.
var ErrEmptyResponse = errors.New("empty response from model")

type Model interface {
	GenerateContent(ctx context.Context, messages []schema.MessageContent, options ...CallOption) (*schema.ContentResponse, error)
	Call(ctx context.Context, prompt string, options ...CallOption) (string, error)
}

type Tokenizer interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

func GenerateFromSinglePrompt(ctx context.Context, llm Model, prompt string, options ...CallOption) (string, error) {
	msg := schema.NewHumanMessage(prompt)

	resp, err := llm.GenerateContent(ctx, []schema.MessageContent{msg}, options...)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) < 1 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}
