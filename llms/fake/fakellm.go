package fake

import (
	"context"
	"errors"
	"sync"

	"github.com/sevigo/lltranslate/llms"
	"github.com/sevigo/lltranslate/schema"
)

// HandlerFunc computes the reply for a prompt. It overrides the canned
// responses when set.
type HandlerFunc func(ctx context.Context, prompt string, opts llms.CallOptions) (string, error)

// LLM is an in-memory model for tests. It cycles through canned responses or
// delegates to a HandlerFunc, and records every prompt it receives.
type LLM struct {
	mu          sync.Mutex
	responses   []string
	handler     HandlerFunc
	index       int
	prompts     []string
	lastOptions llms.CallOptions
	callCount   int
}

var (
	_ llms.Model     = (*LLM)(nil)
	_ llms.Tokenizer = (*LLM)(nil)
)

func NewFakeLLM(responses []string) *LLM {
	return &LLM{
		responses: responses,
	}
}

// NewWithHandler returns a fake that answers every call with handler.
func NewWithHandler(handler HandlerFunc) *LLM {
	return &LLM{handler: handler}
}

// GenerateContent returns the next predefined response in the cycle.
func (f *LLM) GenerateContent(
	ctx context.Context,
	messages []schema.MessageContent,
	options ...llms.CallOption,
) (*schema.ContentResponse, error) {
	opts := llms.Apply(options...)

	f.mu.Lock()
	prompt := ""
	if len(messages) > 0 {
		prompt = messages[len(messages)-1].GetTextContent()
	}
	f.prompts = append(f.prompts, prompt)
	f.lastOptions = opts
	f.callCount++
	handler := f.handler

	var response string
	if handler == nil {
		if len(f.responses) == 0 {
			f.mu.Unlock()
			return nil, errors.New("no responses configured")
		}
		response = f.responses[f.index]
		f.index = (f.index + 1) % len(f.responses)
	}
	f.mu.Unlock()

	if handler != nil {
		var err error
		response, err = handler(ctx, prompt, opts)
		if err != nil {
			return nil, err
		}
	}

	return &schema.ContentResponse{
		Choices: []*schema.ContentChoice{
			{Content: response},
		},
	}, nil
}

// Call is a simplified interface for generating responses from a string prompt.
func (f *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

// CountTokens counts one token per four runes.
func (f *LLM) CountTokens(_ context.Context, text string) (int, error) {
	return len([]rune(text)) / 4, nil
}

// Reset resets the response index and call history.
func (f *LLM) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.index = 0
	f.callCount = 0
	f.prompts = nil
	f.lastOptions = llms.CallOptions{}
}

// AddResponse appends a new response to the list.
func (f *LLM) AddResponse(response string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, response)
}

// LastPrompt returns the last prompt sent to the LLM.
func (f *LLM) LastPrompt() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return "", false
	}
	return f.prompts[len(f.prompts)-1], true
}

// Prompts returns every prompt received, in call order.
func (f *LLM) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// LastOptions returns the decoding options of the most recent call.
func (f *LLM) LastOptions() llms.CallOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOptions
}

// GetCallCount returns the number of times the LLM was called.
func (f *LLM) GetCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount
}
