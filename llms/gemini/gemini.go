package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/sevigo/lltranslate/llms"
	"github.com/sevigo/lltranslate/schema"
)

var (
	ErrNoAPIKey      = errors.New("gemini: API key is required")
	ErrInvalidModel  = errors.New("gemini: invalid model specified")
	ErrNoContent     = errors.New("gemini: no content generated")
	ErrNoMessages    = errors.New("gemini: no messages to send")
	ErrSystemMessage = errors.New("gemini: system message must be the first message in the conversation")
)

// LLM is a hosted alternative to the local Ollama backend.
type LLM struct {
	client  *genai.Client
	options options
	logger  *slog.Logger
}

var (
	_ llms.Model     = (*LLM)(nil)
	_ llms.Tokenizer = (*LLM)(nil)
)

func New(ctx context.Context, opts ...Option) (*LLM, error) {
	o := applyOptions(opts...)

	if o.apiKey == "" {
		o.apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if o.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	if o.model == "" {
		return nil, ErrInvalidModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      o.apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  o.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: o.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &LLM{
		client:  client,
		options: o,
		logger:  o.logger.With("component", "gemini_llm", "model", o.model),
	}, nil
}

func (g *LLM) Model() string {
	return g.options.model
}

func (g *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, g, prompt, options...)
}

func (g *LLM) GenerateContent(
	ctx context.Context,
	messages []schema.MessageContent,
	options ...llms.CallOption,
) (*schema.ContentResponse, error) {
	start := time.Now()
	callOpts := llms.Apply(options...)

	contents, systemInstruction, err := convertMessages(messages)
	if err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		return nil, ErrNoMessages
	}

	genConfig := generationConfig(callOpts)
	genConfig.SystemInstruction = systemInstruction

	model := g.options.model
	if callOpts.Model != "" {
		model = callOpts.Model
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, genConfig)
	duration := time.Since(start)
	if err != nil {
		g.logger.DebugContext(ctx, "gemini request failed", "error", err, "duration", duration)
		return nil, err
	}

	return responseToSchema(resp, model, duration)
}

// CountTokens asks the API for the token count of text.
func (g *LLM) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	resp, err := g.client.Models.CountTokens(ctx, g.options.model, genai.Text(text), nil)
	if err != nil {
		return 0, fmt.Errorf("gemini token counting failed: %w", err)
	}
	return int(resp.TotalTokens), nil
}

// generationConfig maps the shared decoding options. num_ctx and
// repeat_penalty have no Gemini counterpart and are ignored.
func generationConfig(opts llms.CallOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if opts.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*opts.Temperature))
	}
	if opts.TopP != nil {
		cfg.TopP = genai.Ptr(float32(*opts.TopP))
	}
	if opts.TopK != nil {
		cfg.TopK = genai.Ptr(float32(*opts.TopK))
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	return cfg
}

func convertMessages(messages []schema.MessageContent) ([]*genai.Content, *genai.Content, error) {
	contents := make([]*genai.Content, 0, len(messages))
	var systemInstruction *genai.Content

	for i, msg := range messages {
		var role genai.Role
		switch msg.Role {
		case schema.ChatMessageTypeAI:
			role = genai.RoleModel
		case schema.ChatMessageTypeSystem:
			if i != 0 {
				return nil, nil, ErrSystemMessage
			}
			systemInstruction = genai.NewContentFromText(msg.GetTextContent(), genai.RoleUser)
			continue
		default:
			role = genai.RoleUser
		}
		contents = append(contents, genai.NewContentFromText(msg.GetTextContent(), role))
	}
	return contents, systemInstruction, nil
}

func responseToSchema(resp *genai.GenerateContentResponse, model string, duration time.Duration) (*schema.ContentResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, ErrNoContent
	}

	choice := resp.Candidates[0]
	if choice.Content == nil {
		return nil, ErrNoContent
	}

	var builder strings.Builder
	for _, part := range choice.Content.Parts {
		builder.WriteString(part.Text)
	}

	var totalTokens int32
	if resp.UsageMetadata != nil {
		totalTokens = resp.UsageMetadata.TotalTokenCount
	}

	return &schema.ContentResponse{
		Choices: []*schema.ContentChoice{
			{
				Content:    builder.String(),
				StopReason: string(choice.FinishReason),
				GenerationInfo: map[string]any{
					"TotalTokens": totalTokens,
					"Duration":    duration,
					"Model":       model,
				},
			},
		},
	}, nil
}
