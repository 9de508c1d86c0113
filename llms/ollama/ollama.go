package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/sevigo/lltranslate/llms"
	"github.com/sevigo/lltranslate/llms/ollama/ollamaclient"
	"github.com/sevigo/lltranslate/schema"
)

// Common errors returned by the Ollama LLM implementation.
var (
	ErrNoMessages    = errors.New("ollama: no messages provided")
	ErrModelNotFound = errors.New("ollama: model not found")
	ErrInvalidModel  = errors.New("ollama: invalid model specified")
)

// LLM talks to an Ollama server through the /api/generate endpoint.
type LLM struct {
	client  *ollamaclient.Client
	options options
	logger  *slog.Logger
}

var (
	_ llms.Model     = (*LLM)(nil)
	_ llms.Tokenizer = (*LLM)(nil)
)

func New(opts ...Option) (*LLM, error) {
	o := applyOptions(opts...)

	if o.model == "" {
		return nil, ErrInvalidModel
	}

	client, err := ollamaclient.NewClient(o.ollamaServerURL, o.httpClient, o.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}

	llm := &LLM{
		client:  client,
		options: o,
		logger:  o.logger.With("component", "ollama_llm", "model", o.model),
	}

	llm.logger.Debug("ollama LLM initialized", "url", client.BaseURL().String())
	return llm, nil
}

// Model returns the configured model name.
func (o *LLM) Model() string {
	return o.options.model
}

func (o *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, o, prompt, options...)
}

// GenerateContent sends the concatenated text of messages as a single
// non-streaming generate request. System messages become the system field.
func (o *LLM) GenerateContent(
	ctx context.Context,
	messages []schema.MessageContent,
	options ...llms.CallOption,
) (*schema.ContentResponse, error) {
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}

	opts := llms.Apply(options...)
	model := o.determineModel(opts)
	system, prompt := splitMessages(messages)

	req := &ollamaclient.GenerateRequest{
		Model:   model,
		Prompt:  prompt,
		System:  system,
		Options: toClientOptions(opts),
	}

	start := time.Now()
	resp, err := o.client.GenerateOnce(ctx, req)
	duration := time.Since(start)
	if err != nil {
		o.logger.DebugContext(ctx, "generate failed", "error", err, "duration", duration)
		return nil, err
	}

	o.logger.DebugContext(ctx, "generate completed",
		"prompt_tokens", resp.PromptEvalCount,
		"completion_tokens", resp.EvalCount,
		"duration", duration,
	)

	return &schema.ContentResponse{
		Choices: []*schema.ContentChoice{
			{
				Content:    resp.Response,
				StopReason: resp.DoneReason,
				GenerationInfo: map[string]any{
					"CompletionTokens": resp.EvalCount,
					"PromptTokens":     resp.PromptEvalCount,
					"TotalTokens":      resp.EvalCount + resp.PromptEvalCount,
					"Duration":         duration,
					"Model":            model,
				},
			},
		},
	}, nil
}

func splitMessages(messages []schema.MessageContent) (string, string) {
	var system, prompt []string
	for _, mc := range messages {
		text := mc.GetTextContent()
		if mc.Role == schema.ChatMessageTypeSystem {
			system = append(system, text)
			continue
		}
		prompt = append(prompt, text)
	}
	return strings.Join(system, "\n"), strings.Join(prompt, "\n")
}

func toClientOptions(opts llms.CallOptions) ollamaclient.Options {
	return ollamaclient.Options{
		Temperature:   toFloat32(opts.Temperature),
		TopP:          toFloat32(opts.TopP),
		TopK:          opts.TopK,
		NumPredict:    opts.MaxTokens,
		NumCtx:        opts.NumCtx,
		RepeatPenalty: toFloat32(opts.RepeatPenalty),
	}
}

func toFloat32(v *float64) *float32 {
	if v == nil {
		return nil
	}
	f := float32(*v)
	return &f
}

// ModelExists checks if the configured model is available on the server.
func (o *LLM) ModelExists(ctx context.Context) (bool, error) {
	_, err := o.client.Show(ctx, &api.ShowRequest{Model: o.options.model})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("model existence check failed: %w", err)
	}
	return true, nil
}

// ListModels returns the names of the models installed on the server.
func (o *LLM) ListModels(ctx context.Context) ([]string, error) {
	resp, err := o.client.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// GetModelDetails reports the family, size, quantization and maximum
// context length of the configured model.
func (o *LLM) GetModelDetails(ctx context.Context) (*schema.ModelDetails, error) {
	showResp, err := o.client.Show(ctx, &api.ShowRequest{Model: o.options.model})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrModelNotFound
		}
		return nil, fmt.Errorf("failed to retrieve model information: %w", err)
	}

	details := &schema.ModelDetails{
		Name:          o.options.model,
		Family:        showResp.Details.Family,
		ParameterSize: showResp.Details.ParameterSize,
		Quantization:  showResp.Details.QuantizationLevel,
		ContextLength: contextLength(showResp.ModelInfo),
	}

	o.logger.DebugContext(ctx, "model details retrieved",
		"family", details.Family,
		"parameters", details.ParameterSize,
		"quantization", details.Quantization,
		"context_length", details.ContextLength)

	return details, nil
}

// contextLength reads "<architecture>.context_length" from the model info
// map. Zero means the server did not report one.
func contextLength(info map[string]any) int {
	arch, _ := info["general.architecture"].(string)
	if arch == "" {
		return 0
	}
	switch v := info[arch+".context_length"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func isNotFound(err error) bool {
	var statusErr ollamaclient.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

// CountTokens counts tokens in text with the model's own tokenizer by
// generating a single token and reading prompt_eval_count.
func (o *LLM) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	stream := false
	req := &ollamaclient.GenerateRequest{
		Model:  o.options.model,
		Prompt: text,
		Stream: &stream,
		Options: ollamaclient.Options{
			NumPredict: 1,
		},
	}

	var tokenCount int
	err := o.client.Generate(ctx, req, func(resp ollamaclient.GenerateResponse) error {
		if resp.Done {
			tokenCount = resp.PromptEvalCount
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("token counting failed: %w", err)
	}

	return tokenCount, nil
}

func (o *LLM) determineModel(opts llms.CallOptions) string {
	if opts.Model != "" {
		return opts.Model
	}
	return o.options.model
}
