package main

import (
	"context"
	"fmt"

	"github.com/sevigo/lltranslate/budget"
	"github.com/sevigo/lltranslate/chains"
	"github.com/sevigo/lltranslate/config"
	"github.com/sevigo/lltranslate/llms"
	"github.com/sevigo/lltranslate/llms/gemini"
	"github.com/sevigo/lltranslate/llms/ollama"
	"github.com/sevigo/lltranslate/prompts"
	"github.com/sevigo/lltranslate/schema"
	"github.com/sevigo/lltranslate/tokenizer"
)

type modelInspector interface {
	GetModelDetails(ctx context.Context) (*schema.ModelDetails, error)
}

func (a *app) newLLM(ctx context.Context) (llms.Model, error) {
	switch a.cfg.Provider {
	case config.ProviderGemini:
		llm, err := gemini.New(ctx,
			gemini.WithModel(a.cfg.ModelName),
			gemini.WithAPIKey(a.cfg.GeminiAPIKey),
			gemini.WithLogger(a.logger),
		)
		if err != nil {
			return nil, err
		}
		return llm, nil
	case config.ProviderOllama:
		llm, err := ollama.New(
			ollama.WithModel(a.cfg.ModelName),
			ollama.WithServerURL(a.cfg.EndpointURL),
			ollama.WithLogger(a.logger),
		)
		if err != nil {
			return nil, err
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", a.cfg.Provider)
	}
}

// optionalLLM builds the model for commands that only use it for token
// counting and context discovery; they still work without one.
func (a *app) optionalLLM(ctx context.Context) llms.Model {
	llm, err := a.newLLM(ctx)
	if err != nil {
		a.logger.DebugContext(ctx, "model unavailable, continuing without it", "provider", a.cfg.Provider, "error", err)
		return nil
	}
	return llm
}

func (a *app) newCounter(llm llms.Model) (tokenizer.Counter, error) {
	opts := []tokenizer.Option{
		tokenizer.WithCharsPerToken(a.cfg.CharsPerToken),
		tokenizer.WithLogger(a.logger),
	}
	if tok, ok := llm.(llms.Tokenizer); ok {
		opts = append(opts, tokenizer.WithModelTokenizer(tok))
	}
	return tokenizer.New(tokenizer.Kind(a.cfg.Tokenizer), opts...)
}

// resolveCeiling asks the model for its context length when no ceiling is
// configured.
func (a *app) resolveCeiling(ctx context.Context, llm llms.Model) {
	if a.cfg.MaxContextCeiling > 0 {
		return
	}
	modelContext := 0
	if inspector, ok := llm.(modelInspector); ok {
		details, err := inspector.GetModelDetails(ctx)
		if err != nil {
			a.logger.WarnContext(ctx, "model context length unavailable", "model", a.cfg.ModelName, "error", err)
		} else {
			modelContext = details.ContextLength
		}
	}
	a.cfg.ResolveCeiling(modelContext)
	a.logger.DebugContext(ctx, "context ceiling resolved", "max_context_ceiling", a.cfg.MaxContextCeiling)
}

func (a *app) newEstimator(counter tokenizer.Counter) *budget.Estimator {
	return budget.NewEstimator(counter, prompts.DefaultTranslationPrompt,
		budget.WithLimits(a.cfg.Limits()),
		budget.WithOutputRatio(a.cfg.OutputTokensRatio),
		budget.WithContextMargin(a.cfg.ContextMargin),
		budget.WithSafetyFactor(a.cfg.SafetyFactor),
		budget.WithLogger(a.logger),
	)
}

// budgetTools builds the counter and estimator shared by the analysis
// commands.
func (a *app) budgetTools(ctx context.Context, llm llms.Model) (tokenizer.Counter, *budget.Estimator, error) {
	a.resolveCeiling(ctx, llm)
	counter, err := a.newCounter(llm)
	if err != nil {
		return nil, nil, err
	}
	return counter, a.newEstimator(counter), nil
}

func (a *app) newTranslation(ctx context.Context) (*chains.Translation, error) {
	llm, err := a.newLLM(ctx)
	if err != nil {
		return nil, err
	}
	_, est, err := a.budgetTools(ctx, llm)
	if err != nil {
		return nil, err
	}

	return chains.NewTranslation(llm, prompts.DefaultTranslationPrompt,
		chains.WithDecoding(a.cfg.Decoding()),
		chains.WithChunkSize(a.cfg.ChunkSize),
		chains.WithMaxRetries(a.cfg.Retries()),
		chains.WithRetryDelay(a.cfg.RetryDelayDuration()),
		chains.WithRequestTimeout(a.cfg.RequestTimeoutDuration()),
		chains.WithDelay(a.cfg.Delay()),
		chains.WithEncodings(a.cfg.Encodings...),
		chains.WithEstimator(est),
		chains.WithLogger(a.logger),
	)
}
