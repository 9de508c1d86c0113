package chains

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sevigo/lltranslate/budget"
	"github.com/sevigo/lltranslate/documentloaders"
	"github.com/sevigo/lltranslate/llms"
	"github.com/sevigo/lltranslate/prompts"
	"github.com/sevigo/lltranslate/quality"
	"github.com/sevigo/lltranslate/schema"
	"github.com/sevigo/lltranslate/textsplitter"
)

// ErrTimeout marks a request that exceeded the per-request timeout.
var ErrTimeout = errors.New("chains: request timed out")

// Translation splits documents into chunks and translates them one at a
// time. A chunk whose request fails is kept untranslated so the document
// is always assembled in full.
type Translation struct {
	LLM      llms.Model
	Prompt   prompts.PromptTemplate
	splitter *textsplitter.Paragraph
	opts     options
	logger   *slog.Logger
}

func NewTranslation(llm llms.Model, prompt prompts.PromptTemplate, opts ...Option) (*Translation, error) {
	if llm == nil {
		return nil, errors.New("chains: model is required")
	}
	if err := prompt.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: %d", textsplitter.ErrInvalidChunkSize, o.chunkSize)
	}

	return &Translation{
		LLM:    llm,
		Prompt: prompt,
		splitter: textsplitter.NewParagraph(
			textsplitter.WithChunkSize(o.chunkSize),
			textsplitter.WithLogger(o.logger),
		),
		opts:   o,
		logger: o.logger.With("component", "translation_chain"),
	}, nil
}

// ChunkSize returns the maximum chunk size in characters.
func (c *Translation) ChunkSize() int {
	return c.splitter.ChunkSize()
}

// Decoding returns the decoding configuration sent with each request.
func (c *Translation) Decoding() llms.CallOptions {
	return c.opts.decoding
}

// IsTimeout reports whether err is a request timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// TranslateChunk translates one chunk. Timed out requests are retried up
// to the configured retry count; any other failure, or running out of
// retries, yields the original text with Fallback set.
func (c *Translation) TranslateChunk(ctx context.Context, chunk schema.Chunk) schema.TranslationResult {
	start := time.Now()
	prompt := c.Prompt.Render(chunk.Text)
	result := schema.TranslationResult{Chunk: chunk}

	maxAttempts := 1 + c.opts.maxRetries
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.Attempts = attempt

		text, err := c.call(ctx, prompt)
		if err == nil {
			result.Translated = strings.TrimSpace(text)
			result.Duration = time.Since(start)
			result.Quality = quality.Score(result.Translated, chunk.Text)
			if result.Translated == "" {
				c.logger.WarnContext(ctx, "model returned an empty translation",
					"chunk", chunk.Index, "source", chunk.Source)
			}
			return result
		}
		lastErr = err

		if !IsTimeout(err) || ctx.Err() != nil || attempt == maxAttempts {
			break
		}
		c.logger.WarnContext(ctx, "request timed out, retrying",
			"chunk", chunk.Index, "attempt", attempt, "retry_delay", c.opts.retryDelay)
		if err := c.opts.sleep(ctx, c.opts.retryDelay); err != nil {
			lastErr = err
			break
		}
	}

	c.logger.WarnContext(ctx, "translation failed, keeping original text",
		"chunk", chunk.Index, "source", chunk.Source, "attempts", result.Attempts, "error", lastErr)

	result.Translated = chunk.Text
	result.Fallback = true
	result.Err = lastErr
	result.Duration = time.Since(start)
	return result
}

func (c *Translation) call(ctx context.Context, prompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.opts.requestTimeout)
	defer cancel()

	text, err := c.LLM.Call(reqCtx, prompt, llms.WithOptions(c.opts.decoding))
	if err != nil {
		if ctx.Err() == nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s: %w", ErrTimeout, c.opts.requestTimeout, err)
		}
		return "", err
	}
	return text, nil
}

// DocumentResult is the outcome of translating one document.
type DocumentResult struct {
	Source string
	Chunks []schema.TranslationResult
	// Budgets holds one advisory report per chunk when an estimator is set.
	Budgets []budget.Report
	Output  string
	// StructurePreserved is set for Markdown sources.
	StructurePreserved *bool
	Duration           time.Duration
}

// Fallbacks counts the chunks that were kept untranslated.
func (r *DocumentResult) Fallbacks() int {
	n := 0
	for _, c := range r.Chunks {
		if c.Fallback {
			n++
		}
	}
	return n
}

// AverageQuality averages the quality score of translated chunks.
func (r *DocumentResult) AverageQuality() float64 {
	sum, n := 0.0, 0
	for _, c := range r.Chunks {
		if !c.Fallback {
			sum += c.Quality
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// TranslateDocument splits doc and translates its chunks sequentially,
// pausing between requests. The context is only checked between chunks;
// on cancellation the partial result is returned with the context error.
func (c *Translation) TranslateDocument(ctx context.Context, doc schema.Document) (*DocumentResult, error) {
	start := time.Now()
	chunks, err := c.splitter.SplitDocument(ctx, doc)
	if err != nil {
		return nil, err
	}

	res := &DocumentResult{
		Source: doc.Source,
		Chunks: make([]schema.TranslationResult, 0, len(chunks)),
	}
	if c.opts.estimator != nil {
		res.Budgets = make([]budget.Report, 0, len(chunks))
	}

	total := len(chunks)
	c.logger.InfoContext(ctx, "translating document", "source", doc.Source, "chunks", total)

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(start)
			return res, err
		}

		if c.opts.estimator != nil {
			res.Budgets = append(res.Budgets, c.checkBudget(ctx, chunk))
		}

		result := c.TranslateChunk(ctx, chunk)
		res.Chunks = append(res.Chunks, result)

		c.logger.InfoContext(ctx, "chunk done",
			"source", doc.Source,
			"chunk", fmt.Sprintf("%d/%d", i+1, total),
			"percent", fmt.Sprintf("%.1f", float64(i+1)/float64(total)*100),
			"fallback", result.Fallback,
			"duration", result.Duration,
		)

		if i < total-1 {
			if err := c.opts.sleep(ctx, c.opts.delay); err != nil {
				res.Duration = time.Since(start)
				return res, err
			}
		}
	}

	res.Output = schema.Assemble(res.Chunks, schema.ParagraphSeparator)
	if isMarkdown(doc.Source) {
		preserved := quality.StructurePreserved(doc.PageContent, res.Output)
		res.StructurePreserved = &preserved
		if !preserved {
			c.logger.WarnContext(ctx, "markdown structure changed in translation", "source", doc.Source)
		}
	}
	res.Duration = time.Since(start)

	c.logger.InfoContext(ctx, "document translated",
		"source", doc.Source,
		"chunks", total,
		"fallbacks", res.Fallbacks(),
		"duration", res.Duration,
	)
	return res, nil
}

func (c *Translation) checkBudget(ctx context.Context, chunk schema.Chunk) budget.Report {
	report, err := c.opts.estimator.Evaluate(ctx, chunk.Text)
	if err != nil {
		c.logger.DebugContext(ctx, "budget estimate unavailable", "chunk", chunk.Index, "error", err)
		return budget.Report{Chars: chunk.Length}
	}
	switch report.Decision.Band {
	case budget.BandRaiseContext:
		c.logger.WarnContext(ctx, "chunk exceeds the context limit",
			"chunk", chunk.Index,
			"total_tokens", report.Estimate.TotalTokens,
			"suggested_context", report.Decision.SuggestedContext)
	case budget.BandShrinkChunk:
		c.logger.WarnContext(ctx, "chunk exceeds the model maximum",
			"chunk", chunk.Index,
			"total_tokens", report.Estimate.TotalTokens,
			"suggested_chunk_chars", report.Decision.SuggestedChunkChars)
	}
	return report
}

// TranslateFile loads in, translates it and writes the result to out,
// creating parent directories as needed.
func (c *Translation) TranslateFile(ctx context.Context, in, out string) (*DocumentResult, error) {
	loader := documentloaders.NewFileLoader(in,
		documentloaders.WithEncodings(c.opts.encodings...),
		documentloaders.WithLogger(c.opts.logger),
	)
	doc, err := loader.LoadDocument(ctx)
	if err != nil {
		return nil, err
	}

	res, err := c.TranslateDocument(ctx, doc)
	if err != nil {
		return res, err
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return res, fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(out, []byte(res.Output), 0o644); err != nil {
		return res, fmt.Errorf("write %s: %w", out, err)
	}

	c.logger.InfoContext(ctx, "translation saved", "output", out)
	return res, nil
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
