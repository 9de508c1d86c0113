package textsplitter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sevigo/lltranslate/schema"
)

// Paragraph groups consecutive paragraphs into chunks that stay below the
// configured size. A paragraph is never split: one longer than the chunk size
// becomes a chunk of its own.
type Paragraph struct {
	opts   options
	logger *slog.Logger
}

var _ TextSplitter = (*Paragraph)(nil)

// NewParagraph creates a paragraph splitter.
func NewParagraph(opts ...Option) *Paragraph {
	o := options{
		chunkSize: DefaultChunkSize,
		separator: schema.ParagraphSeparator,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Paragraph{
		opts:   o,
		logger: o.logger.With("component", "paragraph_splitter"),
	}
}

// ChunkSize returns the configured maximum chunk size in characters.
func (s *Paragraph) ChunkSize() int {
	return s.opts.chunkSize
}

// SplitText splits text into trimmed, non-empty chunks in reading order.
// A paragraph is appended to the current chunk while the chunk length plus
// the paragraph length stays below the chunk size; otherwise the current
// chunk is flushed and a new one starts with the paragraph.
func (s *Paragraph) SplitText(_ context.Context, text string) ([]string, error) {
	if s.opts.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkSize, s.opts.chunkSize)
	}

	sep := s.opts.separator
	sepLen := utf8.RuneCountInString(sep)

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if chunk := strings.TrimSpace(current.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
		currentLen = 0
	}

	for _, paragraph := range strings.Split(text, sep) {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}

		n := utf8.RuneCountInString(paragraph)
		if currentLen+n >= s.opts.chunkSize {
			flush()
		}
		current.WriteString(paragraph)
		current.WriteString(sep)
		currentLen += n + sepLen
	}
	flush()

	return chunks, nil
}

// SplitDocument splits the document content into indexed chunks.
func (s *Paragraph) SplitDocument(ctx context.Context, doc schema.Document) ([]schema.Chunk, error) {
	texts, err := s.SplitText(ctx, doc.PageContent)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", doc.Source, err)
	}

	chunks := make([]schema.Chunk, len(texts))
	oversized := 0
	for i, text := range texts {
		n := utf8.RuneCountInString(text)
		if n > s.opts.chunkSize {
			oversized++
		}
		chunks[i] = schema.Chunk{
			Index:  i,
			Source: doc.Source,
			Text:   text,
			Length: n,
		}
	}

	if oversized > 0 {
		s.logger.WarnContext(ctx, "Paragraphs larger than the chunk size were kept whole",
			"source", doc.Source, "oversized", oversized, "chunk_size", s.opts.chunkSize)
	}
	s.logger.DebugContext(ctx, "Document split", "source", doc.Source, "chunks", len(chunks))

	return chunks, nil
}
