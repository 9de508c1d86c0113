package schema

import (
	"strings"
	"time"
)

// ParagraphSeparator delimits paragraphs in documents and joins translated
// chunks in the assembled output.
const ParagraphSeparator = "\n\n"

// Chunk is a contiguous run of whole paragraphs taken from a Document.
type Chunk struct {
	// Index is the zero-based position of the chunk in its document.
	Index int
	// Source identifies the document the chunk was cut from.
	Source string
	Text   string
	// Length is the character (rune) count of Text.
	Length int
}

func (c Chunk) String() string {
	return c.Text
}

// TranslationResult pairs a chunk with its translation. When the translation
// failed Translated holds the original chunk text and Fallback is set.
type TranslationResult struct {
	Chunk      Chunk
	Translated string
	Fallback   bool
	Err        error
	Attempts   int
	Duration   time.Duration
	Quality    float64
}

// Assemble joins results in chunk order using sep.
func Assemble(results []TranslationResult, sep string) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Translated
	}
	return strings.Join(parts, sep)
}
