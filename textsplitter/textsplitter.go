// Package textsplitter cuts documents into model-sized chunks.
package textsplitter

import (
	"context"

	"github.com/sevigo/lltranslate/schema"
)

// TextSplitter splits a document into ordered chunks.
type TextSplitter interface {
	SplitText(ctx context.Context, text string) ([]string, error)
	SplitDocument(ctx context.Context, doc schema.Document) ([]schema.Chunk, error)
}
