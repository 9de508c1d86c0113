package tokenizer

import (
	"context"
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used for approximate counts.
const DefaultEncoding = "cl100k_base"

// Tiktoken counts tokens with a byte-pair encoding. Loading the encoding needs
// its rank file, either cached locally (TIKTOKEN_CACHE_DIR) or downloaded.
type Tiktoken struct {
	encoding string
	tke      *tiktoken.Tiktoken
}

var _ Counter = (*Tiktoken)(nil)

func NewTiktoken(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	tke, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: load encoding %s: %w", ErrUnavailable, encoding, err)
	}
	return &Tiktoken{encoding: encoding, tke: tke}, nil
}

func (t *Tiktoken) CountTokens(_ context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	return len(t.tke.Encode(text, nil, nil)), nil
}

func (t *Tiktoken) Name() string {
	return "tiktoken(" + t.encoding + ")"
}
