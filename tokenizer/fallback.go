package tokenizer

import (
	"context"
	"log/slog"
)

// Fallback counts with Primary and switches to Secondary for any text the
// primary counter fails on.
type Fallback struct {
	Primary   Counter
	Secondary Counter
	logger    *slog.Logger
}

var _ Counter = (*Fallback)(nil)

func NewFallback(primary, secondary Counter, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{Primary: primary, Secondary: secondary, logger: logger}
}

func (f *Fallback) CountTokens(ctx context.Context, text string) (int, error) {
	n, err := f.Primary.CountTokens(ctx, text)
	if err == nil {
		return n, nil
	}
	f.logger.WarnContext(ctx, "Token counting failed, falling back",
		"primary", f.Primary.Name(), "secondary", f.Secondary.Name(), "error", err)
	return f.Secondary.CountTokens(ctx, text)
}

func (f *Fallback) Name() string {
	return f.Primary.Name() + ", fallback " + f.Secondary.Name()
}
