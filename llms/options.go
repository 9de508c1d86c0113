package llms

import "log/slog"

type CallOption func(*CallOptions)

// CallOptions is the decoding configuration of a single request. Values are
// passed to the backend unchanged. Nil sampling fields and zero MaxTokens or
// NumCtx leave the backend default; an explicit zero temperature is sent.
type CallOptions struct {
	Model         string         `json:"model" yaml:"model"`
	Temperature   *float64       `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	TopP          *float64       `json:"top_p,omitempty" yaml:"top_p,omitempty"`
	TopK          *int           `json:"top_k,omitempty" yaml:"top_k,omitempty"`
	MaxTokens     int            `json:"max_tokens" yaml:"max_tokens"`
	NumCtx        int            `json:"num_ctx" yaml:"num_ctx"`
	RepeatPenalty *float64       `json:"repeat_penalty,omitempty" yaml:"repeat_penalty,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty" yaml:"-"`
}

// LogValue lists the fields that are set.
func (o CallOptions) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 7)
	if o.Model != "" {
		attrs = append(attrs, slog.String("model", o.Model))
	}
	if o.Temperature != nil {
		attrs = append(attrs, slog.Float64("temperature", *o.Temperature))
	}
	if o.TopP != nil {
		attrs = append(attrs, slog.Float64("top_p", *o.TopP))
	}
	if o.TopK != nil {
		attrs = append(attrs, slog.Int("top_k", *o.TopK))
	}
	if o.MaxTokens > 0 {
		attrs = append(attrs, slog.Int("max_tokens", o.MaxTokens))
	}
	if o.NumCtx > 0 {
		attrs = append(attrs, slog.Int("num_ctx", o.NumCtx))
	}
	if o.RepeatPenalty != nil {
		attrs = append(attrs, slog.Float64("repeat_penalty", *o.RepeatPenalty))
	}
	return slog.GroupValue(attrs...)
}

// Ptr returns a pointer to v, for building CallOptions literals.
func Ptr[T any](v T) *T {
	return &v
}

// Apply returns the options produced by applying opts to a zero CallOptions.
func Apply(opts ...CallOption) CallOptions {
	o := CallOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithOptions copies a whole decoding profile.
func WithOptions(options CallOptions) CallOption {
	return func(o *CallOptions) {
		*o = options
	}
}

func WithModel(model string) CallOption {
	return func(o *CallOptions) {
		o.Model = model
	}
}

func WithTemperature(temperature float64) CallOption {
	return func(o *CallOptions) {
		o.Temperature = &temperature
	}
}

func WithTopP(topP float64) CallOption {
	return func(o *CallOptions) {
		o.TopP = &topP
	}
}

func WithTopK(topK int) CallOption {
	return func(o *CallOptions) {
		o.TopK = &topK
	}
}

// WithMaxTokens caps the number of generated tokens.
func WithMaxTokens(maxTokens int) CallOption {
	return func(o *CallOptions) {
		o.MaxTokens = maxTokens
	}
}

// WithNumCtx sets the context window the server should allocate.
func WithNumCtx(numCtx int) CallOption {
	return func(o *CallOptions) {
		o.NumCtx = numCtx
	}
}

func WithRepeatPenalty(penalty float64) CallOption {
	return func(o *CallOptions) {
		o.RepeatPenalty = &penalty
	}
}
