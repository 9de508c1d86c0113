package ollamaclient

import (
	"fmt"
	"time"
)

// StatusError represents an error response from the Ollama API.
type StatusError struct {
	Status       string `json:"status,omitempty"`
	ErrorMessage string `json:"error"`
	StatusCode   int    `json:"code,omitempty"`
}

// Error implements the error interface for StatusError.
func (e StatusError) Error() string {
	switch {
	case e.Status != "" && e.ErrorMessage != "":
		return fmt.Sprintf("%s: %s", e.Status, e.ErrorMessage)
	case e.Status != "":
		return e.Status
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		return "something went wrong, please see the ollama server logs for details"
	}
}

// GenerateRequest represents a request to the /api/generate endpoint.
type GenerateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	System  string  `json:"system,omitempty"`
	Stream  *bool   `json:"stream,omitempty"`
	Options Options `json:"options,omitempty"`
}

// GenerateResponse represents a response from the /api/generate endpoint.
type GenerateResponse struct {
	CreatedAt          time.Time     `json:"created_at"`
	Model              string        `json:"model"`
	Response           string        `json:"response"`
	DoneReason         string        `json:"done_reason,omitempty"`
	TotalDuration      time.Duration `json:"total_duration,omitempty"`
	LoadDuration       time.Duration `json:"load_duration,omitempty"`
	PromptEvalCount    int           `json:"prompt_eval_count,omitempty"`
	PromptEvalDuration time.Duration `json:"prompt_eval_duration,omitempty"`
	EvalCount          int           `json:"eval_count,omitempty"`
	EvalDuration       time.Duration `json:"eval_duration,omitempty"`
	Done               bool          `json:"done"`
}

// generateEnvelope mirrors GenerateResponse with a nullable response so a
// missing field can be told apart from an empty completion.
type generateEnvelope struct {
	CreatedAt       time.Time     `json:"created_at"`
	Model           string        `json:"model"`
	Response        *string       `json:"response"`
	DoneReason      string        `json:"done_reason"`
	TotalDuration   time.Duration `json:"total_duration"`
	LoadDuration    time.Duration `json:"load_duration"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
	EvalDuration    time.Duration `json:"eval_duration"`
	Done            bool          `json:"done"`
}

func (e generateEnvelope) toResponse() *GenerateResponse {
	resp := &GenerateResponse{
		CreatedAt:       e.CreatedAt,
		Model:           e.Model,
		DoneReason:      e.DoneReason,
		TotalDuration:   e.TotalDuration,
		LoadDuration:    e.LoadDuration,
		PromptEvalCount: e.PromptEvalCount,
		EvalCount:       e.EvalCount,
		EvalDuration:    e.EvalDuration,
		Done:            e.Done,
	}
	if e.Response != nil {
		resp.Response = *e.Response
	}
	return resp
}

// Options contains configuration parameters for generation requests. Nil
// sampling fields are omitted so the server default applies; a non-nil zero
// is sent as is.
type Options struct {
	Stop          []string `json:"stop,omitempty"`
	Seed          int      `json:"seed,omitempty"`
	TopK          *int     `json:"top_k,omitempty"`
	NumPredict    int      `json:"num_predict,omitempty"`
	NumCtx        int      `json:"num_ctx,omitempty"`
	Temperature   *float32 `json:"temperature,omitempty"`
	RepeatPenalty *float32 `json:"repeat_penalty,omitempty"`
	TopP          *float32 `json:"top_p,omitempty"`
}
