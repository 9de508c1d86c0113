package ollama_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/lltranslate/llms"
	"github.com/sevigo/lltranslate/llms/ollama"
	"github.com/sevigo/lltranslate/llms/ollama/ollamaclient"
	"github.com/sevigo/lltranslate/testutil"
)

func newTestLLM(t *testing.T, handler http.HandlerFunc) *ollama.LLM {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	llm, err := ollama.New(
		ollama.WithModel("typhoon-translate"),
		ollama.WithServerURL(server.URL),
	)
	require.NoError(t, err)
	return llm
}

func TestNew_RequiresModel(t *testing.T) {
	_, err := ollama.New()
	assert.ErrorIs(t, err, ollama.ErrInvalidModel)
}

func TestNew_LogsServerURL(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	_, err := ollama.New(
		ollama.WithModel("typhoon-translate"),
		ollama.WithServerURL("http://ollama.internal:11434"),
		ollama.WithLogger(logger),
	)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "url=http://ollama.internal:11434")
}

func TestGenerateContent_SendsDecodingOptions(t *testing.T) {
	var got map[string]any
	llm := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"typhoon-translate","response":"  สวัสดี  ","done":true,"prompt_eval_count":12,"eval_count":3}`))
	})

	out, err := llm.Call(context.Background(), "Hello",
		llms.WithOptions(llms.CallOptions{
			Temperature: llms.Ptr(0.2), TopP: llms.Ptr(0.85), MaxTokens: 6000, NumCtx: 16384,
			RepeatPenalty: llms.Ptr(1.1), TopK: llms.Ptr(40),
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, "  สวัสดี  ", out)

	assert.Equal(t, "typhoon-translate", got["model"])
	assert.Equal(t, "Hello", got["prompt"])
	assert.Equal(t, false, got["stream"])

	opts, ok := got["options"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 0.2, opts["temperature"], 1e-6)
	assert.InDelta(t, 0.85, opts["top_p"], 1e-6)
	assert.InDelta(t, 6000, opts["num_predict"], 1e-6)
	assert.InDelta(t, 16384, opts["num_ctx"], 1e-6)
	assert.InDelta(t, 40, opts["top_k"], 1e-6)
	assert.InDelta(t, 1.1, opts["repeat_penalty"], 1e-6)
}

func TestGenerateContent_ZeroTemperatureIsSent(t *testing.T) {
	var got map[string]any
	llm := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"response":"ok","done":true}`))
	})

	_, err := llm.Call(context.Background(), "Hello", llms.WithTemperature(0), llms.WithMaxTokens(100))
	require.NoError(t, err)

	opts, ok := got["options"].(map[string]any)
	require.True(t, ok)
	temp, present := opts["temperature"]
	require.True(t, present, "explicit zero temperature must reach the server")
	assert.InDelta(t, 0, temp, 1e-9)
	assert.NotContains(t, opts, "top_p")
	assert.NotContains(t, opts, "top_k")
	assert.NotContains(t, opts, "repeat_penalty")
}

func TestGenerateContent_EmptyResponseIsAccepted(t *testing.T) {
	llm := newTestLLM(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response":"","done":true}`))
	})

	out, err := llm.Call(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGenerateContent_MissingResponseField(t *testing.T) {
	llm := newTestLLM(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"done":true}`))
	})

	_, err := llm.Call(context.Background(), "Hello")
	assert.ErrorIs(t, err, ollamaclient.ErrMalformedResponse)
}

func TestGenerateContent_InvalidJSON(t *testing.T) {
	llm := newTestLLM(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := llm.Call(context.Background(), "Hello")
	assert.ErrorIs(t, err, ollamaclient.ErrMalformedResponse)
}

func TestGenerateContent_HTTPError(t *testing.T) {
	llm := newTestLLM(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model crashed"}`))
	})

	_, err := llm.Call(context.Background(), "Hello")
	require.Error(t, err)

	var statusErr ollamaclient.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "model crashed", statusErr.ErrorMessage)
}

func TestGetModelDetails(t *testing.T) {
	llm := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/show", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"details": {"family": "llama", "parameter_size": "8B", "quantization_level": "Q4_K_M"},
			"model_info": {"general.architecture": "llama", "llama.context_length": 131072}
		}`))
	})

	details, err := llm.GetModelDetails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "typhoon-translate", details.Name)
	assert.Equal(t, "llama", details.Family)
	assert.Equal(t, "8B", details.ParameterSize)
	assert.Equal(t, "Q4_K_M", details.Quantization)
	assert.Equal(t, 131072, details.ContextLength)
}

func TestGetModelDetails_NotFound(t *testing.T) {
	llm := newTestLLM(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'typhoon-translate' not found"}`))
	})

	_, err := llm.GetModelDetails(context.Background())
	assert.ErrorIs(t, err, ollama.ErrModelNotFound)

	exists, err := llm.ModelExists(context.Background())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListModels(t *testing.T) {
	llm := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[{"name":"typhoon-translate:latest"},{"name":"gemma3:4b"}]}`))
	})

	names, err := llm.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"typhoon-translate:latest", "gemma3:4b"}, names)
}

func TestCountTokens(t *testing.T) {
	llm := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		opts, _ := req["options"].(map[string]any)
		assert.InDelta(t, 1, opts["num_predict"], 1e-6)
		_, _ = w.Write([]byte(`{"response":"x","done":true,"prompt_eval_count":42}`))
	})

	n, err := llm.CountTokens(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	n, err = llm.CountTokens(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, n)
}
