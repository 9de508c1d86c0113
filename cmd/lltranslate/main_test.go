package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/lltranslate/budget"
	"github.com/sevigo/lltranslate/config"
	"github.com/sevigo/lltranslate/llms/ollama"
)

func fakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/show", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"details": map[string]any{
				"family":             "gemma3",
				"parameter_size":     "4.3B",
				"quantization_level": "Q4_K_M",
			},
			"model_info": map[string]any{
				"general.architecture":  "gemma3",
				"gemma3.context_length": 131072,
			},
		})
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `{"model":"typhoon","response":"สวัสดีชาวโลก","done":true}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, endpoint string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lltranslate.yaml")
	body := fmt.Sprintf(`provider: ollama
endpoint_url: %s
tokenizer: heuristic
delay_between_chunks: 0.001
retry_delay: 0.001
`, endpoint)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTranslateCommand(t *testing.T) {
	srv := fakeOllama(t)
	cfg := writeConfig(t, srv.URL)

	dir := t.TempDir()
	in := filepath.Join(dir, "chapter.txt")
	require.NoError(t, os.WriteFile(in, []byte("Hello world.\n\nThe elder nodded."), 0o644))
	long := filepath.Join(dir, "long.txt")
	require.NoError(t, os.WriteFile(long, []byte("First paragraph.\n\nSecond paragraph."), 0o644))

	out, err := execute(t, "", "--config", cfg, "translate", in)
	require.NoError(t, err)
	assert.Contains(t, out, "Translation")
	assert.Contains(t, out, "chapter_translated.txt")

	data, err := os.ReadFile(filepath.Join(dir, "chapter_translated.txt"))
	require.NoError(t, err)
	assert.Equal(t, "สวัสดีชาวโลก", string(data))

	custom := filepath.Join(dir, "out", "long_th.txt")
	_, err = execute(t, "", "--config", cfg, "--chunk-size", "20", "translate", long, "-o", custom)
	require.NoError(t, err)
	data, err = os.ReadFile(custom)
	require.NoError(t, err)
	assert.Equal(t, "สวัสดีชาวโลก\n\nสวัสดีชาวโลก", string(data), "one translation per chunk")
}

func TestTranslateCommand_MissingFile(t *testing.T) {
	srv := fakeOllama(t)
	cfg := writeConfig(t, srv.URL)

	_, err := execute(t, "", "--config", cfg, "translate", filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestBatchCommand(t *testing.T) {
	srv := fakeOllama(t)
	cfg := writeConfig(t, srv.URL)

	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "th")
	require.NoError(t, os.WriteFile(filepath.Join(in, "a.txt"), []byte("One."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "b.md"), []byte("Two."), 0o644))

	stdout, err := execute(t, "", "--config", cfg, "batch", in, out, "--ext", ".txt", "--prefix", "th_")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Batch")

	assert.FileExists(t, filepath.Join(out, "th_a.txt"))
	assert.NoFileExists(t, filepath.Join(out, "th_b.md"))
}

func TestTokensCommand(t *testing.T) {
	srv := fakeOllama(t)
	cfg := writeConfig(t, srv.URL)

	t.Run("within budget from stdin", func(t *testing.T) {
		out, err := execute(t, "Hello.\n\nWorld.", "--config", cfg, "tokens", "-", "--chunks")
		require.NoError(t, err)
		assert.Contains(t, out, "Token analysis")
		assert.Contains(t, out, "Within Budget")
		assert.Contains(t, out, "Chunks (1)")
		assert.NotContains(t, out, "Split plan")
	})

	t.Run("over the context limit", func(t *testing.T) {
		out, err := execute(t, strings.Repeat("word ", 400), "--config", cfg, "--context-limit", "100", "tokens", "-")
		require.NoError(t, err)
		assert.Contains(t, out, "Raise Context")
		assert.Contains(t, out, "Split plan")
	})
}

func TestOptimizeCommand_Save(t *testing.T) {
	srv := fakeOllama(t)
	cfg := writeConfig(t, srv.URL)
	saved := filepath.Join(t.TempDir(), "tuned.yaml")

	out, err := execute(t, "", "--config", cfg, "--chunk-size", "40000", "optimize", "--save", saved)
	require.NoError(t, err)
	assert.Contains(t, out, "Settings for 40000 character chunks")
	assert.Contains(t, out, "Reduce chunk size")

	tuned, err := config.LoadFile(saved)
	require.NoError(t, err)
	assert.Less(t, tuned.ChunkSize, 40000)
}

func TestModelCommand(t *testing.T) {
	srv := fakeOllama(t)
	cfg := writeConfig(t, srv.URL)

	out, err := execute(t, "", "--config", cfg, "model")
	require.NoError(t, err)
	assert.Contains(t, out, "gemma3")
	assert.Contains(t, out, "131072")
}

func TestModelCommand_NotInstalled(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/show", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, `{"error":"model 'typhoon' not found"}`)
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `{"models":[{"name":"gemma3:4b"}]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	out, err := execute(t, "", "--config", writeConfig(t, srv.URL), "model")
	assert.ErrorIs(t, err, ollama.ErrModelNotFound)
	assert.Contains(t, out, "gemma3:4b")
}

func TestConfigCommands(t *testing.T) {
	srv := fakeOllama(t)
	cfg := writeConfig(t, srv.URL)
	t.Setenv("LLTRANSLATE_MODEL_NAME", "env-model")
	t.Setenv("LLTRANSLATE_GEMINI_API_KEY", "secret")

	out, err := execute(t, "", "--config", cfg, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "model_name: env-model")
	assert.NotContains(t, out, "secret")

	path := filepath.Join(t.TempDir(), "new.yaml")
	_, err = execute(t, "", "--config", cfg, "config", "init", path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = execute(t, "", "--config", cfg, "config", "init", path)
	assert.ErrorContains(t, err, "already exists")
}

func TestProviderFlagSwitchesDefaultModel(t *testing.T) {
	srv := fakeOllama(t)
	cfg := writeConfig(t, srv.URL)

	out, err := execute(t, "", "--config", cfg, "--provider", "gemini", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "provider: gemini")
	assert.Contains(t, out, "model_name: gemini-2.5-flash")
	assert.NotContains(t, out, "typhoon")

	out, err = execute(t, "", "--config", cfg, "--provider", "gemini", "--model", "gemini-2.0-flash", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "model_name: gemini-2.0-flash")
}

func TestDiscoveredConfigKeepsZeroValues(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lltranslate.yaml"),
		[]byte("temperature: 0\ndelay_between_chunks: 0\n"), 0o644))
	t.Chdir(dir)

	out, err := execute(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "temperature: 0\n")
	assert.Contains(t, out, "delay_between_chunks: 0\n")
	assert.Contains(t, out, "top_p: 0.85", "keys missing from the file keep their defaults")
}

func TestInvalidConfig(t *testing.T) {
	srv := fakeOllama(t)
	cfg := writeConfig(t, srv.URL)

	_, err := execute(t, "", "--config", cfg, "--chunk-size=-5", "tokens", "-")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestDefaultOutputPath(t *testing.T) {
	tests := map[string]string{
		"chapter.txt":      "chapter_translated.txt",
		"dir/notes.md":     "dir/notes_translated.txt",
		"book.pdf":         "book_translated.txt",
		"no_extension":     "no_extension_translated.txt",
		"dir.v2/chapter.1": "dir.v2/chapter_translated.txt",
	}
	for in, want := range tests {
		assert.Equal(t, filepath.FromSlash(want), defaultOutputPath(filepath.FromSlash(in)), in)
	}
}

func TestApplyAdvice(t *testing.T) {
	cfg := config.Default()
	applyAdvice(cfg, budget.Advice{Recommended: budget.Recommendation{
		ChunkSize:   1500,
		NumCtx:      32768,
		Temperature: 0.2,
		TopP:        0.85,
	}})

	assert.Equal(t, 1500, cfg.ChunkSize)
	assert.Equal(t, 32768, cfg.NumCtx)
	assert.Equal(t, 6000, cfg.MaxTokens, "zero recommendations leave settings alone")
}
