package ollamaclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/ollama/ollama/api"
)

const (
	DefaultOllamaURL = "http://127.0.0.1:11434"
	DefaultTimeout   = 10 * time.Minute
	MaxBufferSize    = 512 * 1024
)

// ErrMalformedResponse is returned when a generate reply has no response field.
var ErrMalformedResponse = errors.New("ollamaclient: malformed response")

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

var jsonBufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}

func NewClient(baseURL *url.URL, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if baseURL == nil {
		var err error
		baseURL, err = getDefaultURL()
		if err != nil {
			return nil, err
		}
	}

	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:      100,
				IdleConnTimeout:   90 * time.Second,
				MaxConnsPerHost:   100,
				ForceAttemptHTTP2: true,
			},
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger.With("component", "ollama_client"),
	}, nil
}

// BaseURL returns the server address requests are sent to.
func (c *Client) BaseURL() *url.URL {
	return c.baseURL
}

func getDefaultURL() (*url.URL, error) {
	host := os.Getenv("OLLAMA_URL")
	if host == "" {
		host = DefaultOllamaURL
	}

	baseURL, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OLLAMA_URL: %w", err)
	}

	return baseURL, nil
}

// GenerateOnce performs a non-streaming completion. A reply that decodes but
// carries no "response" field yields ErrMalformedResponse.
func (c *Client) GenerateOnce(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	stream := false
	body := *req
	body.Stream = &stream

	var envelope generateEnvelope
	if err := c.doRequest(ctx, http.MethodPost, "/api/generate", &body, &envelope); err != nil {
		return nil, fmt.Errorf("generate request failed: %w", err)
	}
	if envelope.Response == nil {
		return nil, ErrMalformedResponse
	}

	return envelope.toResponse(), nil
}

// Generate streams newline-delimited responses to callback.
func (c *Client) Generate(ctx context.Context, req *GenerateRequest, callback func(GenerateResponse) error) error {
	return c.streamRequest(ctx, http.MethodPost, "/api/generate", req, func(data []byte) error {
		var resp GenerateResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return fmt.Errorf("failed to unmarshal generate response: %w", err)
		}
		return callback(resp)
	})
}

func (c *Client) List(ctx context.Context) (*api.ListResponse, error) {
	var resp api.ListResponse
	err := c.doRequest(ctx, http.MethodGet, "/api/tags", nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("list models request failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) Show(ctx context.Context, req *api.ShowRequest) (*api.ShowResponse, error) {
	var resp api.ShowResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/show", req, &resp)
	if err != nil {
		return nil, fmt.Errorf("show model request failed: %w", err)
	}
	return &resp, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, reqData, respData any) error {
	var reqBody io.Reader
	if reqData != nil {
		body, err := c.prepareRequestBody(reqData)
		if err != nil {
			return err
		}
		defer func() {
			if closer, ok := body.(io.Closer); ok {
				_ = closer.Close()
			}
		}()
		reqBody = body
	}

	request, err := c.buildRequest(ctx, method, path, reqBody)
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	start := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer response.Body.Close()

	c.logger.Debug("ollama request finished",
		"method", method,
		"path", path,
		"status", response.StatusCode,
		"duration", time.Since(start),
	)

	if err := c.checkError(response); err != nil {
		return err
	}

	if respData != nil {
		if err := json.NewDecoder(response.Body).Decode(respData); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
	}

	return nil
}

func (c *Client) streamRequest(ctx context.Context, method, path string, reqData any, callback func([]byte) error) error {
	body, err := c.prepareRequestBody(reqData)
	if err != nil {
		return err
	}
	defer func() {
		if closer, ok := body.(io.Closer); ok {
			_ = closer.Close()
		}
	}()

	req, err := c.buildRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		c.logger.Error("ollama stream request failed",
			"status", resp.StatusCode,
			"method", method,
			"path", path,
			"error", err,
		)
		return err
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, MaxBufferSize), MaxBufferSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := callback(line); err != nil {
			return fmt.Errorf("callback error: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read error: %w", err)
	}

	return nil
}

func (c *Client) prepareRequestBody(reqData any) (io.Reader, error) {
	buf, ok := jsonBufferPool.Get().(*bytes.Buffer)
	if !ok {
		return nil, errors.New("failed get data from buffer")
	}
	buf.Reset()

	if err := json.NewEncoder(buf).Encode(reqData); err != nil {
		jsonBufferPool.Put(buf)
		return nil, fmt.Errorf("failed to encode request data: %w", err)
	}

	return struct {
		io.Reader
		io.Closer
	}{
		Reader: buf,
		Closer: closerFunc(func() {
			jsonBufferPool.Put(buf)
		}),
	}, nil
}

func (c *Client) buildRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	requestURL := c.baseURL.JoinPath(path)

	request, err := http.NewRequestWithContext(ctx, method, requestURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	return request, nil
}

func (c *Client) checkError(response *http.Response) error {
	if response.StatusCode < http.StatusBadRequest {
		return nil
	}

	statusErr := StatusError{
		Status:     response.Status,
		StatusCode: response.StatusCode,
	}

	raw, _ := io.ReadAll(io.LimitReader(response.Body, 64*1024))
	var apiError struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &apiError); err == nil && apiError.Error != "" {
		statusErr.ErrorMessage = apiError.Error
	} else if len(raw) > 0 {
		statusErr.ErrorMessage = string(bytes.TrimSpace(raw))
	}

	return statusErr
}
