package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultHost = "http://localhost:11434"

// Message is one role-tagged chat message.
type Message struct {
	Role    string `json:"role"` // system, user, assistant, tool
	Content string `json:"content"`
}

// ChatRequest is the input to a single chat call.
type ChatRequest struct {
	Model    string
	Messages []Message
}

// ChatResponse is the normalized output of a chat call, whether the server
// streamed it or not.
type ChatResponse struct {
	Content string
	Model   string
}

// ChunkFunc receives incremental content fragments during a streamed call.
// Returning an error aborts the stream.
type ChunkFunc func(chunk string) error

// Chatter is the chat collaborator consumed by the analysis and fix
// pipelines. Chat returns a buffered response; ChatStream delivers fragments
// through fn and returns the concatenated whole.
type Chatter interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	ChatStream(ctx context.Context, req ChatRequest, fn ChunkFunc) (ChatResponse, error)
}

// Client talks to one Ollama server.
type Client struct {
	host   string
	client *http.Client
}

// NewClient creates a Client for host. An empty host falls back to
// OLLAMA_HOST, then to the local default.
func NewClient(host string) *Client {
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = defaultHost
	}
	host = strings.TrimRight(host, "/")

	return &Client{
		host:   host,
		client: &http.Client{Timeout: 300 * time.Second},
	}
}

// Host returns the configured server URL.
func (c *Client) Host() string { return c.host }

type chatPayload struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// chatWire is one response object; in streaming mode the server emits a
// sequence of these as NDJSON with the final one flagged done.
type chatWire struct {
	Model   string  `json:"model"`
	Message Message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error,omitempty"`
}

// Chat performs a buffered chat call.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	var resp ChatResponse
	err := retryWithBackoff(ctx, defaultMaxRetries, func() error {
		body, err := c.post(ctx, "/api/chat", chatPayload{
			Model:    req.Model,
			Messages: req.Messages,
			Stream:   false,
		})
		if err != nil {
			return err
		}
		defer body.Close()

		data, err := io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		var wire chatWire
		if err := json.Unmarshal(data, &wire); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
		if wire.Error != "" {
			return fmt.Errorf("ollama error: %s", wire.Error)
		}
		if wire.Message.Content == "" {
			return fmt.Errorf("empty content in chat response")
		}
		resp = ChatResponse{Content: wire.Message.Content, Model: wire.Model}
		return nil
	})
	return resp, err
}

// ChatStream performs a streaming chat call, invoking fn for every content
// fragment as it arrives and returning the concatenated response. The network
// call is not retried once streaming has begun.
func (c *Client) ChatStream(ctx context.Context, req ChatRequest, fn ChunkFunc) (ChatResponse, error) {
	body, err := c.post(ctx, "/api/chat", chatPayload{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   true,
	})
	if err != nil {
		return ChatResponse{}, err
	}
	defer body.Close()

	var full strings.Builder
	var model string
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var wire chatWire
		if err := json.Unmarshal(line, &wire); err != nil {
			return ChatResponse{}, fmt.Errorf("parsing stream chunk: %w", err)
		}
		if wire.Error != "" {
			return ChatResponse{}, fmt.Errorf("ollama error: %s", wire.Error)
		}
		if wire.Model != "" {
			model = wire.Model
		}
		if wire.Message.Content != "" {
			full.WriteString(wire.Message.Content)
			if fn != nil {
				if err := fn(wire.Message.Content); err != nil {
					return ChatResponse{}, err
				}
			}
		}
		if wire.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return ChatResponse{}, fmt.Errorf("reading stream: %w", err)
	}
	if full.Len() == 0 {
		return ChatResponse{}, fmt.Errorf("empty content in chat stream")
	}
	return ChatResponse{Content: full.String(), Model: model}, nil
}

// ModelInfo describes one model installed on the server.
type ModelInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ListModels returns the models available on the server (/api/tags).
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &connectionError{host: c.host, err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, body)
	}
	var result struct {
		Models []ModelInfo `json:"models"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return result.Models, nil
}

// post sends the payload and returns the response body after status
// normalization. Callers own closing the body.
func (c *Client) post(ctx context.Context, path string, payload any) (io.ReadCloser, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &connectionError{host: c.host, err: err}
	}

	switch {
	case httpResp.StatusCode == http.StatusOK:
		return httpResp.Body, nil
	case httpResp.StatusCode == http.StatusNotFound:
		body, _ := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		return nil, &modelNotFoundError{body: string(body)}
	case httpResp.StatusCode == http.StatusTooManyRequests:
		httpResp.Body.Close()
		return nil, &rateLimitError{}
	case httpResp.StatusCode >= 500:
		body, _ := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		return nil, &serverError{statusCode: httpResp.StatusCode, body: string(body)}
	default:
		body, _ := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		return nil, fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, body)
	}
}
