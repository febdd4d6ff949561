package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-butler-be/pkg/llm"
)

const (
	defaultBaseURL  = "https://api.anthropic.com/v1"
	apiVersion      = "2023-06-01"
	defaultMaxToken = 1024
)

// AnthropicProvider adapts the messages API to the generic Provider shape.
// The API takes a separate system field and strictly alternating turns, so
// the generic history is split before sending.
type AnthropicProvider struct {
	BaseURL   string
	APIKey    string
	ModelName string
	Client    *http.Client
}

var _ llm.Provider = &AnthropicProvider{}

func NewAnthropicProvider(apiKey, modelName string) *AnthropicProvider {
	return &AnthropicProvider{
		BaseURL:   defaultBaseURL,
		APIKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type messagesRequest struct {
	Model     string        `json:"model"`
	System    string        `json:"system,omitempty"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
	Stream    bool          `json:"stream,omitempty"`

	Temperature float64 `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// splitHistory extracts the system prompt and flattens the remaining turns
// into a single user message, mirroring how the assistant originally drove
// this backend.
func splitHistory(history []llm.Message) (string, []chatMessage) {
	var system string
	var lines []string
	for _, msg := range history {
		switch msg.Role {
		case "system":
			if system == "" {
				system = msg.Content
			}
		case "user":
			lines = append(lines, msg.Content)
		case "assistant", "model":
			lines = append(lines, "Assistant: "+msg.Content)
		}
	}
	return system, []chatMessage{{Role: "user", Content: strings.Join(lines, "\n")}}
}

func (p *AnthropicProvider) buildPayload(history []llm.Message, options *llm.Options, stream bool) messagesRequest {
	system, messages := splitHistory(history)

	model := p.ModelName
	if options.Model != "" {
		model = options.Model
	}
	maxTokens := options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxToken
	}

	return messagesRequest{
		Model:       model,
		System:      system,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Stream:      stream,
		Temperature: options.Temperature,
	}
}

func (p *AnthropicProvider) newRequest(ctx context.Context, payload messagesRequest) (*http.Request, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", p.BaseURL+"/messages", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.APIKey)
	req.Header.Set("anthropic-version", apiVersion)
	return req, nil
}

func (p *AnthropicProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(opts)
	req, err := p.newRequest(ctx, p.buildPayload(history, options, false))
	if err != nil {
		return "", err
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var parsed messagesResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("anthropic error: %s", parsed.Error.Message)
	}

	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// ChatStream consumes the SSE event stream, forwarding text deltas from
// content_block_delta events until message_stop.
func (p *AnthropicProvider) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (<-chan string, <-chan error) {
	contentChan := make(chan string, 64)
	errorChan := make(chan error, 1)

	options := llm.ApplyOptions(opts)
	payload := p.buildPayload(history, options, true)

	go func() {
		defer close(contentChan)
		defer close(errorChan)

		req, err := p.newRequest(ctx, payload)
		if err != nil {
			errorChan <- err
			return
		}
		req.Header.Set("Accept", "text/event-stream")

		resp, err := p.Client.Do(req)
		if err != nil {
			errorChan <- fmt.Errorf("stream request failed: %w", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			errorChan <- fmt.Errorf("stream error: status %d, body: %s", resp.StatusCode, string(body))
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "" {
				continue
			}

			var event streamEvent
			if err := json.Unmarshal([]byte(data), &event); err != nil {
				continue
			}
			switch event.Type {
			case "content_block_delta":
				if event.Delta.Text != "" {
					select {
					case contentChan <- event.Delta.Text:
					case <-ctx.Done():
						errorChan <- ctx.Err()
						return
					}
				}
			case "error":
				msg := "unknown stream error"
				if event.Error != nil {
					msg = event.Error.Message
				}
				errorChan <- fmt.Errorf("stream error: %s", msg)
				return
			case "message_stop":
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errorChan <- fmt.Errorf("stream read: %w", err)
		}
	}()

	return contentChan, errorChan
}

func (p *AnthropicProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
