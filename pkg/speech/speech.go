// Package speech wraps the OpenAI-compatible audio endpoints for
// transcription and synthesis. Only providers exposing that surface
// (openai, groq) are supported.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

const (
	openaiBaseURL = "https://api.openai.com/v1"
	groqBaseURL   = "https://api.groq.com/openai/v1"
)

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient builds a speech client for the given provider name.
// Providers without an audio surface return an error so callers can
// surface a clear unsupported-capability message.
func NewClient(provider, apiKey string) (*Client, error) {
	var baseURL string
	switch provider {
	case "openai":
		baseURL = openaiBaseURL
	case "groq":
		baseURL = groqBaseURL
	default:
		return nil, fmt.Errorf("provider %s does not support speech", provider)
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  http.DefaultClient,
	}, nil
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe sends recorded audio to the transcriptions endpoint and
// returns the recognized text.
func (c *Client) Transcribe(ctx context.Context, model, filename string, audio []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audio); err != nil {
		return "", err
	}
	if err := writer.WriteField("model", model); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription error: %s", string(respBody))
	}

	var result transcriptionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}
	return result.Text, nil
}

type synthesisRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Voice string `json:"voice"`
}

// Synthesize renders text to speech and returns the raw audio bytes.
func (c *Client) Synthesize(ctx context.Context, model, voice, text string) ([]byte, error) {
	payload, err := json.Marshal(synthesisRequest{
		Model: model,
		Input: text,
		Voice: voice,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/speech", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("synthesis error: %s", string(audio))
	}
	return audio, nil
}
