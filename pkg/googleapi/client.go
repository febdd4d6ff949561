// Package googleapi talks to the Gmail and Calendar REST APIs on behalf
// of a single user, authenticating with a stored OAuth token.
package googleapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"
)

// googleEndpoint avoids pulling in the google subpackage for two URLs.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

type Config struct {
	ClientID     string
	ClientSecret string
	TokenFile    string
	ZoomRoomURL  string
	Timezone     string
}

type Client struct {
	cfg    Config
	oauth  *oauth2.Config
	mu     sync.Mutex
	source oauth2.TokenSource
	last   *oauth2.Token
}

func NewClient(cfg Config) *Client {
	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/Paris"
	}
	return &Client{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     googleEndpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/gmail.modify",
				"https://www.googleapis.com/auth/gmail.send",
				"https://www.googleapis.com/auth/gmail.readonly",
				"https://www.googleapis.com/auth/calendar.events",
				"https://www.googleapis.com/auth/calendar.readonly",
			},
		},
	}
}

func (c *Client) token(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.source == nil {
		raw, err := os.ReadFile(c.cfg.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("google token file is not readable, run the auth flow first: %w", err)
		}
		var tok oauth2.Token
		if err := json.Unmarshal(raw, &tok); err != nil {
			return nil, fmt.Errorf("failed to parse google token file: %w", err)
		}
		c.last = &tok
		c.source = c.oauth.TokenSource(context.Background(), &tok)
	}

	tok, err := c.source.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh google token: %w", err)
	}

	// Persist refreshed tokens so the next process start reuses them.
	if c.last == nil || tok.AccessToken != c.last.AccessToken {
		c.last = tok
		if raw, err := json.Marshal(tok); err == nil {
			_ = os.WriteFile(c.cfg.TokenFile, raw, 0600)
		}
	}
	return tok, nil
}

func (c *Client) do(ctx context.Context, method, url string, payload any, out any) error {
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	tok.SetAuthHeader(req)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("google api returned %d: %s", resp.StatusCode, string(respBody))
	}
	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}
