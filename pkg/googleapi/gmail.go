package googleapi

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

const gmailBaseURL = "https://gmail.googleapis.com/gmail/v1/users/me"

type Email struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    string `json:"from"`
	To      string `json:"to,omitempty"`
	Date    string `json:"date,omitempty"`
	Body    string `json:"body"`
	Snippet string `json:"snippet,omitempty"`
}

type messageListResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type messageHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type messageBody struct {
	Data string `json:"data"`
}

type messagePayload struct {
	MimeType string           `json:"mimeType"`
	Headers  []messageHeader  `json:"headers"`
	Body     messageBody      `json:"body"`
	Parts    []messagePayload `json:"parts"`
}

type messageResponse struct {
	ID      string         `json:"id"`
	Snippet string         `json:"snippet"`
	Payload messagePayload `json:"payload"`
}

// ListEmails returns up to maxResults messages matching a Gmail search
// query (defaults to unread).
func (c *Client) ListEmails(ctx context.Context, query string, maxResults int) ([]Email, error) {
	if query == "" {
		query = "is:unread"
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", fmt.Sprintf("%d", maxResults))

	var list messageListResponse
	if err := c.do(ctx, "GET", gmailBaseURL+"/messages?"+params.Encode(), nil, &list); err != nil {
		return nil, err
	}

	emails := make([]Email, 0, len(list.Messages))
	for _, m := range list.Messages {
		email, err := c.GetEmail(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		emails = append(emails, *email)
	}
	return emails, nil
}

// GetEmail fetches a single message and decodes its plain-text body.
func (c *Client) GetEmail(ctx context.Context, id string) (*Email, error) {
	var msg messageResponse
	if err := c.do(ctx, "GET", gmailBaseURL+"/messages/"+id+"?format=full", nil, &msg); err != nil {
		return nil, err
	}

	body := strings.TrimSpace(extractPlainText(msg.Payload))
	if body == "" {
		body = "[No body found]"
	}

	return &Email{
		ID:      msg.ID,
		Subject: headerValue(msg.Payload, "Subject", "(No Subject)"),
		From:    headerValue(msg.Payload, "From", "(Unknown Sender)"),
		To:      headerValue(msg.Payload, "To", ""),
		Date:    headerValue(msg.Payload, "Date", ""),
		Body:    body,
		Snippet: msg.Snippet,
	}, nil
}

// MarkRead removes the UNREAD label from a message.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	payload := map[string][]string{"removeLabelIds": {"UNREAD"}}
	return c.do(ctx, "POST", gmailBaseURL+"/messages/"+id+"/modify", payload, nil)
}

// StarEmail adds the STARRED label to a message.
func (c *Client) StarEmail(ctx context.Context, id string) error {
	payload := map[string][]string{"addLabelIds": {"STARRED"}}
	return c.do(ctx, "POST", gmailBaseURL+"/messages/"+id+"/modify", payload, nil)
}

// SendEmail sends a plain-text message from the authorized account.
func (c *Client) SendEmail(ctx context.Context, to []string, cc []string, subject, body string) error {
	var mime strings.Builder
	mime.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	if len(cc) > 0 {
		mime.WriteString("Cc: " + strings.Join(cc, ", ") + "\r\n")
	}
	mime.WriteString("From: me\r\n")
	mime.WriteString("Subject: " + subject + "\r\n")
	mime.WriteString("MIME-Version: 1.0\r\n")
	mime.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	mime.WriteString("\r\n")
	mime.WriteString(strings.ReplaceAll(body, "\\n", "\n"))

	payload := map[string]string{
		"raw": base64.URLEncoding.EncodeToString([]byte(mime.String())),
	}
	return c.do(ctx, "POST", gmailBaseURL+"/messages/send", payload, nil)
}

func headerValue(p messagePayload, name, fallback string) string {
	for _, h := range p.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return fallback
}

// extractPlainText walks the MIME tree and returns the first text/plain
// part it finds.
func extractPlainText(p messagePayload) string {
	if p.MimeType == "text/plain" {
		decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(p.Body.Data, "="))
		if err != nil {
			return ""
		}
		return string(decoded)
	}
	if strings.HasPrefix(p.MimeType, "multipart/") {
		for _, part := range p.Parts {
			if text := extractPlainText(part); text != "" {
				return text
			}
		}
	}
	return ""
}
