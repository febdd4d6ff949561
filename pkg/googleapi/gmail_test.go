package googleapi

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func encodeBody(text string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(text))
}

func TestExtractPlainText(t *testing.T) {
	tests := []struct {
		name     string
		payload  messagePayload
		expected string
	}{
		{
			name: "plain body",
			payload: messagePayload{
				MimeType: "text/plain",
				Body:     messageBody{Data: encodeBody("hello")},
			},
			expected: "hello",
		},
		{
			name: "multipart picks plain part",
			payload: messagePayload{
				MimeType: "multipart/alternative",
				Parts: []messagePayload{
					{MimeType: "text/html", Body: messageBody{Data: encodeBody("<b>hi</b>")}},
					{MimeType: "text/plain", Body: messageBody{Data: encodeBody("hi")}},
				},
			},
			expected: "hi",
		},
		{
			name: "nested multipart",
			payload: messagePayload{
				MimeType: "multipart/mixed",
				Parts: []messagePayload{
					{
						MimeType: "multipart/alternative",
						Parts: []messagePayload{
							{MimeType: "text/plain", Body: messageBody{Data: encodeBody("deep")}},
						},
					},
				},
			},
			expected: "deep",
		},
		{
			name:     "no plain part",
			payload:  messagePayload{MimeType: "text/html"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractPlainText(tt.payload))
		})
	}
}

func TestHeaderValue(t *testing.T) {
	payload := messagePayload{
		Headers: []messageHeader{
			{Name: "Subject", Value: "weekly sync"},
		},
	}

	assert.Equal(t, "weekly sync", headerValue(payload, "Subject", "(No Subject)"))
	assert.Equal(t, "(Unknown Sender)", headerValue(payload, "From", "(Unknown Sender)"))
}
