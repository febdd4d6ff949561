package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDraftArgs(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		keys     []string
		expected DraftArgs
	}{
		{
			name: "primary and fields",
			raw:  "bob@example.com | subject: weekly sync | cc: alice@example.com",
			keys: []string{"subject", "cc"},
			expected: DraftArgs{
				Primary: "bob@example.com",
				Fields:  map[string]string{"subject": "weekly sync", "cc": "alice@example.com"},
				Body:    "",
			},
		},
		{
			name: "bare text after primary becomes body",
			raw:  "bob@example.com | subject: hi | first line | second line",
			keys: []string{"subject"},
			expected: DraftArgs{
				Primary: "bob@example.com",
				Fields:  map[string]string{"subject": "hi"},
				Body:    "first line\nsecond line",
			},
		},
		{
			name: "unrecognized key stays bare",
			raw:  "standup | location: room 4",
			keys: []string{"start", "end"},
			expected: DraftArgs{
				Primary: "standup",
				Fields:  map[string]string{},
				Body:    "location: room 4",
			},
		},
		{
			name: "case insensitive keys",
			raw:  "meeting | Start: 2026-09-01T10:00:00 | END: 2026-09-01T11:00:00",
			keys: []string{"start", "end"},
			expected: DraftArgs{
				Primary: "meeting",
				Fields:  map[string]string{"start": "2026-09-01T10:00:00", "end": "2026-09-01T11:00:00"},
				Body:    "",
			},
		},
		{
			name: "url colon is not a field",
			raw:  "https://example.com/page | read this",
			keys: []string{"subject"},
			expected: DraftArgs{
				Primary: "https://example.com/page",
				Fields:  map[string]string{},
				Body:    "read this",
			},
		},
		{
			name: "empty segments skipped",
			raw:  " | bob@example.com | | body",
			keys: []string{"subject"},
			expected: DraftArgs{
				Primary: "bob@example.com",
				Fields:  map[string]string{},
				Body:    "body",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDraftArgs(tt.raw, tt.keys...)
			assert.Equal(t, tt.expected.Primary, got.Primary)
			assert.Equal(t, tt.expected.Fields, got.Fields)
			assert.Equal(t, tt.expected.Body, got.Body)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, SplitList("a@x.com, b@x.com"))
	assert.Equal(t, []string{"solo"}, SplitList("solo"))
	assert.Nil(t, SplitList(" , ,"))
}
