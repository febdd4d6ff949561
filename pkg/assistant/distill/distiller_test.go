package distill

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-butler-be/pkg/llm"
)

type fakeProvider struct {
	response string
	err      error
	history  []llm.Message
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.history = history
	return f.response, f.err
}

func (f *fakeProvider) ChatStream(ctx context.Context, history []llm.Message, options ...llm.Option) (<-chan string, <-chan error) {
	out := make(chan string)
	errCh := make(chan error, 1)
	close(out)
	close(errCh)
	return out, errCh
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.response, f.err
}

func TestDistillReturnsNote(t *testing.T) {
	d := NewDistiller(&fakeProvider{response: "User prefers morning meetings."})
	note, ok, err := d.Distill(context.Background(), "schedule it early", "Done, 9am works", nil)

	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "User prefers morning meetings.", note)
}

func TestDistillSentinelExactMatch(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantNote bool
	}{
		{name: "exact sentinel", response: "NO_NOTE", wantNote: false},
		{name: "sentinel with whitespace", response: "  NO_NOTE\n", wantNote: false},
		{name: "empty output", response: "", wantNote: false},
		{name: "sentinel embedded in text is a note", response: "NO_NOTE needed here I think", wantNote: true},
		{name: "lowercase sentinel is a note", response: "no_note", wantNote: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDistiller(&fakeProvider{response: tt.response})
			_, ok, err := d.Distill(context.Background(), "u", "a", nil)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantNote, ok)
		})
	}
}

func TestDistillIncludesExistingNotes(t *testing.T) {
	provider := &fakeProvider{response: "NO_NOTE"}
	d := NewDistiller(provider)

	_, _, err := d.Distill(context.Background(), "hi", "hello", []string{"likes jazz"})
	assert.NoError(t, err)

	assert.Len(t, provider.history, 2)
	assert.Equal(t, llm.RoleSystem, provider.history[0].Role)
	assert.Contains(t, provider.history[1].Content, "- likes jazz")
	assert.Contains(t, provider.history[1].Content, "User: hi")
}

func TestDistillPropagatesError(t *testing.T) {
	d := NewDistiller(&fakeProvider{err: errors.New("model offline")})
	_, ok, err := d.Distill(context.Background(), "u", "a", nil)
	assert.Error(t, err)
	assert.False(t, ok)
}
