package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-butler-be/internal/dto"
	"ai-butler-be/pkg/assistant/distill"
)

func distillMessage(t *testing.T, userMsg, assistantMsg string) *message.Message {
	t.Helper()
	payload, err := json.Marshal(dto.PublishDistillMessage{
		SessionId:        "sess-1",
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
	})
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), payload)
}

func newTestConsumer(t *testing.T, distillReply string) (*consumerService, INoteService, *memStore) {
	t.Helper()
	factory := newFakeUowFactory()
	emb := &fakeEmbeddingProvider{store: factory.store}
	noteSvc := NewNoteService(factory, emb, &fakeLLM{}, nil)

	chatProvider := &fakeLLM{fragments: []string{distillReply}}

	svc := NewConsumerService(nil, "DISTILL_TURN", noteSvc, distill.NewDistiller(chatProvider), 5).(*consumerService)
	return svc, noteSvc, factory.store
}

func TestDistillSentinelLeavesNoteCountUnchanged(t *testing.T) {
	svc, notes, _ := newTestConsumer(t, "NO_NOTE")
	ctx := context.Background()

	msg := distillMessage(t, "what's the weather", "sunny, sir")
	svc.processMessage(ctx, msg)

	all, err := notes.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDistillNonSentinelAddsExactlyOneNote(t *testing.T) {
	svc, notes, _ := newTestConsumer(t, "The user prefers sparkling water.")
	ctx := context.Background()

	svc.processMessage(ctx, distillMessage(t, "get me water", "sparkling as always?"))

	all, err := notes.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "The user prefers sparkling water.", all[0].Content)
}

func TestDistillDedupQueriesWholeExchange(t *testing.T) {
	svc, _, store := newTestConsumer(t, "NO_NOTE")
	ctx := context.Background()

	svc.processMessage(ctx, distillMessage(t, "get me water", "sparkling as always?"))

	// Nearby-note retrieval must see both halves of the exchange.
	assert.Contains(t, store.lastQuery, "get me water")
	assert.Contains(t, store.lastQuery, "sparkling as always?")
}

func TestDistillMalformedPayloadIsDropped(t *testing.T) {
	svc, notes, _ := newTestConsumer(t, "anything")
	ctx := context.Background()

	svc.processMessage(ctx, message.NewMessage(watermill.NewUUID(), []byte("not json")))

	all, err := notes.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
