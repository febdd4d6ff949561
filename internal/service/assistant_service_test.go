package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ai-butler-be/internal/dto"
	"ai-butler-be/internal/repository/memory"
	"ai-butler-be/pkg/assistant/intent"
	"ai-butler-be/pkg/assistant/prompt"
)

type fakePublisher struct {
	payloads [][]byte
}

func (p *fakePublisher) Publish(_ context.Context, payload []byte) error {
	p.payloads = append(p.payloads, payload)
	return nil
}

type testAssistant struct {
	svc       IAssistantService
	repo      *memory.SessionRepository
	store     *memStore
	docs      IDocumentService
	gmail     *fakeGmail
	cal       *fakeCalendar
	delivery  *fakeDelivery
	publisher *fakePublisher
}

func newTestAssistant(t *testing.T, chat *fakeLLM, intentReply string) *testAssistant {
	t.Helper()

	factory := newFakeUowFactory()
	emb := &fakeEmbeddingProvider{store: factory.store}
	repo := memory.NewSessionRepository()
	gmail := &fakeGmail{}
	cal := &fakeCalendar{}
	delivery := &fakeDelivery{}
	publisher := &fakePublisher{}

	noteSvc := NewNoteService(factory, emb, chat, nil)
	docSvc := NewDocumentService(factory, emb, chat, nil, t.TempDir(), t.TempDir())
	mailSvc := NewMailService(gmail, nil, nil)
	calSvc := NewCalendarService(cal, nil)

	intentProvider := &fakeLLM{generateFn: func(string) (string, error) {
		if intentReply == "" {
			return intent.NoCommand, nil
		}
		return intentReply, nil
	}}

	svc := NewAssistantService(AssistantDeps{
		Logger:          nopLogger{},
		Zap:             zap.NewNop(),
		SessionRepo:     repo,
		ChatProvider:    chat,
		IntentProvider:  intentProvider,
		Persona:         prompt.Persona{Name: "Alfred", Role: "butler"},
		Profile:         map[string]string{},
		NoteService:     noteSvc,
		DocumentService: docSvc,
		MailService:     mailSvc,
		CalendarService: calSvc,
		Web:             nil,
		Speech:          nil,
		Publisher:       publisher,
		Delivery:        delivery,
		NoteTopK:        5,
	})

	return &testAssistant{
		svc:       svc,
		repo:      repo,
		store:     factory.store,
		docs:      docSvc,
		gmail:     gmail,
		cal:       cal,
		delivery:  delivery,
		publisher: publisher,
	}
}

func TestSendChatStreamingConcatenation(t *testing.T) {
	chat := &fakeLLM{fragments: []string{"Good ", "evening", ", sir."}}
	ta := newTestAssistant(t, chat, "")
	ctx := context.Background()

	resp, err := ta.svc.SendChat(ctx, &dto.SendChatRequest{Message: "hello"})
	require.NoError(t, err)
	require.Len(t, resp.Replies, 1)

	want := "Good evening, sir."
	assert.Equal(t, want, resp.Replies[0])
	assert.Equal(t, want, strings.Join(ta.delivery.fragments, ""))
	require.Len(t, ta.delivery.done, 1)
	assert.Equal(t, want, ta.delivery.done[0])

	// streamed output matches the buffered call for the same backend
	buffered, err := chat.Chat(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, buffered, want)

	// transcript recorded both turns
	sess, ok := ta.repo.Get(resp.SessionId)
	require.True(t, ok)
	require.Len(t, sess.Transcript, 2)
	assert.Equal(t, "hello", sess.Transcript[0].Content)
	assert.Equal(t, want, sess.Transcript[1].Content)

	// the turn queued exactly one distillation message
	assert.Len(t, ta.publisher.payloads, 1)
}

func TestSendChatCommandPath(t *testing.T) {
	ta := newTestAssistant(t, &fakeLLM{}, "")

	resp, err := ta.svc.SendChat(context.Background(), &dto.SendChatRequest{Message: "/note add remember the milk"})
	require.NoError(t, err)
	assert.Equal(t, "note", resp.Command)
	require.NotEmpty(t, resp.Replies)
	assert.Contains(t, resp.Replies[0], "Noted (#1)")

	// command turns do not queue distillation
	assert.Empty(t, ta.publisher.payloads)
}

func TestSendChatUnknownCommand(t *testing.T) {
	ta := newTestAssistant(t, &fakeLLM{}, "")

	resp, err := ta.svc.SendChat(context.Background(), &dto.SendChatRequest{Message: "/frobnicate now"})
	require.NoError(t, err)
	assert.Contains(t, resp.Replies[0], "Unknown command /frobnicate")
	assert.Len(t, ta.store.notes, 0)
}

func TestSendChatClassifiedCommand(t *testing.T) {
	ta := newTestAssistant(t, &fakeLLM{}, "/help")

	resp, err := ta.svc.SendChat(context.Background(), &dto.SendChatRequest{Message: "what can you do for me"})
	require.NoError(t, err)
	assert.Equal(t, "help", resp.Command)
	require.GreaterOrEqual(t, len(resp.Replies), 2)
	assert.Contains(t, resp.Replies[0], "Interpreting that as /help")
	assert.Contains(t, resp.Replies[1], "Available commands:")

	// transcript keeps the user's own words, not the routed command
	sess, ok := ta.repo.Get(resp.SessionId)
	require.True(t, ok)
	assert.Equal(t, "what can you do for me", sess.Transcript[0].Content)
}

func TestLookupStagingAndInvalidation(t *testing.T) {
	ta := newTestAssistant(t, &fakeLLM{fragments: []string{"noted"}}, "")
	ctx := context.Background()

	require.NoError(t, ta.docs.StoreText(ctx, "conversation", "old-session", "exchange", "we discussed the villa renovation budget", nil))

	resp, err := ta.svc.SendChat(ctx, &dto.SendChatRequest{Message: "/lookup conversation renovation"})
	require.NoError(t, err)
	assert.Contains(t, resp.Replies[0], "Found 1 result(s)")

	sess, ok := ta.repo.Get(resp.SessionId)
	require.True(t, ok)
	require.NotNil(t, sess.LastLookup)
	require.Len(t, sess.LastLookup.Results, 1)

	// a follow-up lookup command keeps the staging
	resp, err = ta.svc.SendChat(ctx, &dto.SendChatRequest{SessionId: resp.SessionId, Message: "/lookup load 1"})
	require.NoError(t, err)
	assert.Contains(t, resp.Replies[0], "Loaded result 1")
	assert.Contains(t, sess.ActiveText, "villa renovation")

	// any non-lookup input drops it
	_, err = ta.svc.SendChat(ctx, &dto.SendChatRequest{SessionId: resp.SessionId, Message: "/help"})
	require.NoError(t, err)
	assert.Nil(t, sess.LastLookup)
}

func TestStoreTaggedPersistsLastExchange(t *testing.T) {
	ta := newTestAssistant(t, &fakeLLM{fragments: []string{"sunny, sir"}}, "")
	ctx := context.Background()

	resp, err := ta.svc.SendChat(ctx, &dto.SendChatRequest{Message: "weather?"})
	require.NoError(t, err)

	// Loaded reference text must not shadow a tagged store.
	sess, ok := ta.repo.Get(resp.SessionId)
	require.True(t, ok)
	sess.SetActiveText("some visited page content")

	resp, err = ta.svc.SendChat(ctx, &dto.SendChatRequest{SessionId: resp.SessionId, Message: "/store mytag"})
	require.NoError(t, err)
	assert.Contains(t, resp.Replies[0], `tag "mytag"`)

	require.Len(t, ta.store.docEmbeddings, 1)
	stored := ta.store.docEmbeddings[0]
	assert.Equal(t, "mytag", stored.Tag)
	assert.Contains(t, stored.Document, "User: weather?")
	assert.Contains(t, stored.Document, "Assistant: sunny, sir")
	assert.NotContains(t, stored.Document, "some visited page content")
}

func TestStoreUntaggedPersistsActiveText(t *testing.T) {
	ta := newTestAssistant(t, &fakeLLM{fragments: []string{"noted"}}, "")
	ctx := context.Background()

	// Nothing loaded and no exchange yet: both forms refuse.
	resp, err := ta.svc.SendChat(ctx, &dto.SendChatRequest{Message: "/store mytag"})
	require.NoError(t, err)
	assert.Contains(t, resp.Replies[0], "no recent exchange")
	resp, err = ta.svc.SendChat(ctx, &dto.SendChatRequest{SessionId: resp.SessionId, Message: "/store"})
	require.NoError(t, err)
	assert.Contains(t, resp.Replies[0], "nothing to store")
	assert.Empty(t, ta.store.docEmbeddings)

	sess, ok := ta.repo.Get(resp.SessionId)
	require.True(t, ok)
	sess.SetActiveText("the villa floor plan, east wing")

	resp, err = ta.svc.SendChat(ctx, &dto.SendChatRequest{SessionId: resp.SessionId, Message: "/store"})
	require.NoError(t, err)
	assert.Contains(t, resp.Replies[0], "active text")

	require.Len(t, ta.store.docEmbeddings, 1)
	assert.Equal(t, "conversation", ta.store.docEmbeddings[0].Tag)
	assert.Contains(t, ta.store.docEmbeddings[0].Document, "east wing")
}

func TestGmailSendWithoutDraft(t *testing.T) {
	ta := newTestAssistant(t, &fakeLLM{}, "")

	resp, err := ta.svc.SendChat(context.Background(), &dto.SendChatRequest{Message: "/gmail send"})
	require.NoError(t, err)
	assert.Contains(t, strings.Join(resp.Replies, "\n"), "no email draft")
	assert.Zero(t, ta.gmail.sendCalls)
}

func TestGmailDraftEditSend(t *testing.T) {
	ta := newTestAssistant(t, &fakeLLM{}, "")
	ctx := context.Background()

	resp, err := ta.svc.SendChat(ctx, &dto.SendChatRequest{Message: "/gmail draft bruce@wayne.com | subject: Dinner | Shall we say eight?"})
	require.NoError(t, err)
	assert.Contains(t, resp.Replies[0], "To: bruce@wayne.com")
	assert.Contains(t, resp.Replies[0], "Subject: Dinner")

	resp, err = ta.svc.SendChat(ctx, &dto.SendChatRequest{SessionId: resp.SessionId, Message: "/gmail editdraft subject: Dinner at nine"})
	require.NoError(t, err)
	assert.Contains(t, resp.Replies[0], "Subject: Dinner at nine")
	assert.Contains(t, resp.Replies[0], "Shall we say eight?")

	resp, err = ta.svc.SendChat(ctx, &dto.SendChatRequest{SessionId: resp.SessionId, Message: "/gmail send"})
	require.NoError(t, err)
	assert.Contains(t, resp.Replies[0], "Email sent to bruce@wayne.com")
	assert.Equal(t, 1, ta.gmail.sendCalls)
	assert.Equal(t, []string{"bruce@wayne.com"}, ta.gmail.lastTo)

	// draft is consumed by the send
	sess, _ := ta.repo.Get(resp.SessionId)
	assert.Nil(t, sess.DraftEmail)
}

func TestCalendarDraftCreateFlow(t *testing.T) {
	ta := newTestAssistant(t, &fakeLLM{}, "")
	ctx := context.Background()

	resp, err := ta.svc.SendChat(ctx, &dto.SendChatRequest{
		Message: "/calendar draft Standup | 2026-09-01T09:00:00 | 2026-09-01T09:15:00 | a@x.com, b@y.com",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Replies[0], "Event draft: Standup")

	resp, err = ta.svc.SendChat(ctx, &dto.SendChatRequest{SessionId: resp.SessionId, Message: "/calendar create"})
	require.NoError(t, err)
	assert.Contains(t, resp.Replies[0], `Event "Standup" created`)

	require.Equal(t, 1, ta.cal.createCalls)
	assert.Equal(t, "Standup", ta.cal.lastSummary)
	assert.Equal(t, "2026-09-01T09:00:00", ta.cal.lastStart)
	assert.Equal(t, "2026-09-01T09:15:00", ta.cal.lastEnd)
	assert.Equal(t, []string{"a@x.com", "b@y.com"}, ta.cal.lastAttendees)

	// a second create without a fresh draft is refused with no side effect
	resp, err = ta.svc.SendChat(ctx, &dto.SendChatRequest{SessionId: resp.SessionId, Message: "/calendar create"})
	require.NoError(t, err)
	assert.Contains(t, strings.Join(resp.Replies, "\n"), "no event draft")
	assert.Equal(t, 1, ta.cal.createCalls)
}

func TestDocDraftLifecycle(t *testing.T) {
	ta := newTestAssistant(t, &fakeLLM{}, "")
	ctx := context.Background()

	resp, err := ta.svc.SendChat(ctx, &dto.SendChatRequest{Message: "/doc new letter.md"})
	require.NoError(t, err)

	// save before write reports nothing to save and persists nothing
	resp, err = ta.svc.SendChat(ctx, &dto.SendChatRequest{SessionId: resp.SessionId, Message: "/doc save"})
	require.NoError(t, err)
	assert.Contains(t, strings.Join(resp.Replies, "\n"), "nothing to save")
	assert.Empty(t, ta.store.docEmbeddings)

	resp, err = ta.svc.SendChat(ctx, &dto.SendChatRequest{SessionId: resp.SessionId, Message: "/doc write Dear Sir, the roof is fixed."})
	require.NoError(t, err)

	resp, err = ta.svc.SendChat(ctx, &dto.SendChatRequest{SessionId: resp.SessionId, Message: "/doc save"})
	require.NoError(t, err)
	assert.Contains(t, resp.Replies[0], `Saved "letter.md"`)
	assert.Len(t, ta.store.docEmbeddings, 1)
}

func TestResetClearsSession(t *testing.T) {
	chat := &fakeLLM{fragments: []string{"indeed"}}
	ta := newTestAssistant(t, chat, "")
	ctx := context.Background()

	resp, err := ta.svc.SendChat(ctx, &dto.SendChatRequest{Message: "hello there"})
	require.NoError(t, err)

	require.NoError(t, ta.svc.Reset(ctx, resp.SessionId))

	sess, ok := ta.repo.Get(resp.SessionId)
	require.True(t, ok)
	assert.Empty(t, sess.Transcript)
	assert.Empty(t, sess.ActiveText)
	assert.Nil(t, sess.DraftEmail)
}
