package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-butler-be/internal/dto"
	"ai-butler-be/internal/pkg/logger"
	"ai-butler-be/internal/repository/memory"
	"ai-butler-be/pkg/assistant/intent"
	"ai-butler-be/pkg/assistant/prompt"
	"ai-butler-be/pkg/assistant/router"
	"ai-butler-be/pkg/assistant/session"
	"ai-butler-be/pkg/llm"
	"ai-butler-be/pkg/speech"
	"ai-butler-be/pkg/websearch"

	"go.uber.org/zap"
)

// StreamDelivery pushes reply fragments to connected clients while a
// streamed turn is in flight. Implemented by the websocket hub.
type StreamDelivery interface {
	Fragment(sessionID, text string)
	Done(sessionID, full string)
}

type IAssistantService interface {
	SendChat(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	Reset(ctx context.Context, sessionID string) error
	Upload(ctx context.Context, filename string, data []byte, pages []int) (*dto.UploadDocumentResponse, error)
	Transcribe(ctx context.Context, filename string, audio []byte) (string, error)
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// AssistantDeps bundles the collaborators the assistant orchestrates.
type AssistantDeps struct {
	Logger          logger.ILogger
	Zap             *zap.Logger
	SessionRepo     *memory.SessionRepository
	ChatProvider    llm.Provider
	IntentProvider  llm.Provider
	Persona         prompt.Persona
	Profile         map[string]string
	NoteService     INoteService
	DocumentService IDocumentService
	MailService     IMailService
	CalendarService ICalendarService
	Web             *websearch.Client
	Speech          *speech.Client
	Publisher       IPublisherService
	Delivery        StreamDelivery
	NoteTopK        int
	TranscribeModel string
	SynthesisModel  string
	SynthesisVoice  string
}

type assistantService struct {
	deps      AssistantDeps
	router    *router.Router
	assembler *prompt.Assembler
	intents   *intent.Classifier
}

func NewAssistantService(deps AssistantDeps) IAssistantService {
	s := &assistantService{
		deps:      deps,
		router:    router.New(deps.Zap),
		assembler: prompt.NewAssembler(deps.Persona, deps.Profile),
	}
	s.registerCommands()

	tools := make([]intent.Tool, 0)
	for _, cmd := range s.router.Commands() {
		tools = append(tools, intent.Tool{Usage: cmd.Usage, Description: cmd.Description})
	}
	s.intents = intent.NewClassifier(deps.IntentProvider, tools, deps.Zap)

	return s
}

// SendChat runs one full turn: route a slash command, or classify the
// utterance, or fall through to the conversational path. Strictly
// sequential; the only tail concurrency is the distillation publish.
func (s *assistantService) SendChat(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, fmt.Errorf("message is empty")
	}

	sess := s.deps.SessionRepo.GetOrCreate(req.SessionId)

	if router.IsCommand(text) {
		return s.runCommand(ctx, sess, text, text, nil), nil
	}

	command, ok, err := s.intents.Classify(ctx, text, sess.RecentTurns(6))
	if err != nil {
		s.deps.Logger.Warn("AssistantService", "Intent classification failed, falling back to chat", map[string]interface{}{"error": err.Error()})
	} else if ok {
		notice := fmt.Sprintf("Interpreting that as %s.", command)
		return s.runCommand(ctx, sess, text, command, &notice), nil
	}

	return s.chat(ctx, sess, text)
}

func (s *assistantService) runCommand(ctx context.Context, sess *session.Session, userText, commandLine string, notice *string) *dto.SendChatResponse {
	token := commandToken(commandLine)
	if token != "lookup" {
		sess.InvalidateLookup()
	}

	// Handlers run against the transcript as it stood before this input,
	// so a tagged /store captures the previous exchange rather than the
	// command itself.
	replies := s.router.Dispatch(ctx, sess, commandLine)
	if notice != nil {
		replies = append([]string{*notice}, replies...)
	}

	joined := strings.Join(replies, "\n")
	// A reset leaves the session in its initial empty state.
	if token != "reset" {
		sess.AppendUser(userText)
		sess.AppendAssistant(joined)
	}
	s.deps.SessionRepo.Save(sess)

	if s.deps.Delivery != nil {
		s.deps.Delivery.Done(sess.ID, joined)
	}

	return &dto.SendChatResponse{
		SessionId: sess.ID,
		Replies:   replies,
		Command:   token,
	}
}

func (s *assistantService) chat(ctx context.Context, sess *session.Session, text string) (*dto.SendChatResponse, error) {
	sess.InvalidateLookup()

	notes, err := s.deps.NoteService.SearchSimilar(ctx, text, s.deps.NoteTopK)
	if err != nil {
		s.deps.Logger.Warn("AssistantService", "Note retrieval failed, continuing without notes", map[string]interface{}{"error": err.Error()})
		notes = nil
	}

	system := s.assembler.Build(sess, notes)
	messages := s.assembler.Messages(system, sess, text)

	fragments, errs := s.deps.ChatProvider.ChatStream(ctx, messages)

	var sb strings.Builder
	for fragment := range fragments {
		sb.WriteString(fragment)
		if s.deps.Delivery != nil {
			s.deps.Delivery.Fragment(sess.ID, fragment)
		}
	}
	if streamErr := <-errs; streamErr != nil {
		if sb.Len() == 0 {
			return nil, streamErr
		}
		// Partial reply: keep exactly what was produced.
		s.deps.Logger.Warn("AssistantService", "Stream ended early, keeping partial reply", map[string]interface{}{"error": streamErr.Error()})
	}

	full := sb.String()
	sess.AppendUser(text)
	sess.AppendAssistant(full)
	s.deps.SessionRepo.Save(sess)

	if s.deps.Delivery != nil {
		s.deps.Delivery.Done(sess.ID, full)
	}

	s.publishDistill(ctx, sess.ID, text, full)

	return &dto.SendChatResponse{
		SessionId: sess.ID,
		Replies:   []string{full},
	}, nil
}

func (s *assistantService) publishDistill(ctx context.Context, sessionID, userMsg, assistantMsg string) {
	if s.deps.Publisher == nil {
		return
	}
	payload, err := json.Marshal(dto.PublishDistillMessage{
		SessionId:        sessionID,
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
	})
	if err != nil {
		return
	}
	if err := s.deps.Publisher.Publish(ctx, payload); err != nil {
		s.deps.Logger.Warn("AssistantService", "Failed to publish distill message", map[string]interface{}{"error": err.Error()})
	}
}

func (s *assistantService) Reset(_ context.Context, sessionID string) error {
	sess, ok := s.deps.SessionRepo.Get(sessionID)
	if !ok {
		return fmt.Errorf("session %s not found", sessionID)
	}
	sess.Reset()
	s.deps.SessionRepo.Save(sess)
	return nil
}

func (s *assistantService) Upload(ctx context.Context, filename string, data []byte, pages []int) (*dto.UploadDocumentResponse, error) {
	summary, err := s.deps.DocumentService.UploadAndSummarize(ctx, filename, data, pages)
	if err != nil {
		return nil, err
	}
	return &dto.UploadDocumentResponse{Filename: filename, Summary: summary}, nil
}

func (s *assistantService) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	if s.deps.Speech == nil {
		return "", fmt.Errorf("speech is not configured")
	}
	return s.deps.Speech.Transcribe(ctx, s.deps.TranscribeModel, filename, audio)
}

func (s *assistantService) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if s.deps.Speech == nil {
		return nil, fmt.Errorf("speech is not configured")
	}
	return s.deps.Speech.Synthesize(ctx, s.deps.SynthesisModel, s.deps.SynthesisVoice, text)
}

func commandToken(line string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(line), router.Prefix)
	parts := strings.SplitN(trimmed, " ", 2)
	return strings.ToLower(parts[0])
}
