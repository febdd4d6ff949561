package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-butler-be/internal/constant"
	"ai-butler-be/internal/entity"
	"ai-butler-be/internal/repository/unitofwork"
	"ai-butler-be/pkg/embedding"
	"ai-butler-be/pkg/events"
	"ai-butler-be/pkg/llm"
	pktNats "ai-butler-be/pkg/nats"

	"github.com/google/uuid"
)

const cleanNotesPrompt = `You are given a numbered list of personal notes. Rewrite it into a cleaned list: merge duplicates, drop notes that are obsolete or contradicted by later ones, and keep each surviving note as a single standalone sentence. Respond with ONLY a JSON array of strings, nothing else.

Notes:
%s`

type INoteService interface {
	Add(ctx context.Context, content string) (int, error)
	List(ctx context.Context) ([]*entity.Note, error)
	Edit(ctx context.Context, position int, content string) error
	Delete(ctx context.Context, position int) error
	Clean(ctx context.Context) (before int, after int, err error)
	SearchSimilar(ctx context.Context, query string, topK int) ([]string, error)
}

type noteService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	llmProvider       llm.Provider
	eventPublisher    *pktNats.Publisher
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	llmProvider llm.Provider,
	eventPublisher *pktNats.Publisher,
) INoteService {
	return &noteService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		llmProvider:       llmProvider,
		eventPublisher:    eventPublisher,
	}
}

// Add appends a note to the log and mirrors it into the semantic store
// in one transaction. Returns the note's 1-based position.
func (s *noteService) Add(ctx context.Context, content string) (int, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0, fmt.Errorf("note content is empty")
	}

	res, err := s.embeddingProvider.Generate(ctx, content, constant.EmbedTaskDocument)
	if err != nil {
		return 0, fmt.Errorf("failed to embed note: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer uow.Rollback()

	note := entity.Note{
		Id:        uuid.New(),
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return 0, err
	}

	emb := entity.NoteEmbedding{
		Id:             uuid.New(),
		Document:       content,
		EmbeddingValue: res.Values,
		NoteId:         note.Id,
		CreatedAt:      note.CreatedAt,
	}
	if err := uow.NoteEmbeddingRepository().Create(ctx, &emb); err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, err
	}

	count, err := s.uowFactory.NewUnitOfWork(ctx).NoteRepository().Count(ctx)
	if err != nil {
		return 0, err
	}

	s.publishEvent(ctx, constant.EventNoteCreated, map[string]interface{}{
		"note_id": note.Id,
		"content": content,
	})

	return int(count), nil
}

func (s *noteService) List(ctx context.Context) ([]*entity.Note, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NoteRepository().ListOrdered(ctx)
}

// Edit rewrites the note at the given 1-based position and adds a fresh
// embedding. Older embeddings for the note are left in place.
func (s *noteService) Edit(ctx context.Context, position int, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("note content is empty")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := s.noteAt(ctx, uow, position)
	if err != nil {
		return err
	}

	res, err := s.embeddingProvider.Generate(ctx, content, constant.EmbedTaskDocument)
	if err != nil {
		return fmt.Errorf("failed to embed note: %w", err)
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	now := time.Now()
	note.Content = content
	note.UpdatedAt = &now
	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return err
	}

	emb := entity.NoteEmbedding{
		Id:             uuid.New(),
		Document:       content,
		EmbeddingValue: res.Values,
		NoteId:         note.Id,
		CreatedAt:      now,
	}
	if err := uow.NoteEmbeddingRepository().Create(ctx, &emb); err != nil {
		return err
	}

	return uow.Commit()
}

// Delete removes the note at the given 1-based position together with
// its embeddings.
func (s *noteService) Delete(ctx context.Context, position int) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := s.noteAt(ctx, uow, position)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.NoteRepository().Delete(ctx, note.Id); err != nil {
		return err
	}
	if err := uow.NoteEmbeddingRepository().DeleteByNoteId(ctx, note.Id); err != nil {
		return err
	}

	return uow.Commit()
}

// Clean runs a model pass over the whole log and replaces it with the
// deduplicated result. Any malformation in the model output leaves the
// log untouched.
func (s *noteService) Clean(ctx context.Context) (int, int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().ListOrdered(ctx)
	if err != nil {
		return 0, 0, err
	}
	if len(notes) == 0 {
		return 0, 0, nil
	}

	var sb strings.Builder
	for i, n := range notes {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, n.Content)
	}

	raw, err := s.llmProvider.Generate(ctx, fmt.Sprintf(cleanNotesPrompt, sb.String()), llm.WithTemperature(0.0))
	if err != nil {
		return 0, 0, fmt.Errorf("clean model call failed: %w", err)
	}

	cleaned, err := parseCleanedNotes(raw)
	if err != nil {
		return 0, 0, err
	}

	// Embed replacements before touching the log.
	embeddings := make([][]float32, 0, len(cleaned))
	for _, content := range cleaned {
		res, err := s.embeddingProvider.Generate(ctx, content, constant.EmbedTaskDocument)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to embed cleaned note: %w", err)
		}
		embeddings = append(embeddings, res.Values)
	}

	if err := uow.Begin(ctx); err != nil {
		return 0, 0, err
	}
	defer uow.Rollback()

	for _, n := range notes {
		if err := uow.NoteRepository().Delete(ctx, n.Id); err != nil {
			return 0, 0, err
		}
	}
	if err := uow.NoteEmbeddingRepository().DeleteAllUnscoped(ctx); err != nil {
		return 0, 0, err
	}

	now := time.Now()
	for i, content := range cleaned {
		note := entity.Note{
			Id:        uuid.New(),
			Content:   content,
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
		}
		if err := uow.NoteRepository().Create(ctx, &note); err != nil {
			return 0, 0, err
		}
		emb := entity.NoteEmbedding{
			Id:             uuid.New(),
			Document:       content,
			EmbeddingValue: embeddings[i],
			NoteId:         note.Id,
			CreatedAt:      note.CreatedAt,
		}
		if err := uow.NoteEmbeddingRepository().Create(ctx, &emb); err != nil {
			return 0, 0, err
		}
	}

	if err := uow.Commit(); err != nil {
		return 0, 0, err
	}

	s.publishEvent(ctx, constant.EventNotesCleaned, map[string]interface{}{
		"before": len(notes),
		"after":  len(cleaned),
	})

	return len(notes), len(cleaned), nil
}

// SearchSimilar returns the contents of the top-k notes nearest to the
// query in the semantic store.
func (s *noteService) SearchSimilar(ctx context.Context, query string, topK int) ([]string, error) {
	res, err := s.embeddingProvider.Generate(ctx, query, constant.EmbedTaskQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	matches, err := uow.NoteEmbeddingRepository().SearchSimilar(ctx, res.Values, topK)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Document)
	}
	return out, nil
}

func (s *noteService) noteAt(ctx context.Context, uow unitofwork.UnitOfWork, position int) (*entity.Note, error) {
	notes, err := uow.NoteRepository().ListOrdered(ctx)
	if err != nil {
		return nil, err
	}
	if position < 1 || position > len(notes) {
		return nil, fmt.Errorf("note %d does not exist (have %d)", position, len(notes))
	}
	return notes[position-1], nil
}

func (s *noteService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		fmt.Printf("[WARN] Failed to publish %s event: %v\n", eventType, err)
	}
}

// parseCleanedNotes accepts only a JSON array of non-empty strings,
// optionally wrapped in a markdown fence.
func parseCleanedNotes(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var cleaned []string
	if err := json.Unmarshal([]byte(raw), &cleaned); err != nil {
		return nil, fmt.Errorf("model returned a malformed note list: %w", err)
	}

	out := make([]string, 0, len(cleaned))
	for _, c := range cleaned {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, fmt.Errorf("model returned a malformed note list: empty entry")
		}
		out = append(out, c)
	}
	return out, nil
}
