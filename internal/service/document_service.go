package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ai-butler-be/internal/constant"
	"ai-butler-be/internal/entity"
	"ai-butler-be/internal/repository/unitofwork"
	"ai-butler-be/pkg/embedding"
	"ai-butler-be/pkg/events"
	"ai-butler-be/pkg/extract"
	"ai-butler-be/pkg/llm"
	pktNats "ai-butler-be/pkg/nats"
	"ai-butler-be/pkg/utils"

	"github.com/google/uuid"
)

const (
	// Chunking mirrors the note embedding pipeline.
	docChunkSize    = 1500
	docChunkOverlap = 200

	summarizePrompt = `Summarize the following document in a few dense paragraphs. Keep every name, date, figure and decision that appears. Do not add commentary.

%s`
)

type IDocumentService interface {
	StoreText(ctx context.Context, tag, filename, source, text string, metadata map[string]string) error
	Lookup(ctx context.Context, tag, query string, topK int) ([]*entity.DocumentEmbedding, error)
	SaveWorkingDoc(ctx context.Context, filename, content string) error
	ListDocuments(ctx context.Context) ([]string, error)
	LoadDocument(ctx context.Context, filename string) (string, error)
	UploadAndSummarize(ctx context.Context, filename string, data []byte, pages []int) (string, error)
	Rebuild(ctx context.Context) (docs int, notes int, err error)
}

type documentService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	llmProvider       llm.Provider
	eventPublisher    *pktNats.Publisher
	documentDir       string
	uploadDir         string
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	llmProvider llm.Provider,
	eventPublisher *pktNats.Publisher,
	documentDir string,
	uploadDir string,
) IDocumentService {
	return &documentService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		llmProvider:       llmProvider,
		eventPublisher:    eventPublisher,
		documentDir:       documentDir,
		uploadDir:         uploadDir,
	}
}

// DocKey derives the deterministic identity of a stored document from
// its tag and filename. Re-storing the same pair supersedes the old
// records instead of duplicating them.
func DocKey(tag, filename string) string {
	sum := sha256.Sum256([]byte(tag + "|" + filename))
	return hex.EncodeToString(sum[:])
}

func (s *documentService) StoreText(ctx context.Context, tag, filename, source, text string, metadata map[string]string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("nothing to store")
	}

	chunks := utils.SplitText(text, docChunkSize, docChunkOverlap)
	docKey := DocKey(tag, filename)
	now := time.Now()

	records := make([]*entity.DocumentEmbedding, 0, len(chunks))
	for _, chunk := range chunks {
		res, err := s.embeddingProvider.Generate(ctx, chunk, constant.EmbedTaskDocument)
		if err != nil {
			return fmt.Errorf("failed to embed document chunk: %w", err)
		}
		records = append(records, &entity.DocumentEmbedding{
			Id:             uuid.New(),
			Document:       chunk,
			EmbeddingValue: res.Values,
			DocKey:         docKey,
			Tag:            tag,
			Filename:       filename,
			Source:         source,
			Metadata:       metadata,
			CreatedAt:      now,
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentEmbeddingRepository().DeleteByDocKey(ctx, docKey); err != nil {
		return err
	}
	for _, rec := range records {
		if err := uow.DocumentEmbeddingRepository().Create(ctx, rec); err != nil {
			return err
		}
	}

	return uow.Commit()
}

func (s *documentService) Lookup(ctx context.Context, tag, query string, topK int) ([]*entity.DocumentEmbedding, error) {
	res, err := s.embeddingProvider.Generate(ctx, query, constant.EmbedTaskQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.DocumentEmbeddingRepository().SearchSimilar(ctx, res.Values, topK, tag)
}

// SaveWorkingDoc persists a working document to the documents dir and
// mirrors it into the semantic store.
func (s *documentService) SaveWorkingDoc(ctx context.Context, filename, content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("nothing to save")
	}

	if err := os.MkdirAll(s.documentDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(s.documentDir, filepath.Base(filename))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return err
	}

	if err := s.StoreText(ctx, constant.DocTagDocument, filepath.Base(filename), "working-doc", content, nil); err != nil {
		return err
	}

	s.publishEvent(ctx, constant.EventDocumentSaved, map[string]interface{}{
		"filename": filepath.Base(filename),
	})
	return nil
}

func (s *documentService) ListDocuments(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.documentDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *documentService) LoadDocument(_ context.Context, filename string) (string, error) {
	path := filepath.Join(s.documentDir, filepath.Base(filename))
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return extract.Text(filename, data, nil)
}

// UploadAndSummarize extracts text from an uploaded file, stores the
// raw bytes under the uploads dir, summarizes the text and indexes the
// summary in the documents namespace.
func (s *documentService) UploadAndSummarize(ctx context.Context, filename string, data []byte, pages []int) (string, error) {
	text, err := extract.Text(filename, data, pages)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no extractable text in %s", filename)
	}

	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.uploadDir, filepath.Base(filename)), data, 0644); err != nil {
		return "", err
	}

	summary, err := s.llmProvider.Generate(ctx, fmt.Sprintf(summarizePrompt, text), llm.WithTemperature(0.2))
	if err != nil {
		return "", fmt.Errorf("failed to summarize %s: %w", filename, err)
	}

	meta := map[string]string{"original_filename": filepath.Base(filename)}
	if err := s.StoreText(ctx, constant.DocTagPdf, filepath.Base(filename), "upload", summary, meta); err != nil {
		return "", err
	}

	return summary, nil
}

// Rebuild clears both vector namespaces and repopulates them from the
// durable sources: the note log and the files on disk. Running it twice
// in a row yields the same stores.
func (s *documentService) Rebuild(ctx context.Context) (int, int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, 0, err
	}
	if err := uow.NoteEmbeddingRepository().DeleteAllUnscoped(ctx); err != nil {
		uow.Rollback()
		return 0, 0, err
	}
	if err := uow.DocumentEmbeddingRepository().DeleteAllUnscoped(ctx); err != nil {
		uow.Rollback()
		return 0, 0, err
	}
	if err := uow.Commit(); err != nil {
		return 0, 0, err
	}

	// Re-mirror the note log.
	notes, err := s.uowFactory.NewUnitOfWork(ctx).NoteRepository().ListOrdered(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, n := range notes {
		res, err := s.embeddingProvider.Generate(ctx, n.Content, constant.EmbedTaskDocument)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to embed note during rebuild: %w", err)
		}
		emb := entity.NoteEmbedding{
			Id:             uuid.New(),
			Document:       n.Content,
			EmbeddingValue: res.Values,
			NoteId:         n.Id,
			CreatedAt:      time.Now(),
		}
		if err := s.uowFactory.NewUnitOfWork(ctx).NoteEmbeddingRepository().Create(ctx, &emb); err != nil {
			return 0, 0, err
		}
	}

	// Re-ingest saved documents.
	docCount := 0
	names, err := s.ListDocuments(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, name := range names {
		text, err := s.LoadDocument(ctx, name)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to read %s during rebuild: %w", name, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if err := s.StoreText(ctx, constant.DocTagDocument, name, "rebuild", text, nil); err != nil {
			return 0, 0, err
		}
		docCount++
	}

	s.publishEvent(ctx, constant.EventIndexRebuilt, map[string]interface{}{
		"notes":     len(notes),
		"documents": docCount,
	})

	return docCount, len(notes), nil
}

func (s *documentService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
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
