package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"ai-butler-be/internal/entity"
	"ai-butler-be/internal/repository/contract"
	"ai-butler-be/internal/repository/specification"
	"ai-butler-be/internal/repository/unitofwork"
	"ai-butler-be/pkg/embedding"
	"ai-butler-be/pkg/googleapi"
	"ai-butler-be/pkg/llm"

	"github.com/google/uuid"
)

// memStore backs the fake repositories. The fake embedding provider
// shares it so similarity search can match on the last query text.
type memStore struct {
	notes          []*entity.Note
	noteEmbeddings []*entity.NoteEmbedding
	docEmbeddings  []*entity.DocumentEmbedding
	lastQuery      string
}

type fakeUowFactory struct {
	store *memStore
}

func newFakeUowFactory() *fakeUowFactory {
	return &fakeUowFactory{store: &memStore{}}
}

func (f *fakeUowFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeUow struct {
	store *memStore
}

func (u *fakeUow) Begin(_ context.Context) error { return nil }
func (u *fakeUow) Commit() error                 { return nil }
func (u *fakeUow) Rollback() error               { return nil }

func (u *fakeUow) NoteRepository() contract.NoteRepository {
	return contractNoteRepo{store: u.store}
}

// The contract interfaces are satisfied through small adapter structs.

type contractNoteRepo struct {
	store *memStore
}

func (r contractNoteRepo) Create(_ context.Context, note *entity.Note) error {
	r.store.notes = append(r.store.notes, note)
	return nil
}

func (r contractNoteRepo) Update(_ context.Context, note *entity.Note) error {
	for i, n := range r.store.notes {
		if n.Id == note.Id {
			r.store.notes[i] = note
			return nil
		}
	}
	return fmt.Errorf("note not found")
}

func (r contractNoteRepo) Delete(_ context.Context, id uuid.UUID) error {
	out := r.store.notes[:0]
	for _, n := range r.store.notes {
		if n.Id != id {
			out = append(out, n)
		}
	}
	r.store.notes = out
	return nil
}

func (r contractNoteRepo) FindOne(_ context.Context, _ ...specification.Specification) (*entity.Note, error) {
	if len(r.store.notes) == 0 {
		return nil, nil
	}
	return r.store.notes[0], nil
}

func (r contractNoteRepo) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.Note, error) {
	return append([]*entity.Note(nil), r.store.notes...), nil
}

func (r contractNoteRepo) ListOrdered(_ context.Context) ([]*entity.Note, error) {
	out := append([]*entity.Note(nil), r.store.notes...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r contractNoteRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	return int64(len(r.store.notes)), nil
}

type contractNoteEmbRepo struct {
	store *memStore
}

func (u *fakeUow) NoteEmbeddingRepository() contract.NoteEmbeddingRepository {
	return contractNoteEmbRepo{store: u.store}
}

func (r contractNoteEmbRepo) Create(_ context.Context, emb *entity.NoteEmbedding) error {
	r.store.noteEmbeddings = append(r.store.noteEmbeddings, emb)
	return nil
}

func (r contractNoteEmbRepo) Delete(_ context.Context, id uuid.UUID) error {
	out := r.store.noteEmbeddings[:0]
	for _, e := range r.store.noteEmbeddings {
		if e.Id != id {
			out = append(out, e)
		}
	}
	r.store.noteEmbeddings = out
	return nil
}

func (r contractNoteEmbRepo) DeleteByNoteId(_ context.Context, noteId uuid.UUID) error {
	out := r.store.noteEmbeddings[:0]
	for _, e := range r.store.noteEmbeddings {
		if e.NoteId != noteId {
			out = append(out, e)
		}
	}
	r.store.noteEmbeddings = out
	return nil
}

func (r contractNoteEmbRepo) DeleteAllUnscoped(_ context.Context) error {
	r.store.noteEmbeddings = nil
	return nil
}

func (r contractNoteEmbRepo) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.NoteEmbedding, error) {
	return append([]*entity.NoteEmbedding(nil), r.store.noteEmbeddings...), nil
}

func (r contractNoteEmbRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	return int64(len(r.store.noteEmbeddings)), nil
}

func (r contractNoteEmbRepo) SearchSimilar(_ context.Context, _ []float32, limit int) ([]*entity.NoteEmbedding, error) {
	var out []*entity.NoteEmbedding
	for _, e := range r.store.noteEmbeddings {
		if strings.Contains(e.Document, r.store.lastQuery) {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type contractDocEmbRepo struct {
	store *memStore
}

func (u *fakeUow) DocumentEmbeddingRepository() contract.DocumentEmbeddingRepository {
	return contractDocEmbRepo{store: u.store}
}

func (r contractDocEmbRepo) Create(_ context.Context, emb *entity.DocumentEmbedding) error {
	r.store.docEmbeddings = append(r.store.docEmbeddings, emb)
	return nil
}

func (r contractDocEmbRepo) DeleteByDocKey(_ context.Context, docKey string) error {
	out := r.store.docEmbeddings[:0]
	for _, e := range r.store.docEmbeddings {
		if e.DocKey != docKey {
			out = append(out, e)
		}
	}
	r.store.docEmbeddings = out
	return nil
}

func (r contractDocEmbRepo) DeleteAllUnscoped(_ context.Context) error {
	r.store.docEmbeddings = nil
	return nil
}

func (r contractDocEmbRepo) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.DocumentEmbedding, error) {
	return append([]*entity.DocumentEmbedding(nil), r.store.docEmbeddings...), nil
}

func (r contractDocEmbRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	return int64(len(r.store.docEmbeddings)), nil
}

func (r contractDocEmbRepo) SearchSimilar(_ context.Context, _ []float32, limit int, tag string) ([]*entity.DocumentEmbedding, error) {
	var out []*entity.DocumentEmbedding
	for _, e := range r.store.docEmbeddings {
		if tag != "" && e.Tag != tag {
			continue
		}
		if strings.Contains(e.Document, r.store.lastQuery) {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// fakeEmbeddingProvider records query texts into the shared store so
// the fake similarity search can match on them.
type fakeEmbeddingProvider struct {
	store *memStore
	err   error
}

func (p *fakeEmbeddingProvider) Generate(_ context.Context, text string, taskType string) (*embedding.Response, error) {
	if p.err != nil {
		return nil, p.err
	}
	if taskType == "RETRIEVAL_QUERY" {
		p.store.lastQuery = text
	}
	return &embedding.Response{Values: []float32{1, 0, 0}}, nil
}

type fakeLLM struct {
	generateFn func(prompt string) (string, error)
	chatFn     func(history []llm.Message) (string, error)
	fragments  []string
	streamErr  error
}

func (p *fakeLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	if p.chatFn != nil {
		return p.chatFn(history)
	}
	return strings.Join(p.fragments, ""), nil
}

func (p *fakeLLM) ChatStream(_ context.Context, _ []llm.Message, _ ...llm.Option) (<-chan string, <-chan error) {
	out := make(chan string, len(p.fragments))
	errs := make(chan error, 1)
	for _, f := range p.fragments {
		out <- f
	}
	close(out)
	if p.streamErr != nil {
		errs <- p.streamErr
	}
	close(errs)
	return out, errs
}

func (p *fakeLLM) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	if p.generateFn != nil {
		return p.generateFn(prompt)
	}
	return "", nil
}

type fakeDelivery struct {
	fragments []string
	done      []string
}

func (d *fakeDelivery) Fragment(_ string, text string) {
	d.fragments = append(d.fragments, text)
}

func (d *fakeDelivery) Done(_ string, full string) {
	d.done = append(d.done, full)
}

type fakeGmail struct {
	sendCalls int
	lastTo    []string
}

func (g *fakeGmail) ListEmails(_ context.Context, _ string, _ int) ([]googleapi.Email, error) {
	return nil, nil
}

func (g *fakeGmail) GetEmail(_ context.Context, id string) (*googleapi.Email, error) {
	return &googleapi.Email{ID: id}, nil
}

func (g *fakeGmail) MarkRead(_ context.Context, _ string) error  { return nil }
func (g *fakeGmail) StarEmail(_ context.Context, _ string) error { return nil }

func (g *fakeGmail) SendEmail(_ context.Context, to []string, _ []string, _, _ string) error {
	g.sendCalls++
	g.lastTo = to
	return nil
}

type fakeCalendar struct {
	createCalls   int
	lastSummary   string
	lastStart     string
	lastEnd       string
	lastAttendees []string
}

func (c *fakeCalendar) ListEventsBetween(_ context.Context, _, _ string) ([]googleapi.Event, error) {
	return nil, nil
}

func (c *fakeCalendar) CreateEvent(_ context.Context, summary, startTime, endTime, _ string, attendees []string) (*googleapi.Event, error) {
	c.createCalls++
	c.lastSummary = summary
	c.lastStart = startTime
	c.lastEnd = endTime
	c.lastAttendees = attendees
	return &googleapi.Event{Summary: summary, Start: startTime, End: endTime}, nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }
