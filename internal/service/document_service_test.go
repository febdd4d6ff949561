package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-butler-be/internal/constant"
)

func newTestDocumentService(t *testing.T) (IDocumentService, *memStore, string) {
	t.Helper()
	factory := newFakeUowFactory()
	emb := &fakeEmbeddingProvider{store: factory.store}
	llmFake := &fakeLLM{generateFn: func(string) (string, error) { return "a short summary", nil }}
	docDir := t.TempDir()
	svc := NewDocumentService(factory, emb, llmFake, nil, docDir, t.TempDir())
	return svc, factory.store, docDir
}

func TestStoreTextSupersedesSameDocKey(t *testing.T) {
	svc, store, _ := newTestDocumentService(t)
	ctx := context.Background()

	require.NoError(t, svc.StoreText(ctx, "conversation", "sess-1", "exchange", "first version", nil))
	require.NoError(t, svc.StoreText(ctx, "conversation", "sess-1", "exchange", "second version", nil))

	require.Len(t, store.docEmbeddings, 1)
	assert.Equal(t, "second version", store.docEmbeddings[0].Document)

	// a different filename is a different document
	require.NoError(t, svc.StoreText(ctx, "conversation", "sess-2", "exchange", "other session", nil))
	assert.Len(t, store.docEmbeddings, 2)
}

func TestStoreTextEmptyInput(t *testing.T) {
	svc, _, _ := newTestDocumentService(t)
	err := svc.StoreText(context.Background(), "conversation", "s", "exchange", "   ", nil)
	assert.ErrorContains(t, err, "nothing to store")
}

func TestSaveWorkingDocEmptyContentWritesNothing(t *testing.T) {
	svc, store, docDir := newTestDocumentService(t)

	err := svc.SaveWorkingDoc(context.Background(), "draft.md", "")
	assert.ErrorContains(t, err, "nothing to save")

	entries, readErr := os.ReadDir(docDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
	assert.Empty(t, store.docEmbeddings)
}

func TestSaveWorkingDocPersistsAndIndexes(t *testing.T) {
	svc, store, docDir := newTestDocumentService(t)

	require.NoError(t, svc.SaveWorkingDoc(context.Background(), "draft.md", "some actual content"))

	data, err := os.ReadFile(filepath.Join(docDir, "draft.md"))
	require.NoError(t, err)
	assert.Equal(t, "some actual content", string(data))

	require.Len(t, store.docEmbeddings, 1)
	assert.Equal(t, constant.DocTagDocument, store.docEmbeddings[0].Tag)
}

func TestRebuildIdempotent(t *testing.T) {
	factory := newFakeUowFactory()
	emb := &fakeEmbeddingProvider{store: factory.store}
	llmFake := &fakeLLM{}
	docDir := t.TempDir()
	svc := NewDocumentService(factory, emb, llmFake, nil, docDir, t.TempDir())
	notes := NewNoteService(factory, emb, llmFake, nil)
	ctx := context.Background()

	_, err := notes.Add(ctx, "remember the milk")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(docDir, "a.txt"), []byte("doc a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(docDir, "b.txt"), []byte("doc b"), 0644))

	docs1, notes1, err := svc.Rebuild(ctx)
	require.NoError(t, err)
	docs2, notes2, err := svc.Rebuild(ctx)
	require.NoError(t, err)

	assert.Equal(t, docs1, docs2)
	assert.Equal(t, notes1, notes2)
	assert.Equal(t, 2, docs1)
	assert.Equal(t, 1, notes1)

	assert.Len(t, factory.store.docEmbeddings, 2)
	assert.Len(t, factory.store.noteEmbeddings, 1)
}

func TestDocKeyDeterministic(t *testing.T) {
	assert.Equal(t, DocKey("pdf", "report.pdf"), DocKey("pdf", "report.pdf"))
	assert.NotEqual(t, DocKey("pdf", "report.pdf"), DocKey("document", "report.pdf"))
}

func TestUploadAndSummarize(t *testing.T) {
	svc, store, _ := newTestDocumentService(t)

	summary, err := svc.UploadAndSummarize(context.Background(), "meeting.txt", []byte("long meeting transcript"), nil)
	require.NoError(t, err)
	assert.Equal(t, "a short summary", summary)

	require.Len(t, store.docEmbeddings, 1)
	assert.Equal(t, constant.DocTagPdf, store.docEmbeddings[0].Tag)
	assert.Equal(t, "meeting.txt", store.docEmbeddings[0].Filename)
}
