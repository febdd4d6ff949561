package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNoteService(t *testing.T, generateFn func(string) (string, error)) (INoteService, *memStore) {
	t.Helper()
	factory := newFakeUowFactory()
	emb := &fakeEmbeddingProvider{store: factory.store}
	llmFake := &fakeLLM{generateFn: generateFn}
	return NewNoteService(factory, emb, llmFake, nil), factory.store
}

func TestNoteAddDeleteAccounting(t *testing.T) {
	svc, store := newTestNoteService(t, nil)
	ctx := context.Background()

	pos, err := svc.Add(ctx, "the wifi password is hunter2")
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	pos, err = svc.Add(ctx, "dentist prefers morning appointments")
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	_, err = svc.Add(ctx, "the car takes premium fuel")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 2))

	notes, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "the wifi password is hunter2", notes[0].Content)
	assert.Equal(t, "the car takes premium fuel", notes[1].Content)

	// every retained note is retrievable by a substring query
	for _, n := range notes {
		got, err := svc.SearchSimilar(ctx, n.Content[:10], 5)
		require.NoError(t, err)
		assert.Contains(t, got, n.Content)
	}

	// log and mirror stay in step
	assert.Len(t, store.noteEmbeddings, 2)
}

func TestNoteEditKeepsOldEmbedding(t *testing.T) {
	svc, store := newTestNoteService(t, nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, "original content")
	require.NoError(t, err)

	require.NoError(t, svc.Edit(ctx, 1, "rewritten content"))

	notes, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "rewritten content", notes[0].Content)

	// edit adds a fresh embedding without retiring the stale one
	assert.Len(t, store.noteEmbeddings, 2)
}

func TestNoteEditOutOfRange(t *testing.T) {
	svc, _ := newTestNoteService(t, nil)

	err := svc.Edit(context.Background(), 4, "whatever")
	assert.ErrorContains(t, err, "does not exist")
}

func TestNoteCleanReplacesLog(t *testing.T) {
	svc, store := newTestNoteService(t, func(string) (string, error) {
		return `["merged note one", "merged note two"]`, nil
	})
	ctx := context.Background()

	for _, c := range []string{"a", "b", "c"} {
		_, err := svc.Add(ctx, c)
		require.NoError(t, err)
	}

	before, after, err := svc.Clean(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, before)
	assert.Equal(t, 2, after)

	notes, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "merged note one", notes[0].Content)
	assert.Equal(t, "merged note two", notes[1].Content)
	assert.Len(t, store.noteEmbeddings, 2)
}

func TestNoteCleanMalformedOutputChangesNothing(t *testing.T) {
	for _, raw := range []string{
		"Sure! Here are your cleaned notes:\n1. a\n2. b",
		`["fine", ""]`,
		`{"notes": ["a"]}`,
	} {
		svc, store := newTestNoteService(t, func(string) (string, error) { return raw, nil })
		ctx := context.Background()

		_, err := svc.Add(ctx, "first note")
		require.NoError(t, err)
		_, err = svc.Add(ctx, "second note")
		require.NoError(t, err)

		_, _, err = svc.Clean(ctx)
		assert.Error(t, err, "raw=%q", raw)

		notes, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Len(t, notes, 2)
		assert.Len(t, store.noteEmbeddings, 2)
	}
}

func TestNoteCleanEmptyLogIsNoop(t *testing.T) {
	svc, _ := newTestNoteService(t, nil)

	before, after, err := svc.Clean(context.Background())
	require.NoError(t, err)
	assert.Zero(t, before)
	assert.Zero(t, after)
}
