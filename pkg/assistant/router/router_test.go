package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"ai-butler-be/pkg/assistant/session"
)

func newTestRouter() *Router {
	return New(zap.NewNop())
}

func TestDispatchKnownCommand(t *testing.T) {
	r := newTestRouter()

	var gotArgs []string
	r.Register(Command{
		Name: "wiki",
		Handler: func(ctx context.Context, sess *session.Session, args []string) ([]string, error) {
			gotArgs = args
			return []string{"ok"}, nil
		},
	})

	replies := r.Dispatch(context.Background(), session.New(), "/wiki Karl Popper")
	assert.Equal(t, []string{"ok"}, replies)
	assert.Equal(t, []string{"Karl", "Popper"}, gotArgs)
}

func TestDispatchCaseInsensitiveToken(t *testing.T) {
	r := newTestRouter()
	r.Register(Command{
		Name: "news",
		Handler: func(ctx context.Context, sess *session.Session, args []string) ([]string, error) {
			return []string{"headlines"}, nil
		},
	})

	replies := r.Dispatch(context.Background(), session.New(), "/NEWS")
	assert.Equal(t, []string{"headlines"}, replies)
}

func TestDispatchUnknownCommand(t *testing.T) {
	r := newTestRouter()
	replies := r.Dispatch(context.Background(), session.New(), "/frobnicate")
	assert.Len(t, replies, 1)
	assert.Contains(t, replies[0], "Unknown command")
}

func TestDispatchHandlerErrorBecomesReply(t *testing.T) {
	r := newTestRouter()
	r.Register(Command{
		Name: "search",
		Handler: func(ctx context.Context, sess *session.Session, args []string) ([]string, error) {
			return nil, errors.New("upstream timeout")
		},
	})

	replies := r.Dispatch(context.Background(), session.New(), "/search something")
	assert.Len(t, replies, 1)
	assert.Contains(t, replies[0], "upstream timeout")
}

func TestDispatchKeepsFreeTextUnsplit(t *testing.T) {
	r := newTestRouter()

	var gotArgs []string
	r.Register(Command{
		Name: "note",
		Handler: func(ctx context.Context, sess *session.Session, args []string) ([]string, error) {
			gotArgs = args
			return []string{"added"}, nil
		},
	})

	r.Dispatch(context.Background(), session.New(), "/note add remember to water the plants")
	assert.Equal(t, []string{"add", "remember to water the plants"}, gotArgs)
}

func TestIsCommand(t *testing.T) {
	assert.True(t, IsCommand("/help"))
	assert.True(t, IsCommand("  /wiki topic"))
	assert.False(t, IsCommand("tell me about go"))
	assert.False(t, IsCommand(""))
}

func TestCommandsSorted(t *testing.T) {
	r := newTestRouter()
	noop := func(ctx context.Context, sess *session.Session, args []string) ([]string, error) {
		return []string{"x"}, nil
	}
	r.Register(Command{Name: "wiki", Handler: noop})
	r.Register(Command{Name: "news", Handler: noop})
	r.Register(Command{Name: "search", Handler: noop})

	catalog := r.Commands()
	assert.Equal(t, "news", catalog[0].Name)
	assert.Equal(t, "search", catalog[1].Name)
	assert.Equal(t, "wiki", catalog[2].Name)
}
