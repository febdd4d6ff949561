// Package router resolves slash-command lines to handlers. It owns
// parsing and dispatch only; the handlers themselves are registered by
// the service layer that holds the collaborators.
package router

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"ai-butler-be/pkg/assistant/session"
)

// Prefix marks a user input as a command line.
const Prefix = "/"

// Handler executes one command against the session and returns the
// assistant-visible replies. Errors are converted to an error reply at
// the dispatch boundary, never propagated further.
type Handler func(ctx context.Context, sess *session.Session, args []string) ([]string, error)

type Command struct {
	Name        string
	Usage       string
	Description string
	Handler     Handler
}

type Router struct {
	commands map[string]Command
	logger   *zap.Logger
}

func New(logger *zap.Logger) *Router {
	return &Router{
		commands: make(map[string]Command),
		logger:   logger,
	}
}

func (r *Router) Register(cmd Command) {
	r.commands[strings.ToLower(cmd.Name)] = cmd
}

// Commands returns the registered command catalog sorted by name, for
// help output and the intent classifier's tool listing.
func (r *Router) Commands() []Command {
	out := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsCommand reports whether the input line is slash-prefixed.
func IsCommand(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), Prefix)
}

// Dispatch parses a command line and runs its handler. The command
// token is case-insensitive; the remainder splits into at most two
// positional arguments so free text survives unsplit. Handler failures
// become a user-visible reply, not a crash.
func (r *Router) Dispatch(ctx context.Context, sess *session.Session, line string) []string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(line), Prefix)
	parts := strings.SplitN(trimmed, " ", 3)

	name := strings.ToLower(parts[0])
	var args []string
	for _, p := range parts[1:] {
		if p = strings.TrimSpace(p); p != "" {
			args = append(args, p)
		}
	}

	cmd, ok := r.commands[name]
	if !ok {
		return []string{fmt.Sprintf("Unknown command %s%s. Try %shelp.", Prefix, name, Prefix)}
	}

	replies, err := cmd.Handler(ctx, sess, args)
	if err != nil {
		r.logger.Warn("command failed",
			zap.String("command", cmd.Name),
			zap.Error(err),
		)
		replies = append(replies, fmt.Sprintf("%s%s failed: %v", Prefix, cmd.Name, err))
	}
	if len(replies) == 0 {
		replies = []string{fmt.Sprintf("%s%s finished with nothing to report.", Prefix, cmd.Name)}
	}
	return replies
}
