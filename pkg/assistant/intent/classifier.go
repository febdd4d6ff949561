// Package intent decides whether a free-text utterance is an implicit
// tool invocation and, if so, synthesizes the literal command string.
package intent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ai-butler-be/pkg/llm"
)

// NoCommand is the sentinel the model must emit when the user is just
// chatting. Comparison is exact after trimming, nothing fuzzier.
const NoCommand = "NO_COMMAND"

// historyWindow bounds how much transcript the classifier sees, enough
// for follow-ups like "send it" to resolve against context.
const historyWindow = 6

// Tool describes one command for the classifier's catalog.
type Tool struct {
	Usage       string
	Description string
}

type Classifier struct {
	provider llm.Provider
	tools    []Tool
	logger   *zap.Logger
}

func NewClassifier(provider llm.Provider, tools []Tool, logger *zap.Logger) *Classifier {
	return &Classifier{
		provider: provider,
		tools:    tools,
		logger:   logger,
	}
}

// Classify returns the synthesized command string and true when the
// utterance maps to a tool, or "" and false when it is conversational.
// A failed model call propagates; the caller decides chat fallback.
func (c *Classifier) Classify(ctx context.Context, input string, history []llm.Message) (string, bool, error) {
	prompt := c.buildPrompt(input, history)

	response, err := c.provider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		return "", false, fmt.Errorf("intent classification failed: %w", err)
	}

	command := cleanResponse(response)
	if strings.EqualFold(command, NoCommand) || command == "" {
		return "", false, nil
	}
	if !strings.HasPrefix(command, "/") {
		// The model chatted instead of classifying. Treat as no action.
		c.logger.Debug("classifier output is not a command", zap.String("output", command))
		return "", false, nil
	}

	c.logger.Debug("tool intent detected",
		zap.String("input", input),
		zap.String("command", command),
	)
	return command, true, nil
}

func (c *Classifier) buildPrompt(input string, history []llm.Message) string {
	var sb strings.Builder

	sb.WriteString("You have access to these tools:\n")
	for _, tool := range c.tools {
		sb.WriteString(fmt.Sprintf("- `%s` — %s\n", tool.Usage, tool.Description))
	}

	sb.WriteString("\nYour job:\n")
	sb.WriteString("1. Determine if the user intends to invoke a tool.\n")
	sb.WriteString("2. If yes, respond with a single well-formed command.\n")
	sb.WriteString("3. If the user is just chatting, respond only with:\n")
	sb.WriteString(NoCommand + "\n")

	sb.WriteString("\nExamples:\n")
	sb.WriteString("- \"Tell me who Karl Popper was\" -> /wiki Karl Popper\n")
	sb.WriteString("- \"Look up papers about diffusion models\" -> /papers diffusion models\n")
	sb.WriteString("- \"Summarize this URL: https://foo.com\" -> /visit https://foo.com\n")
	sb.WriteString("- \"What are my upcoming tasks?\" -> " + NoCommand + "\n")

	if start := len(history) - historyWindow; start > 0 {
		history = history[start:]
	}
	if len(history) > 0 {
		sb.WriteString("\nRecent conversation:\n")
		for _, msg := range history {
			sb.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
		}
	}

	sb.WriteString("\nThe user said:\n")
	sb.WriteString(fmt.Sprintf("%q\n", input))
	sb.WriteString("\nNow respond:")
	return sb.String()
}

// cleanResponse strips the markdown fencing models like to add around
// command strings.
func cleanResponse(response string) string {
	response = strings.TrimSpace(response)
	response = strings.Trim(response, "`")
	return strings.TrimSpace(response)
}
