// Package distill extracts a durable personalization fact, if any, from
// a completed conversational exchange.
package distill

import (
	"context"
	"fmt"
	"strings"

	"ai-butler-be/pkg/llm"
)

// NoNote is the sentinel meaning the exchange holds nothing worth
// remembering. Only an exact match (after trimming) counts as a
// negative; any other non-empty output is a note to persist.
const NoNote = "NO_NOTE"

const systemPrompt = `You are a helpful assistant aiming to personalize the user experience by saving useful insights for future reference.

Instructions:
- Focus on user experience, not technical details.
- Return a standalone note or "NO_NOTE" — nothing else.`

type Distiller struct {
	provider llm.Provider
}

func NewDistiller(provider llm.Provider) *Distiller {
	return &Distiller{provider: provider}
}

// Distill asks the model whether the exchange contains a fact worth
// saving. existingNotes are the closest saved notes, supplied so the
// model avoids duplicates. Returns the note text and true, or "" and
// false when nothing should be saved.
func (d *Distiller) Distill(ctx context.Context, userMsg, assistantMsg string, existingNotes []string) (string, bool, error) {
	notes := "None"
	if len(existingNotes) > 0 {
		var lines []string
		for _, n := range existingNotes {
			lines = append(lines, "- "+n)
		}
		notes = strings.Join(lines, "\n")
	}

	userPrompt := fmt.Sprintf(`Here are saved notes:
%s

Interaction:
User: %s
Assistant: %s`, notes, userMsg, assistantMsg)

	response, err := d.provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: userPrompt},
	})
	if err != nil {
		return "", false, fmt.Errorf("note distillation failed: %w", err)
	}

	note := strings.TrimSpace(response)
	if note == "" || note == NoNote {
		return "", false, nil
	}
	return note, true, nil
}
