// Package prompt assembles the system context for conversational turns:
// persona, profile facts, retrieved notes and whatever the session has
// loaded or drafted, in a fixed section order.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"ai-butler-be/pkg/assistant/session"
	"ai-butler-be/pkg/llm"
)

// Persona shapes the assistant's voice. Loaded once at startup.
type Persona struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Tone  string `json:"tone"`
	Style string `json:"style"`
}

type Assembler struct {
	persona Persona
	profile map[string]string
}

func NewAssembler(persona Persona, profile map[string]string) *Assembler {
	return &Assembler{
		persona: persona,
		profile: profile,
	}
}

// Build renders the system context. Section order is fixed; sections
// with no content are omitted entirely rather than emitted empty. The
// notes section is the exception: it always appears, with the literal
// "None" when retrieval came back empty.
func (a *Assembler) Build(sess *session.Session, notes []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are %s, a %s.\n\n", a.persona.Name, a.persona.Role)
	fmt.Fprintf(&sb, "Your tone is: %s\n", a.persona.Tone)
	fmt.Fprintf(&sb, "Your communication style: %s\n", a.persona.Style)

	if len(a.profile) > 0 {
		sb.WriteString("\nUser details:\n")
		keys := make([]string, 0, len(a.profile))
		for k := range a.profile {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "%s: %s\n", k, a.profile[k])
		}
	}

	sb.WriteString("\nNotes:\n")
	if len(notes) == 0 {
		sb.WriteString("None\n")
	} else {
		for _, note := range notes {
			fmt.Fprintf(&sb, "- %s\n", note)
		}
	}

	if text := strings.TrimSpace(sess.ActiveText); text != "" {
		sb.WriteString("\nRecent Document Content:\n")
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	if doc := sess.DraftDocument; doc != nil && strings.TrimSpace(doc.Content) != "" {
		fmt.Fprintf(&sb, "\nWorking Document (%s):\n", doc.Filename)
		sb.WriteString(doc.Content)
		sb.WriteString("\n")
	}

	if email := sess.DraftEmail; email != nil {
		sb.WriteString("\nPending Email Draft:\n")
		fmt.Fprintf(&sb, "To: %s\n", email.To)
		if len(email.CC) > 0 {
			fmt.Fprintf(&sb, "Cc: %s\n", strings.Join(email.CC, ", "))
		}
		fmt.Fprintf(&sb, "Subject: %s\n", email.Subject)
		fmt.Fprintf(&sb, "Body: %s\n", email.Body)
	}

	sb.WriteString("\nNow answer the user in your own voice.")
	return sb.String()
}

// Messages builds the ordered message list for the model: system
// context, then the transcript filtered to user/assistant roles, then
// the current utterance.
func (a *Assembler) Messages(system string, sess *session.Session, input string) []llm.Message {
	messages := make([]llm.Message, 0, len(sess.Transcript)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	for _, msg := range sess.Transcript {
		if msg.Role == llm.RoleUser || msg.Role == llm.RoleAssistant {
			messages = append(messages, msg)
		}
	}
	return append(messages, llm.Message{Role: llm.RoleUser, Content: input})
}
