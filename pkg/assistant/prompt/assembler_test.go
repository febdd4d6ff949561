package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-butler-be/pkg/assistant/session"
	"ai-butler-be/pkg/llm"
)

func testPersona() Persona {
	return Persona{
		Name:  "Alfred",
		Role:  "personal butler",
		Tone:  "dry and courteous",
		Style: "concise",
	}
}

func TestBuildMinimalSession(t *testing.T) {
	a := NewAssembler(testPersona(), nil)
	out := a.Build(session.New(), nil)

	assert.Contains(t, out, "You are Alfred, a personal butler.")
	assert.Contains(t, out, "Notes:\nNone")
	assert.NotContains(t, out, "User details:")
	assert.NotContains(t, out, "Recent Document Content:")
	assert.NotContains(t, out, "Working Document")
	assert.NotContains(t, out, "Pending Email Draft:")
}

func TestBuildProfileSortedByKey(t *testing.T) {
	a := NewAssembler(testPersona(), map[string]string{
		"timezone": "Europe/Paris",
		"employer": "Wayne Enterprises",
	})
	out := a.Build(session.New(), nil)

	assert.Contains(t, out, "User details:")
	employerIdx := strings.Index(out, "employer:")
	timezoneIdx := strings.Index(out, "timezone:")
	assert.True(t, employerIdx >= 0 && employerIdx < timezoneIdx)
}

func TestBuildNotesListed(t *testing.T) {
	a := NewAssembler(testPersona(), nil)
	out := a.Build(session.New(), []string{"prefers tea", "allergic to peanuts"})

	assert.Contains(t, out, "- prefers tea")
	assert.Contains(t, out, "- allergic to peanuts")
	assert.NotContains(t, out, "None")
}

func TestBuildIncludesActiveTextAndDrafts(t *testing.T) {
	sess := session.New()
	sess.SetActiveText("page content here")
	sess.DraftDocument = &session.DraftDocument{Filename: "plan.md", Content: "step one"}
	sess.DraftEmail = &session.DraftEmail{
		To:      "bob@example.com",
		CC:      []string{"alice@example.com"},
		Subject: "hello",
		Body:    "see attached",
	}

	out := NewAssembler(testPersona(), nil).Build(sess, nil)

	assert.Contains(t, out, "Recent Document Content:\npage content here")
	assert.Contains(t, out, "Working Document (plan.md):")
	assert.Contains(t, out, "To: bob@example.com")
	assert.Contains(t, out, "Cc: alice@example.com")

	// Fixed section order: active text before document before email
	activeIdx := strings.Index(out, "Recent Document Content:")
	docIdx := strings.Index(out, "Working Document")
	emailIdx := strings.Index(out, "Pending Email Draft:")
	assert.True(t, activeIdx < docIdx && docIdx < emailIdx)
}

func TestBuildOmitsEmptyDraftDocument(t *testing.T) {
	sess := session.New()
	sess.DraftDocument = &session.DraftDocument{Filename: "empty.md", Content: "   "}

	out := NewAssembler(testPersona(), nil).Build(sess, nil)
	assert.NotContains(t, out, "Working Document")
}

func TestMessagesOrdering(t *testing.T) {
	sess := session.New()
	sess.AppendUser("first question")
	sess.AppendAssistant("first answer")
	sess.Transcript = append(sess.Transcript, llm.Message{Role: llm.RoleSystem, Content: "stray system entry"})

	a := NewAssembler(testPersona(), nil)
	messages := a.Messages("system context", sess, "second question")

	assert.Len(t, messages, 4)
	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Equal(t, "system context", messages[0].Content)
	assert.Equal(t, "first question", messages[1].Content)
	assert.Equal(t, "first answer", messages[2].Content)
	assert.Equal(t, "second question", messages[3].Content)
}
