// Package session holds the per-conversation mutable state: the
// transcript, loaded reference text and the pending drafts awaiting an
// explicit commit.
package session

import (
	"time"

	"github.com/google/uuid"

	"ai-butler-be/pkg/llm"
)

// MaxActiveText bounds the loaded reference text so prompts stay inside
// the model context window. Overflow truncates, it does not error.
const MaxActiveText = 10000

type DraftDocument struct {
	Filename string
	Content  string
}

type DraftEmail struct {
	To      string
	CC      []string
	Subject string
	Body    string
}

type DraftEvent struct {
	Summary     string
	Start       string
	End         string
	Attendees   []string
	Description string
}

type LookupResult struct {
	Text     string
	Tag      string
	Filename string
}

// LookupState stages the results of the last lookup command so
// follow-up commands can address them by position.
type LookupState struct {
	Tag     string
	Query   string
	Results []LookupResult
}

// Session is owned by exactly one conversation. Handlers mutate it
// freely; no turn runs concurrently against the same session.
type Session struct {
	ID            string
	Transcript    []llm.Message
	ActiveText    string
	DraftDocument *DraftDocument
	DraftEmail    *DraftEmail
	DraftEvent    *DraftEvent
	LastLookup    *LookupState
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func New() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}

func (s *Session) AppendUser(text string) {
	s.Transcript = append(s.Transcript, llm.Message{Role: llm.RoleUser, Content: text})
	s.touch()
}

func (s *Session) AppendAssistant(text string) {
	s.Transcript = append(s.Transcript, llm.Message{Role: llm.RoleAssistant, Content: text})
	s.touch()
}

// SetActiveText replaces the loaded reference text, truncating to the
// configured cap. The cap counts runes so a multi-byte character is
// never split.
func (s *Session) SetActiveText(text string) {
	if runes := []rune(text); len(runes) > MaxActiveText {
		text = string(runes[:MaxActiveText])
	}
	s.ActiveText = text
	s.touch()
}

// LastUserMessage returns the most recent user utterance, or "" when
// the transcript has none.
func (s *Session) LastUserMessage() string {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		if s.Transcript[i].Role == llm.RoleUser {
			return s.Transcript[i].Content
		}
	}
	return ""
}

// LastAssistantMessage returns the most recent assistant reply, or ""
// when the transcript has none.
func (s *Session) LastAssistantMessage() string {
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		if s.Transcript[i].Role == llm.RoleAssistant {
			return s.Transcript[i].Content
		}
	}
	return ""
}

// RecentTurns returns up to n trailing transcript messages.
func (s *Session) RecentTurns(n int) []llm.Message {
	if n <= 0 || len(s.Transcript) <= n {
		return s.Transcript
	}
	return s.Transcript[len(s.Transcript)-n:]
}

// InvalidateLookup drops staged lookup results. Called for every user
// input that is not itself a lookup command.
func (s *Session) InvalidateLookup() {
	s.LastLookup = nil
}

// Reset restores every field to its initial empty value. The session
// keeps its identity.
func (s *Session) Reset() {
	s.Transcript = nil
	s.ActiveText = ""
	s.DraftDocument = nil
	s.DraftEmail = nil
	s.DraftEvent = nil
	s.LastLookup = nil
	s.touch()
}
