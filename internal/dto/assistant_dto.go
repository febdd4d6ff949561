package dto

type SendChatRequest struct {
	SessionId string `json:"session_id"`
	Message   string `json:"message" validate:"required"`
}

type SendChatResponse struct {
	SessionId string   `json:"session_id"`
	Replies   []string `json:"replies"`
	// Command is the slash command the turn resolved to, empty for
	// plain conversation.
	Command string `json:"command,omitempty"`
}

type ResetSessionRequest struct {
	SessionId string `json:"session_id" validate:"required"`
}

type UploadDocumentResponse struct {
	Filename string `json:"filename"`
	Summary  string `json:"summary"`
}

type TranscribeResponse struct {
	Text string `json:"text"`
}

type SpeakRequest struct {
	Text string `json:"text" validate:"required"`
}

// PublishDistillMessage rides the in-process bus from the chat turn to
// the distillation consumer.
type PublishDistillMessage struct {
	SessionId        string `json:"session_id"`
	UserMessage      string `json:"user_message"`
	AssistantMessage string `json:"assistant_message"`
}
