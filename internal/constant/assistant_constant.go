package constant

const (
	// Embedding task hints forwarded to providers that distinguish
	// query-side and document-side vectors.
	EmbedTaskQuery    = "RETRIEVAL_QUERY"
	EmbedTaskDocument = "RETRIEVAL_DOCUMENT"

	// Semantic store tags for the document namespace.
	DocTagConversation = "conversation"
	DocTagDocument     = "document"
	DocTagPdf          = "pdf"

	// Event types published on the NATS bus.
	EventNoteCreated   = "NOTE_CREATED"
	EventEmailSent     = "EMAIL_SENT"
	EventEventCreated  = "EVENT_CREATED"
	EventIndexRebuilt  = "INDEX_REBUILT"
	EventNotesCleaned  = "NOTES_CLEANED"
	EventDocumentSaved = "DOCUMENT_SAVED"
)
