package entity

import (
	"time"

	"github.com/google/uuid"
)

// NoteEmbedding mirrors a note into the semantic store. Edits append a
// fresh embedding without retiring the old one; retrieval tolerates the
// staleness.
type NoteEmbedding struct {
	Id             uuid.UUID
	Document       string
	EmbeddingValue []float32
	NoteId         uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
