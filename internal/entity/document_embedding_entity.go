package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentEmbedding is one record in the documents namespace of the
// semantic store: stored conversations, uploaded files and saved
// working documents. DocKey is deterministic (derived from tag and
// filename) so re-storing the same document supersedes the old record
// instead of duplicating it.
type DocumentEmbedding struct {
	Id             uuid.UUID
	Document       string
	EmbeddingValue []float32
	DocKey         string
	Tag            string
	Filename       string
	Source         string
	Metadata       map[string]string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
