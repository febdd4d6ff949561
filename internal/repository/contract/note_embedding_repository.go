package contract

import (
	"context"

	"ai-butler-be/internal/entity"
	"ai-butler-be/internal/repository/specification"

	"github.com/google/uuid"
)

type NoteEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.NoteEmbedding) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByNoteId(ctx context.Context, noteId uuid.UUID) error
	DeleteAllUnscoped(ctx context.Context) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.NoteEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilar orders by pgvector cosine distance to the query vector.
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.NoteEmbedding, error)
}
