package contract

import (
	"context"

	"ai-butler-be/internal/entity"
	"ai-butler-be/internal/repository/specification"
)

type DocumentEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.DocumentEmbedding) error
	// DeleteByDocKey removes every record previously stored under the
	// same deterministic document key, making re-stores supersede.
	DeleteByDocKey(ctx context.Context, docKey string) error
	DeleteAllUnscoped(ctx context.Context) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilar orders by pgvector cosine distance, optionally
	// constrained to a tag.
	SearchSimilar(ctx context.Context, embedding []float32, limit int, tag string) ([]*entity.DocumentEmbedding, error)
}
