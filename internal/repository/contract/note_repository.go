package contract

import (
	"context"

	"ai-butler-be/internal/entity"
	"ai-butler-be/internal/repository/specification"

	"github.com/google/uuid"
)

// NoteRepository owns the durable note log. ListOrdered is the basis
// for the user-facing positional index, so its ordering must be stable.
type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	Update(ctx context.Context, note *entity.Note) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error)
	ListOrdered(ctx context.Context) ([]*entity.Note, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
