package unitofwork

import (
	"context"

	"ai-butler-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	NoteRepository() contract.NoteRepository
	NoteEmbeddingRepository() contract.NoteEmbeddingRepository
	DocumentEmbeddingRepository() contract.DocumentEmbeddingRepository
}
