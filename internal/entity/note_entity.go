package entity

import (
	"time"

	"github.com/google/uuid"
)

// Note is one entry in the durable note log. Ordering by CreatedAt
// defines the user-facing positional index for edit and delete.
type Note struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Content   string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
