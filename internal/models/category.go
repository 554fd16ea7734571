package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatorID   uuid.UUID `json:"creatorId" db:"creator_id"`
	ThreadCount int       `json:"threadCount" db:"thread_count"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Tag is a free-form label attached to threads.
type Tag struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
}
