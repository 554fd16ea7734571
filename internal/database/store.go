package database

import (
	"context"

	"heron-marsh/internal/models"

	"github.com/google/uuid"
)

// Store defines the persistence operations the engine depends on. MongoDB is
// the primary backend; PostgreSQL and an in-memory store implement the same
// contract. Thread aggregates are loaded and persisted whole: the caller
// mutates an in-memory copy and writes it back.
type Store interface {
	// Connection
	Close(ctx context.Context) error

	// Thread methods
	LoadThread(ctx context.Context, id uuid.UUID) (*models.Thread, error)
	SaveThread(ctx context.Context, thread *models.Thread) error
	DeleteThread(ctx context.Context, id uuid.UUID) error
	GetCategoryThreads(ctx context.Context, categoryID uuid.UUID) ([]*models.Thread, error)
	GetRecentThreads(ctx context.Context, limit int) ([]*models.Thread, error)
	IncrementThreadViews(ctx context.Context, id uuid.UUID) error

	// User methods
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	SetUserReputation(ctx context.Context, userID uuid.UUID, reputation int) error
	UpdateUserActivity(ctx context.Context, id uuid.UUID, active bool) error

	// Category methods
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*models.Category, error)
	GetAllCategories(ctx context.Context) ([]*models.Category, error)
	UpdateCategoryThreadCount(ctx context.Context, id uuid.UUID, delta int) error
}
