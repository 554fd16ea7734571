// internal/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"heron-marsh/internal/models"
	"heron-marsh/internal/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresDB implements Store on top of PostgreSQL. The thread's vote set and
// reply tree are stored as JSONB columns so the aggregate is still written
// and read as one unit, matching the MongoDB adapter's semantics.
type PostgresDB struct {
	DB *sqlx.DB
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sqlx.Connect("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %v", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %v", err)
	}

	log.Println("Successfully connected to PostgreSQL!")

	return &PostgresDB{DB: db}, nil
}

// Close closes the database connection
func (p *PostgresDB) Close(ctx context.Context) error {
	log.Println("Closing PostgreSQL connection...")
	return p.DB.Close()
}

// InitializeTables creates all necessary tables if they don't exist
func (p *PostgresDB) InitializeTables(ctx context.Context) error {
	_, err := p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			email VARCHAR(100) UNIQUE NOT NULL,
			password_hash VARCHAR(100) NOT NULL,
			reputation INTEGER DEFAULT 0 NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			last_active TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			is_connected BOOLEAN DEFAULT FALSE NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %v", err)
	}

	_, err = p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS categories (
			id UUID PRIMARY KEY,
			name VARCHAR(100) UNIQUE NOT NULL,
			description TEXT,
			creator_id UUID NOT NULL,
			thread_count INTEGER DEFAULT 0 NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create categories table: %v", err)
	}

	_, err = p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS threads (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			author_id UUID NOT NULL,
			author_username VARCHAR(50),
			category_id UUID NOT NULL,
			tags TEXT[] DEFAULT '{}',
			votes JSONB DEFAULT '[]' NOT NULL,
			replies JSONB DEFAULT '[]' NOT NULL,
			views INTEGER DEFAULT 0 NOT NULL,
			is_pinned BOOLEAN DEFAULT FALSE NOT NULL,
			is_edited BOOLEAN DEFAULT FALSE NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create threads table: %v", err)
	}

	return nil
}

// threadRow mirrors the threads table; votes and replies stay as raw JSON
// until converted to model types.
type threadRow struct {
	ID             uuid.UUID      `db:"id"`
	Title          string         `db:"title"`
	Content        string         `db:"content"`
	AuthorID       uuid.UUID      `db:"author_id"`
	AuthorUsername sql.NullString `db:"author_username"`
	CategoryID     uuid.UUID      `db:"category_id"`
	Tags           pq.StringArray `db:"tags"`
	Votes          []byte         `db:"votes"`
	Replies        []byte         `db:"replies"`
	Views          int            `db:"views"`
	IsPinned       bool           `db:"is_pinned"`
	IsEdited       bool           `db:"is_edited"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func rowToThread(row *threadRow) (*models.Thread, error) {
	var votes []models.Vote
	if len(row.Votes) > 0 {
		if err := json.Unmarshal(row.Votes, &votes); err != nil {
			return nil, fmt.Errorf("invalid votes JSON for thread %s: %v", row.ID, err)
		}
	}

	var replies []*models.Reply
	if len(row.Replies) > 0 {
		if err := json.Unmarshal(row.Replies, &replies); err != nil {
			return nil, fmt.Errorf("invalid replies JSON for thread %s: %v", row.ID, err)
		}
	}

	tags := make([]uuid.UUID, len(row.Tags))
	for i, tagStr := range row.Tags {
		tag, err := uuid.Parse(tagStr)
		if err != nil {
			return nil, fmt.Errorf("invalid tag ID for thread %s: %v", row.ID, err)
		}
		tags[i] = tag
	}

	return &models.Thread{
		ID:             row.ID,
		Title:          row.Title,
		Content:        row.Content,
		AuthorID:       row.AuthorID,
		AuthorUsername: row.AuthorUsername.String,
		CategoryID:     row.CategoryID,
		Tags:           tags,
		Votes:          votes,
		Replies:        replies,
		Views:          row.Views,
		IsPinned:       row.IsPinned,
		IsEdited:       row.IsEdited,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}, nil
}

// LoadThread retrieves a thread aggregate by ID.
func (p *PostgresDB) LoadThread(ctx context.Context, id uuid.UUID) (*models.Thread, error) {
	var row threadRow
	err := p.DB.GetContext(ctx, &row, `SELECT * FROM threads WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, utils.NewAppError(utils.ErrThreadNotFound, "Thread not found", err)
	}
	if err != nil {
		return nil, err
	}
	return rowToThread(&row)
}

// SaveThread upserts the whole thread aggregate.
func (p *PostgresDB) SaveThread(ctx context.Context, thread *models.Thread) error {
	votesJSON, err := json.Marshal(thread.Votes)
	if err != nil {
		return fmt.Errorf("failed to marshal votes: %v", err)
	}
	if thread.Votes == nil {
		votesJSON = []byte("[]")
	}

	repliesJSON, err := json.Marshal(thread.Replies)
	if err != nil {
		return fmt.Errorf("failed to marshal replies: %v", err)
	}
	if thread.Replies == nil {
		repliesJSON = []byte("[]")
	}

	tags := make([]string, len(thread.Tags))
	for i, tag := range thread.Tags {
		tags[i] = tag.String()
	}

	_, err = p.DB.ExecContext(ctx, `
		INSERT INTO threads (id, title, content, author_id, author_username, category_id,
			tags, votes, replies, views, is_pinned, is_edited, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			tags = EXCLUDED.tags,
			votes = EXCLUDED.votes,
			replies = EXCLUDED.replies,
			views = EXCLUDED.views,
			is_pinned = EXCLUDED.is_pinned,
			is_edited = EXCLUDED.is_edited,
			updated_at = EXCLUDED.updated_at
	`, thread.ID, thread.Title, thread.Content, thread.AuthorID, thread.AuthorUsername,
		thread.CategoryID, pq.Array(tags), votesJSON, repliesJSON, thread.Views,
		thread.IsPinned, thread.IsEdited, thread.CreatedAt, thread.UpdatedAt)
	return err
}

// DeleteThread removes a thread row; the embedded reply tree goes with it.
func (p *PostgresDB) DeleteThread(ctx context.Context, id uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `DELETE FROM threads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return utils.NewAppError(utils.ErrThreadNotFound, "Thread not found", nil)
	}
	return nil
}

// GetCategoryThreads retrieves all threads in a category, pinned first.
func (p *PostgresDB) GetCategoryThreads(ctx context.Context, categoryID uuid.UUID) ([]*models.Thread, error) {
	var rows []threadRow
	err := p.DB.SelectContext(ctx, &rows, `
		SELECT * FROM threads WHERE category_id = $1
		ORDER BY is_pinned DESC, created_at DESC
	`, categoryID)
	if err != nil {
		return nil, err
	}

	threads := make([]*models.Thread, 0, len(rows))
	for i := range rows {
		thread, err := rowToThread(&rows[i])
		if err != nil {
			return nil, err
		}
		threads = append(threads, thread)
	}
	return threads, nil
}

// GetRecentThreads retrieves the newest threads across all categories.
func (p *PostgresDB) GetRecentThreads(ctx context.Context, limit int) ([]*models.Thread, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []threadRow
	err := p.DB.SelectContext(ctx, &rows, `
		SELECT * FROM threads ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}

	threads := make([]*models.Thread, 0, len(rows))
	for i := range rows {
		thread, err := rowToThread(&rows[i])
		if err != nil {
			return nil, err
		}
		threads = append(threads, thread)
	}
	return threads, nil
}

// IncrementThreadViews bumps the view counter in place.
func (p *PostgresDB) IncrementThreadViews(ctx context.Context, id uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `UPDATE threads SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return utils.NewAppError(utils.ErrThreadNotFound, "Thread not found", nil)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (p *PostgresDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := p.DB.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
func (p *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := p.DB.GetContext(ctx, &user, `SELECT * FROM users WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SaveUser upserts a user record.
func (p *PostgresDB) SaveUser(ctx context.Context, user *models.User) error {
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, reputation,
			created_at, last_active, is_connected)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			reputation = EXCLUDED.reputation,
			last_active = EXCLUDED.last_active,
			is_connected = EXCLUDED.is_connected
	`, user.ID, user.Username, user.Email, user.HashedPassword, user.Reputation,
		user.CreatedAt, user.LastActive, user.IsConnected)
	return err
}

// SetUserReputation stores the full recomputed reputation value.
func (p *PostgresDB) SetUserReputation(ctx context.Context, userID uuid.UUID, reputation int) error {
	result, err := p.DB.ExecContext(ctx,
		`UPDATE users SET reputation = $1 WHERE id = $2`, reputation, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	return nil
}

// UpdateUserActivity updates last-active time and connection status.
func (p *PostgresDB) UpdateUserActivity(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := p.DB.ExecContext(ctx,
		`UPDATE users SET last_active = NOW(), is_connected = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	return nil
}

// CreateCategory inserts a new category.
func (p *PostgresDB) CreateCategory(ctx context.Context, category *models.Category) error {
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO categories (id, name, description, creator_id, thread_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, category.ID, category.Name, category.Description, category.CreatorID,
		category.ThreadCount, category.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return utils.NewAppError(utils.ErrCategoryExists, "Category already exists: "+category.Name, err)
		}
		return err
	}
	return nil
}

// GetCategoryByID retrieves a category by ID.
func (p *PostgresDB) GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := p.DB.GetContext(ctx, &category, `SELECT * FROM categories WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, utils.NewAppError(utils.ErrCategoryNotFound, "Category not found", err)
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetCategoryByName retrieves a category by its unique name.
func (p *PostgresDB) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := p.DB.GetContext(ctx, &category, `SELECT * FROM categories WHERE name = $1`, name)
	if err == sql.ErrNoRows {
		return nil, utils.NewAppError(utils.ErrCategoryNotFound, "Category not found", err)
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetAllCategories retrieves every category.
func (p *PostgresDB) GetAllCategories(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := p.DB.SelectContext(ctx, &categories, `SELECT * FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// UpdateCategoryThreadCount adjusts the cached thread count for a category.
func (p *PostgresDB) UpdateCategoryThreadCount(ctx context.Context, id uuid.UUID, delta int) error {
	result, err := p.DB.ExecContext(ctx,
		`UPDATE categories SET thread_count = thread_count + $1 WHERE id = $2`, delta, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return utils.NewAppError(utils.ErrCategoryNotFound, "Category not found", nil)
	}
	return nil
}
