// internal/database/memory.go
package database

import (
	"context"
	"sort"
	"sync"

	"heron-marsh/internal/models"
	"heron-marsh/internal/utils"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and local development. It
// deep-copies aggregates on both load and save so callers observe the same
// load-snapshot / persist-whole semantics as the real backends.
type MemoryStore struct {
	mu         sync.RWMutex
	threads    map[uuid.UUID]*models.Thread
	users      map[uuid.UUID]*models.User
	categories map[uuid.UUID]*models.Category
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		threads:    make(map[uuid.UUID]*models.Thread),
		users:      make(map[uuid.UUID]*models.User),
		categories: make(map[uuid.UUID]*models.Category),
	}
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func cloneVotes(votes []models.Vote) []models.Vote {
	if votes == nil {
		return nil
	}
	out := make([]models.Vote, len(votes))
	copy(out, votes)
	return out
}

func cloneReplies(replies []*models.Reply) []*models.Reply {
	if replies == nil {
		return nil
	}
	out := make([]*models.Reply, len(replies))
	for i, r := range replies {
		clone := *r
		clone.Votes = cloneVotes(r.Votes)
		clone.Children = cloneReplies(r.Children)
		out[i] = &clone
	}
	return out
}

func cloneThread(thread *models.Thread) *models.Thread {
	clone := *thread
	clone.Tags = append([]uuid.UUID(nil), thread.Tags...)
	clone.Votes = cloneVotes(thread.Votes)
	clone.Replies = cloneReplies(thread.Replies)
	return &clone
}

func (s *MemoryStore) LoadThread(ctx context.Context, id uuid.UUID) (*models.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	thread, exists := s.threads[id]
	if !exists {
		return nil, utils.NewAppError(utils.ErrThreadNotFound, "Thread not found", nil)
	}
	return cloneThread(thread), nil
}

func (s *MemoryStore) SaveThread(ctx context.Context, thread *models.Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.threads[thread.ID] = cloneThread(thread)
	return nil
}

func (s *MemoryStore) DeleteThread(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.threads[id]; !exists {
		return utils.NewAppError(utils.ErrThreadNotFound, "Thread not found", nil)
	}
	delete(s.threads, id)
	return nil
}

func (s *MemoryStore) GetCategoryThreads(ctx context.Context, categoryID uuid.UUID) ([]*models.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var threads []*models.Thread
	for _, thread := range s.threads {
		if thread.CategoryID == categoryID {
			threads = append(threads, cloneThread(thread))
		}
	}
	sort.Slice(threads, func(i, j int) bool {
		if threads[i].IsPinned != threads[j].IsPinned {
			return threads[i].IsPinned
		}
		return threads[i].CreatedAt.After(threads[j].CreatedAt)
	})
	return threads, nil
}

func (s *MemoryStore) GetRecentThreads(ctx context.Context, limit int) ([]*models.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	threads := make([]*models.Thread, 0, len(s.threads))
	for _, thread := range s.threads {
		threads = append(threads, cloneThread(thread))
	}
	sort.Slice(threads, func(i, j int) bool {
		return threads[i].CreatedAt.After(threads[j].CreatedAt)
	})
	if limit > 0 && len(threads) > limit {
		threads = threads[:limit]
	}
	return threads, nil
}

func (s *MemoryStore) IncrementThreadViews(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread, exists := s.threads[id]
	if !exists {
		return utils.NewAppError(utils.ErrThreadNotFound, "Thread not found", nil)
	}
	thread.Views++
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	clone := *user
	return &clone, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
}

func (s *MemoryStore) SaveUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *MemoryStore) SetUserReputation(ctx context.Context, userID uuid.UUID, reputation int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[userID]
	if !exists {
		return utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	user.Reputation = reputation
	return nil
}

func (s *MemoryStore) UpdateUserActivity(ctx context.Context, id uuid.UUID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[id]
	if !exists {
		return utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	user.IsConnected = active
	return nil
}

func (s *MemoryStore) CreateCategory(ctx context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.Name == category.Name {
			return utils.NewAppError(utils.ErrCategoryExists, "Category already exists: "+category.Name, nil)
		}
	}
	clone := *category
	s.categories[category.ID] = &clone
	return nil
}

func (s *MemoryStore) GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, exists := s.categories[id]
	if !exists {
		return nil, utils.NewAppError(utils.ErrCategoryNotFound, "Category not found", nil)
	}
	clone := *category
	return &clone, nil
}

func (s *MemoryStore) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, category := range s.categories {
		if category.Name == name {
			clone := *category
			return &clone, nil
		}
	}
	return nil, utils.NewAppError(utils.ErrCategoryNotFound, "Category not found", nil)
}

func (s *MemoryStore) GetAllCategories(ctx context.Context) ([]*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]*models.Category, 0, len(s.categories))
	for _, category := range s.categories {
		clone := *category
		categories = append(categories, &clone)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (s *MemoryStore) UpdateCategoryThreadCount(ctx context.Context, id uuid.UUID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category, exists := s.categories[id]
	if !exists {
		return utils.NewAppError(utils.ErrCategoryNotFound, "Category not found", nil)
	}
	category.ThreadCount += delta
	return nil
}
