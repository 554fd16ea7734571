package actors

import (
	"log"
	"time"

	stdctx "context"

	"heron-marsh/internal/database"
	"heron-marsh/internal/models"
	"heron-marsh/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for Category operations
type (
	CreateCategoryMsg struct {
		Name        string
		Description string
		CreatorID   uuid.UUID
	}

	GetCategoryMsg struct {
		Name string
	}

	GetCategoryDetailsMsg struct {
		CategoryID uuid.UUID
	}

	ListCategoriesMsg struct{}

	GetCountsMsg struct{}
)

// CategoryActor handles all category-related operations, backed by the store.
type CategoryActor struct {
	metrics *utils.MetricsCollector
	store   database.Store
}

func NewCategoryActor(metrics *utils.MetricsCollector, store database.Store) actor.Actor {
	return &CategoryActor{
		metrics: metrics,
		store:   store,
	}
}

// Receive handles incoming messages
func (a *CategoryActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("CategoryActor started")

	case *actor.Stopping:
		log.Printf("CategoryActor stopping")

	case *CreateCategoryMsg:
		a.handleCreateCategory(context, msg)

	case *GetCategoryMsg:
		a.handleGetCategory(context, msg)

	case *GetCategoryDetailsMsg:
		a.handleGetDetails(context, msg)

	case *ListCategoriesMsg:
		a.handleListCategories(context)

	case *GetCountsMsg:
		a.handleGetCounts(context)
	}
}

func (a *CategoryActor) handleCreateCategory(context actor.Context, msg *CreateCategoryMsg) {
	log.Printf("CategoryActor: Creating category: %s", msg.Name)
	startTime := time.Now()
	ctx := stdctx.Background()

	newCategory := &models.Category{
		ID:          uuid.New(),
		Name:        msg.Name,
		Description: msg.Description,
		CreatorID:   msg.CreatorID,
		CreatedAt:   time.Now(),
	}

	if err := a.store.CreateCategory(ctx, newCategory); err != nil {
		respondStoreError(context, err, "create category")
		return
	}

	a.metrics.AddOperationLatency("create_category", time.Since(startTime))
	context.Respond(newCategory)
}

func (a *CategoryActor) handleGetCategory(context actor.Context, msg *GetCategoryMsg) {
	ctx := stdctx.Background()

	category, err := a.store.GetCategoryByName(ctx, msg.Name)
	if err != nil {
		respondStoreError(context, err, "fetch category")
		return
	}
	context.Respond(category)
}

func (a *CategoryActor) handleGetDetails(context actor.Context, msg *GetCategoryDetailsMsg) {
	ctx := stdctx.Background()

	category, err := a.store.GetCategoryByID(ctx, msg.CategoryID)
	if err != nil {
		respondStoreError(context, err, "fetch category")
		return
	}
	context.Respond(category)
}

func (a *CategoryActor) handleListCategories(context actor.Context) {
	ctx := stdctx.Background()

	categories, err := a.store.GetAllCategories(ctx)
	if err != nil {
		respondStoreError(context, err, "list categories")
		return
	}
	context.Respond(categories)
}

func (a *CategoryActor) handleGetCounts(context actor.Context) {
	ctx := stdctx.Background()

	categories, err := a.store.GetAllCategories(ctx)
	if err != nil {
		respondStoreError(context, err, "count categories")
		return
	}
	context.Respond(len(categories))
}
