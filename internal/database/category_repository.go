// internal/database/category_repository.go
package database

import (
	"context"
	"fmt"
	"time"

	"heron-marsh/internal/models"
	"heron-marsh/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CategoryDocument represents the MongoDB schema for a category
type CategoryDocument struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	CreatorID   string    `bson:"creatorid"`
	ThreadCount int       `bson:"threadcount"`
	CreatedAt   time.Time `bson:"createdat"`
}

func documentToCategory(doc *CategoryDocument) (*models.Category, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid category ID in database: %v", err)
	}
	creatorID, err := uuid.Parse(doc.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("invalid creator ID in database: %v", err)
	}

	return &models.Category{
		ID:          id,
		Name:        doc.Name,
		Description: doc.Description,
		CreatorID:   creatorID,
		ThreadCount: doc.ThreadCount,
		CreatedAt:   doc.CreatedAt,
	}, nil
}

// CreateCategory inserts a new category; the name must be unique.
func (m *MongoDB) CreateCategory(ctx context.Context, category *models.Category) error {
	existing := m.Categories.FindOne(ctx, bson.M{"name": category.Name})
	if existing.Err() == nil {
		return utils.NewAppError(utils.ErrCategoryExists, "Category already exists: "+category.Name, nil)
	}
	if existing.Err() != mongo.ErrNoDocuments {
		return existing.Err()
	}

	doc := CategoryDocument{
		ID:          category.ID.String(),
		Name:        category.Name,
		Description: category.Description,
		CreatorID:   category.CreatorID.String(),
		ThreadCount: category.ThreadCount,
		CreatedAt:   category.CreatedAt,
	}

	_, err := m.Categories.InsertOne(ctx, doc)
	return err
}

// GetCategoryByID retrieves a category by its ID
func (m *MongoDB) GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var doc CategoryDocument

	err := m.Categories.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrCategoryNotFound, "Category not found", err)
	}
	if err != nil {
		return nil, err
	}

	return documentToCategory(&doc)
}

// GetCategoryByName retrieves a category by its unique name
func (m *MongoDB) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var doc CategoryDocument

	err := m.Categories.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrCategoryNotFound, "Category not found", err)
	}
	if err != nil {
		return nil, err
	}

	return documentToCategory(&doc)
}

// GetAllCategories retrieves every category
func (m *MongoDB) GetAllCategories(ctx context.Context) ([]*models.Category, error) {
	cursor, err := m.Categories.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("database query failed: %v", err)
	}
	defer cursor.Close(ctx)

	var categories []*models.Category
	for cursor.Next(ctx) {
		var doc CategoryDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("error decoding category document: %v", err)
		}

		category, err := documentToCategory(&doc)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration failed: %v", err)
	}
	return categories, nil
}

// UpdateCategoryThreadCount adjusts the cached thread count for a category
func (m *MongoDB) UpdateCategoryThreadCount(ctx context.Context, id uuid.UUID, delta int) error {
	filter := bson.M{"_id": id.String()}
	update := bson.M{"$inc": bson.M{"threadcount": delta}}

	result, err := m.Categories.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrCategoryNotFound, "Category not found", nil)
	}
	return nil
}
