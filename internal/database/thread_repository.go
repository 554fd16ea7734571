// internal/database/thread_repository.go
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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VoteDocument represents a single vote inside a thread document.
type VoteDocument struct {
	UserID string `bson:"userid"`
	Type   string `bson:"type"`
}

// ReplyDocument represents a reply node; children are embedded recursively so
// the whole tree lives inside the thread document.
type ReplyDocument struct {
	ID        string          `bson:"id"`
	AuthorID  string          `bson:"authorid"`
	Content   string          `bson:"content"`
	CreatedAt time.Time       `bson:"createdat"`
	UpdatedAt time.Time       `bson:"updatedat"`
	IsEdited  bool            `bson:"isedited"`
	Votes     []VoteDocument  `bson:"votes"`
	Children  []ReplyDocument `bson:"children"`
}

// ThreadDocument represents the MongoDB schema for a thread aggregate.
type ThreadDocument struct {
	ID             string          `bson:"_id"`
	Title          string          `bson:"title"`
	Content        string          `bson:"content"`
	AuthorID       string          `bson:"authorid"`
	AuthorUsername string          `bson:"authorusername"`
	CategoryID     string          `bson:"categoryid"`
	Tags           []string        `bson:"tags"`
	Votes          []VoteDocument  `bson:"votes"`
	Replies        []ReplyDocument `bson:"replies"`
	Views          int             `bson:"views"`
	IsPinned       bool            `bson:"ispinned"`
	IsEdited       bool            `bson:"isedited"`
	CreatedAt      time.Time       `bson:"createdat"`
	UpdatedAt      time.Time       `bson:"updatedat"`
}

func votesToDocuments(votes []models.Vote) []VoteDocument {
	docs := make([]VoteDocument, len(votes))
	for i, v := range votes {
		docs[i] = VoteDocument{UserID: v.UserID.String(), Type: string(v.Type)}
	}
	return docs
}

func documentsToVotes(docs []VoteDocument) ([]models.Vote, error) {
	votes := make([]models.Vote, len(docs))
	for i, d := range docs {
		userID, err := uuid.Parse(d.UserID)
		if err != nil {
			return nil, fmt.Errorf("invalid voter ID: %v", err)
		}
		votes[i] = models.Vote{UserID: userID, Type: models.VoteType(d.Type)}
	}
	return votes, nil
}

func repliesToDocuments(replies []*models.Reply) []ReplyDocument {
	docs := make([]ReplyDocument, len(replies))
	for i, r := range replies {
		docs[i] = ReplyDocument{
			ID:        r.ID.String(),
			AuthorID:  r.AuthorID.String(),
			Content:   r.Content,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			IsEdited:  r.IsEdited,
			Votes:     votesToDocuments(r.Votes),
			Children:  repliesToDocuments(r.Children),
		}
	}
	return docs
}

func documentsToReplies(docs []ReplyDocument) ([]*models.Reply, error) {
	replies := make([]*models.Reply, len(docs))
	for i, d := range docs {
		id, err := uuid.Parse(d.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid reply ID: %v", err)
		}
		authorID, err := uuid.Parse(d.AuthorID)
		if err != nil {
			return nil, fmt.Errorf("invalid reply author ID: %v", err)
		}
		votes, err := documentsToVotes(d.Votes)
		if err != nil {
			return nil, err
		}
		children, err := documentsToReplies(d.Children)
		if err != nil {
			return nil, err
		}
		replies[i] = &models.Reply{
			ID:        id,
			AuthorID:  authorID,
			Content:   d.Content,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
			IsEdited:  d.IsEdited,
			Votes:     votes,
			Children:  children,
		}
	}
	return replies, nil
}

// ThreadToDocument converts a Thread model to a MongoDB document.
func ThreadToDocument(thread *models.Thread) *ThreadDocument {
	tags := make([]string, len(thread.Tags))
	for i, tag := range thread.Tags {
		tags[i] = tag.String()
	}

	return &ThreadDocument{
		ID:             thread.ID.String(),
		Title:          thread.Title,
		Content:        thread.Content,
		AuthorID:       thread.AuthorID.String(),
		AuthorUsername: thread.AuthorUsername,
		CategoryID:     thread.CategoryID.String(),
		Tags:           tags,
		Votes:          votesToDocuments(thread.Votes),
		Replies:        repliesToDocuments(thread.Replies),
		Views:          thread.Views,
		IsPinned:       thread.IsPinned,
		IsEdited:       thread.IsEdited,
		CreatedAt:      thread.CreatedAt,
		UpdatedAt:      thread.UpdatedAt,
	}
}

// DocumentToThread converts a MongoDB document to a Thread model.
func DocumentToThread(doc *ThreadDocument) (*models.Thread, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid thread ID: %v", err)
	}

	authorID, err := uuid.Parse(doc.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("invalid author ID: %v", err)
	}

	categoryID, err := uuid.Parse(doc.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("invalid category ID: %v", err)
	}

	tags := make([]uuid.UUID, len(doc.Tags))
	for i, tagStr := range doc.Tags {
		tag, err := uuid.Parse(tagStr)
		if err != nil {
			return nil, fmt.Errorf("invalid tag ID: %v", err)
		}
		tags[i] = tag
	}

	votes, err := documentsToVotes(doc.Votes)
	if err != nil {
		return nil, err
	}

	replies, err := documentsToReplies(doc.Replies)
	if err != nil {
		return nil, err
	}

	return &models.Thread{
		ID:             id,
		Title:          doc.Title,
		Content:        doc.Content,
		AuthorID:       authorID,
		AuthorUsername: doc.AuthorUsername,
		CategoryID:     categoryID,
		Tags:           tags,
		Votes:          votes,
		Replies:        replies,
		Views:          doc.Views,
		IsPinned:       doc.IsPinned,
		IsEdited:       doc.IsEdited,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}

// SaveThread creates or updates a thread aggregate in MongoDB. The document
// carries the full vote set and reply tree, so a save replaces the aggregate
// wholesale.
func (m *MongoDB) SaveThread(ctx context.Context, thread *models.Thread) error {
	doc := ThreadToDocument(thread)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": thread.ID.String()}
	update := bson.M{"$set": doc}

	_, err := m.Threads.UpdateOne(ctx, filter, update, opts)
	return err
}

// LoadThread retrieves a thread aggregate by its ID.
func (m *MongoDB) LoadThread(ctx context.Context, id uuid.UUID) (*models.Thread, error) {
	var doc ThreadDocument

	err := m.Threads.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrThreadNotFound, "Thread not found", err)
	}
	if err != nil {
		return nil, err
	}

	return DocumentToThread(&doc)
}

// DeleteThread removes a thread and, with it, its whole reply tree.
func (m *MongoDB) DeleteThread(ctx context.Context, id uuid.UUID) error {
	result, err := m.Threads.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return utils.NewAppError(utils.ErrThreadNotFound, "Thread not found", nil)
	}
	return nil
}

// GetCategoryThreads retrieves all threads for a given category ID, pinned
// threads first, newest after that.
func (m *MongoDB) GetCategoryThreads(ctx context.Context, categoryID uuid.UUID) ([]*models.Thread, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "ispinned", Value: -1},
		{Key: "createdat", Value: -1},
	})

	cursor, err := m.Threads.Find(ctx, bson.M{"categoryid": categoryID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %v", err)
	}
	defer cursor.Close(ctx)

	return m.decodeThreads(ctx, cursor)
}

// GetRecentThreads retrieves the most recently created threads across all
// categories.
func (m *MongoDB) GetRecentThreads(ctx context.Context, limit int) ([]*models.Thread, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdat", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cursor, err := m.Threads.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %v", err)
	}
	defer cursor.Close(ctx)

	return m.decodeThreads(ctx, cursor)
}

func (m *MongoDB) decodeThreads(ctx context.Context, cursor *mongo.Cursor) ([]*models.Thread, error) {
	var threads []*models.Thread
	for cursor.Next(ctx) {
		var doc ThreadDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("error decoding thread document: %v", err)
		}

		thread, err := DocumentToThread(&doc)
		if err != nil {
			return nil, err
		}
		threads = append(threads, thread)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration failed: %v", err)
	}
	return threads, nil
}

// IncrementThreadViews bumps the view counter without rewriting the aggregate.
func (m *MongoDB) IncrementThreadViews(ctx context.Context, id uuid.UUID) error {
	filter := bson.M{"_id": id.String()}
	update := bson.M{"$inc": bson.M{"views": 1}}

	result, err := m.Threads.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrThreadNotFound, "Thread not found", nil)
	}
	return nil
}
