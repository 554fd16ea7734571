// internal/database/user_repository.go
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

// UserDocument represents the MongoDB schema for a user
type UserDocument struct {
	ID             string    `bson:"_id"`            // MongoDB primary key
	Username       string    `bson:"username"`       // Username
	Email          string    `bson:"email"`          // Email address
	HashedPassword string    `bson:"hashedPassword"` // Hashed password
	Reputation     int       `bson:"reputation"`     // Derived reputation score
	CreatedAt      time.Time `bson:"createdAt"`      // Account creation timestamp
	LastActive     time.Time `bson:"lastActive"`     // Last active timestamp
	IsConnected    bool      `bson:"isConnected"`    // Connection status
}

func documentToUser(doc *UserDocument) (*models.User, error) {
	userID, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %v", err)
	}

	return &models.User{
		ID:             userID,
		Username:       doc.Username,
		Email:          doc.Email,
		HashedPassword: doc.HashedPassword,
		Reputation:     doc.Reputation,
		CreatedAt:      doc.CreatedAt,
		LastActive:     doc.LastActive,
		IsConnected:    doc.IsConnected,
	}, nil
}

// SaveUser creates or updates a user in MongoDB
func (m *MongoDB) SaveUser(ctx context.Context, user *models.User) error {
	doc := UserDocument{
		ID:             user.ID.String(),
		Username:       user.Username,
		Email:          user.Email,
		HashedPassword: user.HashedPassword,
		Reputation:     user.Reputation,
		CreatedAt:      user.CreatedAt,
		LastActive:     user.LastActive,
		IsConnected:    user.IsConnected,
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": user.ID.String()}
	update := bson.M{"$set": doc}

	_, err := m.Users.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetUser retrieves a user from MongoDB by their ID
func (m *MongoDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}

	return documentToUser(&doc)
}

// GetUserByEmail retrieves a user from MongoDB by their email address
func (m *MongoDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}

	return documentToUser(&doc)
}

// SetUserReputation stores the recomputed reputation for a user. The value is
// always the full derived score, never a delta.
func (m *MongoDB) SetUserReputation(ctx context.Context, userID uuid.UUID, reputation int) error {
	filter := bson.M{"_id": userID.String()}
	update := bson.M{"$set": bson.M{"reputation": reputation}}

	result, err := m.Users.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	return nil
}

// UpdateUserActivity updates a user's last active time and connection status
func (m *MongoDB) UpdateUserActivity(ctx context.Context, userID uuid.UUID, isConnected bool) error {
	filter := bson.M{"_id": userID.String()}
	update := bson.M{"$set": bson.M{
		"lastActive":  time.Now(),
		"isConnected": isConnected,
	}}

	result, err := m.Users.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	return nil
}
