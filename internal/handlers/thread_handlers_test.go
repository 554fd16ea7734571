package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"heron-marsh/internal/api"
	"heron-marsh/internal/database"
	"heron-marsh/internal/engine"
	"heron-marsh/internal/middleware"
	"heron-marsh/internal/models"
	"heron-marsh/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type serverFixture struct {
	server   *Server
	store    *database.MemoryStore
	authorID uuid.UUID
	threadID uuid.UUID
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	store := database.NewMemoryStore()
	ctx := context.Background()

	authorID := uuid.New()
	assert.NoError(t, store.SaveUser(ctx, &models.User{
		ID:        authorID,
		Username:  "author",
		Email:     "author@example.com",
		CreatedAt: time.Now(),
	}))

	categoryID := uuid.New()
	assert.NoError(t, store.CreateCategory(ctx, &models.Category{
		ID:        categoryID,
		Name:      "general",
		CreatorID: authorID,
		CreatedAt: time.Now(),
	}))

	threadID := uuid.New()
	assert.NoError(t, store.SaveThread(ctx, &models.Thread{
		ID:         threadID,
		Title:      "Test thread",
		Content:    "Test content",
		AuthorID:   authorID,
		CategoryID: categoryID,
		Votes:      []models.Vote{},
		Replies:    []*models.Reply{},
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}))

	system := actor.NewActorSystem()
	metrics := utils.NewMetricsCollector()
	eng := engine.NewEngine(system, store, metrics, nil)
	server := NewServer(system, eng, metrics, store, nil)

	return &serverFixture{
		server:   server,
		store:    store,
		authorID: authorID,
		threadID: threadID,
	}
}

// authenticatedRequest builds a request with the user ID already placed in
// the context, as the JWT middleware would do after validating a token.
func authenticatedRequest(method, target string, body []byte, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return req.WithContext(middleware.SetUserIDInContext(req.Context(), userID))
}

func TestHandleVoteOnThread(t *testing.T) {
	f := newServerFixture(t)
	voterID := uuid.New()

	body, _ := json.Marshal(map[string]string{
		"threadId": f.threadID.String(),
		"type":     "up",
	})
	req := authenticatedRequest(http.MethodPost, "/vote", body, voterID)
	rec := httptest.NewRecorder()
	f.server.HandleVote()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp api.VoteResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, f.threadID.String(), resp.ThreadID)
	assert.Equal(t, 1, resp.NetScore)
	assert.NotNil(t, resp.UserVote)
	assert.Equal(t, models.VoteUp, *resp.UserVote)

	// Same vote again toggles off; userVote marshals as null.
	req = authenticatedRequest(http.MethodPost, "/vote", body, voterID)
	rec = httptest.NewRecorder()
	f.server.HandleVote()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var raw map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, "null", string(raw["userVote"]))
	assert.Equal(t, "0", string(raw["netScore"]))
}

func TestHandleVoteInvalidType(t *testing.T) {
	f := newServerFixture(t)

	body, _ := json.Marshal(map[string]string{
		"threadId": f.threadID.String(),
		"type":     "sideways",
	})
	req := authenticatedRequest(http.MethodPost, "/vote", body, uuid.New())
	rec := httptest.NewRecorder()
	f.server.HandleVote()(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleVoteThreadNotFound(t *testing.T) {
	f := newServerFixture(t)

	body, _ := json.Marshal(map[string]string{
		"threadId": uuid.New().String(),
		"type":     "up",
	})
	req := authenticatedRequest(http.MethodPost, "/vote", body, uuid.New())
	rec := httptest.NewRecorder()
	f.server.HandleVote()(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleVoteUnauthenticated(t *testing.T) {
	f := newServerFixture(t)

	body, _ := json.Marshal(map[string]string{
		"threadId": f.threadID.String(),
		"type":     "up",
	})
	req := httptest.NewRequest(http.MethodPost, "/vote", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.server.HandleVote()(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleReplyAndVoteOnReply(t *testing.T) {
	f := newServerFixture(t)

	body, _ := json.Marshal(map[string]string{
		"threadId": f.threadID.String(),
		"content":  "a reply",
	})
	req := authenticatedRequest(http.MethodPost, "/reply", body, f.authorID)
	rec := httptest.NewRecorder()
	f.server.HandleReply()(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var reply models.Reply
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "a reply", reply.Content)

	// Vote on the reply; the author's reputation stays untouched.
	body, _ = json.Marshal(map[string]string{
		"threadId": f.threadID.String(),
		"replyId":  reply.ID.String(),
		"type":     "down",
	})
	req = authenticatedRequest(http.MethodPost, "/vote", body, uuid.New())
	rec = httptest.NewRecorder()
	f.server.HandleVote()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp api.VoteResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, -1, resp.NetScore)
	assert.Equal(t, reply.ID.String(), resp.ReplyID)

	author, err := f.store.GetUser(context.Background(), f.authorID)
	assert.NoError(t, err)
	assert.Equal(t, 0, author.Reputation)
}

func TestHandleThreadGetIncrementsViews(t *testing.T) {
	f := newServerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/thread?id="+f.threadID.String(), nil)
	rec := httptest.NewRecorder()
	f.server.HandleThread()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var thread models.Thread
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &thread))
	assert.Equal(t, 1, thread.Views)
}

func TestRegisterAndLoginHandlers(t *testing.T) {
	f := newServerFixture(t)

	body, _ := json.Marshal(map[string]string{
		"username": "newuser",
		"email":    "new@example.com",
		"password": "hunter22",
	})
	req := httptest.NewRequest(http.MethodPost, "/user/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.server.HandleUserRegistration()(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	body, _ = json.Marshal(map[string]string{
		"email":    "new@example.com",
		"password": "hunter22",
	})
	req = httptest.NewRequest(http.MethodPost, "/user/login", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	f.server.HandleUserLogin()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var login api.LoginResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.True(t, login.Success)
	assert.NotEmpty(t, login.Token)

	// The issued token round-trips through validation.
	claims, err := middleware.ValidateToken(login.Token)
	assert.NoError(t, err)
	assert.Equal(t, login.UserID, claims.UserID.String())

	// Bad password is rejected.
	body, _ = json.Marshal(map[string]string{
		"email":    "new@example.com",
		"password": "wrong",
	})
	req = httptest.NewRequest(http.MethodPost, "/user/login", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	f.server.HandleUserLogin()(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
