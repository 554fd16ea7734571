package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"heron-marsh/internal/api"
	"heron-marsh/internal/engine/actors"
	"heron-marsh/internal/middleware"
	"heron-marsh/internal/models"

	"github.com/google/uuid"
)

// CreateThreadRequest represents a request to create a new thread
type CreateThreadRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	CategoryID string   `json:"categoryId"`
	Tags       []string `json:"tags,omitempty"`
}

// EditThreadRequest represents a request to edit an existing thread
type EditThreadRequest struct {
	ThreadID string `json:"threadId"`
	Title    string `json:"title,omitempty"`
	Content  string `json:"content,omitempty"`
}

// VoteRequest represents a request to vote on a thread or one of its replies
type VoteRequest struct {
	ThreadID string `json:"threadId"`
	ReplyID  string `json:"replyId,omitempty"`
	Type     string `json:"type"`
}

// HandleThread handles thread creation, retrieval, editing and deletion.
func (s *Server) HandleThread() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.handleGetThread(w, r)
		case http.MethodPost:
			s.handleCreateThread(w, r)
		case http.MethodPut:
			s.handleEditThread(w, r)
		case http.MethodDelete:
			s.handleDeleteThread(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) handleGetThread(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	categoryID := r.URL.Query().Get("categoryId")

	if id != "" {
		threadID, err := uuid.Parse(id)
		if err != nil {
			http.Error(w, "Invalid thread ID format", http.StatusBadRequest)
			return
		}

		future := s.Context.RequestFuture(s.Engine.GetThreadActor(),
			&actors.GetThreadMsg{ThreadID: threadID}, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			http.Error(w, "Failed to get thread", http.StatusInternalServerError)
			return
		}
		if respondAppError(w, result) {
			return
		}

		writeJSON(w, http.StatusOK, result)
		return
	}

	if categoryID != "" {
		catID, err := uuid.Parse(categoryID)
		if err != nil {
			http.Error(w, "Invalid category ID format", http.StatusBadRequest)
			return
		}

		future := s.Context.RequestFuture(s.Engine.GetThreadActor(),
			&actors.GetCategoryThreadsMsg{CategoryID: catID}, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			http.Error(w, "Failed to get threads", http.StatusInternalServerError)
			return
		}
		if respondAppError(w, result) {
			return
		}

		writeJSON(w, http.StatusOK, result)
		return
	}

	http.Error(w, "Thread ID or category ID required", http.StatusBadRequest)
}

func (s *Server) handleCreateThread(w http.ResponseWriter, r *http.Request) {
	var req CreateThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	authorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	if req.Title == "" || req.Content == "" {
		http.Error(w, "Title and content required", http.StatusBadRequest)
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		http.Error(w, "Invalid category ID format", http.StatusBadRequest)
		return
	}

	tags := make([]uuid.UUID, 0, len(req.Tags))
	for _, tag := range req.Tags {
		tagID, err := uuid.Parse(tag)
		if err != nil {
			http.Error(w, "Invalid tag ID format", http.StatusBadRequest)
			return
		}
		tags = append(tags, tagID)
	}

	msg := &actors.CreateThreadMsg{
		Title:      req.Title,
		Content:    req.Content,
		AuthorID:   authorID,
		CategoryID: categoryID,
		Tags:       tags,
	}

	future := s.Context.RequestFuture(s.Engine.GetThreadActor(), msg, s.RequestTimeout)
	result, err := future.Result()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to create thread: %v", err), http.StatusInternalServerError)
		return
	}
	if respondAppError(w, result) {
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleEditThread(w http.ResponseWriter, r *http.Request) {
	var req EditThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	authorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	threadID, err := uuid.Parse(req.ThreadID)
	if err != nil {
		http.Error(w, "Invalid thread ID format", http.StatusBadRequest)
		return
	}

	msg := &actors.EditThreadMsg{
		ThreadID: threadID,
		AuthorID: authorID,
		Title:    req.Title,
		Content:  req.Content,
	}

	future := s.Context.RequestFuture(s.Engine.GetThreadActor(), msg, s.RequestTimeout)
	result, err := future.Result()
	if err != nil {
		http.Error(w, "Failed to edit thread", http.StatusInternalServerError)
		return
	}
	if respondAppError(w, result) {
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteThread(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	threadID, err := uuid.Parse(id)
	if err != nil {
		http.Error(w, "Invalid thread ID format", http.StatusBadRequest)
		return
	}

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	msg := &actors.DeleteThreadMsg{ThreadID: threadID, UserID: userID}
	future := s.Context.RequestFuture(s.Engine.GetThreadActor(), msg, s.RequestTimeout)
	result, err := future.Result()
	if err != nil {
		http.Error(w, "Failed to delete thread", http.StatusInternalServerError)
		return
	}
	if respondAppError(w, result) {
		return
	}

	writeJSON(w, http.StatusOK, &api.StatusResponse{Success: true, Message: "Thread deleted"})
}

// HandlePinThread pins or unpins a thread.
func (s *Server) HandlePinThread() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			ThreadID string `json:"threadId"`
			Pinned   bool   `json:"pinned"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		threadID, err := uuid.Parse(req.ThreadID)
		if err != nil {
			http.Error(w, "Invalid thread ID format", http.StatusBadRequest)
			return
		}

		msg := &actors.PinThreadMsg{ThreadID: threadID, Pinned: req.Pinned}
		future := s.Context.RequestFuture(s.Engine.GetThreadActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			http.Error(w, "Failed to pin thread", http.StatusInternalServerError)
			return
		}
		if respondAppError(w, result) {
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// HandleRecentThreads returns the newest threads across all categories.
func (s *Server) HandleRecentThreads() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		limit := 10
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				http.Error(w, "Invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		future := s.Context.RequestFuture(s.Engine.GetThreadActor(),
			&actors.GetRecentThreadsMsg{Limit: limit}, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			http.Error(w, "Failed to get recent threads", http.StatusInternalServerError)
			return
		}
		if respondAppError(w, result) {
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// HandleVote applies a vote to a thread or to a reply nested anywhere in its
// tree. The voter is taken from the JWT; the response carries the target's
// new net score and the voter's resulting vote.
func (s *Server) HandleVote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req VoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		threadID, err := uuid.Parse(req.ThreadID)
		if err != nil {
			http.Error(w, "Invalid thread ID format", http.StatusBadRequest)
			return
		}

		var replyID *uuid.UUID
		if req.ReplyID != "" {
			parsed, err := uuid.Parse(req.ReplyID)
			if err != nil {
				http.Error(w, "Invalid reply ID format", http.StatusBadRequest)
				return
			}
			replyID = &parsed
		}

		msg := &actors.CastVoteMsg{
			ThreadID: threadID,
			ReplyID:  replyID,
			UserID:   userID,
			Type:     models.VoteType(req.Type),
		}

		future := s.Context.RequestFuture(s.Engine.GetThreadActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to apply vote: %v", err), http.StatusInternalServerError)
			return
		}
		if respondAppError(w, result) {
			return
		}

		vote := result.(*actors.VoteResult)
		resp := &api.VoteResponse{
			ThreadID: vote.ThreadID.String(),
			NetScore: vote.NetScore,
			UserVote: vote.UserVote,
		}
		if vote.ReplyID != nil {
			resp.ReplyID = vote.ReplyID.String()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
