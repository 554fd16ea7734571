package handlers

import (
	"encoding/json"
	"net/http"

	"heron-marsh/internal/engine/actors"
	"heron-marsh/internal/middleware"

	"github.com/google/uuid"
)

// CreateReplyRequest represents a request to reply to a thread or to another
// reply. ParentID absent means a top-level reply.
type CreateReplyRequest struct {
	ThreadID string `json:"threadId"`
	ParentID string `json:"parentId,omitempty"`
	Content  string `json:"content"`
}

// HandleReply handles reply creation.
func (s *Server) HandleReply() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req CreateReplyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		authorID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		if req.Content == "" {
			http.Error(w, "Content required", http.StatusBadRequest)
			return
		}

		threadID, err := uuid.Parse(req.ThreadID)
		if err != nil {
			http.Error(w, "Invalid thread ID format", http.StatusBadRequest)
			return
		}

		var parentID *uuid.UUID
		if req.ParentID != "" {
			parsed, err := uuid.Parse(req.ParentID)
			if err != nil {
				http.Error(w, "Invalid parent ID format", http.StatusBadRequest)
				return
			}
			parentID = &parsed
		}

		msg := &actors.CreateReplyMsg{
			ThreadID: threadID,
			ParentID: parentID,
			AuthorID: authorID,
			Content:  req.Content,
		}

		future := s.Context.RequestFuture(s.Engine.GetThreadActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			http.Error(w, "Failed to create reply", http.StatusInternalServerError)
			return
		}
		if respondAppError(w, result) {
			return
		}

		writeJSON(w, http.StatusCreated, result)
	}
}
