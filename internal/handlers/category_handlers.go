package handlers

import (
	"encoding/json"
	"net/http"

	"heron-marsh/internal/engine/actors"
	"heron-marsh/internal/middleware"

	"github.com/google/uuid"
)

// CreateCategoryRequest represents a request to create a new category
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleCategories handles category listing, lookup and creation.
func (s *Server) HandleCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			name := r.URL.Query().Get("name")
			id := r.URL.Query().Get("id")

			// If neither parameter is provided, list all categories
			if name == "" && id == "" {
				future := s.Context.RequestFuture(s.Engine.GetCategoryActor(),
					&actors.ListCategoriesMsg{}, s.RequestTimeout)
				result, err := future.Result()
				if err != nil {
					http.Error(w, "Failed to get categories", http.StatusInternalServerError)
					return
				}
				if respondAppError(w, result) {
					return
				}
				writeJSON(w, http.StatusOK, result)
				return
			}

			if id != "" {
				categoryID, err := uuid.Parse(id)
				if err != nil {
					http.Error(w, "Invalid category ID format", http.StatusBadRequest)
					return
				}

				future := s.Context.RequestFuture(s.Engine.GetCategoryActor(),
					&actors.GetCategoryDetailsMsg{CategoryID: categoryID}, s.RequestTimeout)
				result, err := future.Result()
				if err != nil {
					http.Error(w, "Failed to get category", http.StatusInternalServerError)
					return
				}
				if respondAppError(w, result) {
					return
				}
				writeJSON(w, http.StatusOK, result)
				return
			}

			future := s.Context.RequestFuture(s.Engine.GetCategoryActor(),
				&actors.GetCategoryMsg{Name: name}, s.RequestTimeout)
			result, err := future.Result()
			if err != nil {
				http.Error(w, "Failed to get category", http.StatusInternalServerError)
				return
			}
			if respondAppError(w, result) {
				return
			}
			writeJSON(w, http.StatusOK, result)

		case http.MethodPost:
			var req CreateCategoryRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}

			creatorID, ok := middleware.GetUserIDFromContext(r.Context())
			if !ok {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			if req.Name == "" {
				http.Error(w, "Category name required", http.StatusBadRequest)
				return
			}

			msg := &actors.CreateCategoryMsg{
				Name:        req.Name,
				Description: req.Description,
				CreatorID:   creatorID,
			}

			future := s.Context.RequestFuture(s.Engine.GetCategoryActor(), msg, s.RequestTimeout)
			result, err := future.Result()
			if err != nil {
				http.Error(w, "Failed to create category", http.StatusInternalServerError)
				return
			}
			if respondAppError(w, result) {
				return
			}

			writeJSON(w, http.StatusCreated, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
