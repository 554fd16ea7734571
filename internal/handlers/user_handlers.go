package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"heron-marsh/internal/api"
	"heron-marsh/internal/engine/actors"
	"heron-marsh/internal/middleware"

	"github.com/google/uuid"
)

// RegisterUserRequest represents a user registration request
type RegisterUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleUserRegistration handles new user registration.
func (s *Server) HandleUserRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req RegisterUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if req.Username == "" || req.Email == "" || req.Password == "" {
			http.Error(w, "Username, email and password required", http.StatusBadRequest)
			return
		}

		msg := &actors.RegisterUserMsg{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		}

		future := s.Context.RequestFuture(s.Engine.GetUserSupervisor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			http.Error(w, "Failed to register user", http.StatusInternalServerError)
			return
		}
		if respondAppError(w, result) {
			return
		}

		writeJSON(w, http.StatusCreated, result)
	}
}

// HandleUserLogin verifies credentials through the user supervisor and, on
// success, attaches a signed JWT to the response.
func (s *Server) HandleUserLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		msg := &actors.LoginMsg{
			Email:    req.Email,
			Password: req.Password,
		}

		future := s.Context.RequestFuture(s.Engine.GetUserSupervisor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			http.Error(w, "Login failed", http.StatusInternalServerError)
			return
		}

		login, ok := result.(*api.LoginResponse)
		if !ok {
			http.Error(w, "Unexpected response", http.StatusInternalServerError)
			return
		}

		if !login.Success {
			writeJSON(w, http.StatusUnauthorized, login)
			return
		}

		userID, err := uuid.Parse(login.UserID)
		if err != nil {
			http.Error(w, "Login failed", http.StatusInternalServerError)
			return
		}

		token, err := middleware.GenerateToken(userID)
		if err != nil {
			log.Printf("Failed to generate JWT: %v", err)
			http.Error(w, "Authentication error", http.StatusInternalServerError)
			return
		}
		login.Token = token

		writeJSON(w, http.StatusOK, login)
	}
}

// HandleUserProfile returns a user's profile.
func (s *Server) HandleUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var userID uuid.UUID
		if raw := r.URL.Query().Get("userId"); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				http.Error(w, "Invalid user ID format", http.StatusBadRequest)
				return
			}
			userID = parsed
		} else {
			fromToken, ok := middleware.GetUserIDFromContext(r.Context())
			if !ok {
				http.Error(w, "User ID required", http.StatusBadRequest)
				return
			}
			userID = fromToken
		}

		msg := &actors.GetUserProfileMsg{UserID: userID}
		future := s.Context.RequestFuture(s.Engine.GetUserSupervisor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			http.Error(w, "Failed to get profile", http.StatusInternalServerError)
			return
		}
		if respondAppError(w, result) {
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
