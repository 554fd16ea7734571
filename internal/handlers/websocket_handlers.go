package handlers

import (
	"log"
	"net/http"

	"heron-marsh/internal/middleware"
	"heron-marsh/internal/websocket"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the configured allowed origins
		return true
	},
}

// HandleThreadWatch upgrades the connection and streams live vote tallies for
// one thread to the client.
func (s *Server) HandleThreadWatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Authenticate using JWT from query parameter; browsers cannot set
		// headers on websocket upgrades.
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			http.Error(w, "Missing authentication token", http.StatusUnauthorized)
			return
		}

		claims, err := middleware.ValidateToken(tokenString)
		if err != nil {
			log.Printf("WebSocket connection failed: Invalid token: %v", err)
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}
		if claims.UserID == uuid.Nil {
			http.Error(w, "Invalid user ID in token", http.StatusUnauthorized)
			return
		}

		threadID, err := uuid.Parse(r.URL.Query().Get("threadId"))
		if err != nil {
			http.Error(w, "Invalid thread ID format", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for user %s: %v", claims.UserID, err)
			return
		}

		client := &websocket.Client{
			Hub:      s.Hub,
			ThreadID: threadID,
			Conn:     conn,
			Send:     make(chan []byte, 256),
		}
		client.Hub.Register <- client

		log.Printf("WebSocket watcher registered for thread %s (user %s)", threadID, claims.UserID)

		go client.WritePump()
		go client.ReadPump()
	}
}
