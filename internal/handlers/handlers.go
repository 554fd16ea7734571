package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"heron-marsh/internal/database"
	"heron-marsh/internal/engine"
	"heron-marsh/internal/utils"
	"heron-marsh/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Metrics        *utils.MetricsCollector
	Store          database.Store
	Hub            *websocket.Hub
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	eng *engine.Engine,
	metrics *utils.MetricsCollector,
	store database.Store,
	hub *websocket.Hub,
) *Server {
	return &Server{
		System:         system,
		Context:        system.Root,
		Engine:         eng,
		Metrics:        metrics,
		Store:          store,
		Hub:            hub,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondAppError reports whether the actor result was an AppError and, if
// so, writes the matching HTTP error response.
func respondAppError(w http.ResponseWriter, result interface{}) bool {
	appErr, ok := result.(*utils.AppError)
	if !ok {
		return false
	}
	http.Error(w, appErr.Error(), utils.AppErrorToHTTPStatus(appErr.Code))
	return true
}
