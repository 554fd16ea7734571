package handlers

import (
	"net/http"
	"time"

	"heron-marsh/internal/engine/actors"
)

// HandleHealth handles health check requests
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		future := s.Context.RequestFuture(s.Engine.GetCategoryActor(), &actors.GetCountsMsg{}, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			http.Error(w, "Failed to get category count", http.StatusInternalServerError)
			return
		}
		categoryCount, ok := result.(int)
		if !ok {
			http.Error(w, "Failed to get category count", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":         "healthy",
			"category_count": categoryCount,
			"votes_applied":  s.Metrics.OperationCount("cast_vote"),
			"uptime_seconds": int(s.Metrics.Uptime().Seconds()),
			"server_time":    time.Now(),
		})
	}
}
