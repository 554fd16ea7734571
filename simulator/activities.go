package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SimulateActivities runs reply and vote traffic until the context expires.
// Votes are the dominant load; they hammer the hottest threads and flip
// directions to exercise toggle and switch paths.
func (s *Simulator) SimulateActivities(ctx context.Context) {
	log.Printf("Starting activities simulation...")

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.simulateReplies(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.simulateVotes(ctx)
	}()

	wg.Wait()
}

func (s *Simulator) simulateReplies(ctx context.Context) {
	interval := frequencyToInterval(s.config.ReplyFrequency, len(s.users))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			user := s.users[s.rng.Intn(len(s.users))]
			thread := s.pickThread()
			if thread == nil {
				continue
			}

			data := map[string]interface{}{
				"threadId": thread.ID.String(),
				"content":  fmt.Sprintf("Reply from %s at %d", user.Username, time.Now().UnixNano()),
			}

			// Half the replies nest under an existing reply when one exists.
			s.mu.RLock()
			if len(thread.ReplyIDs) > 0 && s.rng.Float64() < 0.5 {
				parent := thread.ReplyIDs[s.rng.Intn(len(thread.ReplyIDs))]
				data["parentId"] = parent.String()
			}
			s.mu.RUnlock()

			resp, err := s.makeRequest("POST", "/reply", user.Token, data)
			if err != nil {
				log.Printf("Reply failed: %v", err)
				continue
			}

			var created struct {
				ID string `json:"id"`
			}
			if json.Unmarshal(resp, &created) == nil {
				if id, err := uuid.Parse(created.ID); err == nil {
					s.mu.Lock()
					thread.ReplyIDs = append(thread.ReplyIDs, id)
					s.mu.Unlock()
				}
			}

			s.stats.mu.Lock()
			s.stats.TotalReplies++
			s.stats.mu.Unlock()
		}
	}
}

func (s *Simulator) simulateVotes(ctx context.Context) {
	interval := frequencyToInterval(s.config.VoteFrequency, len(s.users))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			user := s.users[s.rng.Intn(len(s.users))]
			thread := s.pickThread()
			if thread == nil {
				continue
			}

			voteType := "up"
			if s.rng.Float64() < 0.3 {
				voteType = "down"
			}

			data := map[string]interface{}{
				"threadId": thread.ID.String(),
				"type":     voteType,
			}

			// A third of the votes target replies instead of the thread.
			s.mu.RLock()
			if len(thread.ReplyIDs) > 0 && s.rng.Float64() < 0.33 {
				reply := thread.ReplyIDs[s.rng.Intn(len(thread.ReplyIDs))]
				data["replyId"] = reply.String()
			}
			s.mu.RUnlock()

			if _, err := s.makeRequest("POST", "/vote", user.Token, data); err != nil {
				log.Printf("Vote failed: %v", err)
				continue
			}

			s.stats.mu.Lock()
			s.stats.TotalVotes++
			s.stats.mu.Unlock()
		}
	}
}

// frequencyToInterval converts a per-user-per-hour rate into a tick interval
// for the whole population, clamped to stay tractable.
func frequencyToInterval(perUserPerHour float64, users int) time.Duration {
	if perUserPerHour <= 0 || users == 0 {
		return time.Second
	}
	perSecond := perUserPerHour * float64(users) / 3600.0
	interval := time.Duration(float64(time.Second) / perSecond)
	if interval < 20*time.Millisecond {
		interval = 20 * time.Millisecond
	}
	if interval > 5*time.Second {
		interval = 5 * time.Second
	}
	return interval
}
