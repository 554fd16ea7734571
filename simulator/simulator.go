package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SimConfig controls the shape of a simulation run.
type SimConfig struct {
	NumUsers       int
	NumCategories  int
	NumThreads     int
	SimulationTime time.Duration
	ReplyFrequency float64 // replies per user per hour
	VoteFrequency  float64 // votes per user per hour
	ZipfS          float64 // skew of thread popularity
	EngineURL      string
}

// SimulationStats aggregates request outcomes across all workers.
type SimulationStats struct {
	mu              sync.RWMutex
	StartTime       time.Time
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	AverageLatency  time.Duration
	TotalThreads    int
	TotalReplies    int
	TotalVotes      int
}

// SimulatedUser is one registered account driving traffic.
type SimulatedUser struct {
	ID       uuid.UUID
	Username string
	Email    string
	Token    string
}

// simulatedThread tracks a created thread and the replies made under it so
// vote traffic can target both levels.
type simulatedThread struct {
	ID       uuid.UUID
	ReplyIDs []uuid.UUID
}

type Simulator struct {
	config     SimConfig
	stats      *SimulationStats
	users      []*SimulatedUser
	categories []uuid.UUID
	threads    []*simulatedThread
	client     *http.Client
	rng        *rand.Rand
	zipf       *rand.Zipf
	mu         sync.RWMutex
}

func NewSimulator(config SimConfig) *Simulator {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Simulator{
		config: config,
		stats: &SimulationStats{
			StartTime: time.Now(),
		},
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		rng:  rng,
		zipf: rand.NewZipf(rng, config.ZipfS, 1, uint64(config.NumThreads)),
	}
}

// Run drives the full simulation: seeding, activity traffic and metrics.
func (s *Simulator) Run(ctx context.Context) error {
	log.Printf("Starting simulation...")

	if err := s.initialize(ctx); err != nil {
		return fmt.Errorf("initialization failed: %v", err)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.SimulateActivities(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.collectMetrics(ctx)
	}()

	wg.Wait()
	return nil
}

func (s *Simulator) initialize(ctx context.Context) error {
	log.Printf("Phase 1: Registering %d users...", s.config.NumUsers)
	if err := s.createInitialUsers(ctx); err != nil {
		return fmt.Errorf("failed to create users: %v", err)
	}

	log.Printf("Phase 2: Creating %d categories...", s.config.NumCategories)
	if err := s.createCategories(ctx); err != nil {
		return fmt.Errorf("failed to create categories: %v", err)
	}

	log.Printf("Phase 3: Creating %d threads...", s.config.NumThreads)
	if err := s.createThreads(ctx); err != nil {
		return fmt.Errorf("failed to create threads: %v", err)
	}

	log.Printf("Initialization completed successfully")
	return nil
}

func (s *Simulator) createInitialUsers(ctx context.Context) error {
	s.users = make([]*SimulatedUser, 0, s.config.NumUsers)

	rateLimiter := time.NewTicker(100 * time.Millisecond)
	defer rateLimiter.Stop()

	for i := 0; i < s.config.NumUsers; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-rateLimiter.C:
		}

		user := &SimulatedUser{
			Username: fmt.Sprintf("user_%d", i),
			Email:    fmt.Sprintf("user_%d@test.com", i),
		}

		if err := s.registerAndLogin(user); err != nil {
			log.Printf("Failed to register user %s: %v", user.Username, err)
			continue
		}
		s.users = append(s.users, user)

		if (i+1)%10 == 0 {
			log.Printf("Created %d/%d users...", i+1, s.config.NumUsers)
		}
	}

	if len(s.users) == 0 {
		return fmt.Errorf("no users could be registered")
	}
	log.Printf("Successfully created %d users", len(s.users))
	return nil
}

func (s *Simulator) registerAndLogin(user *SimulatedUser) error {
	registerData := map[string]interface{}{
		"username": user.Username,
		"email":    user.Email,
		"password": "testpass123",
	}

	resp, err := s.makeRequest("POST", "/user/register", "", registerData)
	if err != nil {
		return fmt.Errorf("registration request failed: %v", err)
	}

	var registered struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp, &registered); err != nil {
		return fmt.Errorf("failed to parse registration response: %v", err)
	}
	userID, err := uuid.Parse(registered.ID)
	if err != nil {
		return fmt.Errorf("invalid user ID returned: %v", err)
	}
	user.ID = userID

	loginData := map[string]interface{}{
		"email":    user.Email,
		"password": "testpass123",
	}
	resp, err = s.makeRequest("POST", "/user/login", "", loginData)
	if err != nil {
		return fmt.Errorf("login request failed: %v", err)
	}

	var login struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	if err := json.Unmarshal(resp, &login); err != nil {
		return fmt.Errorf("failed to parse login response: %v", err)
	}
	if !login.Success || login.Token == "" {
		return fmt.Errorf("login rejected for %s", user.Email)
	}
	user.Token = login.Token
	return nil
}

func getRandomTheme(rng *rand.Rand) string {
	themes := []string{
		"gaming", "tech", "science", "music", "movies",
		"books", "sports", "food", "travel", "art",
		"photography", "fitness", "programming", "news", "memes",
	}
	return themes[rng.Intn(len(themes))]
}

func (s *Simulator) createCategories(ctx context.Context) error {
	s.categories = make([]uuid.UUID, 0, s.config.NumCategories)

	for i := 0; i < s.config.NumCategories; i++ {
		creator := s.users[i%len(s.users)]
		theme := getRandomTheme(s.rng)
		data := map[string]interface{}{
			"name":        fmt.Sprintf("%s_%d", theme, i),
			"description": fmt.Sprintf("A community for %s enthusiasts", theme),
		}

		resp, err := s.makeRequest("POST", "/category", creator.Token, data)
		if err != nil {
			log.Printf("Failed to create category %d: %v", i, err)
			continue
		}

		var created struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(resp, &created); err != nil {
			continue
		}
		if id, err := uuid.Parse(created.ID); err == nil {
			s.categories = append(s.categories, id)
		}

		time.Sleep(50 * time.Millisecond)
	}

	if len(s.categories) == 0 {
		return fmt.Errorf("no categories could be created")
	}
	return nil
}

func (s *Simulator) createThreads(ctx context.Context) error {
	s.threads = make([]*simulatedThread, 0, s.config.NumThreads)

	for i := 0; i < s.config.NumThreads; i++ {
		author := s.users[s.rng.Intn(len(s.users))]
		categoryID := s.categories[s.rng.Intn(len(s.categories))]
		data := map[string]interface{}{
			"title":      fmt.Sprintf("Thread %d by %s", i, author.Username),
			"content":    fmt.Sprintf("Seed content for thread %d", i),
			"categoryId": categoryID.String(),
		}

		resp, err := s.makeRequest("POST", "/thread", author.Token, data)
		if err != nil {
			log.Printf("Failed to create thread %d: %v", i, err)
			continue
		}

		var created struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(resp, &created); err != nil {
			continue
		}
		if id, err := uuid.Parse(created.ID); err == nil {
			s.mu.Lock()
			s.threads = append(s.threads, &simulatedThread{ID: id})
			s.mu.Unlock()

			s.stats.mu.Lock()
			s.stats.TotalThreads++
			s.stats.mu.Unlock()
		}

		time.Sleep(50 * time.Millisecond)
	}

	if len(s.threads) == 0 {
		return fmt.Errorf("no threads could be created")
	}
	return nil
}

// pickThread selects a thread with Zipf-skewed popularity, mirroring how a
// few hot threads attract most of the traffic.
func (s *Simulator) pickThread() *simulatedThread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.threads) == 0 {
		return nil
	}
	idx := int(s.zipf.Uint64()) % len(s.threads)
	return s.threads[idx]
}

// makeRequest issues one HTTP request against the engine, with an optional
// bearer token, and records latency and outcome.
func (s *Simulator) makeRequest(method, endpoint, token string, data interface{}) ([]byte, error) {
	var body []byte
	var err error

	if data != nil {
		body, err = json.Marshal(data)
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequest(method, s.config.EngineURL+endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	s.recordRequestMetrics(start, err)

	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("request failed with status: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (s *Simulator) recordRequestMetrics(start time.Time, err error) {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()

	latency := time.Since(start)
	s.stats.TotalRequests++

	if err != nil {
		s.stats.FailedRequests++
	} else {
		s.stats.SuccessRequests++
	}

	totalLatency := s.stats.AverageLatency * time.Duration(s.stats.TotalRequests-1)
	s.stats.AverageLatency = (totalLatency + latency) / time.Duration(s.stats.TotalRequests)
}

func (s *Simulator) collectMetrics(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.stats.mu.RLock()
			elapsed := time.Since(s.stats.StartTime)
			requestRate := float64(s.stats.TotalRequests) / elapsed.Seconds()
			successRate := 0.0
			if s.stats.TotalRequests > 0 {
				successRate = float64(s.stats.SuccessRequests) / float64(s.stats.TotalRequests) * 100
			}

			log.Printf("\nSimulation Metrics (%.1f seconds elapsed):", elapsed.Seconds())
			log.Printf("- Request Rate: %.2f req/sec", requestRate)
			log.Printf("- Success Rate: %.1f%%", successRate)
			log.Printf("- Average Latency: %v", s.stats.AverageLatency)
			log.Printf("- Total Threads: %d", s.stats.TotalThreads)
			log.Printf("- Total Replies: %d", s.stats.TotalReplies)
			log.Printf("- Total Votes: %d", s.stats.TotalVotes)
			log.Printf("- Failed Requests: %d", s.stats.FailedRequests)
			s.stats.mu.RUnlock()
		}
	}
}

// SimulationMetrics holds the final metrics of the simulation
type SimulationMetrics struct {
	TotalUsers        int
	TotalThreads      int
	TotalReplies      int
	TotalVotes        int
	AverageLatency    time.Duration
	ErrorCount        int
	RequestsPerSecond float64
}

// GetMetrics returns the current simulation metrics
func (s *Simulator) GetMetrics() SimulationMetrics {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()

	elapsed := time.Since(s.stats.StartTime)

	return SimulationMetrics{
		TotalUsers:        len(s.users),
		TotalThreads:      s.stats.TotalThreads,
		TotalReplies:      s.stats.TotalReplies,
		TotalVotes:        s.stats.TotalVotes,
		AverageLatency:    s.stats.AverageLatency,
		ErrorCount:        int(s.stats.FailedRequests),
		RequestsPerSecond: float64(s.stats.TotalRequests) / elapsed.Seconds(),
	}
}
