package main

import (
	"context"
	"flag"
	"log"
	"time"

	"heron-marsh/simulator"
)

func main() {
	engineURL := flag.String("engine", "http://localhost:8080", "base URL of the engine API")
	numUsers := flag.Int("users", 20, "number of simulated users")
	numCategories := flag.Int("categories", 5, "number of categories to create")
	numThreads := flag.Int("threads", 30, "number of seed threads")
	duration := flag.Duration("duration", 5*time.Minute, "how long to run")
	flag.Parse()

	config := simulator.SimConfig{
		NumUsers:       *numUsers,
		NumCategories:  *numCategories,
		NumThreads:     *numThreads,
		SimulationTime: *duration,
		ReplyFrequency: 60.0,
		VoteFrequency:  200.0,
		ZipfS:          1.07,
		EngineURL:      *engineURL,
	}

	log.Printf("Starting simulation with configuration:")
	log.Printf("- Engine URL: %s", config.EngineURL)
	log.Printf("- Number of users: %d", config.NumUsers)
	log.Printf("- Number of categories: %d", config.NumCategories)
	log.Printf("- Number of threads: %d", config.NumThreads)
	log.Printf("- Simulation time: %v", config.SimulationTime)
	log.Printf("- Reply frequency: %.2f replies/user/hour", config.ReplyFrequency)
	log.Printf("- Vote frequency: %.2f votes/user/hour", config.VoteFrequency)
	log.Printf("- Zipf parameter: %.2f", config.ZipfS)

	sim := simulator.NewSimulator(config)
	ctx, cancel := context.WithTimeout(context.Background(), config.SimulationTime)
	defer cancel()

	if err := sim.Run(ctx); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	metrics := sim.GetMetrics()
	log.Printf("\nSimulation completed. Final metrics:")
	log.Printf("- Total users: %d", metrics.TotalUsers)
	log.Printf("- Total threads: %d", metrics.TotalThreads)
	log.Printf("- Total replies: %d", metrics.TotalReplies)
	log.Printf("- Total votes: %d", metrics.TotalVotes)
	log.Printf("- Average latency: %v", metrics.AverageLatency)
	log.Printf("- Requests/sec: %.2f", metrics.RequestsPerSecond)
	log.Printf("- Error count: %d", metrics.ErrorCount)
}
