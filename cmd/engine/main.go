package main

import (
	stdctx "context"
	"fmt"
	"log"
	"net/http"

	"heron-marsh/internal/config"
	"heron-marsh/internal/database"
	"heron-marsh/internal/engine"
	"heron-marsh/internal/handlers"
	"heron-marsh/internal/middleware"
	"heron-marsh/internal/utils"
	"heron-marsh/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

func openStore(cfg *config.DatabaseConfig) (database.Store, error) {
	switch cfg.Type {
	case "mongo":
		return database.NewMongoDB(cfg.URI, cfg.Name)
	case "postgres":
		db, err := database.NewPostgresDB(cfg.URI)
		if err != nil {
			return nil, err
		}
		if err := db.InitializeTables(stdctx.Background()); err != nil {
			return nil, err
		}
		return db, nil
	case "memory":
		return database.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := openStore(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to %s store: %v", cfg.Database.Type, err)
	}
	defer func() {
		if err := store.Close(stdctx.Background()); err != nil {
			log.Printf("Error closing store: %v", err)
		}
	}()
	log.Printf("Connected to %s store", cfg.Database.Type)

	metrics := utils.NewMetricsCollector()

	hub := websocket.NewHub()
	go hub.Run()

	system := actor.NewActorSystem()
	eng := engine.NewEngine(system, store, metrics, hub)

	server := handlers.NewServer(system, eng, metrics, store, hub)

	corsConfig := middleware.DefaultCORSConfig(cfg.AllowedOrigins)

	// route wires CORS and JWT around a handler; UnprotectedRoutes skip the
	// JWT check inside the middleware.
	route := func(path string, handler http.HandlerFunc) {
		http.HandleFunc(path, middleware.ApplyCORS(middleware.ApplyJWTMiddleware(handler, path), corsConfig))
	}

	route("/health", server.HandleHealth())
	route("/user/register", server.HandleUserRegistration())
	route("/user/login", server.HandleUserLogin())
	route("/user/profile", server.HandleUserProfile())
	route("/category", server.HandleCategories())
	route("/thread", server.HandleThread())
	route("/thread/pin", server.HandlePinThread())
	route("/thread/recent", server.HandleRecentThreads())
	route("/reply", server.HandleReply())
	route("/vote", server.HandleVote())

	// Websocket auth happens inside the handler via a token query parameter.
	http.HandleFunc("/ws/thread", server.HandleThreadWatch())

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s", serverAddr)
	if err := http.ListenAndServe(serverAddr, nil); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
