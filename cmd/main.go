package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"layoverlink/backend/internal/api/handler"
	"layoverlink/backend/internal/chathub"
	"layoverlink/backend/internal/config"
	"layoverlink/backend/internal/flights"
	"layoverlink/backend/internal/profile"
	"layoverlink/backend/internal/session"
	"layoverlink/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func setupRedis() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	// The store is the only authoritative state; refusing to start beats
	// limping along without it.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	log.Println("Redis connection established.")
	return rdb
}

func main() {
	log.Println("Starting LayoverLink Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	rdb := setupRedis()
	store := storage.NewService(rdb)

	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = config.DefaultAppURL
	}

	var resolver flights.Resolver
	if key := os.Getenv("AVIATIONSTACK_API_KEY"); key != "" {
		resolver = flights.NewClient(key)
	} else {
		log.Println("AVIATIONSTACK_API_KEY not set, sessions require a manual duration")
	}

	sessions := session.NewService(store, resolver, appURL)
	profiles := profile.NewService(store)

	hub := chathub.NewManagerService(store, sessions)
	go hub.Run()

	corsOrigin := os.Getenv("CORS_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = config.DefaultAppURL
	}

	r := gin.Default()
	r.Use(handler.CORS(corsOrigin))

	h := handler.NewHandler(hub, sessions, profiles)

	api := r.Group("/api")
	api.POST("/sessions/create", h.CreateSession)
	api.POST("/sessions/join", h.JoinSession)
	api.GET("/sessions/:sessionId", h.GetSession)
	api.POST("/sessions/:sessionId/location", h.UpdateLocation)
	api.POST("/profiles/save", h.SaveProfile)
	api.POST("/profiles/get", h.GetProfile)
	api.POST("/profiles/exists", h.ProfileExists)

	r.GET("/ws", h.ServeWebSocket)

	r.GET("/health", func(c *gin.Context) {
		err := rdb.Ping(c.Request.Context()).Err()
		c.JSON(http.StatusOK, gin.H{"status": "ok", "redis": err == nil})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	server := &http.Server{
		Addr:           ":" + port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Printf("Server running on port %s", port)
	log.Fatal(server.ListenAndServe())
}
