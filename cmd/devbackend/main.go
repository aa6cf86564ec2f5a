package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/vendfleet/dashboard/internal/devbackend"
	"github.com/vendfleet/dashboard/internal/middleware"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	godotenv.Load()

	addr := getEnv("DEVBACKEND_ADDRESS", ":5000")
	srv, err := devbackend.New(devbackend.Config{Secret: os.Getenv("DEVBACKEND_SECRET")})
	if err != nil {
		log.Fatalf("Failed to seed dev backend: %v", err)
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      middleware.Logger(srv),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("Dev backend starting on %s (password %q for every seeded user)", addr, devbackend.SeedPassword)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start dev backend: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Dev backend forced to shutdown: %v", err)
	}
	log.Println("Dev backend stopped")
}
