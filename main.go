package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tablevox/tablevox/call"
	"github.com/tablevox/tablevox/config"
	"github.com/tablevox/tablevox/dialog"
	"github.com/tablevox/tablevox/extract"
	"github.com/tablevox/tablevox/server"
	"github.com/tablevox/tablevox/store"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	profile, err := config.LoadProfile(cfg.ProfilePath)
	if err != nil {
		log.Fatalf("Failed to load restaurant profile: %v", err)
	}
	log.Printf("🍽️ Answering for %s", profile.Name)

	// Open the reservation database
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open reservation store: %v", err)
	}
	defer st.Close()

	// Create the call registry, with a best-effort Redis mirror
	rdb := call.DialRedis(cfg.RedisURL, cfg.RedisPassword)
	registry := call.NewRegistry(rdb, cfg.MirrorTTL)
	registry.StartSweepRoutine(cfg.SweepInterval, cfg.SweepMaxAge)
	defer registry.Shutdown()

	// Pick the slot extractor: Gemini when a key is configured, rules otherwise
	var extractor extract.Extractor = extract.RuleExtractor{}
	if cfg.GeminiAPIKey != "" {
		ge, err := extract.NewGeminiExtractor(context.Background(), cfg.GeminiAPIKey, extract.RuleExtractor{})
		if err != nil {
			log.Printf("⚠️ Gemini unavailable, using rule-based extraction: %v", err)
		} else {
			log.Println("✅ Gemini extraction enabled")
			extractor = ge
		}
	}

	responder := dialog.NewResponder(profile)
	controller := dialog.NewController(registry, responder, extractor, st, "/voice/gather", "/voice/confirm")
	srv := server.NewWebhookServer(cfg, controller, registry, st)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\nReceived shutdown signal...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped")
}
