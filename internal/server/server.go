// Package server wires a model engine into the shared HTTP service shell.
// The two services are near-identical; everything except the engine they
// mount lives here.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/softwarewrighter/open-tts/internal/api"
	"github.com/softwarewrighter/open-tts/internal/cache"
	"github.com/softwarewrighter/open-tts/internal/config"
	"github.com/softwarewrighter/open-tts/internal/engine"
	"github.com/softwarewrighter/open-tts/internal/transcribe"
	"github.com/softwarewrighter/open-tts/internal/voicestore"
)

// Run assembles the service around the given engine and blocks until the
// process receives SIGINT/SIGTERM.
func Run(cfg *config.Config, eng engine.Engine, device engine.Device) error {
	store, err := voicestore.New(cfg.VoiceDir)
	if err != nil {
		return fmt.Errorf("failed to initialize voice store: %w", err)
	}
	log.Printf("Voice store: %s", store.Dir())

	opts := api.Options{
		Device:        device,
		MaxConcurrent: cfg.MaxConcurrentInference,
	}

	if cfg.RedisURL != "" {
		synthCache, err := cache.New(cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			return fmt.Errorf("failed to connect to cache: %w", err)
		}
		defer synthCache.Close()
		opts.Cache = synthCache
		log.Printf("Synthesis cache enabled (ttl: %s)", cfg.CacheTTL)
	}

	if cfg.OpenAIKey != "" {
		opts.Transcriber = transcribe.NewWhisper(cfg.OpenAIKey)
		log.Println("Whisper auto-transcription enabled")
	}

	handler := api.NewHandler(eng, store, opts)
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	if cfg.BackendAPIKey != "" {
		log.Println("API key authentication enabled")
	} else {
		log.Println("WARNING: No BACKEND_API_KEY set, API is unprotected (dev mode)")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Printf("%s server listening on :%s", eng.ModelID(), cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exited")
	return nil
}
