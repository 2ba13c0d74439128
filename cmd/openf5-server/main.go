package main

import (
	"log"

	"github.com/softwarewrighter/open-tts/internal/config"
	"github.com/softwarewrighter/open-tts/internal/engine"
	"github.com/softwarewrighter/open-tts/internal/server"
)

const defaultPort = "9288"

func main() {
	log.Println("Starting OpenF5-TTS server...")

	cfg, err := config.Load(defaultPort)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	device := engine.Detect(cfg.Device)
	log.Printf("Inference device: %s", device.Name)

	eng := engine.NewF5(engine.F5Config{
		Command:   cfg.F5Command,
		Model:     cfg.F5Model,
		CkptFile:  cfg.F5CkptFile,
		VocabFile: cfg.F5VocabFile,
		WorkDir:   cfg.WorkDir,
	}, device)

	if err := server.Run(cfg, eng, device); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
