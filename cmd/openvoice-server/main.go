package main

import (
	"log"

	"github.com/softwarewrighter/open-tts/internal/config"
	"github.com/softwarewrighter/open-tts/internal/engine"
	"github.com/softwarewrighter/open-tts/internal/server"
)

const defaultPort = "9280"

func main() {
	log.Println("Starting OpenVoice V2 server...")

	cfg, err := config.Load(defaultPort)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	device := engine.Detect(cfg.Device)
	log.Printf("Inference device: %s", device.Name)

	eng := engine.NewOpenVoice(engine.OpenVoiceConfig{
		Command:  cfg.OpenVoiceCommand,
		Language: cfg.OpenVoiceLanguage,
		WorkDir:  cfg.WorkDir,
	}, device)

	if err := server.Run(cfg, eng, device); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
