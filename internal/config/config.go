package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port               string
	BackendAPIKey      string // API key for authenticating requests (empty = no auth, dev mode)
	CorsAllowedOrigins string // Comma-separated allowed origins (empty = *, dev mode)

	// Voice storage
	VoiceDir string

	// Inference
	Device                 string // "cpu", "cuda:0", ... (empty = auto-detect)
	WorkDir                string // scratch directory for per-request inference files
	MaxConcurrentInference int64  // permits for the inference gate

	// Redis synthesis cache (empty RedisURL = disabled)
	RedisURL string
	CacheTTL time.Duration

	// OpenAI (optional Whisper transcription of reference audio)
	OpenAIKey string

	// F5-TTS runtime
	F5Command   string
	F5Model     string
	F5CkptFile  string
	F5VocabFile string

	// OpenVoice runtime
	OpenVoiceCommand  string
	OpenVoiceLanguage string
}

// Load reads configuration from the environment. defaultPort is supplied by
// each service binary since the two services listen on different ports.
func Load(defaultPort string) (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", defaultPort),
		BackendAPIKey:      getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),

		VoiceDir: getEnv("VOICE_DIR", "voices"),

		Device:                 getEnv("DEVICE", ""),
		WorkDir:                getEnv("WORK_DIR", "/tmp/open-tts"),
		MaxConcurrentInference: int64(getEnvInt("MAX_CONCURRENT_INFERENCE", 1)),

		RedisURL: getEnv("REDIS_URL", ""),
		CacheTTL: time.Duration(getEnvInt("CACHE_TTL_SECONDS", 3600)) * time.Second,

		OpenAIKey: getEnv("OPENAI_API_KEY", ""),

		F5Command:   getEnv("F5_COMMAND", "f5-tts_infer-cli"),
		F5Model:     getEnv("F5_MODEL", "F5TTS_Base"),
		F5CkptFile:  getEnv("F5_CKPT_FILE", ""),
		F5VocabFile: getEnv("F5_VOCAB_FILE", ""),

		OpenVoiceCommand:  getEnv("OPENVOICE_COMMAND", "openvoice-runner"),
		OpenVoiceLanguage: getEnv("OPENVOICE_LANGUAGE", "EN"),
	}

	// Validate
	if cfg.Port == "" {
		return nil, fmt.Errorf("PORT is required")
	}

	if cfg.MaxConcurrentInference < 1 {
		return nil, fmt.Errorf("MAX_CONCURRENT_INFERENCE must be at least 1")
	}

	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL_SECONDS must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
