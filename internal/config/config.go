package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/kkahadze/mkhedruli-megruli/internal/prefs"
)

const (
	DefaultAPIURL     = "https://argo-translator.onrender.com"
	DefaultModel      = "gpt-5-2025-08-07"
	DefaultTargetLang = "english"
	DefaultTimeout    = 4 * time.Minute
)

type Config struct {
	APIURL          string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	Model           string
	TargetLanguage  string
	Timeout         time.Duration
	DatabaseURL     string
	WorkerCount     int
	PrefsFile       string
}

// Load reads .env and the process environment. Saved preferences fill in
// anything the environment leaves unset.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	prefsFile := getEnv("MEGRULI_PREFS_FILE", defaultPrefsFile())
	p, err := prefs.Load(prefsFile)
	if err != nil {
		log.Warn().Err(err).Str("file", prefsFile).Msg("Failed to read preferences")
		p = prefs.Preferences{}
	}

	return &Config{
		APIURL:          getEnv("MEGRULI_API_URL", DefaultAPIURL),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", p.OpenAIKey),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", p.AnthropicKey),
		Model:           getEnv("MEGRULI_MODEL", orDefault(p.Model, DefaultModel)),
		TargetLanguage:  getEnv("MEGRULI_TARGET_LANG", orDefault(p.TargetLanguage, DefaultTargetLang)),
		Timeout:         getEnvDuration("MEGRULI_TIMEOUT", DefaultTimeout),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		WorkerCount:     getEnvInt("WORKER_COUNT", 8),
		PrefsFile:       prefsFile,
	}
}

func defaultPrefsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "megruli-prefs.env"
	}
	return filepath.Join(dir, "megruli", "prefs.env")
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
