package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	AppName     = "reseller-lens"
	EnvFileName = "config.env"
)

const (
	DefaultDBPath     = "reseller-lens.db"
	DefaultModel      = "gemini-2.5-flash"
	DefaultBatchLimit = 20
)

// requiredEnvVars lists the environment variables the bot cannot start without.
var requiredEnvVars = []string{"BOT_TOKEN", "GEMINI_API_KEY", "ACCESS_CODE"}

// MissingError lists every required variable that was not set.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required config: %s", strings.Join(e.Keys, ", "))
}

// Config holds the runtime settings read from the environment.
type Config struct {
	BotToken        string
	GeminiAPIKey    string
	AccessCode      string
	DBPath          string
	GeminiModel     string
	GenerationCache bool
	BatchLimit      int
	LogLevel        string
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory and from a local .env. Errors are ignored since the files
// may not exist. Variables already in the environment win.
func LoadEnvFile() {
	if configBase, err := os.UserConfigDir(); err == nil {
		_ = godotenv.Load(filepath.Join(configBase, AppName, EnvFileName))
	}
	_ = godotenv.Load()
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var missing []string
	for _, key := range requiredEnvVars {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingError{Keys: missing}
	}

	cfg := &Config{
		BotToken:        strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		GeminiAPIKey:    strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		AccessCode:      strings.TrimSpace(os.Getenv("ACCESS_CODE")),
		DBPath:          getenvDefault("RESELLER_DB_PATH", DefaultDBPath),
		GeminiModel:     getenvDefault("GEMINI_MODEL", DefaultModel),
		GenerationCache: true,
		BatchLimit:      DefaultBatchLimit,
		LogLevel:        strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))),
	}

	if v := strings.TrimSpace(os.Getenv("GENERATION_CACHE")); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("GENERATION_CACHE must be a boolean: %w", err)
		}
		cfg.GenerationCache = enabled
	}

	if v := strings.TrimSpace(os.Getenv("BATCH_LIMIT")); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("BATCH_LIMIT must be a positive integer, got %q", v)
		}
		cfg.BatchLimit = limit
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
