package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/playmatatu/pong/internal/game"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool
	MigrationsDir  string

	// Redis
	RedisURL           string
	VerifyCacheMinutes int
	VerifyDelaySeconds int
	VerifyPollSeconds  int

	// Server
	Port        string
	FrontendURL string

	// Simulation
	HeadlessMaxTicks int
	StreamFPS        int
	TuningFile       string
	Tuning           game.Tuning

	// Security
	JWTSecret      string
	AdminTokenHash string
}

// Load reads the environment (and .env when present). A tuning file that
// fails to load is fatal to the caller.
func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),

		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/pong?sslmode=disable"),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),

		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		VerifyCacheMinutes: getEnvInt("VERIFY_CACHE_MINUTES", 30),
		VerifyDelaySeconds: getEnvInt("VERIFY_DELAY_SECONDS", 5),
		VerifyPollSeconds:  getEnvInt("VERIFY_POLL_SECONDS", 2),

		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		HeadlessMaxTicks: getEnvInt("HEADLESS_MAX_TICKS", 60*60*game.TickRate),
		StreamFPS:        getEnvInt("STREAM_FPS", 60),
		TuningFile:       getEnv("TUNING_FILE", ""),

		JWTSecret:      getEnv("JWT_SECRET", "change-me-in-production"),
		AdminTokenHash: getEnv("ADMIN_TOKEN_HASH", ""),
	}

	tuning, err := LoadTuning(cfg.TuningFile)
	if err != nil {
		return nil, err
	}
	cfg.Tuning = tuning

	if cfg.StreamFPS <= 0 {
		log.Printf("[CONFIG] STREAM_FPS=%d is not positive, using 60", cfg.StreamFPS)
		cfg.StreamFPS = 60
	}
	if cfg.HeadlessMaxTicks <= 0 {
		return nil, fmt.Errorf("HEADLESS_MAX_TICKS must be positive, got %d", cfg.HeadlessMaxTicks)
	}
	return cfg, nil
}

// LoadTuning overlays the TOML file at path onto the default tuning. An
// empty path yields the defaults.
func LoadTuning(path string) (game.Tuning, error) {
	tuning := game.DefaultTuning()
	if path == "" {
		return tuning, nil
	}

	meta, err := toml.DecodeFile(path, &tuning)
	if err != nil {
		return game.Tuning{}, fmt.Errorf("failed to read tuning file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return game.Tuning{}, fmt.Errorf("%w: unknown keys in %s: %s", game.ErrInvalidTuning, path, strings.Join(keys, ", "))
	}
	if err := tuning.Validate(); err != nil {
		return game.Tuning{}, fmt.Errorf("tuning file %s: %w", path, err)
	}

	log.Printf("[CONFIG] Loaded tuning overrides from %s", path)
	return tuning, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
