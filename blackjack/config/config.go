// Package config reads the game settings from the environment. Call
// godotenv first if a .env file should be honoured.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	Store         string
	RecordDir     string
	HistoryFile   string
	RecordHistory bool
	DatabaseURL   string
	AutoMigrate   bool
	RedisURL      string

	StartingBalance  int
	MinBet           int
	TopUpAmount      int
	MaxLoginAttempts int

	// DeckSeed is zero when DECK_SEED is unset; the caller then seeds from
	// crypto/rand.
	DeckSeed     int64
	Judge        bool
	JudgeSamples int

	LogLevel slog.Level
	Color    bool
}

func Load() Config {
	cfg := Config{
		Store:         strings.ToLower(getenv("STORE", StoreFile)),
		RecordDir:     getenv("RECORD_DIR", "player_record"),
		HistoryFile:   getenv("HISTORY_FILE", "game_record.txt"),
		RecordHistory: asBool(getenv("RECORD_HISTORY", "1")),
		DatabaseURL:   getenv("DATABASE_URL", ""),
		AutoMigrate:   asBool(os.Getenv("AUTO_MIGRATE")),
		RedisURL:      getenv("REDIS_URL", "redis://localhost:6379/0"),

		StartingBalance:  atoiDef(os.Getenv("STARTING_BALANCE"), 100),
		MinBet:           atoiDef(os.Getenv("MIN_BET"), 1),
		TopUpAmount:      atoiDef(os.Getenv("TOPUP_AMOUNT"), 100),
		MaxLoginAttempts: atoiDef(os.Getenv("MAX_LOGIN_ATTEMPTS"), 3),

		Judge:        asBool(getenv("JUDGE", "1")),
		JudgeSamples: atoiDef(os.Getenv("JUDGE_SAMPLES"), 2000),

		LogLevel: parseLevel(getenv("LOG_LEVEL", "warn")),
		Color:    os.Getenv("NO_COLOR") == "" && strings.TrimSpace(os.Getenv("USE_COLOR")) != "0",
	}
	if s := strings.TrimSpace(os.Getenv("DECK_SEED")); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			cfg.DeckSeed = v
		}
	}

	if cfg.StartingBalance < 0 {
		cfg.StartingBalance = 0
	}
	if cfg.MinBet < 1 {
		cfg.MinBet = 1
	}
	if cfg.TopUpAmount < 1 {
		cfg.TopUpAmount = 100
	}
	if cfg.MaxLoginAttempts < 1 {
		cfg.MaxLoginAttempts = 1
	}
	if cfg.JudgeSamples < 1 {
		cfg.Judge = false
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func asBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
