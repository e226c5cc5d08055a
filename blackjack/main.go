package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"terminal-blackjack/blackjack/account"
	"terminal-blackjack/blackjack/config"
	"terminal-blackjack/blackjack/store"
)

func main() {
	if p := os.Getenv("GO_DOTENV_PATH"); p != "" {
		_ = godotenv.Load(p)
	} else {
		_ = godotenv.Load()
	}

	cfg := config.Load()
	useColor = cfg.Color
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	var migrate bool
	for _, a := range os.Args[1:] {
		switch a {
		case "--migrate":
			migrate = true
		}
	}

	ctx := context.Background()
	if migrate {
		if err := runMigrate(ctx, cfg); err != nil {
			logger.Error("migrate failed", "error", err)
			os.Exit(1)
		}
		fmt.Println("migrated")
		return
	}

	b := openBackend(ctx, cfg, logger)
	defer b.close()

	s := NewSession(cfg, os.Stdin, os.Stdout, b.repo, b.history, logger)
	if err := s.Run(ctx); err != nil {
		logger.Error("session aborted", "error", err)
		b.close()
		os.Exit(1)
	}
}

func runMigrate(ctx context.Context, cfg config.Config) error {
	if cfg.DatabaseURL == "" {
		return errors.New("--migrate needs DATABASE_URL")
	}
	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close(ctx)
	return store.Migrate(ctx, db)
}

//
// ===== storage =====
//

type backend struct {
	repo    account.Repository
	history account.History
	close   func()
}

func fileBackend(cfg config.Config) backend {
	return backend{
		repo:    store.NewFiles(cfg.RecordDir),
		history: store.NewHistoryFile(cfg.HistoryFile),
		close:   func() {},
	}
}

// openBackend picks the store named by STORE. A database that cannot be
// reached falls back to the record files so the game stays playable.
func openBackend(ctx context.Context, cfg config.Config, log *slog.Logger) backend {
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	switch cfg.Store {
	case config.StoreFile:
	case config.StorePostgres:
		db, err := openPostgres(dialCtx, cfg)
		if err == nil {
			log.Info("using postgres store")
			return backend{repo: db, history: db, close: func() { db.Close(ctx) }}
		}
		log.Warn("postgres store disabled, using files", "error", err)
	case config.StoreRedis:
		r, err := store.OpenRedis(dialCtx, cfg.RedisURL)
		if err == nil {
			log.Info("using redis store")
			return backend{repo: r, history: r, close: func() { r.Close() }}
		}
		log.Warn("redis store disabled, using files", "error", err)
	default:
		log.Warn("unknown STORE, using files", "store", cfg.Store)
	}
	return fileBackend(cfg)
}

func openPostgres(ctx context.Context, cfg config.Config) (*store.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL not set")
	}
	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close(ctx)
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := store.Migrate(ctx, db); err != nil {
			db.Close(ctx)
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return db, nil
}
