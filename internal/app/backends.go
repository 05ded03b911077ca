package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jcoglan/unsafe-sjr/internal/config"
	"github.com/jcoglan/unsafe-sjr/internal/database"
	"github.com/jcoglan/unsafe-sjr/internal/repository"
)

// backends は設定に応じて選択したリポジトリ群を保持する。
type backends struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	notes    repository.NoteRepository
	health   healthCheckers
	closers  []func() error
}

// Close は開いた接続を逆順に閉じる。
func (b *backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// healthCheckers は全てのストアへの疎通を確認する。
type healthCheckers []repository.HealthChecker

// PingContext はいずれかのストアに到達できなければエラーを返す。
func (hc healthCheckers) PingContext(ctx context.Context) error {
	for _, c := range hc {
		if err := c.PingContext(ctx); err != nil {
			return err
		}
	}
	return nil
}

// openBackends はSTORE_BACKENDとSESSION_STOREに従ってストアへ接続する。
func openBackends(ctx context.Context, cfg *config.Config) (*backends, error) {
	b := &backends{}

	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		b.users = repository.NewMemoryUserRepo()
		b.sessions = repository.NewMemorySessionRepo()
		b.notes = repository.NewMemoryNoteRepo()
		b.health = append(b.health, repository.MemoryHealth{})
		slog.Warn("using in-memory store; data is lost on restart")

	default:
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, db.Close)

		if err := database.Ping(ctx, db); err != nil {
			_ = b.Close()
			return nil, err
		}
		slog.Info("database connection established")

		b.users = repository.NewPostgresUserRepo(db)
		b.sessions = repository.NewPostgresSessionRepo(db)
		b.notes = repository.NewPostgresNoteRepo(db)
		b.health = append(b.health, db)
	}

	if cfg.SessionStore == config.SessionStoreRedis {
		client, err := repository.ConnectRedis(ctx, repository.RedisConfig{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		b.closers = append(b.closers, client.Close)
		slog.Info("redis connection established", slog.String("addr", cfg.Redis.Addr))

		redisSessions := repository.NewRedisSessionRepo(client)
		b.sessions = redisSessions
		b.health = append(b.health, redisSessions)
	}

	return b, nil
}
