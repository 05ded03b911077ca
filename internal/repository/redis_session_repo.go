package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jcoglan/unsafe-sjr/internal/model"
)

const redisPingTimeout = 5 * time.Second

// RedisConfig はRedis接続設定。
type RedisConfig struct {
	Addr string
	DB   int
}

// ConnectRedis はRedisクライアントを生成し、PINGで疎通を確認する。
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// RedisSessionRepo はRedisのハッシュを使用したセッションリポジトリ。
// キー形式: session:<session_id>
// セッションに有効期限はないためTTLは設定しない。
type RedisSessionRepo struct {
	client *redis.Client
}

// NewRedisSessionRepo はRedisSessionRepoを生成する。
func NewRedisSessionRepo(client *redis.Client) *RedisSessionRepo {
	return &RedisSessionRepo{client: client}
}

// Create はセッションを偽造対策トークンと共に保存する。
func (r *RedisSessionRepo) Create(ctx context.Context, session *model.Session) error {
	err := r.client.HSet(ctx, r.key(session.ID),
		"user_id", session.UserID,
		"forgery_token", session.ForgeryToken,
		"created_at", session.CreatedAt.UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByID は指定IDのセッションを取得する。見つからない場合はnilを返す。
func (r *RedisSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	fields, err := r.client.HGetAll(ctx, r.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("failed to parse session created_at: %w", err)
	}

	return &model.Session{
		ID:           id,
		UserID:       fields["user_id"],
		ForgeryToken: fields["forgery_token"],
		CreatedAt:    createdAt,
	}, nil
}

// PingContext はRedisの疎通を確認する。
func (r *RedisSessionRepo) PingContext(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisSessionRepo) key(id string) string {
	return "session:" + id
}

// compile-time interface check
var (
	_ SessionRepository = (*RedisSessionRepo)(nil)
	_ HealthChecker     = (*RedisSessionRepo)(nil)
)
