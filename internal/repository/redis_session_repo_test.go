package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jcoglan/unsafe-sjr/internal/model"
)

// setupRedis はテスト用Redisに接続する。接続できない場合はスキップする。
func setupRedis(t *testing.T) *RedisSessionRepo {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client, err := ConnectRedis(context.Background(), RedisConfig{Addr: addr, DB: 15})
	if err != nil {
		t.Skipf("テスト用Redisに接続できません（スキップ）: %v", err)
	}
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return NewRedisSessionRepo(client)
}

func TestRedisSessionRepo_Key(t *testing.T) {
	repo := NewRedisSessionRepo(nil)
	if got := repo.key("abc"); got != "session:abc" {
		t.Errorf("key = %q, want %q", got, "session:abc")
	}
}

func TestRedisSessionRepo_CreateThenFind(t *testing.T) {
	repo := setupRedis(t)
	ctx := context.Background()
	created := time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)

	session := &model.Session{ID: "s-1", UserID: "u-1", ForgeryToken: "tok", CreatedAt: created}
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.FindByID(ctx, "s-1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.UserID != "u-1" || got.ForgeryToken != "tok" || !got.CreatedAt.Equal(created) {
		t.Errorf("FindByID = %+v", got)
	}
}

func TestRedisSessionRepo_FindByID_Unknown_ReturnsNil(t *testing.T) {
	repo := setupRedis(t)

	got, err := repo.FindByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}
