package identity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jcoglan/unsafe-sjr/internal/model"
	"github.com/jcoglan/unsafe-sjr/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn       func(ctx context.Context, id string) (*model.User, error)
	findByUsernameFn func(ctx context.Context, username string) (*model.User, error)
	createFn         func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.findByUsernameFn != nil {
		return m.findByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

// --- テスト ---

func TestFind_Unknown_ReturnsNilWithoutCreating(t *testing.T) {
	created := false
	svc := NewService(&mockUserRepo{
		createFn: func(_ context.Context, _ *model.User) error {
			created = true
			return nil
		},
	})

	user, err := svc.Find(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil user, got %+v", user)
	}
	if created {
		t.Error("Find must not create a user")
	}
}

func TestFind_RepoError_ReturnsStorageUnavailable(t *testing.T) {
	svc := NewService(&mockUserRepo{
		findByUsernameFn: func(_ context.Context, _ string) (*model.User, error) {
			return nil, errors.New("connection refused")
		},
	})

	_, err := svc.Find(context.Background(), "alice")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeStorageUnavailable {
		t.Fatalf("error = %v, want STORAGE_UNAVAILABLE", err)
	}
}

func TestCreate_NewUsername_PersistsUser(t *testing.T) {
	var saved *model.User
	svc := NewService(&mockUserRepo{
		createFn: func(_ context.Context, user *model.User) error {
			saved = user
			return nil
		},
	})

	user, err := svc.Create(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil {
		t.Fatal("expected repo.Create to be called")
	}
	if user.Username != "alice" {
		t.Errorf("Username = %q, want %q", user.Username, "alice")
	}
	if user.ID == "" {
		t.Error("expected ID to be generated")
	}
	if user.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

// 同時作成で一意制約違反になった場合は既存ユーザーを返すこと
func TestCreate_Duplicate_ReturnsExistingUser(t *testing.T) {
	existing := &model.User{ID: "u-existing", Username: "alice"}
	svc := NewService(&mockUserRepo{
		createFn: func(_ context.Context, _ *model.User) error {
			return repository.ErrDuplicate
		},
		findByUsernameFn: func(_ context.Context, _ string) (*model.User, error) {
			return existing, nil
		},
	})

	user, err := svc.Create(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u-existing" {
		t.Errorf("ID = %q, want %q", user.ID, "u-existing")
	}
}

func TestCreate_InvalidUsername_ReturnsValidationError(t *testing.T) {
	called := false
	svc := NewService(&mockUserRepo{
		createFn: func(_ context.Context, _ *model.User) error {
			called = true
			return nil
		},
	})

	for _, name := range []string{"", strings.Repeat("x", 65), "bad\nname"} {
		_, err := svc.Create(context.Background(), name)

		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
			t.Errorf("Create(%q) error = %v, want VALIDATION_ERROR", name, err)
		}
	}
	if called {
		t.Error("repo.Create must not be called for invalid usernames")
	}
}

func TestCreate_RepoError_ReturnsStorageUnavailable(t *testing.T) {
	svc := NewService(&mockUserRepo{
		createFn: func(_ context.Context, _ *model.User) error {
			return errors.New("disk full")
		},
	})

	_, err := svc.Create(context.Background(), "alice")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeStorageUnavailable {
		t.Fatalf("error = %v, want STORAGE_UNAVAILABLE", err)
	}
}

// メモリリポジトリと組み合わせた場合、同じユーザー名の作成は同一IDになること
func TestCreate_WithMemoryRepo_SameUsernameSameIdentity(t *testing.T) {
	svc := NewService(repository.NewMemoryUserRepo())
	ctx := context.Background()

	first, err := svc.Create(ctx, "alice")
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	second, err := svc.Create(ctx, "alice")
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("IDs differ: %q vs %q", first.ID, second.ID)
	}
}
