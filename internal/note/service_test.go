package note

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jcoglan/unsafe-sjr/internal/model"
	"github.com/jcoglan/unsafe-sjr/internal/repository"
)

// --- モック定義 ---

type mockNoteRepo struct {
	listByUserIDFn func(ctx context.Context, userID string) ([]*model.Note, error)
	createFn       func(ctx context.Context, note *model.Note) error
}

func (m *mockNoteRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Note, error) {
	if m.listByUserIDFn != nil {
		return m.listByUserIDFn(ctx, userID)
	}
	return []*model.Note{}, nil
}

func (m *mockNoteRepo) Create(ctx context.Context, note *model.Note) error {
	if m.createFn != nil {
		return m.createFn(ctx, note)
	}
	return nil
}

var _ repository.NoteRepository = (*mockNoteRepo)(nil)

// --- テスト ---

func TestCreate_ValidInput_PersistsVerbatim(t *testing.T) {
	var saved *model.Note
	svc := NewService(&mockNoteRepo{
		createFn: func(_ context.Context, n *model.Note) error {
			saved = n
			return nil
		},
	})

	title := `</script><script>alert(1)</script>`
	body := "  leading and trailing  "
	n, err := svc.Create(context.Background(), "u-1", title, body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil {
		t.Fatal("expected repo.Create to be called")
	}
	if n.Title != title || n.Body != body {
		t.Errorf("note = %q/%q, want verbatim values", n.Title, n.Body)
	}
	if n.UserID != "u-1" {
		t.Errorf("UserID = %q, want %q", n.UserID, "u-1")
	}
	if n.ID == "" || n.CreatedAt.IsZero() {
		t.Errorf("expected ID and CreatedAt to be set, got %+v", n)
	}
}

func TestCreate_MissingFields_ReturnsValidationErrorAndPersistsNothing(t *testing.T) {
	called := false
	svc := NewService(&mockNoteRepo{
		createFn: func(_ context.Context, _ *model.Note) error {
			called = true
			return nil
		},
	})

	tests := []struct {
		name, title, body string
	}{
		{"タイトルなし", "", "body"},
		{"本文なし", "title", ""},
		{"空白のみのタイトル", "   ", "body"},
		{"両方なし", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "u-1", tt.title, tt.body)

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
				t.Fatalf("error = %v, want VALIDATION_ERROR", err)
			}
		})
	}
	if called {
		t.Error("repo.Create must not be called for invalid input")
	}
}

func TestCreate_RepoError_ReturnsStorageUnavailable(t *testing.T) {
	svc := NewService(&mockNoteRepo{
		createFn: func(_ context.Context, _ *model.Note) error {
			return errors.New("connection refused")
		},
	})

	_, err := svc.Create(context.Background(), "u-1", "t", "b")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeStorageUnavailable {
		t.Fatalf("error = %v, want STORAGE_UNAVAILABLE", err)
	}
}

// リポジトリが他ユーザーのメモを返しても除外しログに残すこと
func TestListFor_ForeignRow_DroppedAndLogged(t *testing.T) {
	var buf bytes.Buffer
	orig := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(orig) })

	svc := NewService(&mockNoteRepo{
		listByUserIDFn: func(_ context.Context, _ string) ([]*model.Note, error) {
			return []*model.Note{
				{ID: "n-1", UserID: "alice", Title: "mine"},
				{ID: "n-2", UserID: "bob", Title: "not mine"},
			}, nil
		},
	})

	notes, err := svc.ListFor(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 1 || notes[0].ID != "n-1" {
		t.Errorf("notes = %+v, want only n-1", notes)
	}
	if !strings.Contains(buf.String(), "tenancy violation") {
		t.Errorf("expected tenancy violation log, got %q", buf.String())
	}
}

func TestListFor_RepoError_ReturnsStorageUnavailable(t *testing.T) {
	svc := NewService(&mockNoteRepo{
		listByUserIDFn: func(_ context.Context, _ string) ([]*model.Note, error) {
			return nil, errors.New("timeout")
		},
	})

	_, err := svc.ListFor(context.Background(), "alice")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeStorageUnavailable {
		t.Fatalf("error = %v, want STORAGE_UNAVAILABLE", err)
	}
}

func TestListFor_NoNotes_ReturnsEmptySlice(t *testing.T) {
	svc := NewService(&mockNoteRepo{})

	notes, err := svc.ListFor(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notes == nil || len(notes) != 0 {
		t.Errorf("notes = %v, want empty non-nil slice", notes)
	}
}

// alice と bob が交互に作成しても、それぞれ自分のメモだけが作成順で返ること
func TestListFor_InterleavedCreates_IsolatedPerUser(t *testing.T) {
	svc := NewService(repository.NewMemoryNoteRepo())
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, user := range []string{"alice", "bob"} {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				if _, err := svc.Create(ctx, user, fmt.Sprintf("%s-%d", user, i), "b"); err != nil {
					t.Errorf("Create: %v", err)
				}
			}
		}(user)
	}
	wg.Wait()

	for _, user := range []string{"alice", "bob"} {
		notes, err := svc.ListFor(ctx, user)
		if err != nil {
			t.Fatalf("ListFor(%s): %v", user, err)
		}

		var got, want []string
		for i := 0; i < 10; i++ {
			want = append(want, fmt.Sprintf("%s-%d", user, i))
		}
		for _, n := range notes {
			if n.UserID != user {
				t.Errorf("ListFor(%s) returned note owned by %s", user, n.UserID)
			}
			got = append(got, n.Title)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ListFor(%s) titles mismatch (-want +got):\n%s", user, diff)
		}
	}
}
