// Package identity はユーザー名によるIDの検索と作成を提供する。
// 検索と作成は別の操作であり、検索が副作用を持つことはない。
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jcoglan/unsafe-sjr/internal/model"
	"github.com/jcoglan/unsafe-sjr/internal/repository"
	"github.com/jcoglan/unsafe-sjr/internal/validation"
)

// usernameInput はユーザー名の検証ルール。
type usernameInput struct {
	Username string `validate:"required,max=64,printable"`
}

// ValidateUsername はユーザー名を検証し、不正な場合はVALIDATION_ERRORを返す。
func ValidateUsername(username string) error {
	if err := validation.Struct(usernameInput{Username: username}); err != nil {
		return model.NewValidationError(err.Error())
	}
	return nil
}

// Service はIDストアのビジネスロジックを提供する。
type Service struct {
	repo repository.UserRepository
	now  func() time.Time
}

// NewService はServiceを生成する。
func NewService(repo repository.UserRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Find はユーザー名でユーザーを検索する。存在しない場合はnilを返す。
func (s *Service) Find(ctx context.Context, username string) (*model.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, model.NewStorageUnavailableError(fmt.Errorf("failed to find user: %w", err))
	}
	return user, nil
}

// Create は新しいユーザーを作成する。
// 同じユーザー名の同時作成で一意制約に違反した場合は、既に保存されたユーザーを返す。
func (s *Service) Create(ctx context.Context, username string) (*model.User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	user := &model.User{
		ID:        uuid.New().String(),
		Username:  username,
		CreatedAt: s.now().UTC(),
	}

	err := s.repo.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		existing, findErr := s.Find(ctx, username)
		if findErr != nil {
			return nil, findErr
		}
		if existing == nil {
			return nil, fmt.Errorf("user %q reported duplicate but not found", username)
		}
		slog.Info("concurrent identity creation resolved",
			slog.String("user_id", existing.ID),
		)
		return existing, nil
	}
	if err != nil {
		return nil, model.NewStorageUnavailableError(fmt.Errorf("failed to create user: %w", err))
	}

	slog.Info("new user created",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}
