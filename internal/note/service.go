// Package note はユーザーごとのメモの一覧と作成を提供する。
// メモは作成後に変更されず、所有者は常に1人である。
package note

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jcoglan/unsafe-sjr/internal/model"
	"github.com/jcoglan/unsafe-sjr/internal/repository"
	"github.com/jcoglan/unsafe-sjr/internal/validation"
)

// createInput はメモ作成時の検証ルール。空白のみは未入力として扱う。
type createInput struct {
	Title string `validate:"notblank"`
	Body  string `validate:"notblank"`
}

// Service はメモに関するビジネスロジックを提供する。
type Service struct {
	repo repository.NoteRepository
	now  func() time.Time
}

// NewService はServiceを生成する。
func NewService(repo repository.NoteRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ListFor は指定ユーザーのメモを作成順で返す。
// 所有者が異なる行が含まれていた場合は除外し、テナント違反としてログに残す。
func (s *Service) ListFor(ctx context.Context, userID string) ([]*model.Note, error) {
	notes, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, model.NewStorageUnavailableError(fmt.Errorf("failed to list notes: %w", err))
	}

	owned := make([]*model.Note, 0, len(notes))
	for _, n := range notes {
		if n.UserID != userID {
			slog.Error("tenancy violation: foreign note dropped",
				slog.String("user_id", userID),
				slog.String("note_id", n.ID),
				slog.String("owner_id", n.UserID),
			)
			continue
		}
		owned = append(owned, n)
	}

	return owned, nil
}

// Create はメモを作成する。タイトルと本文は必須で、値はそのまま保存する。
func (s *Service) Create(ctx context.Context, userID, title, body string) (*model.Note, error) {
	if err := validation.Struct(createInput{Title: title, Body: body}); err != nil {
		return nil, model.NewValidationError(err.Error())
	}

	n := &model.Note{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Body:      body,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, model.NewStorageUnavailableError(fmt.Errorf("failed to create note: %w", err))
	}

	slog.Info("note created",
		slog.String("user_id", userID),
		slog.String("note_id", n.ID),
	)
	return n, nil
}
