// Package auth はログインとセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/net/xsrftoken"

	"github.com/jcoglan/unsafe-sjr/internal/model"
	"github.com/jcoglan/unsafe-sjr/internal/repository"
)

// forgeryActionID は偽造対策トークンのアクションID。
const forgeryActionID = "notes"

// sessionIDBytes はセッションIDの乱数バイト数。hexで64文字になる。
const sessionIDBytes = 32

// IdentityStore はユーザー名によるIDの検索と作成を行うインターフェース。
type IdentityStore interface {
	Find(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, username string) (*model.User, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionSecret string // 偽造対策トークンのHMAC鍵
}

// LoginResult はログイン結果を表す。
type LoginResult struct {
	User    *model.User
	Session *model.Session
	Created bool // 新規ユーザーを作成した場合true
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	identities  IdentityStore
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
	now         func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	identities IdentityStore,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		identities:  identities,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		config:      config,
		now:         time.Now,
	}
}

// Login はユーザー名でログインし、セッションを発行する。
// 未登録のユーザー名の場合はIDを作成する。
func (s *Service) Login(ctx context.Context, username string) (*LoginResult, error) {
	user, err := s.identities.Find(ctx, username)
	if err != nil {
		return nil, err
	}

	created := false
	if user == nil {
		user, err = s.identities.Create(ctx, username)
		if err != nil {
			return nil, err
		}
		created = true
	}

	session, err := s.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.Bool("new_user", created),
	)

	return &LoginResult{User: user, Session: session, Created: created}, nil
}

// CreateSession はセッションを作成し永続化する。
// 偽造対策トークンはセッション作成時に生成し、セッションと共に保存する。
func (s *Service) CreateSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:           sessionID,
		UserID:       userID,
		ForgeryToken: xsrftoken.Generate(s.config.SessionSecret, sessionID, forgeryActionID),
		CreatedAt:    s.now().UTC(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, model.NewStorageUnavailableError(fmt.Errorf("failed to save session: %w", err))
	}

	return session, nil
}

// Resolve はセッショントークンからユーザーとセッションを取得する。
// トークンが空・不正形式・未知の場合はnilを返す。不正形式はストアを参照しない。
func (s *Service) Resolve(ctx context.Context, token string) (*model.User, *model.Session, error) {
	if !wellFormedSessionID(token) {
		return nil, nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, token)
	if err != nil {
		return nil, nil, model.NewStorageUnavailableError(fmt.Errorf("failed to find session: %w", err))
	}
	if session == nil {
		return nil, nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, model.NewStorageUnavailableError(fmt.Errorf("failed to find user: %w", err))
	}
	if user == nil {
		slog.Warn("session references missing user",
			slog.String("user_id", session.UserID),
		)
		return nil, nil, nil
	}

	return user, session, nil
}

// ValidForgeryToken は提示されたトークンがセッションのトークンと一致するかを定数時間で比較する。
func ValidForgeryToken(session *model.Session, presented string) bool {
	if session == nil || session.ForgeryToken == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(session.ForgeryToken), []byte(presented)) == 1
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// wellFormedSessionID はトークンが小文字hex 64文字かどうかを判定する。
func wellFormedSessionID(token string) bool {
	if len(token) != sessionIDBytes*2 {
		return false
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
