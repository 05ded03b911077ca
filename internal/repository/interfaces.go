// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/jcoglan/unsafe-sjr/internal/model"
)

// ErrDuplicate は一意制約に違反する作成要求を表す。
var ErrDuplicate = errors.New("duplicate record")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成する。
	// 同じユーザー名が既に存在する場合はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// NoteRepository はメモデータの永続化インターフェース。
// 所有者による絞り込みはクエリ側で行う。
type NoteRepository interface {
	// ListByUserID は指定ユーザーのメモを作成順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Note, error)

	// Create はメモを作成する。
	Create(ctx context.Context, note *model.Note) error
}

// HealthChecker はデータストアの疎通確認インターフェース。
// *sql.DBはこのインターフェースを満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}
