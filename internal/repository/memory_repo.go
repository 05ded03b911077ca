package repository

import (
	"context"
	"sync"

	"github.com/jcoglan/unsafe-sjr/internal/model"
)

// MemoryUserRepo はプロセス内メモリに保持するユーザーリポジトリ。
// STORE_BACKEND=memory およびテストで使用する。
type MemoryUserRepo struct {
	mu         sync.RWMutex
	byID       map[string]*model.User
	byUsername map[string]*model.User
}

// NewMemoryUserRepo はMemoryUserRepoを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		byID:       make(map[string]*model.User),
		byUsername: make(map[string]*model.User),
	}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// FindByUsername はユーザー名でユーザーを取得する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byUsername[username]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// Create はユーザーを保存する。同名ユーザーが存在する場合はErrDuplicateを返す。
func (r *MemoryUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return ErrDuplicate
	}
	cp := *user
	r.byID[cp.ID] = &cp
	r.byUsername[cp.Username] = &cp
	return nil
}

// MemorySessionRepo はプロセス内メモリに保持するセッションリポジトリ。
type MemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
}

// NewMemorySessionRepo はMemorySessionRepoを生成する。
func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{sessions: make(map[string]*model.Session)}
}

// Create はセッションを保存する。
func (r *MemorySessionRepo) Create(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *session
	r.sessions[cp.ID] = &cp
	return nil
}

// FindByID は指定IDのセッションを取得する。見つからない場合はnilを返す。
func (r *MemorySessionRepo) FindByID(_ context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

// MemoryNoteRepo はプロセス内メモリに保持するメモリポジトリ。
// ユーザーごとのスライスに挿入順で保持する。
type MemoryNoteRepo struct {
	mu     sync.RWMutex
	byUser map[string][]*model.Note
}

// NewMemoryNoteRepo はMemoryNoteRepoを生成する。
func NewMemoryNoteRepo() *MemoryNoteRepo {
	return &MemoryNoteRepo{byUser: make(map[string][]*model.Note)}
}

// ListByUserID は指定ユーザーのメモを作成順で返す。
func (r *MemoryNoteRepo) ListByUserID(_ context.Context, userID string) ([]*model.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src := r.byUser[userID]
	notes := make([]*model.Note, 0, len(src))
	for _, n := range src {
		cp := *n
		notes = append(notes, &cp)
	}
	return notes, nil
}

// Create はメモを保存する。
func (r *MemoryNoteRepo) Create(_ context.Context, note *model.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *note
	r.byUser[cp.UserID] = append(r.byUser[cp.UserID], &cp)
	return nil
}

// MemoryHealth はメモリバックエンド用のHealthChecker。常に成功する。
type MemoryHealth struct{}

// PingContext は常にnilを返す。
func (MemoryHealth) PingContext(context.Context) error { return nil }

// compile-time interface check
var (
	_ UserRepository    = (*MemoryUserRepo)(nil)
	_ SessionRepository = (*MemorySessionRepo)(nil)
	_ NoteRepository    = (*MemoryNoteRepo)(nil)
	_ HealthChecker     = MemoryHealth{}
)
