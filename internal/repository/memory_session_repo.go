package repository

import (
	"context"
	"sync"
	"time"

	"github.com/hitoshi/petstore/internal/model"
)

// MemorySessionRepo はプロセス内メモリのみを使用するセッションリポジトリ。
// セッションは再起動で消える（永続化しない仕様）。
// アクセス時の期限チェックに加え、バックグラウンドで期限切れエントリを
// 定期的に掃除し、テーブルの無制限な成長を防ぐ。
type MemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]model.Session

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMemorySessionRepo は新しいMemorySessionRepoを生成する。
// sweepIntervalごとに期限切れセッションの掃除をバックグラウンドで実行する。
func NewMemorySessionRepo(sweepInterval time.Duration) *MemorySessionRepo {
	r := &MemorySessionRepo{
		sessions: make(map[string]model.Session),
		stopCh:   make(chan struct{}),
	}

	go r.sweepLoop(sweepInterval)

	return r
}

// Stop は掃除のバックグラウンドゴルーチンを停止する。
func (r *MemorySessionRepo) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
}

// Create はセッションを保存する。
func (r *MemorySessionRepo) Create(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.Token] = *session
	return nil
}

// FindByToken は指定トークンのセッションを取得する。
// 期限切れの場合はエントリを削除してnilを返す。
func (r *MemorySessionRepo) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[token]
	if !ok {
		return nil, nil
	}
	if time.Now().After(s.ExpiresAt) {
		delete(r.sessions, token)
		return nil, nil
	}

	out := s
	return &out, nil
}

// DeleteByToken は指定トークンのセッションを削除する（冪等）。
func (r *MemorySessionRepo) DeleteByToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, token)
	return nil
}

// DeleteByUsername は指定ユーザーの全セッションを削除する。
func (r *MemorySessionRepo) DeleteByUsername(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, s := range r.sessions {
		if s.Username == username {
			delete(r.sessions, token)
		}
	}
	return nil
}

// Len は現在保持しているセッション数を返す。テストおよびメトリクス用。
func (r *MemorySessionRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// sweepLoop はバックグラウンドで期限切れセッションを定期的に削除する。
func (r *MemorySessionRepo) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.stopCh:
			return
		}
	}
}

// sweep は期限切れセッションをすべて削除する。
func (r *MemorySessionRepo) sweep() {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	for token, s := range r.sessions {
		if now.After(s.ExpiresAt) {
			delete(r.sessions, token)
		}
	}
}

// compile-time interface check
var _ SessionRepository = (*MemorySessionRepo)(nil)
