package repository

import (
	"context"
	"testing"
	"time"

	"github.com/hitoshi/petstore/internal/model"
)

func newTestSession(token, username string, ttl time.Duration) *model.Session {
	now := time.Now()
	return &model.Session{
		Token:     token,
		Username:  username,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

func TestMemorySessionRepo_CreateAndFind(t *testing.T) {
	repo := NewMemorySessionRepo(time.Hour)
	defer repo.Stop()
	ctx := context.Background()

	if err := repo.Create(ctx, newTestSession("tok-1", "taro", time.Hour)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.FindByToken(ctx, "tok-1")
	if err != nil {
		t.Fatalf("FindByToken failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.Username != "taro" {
		t.Errorf("Username = %q, want %q", got.Username, "taro")
	}
}

func TestMemorySessionRepo_FindByToken_Unknown(t *testing.T) {
	repo := NewMemorySessionRepo(time.Hour)
	defer repo.Stop()

	got, err := repo.FindByToken(context.Background(), "no-such-token")
	if err != nil {
		t.Fatalf("FindByToken failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown token, got %+v", got)
	}
}

func TestMemorySessionRepo_FindByToken_ExpiredIsDeleted(t *testing.T) {
	repo := NewMemorySessionRepo(time.Hour)
	defer repo.Stop()
	ctx := context.Background()

	if err := repo.Create(ctx, newTestSession("tok-old", "taro", -time.Minute)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.FindByToken(ctx, "tok-old")
	if err != nil {
		t.Fatalf("FindByToken failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for expired session, got %+v", got)
	}
	if repo.Len() != 0 {
		t.Errorf("Len() = %d, want 0 (expired entry must be removed on access)", repo.Len())
	}
}

func TestMemorySessionRepo_DeleteByToken_IsIdempotent(t *testing.T) {
	repo := NewMemorySessionRepo(time.Hour)
	defer repo.Stop()
	ctx := context.Background()

	if err := repo.Create(ctx, newTestSession("tok-1", "taro", time.Hour)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.DeleteByToken(ctx, "tok-1"); err != nil {
		t.Fatalf("DeleteByToken failed: %v", err)
	}
	if err := repo.DeleteByToken(ctx, "tok-1"); err != nil {
		t.Fatalf("second DeleteByToken failed: %v", err)
	}

	got, err := repo.FindByToken(ctx, "tok-1")
	if err != nil {
		t.Fatalf("FindByToken failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}
}

func TestMemorySessionRepo_DeleteByUsername_RemovesAllUserSessions(t *testing.T) {
	repo := NewMemorySessionRepo(time.Hour)
	defer repo.Stop()
	ctx := context.Background()

	if err := repo.Create(ctx, newTestSession("tok-1", "taro", time.Hour)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(ctx, newTestSession("tok-2", "taro", time.Hour)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(ctx, newTestSession("tok-3", "hanako", time.Hour)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.DeleteByUsername(ctx, "taro"); err != nil {
		t.Fatalf("DeleteByUsername failed: %v", err)
	}

	if repo.Len() != 1 {
		t.Errorf("Len() = %d, want 1", repo.Len())
	}
	remaining, err := repo.FindByToken(ctx, "tok-3")
	if err != nil {
		t.Fatalf("FindByToken failed: %v", err)
	}
	if remaining == nil {
		t.Error("other user's session must survive DeleteByUsername")
	}
}

func TestMemorySessionRepo_SweepRemovesExpired(t *testing.T) {
	repo := NewMemorySessionRepo(time.Hour)
	defer repo.Stop()
	ctx := context.Background()

	if err := repo.Create(ctx, newTestSession("tok-live", "taro", time.Hour)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(ctx, newTestSession("tok-dead", "taro", -time.Minute)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	repo.sweep()

	if repo.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after sweep", repo.Len())
	}
}

func TestMemorySessionRepo_StopIsIdempotent(t *testing.T) {
	repo := NewMemorySessionRepo(time.Millisecond)
	repo.Stop()
	repo.Stop()
}
