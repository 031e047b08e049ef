// Package auth はユーザー登録・ログイン・セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/petstore/internal/model"
	"github.com/hitoshi/petstore/internal/repository"
)

// bcryptCost はパスワードハッシュのコストパラメータ。
const bcryptCost = 10

// StoreMetrics は認証イベントのメトリクス記録インターフェース。
type StoreMetrics interface {
	RecordRegistration()
	RecordLogin()
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionTTL         time.Duration // 通常ログインのセッション有効期間
	SessionRememberTTL time.Duration // rememberMe指定時のセッション有効期間
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.SessionRepository
	activityRepo repository.ActivityRepository
	collector    StoreMetrics
	config       ServiceConfig
}

// NewService はServiceを生成する。collectorはnilでもよい。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	activityRepo repository.ActivityRepository,
	collector StoreMetrics,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		activityRepo: activityRepo,
		collector:    collector,
		config:       config,
	}
}

// Register は新規ユーザーを登録する。
// 全フィールド必須。ユーザー名の重複は検証エラーとして返す。
func (s *Service) Register(ctx context.Context, username, password, email string) (*model.User, error) {
	if username == "" || password == "" || email == "" {
		return nil, model.NewValidationError("All fields required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:        "user-" + uuid.New().String(),
		Username:  username,
		Password:  string(hash),
		Email:     email,
		Cart:      []model.CartItem{},
		Purchases: []model.Purchase{},
		CreatedAt: time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, model.NewDuplicateUsernameError(username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logActivity(ctx, username, "register", nil)
	if s.collector != nil {
		s.collector.RecordRegistration()
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", username),
	)

	return user, nil
}

// Login は認証情報を検証し、セッションを発行する。
// ユーザー不在とパスワード不一致はどちらも同じ認証失敗エラーになる。
// rememberMe指定時はセッション有効期間が延長される。
func (s *Service) Login(ctx context.Context, username, password string, rememberMe bool) (*model.User, *model.Session, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	session, err := s.createSession(ctx, username, rememberMe)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logActivity(ctx, username, "login", nil)
	if s.collector != nil {
		s.collector.RecordLogin()
	}

	slog.Info("user logged in",
		slog.String("username", username),
		slog.Bool("remember_me", rememberMe),
	)

	return user, session, nil
}

// Logout はセッションを破棄する（冪等）。
func (s *Service) Logout(ctx context.Context, token, username string) error {
	if err := s.sessionRepo.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.logActivity(ctx, username, "logout", nil)

	slog.Info("user logged out", slog.String("username", username))
	return nil
}

// CurrentUser はセッショントークンから現在のユーザーを取得する。
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	session, err := s.sessionRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, model.NewNotAuthenticatedError()
	}

	user, err := s.userRepo.FindByUsername(ctx, session.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(session.Username)
	}

	return user, nil
}

// ChangePassword は現在のパスワードを検証したうえで新しいパスワードに更新する。
// 更新後はそのユーザーの全セッションを無効化するため、再ログインが必要になる。
func (s *Service) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return model.NewValidationError("Current and new password required")
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError(username)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return model.NewInvalidCredentialsError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, username, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	// 旧パスワードで確立された全セッションを無効化する
	if err := s.sessionRepo.DeleteByUsername(ctx, username); err != nil {
		return fmt.Errorf("failed to invalidate sessions: %w", err)
	}

	s.logActivity(ctx, username, "change-password", nil)

	slog.Info("password changed", slog.String("username", username))
	return nil
}

// SessionTTL はrememberMeの有無に応じたセッション有効期間を返す。
// Cookieの有効期間にも同じ値を使用する。
func (s *Service) SessionTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return s.config.SessionRememberTTL
	}
	return s.config.SessionTTL
}

// createSession はセッションを作成し保存する。
func (s *Service) createSession(ctx context.Context, username string, rememberMe bool) (*model.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		Token:     token,
		Username:  username,
		ExpiresAt: now.Add(s.SessionTTL(rememberMe)),
		CreatedAt: now,
		Remember:  rememberMe,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// logActivity はアクティビティログに追記する。
// 記録の失敗は本処理を失敗させず、ログ出力のみ行う。
func (s *Service) logActivity(ctx context.Context, username, activityType string, details map[string]any) {
	if s.activityRepo == nil {
		return
	}
	activity := model.Activity{
		Datetime: time.Now().UTC(),
		Username: username,
		Type:     activityType,
		Details:  details,
	}
	if err := s.activityRepo.Append(ctx, activity); err != nil {
		slog.Error("failed to log activity",
			slog.String("type", activityType),
			slog.String("error", err.Error()),
		)
	}
}

// generateToken は暗号的に安全なセッショントークンを生成する。
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
