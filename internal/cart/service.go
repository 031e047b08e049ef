// Package cart はカート操作のドメインロジックを提供する。
package cart

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/petstore/internal/model"
	"github.com/hitoshi/petstore/internal/repository"
)

// Service はカート操作のサービス層。
type Service struct {
	userRepo     repository.UserRepository
	productRepo  repository.ProductRepository
	activityRepo repository.ActivityRepository
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	activityRepo repository.ActivityRepository,
) *Service {
	return &Service{
		userRepo:     userRepo,
		productRepo:  productRepo,
		activityRepo: activityRepo,
	}
}

// GetCart はユーザーのカートを商品詳細付きで返す。
// カタログから削除済みの商品を参照する行は、Productをnilにしたまま返す
// （ダングリング参照を黙って除去しない仕様）。
func (s *Service) GetCart(ctx context.Context, username string) ([]model.CartLine, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(username)
	}

	lines := make([]model.CartLine, len(user.Cart))
	for i, item := range user.Cart {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to find product: %w", err)
		}
		lines[i] = model.CartLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Product:   product,
		}
	}
	return lines, nil
}

// AddToCart はカートに商品を追加し、更新後のカートを返す。
// 商品が存在しない場合は商品不在エラー、数量が1未満の場合は検証エラーを返す。
// 同一商品の再追加は数量を加算する。
func (s *Service) AddToCart(ctx context.Context, username, productID string, quantity int) ([]model.CartItem, error) {
	if productID == "" {
		return nil, model.NewValidationError("Product ID required")
	}
	if quantity < 1 {
		return nil, model.NewValidationError("Quantity must be at least 1")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	if product == nil {
		return nil, model.NewProductNotFoundError(productID)
	}

	updated, err := s.userRepo.AddToCart(ctx, username, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}
	if updated == nil {
		return nil, model.NewUserNotFoundError(username)
	}

	s.logActivity(ctx, username, "add-to-cart", map[string]any{
		"productId": productID,
		"quantity":  quantity,
	})

	return updated, nil
}

// RemoveFromCart はカートから指定商品の行を取り除き、更新後のカートを返す。
// 行が存在しない場合もエラーにしない。
func (s *Service) RemoveFromCart(ctx context.Context, username, productID string) ([]model.CartItem, error) {
	updated, err := s.userRepo.RemoveFromCart(ctx, username, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove from cart: %w", err)
	}
	if updated == nil {
		return nil, model.NewUserNotFoundError(username)
	}

	s.logActivity(ctx, username, "remove-from-cart", map[string]any{
		"productId": productID,
	})

	return updated, nil
}

// logActivity はアクティビティログに追記する。記録の失敗は本処理を失敗させない。
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
