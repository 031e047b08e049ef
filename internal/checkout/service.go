// Package checkout はチェックアウトと決済シミュレーションのドメインロジックを提供する。
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/petstore/internal/model"
	"github.com/hitoshi/petstore/internal/repository"
)

// CartReader はカート内容の取得インターフェース。
// cart.Serviceの部分集合として定義する。
type CartReader interface {
	GetCart(ctx context.Context, username string) ([]model.CartLine, error)
}

// StoreMetrics は購入イベントのメトリクス記録インターフェース。
type StoreMetrics interface {
	RecordPurchase(total float64)
}

// PaymentRequest は決済リクエストの入力。
// 実際の決済ゲートウェイ連携は行わず、フィールドの存在検証のみ行う。
type PaymentRequest struct {
	CardNumber string
	CardName   string
	ExpiryDate string
	CVV        string
}

// CheckoutResult はチェックアウト（決済前の合計計算）の結果。
type CheckoutResult struct {
	Items []model.CartLine `json:"items"`
	Total float64          `json:"total"`
}

// Service はチェックアウト・決済のサービス層。
type Service struct {
	cartReader   CartReader
	userRepo     repository.UserRepository
	productRepo  repository.ProductRepository
	activityRepo repository.ActivityRepository
	collector    StoreMetrics
}

// NewService はServiceを生成する。collectorはnilでもよい。
func NewService(
	cartReader CartReader,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	activityRepo repository.ActivityRepository,
	collector StoreMetrics,
) *Service {
	return &Service{
		cartReader:   cartReader,
		userRepo:     userRepo,
		productRepo:  productRepo,
		activityRepo: activityRepo,
		collector:    collector,
	}
}

// Checkout は現在のカート内容とカタログの現在価格から合計金額を計算する。
// 読み取り専用で、カートは変更しない。空カートは検証エラーになる。
// カタログから削除済みの商品を参照する行は合計に含めない。
func (s *Service) Checkout(ctx context.Context, username string) (*CheckoutResult, error) {
	lines, err := s.cartReader.GetCart(ctx, username)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, model.NewEmptyCartError()
	}

	return &CheckoutResult{
		Items: lines,
		Total: totalOf(lines),
	}, nil
}

// Pay は決済フィールドの存在を検証し、購入記録を作成して購入済みの行をカートから取り除く。
// カード番号は下4桁のみ保存される。スナップショットから確定までは
// CompletePurchaseの排他区間で行われるため、並行して追加されたカート行は失われない。
func (s *Service) Pay(ctx context.Context, username string, req PaymentRequest) (*model.Purchase, error) {
	if req.CardNumber == "" || req.CardName == "" || req.ExpiryDate == "" || req.CVV == "" {
		return nil, model.NewValidationError("All payment fields required")
	}

	purchase, err := s.userRepo.CompletePurchase(ctx, username, func(cart []model.CartItem) (*model.Purchase, error) {
		if len(cart) == 0 {
			return nil, model.NewEmptyCartError()
		}

		var items []model.PurchaseItem
		var total float64
		for _, entry := range cart {
			product, err := s.productRepo.FindByID(ctx, entry.ProductID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve product: %w", err)
			}
			// 削除済み商品への参照は購入対象から外す（行はカートに残る）
			if product == nil {
				continue
			}
			items = append(items, model.PurchaseItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Price:       product.Price,
				Quantity:    entry.Quantity,
			})
			total += product.Price * float64(entry.Quantity)
		}
		if len(items) == 0 {
			return nil, model.NewEmptyCartError()
		}

		return &model.Purchase{
			ID:    "purchase-" + uuid.New().String(),
			Items: items,
			Payment: model.PaymentRecord{
				CardLast4:  maskCardNumber(req.CardNumber),
				CardName:   req.CardName,
				ExpiryDate: req.ExpiryDate,
			},
			Total: total,
			Date:  time.Now().UTC(),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logActivity(ctx, username, "purchase", map[string]any{
		"purchaseId": purchase.ID,
		"total":      purchase.Total,
	})
	if s.collector != nil {
		s.collector.RecordPurchase(purchase.Total)
	}

	slog.Info("payment processed",
		slog.String("username", username),
		slog.String("purchase_id", purchase.ID),
		slog.Float64("total", purchase.Total),
	)

	return purchase, nil
}

// Purchases はユーザーの購入履歴を返す。
func (s *Service) Purchases(ctx context.Context, username string) ([]model.Purchase, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(username)
	}
	return user.Purchases, nil
}

// totalOf は現在のカタログ価格に基づく合計金額を返す。
// Productがnilの行（削除済み商品）は加算しない。
func totalOf(lines []model.CartLine) float64 {
	var total float64
	for _, line := range lines {
		if line.Product == nil {
			continue
		}
		total += line.Product.Price * float64(line.Quantity)
	}
	return total
}

// maskCardNumber はカード番号の下4桁のみを返す。
func maskCardNumber(cardNumber string) string {
	if len(cardNumber) <= 4 {
		return cardNumber
	}
	return cardNumber[len(cardNumber)-4:]
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
