// Package admin は管理者向けの商品管理とアクティビティログ参照を提供する。
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/petstore/internal/model"
	"github.com/hitoshi/petstore/internal/repository"
	"github.com/hitoshi/petstore/internal/security"
)

// デフォルト値。登録時に未指定の場合に適用される。
const (
	defaultCategory = "General"
	defaultStock    = 10
)

// AddProductInput は商品登録の入力。
// Imageにはアップロード済みファイルのパスまたは外部URLが入る。
type AddProductInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Stock       int
	Image       string
}

// Service は管理機能のサービス層。
type Service struct {
	productRepo  repository.ProductRepository
	activityRepo repository.ActivityRepository
	sanitizer    security.InputSanitizerService
}

// NewService はServiceを生成する。
func NewService(
	productRepo repository.ProductRepository,
	activityRepo repository.ActivityRepository,
	sanitizer security.InputSanitizerService,
) *Service {
	return &Service{
		productRepo:  productRepo,
		activityRepo: activityRepo,
		sanitizer:    sanitizer,
	}
}

// Activities はアクティビティログを返す。
// usernamePrefixが空でない場合、ユーザー名前方一致で絞り込む。
func (s *Service) Activities(ctx context.Context, usernamePrefix string) ([]model.Activity, error) {
	activities, err := s.activityRepo.List(ctx, usernamePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	if activities == nil {
		activities = []model.Activity{}
	}
	return activities, nil
}

// AddProduct は商品をカタログに登録する。
// 名前・説明・価格は必須。ブラウザに表示されるテキストフィールドは
// 保存前にサニタイズされ、HTMLタグが除去される。
func (s *Service) AddProduct(ctx context.Context, adminUser string, input AddProductInput) (*model.Product, error) {
	name := s.sanitizer.Sanitize(input.Name)
	description := s.sanitizer.Sanitize(input.Description)
	category := s.sanitizer.Sanitize(input.Category)

	if name == "" || description == "" {
		return nil, model.NewValidationError("Name, description, and price required")
	}
	if input.Price <= 0 {
		return nil, model.NewValidationError("Price must be greater than zero")
	}

	if category == "" {
		category = defaultCategory
	}
	stock := input.Stock
	if stock <= 0 {
		stock = defaultStock
	}

	product := &model.Product{
		ID:          "pet-" + uuid.New().String(),
		Name:        name,
		Description: description,
		Price:       input.Price,
		Category:    category,
		Stock:       stock,
		Image:       input.Image,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logActivity(ctx, adminUser, "add-product", map[string]any{
		"productId": product.ID,
		"name":      product.Name,
	})

	slog.Info("product added",
		slog.String("product_id", product.ID),
		slog.String("name", product.Name),
	)

	return product, nil
}

// RemoveProduct は商品をカタログから削除する。
// 既存ユーザーのカートに残る参照は削除しない（ダングリング参照を許容する仕様）。
// 存在しないIDでもエラーにしない。
func (s *Service) RemoveProduct(ctx context.Context, adminUser, productID string) error {
	if productID == "" {
		return model.NewValidationError("Product ID required")
	}

	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logActivity(ctx, adminUser, "remove-product", map[string]any{
		"productId": productID,
	})

	slog.Info("product removed", slog.String("product_id", productID))
	return nil
}

// logActivity はアクティビティログに追記する。記録の失敗は本処理を失敗させない。
func (s *Service) logActivity(ctx context.Context, username, activityType string, details map[string]any) {
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
