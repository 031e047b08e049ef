// Package catalog は商品カタログの参照ロジックを提供する。
package catalog

import (
	"context"
	"fmt"

	"github.com/hitoshi/petstore/internal/model"
	"github.com/hitoshi/petstore/internal/repository"
)

// Service は商品カタログのサービス層。
type Service struct {
	productRepo repository.ProductRepository
}

// NewService はServiceを生成する。
func NewService(productRepo repository.ProductRepository) *Service {
	return &Service{productRepo: productRepo}
}

// ListProducts は全商品を返す。
func (s *Service) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// SearchProducts は商品名または説明の部分一致で商品を検索する。
// クエリが空の場合は全商品を返す。
func (s *Service) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	if query == "" {
		return s.ListProducts(ctx)
	}

	products, err := s.productRepo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// GetProduct は指定IDの商品を返す。見つからない場合は商品不在エラーを返す。
func (s *Service) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	if product == nil {
		return nil, model.NewProductNotFoundError(id)
	}
	return product, nil
}
