package repository

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/petstore/internal/model"
)

// FileProductRepo はJSONファイルを使用した商品カタログリポジトリ。
type FileProductRepo struct {
	path     string
	mu       sync.RWMutex
	products []model.Product
}

// NewFileProductRepo は指定パスのファイルを読み込んでFileProductRepoを生成する。
func NewFileProductRepo(path string) (*FileProductRepo, error) {
	products, err := loadJSONFile[model.Product](path)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	return &FileProductRepo{path: path, products: products}, nil
}

// List は全商品を返す。
func (r *FileProductRepo) List(ctx context.Context) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Product, len(r.products))
	for i, p := range r.products {
		out[i] = cloneProduct(p)
	}
	return out, nil
}

// FindByID は指定IDの商品を取得する。見つからない場合はnilを返す。
func (r *FileProductRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.products {
		if r.products[i].ID == id {
			p := cloneProduct(r.products[i])
			return &p, nil
		}
	}
	return nil, nil
}

// Search は商品名または説明に部分一致（大文字小文字無視）する商品を返す。
func (r *FileProductRepo) Search(ctx context.Context, query string) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(query)
	var out []model.Product
	for _, p := range r.products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

// Create は商品を作成する。
func (r *FileProductRepo) Create(ctx context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = append(r.products, cloneProduct(*product))
	return r.save()
}

// Delete は指定IDの商品を削除する。存在しないIDでもエラーにしない。
func (r *FileProductRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = slices.DeleteFunc(r.products, func(p model.Product) bool {
		return p.ID == id
	})
	return r.save()
}

// SeedDefaults はカタログが空の場合にデフォルトの5商品を投入する。
func (r *FileProductRepo) SeedDefaults(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.products) > 0 {
		return nil
	}

	r.products = defaultProducts()
	return r.save()
}

// save はコレクション全体をファイルへ書き出す。muを保持した状態で呼ぶこと。
func (r *FileProductRepo) save() error {
	return saveJSONFile(r.path, r.products)
}

// cloneProduct は呼び出し元が内部マップを共有しないよう商品を複製する。
func cloneProduct(p model.Product) model.Product {
	p.PetInfo = maps.Clone(p.PetInfo)
	return p
}

// defaultProducts は初期カタログを返す。
func defaultProducts() []model.Product {
	now := time.Now().UTC()
	return []model.Product{
		{
			ID:          "pet-001",
			Name:        "Golden Retriever Puppy",
			Description: "Friendly and loyal companion, 8 weeks old",
			Price:       1200,
			Category:    "Dogs",
			Image:       "/images/golden-retriever.jpg",
			Stock:       3,
			PetInfo: map[string]any{
				"breed":       "Golden Retriever",
				"age":         "8 weeks",
				"weight":      "5 kg",
				"vaccinated":  true,
				"temperament": "Friendly, Intelligent, Devoted",
			},
			CreatedAt: now,
		},
		{
			ID:          "pet-002",
			Name:        "Persian Cat",
			Description: "Beautiful long-haired cat, very calm",
			Price:       800,
			Category:    "Cats",
			Image:       "/images/persian-cat.jpg",
			Stock:       5,
			PetInfo: map[string]any{
				"breed":       "Persian",
				"age":         "12 weeks",
				"weight":      "2 kg",
				"vaccinated":  true,
				"temperament": "Calm, Sweet, Gentle",
			},
			CreatedAt: now,
		},
		{
			ID:          "pet-003",
			Name:        "Tropical Fish Tank Set",
			Description: "Complete aquarium with 10 tropical fish",
			Price:       250,
			Category:    "Fish",
			Image:       "/images/fish-tank.jpg",
			Stock:       10,
			PetInfo: map[string]any{
				"species":    "Mixed Tropical",
				"tankSize":   "50 gallons",
				"included":   "Tank, Filter, Heater, 10 Fish",
				"difficulty": "Beginner",
			},
			CreatedAt: now,
		},
		{
			ID:          "pet-004",
			Name:        "Cockatiel",
			Description: "Friendly bird, great for beginners",
			Price:       150,
			Category:    "Birds",
			Image:       "/images/cockatiel.jpg",
			Stock:       7,
			PetInfo: map[string]any{
				"species":     "Cockatiel",
				"age":         "6 months",
				"wingspan":    "30 cm",
				"lifespan":    "15-20 years",
				"temperament": "Social, Playful",
			},
			CreatedAt: now,
		},
		{
			ID:          "pet-005",
			Name:        "Holland Lop Rabbit",
			Description: "Small, friendly rabbit with floppy ears",
			Price:       120,
			Category:    "Small Pets",
			Image:       "/images/holland-lop.jpg",
			Stock:       8,
			PetInfo: map[string]any{
				"breed":       "Holland Lop",
				"age":         "10 weeks",
				"weight":      "1.5 kg",
				"lifespan":    "7-10 years",
				"temperament": "Gentle, Friendly",
			},
			CreatedAt: now,
		},
	}
}

// compile-time interface check
var _ ProductRepository = (*FileProductRepo)(nil)
