package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/petstore/internal/model"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByUsernameFn func(ctx context.Context, username string) (*model.User, error)
	addToCartFn      func(ctx context.Context, username, productID string, quantity int) ([]model.CartItem, error)
	removeFromCartFn func(ctx context.Context, username, productID string) ([]model.CartItem, error)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.findByUsernameFn != nil {
		return m.findByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error { return nil }

func (m *mockUserRepo) AddToCart(ctx context.Context, username, productID string, quantity int) ([]model.CartItem, error) {
	if m.addToCartFn != nil {
		return m.addToCartFn(ctx, username, productID, quantity)
	}
	return nil, nil
}

func (m *mockUserRepo) RemoveFromCart(ctx context.Context, username, productID string) ([]model.CartItem, error) {
	if m.removeFromCartFn != nil {
		return m.removeFromCartFn(ctx, username, productID)
	}
	return nil, nil
}

func (m *mockUserRepo) CompletePurchase(ctx context.Context, username string, build func(cart []model.CartItem) (*model.Purchase, error)) (*model.Purchase, error) {
	return build(nil)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	return nil
}

func (m *mockUserRepo) EnsureAdmin(ctx context.Context, passwordHash string) error { return nil }

type mockProductRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.Product, error)
}

func (m *mockProductRepo) List(ctx context.Context) ([]model.Product, error) { return nil, nil }

func (m *mockProductRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockProductRepo) Search(ctx context.Context, query string) ([]model.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) Create(ctx context.Context, product *model.Product) error { return nil }

func (m *mockProductRepo) Delete(ctx context.Context, id string) error { return nil }

func (m *mockProductRepo) SeedDefaults(ctx context.Context) error { return nil }

type mockActivityRepo struct {
	appended []model.Activity
}

func (m *mockActivityRepo) Append(ctx context.Context, activity model.Activity) error {
	m.appended = append(m.appended, activity)
	return nil
}

func (m *mockActivityRepo) List(ctx context.Context, usernamePrefix string) ([]model.Activity, error) {
	return m.appended, nil
}

// --- GetCart ---

func TestService_GetCart_ResolvesProducts(t *testing.T) {
	userRepo := &mockUserRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{
				Username: "taro",
				Cart: []model.CartItem{
					{ProductID: "pet-001", Quantity: 2},
					{ProductID: "pet-002", Quantity: 1},
				},
			}, nil
		},
	}
	productRepo := &mockProductRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Product, error) {
			return &model.Product{ID: id, Name: "Pet " + id, Price: 100}, nil
		},
	}
	svc := NewService(userRepo, productRepo, &mockActivityRepo{})

	lines, err := svc.GetCart(context.Background(), "taro")
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}

	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if lines[0].Product == nil || lines[0].Product.ID != "pet-001" {
		t.Errorf("lines[0].Product = %+v, want pet-001", lines[0].Product)
	}
	if lines[0].Quantity != 2 {
		t.Errorf("lines[0].Quantity = %d, want 2", lines[0].Quantity)
	}
}

func TestService_GetCart_KeepsDanglingLineWithNilProduct(t *testing.T) {
	userRepo := &mockUserRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{
				Username: "taro",
				Cart:     []model.CartItem{{ProductID: "pet-deleted", Quantity: 1}},
			}, nil
		},
	}
	// カタログから削除済みの商品
	productRepo := &mockProductRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Product, error) {
			return nil, nil
		},
	}
	svc := NewService(userRepo, productRepo, &mockActivityRepo{})

	lines, err := svc.GetCart(context.Background(), "taro")
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}

	if len(lines) != 1 {
		t.Fatalf("len(lines) = %d, want 1 (dangling line must not be silently dropped)", len(lines))
	}
	if lines[0].Product != nil {
		t.Errorf("lines[0].Product = %+v, want nil", lines[0].Product)
	}
}

func TestService_GetCart_UnknownUser(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockProductRepo{}, &mockActivityRepo{})

	_, err := svc.GetCart(context.Background(), "nobody")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeUserNotFound)
	}
}

// --- AddToCart ---

func TestService_AddToCart_Success(t *testing.T) {
	productRepo := &mockProductRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Product, error) {
			return &model.Product{ID: id, Name: "Persian Cat"}, nil
		},
	}
	userRepo := &mockUserRepo{
		addToCartFn: func(ctx context.Context, username, productID string, quantity int) ([]model.CartItem, error) {
			return []model.CartItem{{ProductID: productID, Quantity: quantity}}, nil
		},
	}
	activityRepo := &mockActivityRepo{}
	svc := NewService(userRepo, productRepo, activityRepo)

	cart, err := svc.AddToCart(context.Background(), "taro", "pet-002", 3)
	if err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	if len(cart) != 1 || cart[0].Quantity != 3 {
		t.Errorf("cart = %+v, want one line with quantity 3", cart)
	}
	if len(activityRepo.appended) != 1 || activityRepo.appended[0].Type != "add-to-cart" {
		t.Errorf("expected add-to-cart activity, got %+v", activityRepo.appended)
	}
	if activityRepo.appended[0].Details["productId"] != "pet-002" {
		t.Errorf("activity productId = %v, want pet-002", activityRepo.appended[0].Details["productId"])
	}
}

func TestService_AddToCart_Validation(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockProductRepo{}, &mockActivityRepo{})

	tests := []struct {
		name      string
		productID string
		quantity  int
	}{
		{"empty product id", "", 1},
		{"zero quantity", "pet-001", 0},
		{"negative quantity", "pet-001", -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddToCart(context.Background(), "taro", tt.productID, tt.quantity)

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Code != model.ErrCodeInvalidRequest {
				t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidRequest)
			}
		})
	}
}

func TestService_AddToCart_UnknownProduct(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockProductRepo{}, &mockActivityRepo{})

	_, err := svc.AddToCart(context.Background(), "taro", "pet-999", 1)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeProductNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeProductNotFound)
	}
}

func TestService_AddToCart_UnknownUser(t *testing.T) {
	productRepo := &mockProductRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Product, error) {
			return &model.Product{ID: id}, nil
		},
	}
	// リポジトリはユーザー不在をnilカートで表す
	svc := NewService(&mockUserRepo{}, productRepo, &mockActivityRepo{})

	_, err := svc.AddToCart(context.Background(), "nobody", "pet-001", 1)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeUserNotFound)
	}
}

// --- RemoveFromCart ---

func TestService_RemoveFromCart_Success(t *testing.T) {
	userRepo := &mockUserRepo{
		removeFromCartFn: func(ctx context.Context, username, productID string) ([]model.CartItem, error) {
			return []model.CartItem{}, nil
		},
	}
	activityRepo := &mockActivityRepo{}
	svc := NewService(userRepo, &mockProductRepo{}, activityRepo)

	cart, err := svc.RemoveFromCart(context.Background(), "taro", "pet-001")
	if err != nil {
		t.Fatalf("RemoveFromCart failed: %v", err)
	}

	if len(cart) != 0 {
		t.Errorf("cart = %+v, want empty", cart)
	}
	if len(activityRepo.appended) != 1 || activityRepo.appended[0].Type != "remove-from-cart" {
		t.Errorf("expected remove-from-cart activity, got %+v", activityRepo.appended)
	}
}
