package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/petstore/internal/middleware"
	"github.com/hitoshi/petstore/internal/model"
)

// mockCartService はCartServiceInterfaceのモック実装。
type mockCartService struct {
	getCartFn        func(ctx context.Context, username string) ([]model.CartLine, error)
	addToCartFn      func(ctx context.Context, username, productID string, quantity int) ([]model.CartItem, error)
	removeFromCartFn func(ctx context.Context, username, productID string) ([]model.CartItem, error)
}

func (m *mockCartService) GetCart(ctx context.Context, username string) ([]model.CartLine, error) {
	if m.getCartFn != nil {
		return m.getCartFn(ctx, username)
	}
	return nil, nil
}

func (m *mockCartService) AddToCart(ctx context.Context, username, productID string, quantity int) ([]model.CartItem, error) {
	if m.addToCartFn != nil {
		return m.addToCartFn(ctx, username, productID, quantity)
	}
	return nil, nil
}

func (m *mockCartService) RemoveFromCart(ctx context.Context, username, productID string) ([]model.CartItem, error) {
	if m.removeFromCartFn != nil {
		return m.removeFromCartFn(ctx, username, productID)
	}
	return nil, nil
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.ContextWithUsername(req.Context(), "taro"))
}

// --- GET /api/cart ---

func TestCartHandler_GetCart_Success(t *testing.T) {
	h := NewCartHandler(&mockCartService{
		getCartFn: func(ctx context.Context, username string) ([]model.CartLine, error) {
			if username != "taro" {
				t.Errorf("username = %q, want %q", username, "taro")
			}
			return []model.CartLine{
				{ProductID: "pet-001", Quantity: 2, Product: &model.Product{ID: "pet-001"}},
			}, nil
		},
	})

	rr := httptest.NewRecorder()
	h.GetCart(rr, authedRequest(http.MethodGet, "/api/cart", ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var lines []model.CartLine
	if err := json.NewDecoder(rr.Body).Decode(&lines); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 2 {
		t.Errorf("lines = %+v, want one line with quantity 2", lines)
	}
}

func TestCartHandler_GetCart_EmptyCartReturnsEmptyArray(t *testing.T) {
	h := NewCartHandler(&mockCartService{})

	rr := httptest.NewRecorder()
	h.GetCart(rr, authedRequest(http.MethodGet, "/api/cart", ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got := rr.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want %q", got, "[]\n")
	}
}

func TestCartHandler_GetCart_Unauthenticated(t *testing.T) {
	h := NewCartHandler(&mockCartService{})

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rr := httptest.NewRecorder()

	h.GetCart(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

// --- POST /api/cart/add ---

func TestCartHandler_AddToCart_Success(t *testing.T) {
	h := NewCartHandler(&mockCartService{
		addToCartFn: func(ctx context.Context, username, productID string, quantity int) ([]model.CartItem, error) {
			if productID != "pet-001" || quantity != 2 {
				t.Errorf("AddToCart(%q, %d), want (pet-001, 2)", productID, quantity)
			}
			return []model.CartItem{{ProductID: productID, Quantity: quantity}}, nil
		},
	})

	rr := httptest.NewRecorder()
	h.AddToCart(rr, authedRequest(http.MethodPost, "/api/cart/add", `{"productId":"pet-001","quantity":2}`))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := decodeBody(t, rr)
	if body["message"] != "Added to cart" {
		t.Errorf("message = %v, want Added to cart", body["message"])
	}
	if _, ok := body["cart"]; !ok {
		t.Error("expected updated cart in response")
	}
}

func TestCartHandler_AddToCart_QuantityDefaultsToOne(t *testing.T) {
	h := NewCartHandler(&mockCartService{
		addToCartFn: func(ctx context.Context, username, productID string, quantity int) ([]model.CartItem, error) {
			if quantity != 1 {
				t.Errorf("quantity = %d, want 1", quantity)
			}
			return []model.CartItem{{ProductID: productID, Quantity: quantity}}, nil
		},
	})

	rr := httptest.NewRecorder()
	h.AddToCart(rr, authedRequest(http.MethodPost, "/api/cart/add", `{"productId":"pet-001"}`))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestCartHandler_AddToCart_MissingProductID(t *testing.T) {
	h := NewCartHandler(&mockCartService{})

	rr := httptest.NewRecorder()
	h.AddToCart(rr, authedRequest(http.MethodPost, "/api/cart/add", `{"quantity":2}`))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCartHandler_AddToCart_UnknownProduct(t *testing.T) {
	h := NewCartHandler(&mockCartService{
		addToCartFn: func(ctx context.Context, username, productID string, quantity int) ([]model.CartItem, error) {
			return nil, model.NewProductNotFoundError(productID)
		},
	})

	rr := httptest.NewRecorder()
	h.AddToCart(rr, authedRequest(http.MethodPost, "/api/cart/add", `{"productId":"pet-999"}`))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

// --- DELETE /api/cart/remove/{productId} ---

func TestCartHandler_RemoveFromCart_Success(t *testing.T) {
	h := NewCartHandler(&mockCartService{
		removeFromCartFn: func(ctx context.Context, username, productID string) ([]model.CartItem, error) {
			if productID != "pet-001" {
				t.Errorf("productID = %q, want %q", productID, "pet-001")
			}
			return []model.CartItem{}, nil
		},
	})

	req := authedRequest(http.MethodDelete, "/api/cart/remove/pet-001", "")
	req = withChiURLParam(req, "productId", "pet-001")
	rr := httptest.NewRecorder()

	h.RemoveFromCart(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := decodeBody(t, rr)
	if body["message"] != "Removed from cart" {
		t.Errorf("message = %v, want Removed from cart", body["message"])
	}
}
