package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/petstore/internal/model"
)

// CartServiceInterface はカートハンドラーが必要とするサービスインターフェース。
type CartServiceInterface interface {
	GetCart(ctx context.Context, username string) ([]model.CartLine, error)
	AddToCart(ctx context.Context, username, productID string, quantity int) ([]model.CartItem, error)
	RemoveFromCart(ctx context.Context, username, productID string) ([]model.CartItem, error)
}

// CartHandler はカート操作のHTTPハンドラー。すべて要認証。
type CartHandler struct {
	service CartServiceInterface
}

// NewCartHandler はCartHandlerを生成する。
func NewCartHandler(service CartServiceInterface) *CartHandler {
	return &CartHandler{service: service}
}

// addToCartRequest はカート追加リクエストのボディ。
// quantity省略時は1として扱う。
type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

// GetCart はカート内容を商品詳細付きで返す。
// GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameOrUnauthorized(w, r)
	if !ok {
		return
	}

	lines, err := h.service.GetCart(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if lines == nil {
		lines = []model.CartLine{}
	}
	writeJSON(w, http.StatusOK, lines)
}

// AddToCart はカートに商品を追加する。
// POST /api/cart/add
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("Invalid request body"))
		return
	}
	if req.ProductID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("Product ID required"))
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := h.service.AddToCart(r.Context(), username, req.ProductID, quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Added to cart",
		"cart":    cart,
	})
}

// RemoveFromCart はカートから指定商品の行を取り除く。
// DELETE /api/cart/remove/{productId}
func (h *CartHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameOrUnauthorized(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productId")

	cart, err := h.service.RemoveFromCart(r.Context(), username, productID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Removed from cart",
		"cart":    cart,
	})
}
