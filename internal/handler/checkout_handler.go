package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/petstore/internal/checkout"
	"github.com/hitoshi/petstore/internal/model"
)

// CheckoutServiceInterface はチェックアウトハンドラーが必要とするサービスインターフェース。
type CheckoutServiceInterface interface {
	Checkout(ctx context.Context, username string) (*checkout.CheckoutResult, error)
	Pay(ctx context.Context, username string, req checkout.PaymentRequest) (*model.Purchase, error)
	Purchases(ctx context.Context, username string) ([]model.Purchase, error)
}

// CheckoutHandler はチェックアウト・決済のHTTPハンドラー。すべて要認証。
type CheckoutHandler struct {
	service CheckoutServiceInterface
}

// NewCheckoutHandler はCheckoutHandlerを生成する。
func NewCheckoutHandler(service CheckoutServiceInterface) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// paymentRequest は決済リクエストのボディ。
// CVVは検証にのみ使用し、保存されない。
type paymentRequest struct {
	CardNumber string `json:"cardNumber"`
	CardName   string `json:"cardName"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
}

// Checkout は現在のカートから合計金額を計算する。
// POST /api/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameOrUnauthorized(w, r)
	if !ok {
		return
	}

	result, err := h.service.Checkout(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items":   result.Items,
		"total":   result.Total,
		"message": "Ready for payment",
	})
}

// Payment は決済を処理し、購入記録を作成する。
// POST /api/payment
func (h *CheckoutHandler) Payment(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("Invalid request body"))
		return
	}

	purchase, err := h.service.Pay(r.Context(), username, checkout.PaymentRequest{
		CardNumber: req.CardNumber,
		CardName:   req.CardName,
		ExpiryDate: req.ExpiryDate,
		CVV:        req.CVV,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Payment successful",
		"purchaseId": purchase.ID,
		"total":      purchase.Total,
	})
}

// Purchases は購入履歴を返す。
// GET /api/purchases
func (h *CheckoutHandler) Purchases(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameOrUnauthorized(w, r)
	if !ok {
		return
	}

	purchases, err := h.service.Purchases(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if purchases == nil {
		purchases = []model.Purchase{}
	}
	writeJSON(w, http.StatusOK, purchases)
}
