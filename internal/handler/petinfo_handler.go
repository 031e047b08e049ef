package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/petstore/internal/model"
	"github.com/hitoshi/petstore/internal/petinfo"
)

// PetInfoServiceInterface はペット情報ハンドラーが必要とするサービスインターフェース。
type PetInfoServiceInterface interface {
	PetInfo(ctx context.Context, productID string) (*petinfo.PetDetail, error)
	CareTips(ctx context.Context) map[string][]string
	AdoptionInfo(ctx context.Context) petinfo.AdoptionGuide
	BookGrooming(ctx context.Context, username string, input petinfo.BookGroomingInput) (*model.GroomingAppointment, error)
}

// PetInfoHandler はペット情報ページのHTTPハンドラー。
// グルーミング予約のみ要認証。
type PetInfoHandler struct {
	service PetInfoServiceInterface
}

// NewPetInfoHandler はPetInfoHandlerを生成する。
func NewPetInfoHandler(service PetInfoServiceInterface) *PetInfoHandler {
	return &PetInfoHandler{service: service}
}

// groomingRequest はグルーミング予約リクエストのボディ。
type groomingRequest struct {
	PetType string `json:"petType"`
	Service string `json:"service"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

// PetInfo はペットの詳細情報を返す。
// GET /api/pets/{id}/info
func (h *PetInfoHandler) PetInfo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.service.PetInfo(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// CareTips はカテゴリ別のペットケアのヒントを返す。
// GET /api/pet-care-tips
func (h *PetInfoHandler) CareTips(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.CareTips(r.Context()))
}

// AdoptionInfo は里親プロセスの案内を返す。
// GET /api/adoption-info
func (h *PetInfoHandler) AdoptionInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.AdoptionInfo(r.Context()))
}

// BookGrooming はグルーミング予約を受け付ける。
// POST /api/grooming-appointment（要認証）
func (h *PetInfoHandler) BookGrooming(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req groomingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("Invalid request body"))
		return
	}

	appointment, err := h.service.BookGrooming(r.Context(), username, petinfo.BookGroomingInput{
		PetType: req.PetType,
		Service: req.Service,
		Date:    req.Date,
		Time:    req.Time,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Grooming appointment booked",
		"appointment": appointment,
	})
}
