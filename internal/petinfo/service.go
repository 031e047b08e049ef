// Package petinfo はペット情報ページとグルーミング予約を提供する。
package petinfo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/petstore/internal/model"
	"github.com/hitoshi/petstore/internal/repository"
)

// maxRelatedProducts はペット詳細に添える関連商品の最大数。
const maxRelatedProducts = 3

// PetDetail はペット詳細ページのレスポンス。
// 商品情報にケア方法と同カテゴリの関連商品を付与する。
type PetDetail struct {
	model.Product
	CareInstructions string          `json:"careInstructions"`
	RelatedProducts  []model.Product `json:"relatedProducts"`
}

// BookGroomingInput はグルーミング予約の入力。全フィールド必須。
type BookGroomingInput struct {
	PetType string
	Service string
	Date    string
	Time    string
}

// Service はペット情報のサービス層。
type Service struct {
	productRepo  repository.ProductRepository
	activityRepo repository.ActivityRepository
}

// NewService はServiceを生成する。
func NewService(productRepo repository.ProductRepository, activityRepo repository.ActivityRepository) *Service {
	return &Service{
		productRepo:  productRepo,
		activityRepo: activityRepo,
	}
}

// PetInfo はペットの詳細情報を返す。
// 商品が見つからない場合は商品不在エラーを返す。
func (s *Service) PetInfo(ctx context.Context, productID string) (*PetDetail, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	if product == nil {
		return nil, model.NewProductNotFoundError(productID)
	}

	related, err := s.relatedProducts(ctx, product.Category, product.ID)
	if err != nil {
		return nil, err
	}

	return &PetDetail{
		Product:          *product,
		CareInstructions: careInstructionsFor(product.Category),
		RelatedProducts:  related,
	}, nil
}

// CareTips はカテゴリ別のペットケアのヒントを返す。
func (s *Service) CareTips(ctx context.Context) map[string][]string {
	return careTips()
}

// AdoptionInfo は里親プロセスの案内を返す。
func (s *Service) AdoptionInfo(ctx context.Context) AdoptionGuide {
	return adoptionGuide()
}

// BookGrooming はグルーミング予約を受け付ける。
// 予約は専用ストアを持たず、アクティビティログに記録される。
func (s *Service) BookGrooming(ctx context.Context, username string, input BookGroomingInput) (*model.GroomingAppointment, error) {
	if input.PetType == "" || input.Service == "" || input.Date == "" || input.Time == "" {
		return nil, model.NewValidationError("All fields required")
	}

	appointment := &model.GroomingAppointment{
		ID:        "grooming-" + uuid.New().String(),
		Username:  username,
		PetType:   input.PetType,
		Service:   input.Service,
		Date:      input.Date,
		Time:      input.Time,
		Status:    "confirmed",
		CreatedAt: time.Now().UTC(),
	}

	activity := model.Activity{
		Datetime: time.Now().UTC(),
		Username: username,
		Type:     "grooming-booking",
		Details: map[string]any{
			"id":      appointment.ID,
			"petType": appointment.PetType,
			"service": appointment.Service,
			"date":    appointment.Date,
			"time":    appointment.Time,
			"status":  appointment.Status,
		},
	}
	if err := s.activityRepo.Append(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to record appointment: %w", err)
	}

	slog.Info("grooming appointment booked",
		slog.String("username", username),
		slog.String("appointment_id", appointment.ID),
	)

	return appointment, nil
}

// relatedProducts は同カテゴリの商品を最大maxRelatedProducts件返す。自身は除外する。
func (s *Service) relatedProducts(ctx context.Context, category, excludeID string) ([]model.Product, error) {
	all, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	related := []model.Product{}
	for _, p := range all {
		if p.Category == category && p.ID != excludeID {
			related = append(related, p)
			if len(related) == maxRelatedProducts {
				break
			}
		}
	}
	return related, nil
}
