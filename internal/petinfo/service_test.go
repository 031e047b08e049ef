package petinfo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hitoshi/petstore/internal/model"
)

// --- モック定義 ---

type mockProductRepo struct {
	listFn     func(ctx context.Context) ([]model.Product, error)
	findByIDFn func(ctx context.Context, id string) (*model.Product, error)
}

func (m *mockProductRepo) List(ctx context.Context) ([]model.Product, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

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
	appendFn func(ctx context.Context, activity model.Activity) error
	appended []model.Activity
}

func (m *mockActivityRepo) Append(ctx context.Context, activity model.Activity) error {
	m.appended = append(m.appended, activity)
	if m.appendFn != nil {
		return m.appendFn(ctx, activity)
	}
	return nil
}

func (m *mockActivityRepo) List(ctx context.Context, usernamePrefix string) ([]model.Activity, error) {
	return m.appended, nil
}

// --- PetInfo ---

func TestService_PetInfo_IncludesCareAndRelated(t *testing.T) {
	productRepo := &mockProductRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Product, error) {
			return &model.Product{ID: "pet-001", Name: "Golden Retriever Puppy", Category: "Dogs"}, nil
		},
		listFn: func(ctx context.Context) ([]model.Product, error) {
			return []model.Product{
				{ID: "pet-001", Category: "Dogs"},
				{ID: "pet-010", Category: "Dogs"},
				{ID: "pet-011", Category: "Dogs"},
				{ID: "pet-012", Category: "Dogs"},
				{ID: "pet-013", Category: "Dogs"},
				{ID: "pet-002", Category: "Cats"},
			}, nil
		},
	}
	svc := NewService(productRepo, &mockActivityRepo{})

	detail, err := svc.PetInfo(context.Background(), "pet-001")
	if err != nil {
		t.Fatalf("PetInfo failed: %v", err)
	}

	if !strings.Contains(detail.CareInstructions, "daily exercise") {
		t.Errorf("CareInstructions = %q, want dog care text", detail.CareInstructions)
	}
	// 関連商品は同カテゴリから最大3件、自身は除外
	if len(detail.RelatedProducts) != 3 {
		t.Fatalf("len(RelatedProducts) = %d, want 3", len(detail.RelatedProducts))
	}
	for _, p := range detail.RelatedProducts {
		if p.ID == "pet-001" {
			t.Error("related products must not include the product itself")
		}
		if p.Category != "Dogs" {
			t.Errorf("related product category = %q, want Dogs", p.Category)
		}
	}
}

func TestService_PetInfo_UnknownCategoryFallsBack(t *testing.T) {
	productRepo := &mockProductRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Product, error) {
			return &model.Product{ID: "pet-100", Category: "Reptiles"}, nil
		},
	}
	svc := NewService(productRepo, &mockActivityRepo{})

	detail, err := svc.PetInfo(context.Background(), "pet-100")
	if err != nil {
		t.Fatalf("PetInfo failed: %v", err)
	}

	if detail.CareInstructions != "Provide proper care according to species needs" {
		t.Errorf("CareInstructions = %q, want generic fallback", detail.CareInstructions)
	}
	if detail.RelatedProducts == nil {
		t.Error("RelatedProducts must be an empty slice, not nil")
	}
}

func TestService_PetInfo_NotFound(t *testing.T) {
	svc := NewService(&mockProductRepo{}, &mockActivityRepo{})

	_, err := svc.PetInfo(context.Background(), "pet-999")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeProductNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeProductNotFound)
	}
}

// --- CareTips / AdoptionInfo ---

func TestService_CareTips_CoversAllCategories(t *testing.T) {
	svc := NewService(&mockProductRepo{}, &mockActivityRepo{})

	tips := svc.CareTips(context.Background())

	for _, category := range []string{"dogs", "cats", "fish", "birds", "smallPets"} {
		if len(tips[category]) == 0 {
			t.Errorf("no tips for category %q", category)
		}
	}
}

func TestService_AdoptionInfo_HasProcessSteps(t *testing.T) {
	svc := NewService(&mockProductRepo{}, &mockActivityRepo{})

	guide := svc.AdoptionInfo(context.Background())

	if len(guide.Process) == 0 {
		t.Error("expected adoption process steps")
	}
	if guide.Requirements["age"] == "" {
		t.Error("expected age requirement")
	}
	if guide.Fees["dogs"] == "" {
		t.Error("expected dog adoption fee")
	}
}

// --- BookGrooming ---

func TestService_BookGrooming_Success(t *testing.T) {
	activityRepo := &mockActivityRepo{}
	svc := NewService(&mockProductRepo{}, activityRepo)

	appointment, err := svc.BookGrooming(context.Background(), "taro", BookGroomingInput{
		PetType: "dog",
		Service: "full-groom",
		Date:    "2026-09-10",
		Time:    "14:00",
	})
	if err != nil {
		t.Fatalf("BookGrooming failed: %v", err)
	}

	if appointment.Status != "confirmed" {
		t.Errorf("Status = %q, want %q", appointment.Status, "confirmed")
	}
	if appointment.Username != "taro" {
		t.Errorf("Username = %q, want %q", appointment.Username, "taro")
	}
	if len(activityRepo.appended) != 1 {
		t.Fatalf("len(activities) = %d, want 1", len(activityRepo.appended))
	}
	recorded := activityRepo.appended[0]
	if recorded.Type != "grooming-booking" {
		t.Errorf("activity type = %q, want %q", recorded.Type, "grooming-booking")
	}
	if recorded.Details["petType"] != "dog" {
		t.Errorf("activity petType = %v, want dog", recorded.Details["petType"])
	}
}

func TestService_BookGrooming_MissingFields(t *testing.T) {
	svc := NewService(&mockProductRepo{}, &mockActivityRepo{})

	tests := []struct {
		name   string
		mutate func(*BookGroomingInput)
	}{
		{"missing pet type", func(in *BookGroomingInput) { in.PetType = "" }},
		{"missing service", func(in *BookGroomingInput) { in.Service = "" }},
		{"missing date", func(in *BookGroomingInput) { in.Date = "" }},
		{"missing time", func(in *BookGroomingInput) { in.Time = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := BookGroomingInput{PetType: "dog", Service: "bath", Date: "2026-09-10", Time: "10:00"}
			tt.mutate(&input)

			_, err := svc.BookGrooming(context.Background(), "taro", input)

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

func TestService_BookGrooming_RecordFailureIsFatal(t *testing.T) {
	// 予約はアクティビティログが唯一の記録のため、書き込み失敗は予約失敗になる
	activityRepo := &mockActivityRepo{
		appendFn: func(ctx context.Context, activity model.Activity) error {
			return errors.New("disk full")
		},
	}
	svc := NewService(&mockProductRepo{}, activityRepo)

	_, err := svc.BookGrooming(context.Background(), "taro", BookGroomingInput{
		PetType: "dog", Service: "bath", Date: "2026-09-10", Time: "10:00",
	})
	if err == nil {
		t.Fatal("expected error when the appointment record cannot be written")
	}
}
