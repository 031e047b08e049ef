package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hitoshi/petstore/internal/model"
)

func newTestProductRepo(t *testing.T) (*FileProductRepo, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	repo, err := NewFileProductRepo(path)
	if err != nil {
		t.Fatalf("NewFileProductRepo failed: %v", err)
	}
	return repo, path
}

func TestFileProductRepo_SeedDefaults(t *testing.T) {
	repo, _ := newTestProductRepo(t)
	ctx := context.Background()

	if err := repo.SeedDefaults(ctx); err != nil {
		t.Fatalf("SeedDefaults failed: %v", err)
	}

	products, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(products) != 5 {
		t.Fatalf("len(products) = %d, want 5", len(products))
	}
	if products[0].ID != "pet-001" {
		t.Errorf("products[0].ID = %q, want %q", products[0].ID, "pet-001")
	}
}

func TestFileProductRepo_SeedDefaults_SkipsNonEmptyCatalog(t *testing.T) {
	repo, _ := newTestProductRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, &model.Product{ID: "pet-custom", Name: "Hamster"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.SeedDefaults(ctx); err != nil {
		t.Fatalf("SeedDefaults failed: %v", err)
	}

	products, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(products) != 1 {
		t.Errorf("len(products) = %d, want 1 (seed must not run on non-empty catalog)", len(products))
	}
}

func TestFileProductRepo_FindByID(t *testing.T) {
	repo, _ := newTestProductRepo(t)
	ctx := context.Background()

	if err := repo.SeedDefaults(ctx); err != nil {
		t.Fatalf("SeedDefaults failed: %v", err)
	}

	got, err := repo.FindByID(ctx, "pet-002")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected product, got nil")
	}
	if got.Name != "Persian Cat" {
		t.Errorf("Name = %q, want %q", got.Name, "Persian Cat")
	}

	missing, err := repo.FindByID(ctx, "pet-999")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing product, got %+v", missing)
	}
}

func TestFileProductRepo_Search_MatchesNameAndDescription(t *testing.T) {
	repo, _ := newTestProductRepo(t)
	ctx := context.Background()

	if err := repo.SeedDefaults(ctx); err != nil {
		t.Fatalf("SeedDefaults failed: %v", err)
	}

	// 名前への部分一致（大文字小文字無視）
	byName, err := repo.Search(ctx, "persian")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(byName) != 1 || byName[0].ID != "pet-002" {
		t.Errorf("Search(persian) = %+v, want [pet-002]", byName)
	}

	// 説明への部分一致
	byDesc, err := repo.Search(ctx, "floppy ears")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(byDesc) != 1 || byDesc[0].ID != "pet-005" {
		t.Errorf("Search(floppy ears) = %+v, want [pet-005]", byDesc)
	}

	none, err := repo.Search(ctx, "unicorn")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Search(unicorn) = %+v, want empty", none)
	}
}

func TestFileProductRepo_Delete(t *testing.T) {
	repo, _ := newTestProductRepo(t)
	ctx := context.Background()

	if err := repo.SeedDefaults(ctx); err != nil {
		t.Fatalf("SeedDefaults failed: %v", err)
	}

	if err := repo.Delete(ctx, "pet-003"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err := repo.FindByID(ctx, "pet-003")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}

	// 存在しないIDの削除はエラーにならない
	if err := repo.Delete(ctx, "pet-999"); err != nil {
		t.Errorf("Delete(pet-999) failed: %v", err)
	}
}

func TestFileProductRepo_PersistsAcrossReopen(t *testing.T) {
	repo, path := newTestProductRepo(t)
	ctx := context.Background()

	product := &model.Product{
		ID:          "pet-100",
		Name:        "Leopard Gecko",
		Description: "Low-maintenance reptile",
		Price:       75,
		Category:    "Reptiles",
		Stock:       4,
		PetInfo:     map[string]any{"species": "Leopard Gecko"},
		CreatedAt:   time.Now().UTC(),
	}
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	reopened, err := NewFileProductRepo(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got, err := reopened.FindByID(ctx, "pet-100")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected product after reopen, got nil")
	}
	if got.PetInfo["species"] != "Leopard Gecko" {
		t.Errorf("PetInfo[species] = %v, want %q", got.PetInfo["species"], "Leopard Gecko")
	}
}

func TestFileProductRepo_FindByID_ReturnsCopy(t *testing.T) {
	repo, _ := newTestProductRepo(t)
	ctx := context.Background()

	if err := repo.SeedDefaults(ctx); err != nil {
		t.Fatalf("SeedDefaults failed: %v", err)
	}

	got, err := repo.FindByID(ctx, "pet-001")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	got.PetInfo["vaccinated"] = false

	again, err := repo.FindByID(ctx, "pet-001")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if again.PetInfo["vaccinated"] != true {
		t.Error("caller mutation of PetInfo leaked into store")
	}
}
