package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/petstore/internal/admin"
	"github.com/hitoshi/petstore/internal/model"
)

// maxUploadSize は商品画像アップロードの上限サイズ。
const maxUploadSize = 10 << 20 // 10 MiB

// AdminServiceInterface は管理ハンドラーが必要とするサービスインターフェース。
type AdminServiceInterface interface {
	Activities(ctx context.Context, usernamePrefix string) ([]model.Activity, error)
	AddProduct(ctx context.Context, adminUser string, input admin.AddProductInput) (*model.Product, error)
	RemoveProduct(ctx context.Context, adminUser, productID string) error
}

// AdminHandler は管理者向けのHTTPハンドラー。
// セッションミドルウェアと管理者ミドルウェアの内側に配置すること。
type AdminHandler struct {
	service   AdminServiceInterface
	uploadDir string
}

// NewAdminHandler はAdminHandlerを生成する。
// uploadDirは商品画像の保存先ディレクトリ。
func NewAdminHandler(service AdminServiceInterface, uploadDir string) *AdminHandler {
	return &AdminHandler{
		service:   service,
		uploadDir: uploadDir,
	}
}

// Activities はアクティビティログを返す。
// GET /api/admin/activities?filter=xxx
func (h *AdminHandler) Activities(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")

	activities, err := h.service.Activities(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, activities)
}

// AddProduct は商品をカタログに登録する。
// POST /api/admin/products（multipart、imageファイルは任意）
// ファイルが添付されていない場合はimageUrlフィールドを画像参照として使う。
func (h *AdminHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameOrUnauthorized(w, r)
	if !ok {
		return
	}

	image, err := h.parseProductForm(r)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("Invalid form data"))
		return
	}

	price, _ := strconv.ParseFloat(r.FormValue("price"), 64)
	stock, _ := strconv.Atoi(r.FormValue("stock"))

	product, err := h.service.AddProduct(r.Context(), username, admin.AddProductInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
		Category:    r.FormValue("category"),
		Stock:       stock,
		Image:       image,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Product added",
		"product": product,
	})
}

// RemoveProduct は商品をカタログから削除する。
// DELETE /api/admin/products/{id}
func (h *AdminHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameOrUnauthorized(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.service.RemoveProduct(r.Context(), username, id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Product removed",
	})
}

// parseProductForm は商品登録フォームを解析し、画像参照を返す。
// multipartの場合、添付ファイルをアップロードディレクトリへ保存してそのパスを返す。
// ファイルがない場合はimageUrlフィールドの値を返す。
func (h *AdminHandler) parseProductForm(r *http.Request) (string, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/") {
		if err := r.ParseForm(); err != nil {
			return "", err
		}
		return r.FormValue("imageUrl"), nil
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return "", err
	}

	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return r.FormValue("imageUrl"), nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	path, err := h.saveUpload(file, header.Filename)
	if err != nil {
		return "", err
	}
	return path, nil
}

// saveUpload はアップロードされたファイルを保存し、公開パスを返す。
// ファイル名にはタイムスタンプを前置し、パス要素は除去する。
func (h *AdminHandler) saveUpload(src io.Reader, originalName string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(originalName))
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}

	slog.Info("product image uploaded", slog.String("file", name))
	return "/uploads/" + name, nil
}
