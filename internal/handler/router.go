package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/petstore/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	HTTPMetrics       middleware.HTTPMetrics
	Logger            *slog.Logger

	// メトリクスエンドポイント
	MetricsHandler http.Handler

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// カタログ
	CatalogService CatalogServiceInterface

	// カート
	CartService CartServiceInterface

	// 決済
	CheckoutService CheckoutServiceInterface

	// 管理者
	AdminService AdminServiceInterface
	UploadDir    string

	// ペット情報
	PetInfoService PetInfoServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Metrics → Logging → RateLimit
//
// 認証が必要なルートはSessionMiddleware配下のグループに、
// 管理者ルートはさらにAdminMiddleware配下のグループに配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通のミドルウェア
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(deps.RateLimiter.Middleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	catalogHandler := NewCatalogHandler(deps.CatalogService)
	cartHandler := NewCartHandler(deps.CartService)
	checkoutHandler := NewCheckoutHandler(deps.CheckoutService)
	adminHandler := NewAdminHandler(deps.AdminService, deps.UploadDir)
	petInfoHandler := NewPetInfoHandler(deps.PetInfoService)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", deps.MetricsHandler)

	// アップロード済み商品画像の配信
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadDir))))

	r.Route("/api", func(r chi.Router) {
		// 認証
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// 商品カタログ
		r.Get("/products", catalogHandler.ListProducts)
		r.Get("/products/search", catalogHandler.SearchProducts)
		r.Get("/products/{id}", catalogHandler.GetProduct)

		// ペット情報ページ
		r.Get("/pets/{id}/info", petInfoHandler.PetInfo)
		r.Get("/pet-care-tips", petInfoHandler.CareTips)
		r.Get("/adoption-info", petInfoHandler.AdoptionInfo)

		// --- 認証が必要なルート ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))

			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
			r.Post("/change-password", authHandler.ChangePassword)

			// カート管理
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Post("/add", cartHandler.AddToCart)
				r.Delete("/remove/{productId}", cartHandler.RemoveFromCart)
			})

			// 決済フロー
			r.Post("/checkout", checkoutHandler.Checkout)
			r.Post("/payment", checkoutHandler.Payment)
			r.Get("/purchases", checkoutHandler.Purchases)

			// グルーミング予約
			r.Post("/grooming-appointment", petInfoHandler.BookGrooming)

			// --- 管理者専用ルート ---
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.NewAdminMiddleware())

				r.Get("/activities", adminHandler.Activities)
				r.Post("/products", adminHandler.AddProduct)
				r.Delete("/products/{id}", adminHandler.RemoveProduct)
			})
		})
	})

	return r
}
