package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/petstore/internal/admin"
	"github.com/hitoshi/petstore/internal/auth"
	"github.com/hitoshi/petstore/internal/cart"
	"github.com/hitoshi/petstore/internal/catalog"
	"github.com/hitoshi/petstore/internal/checkout"
	"github.com/hitoshi/petstore/internal/config"
	"github.com/hitoshi/petstore/internal/handler"
	"github.com/hitoshi/petstore/internal/logger"
	"github.com/hitoshi/petstore/internal/metrics"
	"github.com/hitoshi/petstore/internal/middleware"
	"github.com/hitoshi/petstore/internal/petinfo"
	"github.com/hitoshi/petstore/internal/repository"
	"github.com/hitoshi/petstore/internal/security"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("data_dir", cfg.DataDir),
	)

	switch cmd {
	case CommandSeed:
		return runSeed(cfg)
	default:
		return runServe(cfg)
	}
}

// storeRepos はファイルベースのリポジトリ一式をまとめた構造体。
type storeRepos struct {
	users      *repository.FileUserRepo
	products   *repository.FileProductRepo
	activities *repository.FileActivityRepo
}

// openRepos はDataDir配下のJSONファイルからリポジトリ一式を開く。
func openRepos(cfg *config.Config) (*storeRepos, error) {
	userRepo, err := repository.NewFileUserRepo(filepath.Join(cfg.DataDir, "users.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to open user store: %w", err)
	}

	productRepo, err := repository.NewFileProductRepo(filepath.Join(cfg.DataDir, "products.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to open product store: %w", err)
	}

	activityRepo, err := repository.NewFileActivityRepo(filepath.Join(cfg.DataDir, "activities.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to open activity store: %w", err)
	}

	return &storeRepos{
		users:      userRepo,
		products:   productRepo,
		activities: activityRepo,
	}, nil
}

// seedStore は管理者ユーザーとデフォルト商品の投入を行う。
// すでに存在する場合は何もしない。
func seedStore(ctx context.Context, cfg *config.Config, repos *storeRepos) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	if err := repos.users.EnsureAdmin(ctx, string(hash)); err != nil {
		return fmt.Errorf("failed to ensure admin user: %w", err)
	}

	if err := repos.products.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}

	return nil
}

// runServe はAPIサーバーモードで起動する。
// ファイルストアを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx := context.Background()

	// 1. ファイルストアの初期化
	repos, err := openRepos(cfg)
	if err != nil {
		return err
	}

	slog.Info("file stores opened", slog.String("data_dir", cfg.DataDir))

	// 2. 初期データの投入
	if err := seedStore(ctx, cfg, repos); err != nil {
		return err
	}

	// 3. セッションストアの初期化（インメモリ、期限切れ掃除つき）
	sessionRepo := repository.NewMemorySessionRepo(cfg.SessionSweepInterval)
	defer sessionRepo.Stop()

	// 4. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 5. セキュリティサービスの初期化
	sanitizer := security.NewInputSanitizer()

	// 6. ドメインサービスの初期化
	authService := auth.NewService(
		repos.users, sessionRepo, repos.activities, collector,
		auth.ServiceConfig{
			SessionTTL:         cfg.SessionTTL,
			SessionRememberTTL: cfg.SessionRememberTTL,
		},
	)
	catalogService := catalog.NewService(repos.products)
	cartService := cart.NewService(repos.users, repos.products, repos.activities)
	checkoutService := checkout.NewService(cartService, repos.users, repos.products, repos.activities, collector)
	adminService := admin.NewService(repos.products, repos.activities, sanitizer)
	petInfoService := petinfo.NewService(repos.products, repos.activities)

	// 7. レートリミッターの初期化
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.PerMinute = cfg.RateLimitPerMinute
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 8. ルーターの構築
	deps := &handler.RouterDeps{
		SessionFinder:     sessionRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		HTTPMetrics:       collector,
		Logger:            slog.Default(),
		MetricsHandler:    metrics.Handler(registry),

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain: cfg.CookieDomain,
			CookieSecure: cfg.CookieSecure,
		},

		CatalogService:  catalogService,
		CartService:     cartService,
		CheckoutService: checkoutService,

		AdminService: adminService,
		UploadDir:    cfg.UploadDir,

		PetInfoService: petInfoService,
	}

	router := handler.NewRouter(deps)

	// 9. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runSeed は初期データ投入モードで起動する。
// 管理者ユーザーとデフォルト商品を投入して終了する。
func runSeed(cfg *config.Config) error {
	ctx := context.Background()

	repos, err := openRepos(cfg)
	if err != nil {
		return err
	}

	if err := seedStore(ctx, cfg, repos); err != nil {
		return err
	}

	slog.Info("seed completed",
		slog.String("data_dir", cfg.DataDir),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
