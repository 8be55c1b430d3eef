package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"goldeye_backend/internal/app/config"
	"goldeye_backend/internal/app/di"
	"goldeye_backend/internal/app/router"
	assethandler "goldeye_backend/internal/feature/assets/transport/handler"
	newshandler "goldeye_backend/internal/feature/news/transport/handler"
	volhandler "goldeye_backend/internal/feature/volatility/transport/handler"
	"goldeye_backend/internal/platform/scheduler"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// キャッシュ（Redisが使えなければインメモリ）
	c, closeCache := di.NewCache(ctx, cfg.Redis)
	defer closeCache()

	// Usecase
	svc := di.NewServices(cfg, c, di.NewMarket(cfg.Market))

	// キャッシュの定期リフレッシュ
	sched := scheduler.New(cfg.RefreshInterval, cfg.RefreshInterval)
	sched.Add("news", func(ctx context.Context) error {
		_, err := svc.News.Refresh(ctx)
		return err
	})
	sched.Add("volatility", svc.Volatility.RefreshAll)
	sched.Start()
	// 起動直後に一度温めておく
	go sched.RunNow(ctx)

	// ルータ生成
	r := router.NewRouter(router.Handlers{
		News:         newshandler.NewNewsHandler(svc.News),
		Assets:       assethandler.NewAssetHandler(svc.Assets),
		Volatility:   volhandler.NewVolatilityHandler(svc.Volatility),
		CacheBackend: c.Backend(),
	}, cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "cache", c.Backend(), "market", cfg.Market.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
	}
}
