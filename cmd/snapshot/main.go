// Command snapshot runs one aggregation cycle and one volatility pass and
// prints the result as JSON to stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"goldeye_backend/internal/app/config"
	"goldeye_backend/internal/app/di"
	newsentity "goldeye_backend/internal/feature/news/domain/entity"
	volentity "goldeye_backend/internal/feature/volatility/domain/entity"
	"goldeye_backend/internal/platform/cache"
)

type snapshot struct {
	GeneratedAt time.Time                   `json:"generated_at"`
	Headlines   []newsentity.NewsItem       `json:"headlines"`
	Heatmap     []newsentity.HeatmapCell    `json:"heatmap"`
	Volatility  []volentity.AssetVolatility `json:"volatility"`
}

func main() {
	limit := flag.Int("limit", 20, "number of headlines to print (0 for all)")
	skipVol := flag.Bool("no-volatility", false, "skip market data")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	// stdout はJSON出力に使うため、ログは stderr へ
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// 1回限りの実行なので共有キャッシュは使わない
	svc := di.NewServices(cfg, cache.New(cache.NewMemoryStore(), ""), di.NewMarket(cfg.Market))

	items, err := svc.News.Headlines(ctx)
	if err != nil {
		log.Fatalf("failed to aggregate feeds: %v", err)
	}
	heatmap, err := svc.News.Heatmap(ctx)
	if err != nil {
		log.Fatalf("failed to build heatmap: %v", err)
	}
	if *limit > 0 && len(items) > *limit {
		items = items[:*limit]
	}

	out := snapshot{
		GeneratedAt: time.Now().UTC(),
		Headlines:   items,
		Heatmap:     heatmap,
		Volatility:  []volentity.AssetVolatility{},
	}
	if !*skipVol {
		vols, err := svc.Volatility.BuildAll(ctx)
		if err != nil {
			log.Fatalf("failed to build volatility: %v", err)
		}
		out.Volatility = vols
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal(err)
	}
	slog.Info("snapshot ok", "headlines", len(out.Headlines), "assets", len(out.Volatility))
}
