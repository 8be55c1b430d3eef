package di

import (
	"time"

	"goldeye_backend/internal/app/config"
	assetadapters "goldeye_backend/internal/feature/assets/adapters"
	assetusecase "goldeye_backend/internal/feature/assets/usecase"
	"goldeye_backend/internal/feature/news/adapters/feed"
	"goldeye_backend/internal/feature/news/domain/classifier"
	newsusecase "goldeye_backend/internal/feature/news/usecase"
	volusecase "goldeye_backend/internal/feature/volatility/usecase"
	"goldeye_backend/internal/platform/cache"
	infrahttp "goldeye_backend/internal/platform/http"
	"goldeye_backend/internal/shared/ratelimiter"
)

// Services groups the usecases shared by the server and snapshot binaries.
type Services struct {
	Assets     *assetusecase.AssetUsecase
	News       *newsusecase.NewsUsecase
	Volatility *volusecase.VolatilityUsecase
}

// NewServices wires every usecase from cfg on top of c, fetching market
// data through market.
func NewServices(cfg config.Config, c *cache.Cache, market volusecase.MarketRepository) *Services {
	assets := assetusecase.NewAssetUsecase(assetadapters.NewStaticRepository(cfg.Tables.Assets))

	fetcher := feed.NewFetcher(
		infrahttp.NewHTTPClient(cfg.FetchTimeout, infrahttp.BrowserUserAgent),
		classifier.New(cfg.Tables.Classifier()),
		feed.Options{Timeout: cfg.FetchTimeout},
	)
	news := newsusecase.NewNewsUsecase(fetcher, c, newsusecase.Options{
		Feeds:    cfg.Tables.Feeds.Sources(),
		Workers:  cfg.Workers,
		Deadline: cfg.AggregateDeadline,
		TTL:      cfg.NewsTTL,
	})

	vd := cfg.Tables.Volatility
	volatility := volusecase.NewVolatilityUsecase(
		market,
		assets,
		ratelimiter.NewRateLimiter(cfg.Market.RateLimit, time.Minute),
		c,
		volusecase.Options{
			Period:   vd.Period,
			Interval: vd.Interval,
			Window:   vd.Window,
			TTL:      cfg.VolatilityTTL,
			Workers:  cfg.Workers,
			Deadline: cfg.AggregateDeadline,
		},
	)

	return &Services{Assets: assets, News: news, Volatility: volatility}
}
