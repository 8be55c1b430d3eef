// Package usecase はティッカーごとのローリング・ボラティリティ系列を構築するビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	assetentity "goldeye_backend/internal/feature/assets/domain/entity"
	"goldeye_backend/internal/feature/volatility/domain/entity"
	"goldeye_backend/internal/feature/volatility/domain/stats"
	"goldeye_backend/internal/feature/volatility/domain/timeframe"
	"goldeye_backend/internal/platform/cache"
	"goldeye_backend/internal/shared/ratelimiter"
	"goldeye_backend/internal/shared/taskpool"
)

const (
	// DefaultPeriod はデータ取得期間のデフォルト値です。
	DefaultPeriod = "1mo"
	// DefaultInterval は足の間隔のデフォルト値です。
	DefaultInterval = "1h"
	// DefaultWindow はローリング窓のデフォルト長です。
	DefaultWindow = 24
	// MinWindow は標本標準偏差を計算できる最小の窓長です。
	MinWindow = 2
	// DefaultTTL はボラティリティ系列のキャッシュ期間です。
	DefaultTTL = 15 * time.Minute
	// DefaultDeadline は全銘柄一括計算の締め切りです。
	DefaultDeadline = 20 * time.Second
)

// ErrInvalidQuery はクエリのティッカー・期間・間隔・窓長のいずれかが不正な場合に返されます。
var ErrInvalidQuery = errors.New("invalid volatility query")

// MarketRepository は株価データを取得するリポジトリのインターフェイスです。
// データが存在しない場合は空のスライスと nil を返します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type MarketRepository interface {
	GetHistory(ctx context.Context, symbol, period, interval string) ([]entity.Candle, error)
}

// AssetLister は追跡銘柄の一覧を提供します。
type AssetLister interface {
	ListAssets(ctx context.Context) ([]assetentity.Asset, error)
}

// Query はボラティリティ系列の要求パラメータです。ゼロ値の項目はデフォルト値で補完されます。
type Query struct {
	Ticker   string
	Period   string
	Interval string
	Window   int
}

// Options は VolatilityUsecase の設定です。
type Options struct {
	Period   string
	Interval string
	Window   int
	TTL      time.Duration
	Workers  int
	Deadline time.Duration
}

// VolatilityUsecase は価格履歴の取得からボラティリティ系列の構築までを担います。
type VolatilityUsecase struct {
	market      MarketRepository
	assets      AssetLister
	rateLimiter ratelimiter.RateLimiterInterface
	cache       *cache.Cache
	defaults    Query
	ttl         time.Duration
	pool        taskpool.Options
}

// NewVolatilityUsecase は新しい VolatilityUsecase を作成します。
func NewVolatilityUsecase(market MarketRepository, assets AssetLister, rateLimiter ratelimiter.RateLimiterInterface, c *cache.Cache, opts Options) *VolatilityUsecase {
	if opts.Period == "" {
		opts.Period = DefaultPeriod
	}
	if opts.Interval == "" {
		opts.Interval = DefaultInterval
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Deadline <= 0 {
		opts.Deadline = DefaultDeadline
	}
	return &VolatilityUsecase{
		market:      market,
		assets:      assets,
		rateLimiter: rateLimiter,
		cache:       c,
		defaults:    Query{Period: opts.Period, Interval: opts.Interval, Window: opts.Window},
		ttl:         opts.TTL,
		pool:        taskpool.Options{Size: opts.Workers, Deadline: opts.Deadline},
	}
}

// Normalize はクエリの空欄をデフォルト値で埋め、妥当性を検証します。
func (u *VolatilityUsecase) Normalize(q Query) (Query, error) {
	q.Ticker = strings.TrimSpace(q.Ticker)
	if q.Period == "" {
		q.Period = u.defaults.Period
	}
	if q.Interval == "" {
		q.Interval = u.defaults.Interval
	}
	if q.Window == 0 {
		q.Window = u.defaults.Window
	}

	if q.Ticker == "" {
		return q, fmt.Errorf("%w: ticker is required", ErrInvalidQuery)
	}
	if _, err := timeframe.PeriodDays(q.Period); err != nil {
		return q, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if _, err := timeframe.ParseInterval(q.Interval); err != nil {
		return q, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if q.Window < MinWindow {
		return q, fmt.Errorf("%w: window must be at least %d, got %d", ErrInvalidQuery, MinWindow, q.Window)
	}
	return q, nil
}

// Build はティッカーの価格履歴を取得し、ローリング年率ボラティリティ系列を返します。
// エラーを返すのはクエリが不正な場合のみです。取得失敗・データなし・データ不足は
// ログに記録したうえで空の系列を返します。結果はクエリごとにTTLの間キャッシュされます。
func (u *VolatilityUsecase) Build(ctx context.Context, q Query) (entity.PriceSeries, error) {
	q, err := u.Normalize(q)
	if err != nil {
		return entity.PriceSeries{}, err
	}

	s, err := cache.GetOrCompute(ctx, u.cache, cacheKey(q), u.ttl, func(ctx context.Context) (entity.PriceSeries, error) {
		return u.compute(ctx, q)
	})
	if err != nil {
		slog.Error("volatility fetch failed", "ticker", q.Ticker, "period", q.Period, "interval", q.Interval, "error", err)
		return emptySeries(q), nil
	}
	return s, nil
}

// compute はプロバイダー呼び出しの失敗をエラーとして返し、キャッシュさせません。
// データなし・データ不足は正常な結果としてキャッシュされます。
// 呼び出し元のキャンセルから切り離されて実行されるため、締め切りを自前で設定します。
func (u *VolatilityUsecase) compute(ctx context.Context, q Query) (entity.PriceSeries, error) {
	ctx, cancel := context.WithTimeout(ctx, u.pool.Deadline)
	defer cancel()

	if err := u.rateLimiter.WaitIfNeeded(ctx); err != nil {
		return entity.PriceSeries{}, fmt.Errorf("wait for rate limiter: %w", err)
	}
	candles, err := u.market.GetHistory(ctx, q.Ticker, q.Period, q.Interval)
	if err != nil {
		return entity.PriceSeries{}, fmt.Errorf("get history for %s: %w", q.Ticker, err)
	}

	s := BuildSeries(q, candles)
	if s.Empty() {
		slog.Warn("not enough data points to compute volatility",
			"ticker", q.Ticker, "prices", len(s.Prices), "window", q.Window)
	}
	return s, nil
}

// BuildSeries は取得済みの足からボラティリティ系列を組み立てる純粋関数です。
// 足は時刻の昇順に並べ替えられ、同一時刻の重複は後のものが残り、
// 終値が正の有限値でない足は除外されます。q は Normalize 済みである必要があり、
// 未知の間隔ではボラティリティ点を持たない系列を返します。
func BuildSeries(q Query, candles []entity.Candle) entity.PriceSeries {
	s := emptySeries(q)
	s.Prices = cleanPrices(candles)
	if len(s.Prices) <= q.Window {
		return s
	}
	factor, err := stats.AnnualizationFactor(q.Interval)
	if err != nil {
		return s
	}

	closes := make([]float64, len(s.Prices))
	for i, p := range s.Prices {
		closes[i] = p.Close
	}
	rets := stats.Returns(closes)
	vols := stats.RollingStdDev(rets, q.Window)

	// vols[k] は rets[k : k+window] の標準偏差で、価格インデックス k+window の行に対応
	s.Points = make([]entity.VolatilityPoint, 0, len(vols))
	for k, v := range vols {
		i := k + q.Window
		s.Points = append(s.Points, entity.VolatilityPoint{
			Time:       s.Prices[i].Time,
			Close:      s.Prices[i].Close,
			Return:     rets[i-1],
			Volatility: v * factor,
		})
	}
	return s
}

func cleanPrices(candles []entity.Candle) []entity.PricePoint {
	pts := make([]entity.PricePoint, 0, len(candles))
	for _, c := range candles {
		if math.IsNaN(c.Close) || math.IsInf(c.Close, 0) || c.Close <= 0 {
			continue
		}
		pts = append(pts, entity.PricePoint{Time: c.Time.UTC(), Close: c.Close})
	}
	sort.SliceStable(pts, func(i, j int) bool {
		return pts[i].Time.Before(pts[j].Time)
	})

	out := pts[:0]
	for _, p := range pts {
		if n := len(out); n > 0 && out[n-1].Time.Equal(p.Time) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

// BuildAll は全追跡銘柄のデフォルトクエリの系列をワーカープールで並列に構築し、銘柄順で返します。
// 締め切りまでに完了しなかった銘柄は空の系列（Latest が nil）になります。
func (u *VolatilityUsecase) BuildAll(ctx context.Context) ([]entity.AssetVolatility, error) {
	assets, err := u.assets.ListAssets(ctx)
	if err != nil {
		return nil, err
	}

	tasks := make([]taskpool.Task[entity.PriceSeries], 0, len(assets))
	for i, a := range assets {
		tasks = append(tasks, taskpool.Task[entity.PriceSeries]{
			Key: strconv.Itoa(i),
			Run: func(ctx context.Context) (entity.PriceSeries, error) {
				return u.Build(ctx, u.defaultQuery(a.Ticker))
			},
		})
	}

	series := make(map[string]entity.PriceSeries, len(assets))
	for _, r := range taskpool.Run(ctx, u.pool, tasks) {
		if r.Err != nil {
			slog.Error("volatility task failed", "task", r.Key, "error", r.Err)
			continue
		}
		series[r.Key] = r.Value
	}

	out := make([]entity.AssetVolatility, 0, len(assets))
	for i, a := range assets {
		s, ok := series[strconv.Itoa(i)]
		if !ok {
			s = emptySeries(u.defaultQuery(a.Ticker))
		}
		av := entity.AssetVolatility{Asset: a, Series: s}
		if p, ok := s.Latest(); ok {
			av.Latest = &p
		}
		out = append(out, av)
	}
	return out, nil
}

// RefreshAll は全追跡銘柄のデフォルトクエリの系列を、キャッシュの有効期限に関係なく再計算します。
// 個々の銘柄の失敗はログに記録し、既存のキャッシュを残します。
func (u *VolatilityUsecase) RefreshAll(ctx context.Context) error {
	assets, err := u.assets.ListAssets(ctx)
	if err != nil {
		return err
	}

	tasks := make([]taskpool.Task[entity.PriceSeries], 0, len(assets))
	for _, a := range assets {
		tasks = append(tasks, taskpool.Task[entity.PriceSeries]{
			Key: a.Ticker,
			Run: func(ctx context.Context) (entity.PriceSeries, error) {
				q, err := u.Normalize(Query{Ticker: a.Ticker})
				if err != nil {
					return entity.PriceSeries{}, err
				}
				return cache.Refresh(ctx, u.cache, cacheKey(q), u.ttl, func(ctx context.Context) (entity.PriceSeries, error) {
					return u.compute(ctx, q)
				})
			},
		})
	}

	failed := 0
	for _, r := range taskpool.Run(ctx, u.pool, tasks) {
		if r.Err != nil {
			failed++
			slog.Warn("volatility refresh failed", "ticker", r.Key, "error", r.Err)
		}
	}
	slog.Info("volatility refresh complete", "assets", len(assets), "failed", failed)
	return nil
}

// defaultQuery はデフォルトの期間・間隔・窓長で補完したクエリを返します。
func (u *VolatilityUsecase) defaultQuery(ticker string) Query {
	q, _ := u.Normalize(Query{Ticker: ticker})
	return q
}

func emptySeries(q Query) entity.PriceSeries {
	return entity.PriceSeries{
		Ticker:   q.Ticker,
		Period:   q.Period,
		Interval: q.Interval,
		Window:   q.Window,
		Prices:   []entity.PricePoint{},
		Points:   []entity.VolatilityPoint{},
	}
}

func cacheKey(q Query) string {
	return cache.Key("volatility", q.Ticker, q.Period, q.Interval, strconv.Itoa(q.Window))
}
