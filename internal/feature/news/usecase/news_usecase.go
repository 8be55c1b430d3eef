// Package usecase はニュースフィードの集約・重複排除・ランキングのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sort"
	"time"

	"goldeye_backend/internal/feature/news/domain/entity"
	"goldeye_backend/internal/platform/cache"
	"goldeye_backend/internal/shared/taskpool"
)

const (
	// DefaultTTL はヘッドライン集約結果のキャッシュ期間です。
	DefaultTTL = 5 * time.Minute
	// DefaultDeadline は1回の集約サイクル全体の締め切りです。
	DefaultDeadline = 20 * time.Second
	// DefaultImportantLimit は重要ニュースの返却件数のデフォルト値です。
	DefaultImportantLimit = 10
)

// FeedFetcher は1つのフィードの取得を抽象化します。失敗時は空のスライスを返します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type FeedFetcher interface {
	Fetch(ctx context.Context, src entity.FeedSource) []entity.NewsItem
}

// Options は NewsUsecase の設定です。
type Options struct {
	Feeds    []entity.FeedSource
	Workers  int
	Deadline time.Duration
	TTL      time.Duration
}

// NewsUsecase はフィード集約のユースケースを定義します。
type NewsUsecase struct {
	fetcher  FeedFetcher
	cache    *cache.Cache
	feeds    []entity.FeedSource
	pool     taskpool.Options
	ttl      time.Duration
	cacheKey string
}

// NewNewsUsecase は新しい NewsUsecase を作成します。feeds はコピーして保持します。
func NewNewsUsecase(fetcher FeedFetcher, c *cache.Cache, opts Options) *NewsUsecase {
	if opts.Deadline <= 0 {
		opts.Deadline = DefaultDeadline
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	feeds := append([]entity.FeedSource(nil), opts.Feeds...)
	return &NewsUsecase{
		fetcher:  fetcher,
		cache:    c,
		feeds:    feeds,
		pool:     taskpool.Options{Size: opts.Workers, Deadline: opts.Deadline},
		ttl:      opts.TTL,
		cacheKey: cache.Key("headlines", tableKey(feeds)),
	}
}

// Feeds は設定済みのフィード一覧のコピーを返します。
func (u *NewsUsecase) Feeds() []entity.FeedSource {
	return append([]entity.FeedSource(nil), u.feeds...)
}

// Aggregate は feeds の各フィードをワーカープールで並列に取得し、完了順に連結して返します。
// 重複排除は行いません。締め切りまでに完了しなかったフィードは結果に含まれません。
func (u *NewsUsecase) Aggregate(ctx context.Context, feeds []entity.FeedSource) []entity.NewsItem {
	tasks := make([]taskpool.Task[[]entity.NewsItem], 0, len(feeds))
	for _, src := range feeds {
		tasks = append(tasks, taskpool.Task[[]entity.NewsItem]{
			Key: src.Name + " " + src.URL,
			Run: func(ctx context.Context) ([]entity.NewsItem, error) {
				return u.fetcher.Fetch(ctx, src), nil
			},
		})
	}

	var all []entity.NewsItem
	for _, r := range taskpool.Run(ctx, u.pool, tasks) {
		if r.Err != nil {
			// 1つのフィードが失敗しても処理を止めずにログに出力し、次の結果へ
			slog.Error("feed task failed", "task", r.Key, "error", r.Err)
			continue
		}
		all = append(all, r.Value...)
	}
	return all
}

// Merge はリンクで重複排除し、公開日時の降順に並べ替えます。
// 同じリンクを持つアイテムは後のものが前のものを上書きし、最初に現れた位置を保ちます。
// リンクが空のアイテムは除外します。
func Merge(items []entity.NewsItem) []entity.NewsItem {
	pos := make(map[string]int, len(items))
	out := make([]entity.NewsItem, 0, len(items))
	for _, it := range items {
		if it.Link == "" {
			continue
		}
		if i, ok := pos[it.Link]; ok {
			out[i] = it
			continue
		}
		pos[it.Link] = len(out)
		out = append(out, it)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}

// Headlines は設定済みフィードの集約結果を重複排除・ソートして返します。
// 結果はTTLの間キャッシュされ、期限切れ後は全体を再計算します。
func (u *NewsUsecase) Headlines(ctx context.Context) ([]entity.NewsItem, error) {
	return cache.GetOrCompute(ctx, u.cache, u.cacheKey, u.ttl, u.cycle)
}

// Refresh はキャッシュの有効期限に関係なく集約サイクルを実行し、キャッシュを更新します。
func (u *NewsUsecase) Refresh(ctx context.Context) ([]entity.NewsItem, error) {
	return cache.Refresh(ctx, u.cache, u.cacheKey, u.ttl, u.cycle)
}

func (u *NewsUsecase) cycle(ctx context.Context) ([]entity.NewsItem, error) {
	start := time.Now()
	raw := u.Aggregate(ctx, u.feeds)
	// 呼び出し元が中断した場合、取得できなかったフィードを空として扱わずエラーにする
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregation cycle: %w", err)
	}
	merged := Merge(raw)
	slog.Info("aggregation cycle complete",
		"feeds", len(u.feeds), "raw", len(raw), "merged", len(merged), "elapsed", time.Since(start))
	return merged, nil
}

// Important はインパクトタグが general 以外、またはセンチメントが Neutral 以外のニュースを新しい順に最大 limit 件返します。
func (u *NewsUsecase) Important(ctx context.Context, limit int) ([]entity.NewsItem, error) {
	if limit <= 0 {
		limit = DefaultImportantLimit
	}
	all, err := u.Headlines(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.NewsItem, 0, limit)
	for _, it := range all {
		if len(out) == limit {
			break
		}
		if it.IsImportant() {
			out = append(out, it)
		}
	}
	return out, nil
}

// Heatmap は (インパクト, センチメント) ごとの件数を返します。
func (u *NewsUsecase) Heatmap(ctx context.Context) ([]entity.HeatmapCell, error) {
	all, err := u.Headlines(ctx)
	if err != nil {
		return nil, err
	}
	return Buckets(all), nil
}

// Buckets は items を (インパクト, センチメント) で集計し、インパクト・センチメントの順にソートして返します。
func Buckets(items []entity.NewsItem) []entity.HeatmapCell {
	type bucket struct {
		impact    string
		sentiment entity.Sentiment
	}
	counts := map[bucket]int{}
	for _, it := range items {
		counts[bucket{impact: it.Impact(), sentiment: it.Sentiment}]++
	}

	out := make([]entity.HeatmapCell, 0, len(counts))
	for b, n := range counts {
		out = append(out, entity.HeatmapCell{Impact: b.impact, Sentiment: b.sentiment, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Impact != out[j].Impact {
			return out[i].Impact < out[j].Impact
		}
		return out[i].Sentiment < out[j].Sentiment
	})
	return out
}

// tableKey はフィード一覧から安定したキャッシュキーを生成します。
func tableKey(feeds []entity.FeedSource) string {
	h := fnv.New64a()
	for _, f := range feeds {
		_, _ = fmt.Fprintf(h, "%s\x00%s\x00", f.Name, f.URL)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
