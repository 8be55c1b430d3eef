package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldeye_backend/internal/feature/news/domain/entity"
	"goldeye_backend/internal/platform/cache"
)

// mockFeedFetcher はFeedFetcherインターフェースのモック実装です。
type mockFeedFetcher struct {
	FetchFunc  func(ctx context.Context, src entity.FeedSource) []entity.NewsItem
	FetchCalls int32
}

func (m *mockFeedFetcher) Fetch(ctx context.Context, src entity.FeedSource) []entity.NewsItem {
	atomic.AddInt32(&m.FetchCalls, 1)
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, src)
	}
	return []entity.NewsItem{}
}

var baseTime = time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)

func item(feed, link string, ageHours int, tags []string, s entity.Sentiment) entity.NewsItem {
	return entity.NewsItem{
		SourceFeed:  feed,
		Title:       "title " + link,
		Link:        link,
		PublishedAt: baseTime.Add(-time.Duration(ageHours) * time.Hour),
		ImpactTags:  tags,
		Sentiment:   s,
	}
}

func fixtureFeeds() []entity.FeedSource {
	return []entity.FeedSource{
		{Name: "Market News", URL: "https://a.example.com/rss"},
		{Name: "Global News", URL: "https://b.example.com/rss"},
	}
}

func fixtureFetcher() *mockFeedFetcher {
	return &mockFeedFetcher{
		FetchFunc: func(ctx context.Context, src entity.FeedSource) []entity.NewsItem {
			switch src.URL {
			case "https://a.example.com/rss":
				return []entity.NewsItem{
					item(src.Name, "https://x/1", 3, []string{"gold"}, entity.SentimentPositive),
					item(src.Name, "https://x/2", 1, []string{"general"}, entity.SentimentNeutral),
				}
			case "https://b.example.com/rss":
				return []entity.NewsItem{
					item(src.Name, "https://x/2", 1, []string{"general"}, entity.SentimentNeutral),
					item(src.Name, "https://x/3", 2, []string{"rates", "jobs"}, entity.SentimentMixed),
				}
			}
			return []entity.NewsItem{}
		},
	}
}

func newTestUsecase(f FeedFetcher, opts Options) *NewsUsecase {
	return NewNewsUsecase(f, cache.New(cache.NewMemoryStore(), "test"), opts)
}

func TestNewNewsUsecase_Defaults(t *testing.T) {
	t.Parallel()

	uc := newTestUsecase(&mockFeedFetcher{}, Options{})
	assert.Equal(t, DefaultTTL, uc.ttl)
	assert.Equal(t, DefaultDeadline, uc.pool.Deadline)
}

func TestNewsUsecase_Feeds_ReturnsCopy(t *testing.T) {
	t.Parallel()

	feeds := fixtureFeeds()
	uc := newTestUsecase(&mockFeedFetcher{}, Options{Feeds: feeds})

	feeds[0].Name = "mutated"
	got := uc.Feeds()
	assert.Equal(t, "Market News", got[0].Name)

	got[1].Name = "mutated"
	assert.Equal(t, "Global News", uc.Feeds()[1].Name)
}

func TestNewsUsecase_Aggregate_ConcatenatesWithoutDedup(t *testing.T) {
	t.Parallel()

	fetcher := fixtureFetcher()
	uc := newTestUsecase(fetcher, Options{Workers: 2})

	items := uc.Aggregate(context.Background(), fixtureFeeds())

	assert.Len(t, items, 4)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fetcher.FetchCalls))
}

func TestNewsUsecase_Aggregate_FailureIsIsolated(t *testing.T) {
	t.Parallel()

	feeds := append(fixtureFeeds(), entity.FeedSource{Name: "Broken", URL: "https://broken.example.com"})
	fetcher := fixtureFetcher()
	inner := fetcher.FetchFunc
	fetcher.FetchFunc = func(ctx context.Context, src entity.FeedSource) []entity.NewsItem {
		if src.Name == "Broken" {
			panic("parser exploded")
		}
		return inner(ctx, src)
	}
	uc := newTestUsecase(fetcher, Options{})

	items := uc.Aggregate(context.Background(), feeds)
	assert.Len(t, items, 4)
}

func TestNewsUsecase_Aggregate_DeadlineDropsSlowFeed(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	fetcher := &mockFeedFetcher{
		FetchFunc: func(ctx context.Context, src entity.FeedSource) []entity.NewsItem {
			if src.Name == "Hung" {
				<-release
				return []entity.NewsItem{item(src.Name, "https://late", 0, []string{"general"}, entity.SentimentNeutral)}
			}
			return []entity.NewsItem{item(src.Name, "https://on-time", 0, []string{"general"}, entity.SentimentNeutral)}
		},
	}
	uc := newTestUsecase(fetcher, Options{Deadline: 50 * time.Millisecond})

	start := time.Now()
	items := uc.Aggregate(context.Background(), []entity.FeedSource{
		{Name: "Hung", URL: "https://hung"},
		{Name: "Fast", URL: "https://fast"},
	})

	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, items, 1)
	assert.Equal(t, "https://on-time", items[0].Link)
}

func TestMerge(t *testing.T) {
	t.Parallel()

	older := item("A", "https://x/1", 5, []string{"gold"}, entity.SentimentNeutral)
	newer := item("B", "https://x/2", 1, []string{"usd"}, entity.SentimentNeutral)
	dupOld := item("A", "https://x/3", 3, []string{"rates"}, entity.SentimentNeutral)
	dupNew := item("B", "https://x/3", 3, []string{"rates"}, entity.SentimentPositive)
	noLink := item("C", "", 0, []string{"jobs"}, entity.SentimentNeutral)

	out := Merge([]entity.NewsItem{older, dupOld, newer, noLink, dupNew})

	require.Len(t, out, 3)
	assert.Equal(t, "https://x/2", out[0].Link)
	assert.Equal(t, "https://x/3", out[1].Link)
	assert.Equal(t, "https://x/1", out[2].Link)

	// 後に現れたアイテムが上書きする
	assert.Equal(t, "B", out[1].SourceFeed)
	assert.Equal(t, entity.SentimentPositive, out[1].Sentiment)
}

func TestMerge_StableForEqualTimestamps(t *testing.T) {
	t.Parallel()

	a := item("A", "https://x/a", 1, nil, entity.SentimentNeutral)
	b := item("A", "https://x/b", 1, nil, entity.SentimentNeutral)
	c := item("A", "https://x/c", 1, nil, entity.SentimentNeutral)

	out := Merge([]entity.NewsItem{a, b, c})
	assert.Equal(t, []string{"https://x/a", "https://x/b", "https://x/c"}, links(out))
}

func TestMerge_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Merge(nil))
}

func TestMerge_DedupIdempotence(t *testing.T) {
	t.Parallel()

	uc := newTestUsecase(fixtureFetcher(), Options{})
	ctx := context.Background()

	raw := append(uc.Aggregate(ctx, fixtureFeeds()), uc.Aggregate(ctx, fixtureFeeds())...)
	merged := Merge(raw)

	seen := map[string]bool{}
	for _, it := range merged {
		assert.False(t, seen[it.Link], "duplicate link %s", it.Link)
		seen[it.Link] = true
	}
	assert.LessOrEqual(t, len(merged), len(raw))
	assert.Len(t, merged, 3)
	assert.Equal(t, merged, Merge(merged))
}

func TestNewsUsecase_Headlines(t *testing.T) {
	t.Parallel()

	fetcher := fixtureFetcher()
	uc := newTestUsecase(fetcher, Options{Feeds: fixtureFeeds()})
	ctx := context.Background()

	got, err := uc.Headlines(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/2", "https://x/3", "https://x/1"}, links(got))

	// TTL内はキャッシュを返す
	_, err = uc.Headlines(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fetcher.FetchCalls))
}

func TestNewsUsecase_Headlines_ConcurrentCallersShareCycle(t *testing.T) {
	t.Parallel()

	fetcher := fixtureFetcher()
	inner := fetcher.FetchFunc
	fetcher.FetchFunc = func(ctx context.Context, src entity.FeedSource) []entity.NewsItem {
		time.Sleep(30 * time.Millisecond)
		return inner(ctx, src)
	}
	uc := newTestUsecase(fetcher, Options{Feeds: fixtureFeeds()})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := uc.Headlines(context.Background())
			assert.NoError(t, err)
			assert.Len(t, got, 3)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(2), atomic.LoadInt32(&fetcher.FetchCalls))
}

func TestNewsUsecase_Refresh(t *testing.T) {
	t.Parallel()

	fetcher := fixtureFetcher()
	uc := newTestUsecase(fetcher, Options{Feeds: fixtureFeeds()})
	ctx := context.Background()

	_, err := uc.Headlines(ctx)
	require.NoError(t, err)
	_, err = uc.Refresh(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(4), atomic.LoadInt32(&fetcher.FetchCalls))
}

// ctxAwareFetcher は実際のフェッチャーと同様に、コンテキストが終了していれば空を返します。
func ctxAwareFetcher() *mockFeedFetcher {
	f := fixtureFetcher()
	inner := f.FetchFunc
	f.FetchFunc = func(ctx context.Context, src entity.FeedSource) []entity.NewsItem {
		if ctx.Err() != nil {
			return []entity.NewsItem{}
		}
		return inner(ctx, src)
	}
	return f
}

func TestNewsUsecase_Headlines_CanceledRequestKeepsCacheHealthy(t *testing.T) {
	t.Parallel()

	uc := newTestUsecase(ctxAwareFetcher(), Options{Feeds: fixtureFeeds()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Headlines(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	got, err := uc.Headlines(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestNewsUsecase_Refresh_CanceledKeepsHeadlines(t *testing.T) {
	t.Parallel()

	uc := newTestUsecase(ctxAwareFetcher(), Options{Feeds: fixtureFeeds()})
	_, err := uc.Headlines(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = uc.Refresh(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	got, err := uc.Headlines(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestNewsUsecase_Cycle_CanceledContext(t *testing.T) {
	t.Parallel()

	uc := newTestUsecase(ctxAwareFetcher(), Options{Feeds: fixtureFeeds()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := uc.cycle(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
}

func TestNewsUsecase_Important(t *testing.T) {
	t.Parallel()

	uc := newTestUsecase(fixtureFetcher(), Options{Feeds: fixtureFeeds()})

	got, err := uc.Important(context.Background(), 0)
	require.NoError(t, err)
	// https://x/2 は general かつ Neutral のため除外
	assert.Equal(t, []string{"https://x/3", "https://x/1"}, links(got))

	got, err = uc.Important(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/3"}, links(got))
}

func TestNewsUsecase_Heatmap(t *testing.T) {
	t.Parallel()

	uc := newTestUsecase(fixtureFetcher(), Options{Feeds: fixtureFeeds()})

	got, err := uc.Heatmap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []entity.HeatmapCell{
		{Impact: "general", Sentiment: entity.SentimentNeutral, Count: 1},
		{Impact: "gold", Sentiment: entity.SentimentPositive, Count: 1},
		{Impact: "rates, jobs", Sentiment: entity.SentimentMixed, Count: 1},
	}, got)
}

func TestBuckets_Counts(t *testing.T) {
	t.Parallel()

	items := []entity.NewsItem{
		item("A", "1", 0, []string{"gold"}, entity.SentimentPositive),
		item("A", "2", 0, []string{"gold"}, entity.SentimentPositive),
		item("A", "3", 0, []string{"gold"}, entity.SentimentNegative),
	}
	assert.Equal(t, []entity.HeatmapCell{
		{Impact: "gold", Sentiment: entity.SentimentNegative, Count: 1},
		{Impact: "gold", Sentiment: entity.SentimentPositive, Count: 2},
	}, Buckets(items))
}

func TestTableKey_Stable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, tableKey(fixtureFeeds()), tableKey(fixtureFeeds()))
	assert.NotEqual(t, tableKey(fixtureFeeds()), tableKey(fixtureFeeds()[:1]))
}

func links(items []entity.NewsItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Link)
	}
	return out
}
