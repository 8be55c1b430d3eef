// Package feed は RSS/Atom および GeoJSON フィードを取得し、NewsItem に正規化します。
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"goldeye_backend/internal/feature/news/domain/entity"
	"goldeye_backend/internal/shared/datenorm"
)

const (
	// DefaultTimeout は1フィードあたりのリクエストタイムアウトです。
	DefaultTimeout = 8 * time.Second
	// DefaultMaxBodyBytes はレスポンスボディの読み取り上限です。
	DefaultMaxBodyBytes = 4 << 20
)

// Classifier はヘッドラインのタグ付けを抽象化します。
// Goの慣例に従い、インターフェースは利用者（adapters）側で定義します。
type Classifier interface {
	Classify(title, body string) ([]string, entity.Sentiment)
}

// Options は Fetcher の動作を調整します。
type Options struct {
	Timeout      time.Duration
	MaxBodyBytes int64
}

// Fetcher は1つのフィードエンドポイントを取得してパースします。
type Fetcher struct {
	client     *http.Client
	classifier Classifier
	timeout    time.Duration
	maxBody    int64
	now        func() time.Time
}

// NewFetcher は新しい Fetcher を生成します。未指定のオプションはデフォルト値を使用します。
func NewFetcher(client *http.Client, classifier Classifier, opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Fetcher{
		client:     client,
		classifier: classifier,
		timeout:    opts.Timeout,
		maxBody:    opts.MaxBodyBytes,
		now:        time.Now,
	}
}

// Fetch は src を取得して NewsItem のスライスを返します。
// ネットワークエラー、HTTPエラー、パースエラーはログに出力し、空のスライスを返します。
func (f *Fetcher) Fetch(ctx context.Context, src entity.FeedSource) []entity.NewsItem {
	items, err := f.fetch(ctx, src)
	if err != nil {
		slog.Error("failed to fetch feed", "feed", src.Name, "url", src.URL, "error", err)
		return []entity.NewsItem{}
	}
	return items
}

func (f *Fetcher) fetch(ctx context.Context, src entity.FeedSource) ([]entity.NewsItem, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, application/json;q=0.9, */*;q=0.8")

	// リクエストを実行
	res, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("feed http %d", res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, f.maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if isJSON(res.Header.Get("Content-Type"), src.URL) {
		return f.parseGeoJSON(src.Name, body)
	}
	return f.parseRSS(src.Name, body)
}

// isJSON は Content-Type または URL の拡張子から JSON ペイロードかどうかを判定します。
func isJSON(contentType, rawURL string) bool {
	if strings.Contains(strings.ToLower(contentType), "json") {
		return true
	}
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	path = strings.ToLower(path)
	return strings.HasSuffix(path, ".json") || strings.HasSuffix(path, ".geojson")
}

// parseRSS は RSS/Atom ドキュメントの全アイテムを読み取り、分類します。
func (f *Fetcher) parseRSS(name string, body []byte) ([]entity.NewsItem, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	now := f.now()
	items := make([]entity.NewsItem, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if it == nil {
			continue
		}
		title := strings.TrimSpace(it.Title)
		description := strings.TrimSpace(it.Description)
		if description == "" {
			// Atom: summary が無い場合は content を使う
			description = strings.TrimSpace(it.Content)
		}
		link := strings.TrimSpace(it.Link)

		rawDate := it.Published
		if strings.TrimSpace(rawDate) == "" {
			rawDate = it.Updated
		}

		tags, sentiment := f.classifier.Classify(title, description)
		items = append(items, entity.NewsItem{
			SourceFeed:  name,
			Title:       title,
			Body:        description,
			Link:        link,
			PublishedAt: datenorm.ParseAt(rawDate, now),
			ImpactTags:  tags,
			Sentiment:   sentiment,
		})
	}
	return items, nil
}

// geoJSONResponse は features 配列を持つ構造化フィード（地震情報など）のDTOです。
type geoJSONResponse struct {
	Features *[]struct {
		Properties struct {
			Title string   `json:"title"`
			Place string   `json:"place"`
			URL   string   `json:"url"`
			Time  *float64 `json:"time"` // epoch milliseconds
		} `json:"properties"`
	} `json:"features"`
}

var errNoFeatures = errors.New("json payload has no features array")

// parseGeoJSON は features を NewsItem に変換します。構造化フィードはキーワード分類しません。
func (f *Fetcher) parseGeoJSON(name string, body []byte) ([]entity.NewsItem, error) {
	var doc geoJSONResponse
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if doc.Features == nil {
		return nil, errNoFeatures
	}

	now := f.now().UTC()
	items := make([]entity.NewsItem, 0, len(*doc.Features))
	for _, feat := range *doc.Features {
		p := feat.Properties
		title := strings.TrimSpace(p.Title)
		if title == "" {
			title = strings.TrimSpace(p.Place)
		}
		published := now
		if p.Time != nil {
			published = time.UnixMilli(int64(*p.Time)).UTC()
		}
		items = append(items, entity.NewsItem{
			SourceFeed:  name,
			Title:       title,
			Body:        strings.TrimSpace(p.Place),
			Link:        strings.TrimSpace(p.URL),
			PublishedAt: published,
			ImpactTags:  []string{entity.TagGeneral},
			Sentiment:   entity.SentimentNeutral,
		})
	}
	return items, nil
}
