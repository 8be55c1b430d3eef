package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"goldeye_backend/internal/feature/volatility/adapters/yahoo/dto"
	"goldeye_backend/internal/feature/volatility/domain/entity"
	"goldeye_backend/internal/feature/volatility/usecase"
)

// codeNotFound は存在しない、または上場廃止のシンボルに対するエラーコードです。
const codeNotFound = "Not Found"

// YahooMarket はYahooチャートAPIから株価データを取得するMarketRepository実装です。
type YahooMarket struct {
	cfg    Config
	client *http.Client
}

var _ usecase.MarketRepository = (*YahooMarket)(nil)

// NewYahooMarket は指定された設定とHTTPクライアントでYahooMarketを生成します。
func NewYahooMarket(cfg Config, client *http.Client) *YahooMarket {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &YahooMarket{cfg: cfg, client: client}
}

// GetHistory は symbol の period 分の足を interval 間隔で取得します。
// シンボルが見つからない場合やデータが空の場合は空のスライスと nil を返します。
func (y *YahooMarket) GetHistory(ctx context.Context, symbol, period, interval string) ([]entity.Candle, error) {
	q := url.Values{}
	q.Set("range", period)
	q.Set("interval", interval)
	q.Set("includePrePost", "false")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s",
		strings.TrimRight(y.cfg.BaseURL, "/"), url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := y.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	// エラー時もJSON本文にコードが入るため、ステータスより先に本文を確認する
	var body dto.ChartResponse
	decodeErr := json.NewDecoder(res.Body).Decode(&body)
	if decodeErr == nil && body.Chart.Error != nil {
		if body.Chart.Error.Code == codeNotFound {
			slog.Warn("yahoo symbol not found", "ticker", symbol, "description", body.Chart.Error.Description)
			return []entity.Candle{}, nil
		}
		return nil, fmt.Errorf("yahoo: %s: %s", body.Chart.Error.Code, body.Chart.Error.Description)
	}
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("yahoo http %d", res.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("yahoo decode: %w", decodeErr)
	}
	if len(body.Chart.Result) == 0 {
		return []entity.Candle{}, nil
	}

	return toCandles(symbol, interval, body.Chart.Result[0]), nil
}

// toCandles は列指向の結果を足に変換します。終値が null の行は除外し、
// close 列がない場合は adjclose 列を使います。
func toCandles(symbol, interval string, r dto.ChartResult) []entity.Candle {
	var open, high, low, closes []*float64
	var volume []*int64
	if len(r.Indicators.Quote) > 0 {
		qt := r.Indicators.Quote[0]
		open, high, low, closes, volume = qt.Open, qt.High, qt.Low, qt.Close, qt.Volume
	}
	if len(closes) == 0 && len(r.Indicators.AdjClose) > 0 {
		closes = r.Indicators.AdjClose[0].AdjClose
	}

	candles := make([]entity.Candle, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		c := at(closes, i)
		if c == nil {
			continue
		}
		candle := entity.Candle{
			Symbol:   symbol,
			Interval: interval,
			Time:     time.Unix(ts, 0).UTC(),
			Close:    *c,
		}
		if v := at(open, i); v != nil {
			candle.Open = *v
		}
		if v := at(high, i); v != nil {
			candle.High = *v
		}
		if v := at(low, i); v != nil {
			candle.Low = *v
		}
		if i < len(volume) && volume[i] != nil {
			candle.Volume = *volume[i]
		}
		candles = append(candles, candle)
	}
	return candles
}

func at(col []*float64, i int) *float64 {
	if i >= len(col) {
		return nil
	}
	return col[i]
}
