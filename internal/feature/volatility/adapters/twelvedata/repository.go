package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"goldeye_backend/internal/feature/volatility/adapters/twelvedata/dto"
	"goldeye_backend/internal/feature/volatility/domain/entity"
	"goldeye_backend/internal/feature/volatility/domain/timeframe"
	"goldeye_backend/internal/feature/volatility/usecase"
)

// codeNotFound はシンボルが存在しない場合にTwelve Dataが返すエラーコードです。
const codeNotFound = 404

// intervalNames はこのサービスの間隔表記をTwelve Dataの表記に変換します。
var intervalNames = map[string]string{
	"1m":  "1min",
	"5m":  "5min",
	"15m": "15min",
	"30m": "30min",
	"60m": "1h",
	"1h":  "1h",
	"1d":  "1day",
	"1wk": "1week",
	"1mo": "1month",
}

// TwelveDataMarket はTwelve Data外部APIから株価データを取得するMarketRepository実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
}

// TwelveDataMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &TwelveDataMarket{cfg: cfg, client: client}
}

// GetHistory はTwelve Data APIから period 分の時系列株価データを取得し、
// entity.Candleのスライスとして返します。シンボルが見つからない場合は空のスライスを返します。
func (t *TwelveDataMarket) GetHistory(ctx context.Context, symbol, period, interval string) ([]entity.Candle, error) {
	tdInterval, ok := intervalNames[interval]
	if !ok {
		return nil, fmt.Errorf("twelvedata: unsupported interval %q", interval)
	}
	outputsize, err := OutputSize(period, interval)
	if err != nil {
		return nil, fmt.Errorf("twelvedata: %w", err)
	}

	q := url.Values{}
	// クエリパラメータを追加
	q.Set("symbol", symbol)
	q.Set("interval", tdInterval)
	q.Set("outputsize", strconv.Itoa(outputsize))
	q.Set("timezone", "UTC")
	q.Set("apikey", t.cfg.TwelveDataAPIKey)

	// URLを生成
	u := fmt.Sprintf("%s/time_series?%s", strings.TrimRight(t.cfg.BaseURL, "/"), q.Encode())

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	// リクエストを実行
	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	// JSONレスポンスをDTOにデコード
	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("twelvedata decode: %w", err)
	}
	if body.Status == "error" {
		if body.Code == codeNotFound {
			slog.Warn("twelvedata symbol not found", "ticker", symbol, "message", body.Message)
			return []entity.Candle{}, nil
		}
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	candles := make([]entity.Candle, 0, len(body.Values))
	for _, v := range body.Values {
		// タイムスタンプをパース
		tm, err := time.Parse("2006-01-02 15:04:05", v.Datetime)
		if err != nil {
			tm, err = time.Parse("2006-01-02", v.Datetime)
			if err != nil {
				return nil, fmt.Errorf("parse time %q: %w", v.Datetime, err)
			}
		}
		o, err := strconv.ParseFloat(v.Open, 64)
		if err != nil {
			return nil, fmt.Errorf("parse open %q: %w", v.Open, err)
		}
		h, err := strconv.ParseFloat(v.High, 64)
		if err != nil {
			return nil, fmt.Errorf("parse high %q: %w", v.High, err)
		}
		l, err := strconv.ParseFloat(v.Low, 64)
		if err != nil {
			return nil, fmt.Errorf("parse low %q: %w", v.Low, err)
		}
		c, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("parse close %q: %w", v.Close, err)
		}
		// 出来高は指数・利回りでは省略される
		var vol64 int64
		if v.Volume != "" {
			vol64, err = strconv.ParseInt(v.Volume, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse volume %q: %w", v.Volume, err)
			}
		}

		// ドメインエンティティに変換
		candles = append(candles, entity.Candle{
			Symbol:   symbol,
			Interval: interval,
			Time:     tm.UTC(),
			Open:     o,
			High:     h,
			Low:      l,
			Close:    c,
			Volume:   vol64,
		})
	}
	return candles, nil
}

// OutputSize は period を interval の足でカバーするのに必要な件数を返します（上限 MaxOutputSize）。
// 足の長さは暦時間で換算するため、取引時間外を含む分だけ多めになります。
func OutputSize(period, interval string) (int, error) {
	days, err := timeframe.PeriodDays(period)
	if err != nil {
		return 0, err
	}
	iv, err := timeframe.ParseInterval(interval)
	if err != nil {
		return 0, err
	}
	if days == 0 {
		return MaxOutputSize, nil
	}
	n := int(time.Duration(days) * 24 * time.Hour / iv.Duration)
	switch {
	case n < 1:
		return 1, nil
	case n > MaxOutputSize:
		return MaxOutputSize, nil
	default:
		return n, nil
	}
}
