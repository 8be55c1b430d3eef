// Package twelvedata はTwelve Data株式市場APIのクライアントを提供します。
package twelvedata

import "time"

// DefaultBaseURL はTwelve Data APIの本番URLです。
const DefaultBaseURL = "https://api.twelvedata.com"

// MaxOutputSize はtime_seriesエンドポイントが1回で返せる最大件数です。
const MaxOutputSize = 5000

// Config はTwelve Data APIクライアントの設定を保持します。
type Config struct {
	TwelveDataAPIKey string        // 認証用APIキー
	BaseURL          string        // APIのベースURL（例: "https://api.twelvedata.com"）
	Timeout          time.Duration // HTTPリクエストタイムアウト
}
