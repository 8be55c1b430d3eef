// Package yahoo はYahoo Financeのチャート（v8）APIから価格履歴を取得するクライアントを提供します。
package yahoo

import "time"

// DefaultBaseURL はチャートAPIのホストです。
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Config はYahooチャートAPIクライアントの設定を保持します。
type Config struct {
	BaseURL string
	Timeout time.Duration
}
