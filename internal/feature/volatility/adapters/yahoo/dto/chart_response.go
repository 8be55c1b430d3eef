// Package dto はYahooチャートAPIレスポンスのデータ転送オブジェクトを定義します。
package dto

// ChartResponse は /v8/finance/chart/{symbol} のJSONレスポンスです。
// 欠損した足は各列で null になるため、値はポインタで受けます。
type ChartResponse struct {
	Chart struct {
		Result []ChartResult `json:"result"`
		Error  *ChartError   `json:"error"`
	} `json:"chart"`
}

// ChartError はAPIが返すエラーです（例: Code "Not Found"）。
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ChartResult は1銘柄分の結果です。
type ChartResult struct {
	Meta struct {
		Symbol           string `json:"symbol"`
		DataGranularity  string `json:"dataGranularity"`
		ExchangeTimezone string `json:"exchangeTimezoneName"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}
