// Package adapters はassetsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"sort"

	"goldeye_backend/internal/feature/assets/domain/entity"
	"goldeye_backend/internal/feature/assets/usecase"
)

// staticAssets は設定ファイルから読み込んだ銘柄表を保持するAssetRepository実装です。
type staticAssets struct {
	assets []entity.Asset
}

var _ usecase.AssetRepository = (*staticAssets)(nil)

// NewStaticRepository は assets をsort_key順（同順位は設定順）に並べたリポジトリを生成します。
func NewStaticRepository(assets []entity.Asset) *staticAssets {
	sorted := append([]entity.Asset(nil), assets...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortKey < sorted[j].SortKey
	})
	return &staticAssets{assets: sorted}
}

// List はすべての銘柄のコピーを返します。
func (r *staticAssets) List(ctx context.Context) ([]entity.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]entity.Asset(nil), r.assets...), nil
}

// ListTickers は銘柄のティッカーのみを返します。
func (r *staticAssets) ListTickers(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tickers := make([]string, 0, len(r.assets))
	for _, a := range r.assets {
		tickers = append(tickers, a.Ticker)
	}
	return tickers, nil
}
