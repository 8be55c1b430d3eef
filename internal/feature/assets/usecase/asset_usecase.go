// Package usecase implements the business logic for the tracked asset list.
package usecase

import (
	"context"

	"goldeye_backend/internal/feature/assets/domain/entity"
)

// AssetRepository abstracts where the asset table comes from.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type AssetRepository interface {
	List(ctx context.Context) ([]entity.Asset, error)
	ListTickers(ctx context.Context) ([]string, error)
}

// AssetUsecase provides business logic for asset operations.
type AssetUsecase struct {
	repo AssetRepository
}

// NewAssetUsecase creates a new AssetUsecase with the given repository.
func NewAssetUsecase(r AssetRepository) *AssetUsecase {
	return &AssetUsecase{repo: r}
}

// ListAssets returns the tracked assets in display order.
func (u *AssetUsecase) ListAssets(ctx context.Context) ([]entity.Asset, error) {
	return u.repo.List(ctx)
}

// Lookup returns the asset with the given ticker.
func (u *AssetUsecase) Lookup(ctx context.Context, ticker string) (entity.Asset, bool, error) {
	assets, err := u.repo.List(ctx)
	if err != nil {
		return entity.Asset{}, false, err
	}
	for _, a := range assets {
		if a.Ticker == ticker {
			return a, true, nil
		}
	}
	return entity.Asset{}, false, nil
}
