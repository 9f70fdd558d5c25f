package port

import (
	"classifieds-browser/internal/core/domain"
	"context"
)

// FavoritesStoragePort - долговременное хранилище избранного.
// Все ошибки возвращаются как *domain.StorageError.
type FavoritesStoragePort interface {
	Load(ctx context.Context) ([]domain.Listing, error)

	// Save полностью и атомарно перезаписывает хранилище.
	Save(ctx context.Context, favorites []domain.Listing) error

	Purge(ctx context.Context) error
}
