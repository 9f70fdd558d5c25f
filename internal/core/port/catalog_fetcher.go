package port

import (
	"classifieds-browser/internal/core/domain"
	"context"
)

// CatalogFetcherPort - операции с удаленным источником объявлений.
type CatalogFetcherPort interface {
	// FetchCatalog загружает весь каталог. Фильтрация по цене здесь не выполняется.
	FetchCatalog(ctx context.Context) ([]domain.Listing, error)

	// FetchImage загружает байты изображения по его ссылке.
	FetchImage(ctx context.Context, imageReference string) ([]byte, error)
}
