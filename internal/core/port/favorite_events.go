package port

import (
	"classifieds-browser/internal/core/domain"
	"context"
)

// FavoriteEventsPort публикует изменения избранного для внешних подписчиков.
type FavoriteEventsPort interface {
	PublishFavoriteChanged(ctx context.Context, event domain.FavoriteEvent) error
}
