package usecases_port

import (
	"classifieds-browser/internal/core/domain"
	"context"
)

// Snapshot - текущее состояние экрана для слоя представления.
type Snapshot struct {
	State      domain.DisplayState
	Items      []domain.Listing
	LastUpdate domain.DisplayUpdate
	Loading    bool
	Degraded   error
}

// BrowseSessionPort - операции, которые вызывает слой представления.
type BrowseSessionPort interface {
	Configure(ctx context.Context, state domain.DisplayState) (domain.DisplayUpdate, error)
	Snapshot() Snapshot
	Listing(id string) (domain.Listing, error)
	Image(ctx context.Context, id string) ([]byte, bool)
	ToggleFavorite(ctx context.Context, id string, checked bool) (domain.DisplayUpdate, error)
	PurgeFavorites(ctx context.Context) (domain.DisplayUpdate, error)
	Refresh(ctx context.Context) error
	FreeResources()
}
