package domain

import "time"

type FavoriteEventType string

const (
	FavoriteAdded   FavoriteEventType = "added"
	FavoriteRemoved FavoriteEventType = "removed"
)

// FavoriteEvent - уведомление об изменении избранного.
type FavoriteEvent struct {
	Type       FavoriteEventType
	Listing    Listing
	OccurredAt time.Time
}
