package constants

// Обменник событий избранного
const (
	ExchangeClassifieds     = "classifieds_exchange"
	ExchangeClassifiedsType = "topic"
)

// Ключи маршрутизации
const (
	RoutingKeyFavoriteAdded   = "favorites.added"
	RoutingKeyFavoriteRemoved = "favorites.removed"
)
