package constants

import "time"

// Источник каталога по умолчанию (FINN.no)
const (
	DefaultCatalogURL   = "https://gist.githubusercontent.com/3lvis/3799feea005ed49942dcb56386ecec2b/raw/63249144485884d279d55f4f3907e37098f55c74/discover.json"
	DefaultImageBaseURL = "https://images.finncdn.no/dynamic/480x360c"
)

const (
	DefaultImageCacheLimit  = 50
	DefaultFetchTimeout     = 15 * time.Second
	DefaultFetchParallelism = 4
	DefaultFavoritesFile    = "data/favorites.json"
)
