package usecase

import (
	"classifieds-browser/internal/contextkeys"
	"classifieds-browser/internal/core/domain"
	"classifieds-browser/internal/core/port"
	"context"
	"slices"
	"sync"
)

// CatalogClient загружает каталог и изображения, держит кэш изображений.
// Ошибки сети и разбора логируются и наружу не выходят: вызывающий видит
// только пустой результат.
type CatalogClient struct {
	fetcher port.CatalogFetcherPort
	cache   port.ImageCachePort

	mu     sync.RWMutex
	allAds []domain.Listing
}

func NewCatalogClient(fetcher port.CatalogFetcherPort, cache port.ImageCachePort) *CatalogClient {
	return &CatalogClient{
		fetcher: fetcher,
		cache:   cache,
	}
}

// FetchCatalog загружает каталог, отбрасывает объявления без цены и полностью
// заменяет текущий набор. Возвращает число оставшихся объявлений, 0 при любой ошибке.
func (c *CatalogClient) FetchCatalog(ctx context.Context) int {
	return len(c.LoadCatalog(ctx))
}

// LoadCatalog делает то же, что FetchCatalog, но возвращает набор именно этой
// загрузки. При ошибке возвращает nil и текущий набор не трогает.
func (c *CatalogClient) LoadCatalog(ctx context.Context) []domain.Listing {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{"use_case": "FetchCatalog"})

	ucLogger.Debug("Fetching catalog", nil)

	listings, err := c.fetcher.FetchCatalog(ctx)
	if err != nil {
		ucLogger.Error("Catalog fetch failed, nothing to show", err, nil)
		return nil
	}

	priced := domain.FilterPriced(listings)

	c.mu.Lock()
	c.allAds = priced
	c.mu.Unlock()

	ucLogger.Info("Catalog fetched", port.Fields{
		"received":        len(listings),
		"dropped_noprice": len(listings) - len(priced),
		"kept":            len(priced),
	})
	return slices.Clone(priced)
}

// AllAds возвращает копию последнего загруженного набора.
func (c *CatalogClient) AllAds() []domain.Listing {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Listing, len(c.allAds))
	copy(out, c.allAds)
	return out
}

// Image возвращает изображение объявления из кэша или из сети.
// Одновременные запросы одного и того же изображения не объединяются.
func (c *CatalogClient) Image(ctx context.Context, listing domain.Listing) ([]byte, bool) {
	if img, ok := c.cache.Get(listing.ImageReference); ok {
		return img, true
	}

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":        "FetchImage",
		"listing_id":      listing.ID,
		"image_reference": listing.ImageReference,
	})

	img, err := c.fetcher.FetchImage(ctx, listing.ImageReference)
	if err != nil {
		logger.Warn("Image fetch failed", port.Fields{"error": err.Error()})
		return nil, false
	}

	c.cache.Add(listing.ImageReference, img)
	logger.Debug("Image cached", port.Fields{"bytes": len(img), "cache_len": c.cache.Len()})
	return img, true
}

// FreeResources очищает кэш изображений. Каталог и избранное не затрагиваются.
func (c *CatalogClient) FreeResources() {
	c.cache.Purge()
}
