package catalogfetcher

import (
	"classifieds-browser/internal/contextkeys"
	"classifieds-browser/internal/contracts"
	"classifieds-browser/internal/core/domain"
	"classifieds-browser/internal/core/port"
	"context"
	"encoding/json"
	"fmt"

	"github.com/gocolly/colly/v2"
)

// FetchCatalog загружает весь каталог. Ошибки сети оборачивают domain.ErrNetwork,
// ошибки формата - domain.ErrDecode.
func (a *CatalogFetcherAdapter) FetchCatalog(ctx context.Context) ([]domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	fetchLogger := logger.WithFields(port.Fields{"component": "CatalogFetcherAdapter(FetchCatalog)"})

	// наследует лимиты, но имеет свои собственные обработчики
	collector := a.newCollector(ctx)

	var listings []domain.Listing
	var responseErr error

	collector.OnRequest(func(r *colly.Request) {
		fetchLogger.Debug("Making request to fetch catalog", port.Fields{"url": r.URL.String()})
	})

	collector.OnResponse(func(r *colly.Response) {
		if err := contracts.Validate(contracts.CatalogV1, r.Body); err != nil {
			responseErr = fmt.Errorf("%w: catalog from %s: %w", domain.ErrDecode, r.Request.URL, err)
			return
		}

		var data catalogResponse
		if err := json.Unmarshal(r.Body, &data); err != nil {
			responseErr = fmt.Errorf("%w: catalog from %s: %w", domain.ErrDecode, r.Request.URL, err)
			return
		}
		listings = toDomainListings(data)
	})

	collector.OnError(func(r *colly.Response, err error) {
		fetchLogger.Error("Catalog request failed", err, port.Fields{
			"url":    r.Request.URL.String(),
			"status": r.StatusCode,
		})
		responseErr = fmt.Errorf("%w: request to %s failed with status %d: %w", domain.ErrNetwork, r.Request.URL, r.StatusCode, err)
	})

	visitErr := collector.Visit(a.catalogURL)
	collector.Wait()

	if responseErr != nil {
		return nil, responseErr
	}
	if visitErr != nil {
		return nil, fmt.Errorf("%w: failed to visit URL %s: %w", domain.ErrNetwork, a.catalogURL, visitErr)
	}

	fetchLogger.Debug("Catalog response decoded", port.Fields{"entries": len(listings)})
	return listings, nil
}
