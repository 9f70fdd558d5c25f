package catalogfetcher

import (
	"classifieds-browser/internal/contextkeys"
	"classifieds-browser/internal/core/domain"
	"classifieds-browser/internal/core/port"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gocolly/colly/v2"
)

var errEmptyImageReference = errors.New("empty image reference")

// FetchImage скачивает изображение по ссылке из объявления.
// Тело ответа должно распознаваться как изображение, иначе domain.ErrDecode.
func (a *CatalogFetcherAdapter) FetchImage(ctx context.Context, imageReference string) ([]byte, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	imageLogger := logger.WithFields(port.Fields{
		"component":       "CatalogFetcherAdapter(FetchImage)",
		"image_reference": imageReference,
	})

	if strings.TrimSpace(imageReference) == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, errEmptyImageReference)
	}
	imageURL := a.imageURL(imageReference)

	collector := a.newCollector(ctx)

	var body []byte
	var responseErr error

	collector.OnResponse(func(r *colly.Response) {
		contentType := http.DetectContentType(r.Body)
		if !strings.HasPrefix(contentType, "image/") {
			responseErr = fmt.Errorf("%w: %s is %s, not an image", domain.ErrDecode, r.Request.URL, contentType)
			return
		}
		body = r.Body
	})

	collector.OnError(func(r *colly.Response, err error) {
		imageLogger.Warn("Image request failed", port.Fields{
			"url":    r.Request.URL.String(),
			"status": r.StatusCode,
			"error":  err.Error(),
		})
		responseErr = fmt.Errorf("%w: request to %s failed with status %d: %w", domain.ErrNetwork, r.Request.URL, r.StatusCode, err)
	})

	visitErr := collector.Visit(imageURL)
	collector.Wait()

	if responseErr != nil {
		return nil, responseErr
	}
	if visitErr != nil {
		return nil, fmt.Errorf("%w: failed to visit URL %s: %w", domain.ErrNetwork, imageURL, visitErr)
	}
	return body, nil
}

func (a *CatalogFetcherAdapter) imageURL(imageReference string) string {
	return a.imageBaseURL + "/" + strings.TrimLeft(imageReference, "/")
}
