package catalogfetcher

import (
	"classifieds-browser/internal/core/domain"
	"strings"
)

type catalogResponse struct {
	Items []catalogItem `json:"items"`
}

type catalogItem struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Location    string        `json:"location"`
	Price       *catalogPrice `json:"price"`
	Image       *catalogImage `json:"image"`
}

type catalogPrice struct {
	Value int `json:"value"`
}

type catalogImage struct {
	URL string `json:"url"`
}

// toDomainListings не фильтрует записи без цены, это делает вызывающий.
func toDomainListings(resp catalogResponse) []domain.Listing {
	listings := make([]domain.Listing, 0, len(resp.Items))
	for _, item := range resp.Items {
		listings = append(listings, toDomainListing(item))
	}
	return listings
}

func toDomainListing(item catalogItem) domain.Listing {
	// В каталоге FINN заголовок объявления приходит в description
	title := item.Title
	if title == "" {
		title = item.Description
	}

	listing := domain.Listing{
		ID:       item.ID,
		Title:    strings.TrimSpace(title),
		Location: strings.TrimSpace(item.Location),
	}
	if item.Price != nil {
		price := item.Price.Value
		listing.Price = &price
	}
	if item.Image != nil {
		listing.ImageReference = item.Image.URL
	}
	return listing
}
