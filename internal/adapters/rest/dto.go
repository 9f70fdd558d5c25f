package rest

import (
	"classifieds-browser/internal/core/domain"
	"classifieds-browser/internal/core/port/usecases_port"
)

type ListingDTO struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Location       string `json:"location"`
	Price          *int   `json:"price,omitempty"`
	ImageReference string `json:"imageReference"`
	ImageURL       string `json:"imageUrl"`
	Liked          bool   `json:"liked"`
}

type ViewResponse struct {
	State      string               `json:"state"`
	Title      string               `json:"title"`
	Items      []ListingDTO         `json:"items"`
	LastUpdate domain.DisplayUpdate `json:"lastUpdate"`
	Loading    bool                 `json:"loading"`
	// Degraded - текст последней ошибки хранилища избранного, пусто если все в порядке
	Degraded string `json:"degraded,omitempty"`
}

type UpdateResponse struct {
	State    string               `json:"state"`
	Update   domain.DisplayUpdate `json:"update"`
	Favorite *bool                `json:"favorite,omitempty"`
}

func toListingDTO(l domain.Listing) ListingDTO {
	return ListingDTO{
		ID:             l.ID,
		Title:          l.Title,
		Location:       l.Location,
		Price:          l.Price,
		ImageReference: l.ImageReference,
		ImageURL:       "/api/v1/ads/" + l.ID + "/image",
		Liked:          l.Liked,
	}
}

func toViewResponse(s usecases_port.Snapshot) ViewResponse {
	items := make([]ListingDTO, 0, len(s.Items))
	for _, l := range s.Items {
		items = append(items, toListingDTO(l))
	}
	resp := ViewResponse{
		State:      string(s.State),
		Title:      s.State.Title(),
		Items:      items,
		LastUpdate: s.LastUpdate,
		Loading:    s.Loading,
	}
	if s.Degraded != nil {
		resp.Degraded = s.Degraded.Error()
	}
	return resp
}
