package rest

import (
	"classifieds-browser/internal/contextkeys"
	"classifieds-browser/internal/core/domain"
	"classifieds-browser/internal/core/port"
	"classifieds-browser/internal/core/port/usecases_port"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type BrowseHandler struct {
	session usecases_port.BrowseSessionPort
}

func NewBrowseHandler(session usecases_port.BrowseSessionPort) *BrowseHandler {
	return &BrowseHandler{session: session}
}

func (h *BrowseHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusForError(err)
	logger := contextkeys.LoggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error(msg, err, nil)
	} else {
		logger.Warn(msg, port.Fields{"error": err.Error()})
	}
	WriteJSONError(w, status, err.Error())
}

// GetAds обрабатывает GET /api/v1/ads?view=all|favorites
func (h *BrowseHandler) GetAds(w http.ResponseWriter, r *http.Request) {
	state, err := domain.ParseDisplayState(r.URL.Query().Get("view"))
	if err != nil {
		h.fail(w, r, "Invalid view parameter", err)
		return
	}

	if _, err := h.session.Configure(r.Context(), state); err != nil {
		h.fail(w, r, "Failed to configure view", err)
		return
	}

	RespondWithJSON(w, http.StatusOK, toViewResponse(h.session.Snapshot()))
}

// GetAd обрабатывает GET /api/v1/ads/{adID}
func (h *BrowseHandler) GetAd(w http.ResponseWriter, r *http.Request) {
	listing, err := h.session.Listing(chi.URLParam(r, "adID"))
	if err != nil {
		h.fail(w, r, "Listing lookup failed", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, toListingDTO(listing))
}

// GetAdImage обрабатывает GET /api/v1/ads/{adID}/image
func (h *BrowseHandler) GetAdImage(w http.ResponseWriter, r *http.Request) {
	img, ok := h.session.Image(r.Context(), chi.URLParam(r, "adID"))
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "image not available")
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(img))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

// AddFavorite обрабатывает PUT /api/v1/favorites/{adID}
func (h *BrowseHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, true)
}

// RemoveFavorite обрабатывает DELETE /api/v1/favorites/{adID}
func (h *BrowseHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, false)
}

func (h *BrowseHandler) toggle(w http.ResponseWriter, r *http.Request, checked bool) {
	upd, err := h.session.ToggleFavorite(r.Context(), chi.URLParam(r, "adID"), checked)
	if err != nil {
		h.fail(w, r, "Favorite toggle failed", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, UpdateResponse{
		State:    string(h.session.Snapshot().State),
		Update:   upd,
		Favorite: &checked,
	})
}

// PurgeFavorites обрабатывает DELETE /api/v1/favorites
func (h *BrowseHandler) PurgeFavorites(w http.ResponseWriter, r *http.Request) {
	upd, err := h.session.PurgeFavorites(r.Context())
	if err != nil {
		h.fail(w, r, "Favorites purge failed", err)
		return
	}
	RespondWithJSON(w, http.StatusOK, UpdateResponse{
		State:  string(h.session.Snapshot().State),
		Update: upd,
	})
}

// RefreshCatalog обрабатывает POST /api/v1/catalog/refresh. Загрузка идет в фоне.
func (h *BrowseHandler) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Refresh(r.Context()); err != nil {
		h.fail(w, r, "Catalog refresh failed", err)
		return
	}
	RespondWithJSON(w, http.StatusAccepted, map[string]bool{"loading": true})
}

// FreeResources обрабатывает POST /api/v1/system/free-resources
func (h *BrowseHandler) FreeResources(w http.ResponseWriter, r *http.Request) {
	h.session.FreeResources()
	contextkeys.LoggerFromContext(r.Context()).Info("Image cache purged on request", nil)
	w.WriteHeader(http.StatusNoContent)
}
