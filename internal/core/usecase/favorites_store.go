package usecase

import (
	"classifieds-browser/internal/contextkeys"
	"classifieds-browser/internal/core/domain"
	"classifieds-browser/internal/core/port"
	"context"
	"slices"
	"sync"
	"time"
)

// FavoritesStore держит избранное и рабочий набор всех объявлений.
// Каждое изменение избранного сначала записывается в хранилище и только
// после успешной записи применяется в памяти.
type FavoritesStore struct {
	storage port.FavoritesStoragePort
	events  port.FavoriteEventsPort
	now     func() time.Time

	mu        sync.RWMutex
	favorites []domain.Listing
	allAds    []domain.Listing
}

// NewFavoritesStore - конструктор. events может быть nil.
func NewFavoritesStore(storage port.FavoritesStoragePort, events port.FavoriteEventsPort) *FavoritesStore {
	if events == nil {
		events = noopFavoriteEvents{}
	}
	return &FavoritesStore{
		storage: storage,
		events:  events,
		now:     time.Now,
	}
}

// LoadFavorites читает хранилище и заменяет избранное в памяти.
// Ошибка возвращается как есть, решение о запасном поведении за вызывающим.
func (s *FavoritesStore) LoadFavorites(ctx context.Context) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "LoadFavorites"})

	favorites, err := s.storage.Load(ctx)
	if err != nil {
		logger.Warn("Favorites could not be loaded", port.Fields{"error": err.Error()})
		return err
	}

	sorted := domain.SortByTitle(favorites)

	s.mu.Lock()
	s.favorites = sorted
	s.mu.Unlock()

	logger.Info("Favorites loaded", port.Fields{"count": len(sorted)})
	return nil
}

// SetAllAds заменяет рабочий набор отсортированной копией. Только в памяти.
func (s *FavoritesStore) SetAllAds(listings []domain.Listing) {
	sorted := domain.SortByTitle(listings)

	s.mu.Lock()
	s.allAds = sorted
	s.mu.Unlock()
}

// Add добавляет объявление в избранное. Повторное добавление того же id ничего не делает.
func (s *FavoritesStore) Add(ctx context.Context, listing domain.Listing) error {
	event, err := s.add(ctx, listing)
	if err != nil {
		return err
	}
	s.publish(ctx, event)
	return nil
}

// Remove удаляет объявление с данным id. Отсутствующий id - не ошибка.
func (s *FavoritesStore) Remove(ctx context.Context, id string) error {
	event, err := s.remove(ctx, id)
	if err != nil {
		return err
	}
	s.publish(ctx, event)
	return nil
}

// add меняет избранное и возвращает событие для публикации, nil если ничего не изменилось.
func (s *FavoritesStore) add(ctx context.Context, listing domain.Listing) (*domain.FavoriteEvent, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "AddFavorite",
		"listing_id": listing.ID,
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if domain.Contains(s.favorites, listing.ID) {
		logger.Debug("Listing already in favorites", nil)
		return nil, nil
	}

	listing.Liked = false
	next, _ := domain.InsertSorted(slices.Clone(s.favorites), listing)
	if err := s.storage.Save(ctx, next); err != nil {
		logger.Error("Failed to persist favorites, in-memory state unchanged", err, nil)
		return nil, err
	}
	s.favorites = next

	logger.Info("Listing added to favorites", port.Fields{"count": len(next)})
	return s.newEvent(domain.FavoriteAdded, listing), nil
}

func (s *FavoritesStore) remove(ctx context.Context, id string) (*domain.FavoriteEvent, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   "RemoveFavorite",
		"listing_id": id,
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := domain.IndexOf(s.favorites, id)
	if idx < 0 {
		logger.Debug("Listing not in favorites", nil)
		return nil, nil
	}

	removed := s.favorites[idx]
	next := slices.Delete(slices.Clone(s.favorites), idx, idx+1)
	if err := s.storage.Save(ctx, next); err != nil {
		logger.Error("Failed to persist favorites, in-memory state unchanged", err, nil)
		return nil, err
	}
	s.favorites = next

	logger.Info("Listing removed from favorites", port.Fields{"count": len(next)})
	return s.newEvent(domain.FavoriteRemoved, removed), nil
}

// PurgeAll удаляет файл избранного и очищает избранное в памяти.
// Ошибка удаления только логируется.
func (s *FavoritesStore) PurgeAll(ctx context.Context) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "PurgeFavorites"})

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Purge(ctx); err != nil {
		logger.Warn("Failed to purge favorites storage", port.Fields{"error": err.Error()})
	}
	s.favorites = nil
	logger.Info("Favorites purged", nil)
}

// Favorites возвращает копию избранного, отсортированного по заголовку.
func (s *FavoritesStore) Favorites() []domain.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.favorites)
}

// AllAds возвращает копию рабочего набора.
func (s *FavoritesStore) AllAds() []domain.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.allAds)
}

func (s *FavoritesStore) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Contains(s.favorites, id)
}

// Find ищет объявление сначала в рабочем наборе, затем в избранном.
func (s *FavoritesStore) Find(id string) (domain.Listing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := domain.IndexOf(s.allAds, id); idx >= 0 {
		return s.allAds[idx], true
	}
	if idx := domain.IndexOf(s.favorites, id); idx >= 0 {
		return s.favorites[idx], true
	}
	return domain.Listing{}, false
}

func (s *FavoritesStore) newEvent(eventType domain.FavoriteEventType, listing domain.Listing) *domain.FavoriteEvent {
	return &domain.FavoriteEvent{Type: eventType, Listing: listing, OccurredAt: s.now()}
}

// publish не влияет на результат операции: изменение уже записано.
// Вызывается без блокировок, брокер может отвечать долго.
func (s *FavoritesStore) publish(ctx context.Context, event *domain.FavoriteEvent) {
	if event == nil {
		return
	}
	if err := s.events.PublishFavoriteChanged(ctx, *event); err != nil {
		contextkeys.LoggerFromContext(ctx).Warn("Failed to publish favorite event", port.Fields{
			"listing_id": event.Listing.ID,
			"event_type": string(event.Type),
			"error":      err.Error(),
		})
	}
}

type noopFavoriteEvents struct{}

func (noopFavoriteEvents) PublishFavoriteChanged(ctx context.Context, event domain.FavoriteEvent) error {
	return nil
}
