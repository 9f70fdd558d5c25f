package usecase

import (
	"classifieds-browser/internal/core/domain"
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/stretchr/testify/mock"
)

func priced(id, title string, price int) domain.Listing {
	return domain.Listing{ID: id, Title: title, Location: "Oslo", Price: &price, ImageReference: "img/" + id + ".jpg"}
}

func ids(listings []domain.Listing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}

type MockCatalogFetcher struct {
	mock.Mock
}

func (m *MockCatalogFetcher) FetchCatalog(ctx context.Context) ([]domain.Listing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

func (m *MockCatalogFetcher) FetchImage(ctx context.Context, imageReference string) ([]byte, error) {
	args := m.Called(ctx, imageReference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockFavoriteEvents struct {
	mock.Mock
}

func (m *MockFavoriteEvents) PublishFavoriteChanged(ctx context.Context, event domain.FavoriteEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// mapCache - простой кэш без вытеснения для тестов.
type mapCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string][]byte)}
}

func (c *mapCache) Get(ref string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := c.items[ref]
	return img, ok
}

func (c *mapCache) Add(ref string, img []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[ref] = img
}

func (c *mapCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string][]byte)
}

func (c *mapCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// memoryStorage - хранилище избранного в памяти с управляемыми ошибками.
type memoryStorage struct {
	mu      sync.Mutex
	saved   []domain.Listing
	exists  bool
	loadErr error
	saveErr error
	saves   int
	purged  bool
}

func (s *memoryStorage) Load(ctx context.Context) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return slices.Clone(s.saved), nil
}

func (s *memoryStorage) Save(ctx context.Context, favorites []domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return &domain.StorageError{Op: "save", Path: "memory", Err: s.saveErr}
	}
	s.saves++
	s.saved = slices.Clone(favorites)
	s.exists = true
	return nil
}

func (s *memoryStorage) Purge(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purged = true
	s.saved = nil
	if !s.exists {
		return &domain.StorageError{Op: "purge", Path: "memory", Err: errors.New("not found")}
	}
	s.exists = false
	return nil
}

// recordingPresenter запоминает все уведомления.
type recordingPresenter struct {
	mu      sync.Mutex
	states  []domain.DisplayState
	loading []bool
	updates []domain.DisplayUpdate
}

func (p *recordingPresenter) StateChanged(state domain.DisplayState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, state)
}

func (p *recordingPresenter) LoadingChanged(loading bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = append(p.loading, loading)
}

func (p *recordingPresenter) DisplayChanged(update domain.DisplayUpdate, displayed []domain.Listing) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, update)
}
