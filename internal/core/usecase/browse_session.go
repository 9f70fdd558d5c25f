package usecase

import (
	"classifieds-browser/internal/contextkeys"
	"classifieds-browser/internal/core/domain"
	"classifieds-browser/internal/core/port"
	"classifieds-browser/internal/core/port/usecases_port"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// BrowseSession - единственный владелец отображаемого списка.
// Он решает, что показывать (все, избранное, пустое избранное), и считает
// минимальные изменения при переходе между наборами.
// Все изменения состояния идут под одним мьютексом, сетевые операции - вне его.
type BrowseSession struct {
	id        string
	catalog   *CatalogClient
	store     *FavoritesStore
	presenter port.PresenterPort

	// ctx живет столько же, сколько сессия; фоновые загрузки используют его
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	state      domain.DisplayState
	displayed  []domain.Listing
	lastUpdate domain.DisplayUpdate
	loading    bool
	degraded   error
	generation uint64
	closed     bool
}

// NewBrowseSession - конструктор. presenter может быть nil.
func NewBrowseSession(catalog *CatalogClient, store *FavoritesStore, presenter port.PresenterPort) *BrowseSession {
	if presenter == nil {
		presenter = noopPresenter{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BrowseSession{
		id:        uuid.New().String(),
		catalog:   catalog,
		store:     store,
		presenter: presenter,
		ctx:       ctx,
		cancel:    cancel,
		state:     domain.StateAll,
	}
}

// notification - то, что нужно отправить в presenter после снятия блокировки.
type notification struct {
	state       domain.DisplayState
	loading     bool
	update      domain.DisplayUpdate
	displayed   []domain.Listing
	stateChange bool
	loadChange  bool
}

func (s *BrowseSession) logger(ctx context.Context, op string) port.LoggerPort {
	return contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":   op,
		"session_id": s.id,
	})
}

// Setup загружает избранное и выбирает стартовый экран: избранное, если оно есть,
// иначе все объявления. Отсутствующий файл - обычный первый запуск; поврежденный
// файл переводит сессию в деградированный режим, но не останавливает ее.
func (s *BrowseSession) Setup(ctx context.Context) (domain.DisplayUpdate, error) {
	logger := s.logger(ctx, "SetupSession")

	if err := s.store.LoadFavorites(ctx); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("No favorites stored yet", nil)
		} else {
			logger.Error("Favorites unavailable, continuing without them", err, nil)
			s.mu.Lock()
			s.degraded = err
			s.mu.Unlock()
		}
	}

	if len(s.store.Favorites()) > 0 {
		return s.Configure(ctx, domain.StateFavorites)
	}
	return s.Configure(ctx, domain.StateAll)
}

// Configure переключает экран в заданное состояние.
func (s *BrowseSession) Configure(ctx context.Context, state domain.DisplayState) (domain.DisplayUpdate, error) {
	logger := s.logger(ctx, "ConfigureView").WithFields(port.Fields{"requested_state": string(state)})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.DisplayUpdate{}, domain.ErrSessionClosed
	}

	prevState, prevLoading := s.state, s.loading
	var upd domain.DisplayUpdate

	switch state {
	case domain.StateAll:
		s.state = domain.StateAll
		all := s.store.AllAds()
		if len(all) == 0 {
			if !s.loading {
				s.startCatalogLoadLocked(ctx)
			}
			upd = domain.DisplayUpdate{Kind: domain.UpdateNone}
		} else {
			upd = s.applyLocked(all)
		}
	case domain.StateFavorites:
		favorites := s.store.Favorites()
		s.state = domain.StateFavorites
		upd = s.applyLocked(favorites)
		// Избранного нет - показываем пустой экран
		if len(favorites) == 0 {
			s.state = domain.StateEmptyFavorites
		}
	case domain.StateEmptyFavorites:
		s.state = domain.StateEmptyFavorites
		upd = domain.DisplayUpdate{Kind: domain.UpdateNone}
	default:
		s.mu.Unlock()
		return domain.DisplayUpdate{}, fmt.Errorf("%w: %q", domain.ErrUnknownDisplayState, state)
	}

	n := s.notificationLocked(prevState, prevLoading, upd)
	displayed := len(s.displayed)
	s.mu.Unlock()

	logger.Info("View configured", port.Fields{
		"state":       string(n.state),
		"update_kind": string(upd.Kind),
		"displayed":   displayed,
	})
	s.notify(n)
	return upd, nil
}

// Refresh принудительно перезагружает каталог в фоне.
func (s *BrowseSession) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	prevState, prevLoading := s.state, s.loading
	s.startCatalogLoadLocked(ctx)
	n := s.notificationLocked(prevState, prevLoading, domain.DisplayUpdate{Kind: domain.UpdateNone})
	s.mu.Unlock()

	s.notify(n)
	return nil
}

// startCatalogLoadLocked запускает фоновую загрузку каталога.
// Каждая загрузка получает свое поколение; результат устаревшей загрузки отбрасывается.
func (s *BrowseSession) startCatalogLoadLocked(ctx context.Context) {
	s.generation++
	gen := s.generation
	s.loading = true

	loadCtx := contextkeys.ContextWithLogger(s.ctx, contextkeys.LoggerFromContext(ctx))
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		loadCtx = contextkeys.ContextWithTraceID(loadCtx, traceID)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		listings := s.catalog.LoadCatalog(loadCtx)
		s.completeCatalogLoad(loadCtx, gen, listings)
	}()
}

// completeCatalogLoad применяет результат загрузки поколения gen.
// Данные берутся только из listings этой загрузки.
func (s *BrowseSession) completeCatalogLoad(ctx context.Context, gen uint64, listings []domain.Listing) {
	logger := s.logger(ctx, "CompleteCatalogLoad").WithFields(port.Fields{"generation": gen})

	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		logger.Debug("Stale catalog load ignored", nil)
		return
	}

	prevState, prevLoading := s.state, s.loading
	s.loading = false

	upd := domain.DisplayUpdate{Kind: domain.UpdateNone}
	if len(listings) > 0 {
		s.store.SetAllAds(listings)
		// Пользователь мог уже уйти в избранное, пока шла загрузка
		if s.state == domain.StateAll {
			upd = s.applyLocked(s.store.AllAds())
		}
	}

	n := s.notificationLocked(prevState, prevLoading, upd)
	s.mu.Unlock()

	logger.Info("Catalog load completed", port.Fields{"count": len(listings), "update_kind": string(upd.Kind)})
	s.notify(n)
}

// applyLocked переводит отображаемый список в target.
// Заменяемый набор - то, что показано сейчас.
func (s *BrowseSession) applyLocked(target []domain.Listing) domain.DisplayUpdate {
	next, upd := domain.Reconcile(s.displayed, s.displayed, target)
	s.displayed = next
	if !upd.IsEmpty() {
		s.lastUpdate = upd
	}
	return upd
}

// ToggleFavorite добавляет или убирает объявление из избранного и обновляет
// одну позицию отображаемого списка, если объявление видно.
func (s *BrowseSession) ToggleFavorite(ctx context.Context, id string, checked bool) (domain.DisplayUpdate, error) {
	logger := s.logger(ctx, "ToggleFavorite").WithFields(port.Fields{"listing_id": id, "checked": checked})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.DisplayUpdate{}, domain.ErrSessionClosed
	}

	listing, ok := s.findLocked(id)
	if !ok {
		s.mu.Unlock()
		return domain.DisplayUpdate{}, fmt.Errorf("%w: %s", domain.ErrListingNotFound, id)
	}

	var (
		event *domain.FavoriteEvent
		err   error
	)
	if checked {
		event, err = s.store.add(ctx, listing)
	} else {
		event, err = s.store.remove(ctx, id)
	}
	if err != nil {
		s.degraded = err
		s.mu.Unlock()
		logger.Error("Favorite toggle failed", err, nil)
		return domain.DisplayUpdate{}, err
	}
	// Ошибка чтения файла при старте остается видна до очистки избранного
	if isSaveFailure(s.degraded) {
		s.degraded = nil
	}

	prevState, prevLoading := s.state, s.loading
	upd := domain.DisplayUpdate{Kind: domain.UpdateNone}
	if pos := domain.IndexOf(s.displayed, id); pos >= 0 {
		upd = domain.DisplayUpdate{Kind: domain.UpdateItem, Item: pos}
		s.lastUpdate = upd
	}
	if s.state == domain.StateFavorites && len(s.store.Favorites()) == 0 {
		s.state = domain.StateEmptyFavorites
	}

	n := s.notificationLocked(prevState, prevLoading, upd)
	s.mu.Unlock()

	logger.Info("Favorite toggled", port.Fields{"update_kind": string(upd.Kind), "state": string(n.state)})
	s.notify(n)
	s.store.publish(ctx, event)
	return upd, nil
}

func isSaveFailure(err error) bool {
	var storageErr *domain.StorageError
	return errors.As(err, &storageErr) && storageErr.Op == domain.StorageOpSave
}

// PurgeFavorites удаляет все избранное. На экране избранного список очищается.
func (s *BrowseSession) PurgeFavorites(ctx context.Context) (domain.DisplayUpdate, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.DisplayUpdate{}, domain.ErrSessionClosed
	}

	s.store.PurgeAll(ctx)
	s.degraded = nil

	prevState, prevLoading := s.state, s.loading
	upd := domain.DisplayUpdate{Kind: domain.UpdateNone}
	if s.state == domain.StateFavorites || s.state == domain.StateEmptyFavorites {
		upd = s.applyLocked(nil)
		s.state = domain.StateEmptyFavorites
	}

	n := s.notificationLocked(prevState, prevLoading, upd)
	s.mu.Unlock()

	s.notify(n)
	return upd, nil
}

// Snapshot возвращает копию текущего экрана с актуальными флагами liked.
func (s *BrowseSession) Snapshot() usecases_port.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return usecases_port.Snapshot{
		State:      s.state,
		Items:      s.decorate(s.displayed),
		LastUpdate: s.lastUpdate,
		Loading:    s.loading,
		Degraded:   s.degraded,
	}
}

// Listing - данные для экрана деталей.
func (s *BrowseSession) Listing(id string) (domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, ok := s.findLocked(id)
	if !ok {
		return domain.Listing{}, fmt.Errorf("%w: %s", domain.ErrListingNotFound, id)
	}
	listing.Liked = s.store.IsFavorite(id)
	return listing, nil
}

// IsFavorite сообщает, находится ли объявление в избранном.
func (s *BrowseSession) IsFavorite(id string) bool {
	return s.store.IsFavorite(id)
}

// Image возвращает изображение объявления. Сеть вызывается без блокировки сессии.
func (s *BrowseSession) Image(ctx context.Context, id string) ([]byte, bool) {
	s.mu.Lock()
	listing, ok := s.findLocked(id)
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	return s.catalog.Image(ctx, listing)
}

// FreeResources - реакция на нехватку памяти.
func (s *BrowseSession) FreeResources() {
	s.catalog.FreeResources()
}

// Wait ждет завершения фоновых загрузок.
func (s *BrowseSession) Wait() {
	s.wg.Wait()
}

// Close завершает сессию. Результаты загрузок, которые еще идут, будут отброшены.
func (s *BrowseSession) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *BrowseSession) findLocked(id string) (domain.Listing, bool) {
	if idx := domain.IndexOf(s.displayed, id); idx >= 0 {
		return s.displayed[idx], true
	}
	return s.store.Find(id)
}

func (s *BrowseSession) decorate(listings []domain.Listing) []domain.Listing {
	out := slices.Clone(listings)
	for i := range out {
		out[i].Liked = s.store.IsFavorite(out[i].ID)
	}
	return out
}

func (s *BrowseSession) notificationLocked(prevState domain.DisplayState, prevLoading bool, upd domain.DisplayUpdate) notification {
	n := notification{
		state:       s.state,
		loading:     s.loading,
		update:      upd,
		stateChange: prevState != s.state,
		loadChange:  prevLoading != s.loading,
	}
	if !upd.IsEmpty() {
		n.displayed = s.decorate(s.displayed)
	}
	return n
}

func (s *BrowseSession) notify(n notification) {
	if n.stateChange {
		s.presenter.StateChanged(n.state)
	}
	if n.loadChange {
		s.presenter.LoadingChanged(n.loading)
	}
	if !n.update.IsEmpty() {
		s.presenter.DisplayChanged(n.update, n.displayed)
	}
}

type noopPresenter struct{}

func (noopPresenter) StateChanged(domain.DisplayState) {}
func (noopPresenter) LoadingChanged(bool) {}
func (noopPresenter) DisplayChanged(domain.DisplayUpdate, []domain.Listing) {}
