package usecase

import (
	"classifieds-browser/internal/core/domain"
	"classifieds-browser/internal/core/port/usecases_port"
	"context"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sessionFixture struct {
	fetcher   *MockCatalogFetcher
	storage   *memoryStorage
	presenter *recordingPresenter
	session   *BrowseSession
}

func newSessionFixture(t *testing.T, catalog []domain.Listing, favorites []domain.Listing) *sessionFixture {
	t.Helper()

	fetcher := new(MockCatalogFetcher)
	if catalog != nil {
		fetcher.On("FetchCatalog", mock.Anything).Return(catalog, nil)
	}
	fetcher.On("FetchImage", mock.Anything, mock.Anything).Return([]byte("img"), nil).Maybe()

	storage := &memoryStorage{saved: favorites, exists: favorites != nil}
	if favorites == nil {
		storage.loadErr = &domain.StorageError{Op: "load", Path: "memory", Err: fs.ErrNotExist}
	}

	presenter := &recordingPresenter{}
	session := NewBrowseSession(
		NewCatalogClient(fetcher, newMapCache()),
		NewFavoritesStore(storage, nil),
		presenter,
	)
	t.Cleanup(session.Close)

	return &sessionFixture{fetcher: fetcher, storage: storage, presenter: presenter, session: session}
}

func catalogABC() []domain.Listing {
	return []domain.Listing{
		priced("c", "Charlie", 3),
		priced("a", "Alpha", 1),
		{ID: "x", Title: "No price"},
		priced("b", "Bravo", 2),
	}
}

func TestBrowseSession_FirstRunLoadsCatalog(t *testing.T) {
	f := newSessionFixture(t, catalogABC(), nil)
	ctx := context.Background()

	upd, err := f.session.Setup(ctx)
	require.NoError(t, err)
	assert.True(t, upd.IsEmpty())
	f.session.Wait()

	snap := f.session.Snapshot()
	assert.Equal(t, domain.StateAll, snap.State)
	assert.False(t, snap.Loading)
	assert.NoError(t, snap.Degraded)
	assert.Equal(t, []string{"a", "b", "c"}, ids(snap.Items))
	assert.Equal(t, domain.UpdateReload, snap.LastUpdate.Kind)

	assert.Equal(t, []bool{true, false}, f.presenter.loading)
	require.Len(t, f.presenter.updates, 1)
	assert.Equal(t, domain.UpdateReload, f.presenter.updates[0].Kind)
}

func TestBrowseSession_StartsOnFavoritesWhenPresent(t *testing.T) {
	f := newSessionFixture(t, catalogABC(), []domain.Listing{priced("b", "Bravo", 2)})
	ctx := context.Background()

	_, err := f.session.Setup(ctx)
	require.NoError(t, err)

	snap := f.session.Snapshot()
	assert.Equal(t, domain.StateFavorites, snap.State)
	assert.Equal(t, []string{"b"}, ids(snap.Items))
	assert.True(t, snap.Items[0].Liked)
	f.fetcher.AssertNotCalled(t, "FetchCatalog", mock.Anything)
}

func TestBrowseSession_SwitchBetweenAllAndFavorites(t *testing.T) {
	f := newSessionFixture(t, catalogABC(), []domain.Listing{priced("b", "Bravo", 2)})
	ctx := context.Background()
	_, err := f.session.Setup(ctx)
	require.NoError(t, err)

	// Каталога еще нет - загрузка в фоне
	_, err = f.session.Configure(ctx, domain.StateAll)
	require.NoError(t, err)
	f.session.Wait()

	snap := f.session.Snapshot()
	assert.Equal(t, domain.StateAll, snap.State)
	assert.Equal(t, []string{"a", "b", "c"}, ids(snap.Items))
	assert.Equal(t, domain.DisplayUpdate{Kind: domain.UpdateDiff, Added: []int{0, 2}}, snap.LastUpdate)

	upd, err := f.session.Configure(ctx, domain.StateFavorites)
	require.NoError(t, err)
	assert.Equal(t, domain.DisplayUpdate{Kind: domain.UpdateDiff, Removed: []int{0, 2}}, upd)
	assert.Equal(t, []string{"b"}, ids(f.session.Snapshot().Items))

	// Каталог уже в памяти - повторной загрузки нет
	_, err = f.session.Configure(ctx, domain.StateAll)
	require.NoError(t, err)
	f.fetcher.AssertNumberOfCalls(t, "FetchCatalog", 1)
}

func TestBrowseSession_EmptyFavoritesFallback(t *testing.T) {
	f := newSessionFixture(t, catalogABC(), nil)
	ctx := context.Background()
	_, err := f.session.Setup(ctx)
	require.NoError(t, err)
	f.session.Wait()

	_, err = f.session.Configure(ctx, domain.StateFavorites)
	require.NoError(t, err)

	snap := f.session.Snapshot()
	assert.Equal(t, domain.StateEmptyFavorites, snap.State)
	assert.Empty(t, snap.Items)
	assert.Contains(t, f.presenter.states, domain.StateEmptyFavorites)
}

func TestBrowseSession_ToggleUpdatesSingleItem(t *testing.T) {
	f := newSessionFixture(t, catalogABC(), nil)
	ctx := context.Background()
	_, err := f.session.Setup(ctx)
	require.NoError(t, err)
	f.session.Wait()

	upd, err := f.session.ToggleFavorite(ctx, "b", true)
	require.NoError(t, err)

	assert.Equal(t, domain.DisplayUpdate{Kind: domain.UpdateItem, Item: 1}, upd)
	assert.True(t, f.session.IsFavorite("b"))
	listing, err := f.session.Listing("b")
	require.NoError(t, err)
	assert.True(t, listing.Liked)
	assert.Equal(t, []string{"b"}, ids(f.storage.saved))
}

func TestBrowseSession_RemovingLastFavoriteShowsEmpty(t *testing.T) {
	f := newSessionFixture(t, catalogABC(), []domain.Listing{priced("b", "Bravo", 2)})
	ctx := context.Background()
	_, err := f.session.Setup(ctx)
	require.NoError(t, err)

	upd, err := f.session.ToggleFavorite(ctx, "b", false)
	require.NoError(t, err)

	assert.Equal(t, domain.UpdateItem, upd.Kind)
	assert.Equal(t, domain.StateEmptyFavorites, f.session.Snapshot().State)
}

func TestBrowseSession_ToggleUnknownListing(t *testing.T) {
	f := newSessionFixture(t, catalogABC(), nil)

	_, err := f.session.ToggleFavorite(context.Background(), "nope", true)

	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestBrowseSession_StorageFailureMarksDegraded(t *testing.T) {
	f := newSessionFixture(t, catalogABC(), nil)
	ctx := context.Background()
	_, err := f.session.Setup(ctx)
	require.NoError(t, err)
	f.session.Wait()

	f.storage.saveErr = errors.New("read-only file system")
	_, err = f.session.ToggleFavorite(ctx, "a", true)
	require.ErrorIs(t, err, domain.ErrStorage)

	snap := f.session.Snapshot()
	assert.ErrorIs(t, snap.Degraded, domain.ErrStorage)
	assert.False(t, snap.Items[0].Liked)

	f.storage.saveErr = nil
	_, err = f.session.ToggleFavorite(ctx, "a", true)
	require.NoError(t, err)
	assert.NoError(t, f.session.Snapshot().Degraded)
}

func TestBrowseSession_CorruptFavoritesDegradesToAll(t *testing.T) {
	f := newSessionFixture(t, catalogABC(), nil)
	f.storage.loadErr = &domain.StorageError{Op: domain.StorageOpLoad, Path: "memory", Err: errors.New("unexpected EOF")}

	_, err := f.session.Setup(context.Background())
	require.NoError(t, err)
	f.session.Wait()

	snap := f.session.Snapshot()
	assert.Equal(t, domain.StateAll, snap.State)
	assert.ErrorIs(t, snap.Degraded, domain.ErrStorage)
	assert.Len(t, snap.Items, 3)
}

func TestBrowseSession_CatalogLoadAfterCloseIsIgnored(t *testing.T) {
	release := make(chan time.Time)
	fetcher := new(MockCatalogFetcher)
	fetcher.On("FetchCatalog", mock.Anything).
		WaitUntil(release).
		Return(catalogABC(), nil)

	presenter := &recordingPresenter{}
	session := NewBrowseSession(
		NewCatalogClient(fetcher, newMapCache()),
		NewFavoritesStore(&memoryStorage{}, nil),
		presenter,
	)

	_, err := session.Configure(context.Background(), domain.StateAll)
	require.NoError(t, err)
	assert.True(t, session.Snapshot().Loading)

	done := make(chan struct{})
	go func() {
		session.Close()
		close(done)
	}()
	// Загрузка отпускается только после того, как сессия помечена закрытой
	require.Eventually(t, func() bool {
		_, err := session.ToggleFavorite(context.Background(), "late", true)
		return errors.Is(err, domain.ErrSessionClosed)
	}, time.Second, time.Millisecond)
	close(release)
	<-done

	assert.Empty(t, session.Snapshot().Items)
	assert.Empty(t, presenter.updates)

	_, err = session.Configure(context.Background(), domain.StateAll)
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestBrowseSession_EmptyCatalogShowsNothing(t *testing.T) {
	f := newSessionFixture(t, []domain.Listing{{ID: "x", Title: "No price"}}, nil)

	_, err := f.session.Setup(context.Background())
	require.NoError(t, err)
	f.session.Wait()

	snap := f.session.Snapshot()
	assert.Empty(t, snap.Items)
	assert.False(t, snap.Loading)
}

func TestBrowseSession_RefreshAppliesNewCatalog(t *testing.T) {
	fetcher := new(MockCatalogFetcher)
	fetcher.On("FetchCatalog", mock.Anything).Return(catalogABC(), nil).Once()
	fetcher.On("FetchCatalog", mock.Anything).Return([]domain.Listing{
		priced("b", "Bravo", 2),
		priced("d", "Delta", 4),
	}, nil).Once()

	session := NewBrowseSession(
		NewCatalogClient(fetcher, newMapCache()),
		NewFavoritesStore(&memoryStorage{}, nil),
		nil,
	)
	t.Cleanup(session.Close)
	ctx := context.Background()

	_, err := session.Configure(ctx, domain.StateAll)
	require.NoError(t, err)
	session.Wait()

	require.NoError(t, session.Refresh(ctx))
	session.Wait()

	snap := session.Snapshot()
	assert.Equal(t, []string{"b", "d"}, ids(snap.Items))
	assert.Equal(t, domain.DisplayUpdate{Kind: domain.UpdateDiff, Removed: []int{0, 2}, Added: []int{1}}, snap.LastUpdate)
}

func TestBrowseSession_PurgeFavorites(t *testing.T) {
	f := newSessionFixture(t, catalogABC(), []domain.Listing{priced("a", "Alpha", 1), priced("b", "Bravo", 2)})
	ctx := context.Background()
	_, err := f.session.Setup(ctx)
	require.NoError(t, err)

	upd, err := f.session.PurgeFavorites(ctx)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, upd.Removed)
	assert.Equal(t, domain.StateEmptyFavorites, f.session.Snapshot().State)
	assert.False(t, f.session.IsFavorite("a"))
}

func TestBrowseSession_ImageAndFreeResources(t *testing.T) {
	f := newSessionFixture(t, catalogABC(), nil)
	ctx := context.Background()
	_, err := f.session.Setup(ctx)
	require.NoError(t, err)
	f.session.Wait()

	img, ok := f.session.Image(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, []byte("img"), img)
	_, _ = f.session.Image(ctx, "a")
	f.fetcher.AssertNumberOfCalls(t, "FetchImage", 1)

	f.session.FreeResources()
	_, _ = f.session.Image(ctx, "a")
	f.fetcher.AssertNumberOfCalls(t, "FetchImage", 2)

	_, ok = f.session.Image(ctx, "unknown")
	assert.False(t, ok)
}

func TestBrowseSession_RefreshUpdatesChangedRecords(t *testing.T) {
	fetcher := new(MockCatalogFetcher)
	fetcher.On("FetchCatalog", mock.Anything).Return([]domain.Listing{priced("a", "Alpha", 1)}, nil).Once()
	fetcher.On("FetchCatalog", mock.Anything).Return([]domain.Listing{priced("a", "Alpha", 99)}, nil).Once()

	session := NewBrowseSession(
		NewCatalogClient(fetcher, newMapCache()),
		NewFavoritesStore(&memoryStorage{}, nil),
		nil,
	)
	t.Cleanup(session.Close)
	ctx := context.Background()

	_, err := session.Configure(ctx, domain.StateAll)
	require.NoError(t, err)
	session.Wait()

	require.NoError(t, session.Refresh(ctx))
	session.Wait()

	snap := session.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 99, *snap.Items[0].Price)

	listing, err := session.Listing("a")
	require.NoError(t, err)
	assert.Equal(t, 99, *listing.Price)
}

func TestBrowseSession_AllViewShowsCatalogVersionOfFavorite(t *testing.T) {
	stored := priced("b", "Bravo", 2)
	stored.Title = "Bravo (old)"
	f := newSessionFixture(t, []domain.Listing{priced("a", "Alpha", 1), priced("b", "Bravo", 5)}, []domain.Listing{stored})
	ctx := context.Background()

	_, err := f.session.Setup(ctx)
	require.NoError(t, err)
	_, err = f.session.Configure(ctx, domain.StateAll)
	require.NoError(t, err)
	f.session.Wait()

	snap := f.session.Snapshot()
	require.Equal(t, []string{"a", "b"}, ids(snap.Items))
	assert.Equal(t, "Bravo", snap.Items[1].Title)
	assert.Equal(t, 5, *snap.Items[1].Price)
	assert.True(t, snap.Items[1].Liked)
}

func TestBrowseSession_StaleLoadDoesNotOverrideNewer(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fetcher := new(MockCatalogFetcher)
	fetcher.On("FetchCatalog", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]domain.Listing{priced("old", "Old", 1)}, nil).Once()
	fetcher.On("FetchCatalog", mock.Anything).Return([]domain.Listing{priced("new", "New", 2)}, nil).Once()

	session := NewBrowseSession(
		NewCatalogClient(fetcher, newMapCache()),
		NewFavoritesStore(&memoryStorage{}, nil),
		nil,
	)
	t.Cleanup(session.Close)
	ctx := context.Background()

	_, err := session.Configure(ctx, domain.StateAll)
	require.NoError(t, err)
	<-started

	require.NoError(t, session.Refresh(ctx))
	require.Eventually(t, func() bool {
		snap := session.Snapshot()
		return !snap.Loading && len(snap.Items) == 1 && snap.Items[0].ID == "new"
	}, time.Second, time.Millisecond)

	close(release)
	session.Wait()

	assert.Equal(t, []string{"new"}, ids(session.Snapshot().Items))
	_, err = session.Listing("old")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestBrowseSession_SlowPublishDoesNotBlockReads(t *testing.T) {
	publishing := make(chan struct{})
	release := make(chan struct{})
	events := new(MockFavoriteEvents)
	events.On("PublishFavoriteChanged", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(publishing)
			<-release
		}).
		Return(nil).Once()

	fetcher := new(MockCatalogFetcher)
	fetcher.On("FetchCatalog", mock.Anything).Return(catalogABC(), nil)
	session := NewBrowseSession(
		NewCatalogClient(fetcher, newMapCache()),
		NewFavoritesStore(&memoryStorage{}, events),
		nil,
	)
	t.Cleanup(session.Close)
	ctx := context.Background()

	_, err := session.Configure(ctx, domain.StateAll)
	require.NoError(t, err)
	session.Wait()

	toggled := make(chan error, 1)
	go func() {
		_, err := session.ToggleFavorite(ctx, "a", true)
		toggled <- err
	}()
	<-publishing

	read := make(chan usecases_port.Snapshot, 1)
	go func() { read <- session.Snapshot() }()
	select {
	case snap := <-read:
		assert.True(t, snap.Items[0].Liked)
	case <-time.After(time.Second):
		t.Fatal("snapshot blocked while the event was being published")
	}

	close(release)
	require.NoError(t, <-toggled)
	events.AssertExpectations(t)
}

func TestBrowseSession_LoadFailureStaysVisibleAfterToggle(t *testing.T) {
	f := newSessionFixture(t, catalogABC(), nil)
	f.storage.loadErr = &domain.StorageError{Op: domain.StorageOpLoad, Path: "memory", Err: errors.New("unexpected EOF")}
	ctx := context.Background()

	_, err := f.session.Setup(ctx)
	require.NoError(t, err)
	f.session.Wait()

	_, err = f.session.ToggleFavorite(ctx, "a", true)
	require.NoError(t, err)
	assert.ErrorIs(t, f.session.Snapshot().Degraded, domain.ErrStorage)

	_, err = f.session.PurgeFavorites(ctx)
	require.NoError(t, err)
	assert.NoError(t, f.session.Snapshot().Degraded)
}
