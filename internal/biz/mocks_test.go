package biz

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// passTx runs fn inline and counts invocations.
type passTx struct {
	calls int
}

func (t *passTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type MockMovieRepo struct {
	mock.Mock
}

func (m *MockMovieRepo) CreateMovie(ctx context.Context, in *Ingestion) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *MockMovieRepo) UpdateMovie(ctx context.Context, patch *MoviePatch) (*Movie, error) {
	args := m.Called(ctx, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Movie), args.Error(1)
}

func (m *MockMovieRepo) DeleteMovie(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMovieRepo) GetMovie(ctx context.Context, id string) (*Movie, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Movie), args.Error(1)
}

func (m *MockMovieRepo) ExistsByTitleYear(ctx context.Context, title, year string) (bool, error) {
	args := m.Called(ctx, title, year)
	return args.Bool(0), args.Error(1)
}

func (m *MockMovieRepo) CountExisting(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMovieRepo) CountMovies(ctx context.Context, title, year *string) (int64, error) {
	args := m.Called(ctx, title, year)
	return args.Get(0).(int64), args.Error(1)
}

type MockAggregateRepo struct {
	mock.Mock
}

func (m *MockAggregateRepo) GetAggregate(ctx context.Context, id string, isAdmin bool, viewerID string) (*MovieAggregate, error) {
	args := m.Called(ctx, id, isAdmin, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MovieAggregate), args.Error(1)
}

func (m *MockAggregateRepo) ListAggregates(ctx context.Context, query *MovieListQuery, isAdmin bool, viewerID string) (*MoviePage, error) {
	args := m.Called(ctx, query, isAdmin, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MoviePage), args.Error(1)
}

func (m *MockAggregateRepo) TopAggregates(ctx context.Context, isAdmin bool, viewerID string) ([]*MovieAggregate, error) {
	args := m.Called(ctx, isAdmin, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*MovieAggregate), args.Error(1)
}

func (m *MockAggregateRepo) RecentAggregates(ctx context.Context, limit int, isAdmin bool, viewerID string) ([]*MovieAggregate, error) {
	args := m.Called(ctx, limit, isAdmin, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*MovieAggregate), args.Error(1)
}

func (m *MockAggregateRepo) SearchAggregates(ctx context.Context, text string, isAdmin bool, viewerID string) ([]*MovieAggregate, error) {
	args := m.Called(ctx, text, isAdmin, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*MovieAggregate), args.Error(1)
}

func (m *MockAggregateRepo) WatchlistAggregates(ctx context.Context, userID string, isAdmin bool) ([]*MovieAggregate, error) {
	args := m.Called(ctx, userID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*MovieAggregate), args.Error(1)
}

type MockRatingRepo struct {
	mock.Mock
}

func (m *MockRatingRepo) GetRating(ctx context.Context, id string) (*MovieRating, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MovieRating), args.Error(1)
}

func (m *MockRatingRepo) FindRating(ctx context.Context, movieID, userID string) (*MovieRating, error) {
	args := m.Called(ctx, movieID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MovieRating), args.Error(1)
}

func (m *MockRatingRepo) InsertRating(ctx context.Context, rating *MovieRating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *MockRatingRepo) UpdateRatingValue(ctx context.Context, id string, value int) (*MovieRating, error) {
	args := m.Called(ctx, id, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MovieRating), args.Error(1)
}

func (m *MockRatingRepo) DeleteRating(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRatingRepo) ListUserRatings(ctx context.Context, userID string) ([]*UserRating, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*UserRating), args.Error(1)
}

func (m *MockRatingRepo) InvalidateAverage(ctx context.Context, movieID string) {
	m.Called(ctx, movieID)
}

type MockTopMovieRepo struct {
	mock.Mock
}

func (m *MockTopMovieRepo) ReplaceTopMovies(ctx context.Context, movieIDs []string) error {
	args := m.Called(ctx, movieIDs)
	return args.Error(0)
}

func (m *MockTopMovieRepo) TopMovieIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTopMovieRepo) InvalidateTopMovies(ctx context.Context) {
	m.Called(ctx)
}

type MockWatchlistRepo struct {
	mock.Mock
}

func (m *MockWatchlistRepo) FindEntry(ctx context.Context, userID, movieID string) (*WatchlistEntry, error) {
	args := m.Called(ctx, userID, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WatchlistEntry), args.Error(1)
}

func (m *MockWatchlistRepo) GetEntry(ctx context.Context, id string) (*WatchlistEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WatchlistEntry), args.Error(1)
}

func (m *MockWatchlistRepo) AddEntry(ctx context.Context, entry *WatchlistEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockWatchlistRepo) DeleteEntry(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWatchlistRepo) CountUserEntries(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetUser(ctx context.Context, id string) (*ApplicationUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ApplicationUser), args.Error(1)
}

func (m *MockUserRepo) SetFirstAddedToWatchlistAt(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MockMetadataProvider struct {
	mock.Mock
}

func (m *MockMetadataProvider) Fetch(ctx context.Context, title, year string) (*ProviderRecord, error) {
	args := m.Called(ctx, title, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProviderRecord), args.Error(1)
}
