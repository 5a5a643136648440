package biz

import (
	"context"
	"time"
)

// Movie domain model
type Movie struct {
	ID            string
	Title         string
	YearOfRelease string
	Rated         string
	Released      string
	Runtime       string
	Plot          string
	Awards        string
	Poster        string
	TotalSeasons  string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Genre is keyed by Name.
type Genre struct {
	ID   string
	Name string
}

// Cast is keyed by Name + Role.
type Cast struct {
	ID   string
	Name string
	Role string
}

// ExternalRating is a critic/source rating independent of users.
type ExternalRating struct {
	ID     string
	Source string
	Rating string
}

// OmdbRating is a provider rating captured at ingestion time.
type OmdbRating struct {
	ID     string
	Source string
	Value  string
}

// MovieRating is one user's rating of one movie.
type MovieRating struct {
	ID          string
	MovieID     string
	UserID      string
	Rating      int
	IsUserRated bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserRating is a MovieRating joined with its movie's summary fields.
type UserRating struct {
	MovieRating
	MovieTitle    string
	YearOfRelease string
	Poster        string
}

// WatchlistEntry is a (user, movie) membership record.
type WatchlistEntry struct {
	ID        string
	MovieID   string
	UserID    string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplicationUser is owned by the identity collaborator; only the watchlist
// timestamp is written here.
type ApplicationUser struct {
	ID                      string
	IsAdmin                 bool
	IsTrustedMember         bool
	FirstAddedToWatchlistAt *time.Time
}

// MovieAggregate is a Movie assembled for one viewer.
type MovieAggregate struct {
	Movie
	Genres          []Genre
	Cast            []Cast
	ExternalRatings []ExternalRating
	OmdbRatings     []OmdbRating
	// MovieRatings and Watchlist only ever hold the viewer's own rows.
	MovieRatings  []MovieRating
	Watchlist     []WatchlistEntry
	AverageRating float64
	Viewer        *ApplicationUser
}

// IsUserRated reports whether the viewer has rated the movie.
func (a *MovieAggregate) IsUserRated() bool {
	return len(a.MovieRatings) > 0
}

// IsInWatchlist reports whether the movie is on the viewer's watchlist.
func (a *MovieAggregate) IsInWatchlist() bool {
	return len(a.Watchlist) > 0
}

// SortField enumerates list sort keys.
type SortField string

const (
	SortNone  SortField = ""
	SortTitle SortField = "title"
	SortYear  SortField = "year"
)

// SortOrder enumerates list sort directions.
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	TopMoviesSize   = 10
	RecentMovieSize = 10
)

// MovieListQuery domain model
type MovieListQuery struct {
	Title     *string
	Year      *string
	SortField SortField
	SortOrder SortOrder
	Page      int
	PageSize  int
}

// MoviePage domain model
type MoviePage struct {
	Items    []*MovieAggregate
	Page     int
	PageSize int
	Total    int64
}

// MoviePatch carries a partial update. Empty scalars mean "no change".
type MoviePatch struct {
	ID              string
	Title           string
	YearOfRelease   string
	Rated           string
	Released        string
	Runtime         string
	Plot            string
	Awards          string
	Poster          string
	TotalSeasons    string
	IsActive        *bool
	Genres          []Genre
	Cast            []Cast
	OmdbRatings     []OmdbRating
	ExternalRatings []ExternalRating
	MovieRatings    []MovieRating
}

// ProviderRecord is the upstream metadata shape.
type ProviderRecord struct {
	Title        string
	Year         string
	Rated        string
	Released     string
	Runtime      string
	Genre        string
	Actors       string
	Plot         string
	Awards       string
	Poster       string
	TotalSeasons string
	Ratings      []ProviderRating
}

// ProviderRating is one {source, value} pair from the provider.
type ProviderRating struct {
	Source string
	Value  string
}

// Ingestion is the normalized output of one provider record.
type Ingestion struct {
	Movie       *Movie
	Genres      []Genre
	Cast        []Cast
	OmdbRatings []OmdbRating
}

// Transaction runs fn atomically; repos called with the ctx passed to fn
// participate in the same transaction.
type Transaction interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// MovieRepo defines the repository interface for movies
type MovieRepo interface {
	// CreateMovie persists the movie, reconciling genres and cast by natural
	// key and writing omdb ratings and both join tables.
	CreateMovie(ctx context.Context, in *Ingestion) error
	UpdateMovie(ctx context.Context, patch *MoviePatch) (*Movie, error)
	DeleteMovie(ctx context.Context, id string) error
	GetMovie(ctx context.Context, id string) (*Movie, error)
	ExistsByTitleYear(ctx context.Context, title, year string) (bool, error)
	CountExisting(ctx context.Context, ids []string) (int64, error)
	CountMovies(ctx context.Context, title, year *string) (int64, error)
}

// AggregateRepo assembles movie aggregates for a viewer. An empty viewerID
// means anonymous.
type AggregateRepo interface {
	GetAggregate(ctx context.Context, id string, isAdmin bool, viewerID string) (*MovieAggregate, error)
	ListAggregates(ctx context.Context, query *MovieListQuery, isAdmin bool, viewerID string) (*MoviePage, error)
	TopAggregates(ctx context.Context, isAdmin bool, viewerID string) ([]*MovieAggregate, error)
	RecentAggregates(ctx context.Context, limit int, isAdmin bool, viewerID string) ([]*MovieAggregate, error)
	SearchAggregates(ctx context.Context, text string, isAdmin bool, viewerID string) ([]*MovieAggregate, error)
	WatchlistAggregates(ctx context.Context, userID string, isAdmin bool) ([]*MovieAggregate, error)
}

// RatingRepo defines the repository interface for ratings
type RatingRepo interface {
	GetRating(ctx context.Context, id string) (*MovieRating, error)
	FindRating(ctx context.Context, movieID, userID string) (*MovieRating, error)
	InsertRating(ctx context.Context, rating *MovieRating) error
	UpdateRatingValue(ctx context.Context, id string, value int) (*MovieRating, error)
	DeleteRating(ctx context.Context, id string) error
	ListUserRatings(ctx context.Context, userID string) ([]*UserRating, error)
	// InvalidateAverage drops any cached average for movieID.
	InvalidateAverage(ctx context.Context, movieID string)
}

// TopMovieRepo stores the curated list as a single replaceable set.
type TopMovieRepo interface {
	ReplaceTopMovies(ctx context.Context, movieIDs []string) error
	TopMovieIDs(ctx context.Context) ([]string, error)
	InvalidateTopMovies(ctx context.Context)
}

// WatchlistRepo defines the repository interface for watchlists
type WatchlistRepo interface {
	FindEntry(ctx context.Context, userID, movieID string) (*WatchlistEntry, error)
	GetEntry(ctx context.Context, id string) (*WatchlistEntry, error)
	AddEntry(ctx context.Context, entry *WatchlistEntry) error
	DeleteEntry(ctx context.Context, id string) error
	CountUserEntries(ctx context.Context, userID string) (int64, error)
}

// UserRepo is the slice of the identity collaborator the catalog touches.
type UserRepo interface {
	GetUser(ctx context.Context, id string) (*ApplicationUser, error)
	SetFirstAddedToWatchlistAt(ctx context.Context, id string, at time.Time) error
}

// MetadataProvider fetches upstream movie metadata.
type MetadataProvider interface {
	// Fetch returns ErrMissingUpstreamData when the provider has no such
	// title and ErrUpstreamUnavailable on transport failure.
	Fetch(ctx context.Context, title, year string) (*ProviderRecord, error)
}
