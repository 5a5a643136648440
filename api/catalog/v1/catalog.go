package v1

import (
	"net/http"
	"time"
)

// Reasons carried by failed replies.
const (
	ReasonInvalidRequest         = "INVALID_REQUEST"
	ReasonUnauthenticated        = "UNAUTHENTICATED"
	ReasonMissingUpstreamData    = "MISSING_UPSTREAM_DATA"
	ReasonUpstreamUnavailable    = "UPSTREAM_UNAVAILABLE"
	ReasonDuplicateMovie         = "DUPLICATE_MOVIE"
	ReasonMovieNotFound          = "MOVIE_NOT_FOUND"
	ReasonInvalidRating          = "INVALID_RATING"
	ReasonAlreadyRated           = "ALREADY_RATED"
	ReasonRatingNotFound         = "RATING_NOT_FOUND"
	ReasonInsufficientCandidates = "INSUFFICIENT_CANDIDATES"
	ReasonUnknownMovieReference  = "UNKNOWN_MOVIE_REFERENCE"
	ReasonReconciliationConflict = "RECONCILIATION_CONFLICT"
	ReasonAlreadyInWatchlist     = "ALREADY_IN_WATCHLIST"
	ReasonWatchlistEntryNotFound = "WATCHLIST_ENTRY_NOT_FOUND"
	ReasonInvalidListOptions     = "INVALID_LIST_OPTIONS"
	ReasonInternal               = "INTERNAL"
)

// Reply is the envelope of every catalog operation. Failures are replies too:
// Success is false, Reason names the condition and Message describes it.
type Reply struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Reason  string      `json:"reason,omitempty"`
	Content interface{} `json:"content,omitempty"`

	Status int `json:"-"`
}

// HTTPStatus is consulted by the HTTP response encoder.
func (r *Reply) HTTPStatus() int {
	if r.Status == 0 {
		return http.StatusOK
	}
	return r.Status
}

type EmptyRequest struct{}

type CreateMovieRequest struct {
	Title string `json:"title" validate:"required,max=255"`
	Year  string `json:"year" validate:"omitempty,max=16"`
}

type GetMovieRequest struct {
	Id string `json:"id" validate:"required"`
}

type CastInput struct {
	Name string `json:"name" validate:"required,max=255"`
	Role string `json:"role" validate:"max=255"`
}

type RatingInput struct {
	Source string `json:"source" validate:"required,max=128"`
	Value  string `json:"value" validate:"required,max=32"`
}

type UserRatingInput struct {
	UserId string `json:"userId" validate:"required"`
	Rating int    `json:"rating"`
}

type UpdateMovieRequest struct {
	Id              string            `json:"id" validate:"required"`
	Title           string            `json:"title" validate:"max=255"`
	YearOfRelease   string            `json:"yearOfRelease" validate:"max=16"`
	Rated           string            `json:"rated" validate:"max=32"`
	Released        string            `json:"released" validate:"max=64"`
	Runtime         string            `json:"runtime" validate:"max=32"`
	Plot            string            `json:"plot"`
	Awards          string            `json:"awards" validate:"max=512"`
	Poster          string            `json:"poster" validate:"omitempty,max=1024"`
	TotalSeasons    string            `json:"totalSeasons" validate:"max=16"`
	IsActive        *bool             `json:"isActive"`
	Genres          []string          `json:"genres" validate:"dive,required,max=128"`
	Cast            []CastInput       `json:"cast" validate:"dive"`
	OmdbRatings     []RatingInput     `json:"omdbRatings" validate:"dive"`
	ExternalRatings []RatingInput     `json:"externalRatings" validate:"dive"`
	MovieRatings    []UserRatingInput `json:"movieRatings" validate:"dive"`
}

type DeleteMovieRequest struct {
	Id string `json:"id" validate:"required"`
}

type ListMoviesRequest struct {
	Title     *string `json:"title"`
	Year      *string `json:"year"`
	SortBy    string  `json:"sortBy"`
	SortOrder string  `json:"sortOrder"`
	Page      int     `json:"page"`
	PageSize  int     `json:"pageSize"`
}

type SearchMoviesRequest struct {
	Text string `json:"text" validate:"max=255"`
}

type CountMoviesRequest struct {
	Title *string `json:"title"`
	Year  *string `json:"year"`
}

type ReplaceTopMoviesRequest struct {
	MovieIds []string `json:"movieIds" validate:"required"`
}

type RateMovieRequest struct {
	MovieId  string `json:"movieId" validate:"required"`
	RatingId string `json:"ratingId"`
	Rating   int    `json:"rating"`
}

type DeleteRatingRequest struct {
	RatingId string `json:"ratingId" validate:"required"`
}

type AddToWatchlistRequest struct {
	MovieId string `json:"movieId" validate:"required"`
}

type RemoveFromWatchlistRequest struct {
	Id string `json:"id" validate:"required"`
}

type GenreView struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type CastView struct {
	Id   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type ExternalRatingView struct {
	Source string `json:"source"`
	Rating string `json:"rating"`
}

type OmdbRatingView struct {
	Source string `json:"source"`
	Value  string `json:"value"`
}

type MovieRatingView struct {
	Id          string    `json:"id"`
	MovieId     string    `json:"movieId"`
	UserId      string    `json:"userId"`
	Rating      int       `json:"rating"`
	IsUserRated bool      `json:"isUserRated"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type UserRatingView struct {
	MovieRatingView
	MovieTitle    string `json:"movieTitle"`
	YearOfRelease string `json:"yearOfRelease"`
	Poster        string `json:"poster"`
}

type WatchlistEntryView struct {
	Id        string    `json:"id"`
	MovieId   string    `json:"movieId"`
	UserId    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type MovieView struct {
	Id               string               `json:"id"`
	Title            string               `json:"title"`
	YearOfRelease    string               `json:"yearOfRelease"`
	Rated            string               `json:"rated"`
	Released         string               `json:"released"`
	Runtime          string               `json:"runtime"`
	Plot             string               `json:"plot"`
	Awards           string               `json:"awards"`
	Poster           string               `json:"poster"`
	TotalSeasons     string               `json:"totalSeasons"`
	IsActive         bool                 `json:"isActive"`
	Genres           []GenreView          `json:"genres"`
	Cast             []CastView           `json:"cast"`
	ExternalRatings  []ExternalRatingView `json:"externalRatings"`
	OmdbRatings      []OmdbRatingView     `json:"omdbRatings"`
	MovieRatings     []MovieRatingView    `json:"movieRatings"`
	Watchlist        []WatchlistEntryView `json:"userWatchlists"`
	Rating           float64              `json:"rating"`
	UserRating       int                  `json:"userRating"`
	IsUserRated      bool                 `json:"isUserRated"`
	IsInWatchlist    bool                 `json:"isMovieWatchlist"`
	WatchlistEntryId string               `json:"watchlistEntryId,omitempty"`
	// FirstAddedToWatchlistAt is "Today", "N days ago" or empty.
	FirstAddedToWatchlistAt string    `json:"firstAddedToWatchlistAt"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

type MoviePageView struct {
	Items    []*MovieView `json:"items"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
	Total    int64        `json:"total"`
}

type CountView struct {
	Count int64 `json:"count"`
}

type HealthView struct {
	Status string `json:"status"`
}
