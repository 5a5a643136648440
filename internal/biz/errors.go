package biz

import "errors"

var (
	// ErrMissingUpstreamData is returned when the provider has no record for a title.
	ErrMissingUpstreamData = errors.New("missing upstream data")
	// ErrUpstreamUnavailable is returned when the provider cannot be reached.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	ErrDuplicateMovie = errors.New("movie already exists")
	ErrMovieNotFound  = errors.New("movie not found")

	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrAlreadyRated   = errors.New("movie already rated")
	ErrRatingNotFound = errors.New("rating not found")

	ErrInsufficientCandidates = errors.New("insufficient top movie candidates")
	ErrUnknownMovieReference  = errors.New("unknown movie reference")

	// ErrReconciliationConflict is returned when a natural-key insert lost a
	// race and the winning row could not be read back.
	ErrReconciliationConflict = errors.New("reconciliation conflict")

	ErrAlreadyInWatchlist     = errors.New("movie already in watchlist")
	ErrWatchlistEntryNotFound = errors.New("watchlist entry not found")

	ErrInvalidListOptions = errors.New("invalid list options")

	ErrUserNotFound = errors.New("user not found")
)
