package biz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sync/singleflight"
)

// MovieUseCase handles movie ingestion, aggregate reads and the curated list.
type MovieUseCase struct {
	tx         Transaction
	repo       MovieRepo
	aggregates AggregateRepo
	top        TopMovieRepo
	ratings    RatingRepo
	provider   MetadataProvider
	fetches    singleflight.Group
	now        func() time.Time
	log        *log.Helper
}

// NewMovieUseCase creates a new MovieUseCase instance
func NewMovieUseCase(tx Transaction, repo MovieRepo, aggregates AggregateRepo, top TopMovieRepo, ratings RatingRepo, provider MetadataProvider, logger log.Logger) *MovieUseCase {
	return &MovieUseCase{
		tx:         tx,
		repo:       repo,
		aggregates: aggregates,
		top:        top,
		ratings:    ratings,
		provider:   provider,
		now:        func() time.Time { return time.Now().UTC() },
		log:        log.NewHelper(logger),
	}
}

// CreateMovie ingests a movie from the metadata provider.
func (uc *MovieUseCase) CreateMovie(ctx context.Context, title, year string) (*Movie, error) {
	rec, err := uc.fetch(ctx, title, year)
	if err != nil {
		if errors.Is(err, ErrMissingUpstreamData) {
			uc.log.Warnf("provider has no record for title %q (%s)", title, year)
		}
		return nil, err
	}

	in, err := Normalize(&Movie{Title: title, YearOfRelease: year}, rec, uc.now())
	if err != nil {
		return nil, err
	}
	in.Movie.YearOfRelease = NormalizeYear(in.Movie.YearOfRelease)

	err = uc.tx.InTx(ctx, func(ctx context.Context) error {
		exists, err := uc.repo.ExistsByTitleYear(ctx, in.Movie.Title, in.Movie.YearOfRelease)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateMovie
		}
		return uc.repo.CreateMovie(ctx, in)
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateMovie) {
			uc.log.Infof("movie %q (%s) already exists", in.Movie.Title, in.Movie.YearOfRelease)
		}
		return nil, err
	}

	uc.log.Infof("created movie %q (id: %s)", in.Movie.Title, in.Movie.ID)
	return in.Movie, nil
}

// fetch collapses concurrent lookups of the same title and year into a
// single upstream request. The shared request is detached from any one
// caller's cancellation; each caller stops waiting when its own ctx ends.
func (uc *MovieUseCase) fetch(ctx context.Context, title, year string) (*ProviderRecord, error) {
	key := strings.ToLower(strings.TrimSpace(title)) + "|" + strings.TrimSpace(year)
	shared := context.WithoutCancel(ctx)
	ch := uc.fetches.DoChan(key, func() (interface{}, error) {
		return uc.provider.Fetch(shared, title, year)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ProviderRecord), nil
	}
}

// GetMovie assembles one movie for the viewer.
func (uc *MovieUseCase) GetMovie(ctx context.Context, id string, isAdmin bool, viewerID string) (*MovieAggregate, error) {
	agg, err := uc.aggregates.GetAggregate(ctx, id, isAdmin, viewerID)
	if err != nil {
		return nil, err
	}
	return agg, nil
}

// ListMovies returns a filtered, sorted page. Admins get the full result set.
func (uc *MovieUseCase) ListMovies(ctx context.Context, query *MovieListQuery, isAdmin bool, viewerID string) (*MoviePage, error) {
	if query == nil {
		query = &MovieListQuery{}
	}
	if err := normalizeListQuery(query); err != nil {
		return nil, err
	}
	page, err := uc.aggregates.ListAggregates(ctx, query, isAdmin, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	return page, nil
}

func normalizeListQuery(q *MovieListQuery) error {
	if q.Page < 0 {
		return fmt.Errorf("%w: page must be greater than or equal to 1", ErrInvalidListOptions)
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize < 0 || q.PageSize > MaxPageSize {
		return fmt.Errorf("%w: page size must be between 1 and %d", ErrInvalidListOptions, MaxPageSize)
	}
	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}
	switch q.SortField {
	case SortNone, SortTitle, SortYear:
	default:
		return fmt.Errorf("%w: you can only sort by title or year", ErrInvalidListOptions)
	}
	switch q.SortOrder {
	case "":
		q.SortOrder = SortAscending
	case SortAscending, SortDescending:
	default:
		return fmt.Errorf("%w: sort order must be asc or desc", ErrInvalidListOptions)
	}
	return nil
}

// TopMovies returns the curated list.
func (uc *MovieUseCase) TopMovies(ctx context.Context, isAdmin bool, viewerID string) ([]*MovieAggregate, error) {
	movies, err := uc.aggregates.TopAggregates(ctx, isAdmin, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get top movies: %w", err)
	}
	return movies, nil
}

// RecentMovies returns the most recently created movies.
func (uc *MovieUseCase) RecentMovies(ctx context.Context, isAdmin bool, viewerID string) ([]*MovieAggregate, error) {
	movies, err := uc.aggregates.RecentAggregates(ctx, RecentMovieSize, isAdmin, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent movies: %w", err)
	}
	return movies, nil
}

// SearchMovies matches text against titles.
func (uc *MovieUseCase) SearchMovies(ctx context.Context, text string, isAdmin bool, viewerID string) ([]*MovieAggregate, error) {
	movies, err := uc.aggregates.SearchAggregates(ctx, strings.TrimSpace(text), isAdmin, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to search movies: %w", err)
	}
	return movies, nil
}

// CountMovies counts movies matching the optional filters.
func (uc *MovieUseCase) CountMovies(ctx context.Context, title, year *string) (int64, error) {
	n, err := uc.repo.CountMovies(ctx, title, year)
	if err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return n, nil
}

// UpdateMovie merges non-empty fields and upserts child collections.
func (uc *MovieUseCase) UpdateMovie(ctx context.Context, patch *MoviePatch) (*Movie, error) {
	if patch.YearOfRelease != "" {
		patch.YearOfRelease = NormalizeYear(patch.YearOfRelease)
	}
	for i := range patch.OmdbRatings {
		patch.OmdbRatings[i].Value = NormalizeRatingValue(patch.OmdbRatings[i].Value)
	}
	for _, r := range patch.MovieRatings {
		if r.Rating < 1 || r.Rating > 5 {
			return nil, ErrInvalidRating
		}
	}

	var movie *Movie
	err := uc.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		movie, err = uc.repo.UpdateMovie(ctx, patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(patch.MovieRatings) > 0 {
		uc.ratings.InvalidateAverage(ctx, movie.ID)
	}
	uc.log.Infof("updated movie %q (id: %s)", movie.Title, movie.ID)
	return movie, nil
}

// DeleteMovie removes a movie and everything hanging off it.
func (uc *MovieUseCase) DeleteMovie(ctx context.Context, id string) error {
	err := uc.tx.InTx(ctx, func(ctx context.Context) error {
		return uc.repo.DeleteMovie(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.top.InvalidateTopMovies(ctx)
	uc.ratings.InvalidateAverage(ctx, id)
	uc.log.Infof("deleted movie %s", id)
	return nil
}

// ReplaceTopMovies atomically swaps the curated list for candidateIDs.
func (uc *MovieUseCase) ReplaceTopMovies(ctx context.Context, candidateIDs []string) error {
	ids := dedupe(candidateIDs)
	if len(ids) < TopMoviesSize {
		return fmt.Errorf("%w: got %d, need at least %d", ErrInsufficientCandidates, len(ids), TopMoviesSize)
	}

	err := uc.tx.InTx(ctx, func(ctx context.Context) error {
		n, err := uc.repo.CountExisting(ctx, ids)
		if err != nil {
			return err
		}
		if n != int64(len(ids)) {
			return fmt.Errorf("%w: %d of %d movies not found", ErrUnknownMovieReference, int64(len(ids))-n, len(ids))
		}
		return uc.top.ReplaceTopMovies(ctx, ids)
	})
	if err != nil {
		return err
	}

	uc.top.InvalidateTopMovies(ctx)
	uc.log.Infof("replaced top movies with %d entries", len(ids))
	return nil
}

// dedupe keeps first occurrences and drops blanks.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
