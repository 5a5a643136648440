package service

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"time"

	v1 "github.com/moviehub/catalog/api/catalog/v1"
	"github.com/moviehub/catalog/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-playground/validator/v10"
)

var _ v1.CatalogHTTPServer = (*CatalogService)(nil)

// CatalogService is the catalog façade. Every outcome, success or domain
// failure, is a *v1.Reply; the viewer comes from the request context.
type CatalogService struct {
	movies    *biz.MovieUseCase
	ratings   *biz.RatingUseCase
	watchlist *biz.WatchlistUseCase
	validate  *validator.Validate
	now       func() time.Time
	log       *log.Helper
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(movies *biz.MovieUseCase, ratings *biz.RatingUseCase, watchlist *biz.WatchlistUseCase, logger log.Logger) *CatalogService {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &CatalogService{
		movies:    movies,
		ratings:   ratings,
		watchlist: watchlist,
		validate:  validate,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log.NewHelper(log.With(logger, "module", "service/catalog")),
	}
}

// CreateMovie ingests a movie from the metadata provider.
func (s *CatalogService) CreateMovie(ctx context.Context, req *v1.CreateMovieRequest) (*v1.Reply, error) {
	if err := s.validate.Struct(req); err != nil {
		return s.fail(ctx, "create movie", err)
	}
	movie, err := s.movies.CreateMovie(ctx, strings.TrimSpace(req.Title), strings.TrimSpace(req.Year))
	if err != nil {
		return s.fail(ctx, "create movie", err)
	}
	return ok(http.StatusCreated, "movie created", movieView(movie)), nil
}

func (s *CatalogService) GetMovie(ctx context.Context, req *v1.GetMovieRequest) (*v1.Reply, error) {
	if err := s.validate.Struct(req); err != nil {
		return s.fail(ctx, "get movie", err)
	}
	viewer := ViewerFromContext(ctx)
	agg, err := s.movies.GetMovie(ctx, req.Id, viewer.IsAdmin, viewer.ID)
	if err != nil {
		return s.fail(ctx, "get movie", err)
	}
	return ok(http.StatusOK, "movie found", aggregateView(agg, s.now())), nil
}

// UpdateMovie merges the non-empty fields of req onto the stored movie.
func (s *CatalogService) UpdateMovie(ctx context.Context, req *v1.UpdateMovieRequest) (*v1.Reply, error) {
	if err := s.validate.Struct(req); err != nil {
		return s.fail(ctx, "update movie", err)
	}

	patch := &biz.MoviePatch{
		ID:            req.Id,
		Title:         req.Title,
		YearOfRelease: req.YearOfRelease,
		Rated:         req.Rated,
		Released:      req.Released,
		Runtime:       req.Runtime,
		Plot:          req.Plot,
		Awards:        req.Awards,
		Poster:        req.Poster,
		TotalSeasons:  req.TotalSeasons,
		IsActive:      req.IsActive,
	}
	for _, name := range req.Genres {
		patch.Genres = append(patch.Genres, biz.Genre{Name: strings.TrimSpace(name)})
	}
	for _, c := range req.Cast {
		patch.Cast = append(patch.Cast, biz.Cast{Name: strings.TrimSpace(c.Name), Role: strings.TrimSpace(c.Role)})
	}
	for _, r := range req.OmdbRatings {
		patch.OmdbRatings = append(patch.OmdbRatings, biz.OmdbRating{Source: r.Source, Value: r.Value})
	}
	for _, r := range req.ExternalRatings {
		patch.ExternalRatings = append(patch.ExternalRatings, biz.ExternalRating{Source: r.Source, Rating: r.Value})
	}
	for _, r := range req.MovieRatings {
		patch.MovieRatings = append(patch.MovieRatings, biz.MovieRating{UserID: r.UserId, Rating: r.Rating})
	}

	movie, err := s.movies.UpdateMovie(ctx, patch)
	if err != nil {
		return s.fail(ctx, "update movie", err)
	}
	return ok(http.StatusOK, "movie updated", movieView(movie)), nil
}

func (s *CatalogService) DeleteMovie(ctx context.Context, req *v1.DeleteMovieRequest) (*v1.Reply, error) {
	if err := s.validate.Struct(req); err != nil {
		return s.fail(ctx, "delete movie", err)
	}
	if err := s.movies.DeleteMovie(ctx, req.Id); err != nil {
		return s.fail(ctx, "delete movie", err)
	}
	return ok(http.StatusOK, "movie deleted", nil), nil
}

// ListMovies returns a filtered, sorted page. Admins receive every match.
func (s *CatalogService) ListMovies(ctx context.Context, req *v1.ListMoviesRequest) (*v1.Reply, error) {
	viewer := ViewerFromContext(ctx)
	query := &biz.MovieListQuery{
		Title:     req.Title,
		Year:      req.Year,
		SortField: biz.SortField(strings.ToLower(strings.TrimSpace(req.SortBy))),
		SortOrder: biz.SortOrder(strings.ToLower(strings.TrimSpace(req.SortOrder))),
		Page:      req.Page,
		PageSize:  req.PageSize,
	}

	page, err := s.movies.ListMovies(ctx, query, viewer.IsAdmin, viewer.ID)
	if err != nil {
		return s.fail(ctx, "list movies", err)
	}
	return ok(http.StatusOK, "movies found", &v1.MoviePageView{
		Items:    aggregateViews(page.Items, s.now()),
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    page.Total,
	}), nil
}

func (s *CatalogService) SearchMovies(ctx context.Context, req *v1.SearchMoviesRequest) (*v1.Reply, error) {
	if err := s.validate.Struct(req); err != nil {
		return s.fail(ctx, "search movies", err)
	}
	viewer := ViewerFromContext(ctx)
	aggs, err := s.movies.SearchMovies(ctx, req.Text, viewer.IsAdmin, viewer.ID)
	if err != nil {
		return s.fail(ctx, "search movies", err)
	}
	return ok(http.StatusOK, "movies found", aggregateViews(aggs, s.now())), nil
}

func (s *CatalogService) CountMovies(ctx context.Context, req *v1.CountMoviesRequest) (*v1.Reply, error) {
	n, err := s.movies.CountMovies(ctx, req.Title, req.Year)
	if err != nil {
		return s.fail(ctx, "count movies", err)
	}
	return ok(http.StatusOK, "movies counted", &v1.CountView{Count: n}), nil
}

func (s *CatalogService) GetTopMovies(ctx context.Context, _ *v1.EmptyRequest) (*v1.Reply, error) {
	viewer := ViewerFromContext(ctx)
	aggs, err := s.movies.TopMovies(ctx, viewer.IsAdmin, viewer.ID)
	if err != nil {
		return s.fail(ctx, "get top movies", err)
	}
	return ok(http.StatusOK, "top movies found", aggregateViews(aggs, s.now())), nil
}

// ReplaceTopMovies swaps the curated list in one step.
func (s *CatalogService) ReplaceTopMovies(ctx context.Context, req *v1.ReplaceTopMoviesRequest) (*v1.Reply, error) {
	if err := s.validate.Struct(req); err != nil {
		return s.fail(ctx, "replace top movies", err)
	}
	if err := s.movies.ReplaceTopMovies(ctx, req.MovieIds); err != nil {
		return s.fail(ctx, "replace top movies", err)
	}
	return ok(http.StatusOK, "top movies replaced", nil), nil
}

func (s *CatalogService) GetRecentMovies(ctx context.Context, _ *v1.EmptyRequest) (*v1.Reply, error) {
	viewer := ViewerFromContext(ctx)
	aggs, err := s.movies.RecentMovies(ctx, viewer.IsAdmin, viewer.ID)
	if err != nil {
		return s.fail(ctx, "get recent movies", err)
	}
	return ok(http.StatusOK, "recent movies found", aggregateViews(aggs, s.now())), nil
}

// RateMovie records the viewer's rating. A first rating replies 201.
func (s *CatalogService) RateMovie(ctx context.Context, req *v1.RateMovieRequest) (*v1.Reply, error) {
	viewer := ViewerFromContext(ctx)
	if viewer.ID == "" {
		return unauthenticated(), nil
	}
	if err := s.validate.Struct(req); err != nil {
		return s.fail(ctx, "rate movie", err)
	}

	rating, created, err := s.ratings.RateMovie(ctx, &biz.RateRequest{
		MovieID:  req.MovieId,
		UserID:   viewer.ID,
		RatingID: req.RatingId,
		Value:    req.Rating,
		IsAdmin:  viewer.IsAdmin,
	})
	if err != nil {
		return s.fail(ctx, "rate movie", err)
	}
	if created {
		return ok(http.StatusCreated, "rating created", ratingView(rating)), nil
	}
	return ok(http.StatusOK, "rating updated", ratingView(rating)), nil
}

// DeleteRating removes a rating by id. Only its owner or an admin may do so.
func (s *CatalogService) DeleteRating(ctx context.Context, req *v1.DeleteRatingRequest) (*v1.Reply, error) {
	viewer := ViewerFromContext(ctx)
	if viewer.ID == "" {
		return unauthenticated(), nil
	}
	if err := s.validate.Struct(req); err != nil {
		return s.fail(ctx, "delete rating", err)
	}

	if !viewer.IsAdmin {
		owned, err := s.ownsRating(ctx, req.RatingId, viewer.ID)
		if err != nil {
			return s.fail(ctx, "delete rating", err)
		}
		if !owned {
			return s.fail(ctx, "delete rating", biz.ErrRatingNotFound)
		}
	}

	if err := s.ratings.DeleteRating(ctx, req.RatingId); err != nil {
		return s.fail(ctx, "delete rating", err)
	}
	return ok(http.StatusOK, "rating deleted", nil), nil
}

func (s *CatalogService) ownsRating(ctx context.Context, ratingID, userID string) (bool, error) {
	ratings, err := s.ratings.ListUserRatings(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, r := range ratings {
		if r.ID == ratingID {
			return true, nil
		}
	}
	return false, nil
}

func (s *CatalogService) ListUserRatings(ctx context.Context, _ *v1.EmptyRequest) (*v1.Reply, error) {
	viewer := ViewerFromContext(ctx)
	if viewer.ID == "" {
		return unauthenticated(), nil
	}
	ratings, err := s.ratings.ListUserRatings(ctx, viewer.ID)
	if err != nil {
		return s.fail(ctx, "list user ratings", err)
	}
	return ok(http.StatusOK, "ratings found", userRatingViews(ratings)), nil
}

func (s *CatalogService) AddToWatchlist(ctx context.Context, req *v1.AddToWatchlistRequest) (*v1.Reply, error) {
	viewer := ViewerFromContext(ctx)
	if viewer.ID == "" {
		return unauthenticated(), nil
	}
	if err := s.validate.Struct(req); err != nil {
		return s.fail(ctx, "add to watchlist", err)
	}
	entry, err := s.watchlist.AddToWatchlist(ctx, req.MovieId, viewer.ID)
	if err != nil {
		return s.fail(ctx, "add to watchlist", err)
	}
	return ok(http.StatusCreated, "added to watchlist", watchlistView(entry)), nil
}

func (s *CatalogService) RemoveFromWatchlist(ctx context.Context, req *v1.RemoveFromWatchlistRequest) (*v1.Reply, error) {
	viewer := ViewerFromContext(ctx)
	if viewer.ID == "" {
		return unauthenticated(), nil
	}
	if err := s.validate.Struct(req); err != nil {
		return s.fail(ctx, "remove from watchlist", err)
	}
	if err := s.watchlist.RemoveFromWatchlist(ctx, req.Id, viewer.ID); err != nil {
		return s.fail(ctx, "remove from watchlist", err)
	}
	return ok(http.StatusOK, "removed from watchlist", nil), nil
}

func (s *CatalogService) ListWatchlist(ctx context.Context, _ *v1.EmptyRequest) (*v1.Reply, error) {
	viewer := ViewerFromContext(ctx)
	if viewer.ID == "" {
		return unauthenticated(), nil
	}
	aggs, err := s.watchlist.ListWatchlist(ctx, viewer.ID, viewer.IsAdmin)
	if err != nil {
		return s.fail(ctx, "list watchlist", err)
	}
	return ok(http.StatusOK, "watchlist found", aggregateViews(aggs, s.now())), nil
}
