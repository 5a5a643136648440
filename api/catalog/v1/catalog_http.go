package v1

import (
	"context"

	"github.com/go-kratos/kratos/v2/transport/http"
)

const (
	OperationCatalogCreateMovie         = "/api.catalog.v1.Catalog/CreateMovie"
	OperationCatalogGetMovie            = "/api.catalog.v1.Catalog/GetMovie"
	OperationCatalogUpdateMovie         = "/api.catalog.v1.Catalog/UpdateMovie"
	OperationCatalogDeleteMovie         = "/api.catalog.v1.Catalog/DeleteMovie"
	OperationCatalogListMovies          = "/api.catalog.v1.Catalog/ListMovies"
	OperationCatalogSearchMovies        = "/api.catalog.v1.Catalog/SearchMovies"
	OperationCatalogCountMovies         = "/api.catalog.v1.Catalog/CountMovies"
	OperationCatalogGetTopMovies        = "/api.catalog.v1.Catalog/GetTopMovies"
	OperationCatalogReplaceTopMovies    = "/api.catalog.v1.Catalog/ReplaceTopMovies"
	OperationCatalogGetRecentMovies     = "/api.catalog.v1.Catalog/GetRecentMovies"
	OperationCatalogRateMovie           = "/api.catalog.v1.Catalog/RateMovie"
	OperationCatalogDeleteRating        = "/api.catalog.v1.Catalog/DeleteRating"
	OperationCatalogListUserRatings     = "/api.catalog.v1.Catalog/ListUserRatings"
	OperationCatalogAddToWatchlist      = "/api.catalog.v1.Catalog/AddToWatchlist"
	OperationCatalogRemoveFromWatchlist = "/api.catalog.v1.Catalog/RemoveFromWatchlist"
	OperationCatalogListWatchlist       = "/api.catalog.v1.Catalog/ListWatchlist"
)

// AdminOperations require the admin bearer token.
var AdminOperations = map[string]bool{
	OperationCatalogCreateMovie:      true,
	OperationCatalogUpdateMovie:      true,
	OperationCatalogDeleteMovie:      true,
	OperationCatalogReplaceTopMovies: true,
}

type CatalogHTTPServer interface {
	CreateMovie(context.Context, *CreateMovieRequest) (*Reply, error)
	GetMovie(context.Context, *GetMovieRequest) (*Reply, error)
	UpdateMovie(context.Context, *UpdateMovieRequest) (*Reply, error)
	DeleteMovie(context.Context, *DeleteMovieRequest) (*Reply, error)
	ListMovies(context.Context, *ListMoviesRequest) (*Reply, error)
	SearchMovies(context.Context, *SearchMoviesRequest) (*Reply, error)
	CountMovies(context.Context, *CountMoviesRequest) (*Reply, error)
	GetTopMovies(context.Context, *EmptyRequest) (*Reply, error)
	ReplaceTopMovies(context.Context, *ReplaceTopMoviesRequest) (*Reply, error)
	GetRecentMovies(context.Context, *EmptyRequest) (*Reply, error)
	RateMovie(context.Context, *RateMovieRequest) (*Reply, error)
	DeleteRating(context.Context, *DeleteRatingRequest) (*Reply, error)
	ListUserRatings(context.Context, *EmptyRequest) (*Reply, error)
	AddToWatchlist(context.Context, *AddToWatchlistRequest) (*Reply, error)
	RemoveFromWatchlist(context.Context, *RemoveFromWatchlistRequest) (*Reply, error)
	ListWatchlist(context.Context, *EmptyRequest) (*Reply, error)
}

// RegisterCatalogHTTPServer mounts the catalog routes. Fixed paths are
// registered before the {id} routes that would otherwise shadow them.
func RegisterCatalogHTTPServer(s *http.Server, srv CatalogHTTPServer) {
	r := s.Route("/")
	r.GET("/api/movies/search", handle(OperationCatalogSearchMovies, bindQuery[SearchMoviesRequest], srv.SearchMovies))
	r.GET("/api/movies/count", handle(OperationCatalogCountMovies, bindQuery[CountMoviesRequest], srv.CountMovies))
	r.GET("/api/movies/top", handle(OperationCatalogGetTopMovies, bindNone[EmptyRequest], srv.GetTopMovies))
	r.POST("/api/movies/top", handle(OperationCatalogReplaceTopMovies, bindBody[ReplaceTopMoviesRequest], srv.ReplaceTopMovies))
	r.GET("/api/movies/recent", handle(OperationCatalogGetRecentMovies, bindNone[EmptyRequest], srv.GetRecentMovies))
	r.POST("/api/movies", handle(OperationCatalogCreateMovie, bindBody[CreateMovieRequest], srv.CreateMovie))
	r.GET("/api/movies", handle(OperationCatalogListMovies, bindQuery[ListMoviesRequest], srv.ListMovies))
	r.GET("/api/movies/{id}", handle(OperationCatalogGetMovie, bindVars[GetMovieRequest], srv.GetMovie))
	r.PUT("/api/movies/{id}", handle(OperationCatalogUpdateMovie, bindBodyVars[UpdateMovieRequest], srv.UpdateMovie))
	r.DELETE("/api/movies/{id}", handle(OperationCatalogDeleteMovie, bindVars[DeleteMovieRequest], srv.DeleteMovie))
	r.POST("/api/movies/{movieId}/ratings", handle(OperationCatalogRateMovie, bindBodyVars[RateMovieRequest], srv.RateMovie))
	r.DELETE("/api/ratings/{ratingId}", handle(OperationCatalogDeleteRating, bindVars[DeleteRatingRequest], srv.DeleteRating))
	r.GET("/api/ratings/me", handle(OperationCatalogListUserRatings, bindNone[EmptyRequest], srv.ListUserRatings))
	r.POST("/api/watchlist", handle(OperationCatalogAddToWatchlist, bindBody[AddToWatchlistRequest], srv.AddToWatchlist))
	r.GET("/api/watchlist", handle(OperationCatalogListWatchlist, bindNone[EmptyRequest], srv.ListWatchlist))
	r.DELETE("/api/watchlist/{id}", handle(OperationCatalogRemoveFromWatchlist, bindVars[RemoveFromWatchlistRequest], srv.RemoveFromWatchlist))
}

func bindNone[T any](http.Context, *T) error { return nil }

func bindQuery[T any](ctx http.Context, in *T) error { return ctx.BindQuery(in) }

func bindVars[T any](ctx http.Context, in *T) error { return ctx.BindVars(in) }

func bindBody[T any](ctx http.Context, in *T) error { return ctx.Bind(in) }

func bindBodyVars[T any](ctx http.Context, in *T) error {
	if err := ctx.Bind(in); err != nil {
		return err
	}
	return ctx.BindVars(in)
}

func handle[T any](operation string, bind func(http.Context, *T) error, call func(context.Context, *T) (*Reply, error)) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in T
		if err := bind(ctx, &in); err != nil {
			return err
		}
		http.SetOperation(ctx, operation)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(ctx, req.(*T))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}
