package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/moviehub/catalog/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type aggregateRepo struct {
	data *Data
	top  biz.TopMovieRepo
	log  *log.Helper
}

// NewAggregateRepo creates the movie aggregate store
func NewAggregateRepo(data *Data, top biz.TopMovieRepo, logger log.Logger) biz.AggregateRepo {
	return &aggregateRepo{
		data: data,
		top:  top,
		log:  log.NewHelper(log.With(logger, "module", "data/aggregate")),
	}
}

// visible restricts non-admin reads to active movies.
func visible(db *gorm.DB, isAdmin bool) *gorm.DB {
	if isAdmin {
		return db
	}
	return db.Where("is_active = ?", true)
}

func (r *aggregateRepo) GetAggregate(ctx context.Context, id string, isAdmin bool, viewerID string) (*biz.MovieAggregate, error) {
	var movies []Movie
	err := visible(r.data.DB(ctx).Where("id = ?", id), isAdmin).Limit(1).Find(&movies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	if len(movies) == 0 {
		return nil, biz.ErrMovieNotFound
	}

	aggs, err := r.assemble(ctx, movies, viewerID)
	if err != nil {
		return nil, err
	}
	return aggs[0], nil
}

func (r *aggregateRepo) ListAggregates(ctx context.Context, query *biz.MovieListQuery, isAdmin bool, viewerID string) (*biz.MoviePage, error) {
	base := filterMovies(visible(r.data.DB(ctx).Model(&Movie{}), isAdmin), query.Title, query.Year)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count movies: %w", err)
	}

	db := base.Session(&gorm.Session{})
	desc := query.SortOrder == biz.SortDescending
	switch query.SortField {
	case biz.SortTitle:
		db = db.Order(orderBy("title", desc))
	case biz.SortYear:
		db = db.Order(orderBy("year_of_release", desc))
	}
	// Keep paging deterministic when the sort key ties or is unset.
	db = db.Order("id ASC")

	page := &biz.MoviePage{Page: query.Page, PageSize: query.PageSize, Total: total}
	if !isAdmin {
		db = db.Offset((query.Page - 1) * query.PageSize).Limit(query.PageSize)
	}

	var movies []Movie
	if err := db.Find(&movies).Error; err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	if isAdmin {
		page.Page = 1
		page.PageSize = len(movies)
	}

	items, err := r.assemble(ctx, movies, viewerID)
	if err != nil {
		return nil, err
	}
	page.Items = items
	return page, nil
}

func orderBy(column string, desc bool) string {
	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}

func (r *aggregateRepo) TopAggregates(ctx context.Context, isAdmin bool, viewerID string) ([]*biz.MovieAggregate, error) {
	ids, err := r.top.TopMovieIDs(ctx)
	if err != nil {
		return nil, err
	}
	movies, err := r.moviesInOrder(ctx, ids, isAdmin)
	if err != nil {
		return nil, err
	}
	return r.assemble(ctx, movies, viewerID)
}

func (r *aggregateRepo) RecentAggregates(ctx context.Context, limit int, isAdmin bool, viewerID string) ([]*biz.MovieAggregate, error) {
	var movies []Movie
	err := visible(r.data.DB(ctx), isAdmin).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&movies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent movies: %w", err)
	}
	return r.assemble(ctx, movies, viewerID)
}

func (r *aggregateRepo) SearchAggregates(ctx context.Context, text string, isAdmin bool, viewerID string) ([]*biz.MovieAggregate, error) {
	var movies []Movie
	err := filterMovies(visible(r.data.DB(ctx), isAdmin), &text, nil).
		Order("title ASC").
		Order("id ASC").
		Find(&movies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search movies: %w", err)
	}
	return r.assemble(ctx, movies, viewerID)
}

func (r *aggregateRepo) WatchlistAggregates(ctx context.Context, userID string, isAdmin bool) ([]*biz.MovieAggregate, error) {
	var ids []string
	err := r.data.DB(ctx).Model(&UserWatchlist{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("movie_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}
	movies, err := r.moviesInOrder(ctx, ids, isAdmin)
	if err != nil {
		return nil, err
	}
	return r.assemble(ctx, movies, userID)
}

// moviesInOrder loads the visible movies among ids, preserving the order of ids.
func (r *aggregateRepo) moviesInOrder(ctx context.Context, ids []string, isAdmin bool) ([]Movie, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []Movie
	if err := visible(r.data.DB(ctx).Where("id IN ?", ids), isAdmin).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to get movies: %w", err)
	}

	byID := make(map[string]Movie, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}
	movies := make([]Movie, 0, len(found))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			movies = append(movies, m)
		}
	}
	return movies, nil
}

type genreRow struct {
	MovieID string
	ID      string
	Name    string
}

type castRow struct {
	MovieID string
	ID      string
	Name    string
	Role    string
}

type averageRow struct {
	MovieID string
	Average float64
}

// children holds every child collection of one id set, grouped by movie id.
type children struct {
	genres    map[string][]biz.Genre
	cast      map[string][]biz.Cast
	external  map[string][]biz.ExternalRating
	omdb      map[string][]biz.OmdbRating
	ratings   map[string][]biz.MovieRating
	watchlist map[string][]biz.WatchlistEntry
	averages  map[string]float64
	viewer    *biz.ApplicationUser
}

// assemble builds aggregates for movies in order. Each child collection is
// loaded with one query over the whole id set.
func (r *aggregateRepo) assemble(ctx context.Context, movies []Movie, viewerID string) ([]*biz.MovieAggregate, error) {
	aggs := make([]*biz.MovieAggregate, 0, len(movies))
	if len(movies) == 0 {
		return aggs, nil
	}

	ids := make([]string, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}

	c, err := r.loadChildren(ctx, ids, viewerID)
	if err != nil {
		return nil, err
	}

	for i := range movies {
		id := movies[i].ID
		aggs = append(aggs, &biz.MovieAggregate{
			Movie:           *modelToMovie(&movies[i]),
			Genres:          orEmpty(c.genres[id]),
			Cast:            orEmpty(c.cast[id]),
			ExternalRatings: orEmpty(c.external[id]),
			OmdbRatings:     orEmpty(c.omdb[id]),
			MovieRatings:    orEmpty(c.ratings[id]),
			Watchlist:       orEmpty(c.watchlist[id]),
			AverageRating:   c.averages[id],
			Viewer:          c.viewer,
		})
	}
	return aggs, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (r *aggregateRepo) loadChildren(ctx context.Context, ids []string, viewerID string) (*children, error) {
	c := &children{
		genres:    make(map[string][]biz.Genre),
		cast:      make(map[string][]biz.Cast),
		external:  make(map[string][]biz.ExternalRating),
		omdb:      make(map[string][]biz.OmdbRating),
		ratings:   make(map[string][]biz.MovieRating),
		watchlist: make(map[string][]biz.WatchlistEntry),
		averages:  make(map[string]float64),
	}

	g, gctx := errgroup.WithContext(ctx)
	if inTx(ctx) {
		// A transaction is a single connection.
		g.SetLimit(1)
	}

	g.Go(func() error {
		var rows []genreRow
		err := r.data.DB(gctx).Table("movie_genres").
			Select("movie_genres.movie_id, genres.id, genres.name").
			Joins("JOIN genres ON genres.id = movie_genres.genre_id").
			Where("movie_genres.movie_id IN ?", ids).
			Order("genres.name ASC").
			Scan(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to load genres: %w", err)
		}
		for _, row := range rows {
			c.genres[row.MovieID] = append(c.genres[row.MovieID], biz.Genre{ID: row.ID, Name: row.Name})
		}
		return nil
	})

	g.Go(func() error {
		var rows []castRow
		err := r.data.DB(gctx).Table("movie_casts").
			Select("movie_casts.movie_id, casts.id, casts.name, casts.role").
			Joins("JOIN casts ON casts.id = movie_casts.cast_id").
			Where("movie_casts.movie_id IN ?", ids).
			Order("casts.name ASC").
			Scan(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to load cast: %w", err)
		}
		for _, row := range rows {
			c.cast[row.MovieID] = append(c.cast[row.MovieID], biz.Cast{ID: row.ID, Name: row.Name, Role: row.Role})
		}
		return nil
	})

	g.Go(func() error {
		var rows []ExternalRating
		if err := r.data.DB(gctx).Where("movie_id IN ?", ids).Order("source ASC").Find(&rows).Error; err != nil {
			return fmt.Errorf("failed to load external ratings: %w", err)
		}
		for _, row := range rows {
			c.external[row.MovieID] = append(c.external[row.MovieID], biz.ExternalRating{ID: row.ID, Source: row.Source, Rating: row.Rating})
		}
		return nil
	})

	g.Go(func() error {
		var rows []OmdbRating
		if err := r.data.DB(gctx).Where("movie_id IN ?", ids).Order("source ASC").Find(&rows).Error; err != nil {
			return fmt.Errorf("failed to load omdb ratings: %w", err)
		}
		for _, row := range rows {
			c.omdb[row.MovieID] = append(c.omdb[row.MovieID], biz.OmdbRating{ID: row.ID, Source: row.Source, Value: row.Value})
		}
		return nil
	})

	g.Go(func() error {
		cached, misses := r.data.cachedAverages(gctx, ids)
		for id, avg := range cached {
			c.averages[id] = avg
		}
		if len(misses) == 0 {
			return nil
		}

		var rows []averageRow
		err := r.data.DB(gctx).Model(&MovieRating{}).
			Select("movie_id, AVG(rating) AS average").
			Where("movie_id IN ?", misses).
			Group("movie_id").
			Scan(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to load average ratings: %w", err)
		}

		loaded := make(map[string]float64, len(misses))
		for _, id := range misses {
			loaded[id] = 0
		}
		for _, row := range rows {
			loaded[row.MovieID] = roundAverage(row.Average)
		}
		for id, avg := range loaded {
			c.averages[id] = avg
		}
		r.data.storeAverages(gctx, loaded)
		return nil
	})

	// Anonymous viewers have no user-scoped rows.
	if viewerID != "" {
		g.Go(func() error {
			var rows []MovieRating
			err := r.data.DB(gctx).
				Where("movie_id IN ? AND user_id = ?", ids, viewerID).
				Find(&rows).Error
			if err != nil {
				return fmt.Errorf("failed to load viewer ratings: %w", err)
			}
			for i := range rows {
				c.ratings[rows[i].MovieID] = append(c.ratings[rows[i].MovieID], *modelToRating(&rows[i]))
			}
			return nil
		})

		g.Go(func() error {
			var rows []UserWatchlist
			err := r.data.DB(gctx).
				Where("movie_id IN ? AND user_id = ?", ids, viewerID).
				Find(&rows).Error
			if err != nil {
				return fmt.Errorf("failed to load viewer watchlist: %w", err)
			}
			for i := range rows {
				c.watchlist[rows[i].MovieID] = append(c.watchlist[rows[i].MovieID], *modelToWatchlistEntry(&rows[i]))
			}
			return nil
		})

		g.Go(func() error {
			var user ApplicationUser
			err := r.data.DB(gctx).Where("id = ?", viewerID).Take(&user).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to load viewer: %w", err)
			}
			c.viewer = modelToUser(&user)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return c, nil
}
