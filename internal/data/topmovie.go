package data

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/moviehub/catalog/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

const topMoviesCacheKey = "catalog:top:ids"

type topMovieRepo struct {
	data *Data
	log  *log.Helper
}

// NewTopMovieRepo creates a new curated list repository
func NewTopMovieRepo(data *Data, logger log.Logger) biz.TopMovieRepo {
	return &topMovieRepo{
		data: data,
		log:  log.NewHelper(log.With(logger, "module", "data/topmovie")),
	}
}

// ReplaceTopMovies clears the table and writes movieIDs in order. Callers run
// it inside a transaction so readers never see a partial list.
func (r *topMovieRepo) ReplaceTopMovies(ctx context.Context, movieIDs []string) error {
	db := r.data.DB(ctx)

	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&TopMovie{}).Error; err != nil {
		return fmt.Errorf("failed to clear top movies: %w", err)
	}
	if len(movieIDs) == 0 {
		return nil
	}

	rows := make([]TopMovie, 0, len(movieIDs))
	for i, id := range movieIDs {
		rows = append(rows, TopMovie{ID: biz.NewID(), MovieID: id, Position: i})
	}
	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to insert top movies: %w", err)
	}
	return nil
}

// TopMovieIDs returns the curated ids in position order, bounded to the list size.
func (r *topMovieRepo) TopMovieIDs(ctx context.Context) ([]string, error) {
	cacheable := r.data.cacheable(ctx)

	if cacheable {
		cached, err := r.data.rdb.Get(ctx, topMoviesCacheKey).Result()
		if err == nil {
			var ids []string
			if err := json.Unmarshal([]byte(cached), &ids); err == nil {
				r.log.Debugf("cache hit for top movies")
				return ids, nil
			}
		}
	}

	var ids []string
	err := r.data.DB(ctx).Model(&TopMovie{}).
		Order("position ASC").
		Limit(biz.TopMoviesSize).
		Pluck("movie_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get top movies: %w", err)
	}

	if cacheable {
		if data, err := json.Marshal(ids); err == nil {
			r.data.rdb.Set(ctx, topMoviesCacheKey, data, r.data.cacheTTL)
		}
	}
	return ids, nil
}

func (r *topMovieRepo) InvalidateTopMovies(ctx context.Context) {
	r.data.invalidate(ctx, topMoviesCacheKey)
}
