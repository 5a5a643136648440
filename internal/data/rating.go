package data

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/moviehub/catalog/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

type ratingRepo struct {
	data *Data
	log  *log.Helper
}

// NewRatingRepo creates a new rating repository
func NewRatingRepo(data *Data, logger log.Logger) biz.RatingRepo {
	return &ratingRepo{
		data: data,
		log:  log.NewHelper(log.With(logger, "module", "data/rating")),
	}
}

func averageCacheKey(movieID string) string {
	return fmt.Sprintf("rating:avg:%s", movieID)
}

func (r *ratingRepo) GetRating(ctx context.Context, id string) (*biz.MovieRating, error) {
	var dbRating MovieRating
	if err := r.data.DB(ctx).Where("id = ?", id).Take(&dbRating).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrRatingNotFound
		}
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	return modelToRating(&dbRating), nil
}

func (r *ratingRepo) FindRating(ctx context.Context, movieID, userID string) (*biz.MovieRating, error) {
	var dbRating MovieRating
	err := r.data.DB(ctx).
		Where("movie_id = ? AND user_id = ?", movieID, userID).
		Take(&dbRating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrRatingNotFound
		}
		return nil, fmt.Errorf("failed to find rating: %w", err)
	}
	return modelToRating(&dbRating), nil
}

func (r *ratingRepo) InsertRating(ctx context.Context, rating *biz.MovieRating) error {
	dbRating := &MovieRating{
		ID:          rating.ID,
		MovieID:     rating.MovieID,
		UserID:      rating.UserID,
		Rating:      rating.Rating,
		IsUserRated: rating.IsUserRated,
	}
	if err := r.data.DB(ctx).Create(dbRating).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return biz.ErrAlreadyRated
		}
		return fmt.Errorf("failed to insert rating: %w", err)
	}
	rating.CreatedAt = dbRating.CreatedAt
	rating.UpdatedAt = dbRating.UpdatedAt
	return nil
}

func (r *ratingRepo) UpdateRatingValue(ctx context.Context, id string, value int) (*biz.MovieRating, error) {
	db := r.data.DB(ctx)

	res := db.Model(&MovieRating{}).Where("id = ?", id).Updates(map[string]interface{}{
		"rating":     value,
		"updated_at": r.data.now(),
	})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update rating: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, biz.ErrRatingNotFound
	}
	return r.GetRating(ctx, id)
}

func (r *ratingRepo) DeleteRating(ctx context.Context, id string) error {
	res := r.data.DB(ctx).Where("id = ?", id).Delete(&MovieRating{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete rating: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return biz.ErrRatingNotFound
	}
	return nil
}

func (r *ratingRepo) ListUserRatings(ctx context.Context, userID string) ([]*biz.UserRating, error) {
	var rows []struct {
		MovieRating
		MovieTitle    string
		YearOfRelease string
		Poster        string
	}
	err := r.data.DB(ctx).
		Table("movie_ratings").
		Select("movie_ratings.*, movies.title AS movie_title, movies.year_of_release, movies.poster").
		Joins("JOIN movies ON movies.id = movie_ratings.movie_id").
		Where("movie_ratings.user_id = ?", userID).
		Order("movie_ratings.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user ratings: %w", err)
	}

	ratings := make([]*biz.UserRating, 0, len(rows))
	for i := range rows {
		ratings = append(ratings, &biz.UserRating{
			MovieRating:   *modelToRating(&rows[i].MovieRating),
			MovieTitle:    rows[i].MovieTitle,
			YearOfRelease: rows[i].YearOfRelease,
			Poster:        rows[i].Poster,
		})
	}
	return ratings, nil
}

func (r *ratingRepo) InvalidateAverage(ctx context.Context, movieID string) {
	r.data.invalidate(ctx, averageCacheKey(movieID))
}

// cachedAverages splits ids into cached averages and ids that missed.
func (d *Data) cachedAverages(ctx context.Context, ids []string) (map[string]float64, []string) {
	hits := make(map[string]float64, len(ids))
	if !d.cacheable(ctx) || len(ids) == 0 {
		return hits, ids
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, averageCacheKey(id))
	}
	values, err := d.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		d.log.Warnf("failed to read average rating cache: %v", err)
		return hits, ids
	}

	var misses []string
	for i, v := range values {
		if cached, ok := v.(string); ok {
			if avg, err := strconv.ParseFloat(cached, 64); err == nil {
				hits[ids[i]] = avg
				continue
			}
		}
		misses = append(misses, ids[i])
	}
	return hits, misses
}

func (d *Data) storeAverages(ctx context.Context, averages map[string]float64) {
	if !d.cacheable(ctx) || len(averages) == 0 {
		return
	}
	pipe := d.rdb.Pipeline()
	for id, avg := range averages {
		pipe.Set(ctx, averageCacheKey(id), strconv.FormatFloat(avg, 'f', 2, 64), d.cacheTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		d.log.Warnf("failed to cache average ratings: %v", err)
	}
}

func roundAverage(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Round(v*100) / 100
}

func modelToRating(m *MovieRating) *biz.MovieRating {
	return &biz.MovieRating{
		ID:          m.ID,
		MovieID:     m.MovieID,
		UserID:      m.UserID,
		Rating:      m.Rating,
		IsUserRated: m.IsUserRated,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
