package data

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/moviehub/catalog/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type movieRepo struct {
	data *Data
	log  *log.Helper
}

// NewMovieRepo creates a new movie repository
func NewMovieRepo(data *Data, logger log.Logger) biz.MovieRepo {
	return &movieRepo{
		data: data,
		log:  log.NewHelper(log.With(logger, "module", "data/movie")),
	}
}

func (r *movieRepo) CreateMovie(ctx context.Context, in *biz.Ingestion) error {
	db := r.data.DB(ctx)

	// Reconcile first: the join rows reference whichever id wins.
	genreIDs, err := reconcileGenres(db, in.Genres)
	if err != nil {
		return fmt.Errorf("failed to reconcile genres: %w", err)
	}
	castIDs, err := reconcileCast(db, in.Cast)
	if err != nil {
		return fmt.Errorf("failed to reconcile cast: %w", err)
	}

	dbMovie := movieToModel(in.Movie)
	if err := db.Create(dbMovie).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return biz.ErrDuplicateMovie
		}
		return fmt.Errorf("failed to create movie: %w", err)
	}

	if err := linkGenres(db, dbMovie.ID, genreIDs); err != nil {
		return err
	}
	if err := linkCast(db, dbMovie.ID, castIDs); err != nil {
		return err
	}

	if len(in.OmdbRatings) > 0 {
		ratings := make([]OmdbRating, 0, len(in.OmdbRatings))
		for i := range in.OmdbRatings {
			if in.OmdbRatings[i].ID == "" {
				in.OmdbRatings[i].ID = biz.NewID()
			}
			ratings = append(ratings, OmdbRating{
				ID:      in.OmdbRatings[i].ID,
				MovieID: dbMovie.ID,
				Source:  in.OmdbRatings[i].Source,
				Value:   in.OmdbRatings[i].Value,
			})
		}
		if err := db.Create(&ratings).Error; err != nil {
			return fmt.Errorf("failed to create omdb ratings: %w", err)
		}
	}

	in.Movie.CreatedAt = dbMovie.CreatedAt
	in.Movie.UpdatedAt = dbMovie.UpdatedAt
	return nil
}

func linkGenres(db *gorm.DB, movieID string, genreIDs []string) error {
	if len(genreIDs) == 0 {
		return nil
	}
	rows := make([]MovieGenre, 0, len(genreIDs))
	for _, id := range genreIDs {
		rows = append(rows, MovieGenre{MovieID: movieID, GenreID: id})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to link genres: %w", err)
	}
	return nil
}

func linkCast(db *gorm.DB, movieID string, castIDs []string) error {
	if len(castIDs) == 0 {
		return nil
	}
	rows := make([]MovieCast, 0, len(castIDs))
	for _, id := range castIDs {
		rows = append(rows, MovieCast{MovieID: movieID, CastID: id})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to link cast: %w", err)
	}
	return nil
}

func (r *movieRepo) GetMovie(ctx context.Context, id string) (*biz.Movie, error) {
	var dbMovie Movie
	if err := r.data.DB(ctx).Where("id = ?", id).Take(&dbMovie).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrMovieNotFound
		}
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	return modelToMovie(&dbMovie), nil
}

func (r *movieRepo) ExistsByTitleYear(ctx context.Context, title, year string) (bool, error) {
	var n int64
	err := r.data.DB(ctx).Model(&Movie{}).
		Where("title = ? AND year_of_release = ?", title, year).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check movie existence: %w", err)
	}
	return n > 0, nil
}

func (r *movieRepo) CountExisting(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	if err := r.data.DB(ctx).Model(&Movie{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return n, nil
}

func (r *movieRepo) CountMovies(ctx context.Context, title, year *string) (int64, error) {
	var n int64
	db := filterMovies(r.data.DB(ctx).Model(&Movie{}), title, year)
	if err := db.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return n, nil
}

func (r *movieRepo) UpdateMovie(ctx context.Context, patch *biz.MoviePatch) (*biz.Movie, error) {
	db := r.data.DB(ctx)

	var dbMovie Movie
	if err := db.Where("id = ?", patch.ID).Take(&dbMovie).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrMovieNotFound
		}
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}

	mergeScalars(&dbMovie, patch)
	if err := db.Save(&dbMovie).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, biz.ErrDuplicateMovie
		}
		return nil, fmt.Errorf("failed to update movie: %w", err)
	}

	if len(patch.Genres) > 0 {
		ids, err := reconcileGenres(db, patch.Genres)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile genres: %w", err)
		}
		if err := linkGenres(db, dbMovie.ID, ids); err != nil {
			return nil, err
		}
	}
	if len(patch.Cast) > 0 {
		for i := range patch.Cast {
			if patch.Cast[i].Role == "" {
				patch.Cast[i].Role = biz.CastRolePlaceholder
			}
		}
		ids, err := reconcileCast(db, patch.Cast)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile cast: %w", err)
		}
		if err := linkCast(db, dbMovie.ID, ids); err != nil {
			return nil, err
		}
	}
	if err := upsertOmdbRatings(db, dbMovie.ID, patch.OmdbRatings); err != nil {
		return nil, err
	}
	if err := upsertExternalRatings(db, dbMovie.ID, patch.ExternalRatings); err != nil {
		return nil, err
	}
	if err := upsertMovieRatings(db, dbMovie.ID, patch.MovieRatings, r.data.now()); err != nil {
		return nil, err
	}

	return modelToMovie(&dbMovie), nil
}

// mergeScalars copies the non-empty patch fields onto m.
func mergeScalars(m *Movie, p *biz.MoviePatch) {
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	set(&m.Title, p.Title)
	set(&m.YearOfRelease, p.YearOfRelease)
	set(&m.Rated, p.Rated)
	set(&m.Released, p.Released)
	set(&m.Runtime, p.Runtime)
	set(&m.Plot, p.Plot)
	set(&m.Awards, p.Awards)
	set(&m.Poster, p.Poster)
	set(&m.TotalSeasons, p.TotalSeasons)
	if p.IsActive != nil {
		m.IsActive = *p.IsActive
	}
}

// upsertOmdbRatings keys omdb ratings by source within the movie.
func upsertOmdbRatings(db *gorm.DB, movieID string, ratings []biz.OmdbRating) error {
	for _, in := range ratings {
		var existing OmdbRating
		err := db.Where("movie_id = ? AND source = ?", movieID, in.Source).Take(&existing).Error
		switch {
		case err == nil:
			if err := db.Model(&existing).Update("value", in.Value).Error; err != nil {
				return fmt.Errorf("failed to update omdb rating: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := OmdbRating{ID: biz.NewID(), MovieID: movieID, Source: in.Source, Value: in.Value}
			if err := db.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create omdb rating: %w", err)
			}
		default:
			return fmt.Errorf("failed to get omdb rating: %w", err)
		}
	}
	return nil
}

// upsertExternalRatings keys external ratings by source within the movie.
func upsertExternalRatings(db *gorm.DB, movieID string, ratings []biz.ExternalRating) error {
	for _, in := range ratings {
		var existing ExternalRating
		err := db.Where("movie_id = ? AND source = ?", movieID, in.Source).Take(&existing).Error
		switch {
		case err == nil:
			if err := db.Model(&existing).Update("rating", in.Rating).Error; err != nil {
				return fmt.Errorf("failed to update external rating: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := ExternalRating{ID: biz.NewID(), MovieID: movieID, Source: in.Source, Rating: in.Rating}
			if err := db.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create external rating: %w", err)
			}
		default:
			return fmt.Errorf("failed to get external rating: %w", err)
		}
	}
	return nil
}

// upsertMovieRatings keys user ratings by user within the movie.
func upsertMovieRatings(db *gorm.DB, movieID string, ratings []biz.MovieRating, now time.Time) error {
	for _, in := range ratings {
		var existing MovieRating
		err := db.Where("movie_id = ? AND user_id = ?", movieID, in.UserID).Take(&existing).Error
		switch {
		case err == nil:
			err := db.Model(&existing).Updates(map[string]interface{}{
				"rating":     in.Rating,
				"updated_at": now,
			}).Error
			if err != nil {
				return fmt.Errorf("failed to update movie rating: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := MovieRating{
				ID:          biz.NewID(),
				MovieID:     movieID,
				UserID:      in.UserID,
				Rating:      in.Rating,
				IsUserRated: true,
			}
			if err := db.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create movie rating: %w", err)
			}
		default:
			return fmt.Errorf("failed to get movie rating: %w", err)
		}
	}
	return nil
}

func (r *movieRepo) DeleteMovie(ctx context.Context, id string) error {
	db := r.data.DB(ctx)

	if _, err := r.GetMovie(ctx, id); err != nil {
		return err
	}

	children := []interface{}{
		&MovieGenre{},
		&MovieCast{},
		&ExternalRating{},
		&OmdbRating{},
		&MovieRating{},
		&UserWatchlist{},
		&TopMovie{},
	}
	for _, model := range children {
		if err := db.Where("movie_id = ?", id).Delete(model).Error; err != nil {
			return fmt.Errorf("failed to delete movie children: %w", err)
		}
	}
	if err := db.Where("id = ?", id).Delete(&Movie{}).Error; err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	return nil
}

// filterMovies applies the optional title substring and exact year filters.
func filterMovies(db *gorm.DB, title, year *string) *gorm.DB {
	if title != nil && strings.TrimSpace(*title) != "" {
		db = db.Where("LOWER(title) LIKE ? ESCAPE '\\'", containsPattern(*title))
	}
	if year != nil && strings.TrimSpace(*year) != "" {
		db = db.Where("year_of_release = ?", strings.TrimSpace(*year))
	}
	return db
}

// containsPattern builds a case-insensitive LIKE pattern matching s anywhere.
func containsPattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

func movieToModel(m *biz.Movie) *Movie {
	return &Movie{
		ID:            m.ID,
		Title:         m.Title,
		YearOfRelease: m.YearOfRelease,
		Rated:         m.Rated,
		Released:      m.Released,
		Runtime:       m.Runtime,
		Plot:          m.Plot,
		Awards:        m.Awards,
		Poster:        m.Poster,
		TotalSeasons:  m.TotalSeasons,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func modelToMovie(m *Movie) *biz.Movie {
	return &biz.Movie{
		ID:            m.ID,
		Title:         m.Title,
		YearOfRelease: m.YearOfRelease,
		Rated:         m.Rated,
		Released:      m.Released,
		Runtime:       m.Runtime,
		Plot:          m.Plot,
		Awards:        m.Awards,
		Poster:        m.Poster,
		TotalSeasons:  m.TotalSeasons,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
