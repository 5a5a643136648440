package data

import (
	"time"
)

// Models lists every table owned by the catalog, in migration order.
func Models() []interface{} {
	return []interface{}{
		&Movie{},
		&Genre{},
		&Cast{},
		&MovieGenre{},
		&MovieCast{},
		&ExternalRating{},
		&OmdbRating{},
		&MovieRating{},
		&UserWatchlist{},
		&TopMovie{},
		&ApplicationUser{},
	}
}

// Movie represents the movies table
type Movie struct {
	ID            string    `gorm:"primaryKey;size:64"`
	Title         string    `gorm:"not null;size:255;uniqueIndex:uq_movies_title_year,priority:1"`
	YearOfRelease string    `gorm:"column:year_of_release;not null;size:16;uniqueIndex:uq_movies_title_year,priority:2"`
	Rated         string    `gorm:"size:32"`
	Released      string    `gorm:"size:64"`
	Runtime       string    `gorm:"size:32"`
	Plot          string    `gorm:"type:text"`
	Awards        string    `gorm:"size:512"`
	Poster        string    `gorm:"size:1024"`
	TotalSeasons  string    `gorm:"size:16"`
	IsActive      bool      `gorm:"not null;index"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index:idx_movies_created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// TableName overrides the table name
func (Movie) TableName() string {
	return "movies"
}

// Genre represents the genres table
type Genre struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Name      string    `gorm:"not null;size:128;uniqueIndex:uq_genres_name"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Genre) TableName() string {
	return "genres"
}

// Cast represents the casts table
type Cast struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Name      string    `gorm:"not null;size:255;uniqueIndex:uq_casts_name_role,priority:1"`
	Role      string    `gorm:"not null;size:255;uniqueIndex:uq_casts_name_role,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Cast) TableName() string {
	return "casts"
}

// MovieGenre joins movies and genres
type MovieGenre struct {
	MovieID string `gorm:"primaryKey;size:64"`
	GenreID string `gorm:"primaryKey;size:64;index"`
}

func (MovieGenre) TableName() string {
	return "movie_genres"
}

// MovieCast joins movies and casts
type MovieCast struct {
	MovieID string `gorm:"primaryKey;size:64"`
	CastID  string `gorm:"primaryKey;size:64;index"`
}

func (MovieCast) TableName() string {
	return "movie_casts"
}

// ExternalRating represents the external_ratings table
type ExternalRating struct {
	ID      string `gorm:"primaryKey;size:64"`
	MovieID string `gorm:"not null;size:64;index"`
	Source  string `gorm:"not null;size:128"`
	Rating  string `gorm:"not null;size:32"`
}

func (ExternalRating) TableName() string {
	return "external_ratings"
}

// OmdbRating represents the omdb_ratings table
type OmdbRating struct {
	ID      string `gorm:"primaryKey;size:64"`
	MovieID string `gorm:"not null;size:64;index"`
	Source  string `gorm:"not null;size:128"`
	Value   string `gorm:"not null;size:32"`
}

func (OmdbRating) TableName() string {
	return "omdb_ratings"
}

// MovieRating represents the movie_ratings table
type MovieRating struct {
	ID          string    `gorm:"primaryKey;size:64"`
	MovieID     string    `gorm:"not null;size:64;uniqueIndex:uq_movie_ratings_movie_user,priority:1"`
	UserID      string    `gorm:"not null;size:64;uniqueIndex:uq_movie_ratings_movie_user,priority:2;index:idx_movie_ratings_user"`
	Rating      int       `gorm:"not null"`
	IsUserRated bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (MovieRating) TableName() string {
	return "movie_ratings"
}

// UserWatchlist represents the user_watchlists table
type UserWatchlist struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    string    `gorm:"not null;size:64;uniqueIndex:uq_user_watchlists_user_movie,priority:1"`
	MovieID   string    `gorm:"not null;size:64;uniqueIndex:uq_user_watchlists_user_movie,priority:2;index"`
	IsActive  bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserWatchlist) TableName() string {
	return "user_watchlists"
}

// TopMovie represents one slot of the curated list
type TopMovie struct {
	ID        string    `gorm:"primaryKey;size:64"`
	MovieID   string    `gorm:"not null;size:64;uniqueIndex:uq_top_movies_movie"`
	Position  int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (TopMovie) TableName() string {
	return "top_movies"
}

// ApplicationUser mirrors the identity provider's user table. Only
// FirstAddedToWatchlistAt is written by the catalog.
type ApplicationUser struct {
	ID                      string `gorm:"primaryKey;size:64"`
	IsAdmin                 bool   `gorm:"not null"`
	IsTrustedMember         bool   `gorm:"not null"`
	FirstAddedToWatchlistAt *time.Time
}

func (ApplicationUser) TableName() string {
	return "users"
}
