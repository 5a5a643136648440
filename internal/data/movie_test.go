package data

import (
	"context"

	"github.com/moviehub/catalog/internal/biz"
)

func (s *DataSuite) TestReconcileFirstSeenWinsWithinBatch() {
	genres := []biz.Genre{
		{ID: "g1", Name: "Drama"},
		{ID: "g2", Name: "Crime"},
		{ID: "g3", Name: "Drama"},
	}

	ids, err := reconcileGenres(s.data.DB(s.ctx), genres)

	s.Require().NoError(err)
	s.Equal([]string{"g1", "g2"}, ids)
	s.Equal("g1", genres[2].ID)
	s.EqualValues(2, s.count(&Genre{}))
}

func (s *DataSuite) TestReconcileReusesExistingRows() {
	_, err := reconcileCast(s.data.DB(s.ctx), []biz.Cast{{ID: "c1", Name: "Al Pacino", Role: "Lead"}})
	s.Require().NoError(err)

	cast := []biz.Cast{
		{ID: "c2", Name: "Al Pacino", Role: "Lead"},
		{ID: "c3", Name: "Al Pacino", Role: "Cameo"},
	}
	ids, err := reconcileCast(s.data.DB(s.ctx), cast)

	s.Require().NoError(err)
	s.Equal([]string{"c1", "c3"}, ids)
	s.Equal("c1", cast[0].ID)
	s.EqualValues(2, s.count(&Cast{}))
}

func (s *DataSuite) TestCreateMovieSharesGenresAndCast() {
	s.seedMovie("Heat", "1995", "Crime, Drama, Crime", "Al Pacino, Robert De Niro")
	s.seedMovie("The Irishman", "2019", "Crime, Drama", "Robert De Niro, Al Pacino, Joe Pesci")

	s.EqualValues(2, s.count(&Genre{}))
	s.EqualValues(3, s.count(&Cast{}))
	s.EqualValues(4, s.count(&MovieGenre{}))
	s.EqualValues(5, s.count(&MovieCast{}))

	var omdb []OmdbRating
	s.Require().NoError(s.data.db.Find(&omdb).Error)
	s.Require().Len(omdb, 2)
	s.Equal("74%", omdb[0].Value)
}

func (s *DataSuite) TestCreateMovieDuplicateTitleYear() {
	s.seedMovie("Inception", "2010", "Sci-Fi", "")

	in, err := biz.Normalize(&biz.Movie{}, &biz.ProviderRecord{Title: "Inception", Year: "2010"}, s.clock)
	s.Require().NoError(err)

	err = s.data.InTx(s.ctx, func(ctx context.Context) error {
		return s.movies.CreateMovie(ctx, in)
	})

	s.ErrorIs(err, biz.ErrDuplicateMovie)
	s.EqualValues(1, s.count(&Movie{}))
}

func (s *DataSuite) TestExistsAndCount() {
	id := s.seedMovie("Heat", "1995", "", "")
	s.seedMovie("Heat", "1986", "", "")
	s.seedMovie("Ronin", "1998", "", "")

	exists, err := s.movies.ExistsByTitleYear(s.ctx, "Heat", "1995")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.movies.ExistsByTitleYear(s.ctx, "Heat", "2000")
	s.Require().NoError(err)
	s.False(exists)

	n, err := s.movies.CountExisting(s.ctx, []string{id, "missing"})
	s.Require().NoError(err)
	s.EqualValues(1, n)

	title := "hea"
	n, err = s.movies.CountMovies(s.ctx, &title, nil)
	s.Require().NoError(err)
	s.EqualValues(2, n)

	year := "1998"
	n, err = s.movies.CountMovies(s.ctx, nil, &year)
	s.Require().NoError(err)
	s.EqualValues(1, n)
}

func (s *DataSuite) TestCountMoviesEscapesWildcards() {
	s.seedMovie("100% Wolf", "2020", "", "")
	s.seedMovie("Heat", "1995", "", "")

	title := "%"
	n, err := s.movies.CountMovies(s.ctx, &title, nil)

	s.Require().NoError(err)
	s.EqualValues(1, n)
}

func (s *DataSuite) TestGetMovieNotFound() {
	_, err := s.movies.GetMovie(s.ctx, "missing")
	s.ErrorIs(err, biz.ErrMovieNotFound)
}

func (s *DataSuite) TestUpdateMovieMergesAndUpserts() {
	id := s.seedMovie("Heat", "1995", "Crime", "Al Pacino")
	inactive := false

	updated, err := s.movies.UpdateMovie(s.ctx, &biz.MoviePatch{
		ID:          id,
		Plot:        "A group of professional bank robbers...",
		IsActive:    &inactive,
		Genres:      []biz.Genre{{Name: "Crime"}, {Name: "Thriller"}},
		Cast:        []biz.Cast{{Name: "Val Kilmer"}},
		OmdbRatings: []biz.OmdbRating{{Source: "Metacritic", Value: "76%"}, {Source: "IMDb", Value: "83%"}},
		MovieRatings: []biz.MovieRating{
			{UserID: "u1", Rating: 4},
		},
	})

	s.Require().NoError(err)
	s.Equal("Heat", updated.Title)
	s.Equal("1995", updated.YearOfRelease)
	s.Equal("A group of professional bank robbers...", updated.Plot)
	s.False(updated.IsActive)

	s.EqualValues(2, s.count(&Genre{}))
	s.EqualValues(2, s.count(&MovieGenre{}))
	s.EqualValues(2, s.count(&MovieCast{}))
	s.EqualValues(2, s.count(&OmdbRating{}))

	var meta OmdbRating
	s.Require().NoError(s.data.db.Where("movie_id = ? AND source = ?", id, "Metacritic").Take(&meta).Error)
	s.Equal("76%", meta.Value)

	var cast Cast
	s.Require().NoError(s.data.db.Where("name = ?", "Val Kilmer").Take(&cast).Error)
	s.Equal(biz.CastRolePlaceholder, cast.Role)

	_, err = s.movies.UpdateMovie(s.ctx, &biz.MoviePatch{
		ID:           id,
		MovieRatings: []biz.MovieRating{{UserID: "u1", Rating: 2}},
	})
	s.Require().NoError(err)
	r, err := s.ratings.FindRating(s.ctx, id, "u1")
	s.Require().NoError(err)
	s.Equal(2, r.Rating)
	s.EqualValues(1, s.count(&MovieRating{}))
}

func (s *DataSuite) TestUpdateMovieNotFound() {
	_, err := s.movies.UpdateMovie(s.ctx, &biz.MoviePatch{ID: "missing", Title: "x"})
	s.ErrorIs(err, biz.ErrMovieNotFound)
}

func (s *DataSuite) TestDeleteMovieRemovesChildren() {
	id := s.seedMovie("Heat", "1995", "Crime", "Al Pacino")
	keep := s.seedMovie("Ronin", "1998", "Crime", "Robert De Niro")
	s.Require().NoError(s.ratings.InsertRating(s.ctx, &biz.MovieRating{ID: "r1", MovieID: id, UserID: "u1", Rating: 5, IsUserRated: true}))
	s.Require().NoError(s.watchlist.AddEntry(s.ctx, &biz.WatchlistEntry{ID: "w1", MovieID: id, UserID: "u1", IsActive: true}))
	s.Require().NoError(s.top.ReplaceTopMovies(s.ctx, []string{id, keep}))

	err := s.data.InTx(s.ctx, func(ctx context.Context) error {
		return s.movies.DeleteMovie(ctx, id)
	})

	s.Require().NoError(err)
	s.EqualValues(1, s.count(&Movie{}))
	s.EqualValues(1, s.count(&MovieGenre{}))
	s.EqualValues(1, s.count(&MovieCast{}))
	s.EqualValues(1, s.count(&OmdbRating{}))
	s.Zero(s.count(&MovieRating{}))
	s.Zero(s.count(&UserWatchlist{}))
	s.EqualValues(1, s.count(&TopMovie{}))
	// Catalog-wide entities outlive the movie.
	s.EqualValues(1, s.count(&Genre{}))

	s.ErrorIs(s.movies.DeleteMovie(s.ctx, id), biz.ErrMovieNotFound)
}
