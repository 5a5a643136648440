package data

import (
	"context"
	"time"

	"github.com/moviehub/catalog/internal/biz"
)

func (s *DataSuite) TestInsertRatingRejectsSecondRowForPair() {
	id := s.seedMovie("Heat", "1995", "", "")
	s.rate(id, "u1", 4)

	err := s.ratings.InsertRating(s.ctx, &biz.MovieRating{ID: "dup", MovieID: id, UserID: "u1", Rating: 2})

	s.ErrorIs(err, biz.ErrAlreadyRated)
	r, err := s.ratings.FindRating(s.ctx, id, "u1")
	s.Require().NoError(err)
	s.Equal(4, r.Rating)
}

func (s *DataSuite) TestUpdateRatingValueBumpsTimestamp() {
	id := s.seedMovie("Heat", "1995", "", "")
	s.rate(id, "u1", 2)
	before, err := s.ratings.FindRating(s.ctx, id, "u1")
	s.Require().NoError(err)

	s.data.now = func() time.Time { return before.UpdatedAt.Add(time.Hour) }
	updated, err := s.ratings.UpdateRatingValue(s.ctx, before.ID, 5)

	s.Require().NoError(err)
	s.Equal(5, updated.Rating)
	s.True(updated.UpdatedAt.After(before.UpdatedAt))
	s.EqualValues(1, s.count(&MovieRating{}))

	_, err = s.ratings.UpdateRatingValue(s.ctx, "missing", 3)
	s.ErrorIs(err, biz.ErrRatingNotFound)
}

func (s *DataSuite) TestDeleteRating() {
	id := s.seedMovie("Heat", "1995", "", "")
	s.rate(id, "u1", 2)
	r, err := s.ratings.FindRating(s.ctx, id, "u1")
	s.Require().NoError(err)

	s.Require().NoError(s.ratings.DeleteRating(s.ctx, r.ID))
	s.ErrorIs(s.ratings.DeleteRating(s.ctx, r.ID), biz.ErrRatingNotFound)
	_, err = s.ratings.GetRating(s.ctx, r.ID)
	s.ErrorIs(err, biz.ErrRatingNotFound)
}

func (s *DataSuite) TestAggregateAverageRating() {
	rated := s.seedMovie("Heat", "1995", "", "")
	unrated := s.seedMovie("Ronin", "1998", "", "")
	s.rate(rated, "u1", 3)
	s.rate(rated, "u2", 4)
	s.rate(rated, "u3", 5)

	agg, err := s.aggregates.GetAggregate(s.ctx, rated, false, "")
	s.Require().NoError(err)
	s.Equal(4.0, agg.AverageRating)

	agg, err = s.aggregates.GetAggregate(s.ctx, unrated, false, "")
	s.Require().NoError(err)
	s.Zero(agg.AverageRating)
}

func (s *DataSuite) TestAggregateAverageRatingRoundsToTwoDecimals() {
	id := s.seedMovie("Heat", "1995", "", "")
	s.rate(id, "u1", 1)
	s.rate(id, "u2", 2)
	s.rate(id, "u3", 2)

	agg, err := s.aggregates.GetAggregate(s.ctx, id, false, "")

	s.Require().NoError(err)
	s.Equal(1.67, agg.AverageRating)
}

func (s *DataSuite) TestListUserRatingsJoinsMovie() {
	heat := s.seedMovie("Heat", "1995", "", "")
	ronin := s.seedMovie("Ronin", "1998", "", "")
	s.rate(heat, "u1", 5)
	s.rate(ronin, "u2", 3)

	ratings, err := s.ratings.ListUserRatings(s.ctx, "u1")

	s.Require().NoError(err)
	s.Require().Len(ratings, 1)
	s.Equal("Heat", ratings[0].MovieTitle)
	s.Equal("1995", ratings[0].YearOfRelease)
	s.Equal(heat, ratings[0].MovieID)
	s.Equal(5, ratings[0].Rating)
}

func (s *DataSuite) TestReplaceTopMoviesReplacesWholeSet() {
	old := make([]string, 0, 3)
	for _, title := range []string{"A", "B", "C"} {
		old = append(old, s.seedMovie(title, "2000", "", ""))
	}
	s.Require().NoError(s.top.ReplaceTopMovies(s.ctx, old))

	next := []string{s.seedMovie("D", "2000", "", ""), old[0]}
	err := s.data.InTx(s.ctx, func(ctx context.Context) error {
		return s.top.ReplaceTopMovies(ctx, next)
	})

	s.Require().NoError(err)
	ids, err := s.top.TopMovieIDs(s.ctx)
	s.Require().NoError(err)
	s.Equal(next, ids)
}

func (s *DataSuite) TestWatchlistEntries() {
	id := s.seedMovie("Heat", "1995", "", "")
	entry := &biz.WatchlistEntry{ID: "w1", MovieID: id, UserID: "u1", IsActive: true}
	s.Require().NoError(s.watchlist.AddEntry(s.ctx, entry))

	err := s.watchlist.AddEntry(s.ctx, &biz.WatchlistEntry{ID: "w2", MovieID: id, UserID: "u1", IsActive: true})
	s.ErrorIs(err, biz.ErrAlreadyInWatchlist)

	found, err := s.watchlist.FindEntry(s.ctx, "u1", id)
	s.Require().NoError(err)
	s.Equal("w1", found.ID)

	n, err := s.watchlist.CountUserEntries(s.ctx, "u1")
	s.Require().NoError(err)
	s.EqualValues(1, n)

	s.Require().NoError(s.watchlist.DeleteEntry(s.ctx, "w1"))
	_, err = s.watchlist.GetEntry(s.ctx, "w1")
	s.ErrorIs(err, biz.ErrWatchlistEntryNotFound)
	s.ErrorIs(s.watchlist.DeleteEntry(s.ctx, "w1"), biz.ErrWatchlistEntryNotFound)
}

func (s *DataSuite) TestSetFirstAddedToWatchlistAt() {
	s.seedUser("u1")
	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	s.Require().NoError(s.users.SetFirstAddedToWatchlistAt(s.ctx, "u1", at))

	user, err := s.users.GetUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().NotNil(user.FirstAddedToWatchlistAt)
	s.True(at.Equal(*user.FirstAddedToWatchlistAt))

	s.ErrorIs(s.users.SetFirstAddedToWatchlistAt(s.ctx, "ghost", at), biz.ErrUserNotFound)
	_, err = s.users.GetUser(s.ctx, "ghost")
	s.ErrorIs(err, biz.ErrUserNotFound)
}
