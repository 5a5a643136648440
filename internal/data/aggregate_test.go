package data

import (
	"github.com/moviehub/catalog/internal/biz"
)

func (s *DataSuite) rate(movieID, userID string, value int) {
	s.Require().NoError(s.ratings.InsertRating(s.ctx, &biz.MovieRating{
		ID:          biz.NewID(),
		MovieID:     movieID,
		UserID:      userID,
		Rating:      value,
		IsUserRated: true,
	}))
}

func (s *DataSuite) deactivate(id string) {
	s.Require().NoError(s.data.db.Model(&Movie{}).Where("id = ?", id).Update("is_active", false).Error)
}

func (s *DataSuite) TestGetAggregateAnonymousViewer() {
	id := s.seedMovie("Heat", "1995", "Crime, Drama", "Al Pacino")
	s.rate(id, "u1", 5)
	s.Require().NoError(s.watchlist.AddEntry(s.ctx, &biz.WatchlistEntry{ID: "w1", MovieID: id, UserID: "u1", IsActive: true}))

	agg, err := s.aggregates.GetAggregate(s.ctx, id, false, "")

	s.Require().NoError(err)
	s.Equal("Heat", agg.Title)
	s.Len(agg.Genres, 2)
	s.Len(agg.Cast, 1)
	s.Len(agg.OmdbRatings, 1)
	s.NotNil(agg.ExternalRatings)
	s.Empty(agg.ExternalRatings)
	s.NotNil(agg.MovieRatings)
	s.Empty(agg.MovieRatings)
	s.NotNil(agg.Watchlist)
	s.Empty(agg.Watchlist)
	s.Nil(agg.Viewer)
	s.False(agg.IsUserRated())
	s.False(agg.IsInWatchlist())
	s.Equal(5.0, agg.AverageRating)
}

func (s *DataSuite) TestGetAggregateScopesToViewer() {
	id := s.seedMovie("Heat", "1995", "Crime", "")
	s.seedUser("u1")
	s.rate(id, "u1", 3)
	s.rate(id, "u2", 4)
	s.rate(id, "u3", 5)
	s.Require().NoError(s.watchlist.AddEntry(s.ctx, &biz.WatchlistEntry{ID: "w2", MovieID: id, UserID: "u2", IsActive: true}))

	agg, err := s.aggregates.GetAggregate(s.ctx, id, false, "u1")

	s.Require().NoError(err)
	s.Require().Len(agg.MovieRatings, 1)
	s.Equal("u1", agg.MovieRatings[0].UserID)
	s.Empty(agg.Watchlist)
	s.Require().NotNil(agg.Viewer)
	s.Equal("u1", agg.Viewer.ID)
	s.True(agg.IsUserRated())
	s.Equal(4.0, agg.AverageRating)
}

func (s *DataSuite) TestGetAggregateHidesInactiveFromNonAdmins() {
	id := s.seedMovie("Heat", "1995", "", "")
	s.deactivate(id)

	_, err := s.aggregates.GetAggregate(s.ctx, id, false, "")
	s.ErrorIs(err, biz.ErrMovieNotFound)

	agg, err := s.aggregates.GetAggregate(s.ctx, id, true, "")
	s.Require().NoError(err)
	s.False(agg.IsActive)
}

func (s *DataSuite) TestListAggregatesFiltersSortsAndPages() {
	s.seedMovie("Alien", "1979", "", "")
	s.seedMovie("Aliens", "1986", "", "")
	s.seedMovie("Alien 3", "1992", "", "")
	s.seedMovie("Heat", "1995", "", "")
	hidden := s.seedMovie("Alien Resurrection", "1997", "", "")
	s.deactivate(hidden)

	title := "alien"
	page, err := s.aggregates.ListAggregates(s.ctx, &biz.MovieListQuery{
		Title:     &title,
		SortField: biz.SortTitle,
		SortOrder: biz.SortDescending,
		Page:      1,
		PageSize:  2,
	}, false, "")

	s.Require().NoError(err)
	s.EqualValues(3, page.Total)
	s.Require().Len(page.Items, 2)
	s.Equal("Aliens", page.Items[0].Title)
	s.Equal("Alien 3", page.Items[1].Title)

	page, err = s.aggregates.ListAggregates(s.ctx, &biz.MovieListQuery{
		Title:     &title,
		SortField: biz.SortTitle,
		SortOrder: biz.SortDescending,
		Page:      2,
		PageSize:  2,
	}, false, "")
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Equal("Alien", page.Items[0].Title)
}

func (s *DataSuite) TestListAggregatesAdminIsUnpaged() {
	for _, title := range []string{"A", "B", "C"} {
		s.seedMovie(title, "2000", "", "")
	}
	s.deactivate(s.seedMovie("D", "2000", "", ""))

	page, err := s.aggregates.ListAggregates(s.ctx, &biz.MovieListQuery{
		SortField: biz.SortYear,
		SortOrder: biz.SortAscending,
		Page:      1,
		PageSize:  2,
	}, true, "")

	s.Require().NoError(err)
	s.Len(page.Items, 4)
	s.EqualValues(4, page.Total)
}

func (s *DataSuite) TestListAggregatesExactYear() {
	s.seedMovie("Heat", "1995", "", "")
	s.seedMovie("Casino", "1995", "", "")
	s.seedMovie("Ronin", "1998", "", "")

	year := "1995"
	page, err := s.aggregates.ListAggregates(s.ctx, &biz.MovieListQuery{Year: &year, Page: 1, PageSize: 10}, false, "")

	s.Require().NoError(err)
	s.EqualValues(2, page.Total)
	s.Len(page.Items, 2)
}

func (s *DataSuite) TestTopAggregatesFollowPosition() {
	ids := make([]string, 0, 3)
	for _, title := range []string{"A", "B", "C"} {
		ids = append(ids, s.seedMovie(title, "2000", "", ""))
	}
	s.Require().NoError(s.top.ReplaceTopMovies(s.ctx, []string{ids[2], ids[0], ids[1]}))

	aggs, err := s.aggregates.TopAggregates(s.ctx, false, "")

	s.Require().NoError(err)
	s.Require().Len(aggs, 3)
	s.Equal("C", aggs[0].Title)
	s.Equal("A", aggs[1].Title)
	s.Equal("B", aggs[2].Title)
}

func (s *DataSuite) TestRecentAggregatesNewestFirst() {
	for i := 0; i < 12; i++ {
		s.seedMovie(string(rune('A'+i)), "2000", "", "")
	}

	aggs, err := s.aggregates.RecentAggregates(s.ctx, biz.RecentMovieSize, false, "")

	s.Require().NoError(err)
	s.Require().Len(aggs, biz.RecentMovieSize)
	s.Equal("L", aggs[0].Title)
	s.Equal("C", aggs[9].Title)
}

func (s *DataSuite) TestSearchAggregates() {
	s.seedMovie("The Godfather", "1972", "", "")
	s.seedMovie("The Godfather Part II", "1974", "", "")
	s.seedMovie("Goodfellas", "1990", "", "")

	aggs, err := s.aggregates.SearchAggregates(s.ctx, "godfather", false, "")

	s.Require().NoError(err)
	s.Require().Len(aggs, 2)
	s.Equal("The Godfather", aggs[0].Title)
}

func (s *DataSuite) TestWatchlistAggregates() {
	heat := s.seedMovie("Heat", "1995", "", "")
	s.seedMovie("Ronin", "1998", "", "")
	s.Require().NoError(s.watchlist.AddEntry(s.ctx, &biz.WatchlistEntry{ID: "w1", MovieID: heat, UserID: "u1", IsActive: true}))

	aggs, err := s.aggregates.WatchlistAggregates(s.ctx, "u1", false)

	s.Require().NoError(err)
	s.Require().Len(aggs, 1)
	s.Equal("Heat", aggs[0].Title)
	s.True(aggs[0].IsInWatchlist())
}

func (s *DataSuite) TestAssembleEmptySet() {
	aggs, err := s.aggregates.TopAggregates(s.ctx, false, "u1")

	s.Require().NoError(err)
	s.NotNil(aggs)
	s.Empty(aggs)
}
