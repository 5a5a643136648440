package service

import (
	"fmt"
	"time"

	v1 "github.com/moviehub/catalog/api/catalog/v1"
	"github.com/moviehub/catalog/internal/biz"
)

func movieView(m *biz.Movie) *v1.MovieView {
	return &v1.MovieView{
		Id:              m.ID,
		Title:           m.Title,
		YearOfRelease:   m.YearOfRelease,
		Rated:           m.Rated,
		Released:        m.Released,
		Runtime:         m.Runtime,
		Plot:            m.Plot,
		Awards:          m.Awards,
		Poster:          m.Poster,
		TotalSeasons:    m.TotalSeasons,
		IsActive:        m.IsActive,
		Genres:          []v1.GenreView{},
		Cast:            []v1.CastView{},
		ExternalRatings: []v1.ExternalRatingView{},
		OmdbRatings:     []v1.OmdbRatingView{},
		MovieRatings:    []v1.MovieRatingView{},
		Watchlist:       []v1.WatchlistEntryView{},
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func aggregateView(a *biz.MovieAggregate, now time.Time) *v1.MovieView {
	view := movieView(&a.Movie)
	for _, g := range a.Genres {
		view.Genres = append(view.Genres, v1.GenreView{Id: g.ID, Name: g.Name})
	}
	for _, c := range a.Cast {
		view.Cast = append(view.Cast, v1.CastView{Id: c.ID, Name: c.Name, Role: c.Role})
	}
	for _, r := range a.ExternalRatings {
		view.ExternalRatings = append(view.ExternalRatings, v1.ExternalRatingView{Source: r.Source, Rating: r.Rating})
	}
	for _, r := range a.OmdbRatings {
		view.OmdbRatings = append(view.OmdbRatings, v1.OmdbRatingView{Source: r.Source, Value: r.Value})
	}
	for i := range a.MovieRatings {
		view.MovieRatings = append(view.MovieRatings, *ratingView(&a.MovieRatings[i]))
	}
	for _, w := range a.Watchlist {
		view.Watchlist = append(view.Watchlist, *watchlistView(&w))
	}

	view.Rating = a.AverageRating
	view.IsUserRated = a.IsUserRated()
	view.IsInWatchlist = a.IsInWatchlist()
	if a.IsInWatchlist() {
		view.WatchlistEntryId = a.Watchlist[0].ID
	}
	if a.IsUserRated() {
		view.UserRating = a.MovieRatings[0].Rating
	}
	if a.Viewer != nil {
		view.FirstAddedToWatchlistAt = sinceText(a.Viewer.FirstAddedToWatchlistAt, now)
	}
	return view
}

func aggregateViews(aggs []*biz.MovieAggregate, now time.Time) []*v1.MovieView {
	views := make([]*v1.MovieView, 0, len(aggs))
	for _, a := range aggs {
		views = append(views, aggregateView(a, now))
	}
	return views
}

func ratingView(r *biz.MovieRating) *v1.MovieRatingView {
	return &v1.MovieRatingView{
		Id:          r.ID,
		MovieId:     r.MovieID,
		UserId:      r.UserID,
		Rating:      r.Rating,
		IsUserRated: r.IsUserRated,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func userRatingViews(ratings []*biz.UserRating) []*v1.UserRatingView {
	views := make([]*v1.UserRatingView, 0, len(ratings))
	for _, r := range ratings {
		views = append(views, &v1.UserRatingView{
			MovieRatingView: *ratingView(&r.MovieRating),
			MovieTitle:      r.MovieTitle,
			YearOfRelease:   r.YearOfRelease,
			Poster:          r.Poster,
		})
	}
	return views
}

func watchlistView(w *biz.WatchlistEntry) *v1.WatchlistEntryView {
	return &v1.WatchlistEntryView{
		Id:        w.ID,
		MovieId:   w.MovieID,
		UserId:    w.UserID,
		CreatedAt: w.CreatedAt,
	}
}

// sinceText renders at as "Today" or "N days ago" relative to now. Whole
// elapsed days are counted; a nil time renders empty.
func sinceText(at *time.Time, now time.Time) string {
	if at == nil {
		return ""
	}
	days := int(now.Sub(*at).Hours() / 24)
	if days <= 0 {
		return "Today"
	}
	return fmt.Sprintf("%d days ago", days)
}
