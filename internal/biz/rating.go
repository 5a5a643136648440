package biz

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
)

// RatingUseCase handles rating-related business logic
type RatingUseCase struct {
	tx         Transaction
	movieRepo  MovieRepo
	ratingRepo RatingRepo
	log        *log.Helper
}

// NewRatingUseCase creates a new RatingUseCase instance
func NewRatingUseCase(tx Transaction, movieRepo MovieRepo, ratingRepo RatingRepo, logger log.Logger) *RatingUseCase {
	return &RatingUseCase{
		tx:         tx,
		movieRepo:  movieRepo,
		ratingRepo: ratingRepo,
		log:        log.NewHelper(logger),
	}
}

// RateRequest is one rating attempt. RatingID optionally targets an existing
// row for an admin correction.
type RateRequest struct {
	MovieID  string
	UserID   string
	RatingID string
	Value    int
	IsAdmin  bool
}

// RateMovie applies a rating. The first rating for (movie, user) is inserted;
// a repeat is rejected with ErrAlreadyRated unless the caller is an admin, in
// which case the stored value is overwritten. created reports an insert.
func (uc *RatingUseCase) RateMovie(ctx context.Context, req *RateRequest) (rating *MovieRating, created bool, err error) {
	if req.Value < 1 || req.Value > 5 {
		uc.log.Warnf("invalid rating value %v for movie %s", req.Value, req.MovieID)
		return nil, false, ErrInvalidRating
	}

	err = uc.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := uc.movieRepo.GetMovie(ctx, req.MovieID); err != nil {
			return err
		}

		existing, err := uc.existingRating(ctx, req)
		if err != nil && !errors.Is(err, ErrRatingNotFound) {
			return err
		}
		if req.targetsRating() && existing == nil {
			return err
		}

		switch {
		case existing == nil:
			rating = &MovieRating{
				ID:          NewID(),
				MovieID:     req.MovieID,
				UserID:      req.UserID,
				Rating:      req.Value,
				IsUserRated: true,
			}
			created = true
			return uc.ratingRepo.InsertRating(ctx, rating)
		case req.IsAdmin:
			rating, err = uc.ratingRepo.UpdateRatingValue(ctx, existing.ID, req.Value)
			return err
		default:
			return ErrAlreadyRated
		}
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyRated) {
			uc.log.Infof("user %s already rated movie %s", req.UserID, req.MovieID)
		}
		return nil, false, err
	}

	uc.ratingRepo.InvalidateAverage(ctx, req.MovieID)
	uc.log.Infof("user %s rated movie %s with %v (created: %t)", req.UserID, req.MovieID, req.Value, created)
	return rating, created, nil
}

// targetsRating reports whether the request addresses a rating row by id.
// Only admins may do so; everyone else acts on their own (movie, user) row.
func (req *RateRequest) targetsRating() bool {
	return req.IsAdmin && req.RatingID != ""
}

func (uc *RatingUseCase) existingRating(ctx context.Context, req *RateRequest) (*MovieRating, error) {
	if !req.targetsRating() {
		return uc.ratingRepo.FindRating(ctx, req.MovieID, req.UserID)
	}
	r, err := uc.ratingRepo.GetRating(ctx, req.RatingID)
	if err != nil {
		return nil, err
	}
	if r.MovieID != req.MovieID {
		return nil, fmt.Errorf("%w: rating %s does not belong to movie %s", ErrRatingNotFound, req.RatingID, req.MovieID)
	}
	return r, nil
}

// DeleteRating removes a rating row by id. Ownership is the caller's concern.
func (uc *RatingUseCase) DeleteRating(ctx context.Context, ratingID string) error {
	var movieID string
	err := uc.tx.InTx(ctx, func(ctx context.Context) error {
		r, err := uc.ratingRepo.GetRating(ctx, ratingID)
		if err != nil {
			return err
		}
		movieID = r.MovieID
		return uc.ratingRepo.DeleteRating(ctx, ratingID)
	})
	if err != nil {
		return err
	}

	uc.ratingRepo.InvalidateAverage(ctx, movieID)
	uc.log.Infof("deleted rating %s", ratingID)
	return nil
}

// ListUserRatings returns the user's ratings joined with movie summaries.
func (uc *RatingUseCase) ListUserRatings(ctx context.Context, userID string) ([]*UserRating, error) {
	ratings, err := uc.ratingRepo.ListUserRatings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings for user %s: %w", userID, err)
	}
	return ratings, nil
}
