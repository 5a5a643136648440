package biz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// WatchlistUseCase manages per-user watchlists.
type WatchlistUseCase struct {
	tx         Transaction
	movies     MovieRepo
	watchlist  WatchlistRepo
	users      UserRepo
	aggregates AggregateRepo
	now        func() time.Time
	log        *log.Helper
}

// NewWatchlistUseCase creates a new WatchlistUseCase instance
func NewWatchlistUseCase(tx Transaction, movies MovieRepo, watchlist WatchlistRepo, users UserRepo, aggregates AggregateRepo, logger log.Logger) *WatchlistUseCase {
	return &WatchlistUseCase{
		tx:         tx,
		movies:     movies,
		watchlist:  watchlist,
		users:      users,
		aggregates: aggregates,
		now:        func() time.Time { return time.Now().UTC() },
		log:        log.NewHelper(logger),
	}
}

// AddToWatchlist adds movieID to the user's watchlist. On the user's first
// entry the identity record's FirstAddedToWatchlistAt is stamped.
func (uc *WatchlistUseCase) AddToWatchlist(ctx context.Context, movieID, userID string) (*WatchlistEntry, error) {
	var entry *WatchlistEntry
	err := uc.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := uc.movies.GetMovie(ctx, movieID); err != nil {
			return err
		}

		_, err := uc.watchlist.FindEntry(ctx, userID, movieID)
		if err == nil {
			return ErrAlreadyInWatchlist
		}
		if !errors.Is(err, ErrWatchlistEntryNotFound) {
			return err
		}

		now := uc.now()
		entry = &WatchlistEntry{
			ID:        NewID(),
			MovieID:   movieID,
			UserID:    userID,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uc.watchlist.AddEntry(ctx, entry); err != nil {
			return err
		}

		n, err := uc.watchlist.CountUserEntries(ctx, userID)
		if err != nil {
			return err
		}
		if n == 1 {
			if err := uc.users.SetFirstAddedToWatchlistAt(ctx, userID, entry.CreatedAt); err != nil {
				if !errors.Is(err, ErrUserNotFound) {
					return err
				}
				uc.log.Warnf("no identity record for user %s, first watchlist time not stored", userID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Infof("added movie %s to watchlist of user %s", movieID, userID)
	return entry, nil
}

// RemoveFromWatchlist deletes an entry owned by userID.
func (uc *WatchlistUseCase) RemoveFromWatchlist(ctx context.Context, entryID, userID string) error {
	err := uc.tx.InTx(ctx, func(ctx context.Context) error {
		entry, err := uc.watchlist.GetEntry(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.UserID != userID {
			return ErrWatchlistEntryNotFound
		}
		return uc.watchlist.DeleteEntry(ctx, entryID)
	})
	if err != nil {
		return err
	}
	uc.log.Infof("removed watchlist entry %s", entryID)
	return nil
}

// ListWatchlist assembles the movies on the user's watchlist.
func (uc *WatchlistUseCase) ListWatchlist(ctx context.Context, userID string, isAdmin bool) ([]*MovieAggregate, error) {
	movies, err := uc.aggregates.WatchlistAggregates(ctx, userID, isAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	return movies, nil
}
