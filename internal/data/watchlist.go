package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moviehub/catalog/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
)

type watchlistRepo struct {
	data *Data
	log  *log.Helper
}

// NewWatchlistRepo creates a new watchlist repository
func NewWatchlistRepo(data *Data, logger log.Logger) biz.WatchlistRepo {
	return &watchlistRepo{
		data: data,
		log:  log.NewHelper(log.With(logger, "module", "data/watchlist")),
	}
}

func (r *watchlistRepo) FindEntry(ctx context.Context, userID, movieID string) (*biz.WatchlistEntry, error) {
	var entry UserWatchlist
	err := r.data.DB(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrWatchlistEntryNotFound
		}
		return nil, fmt.Errorf("failed to find watchlist entry: %w", err)
	}
	return modelToWatchlistEntry(&entry), nil
}

func (r *watchlistRepo) GetEntry(ctx context.Context, id string) (*biz.WatchlistEntry, error) {
	var entry UserWatchlist
	if err := r.data.DB(ctx).Where("id = ?", id).Take(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrWatchlistEntryNotFound
		}
		return nil, fmt.Errorf("failed to get watchlist entry: %w", err)
	}
	return modelToWatchlistEntry(&entry), nil
}

func (r *watchlistRepo) AddEntry(ctx context.Context, entry *biz.WatchlistEntry) error {
	dbEntry := &UserWatchlist{
		ID:        entry.ID,
		UserID:    entry.UserID,
		MovieID:   entry.MovieID,
		IsActive:  entry.IsActive,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
	if err := r.data.DB(ctx).Create(dbEntry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return biz.ErrAlreadyInWatchlist
		}
		return fmt.Errorf("failed to add watchlist entry: %w", err)
	}
	entry.CreatedAt = dbEntry.CreatedAt
	entry.UpdatedAt = dbEntry.UpdatedAt
	return nil
}

func (r *watchlistRepo) DeleteEntry(ctx context.Context, id string) error {
	res := r.data.DB(ctx).Where("id = ?", id).Delete(&UserWatchlist{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete watchlist entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return biz.ErrWatchlistEntryNotFound
	}
	return nil
}

func (r *watchlistRepo) CountUserEntries(ctx context.Context, userID string) (int64, error) {
	var n int64
	if err := r.data.DB(ctx).Model(&UserWatchlist{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count watchlist entries: %w", err)
	}
	return n, nil
}

func modelToWatchlistEntry(m *UserWatchlist) *biz.WatchlistEntry {
	return &biz.WatchlistEntry{
		ID:        m.ID,
		MovieID:   m.MovieID,
		UserID:    m.UserID,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type userRepo struct {
	data *Data
	log  *log.Helper
}

// NewUserRepo creates a repository over the identity provider's user table
func NewUserRepo(data *Data, logger log.Logger) biz.UserRepo {
	return &userRepo{
		data: data,
		log:  log.NewHelper(log.With(logger, "module", "data/user")),
	}
}

func (r *userRepo) GetUser(ctx context.Context, id string) (*biz.ApplicationUser, error) {
	var user ApplicationUser
	if err := r.data.DB(ctx).Where("id = ?", id).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return modelToUser(&user), nil
}

func (r *userRepo) SetFirstAddedToWatchlistAt(ctx context.Context, id string, at time.Time) error {
	res := r.data.DB(ctx).Model(&ApplicationUser{}).
		Where("id = ?", id).
		Update("first_added_to_watchlist_at", at)
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return biz.ErrUserNotFound
	}
	return nil
}

func modelToUser(m *ApplicationUser) *biz.ApplicationUser {
	return &biz.ApplicationUser{
		ID:                      m.ID,
		IsAdmin:                 m.IsAdmin,
		IsTrustedMember:         m.IsTrustedMember,
		FirstAddedToWatchlistAt: m.FirstAddedToWatchlistAt,
	}
}
