package data

import (
	"context"
	"fmt"
	"time"

	"github.com/moviehub/catalog/internal/biz"
	"github.com/moviehub/catalog/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewTransaction,
	NewMovieRepo,
	NewAggregateRepo,
	NewRatingRepo,
	NewTopMovieRepo,
	NewWatchlistRepo,
	NewUserRepo,
	NewOmdbClient,
)

const (
	defaultCacheTTL      = 15 * time.Minute
	defaultRedeleteDelay = 500 * time.Millisecond
)

func utcNow() time.Time {
	return time.Now().UTC()
}

// Data encapsulates database and cache connections
type Data struct {
	db       *gorm.DB
	rdb      *redis.Client
	cacheTTL time.Duration
	// redeleteAfter is the delay before invalidated keys are deleted again.
	redeleteAfter time.Duration
	now           func() time.Time
	log           *log.Helper
}

// NewData creates Data instance with database and Redis connections
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	l := log.NewHelper(logger)

	db, err := openDB(c.Database, logger)
	if err != nil {
		l.Errorf("failed to connect to database: %v", err)
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		l.Errorf("failed to get database instance: %v", err)
		return nil, nil, err
	}

	// Configure connection pool
	maxIdle, maxOpen := 10, 100
	if c.Database.MaxIdleConns > 0 {
		maxIdle = c.Database.MaxIdleConns
	}
	if c.Database.MaxOpenConns > 0 {
		maxOpen = c.Database.MaxOpenConns
	}
	lifetime := time.Hour
	if d := c.Database.ConnMaxLifetime.AsDuration(); d > 0 {
		lifetime = d
	}
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(lifetime)

	l.Info("database connected successfully")

	var rdb *redis.Client
	cacheTTL := defaultCacheTTL
	if c.Redis != nil && c.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:         c.Redis.Addr,
			ReadTimeout:  c.Redis.ReadTimeout.AsDuration(),
			WriteTimeout: c.Redis.WriteTimeout.AsDuration(),
		})
		if ttl := c.Redis.CacheTTL.AsDuration(); ttl > 0 {
			cacheTTL = ttl
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := rdb.Ping(ctx).Err(); err != nil {
			l.Warnf("failed to connect to redis: %v", err)
			// Redis is optional, continue without it
			_ = rdb.Close()
			rdb = nil
		} else {
			l.Info("redis connected successfully")
		}
	}

	data := &Data{
		db:       db,
		rdb:      rdb,
		cacheTTL:      cacheTTL,
		redeleteAfter: defaultRedeleteDelay,
		now:           utcNow,
		log:           l,
	}

	cleanup := func() {
		l.Info("closing data resources")
		if data.rdb != nil {
			if err := data.rdb.Close(); err != nil {
				l.Errorf("failed to close redis: %v", err)
			}
		}
		if sqlDB != nil {
			if err := sqlDB.Close(); err != nil {
				l.Errorf("failed to close database: %v", err)
			}
		}
	}

	return data, cleanup, nil
}

// NewDataFromDB wraps an already-open gorm handle. rdb may be nil.
func NewDataFromDB(db *gorm.DB, rdb *redis.Client, logger log.Logger) *Data {
	return &Data{
		db:       db,
		rdb:      rdb,
		cacheTTL:      defaultCacheTTL,
		redeleteAfter: defaultRedeleteDelay,
		now:           utcNow,
		log:           log.NewHelper(logger),
	}
}

func openDB(c *conf.Data_Database, logger log.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch c.Driver {
	case "", "postgres":
		dialector = postgres.Open(c.Source)
	case "sqlite":
		dialector = sqlite.Open(c.Source)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(logger, c.Debug),
		TranslateError: true,
		NowFunc:        utcNow,
	})
}

// Migrate creates or updates the catalog schema.
func (d *Data) Migrate(ctx context.Context) error {
	return d.db.WithContext(ctx).AutoMigrate(Models()...)
}

// Ping checks database connectivity.
func (d *Data) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// cacheable reports whether ctx may read or fill the cache. Transactions see
// uncommitted state, so they bypass it.
func (d *Data) cacheable(ctx context.Context) bool {
	return d.rdb != nil && !inTx(ctx)
}

// invalidate deletes keys now and again after redeleteAfter. The second
// delete evicts values written back by readers that loaded them before the
// change committed.
func (d *Data) invalidate(ctx context.Context, keys ...string) {
	if d.rdb == nil || len(keys) == 0 {
		return
	}
	if err := d.rdb.Del(ctx, keys...).Err(); err != nil {
		d.log.Warnf("failed to invalidate cache keys %v: %v", keys, err)
	}
	if d.redeleteAfter <= 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	time.AfterFunc(d.redeleteAfter, func() {
		if err := d.rdb.Del(ctx, keys...).Err(); err != nil {
			d.log.Warnf("failed to invalidate cache keys %v: %v", keys, err)
		}
	})
}

type contextTxKey struct{}

// DB returns the transaction bound to ctx, or the root handle.
func (d *Data) DB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(contextTxKey{}).(*gorm.DB); ok {
		return tx
	}
	return d.db.WithContext(ctx)
}

// InTx runs fn inside a transaction. Nested calls join the outer transaction.
func (d *Data) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(contextTxKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, contextTxKey{}, tx))
	})
}

// inTx reports whether ctx carries an open transaction.
func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(contextTxKey{}).(*gorm.DB)
	return ok
}

// NewTransaction exposes Data as a biz.Transaction.
func NewTransaction(d *Data) biz.Transaction {
	return d
}
