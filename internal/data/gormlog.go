package data

import (
	"context"
	"errors"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormLogger routes gorm output onto the kratos logger.
type gormLogger struct {
	log   *log.Helper
	debug bool
}

func newGormLogger(logger log.Logger, debug bool) gormlogger.Interface {
	return &gormLogger{
		log:   log.NewHelper(log.With(logger, "module", "data/gorm")),
		debug: debug,
	}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return l
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.log.WithContext(ctx).Infof(msg, data...)
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.log.WithContext(ctx).Warnf(msg, data...)
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.log.WithContext(ctx).Errorf(msg, data...)
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, gorm.ErrDuplicatedKey):
		sql, rows := fc()
		l.log.WithContext(ctx).Errorw("msg", "sql error", "error", err, "sql", sql, "rows", rows, "elapsed", elapsed)
	case elapsed > slowQueryThreshold:
		sql, rows := fc()
		l.log.WithContext(ctx).Warnw("msg", "slow sql query", "sql", sql, "rows", rows, "elapsed", elapsed)
	case l.debug:
		sql, rows := fc()
		l.log.WithContext(ctx).Debugw("msg", "sql trace", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
