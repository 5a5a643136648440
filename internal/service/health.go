package service

import (
	"context"

	v1 "github.com/moviehub/catalog/api/catalog/v1"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// Pinger reports backing store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthService struct {
	store Pinger
	log   *log.Helper
}

func NewHealthService(store Pinger, logger log.Logger) *HealthService {
	return &HealthService{
		store: store,
		log:   log.NewHelper(log.With(logger, "module", "service/health")),
	}
}

// Check pings the database.
func (s *HealthService) Check(ctx context.Context) (*v1.HealthView, error) {
	if err := s.store.Ping(ctx); err != nil {
		s.log.WithContext(ctx).Errorf("health check failed: %v", err)
		return nil, errors.ServiceUnavailable("UNHEALTHY", "database unreachable")
	}
	return &v1.HealthView{Status: "ok"}, nil
}
