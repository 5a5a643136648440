package server

import (
	"net/http"

	v1 "github.com/moviehub/catalog/api/catalog/v1"
	"github.com/moviehub/catalog/internal/conf"
	"github.com/moviehub/catalog/internal/service"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// statusResponse is implemented by replies that choose their own status code.
type statusResponse interface {
	HTTPStatus() int
}

// customResponseEncoder writes the status carried by the reply. The content
// type is set before the header is flushed.
func customResponseEncoder(w http.ResponseWriter, r *http.Request, v interface{}) error {
	sr, ok := v.(statusResponse)
	if !ok {
		return khttp.DefaultResponseEncoder(w, r, v)
	}

	codec, _ := khttp.CodecForRequest(r, "Accept")
	data, err := codec.Marshal(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/"+codec.Name())
	w.WriteHeader(sr.HTTPStatus())
	_, err = w.Write(data)
	return err
}

// NewHTTPServer new an HTTP server.
func NewHTTPServer(c *conf.Server, auth *conf.Auth, catalog *service.CatalogService, health *service.HealthService, logger log.Logger) *khttp.Server {
	var opts = []khttp.ServerOption{
		khttp.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
			MetricsMiddleware(),
			ViewerMiddleware(auth.AdminToken),
			AdminMiddleware(auth.AdminToken),
		),
		khttp.ResponseEncoder(customResponseEncoder),
	}
	if c.Http != nil {
		if c.Http.Network != "" {
			opts = append(opts, khttp.Network(c.Http.Network))
		}
		if c.Http.Addr != "" {
			opts = append(opts, khttp.Address(c.Http.Addr))
		}
		if c.Http.Timeout != nil {
			opts = append(opts, khttp.Timeout(c.Http.Timeout.AsDuration()))
		}
	}
	srv := khttp.NewServer(opts...)

	srv.Handle("/metrics", promhttp.Handler())
	srv.Route("/").GET("/healthz", func(ctx khttp.Context) error {
		view, err := health.Check(ctx)
		if err != nil {
			return err
		}
		return ctx.Result(http.StatusOK, view)
	})
	v1.RegisterCatalogHTTPServer(srv, catalog)
	return srv
}
