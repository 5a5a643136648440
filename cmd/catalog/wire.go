//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"github.com/moviehub/catalog/internal/biz"
	"github.com/moviehub/catalog/internal/conf"
	"github.com/moviehub/catalog/internal/data"
	"github.com/moviehub/catalog/internal/server"
	"github.com/moviehub/catalog/internal/service"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(*conf.Server, *conf.Data, *conf.Omdb, *conf.Auth, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		server.ProviderSet,
		data.ProviderSet,
		biz.ProviderSet,
		service.ProviderSet,
		wire.Bind(new(service.Pinger), new(*data.Data)),
		newApp,
	))
}
