package main

import (
	"fmt"
	"os"

	"github.com/moviehub/catalog/internal/conf"
	"github.com/moviehub/catalog/internal/data"
	"github.com/moviehub/catalog/internal/logger"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/grpc"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/spf13/cobra"

	_ "go.uber.org/automaxprocs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name = "catalog"
	// Version is the version of the compiled software.
	Version = "dev"
	// flagconf is the config file path.
	flagconf string

	id, _ = os.Hostname()
)

func newApp(logger log.Logger, hs *http.Server, gs *grpc.Server) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(hs, gs),
	)
}

func loadBootstrap(path string) (*conf.Bootstrap, error) {
	c := config.New(config.WithSource(file.NewSource(path)))
	defer c.Close()

	if err := c.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		return nil, fmt.Errorf("failed to scan config %s: %w", path, err)
	}
	if bc.Server == nil {
		bc.Server = &conf.Server{}
	}
	if bc.Data == nil || bc.Data.Database == nil {
		return nil, fmt.Errorf("config %s: data.database is required", path)
	}
	if bc.Omdb == nil {
		bc.Omdb = &conf.Omdb{}
	}
	if bc.Auth == nil {
		bc.Auth = &conf.Auth{}
	}
	if bc.Log == nil {
		bc.Log = &conf.Log{}
	}
	return &bc, nil
}

func newLogger(c *conf.Log) (log.Logger, error) {
	zl, err := logger.New(Name, c.Level, c.Format)
	if err != nil {
		return nil, err
	}
	return log.With(zl,
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.version", Version,
		"trace.id", "",
	), nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           Name,
		Short:         "Movie catalog service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagconf, "conf", "configs/config.yaml", "config path, eg: --conf config.yaml")
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bc, err := loadBootstrap(flagconf)
			if err != nil {
				return err
			}
			logger, err := newLogger(bc.Log)
			if err != nil {
				return err
			}

			app, cleanup, err := wireApp(bc.Server, bc.Data, bc.Omdb, bc.Auth, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			return app.Run()
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bc, err := loadBootstrap(flagconf)
			if err != nil {
				return err
			}
			logger, err := newLogger(bc.Log)
			if err != nil {
				return err
			}

			d, cleanup, err := data.NewData(bc.Data, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := d.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			log.NewHelper(logger).Info("schema migrated")
			return nil
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
