package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/contractly/contractly/internal/billing"
	"github.com/contractly/contractly/internal/storage/postgres"
	billingmodule "github.com/contractly/contractly/modules/billing"
	"github.com/contractly/contractly/pkg/config"
	"github.com/contractly/contractly/pkg/httpserver"
	"github.com/contractly/contractly/pkg/logger"
	"github.com/contractly/contractly/pkg/pg"
)

type appConfig struct {
	Log    logger.Config
	DB     pg.Config
	Server httpserver.Config
}

func main() {
	ctx := context.Background()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.NewFromConfig(cfg.Log, logger.WithService("contractly"))
	slog.SetDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.ErrorContext(ctx, "server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.DB, log); err != nil {
		return err
	}

	ledger := postgres.NewLedger(pool)
	plans := postgres.NewCatalog(pool)
	users := postgres.NewDirectory(pool)

	svc := billing.NewService(ledger, plans, users, billing.WithLogger(log))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthz(pg.Healthcheck(pool)))
	r.Mount("/api", billingmodule.Router(billingmodule.RouterOptions{
		Service: svc,
		Plans:   plans,
		Users:   users,
		Logger:  log,
	}))

	return httpserver.New(cfg.Server, log).Run(ctx, r)
}

func healthz(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := check(r.Context()); err != nil {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
