// cmd/lending/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"libralend/internal/catalog"
	"libralend/internal/config"
	"libralend/internal/db"
	"libralend/internal/ledger"
	"libralend/internal/lending"
	"libralend/internal/logger"
	"libralend/internal/membership"
	"libralend/internal/notify"
	"libralend/internal/reviews"
	"libralend/internal/telemetry"
)

func main() {
	cfg, err := config.Read()
	if err != nil {
		l := logger.Get()
		l.Fatal().Err(err).Msg("read config")
	}
	log := logger.New(cfg.Debug, os.Stdout)
	logger.Set(log)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("lending service stopped")
	}
	log.Info().Msg("lending service stopped")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, "libralend", cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Error().Err(err).Msg("flush telemetry")
		}
	}()

	resolver := notify.NewChannelResolver(log, cfg.NotifyTimeout)

	var (
		books   catalog.Repository
		users   membership.Repository
		history catalog.HistoryReader
	)
	switch cfg.Store {
	case config.StorePostgres:
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()
		if err := db.Migrate(conn.DB); err != nil {
			return err
		}
		repo := catalog.NewPostgresRepository(conn, ledger.New(conn.DB))
		books, history = repo, repo
		users = membership.NewPostgresRepository(conn, resolver)
	default:
		repo := catalog.NewMemoryRepository()
		books, history = repo, repo
		users = membership.NewMemoryRepository()
	}

	var source reviews.Source = reviews.StaticSource{}
	if cfg.ReviewURL != "" {
		source = reviews.NewClient(cfg.ReviewURL, cfg.ReviewRPS, cfg.NotifyTimeout)
	}

	svc := lending.NewService(books, users, source, lending.WithLogger(log))
	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: lending.NewHandler(svc, resolver, history, log).Routes(),
	}

	group, gCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info().Str("addr", cfg.Addr).Str("store", cfg.Store).Msg("lending service started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gCtx.Done()
		log.Debug().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
