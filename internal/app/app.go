package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/go-chi/httplog/v2"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/hashlink/url-shortener/internal/adapter/repository/sqlrepo"
	"github.com/hashlink/url-shortener/internal/config"
	"github.com/hashlink/url-shortener/internal/usecase"
	"github.com/hashlink/url-shortener/migrations"
	"github.com/hashlink/url-shortener/pkg/database"

	delivery "github.com/hashlink/url-shortener/internal/adapter/delivery/http"
)

const serviceName = "url-shortener"

func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	logger, err := newLogger(cfg, os.Stdout)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	db, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer db.Close()

	logger.Info("storage ready", slog.String("driver", cfg.Storage.Driver))

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        newHandler(cfg, logger, db),
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", slog.String("addr", server.Addr))

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down")

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}

func newLogger(cfg *config.Config, w io.Writer) (*httplog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	return httplog.NewLogger(serviceName, httplog.Options{
		LogLevel: level,
		JSON:     cfg.Env != config.EnvDev,
		Concise:  cfg.Env == config.EnvDev,
		Writer:   w,
	}), nil
}

// openStorage connects to the configured store and brings its schema up to date.
func openStorage(ctx context.Context, cfg config.Storage) (*sqlx.DB, error) {
	db, err := database.New(
		ctx,
		cfg.Driver,
		cfg.DSN(),
		database.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		database.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		database.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		database.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(db, cfg.DSN(), migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func newHandler(cfg *config.Config, logger *httplog.Logger, db *sqlx.DB) http.Handler {
	urlRepo := sqlrepo.NewURLRepository(db)
	urlUseCase := usecase.New(cfg.URLTTL, urlRepo)

	return delivery.NewRouter(logger, urlUseCase, cfg.Name)
}
