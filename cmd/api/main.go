package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"petclinic/internal/adapters/storage/sqlstore"
	"petclinic/internal/platform/config"
	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/metrics"
	"petclinic/internal/platform/tracing"
	"petclinic/internal/router"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "petclinic",
		Short:        "Veterinary clinic owners, pets and visits API",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API (default)",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create tables and seed pet types",
			RunE:  runMigrate,
		},
		newSeedCmd(),
		newOwnersCmd(),
	)
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.Init(ctx, tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  cfg.Log.App,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(sctx)
	}()

	db, err := openDB(ctx, cfg)
	if err != nil {
		log.Error("database unavailable", map[string]any{"error": err.Error()})
		return err
	}
	if db != nil {
		defer db.Close()
	}

	h := router.NewRouter(router.Options{
		Logger:       log,
		DB:           db,
		TimedMethods: cfg.Timing.Methods,
		Metrics:      metrics.New(),
		Tracer:       tp.Tracer(),
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      h,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{
			"addr":          cfg.HTTP.Addr,
			"storage":       storageName(cfg),
			"timed_methods": cfg.Timing.Methods,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", map[string]any{"error": err.Error()})
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	if cfg.DB.InMemory() {
		return errors.New("migrate: db.dsn (DB_DSN) is required")
	}

	db, err := openDB(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	log.Info("schema ready", map[string]any{"driver": cfg.DB.Driver})
	return nil
}

func bootstrap() (config.Config, logger.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.Log.App,
	})
	return cfg, log, nil
}

// openDB devuelve nil sin DSN (modo in-memory). Con DSN abre y migra.
func openDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.DB.InMemory() {
		return nil, nil
	}
	db, err := sqlstore.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, err
	}
	if err := sqlstore.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func storageName(cfg config.Config) string {
	if cfg.DB.InMemory() {
		return "memory"
	}
	return cfg.DB.Driver
}
