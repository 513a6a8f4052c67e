package main

import (
	"errors"
	"fmt"
	"os"

	"petclinic/internal/domain/owners"
	"petclinic/internal/platform/timing"
	"petclinic/internal/router"
	"petclinic/internal/seed"

	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample owners and pets (embedded fixture or --file)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			if cfg.DB.InMemory() {
				return errors.New("seed: db.dsn (DB_DSN) is required")
			}

			sw := timing.NewStopwatch("seed")

			_ = sw.Start("parse fixture")
			fx, err := loadFixture(file)
			_ = sw.Stop()
			if err != nil {
				return err
			}

			_ = sw.Start("open database")
			db, err := openDB(cmd.Context(), cfg)
			_ = sw.Stop()
			if err != nil {
				return err
			}
			defer db.Close()

			in := router.NewInterceptor(cfg.Timing.Methods, log, nil, nil)
			svc := owners.NewService(router.OwnersRepository(db, in))

			_ = sw.Start("load owners")
			res, err := seed.Load(cmd.Context(), svc, fx)
			_ = sw.Stop()
			if err != nil {
				return err
			}

			log.Info("seed done", map[string]any{"created": res.Created, "skipped": res.Skipped})
			fmt.Fprintln(cmd.OutOrStdout(), sw.PrettyPrint())
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML fixture (default: embedded sample data)")
	return cmd
}

func loadFixture(path string) (seed.Fixture, error) {
	if path == "" {
		return seed.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return seed.Fixture{}, fmt.Errorf("seed: %w", err)
	}
	defer f.Close()
	return seed.Parse(f)
}
