package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"churnprep/internal/api"
	"churnprep/internal/db"
	"churnprep/internal/db/repository"
	"churnprep/internal/pipeline"
)

func newServeCmd() *cobra.Command {
	var localDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the run-history API and, when a schedule is configured, recurring runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(envFlag(cmd))
			if err != nil {
				return err
			}
			cfg := app.cfg

			writeDB, readDB, err := db.OpenSQLitePair(cfg.MetaDBPath, 0)
			if err != nil {
				return err
			}
			defer func() { _ = writeDB.Close() }()
			defer func() { _ = readDB.Close() }()
			if err := db.RunMigrations(writeDB); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			handler := api.NewHandler(repository.NewRunRepo(readDB), app.logger)
			srv := &http.Server{
				Addr:              cfg.ListenAddr,
				Handler:           api.Router(handler, cfg),
				ReadHeaderTimeout: 10 * time.Second,
			}

			if cfg.Schedule != "" {
				store, closeStore, err := app.objectStore(ctx, localDir)
				if err != nil {
					return err
				}
				defer closeStore()

				p := pipeline.New(cfg, nil, store, app.featureStore(ctx), repository.NewRunRepo(writeDB), app.logger)
				sched := pipeline.NewScheduler(p, cfg.Schedule, app.logger)
				if err := sched.Start(); err != nil {
					return err
				}
				defer sched.Stop()
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				app.logger.Info("http server listening", "addr", cfg.ListenAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&localDir, "local-dir", "", "write scheduled datasets to a local directory instead of the configured bucket")
	return cmd
}
