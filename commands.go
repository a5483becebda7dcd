package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/omardr777/ai-dashboard/config"
	"github.com/omardr777/ai-dashboard/controllers"
	"github.com/omardr777/ai-dashboard/middlewares"
	"github.com/omardr777/ai-dashboard/reconcile"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			if cfg.LogLevel != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}
			router := controllers.NewRouter(a.handler(), controllers.RouterConfig{
				CORSOrigins:   cfg.CORSOrigins,
				AuthJWTSecret: cfg.AuthJWTSecret,
			})
			if cfg.AuthJWTSecret == "" {
				log.Warn("AUTH_JWT_SECRET is empty, mutating routes are unauthenticated")
			}

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				log.Info("Server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func newSyncCmd() *cobra.Command {
	var (
		bucket      string
		dryRun      bool
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Move mismatched tree images to their labeled species folder",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			if bucket == "" {
				bucket = cfg.S3Bucket
			}
			if !cmd.Flags().Changed("concurrency") {
				concurrency = cfg.SyncConcurrency
			}
			report, err := a.reconciler.Run(ctx, reconcile.Options{
				Bucket:      bucket,
				DryRun:      dryRun,
				Concurrency: concurrency,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVar(&bucket, "bucket", "", "bucket to reconcile (defaults to S3_BUCKET)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report planned moves without touching the bucket")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "rows processed in parallel (defaults to SYNC_CONCURRENCY)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the sync journal tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := config.OpenDatabase(cfg, log)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			if all {
				err = config.MigrateAll(db)
			} else {
				err = config.MigrateJournal(db)
			}
			if err != nil {
				return err
			}
			log.Info("Migration complete", zap.Bool("all", all))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "also create the trees, images, predictions and species tables")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the protected routes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			token, err := middlewares.IssueToken(cfg.AuthJWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject, usually the reviewer name")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
