package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"accreditation-gateway/internal/actions"
	"accreditation-gateway/internal/common/camunda"
	"accreditation-gateway/internal/common/config"
	"accreditation-gateway/internal/common/database"
	"accreditation-gateway/internal/common/logger"
	"accreditation-gateway/internal/common/observability"
	"accreditation-gateway/internal/inference"
	"accreditation-gateway/internal/pending"
	"accreditation-gateway/internal/server"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve actions over HTTP and, when enabled, as Zeebe job workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	log := newLogger(cfg)
	log.Info("starting gateway", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"provider":    cfg.GenAI.Provider,
	})

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		tracing, err := observability.NewTracing(observability.TracingOptions{
			ServiceName:       cfg.App.Name,
			Version:           cfg.App.Version,
			Environment:       cfg.App.Environment,
			CollectorEndpoint: cfg.Tracing.CollectorEndpoint,
			SampleRatio:       cfg.Tracing.SampleRatio,
		})
		if err != nil {
			return fmt.Errorf("tracing init failed: %w", err)
		}
		defer func() {
			if err := tracing.Shutdown(); err != nil {
				log.Warn("tracing shutdown failed", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	obs := observability.New(cfg.App.Name, nil)
	defer obs.Shutdown()

	model, err := inference.NewModel(ctx, cfg.GenAI, log)
	if err != nil {
		return fmt.Errorf("model init failed: %w", err)
	}

	catalog, err := actions.Build(cfg, actions.ModelInvokers(model), log)
	if err != nil {
		return err
	}

	tracker, closeTracker, err := newTracker(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeTracker()

	checks := map[string]server.HealthCheck{}
	var zeebe *camunda.Client
	if cfg.Camunda.Enabled {
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		if err != nil {
			return err
		}
		checks["zeebe"] = zeebe.HealthCheck
	}

	srv, err := server.New(server.Options{
		Catalog:        catalog,
		Pending:        tracker,
		Observability:  obs,
		Logger:         log,
		Version:        cfg.App.Version,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		MetricsPath:    cfg.Server.MetricsPath,
		HealthChecks:   checks,
	})
	if err != nil {
		return err
	}
	httpServer := server.NewHTTPServer(cfg.Server, srv.Routes())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", map[string]interface{}{
			"address": cfg.Server.Address,
			"actions": catalog.Len(),
		})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
		defer cancel()
		log.Info("shutting down http server", nil)
		return httpServer.Shutdown(shutdownCtx)
	})

	if zeebe != nil {
		workers := camunda.StartActionWorkers(zeebe.GetClient(), catalog, cfg, log)

		g.Go(func() error {
			<-gctx.Done()
			for _, w := range workers {
				w.Stop()
			}
			log.Info("zeebe workers stopped", map[string]interface{}{"count": len(workers)})
			return zeebe.Close()
		})
	}

	err = g.Wait()
	log.Info("gateway stopped", nil)
	return err
}

func newTracker(ctx context.Context, cfg *config.Config, log logger.Logger) (pending.Tracker, func(), error) {
	if cfg.Pending.Backend != config.PendingBackendRedis {
		return pending.NewMemoryTracker(), func() {}, nil
	}

	rc, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		return nil, nil, err
	}
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, nil, err
	}

	tracker, err := pending.NewRedisTracker(rc.Client, cfg.Pending.KeyPrefix, config.GetDuration(cfg.Pending.TTL))
	if err != nil {
		_ = rc.Close()
		return nil, nil, err
	}
	log.Info("pending guard backed by redis", map[string]interface{}{"address": cfg.Database.Redis.Address})

	return tracker, func() {
		if err := rc.Close(); err != nil {
			log.Warn("redis close failed", map[string]interface{}{"error": err.Error()})
		}
	}, nil
}
