package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"strategic_finance/pkg/api"
	apiconfig "strategic_finance/pkg/api/config"
	apifinance "strategic_finance/pkg/api/finance"
	"strategic_finance/pkg/app"
	"strategic_finance/pkg/core/config"
	"strategic_finance/pkg/core/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configFile := flag.String("config", os.Getenv("FINANCE_CONFIG"), "path to config.yaml")
	flag.Parse()

	settings, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		os.Exit(1)
	}

	log := logger.NewZapAdapter(logger.New(settings.Logging.Level, settings.Logging.Format))
	defer log.Sync()

	if err := run(settings, log); err != nil {
		log.WithError(err).Error("server stopped", nil)
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(settings *config.Settings, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, settings, log, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	router := api.NewRouter(
		apifinance.NewHandler(a.Service, log),
		apiconfig.NewHandler(a.Agents),
	)

	srv := &http.Server{
		Addr:         settings.Server.Addr(),
		Handler:      router,
		ReadTimeout:  settings.Server.ReadTimeout,
		WriteTimeout: settings.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("API server starting", map[string]interface{}{
			"addr":     srv.Addr,
			"provider": a.Agents.GetActiveProvider(),
			"cache":    settings.Cache.Backend,
		})
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("shutdown signal received", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped cleanly", nil)
	return nil
}
