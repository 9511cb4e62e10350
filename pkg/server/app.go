package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	xhttp "StockCast/pkg/http"
	pkgkafka "StockCast/pkg/kafka"
	applogger "StockCast/pkg/logger"
)

// App owns the HTTP server and the optional simulation job consumer.
type App struct {
	log      *applogger.Logger
	http     *xhttp.Server
	consumer *pkgkafka.Consumer // nil when kafka is disabled
}

// New creates a new App. consumer may be nil.
func New(log *applogger.Logger, srv *xhttp.Server, consumer *pkgkafka.Consumer) *App {
	if log == nil {
		log = applogger.Nop()
	}
	return &App{log: log, http: srv, consumer: consumer}
}

// Run starts every component and blocks until ctx is done or SIGINT/SIGTERM arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.consumer != nil {
		if err := a.consumer.Start(ctx); err != nil {
			return err
		}
	}

	if err := a.http.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		_ = a.stopConsumer(a.http.ShutdownTimeout())
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops accepting requests first, then drains the consumer.
func (a *App) shutdown() error {
	grace := a.http.ShutdownTimeout()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	var errs []error
	if err := a.http.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}
	if err := a.stopConsumer(grace); err != nil {
		a.log.Warn("kafka consumer stop error", applogger.Error(err))
		errs = append(errs, err)
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}

func (a *App) stopConsumer(grace time.Duration) error {
	if a.consumer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return a.consumer.Stop(ctx)
}
