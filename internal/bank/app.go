// Package bank wires configuration, storage, the out-of-band notifier and
// metrics into the credential store, MFA gate and ledger services.
package bank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/securebank/internal/bank/config"
	"github.com/dmitrijs2005/securebank/internal/bank/metrics"
	"github.com/dmitrijs2005/securebank/internal/bank/notify"
	"github.com/dmitrijs2005/securebank/internal/bank/repositories/repomanager"
	"github.com/dmitrijs2005/securebank/internal/bank/services"
	"github.com/dmitrijs2005/securebank/internal/logging"
	"github.com/dmitrijs2005/securebank/internal/timex"
	"github.com/prometheus/client_golang/prometheus"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	registry *prometheus.Registry

	Notifier    notify.Notifier
	Credentials *services.CredentialService
	Gate        *services.Gate
	Ledger      *services.LedgerService

	cancel        context.CancelFunc
	wg            sync.WaitGroup
	metricsServer *http.Server
}

// NewApp opens and migrates the store and builds the services.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger, clock timex.Clock) (*App, error) {
	for _, w := range c.Warnings() {
		logger.Warn(ctx, "insecure configuration", "detail", w)
	}

	db, m, err := repomanager.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	registry := prometheus.NewRegistry()
	mtr := metrics.New(registry)
	notifier := newNotifier(c)

	creds, err := services.NewCredentialService(db, m, c, clock, logger, mtr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	gate := services.NewGate(creds, notifier, c, clock, logger, mtr)
	ledger := services.NewLedgerService(db, m, gate, c, clock, logger, mtr)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		registry:    registry,
		Notifier:    notifier,
		Credentials: creds,
		Gate:        gate,
		Ledger:      ledger,
	}, nil
}

func newNotifier(c *config.Config) notify.Notifier {
	if c.Notifier == config.NotifierS3 {
		return notify.NewS3Notifier(notify.S3Options{
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
			Prefix:       c.S3Prefix,
		})
	}
	return notify.NewFileNotifier(c.OutboxPath)
}

// Start launches the expiry janitor and, when configured, the metrics
// endpoint. Both stop on Close or when ctx is done.
func (app *App) Start(ctx context.Context) {
	ctx, app.cancel = context.WithCancel(ctx)

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		app.Gate.Run(ctx, app.config.SweepInterval)
	}()

	if app.config.MetricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(app.registry))
	app.metricsServer = &http.Server{
		Addr:              app.config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		app.logger.Info(ctx, "metrics endpoint listening", "addr", app.config.MetricsAddr)
		if err := app.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "metrics endpoint failed", "error", err)
		}
	}()
}

// Close stops background work and closes the store.
func (app *App) Close() error {
	if app.cancel != nil {
		app.cancel()
	}
	if app.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = app.metricsServer.Shutdown(ctx)
	}
	app.wg.Wait()

	return app.db.Close()
}
