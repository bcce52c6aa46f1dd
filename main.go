// package main provides the entry point for the ciaa-dashboard service, which serves the
// Chromium security issue dashboard over REST and GraphQL on top of the CIAA issue backend.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ciaa/ciaa-dashboard/apiclient"
	"github.com/ciaa/ciaa-dashboard/catalog"
	"github.com/ciaa/ciaa-dashboard/events/modules/issues"
	"github.com/ciaa/ciaa-dashboard/graphql"
	"github.com/ciaa/ciaa-dashboard/internal/api"
	"github.com/ciaa/ciaa-dashboard/internal/config"
	"github.com/ciaa/ciaa-dashboard/internal/kafka"
	"github.com/ciaa/ciaa-dashboard/internal/services"
	"github.com/ciaa/ciaa-dashboard/restapi"
	"github.com/ciaa/ciaa-dashboard/session"
	"github.com/ciaa/ciaa-dashboard/util"
	"go.uber.org/zap"
)

// sessionSweepInterval is how often idle browser sessions are looked for.
const sessionSweepInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("Failed to load configuration", zap.Error(err))
	}

	logger := util.InitLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport := apiclient.NewTransport(cfg.APIURL, nil, logger)
	client := apiclient.NewClient(transport, logger)

	// The service starts even when the backend is down; every page has a fallback.
	if err := apiclient.Probe(ctx, transport, logger, cfg.UpstreamProbeTimeout); err != nil {
		logger.Warn("Issue backend unreachable, continuing with fallback data", zap.Error(err))
	}

	cat := catalog.New(client, logger)
	if err := cat.Refresh(ctx); err != nil {
		logger.Warn("Failed to load filter catalog, using defaults", zap.Error(err))
	}
	refresher := &services.CatalogRefresherWrapper{Catalog: cat}

	store := session.NewStore(cfg.SessionIdleTimeout, cfg.PageLimit, logger)
	go store.RunSweeper(ctx, sessionSweepInterval)
	browser := session.NewBrowser(store, client, cat, logger)

	issueSvc := &services.IssueService{Source: client, Logger: logger}
	dashboardSvc := &services.DashboardService{Source: client, Logger: logger}

	deps := restapi.Deps{
		Fetcher:   client,
		IssueSvc:  issueSvc,
		Dashboard: dashboardSvc,
		CVSS:      client,
		Catalog:   cat,
		Refresher: refresher,
		Browser:   browser,
		Logger:    logger,
	}

	if cfg.Kafka.Enabled() {
		if err := kafka.RunEventProcessor(ctx, cfg.Kafka, refresher, logger); err != nil {
			logger.Warn("Kafka event processor not started", zap.Error(err))
		} else {
			producer := issues.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, kafka.NewTransport(cfg.Kafka))
			defer func() { _ = producer.Close() }()
			deps.Publisher = producer
		}
	}

	app, err := api.NewFiberApp(cfg, deps, graphql.Deps{
		Issues:    client,
		IssueSvc:  issueSvc,
		Dashboard: dashboardSvc,
		Catalog:   cat,
	})
	if err != nil {
		logger.Fatal("Failed to create Fiber app", zap.Error(err))
	}

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("Failed to shut down server", zap.Error(err))
		}
	}()

	logger.Info("Starting server", zap.String("addr", cfg.ListenAddr), zap.String("api_url", cfg.APIURL))
	logger.Info("GraphQL endpoint available at /api/v1/graphql")
	if err := app.Listen(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
