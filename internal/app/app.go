// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-fitness-gamification/internal/bootstrap"
	"github.com/AccelByte/extend-fitness-gamification/internal/config"
	"github.com/AccelByte/extend-fitness-gamification/internal/server"
	"github.com/AccelByte/extend-fitness-gamification/pkg/handler"
	notifyBuiltin "github.com/AccelByte/extend-fitness-gamification/pkg/notify/builtin"
	"github.com/AccelByte/extend-fitness-gamification/pkg/pipeline"
	"github.com/AccelByte/extend-fitness-gamification/pkg/progress"
	"github.com/AccelByte/extend-fitness-gamification/pkg/redemption"
	"github.com/AccelByte/extend-fitness-gamification/pkg/rule"
	"github.com/AccelByte/extend-fitness-gamification/pkg/service"
	"github.com/AccelByte/extend-fitness-gamification/pkg/signal"
)

// App holds all application dependencies and manages the application lifecycle.
type App struct {
	cfg               *config.Config
	grpcServer        *server.GRPCServer
	metricsServer     *server.MetricsServer
	redisClient       *redis.Client
	sweeper           *ExpirySweeper
	shutdownTelemetry func(context.Context) error
}

// Components are the wired domain services, exposed for tests that drive
// the application without network listeners.
type Components struct {
	Stores      *service.Stores
	Pipeline    *pipeline.Manager
	Engine      *rule.Engine
	Tracker     *progress.Tracker
	Redemptions *redemption.Manager
	Service     *handler.Gamification
}

// New creates and initializes a new application instance.
//
// ============================================================
// DEVELOPER: Application initialization order
// ============================================================
// Components are initialized in dependency order:
// 1. Redis (ledger, progress, catalog, rewards, settings)
// 2. Gamification config (YAML: settings, catalog, rules, sinks)
// 3. Stores and catalog seeding
// 4. Domain components (signal → earn → rules, tracker, redemptions)
// 5. Servers (gRPC, metrics) and the expiry sweeper
// 6. Telemetry (OpenTelemetry tracing)
// ============================================================
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logrus.Info("initializing application...")

	app := &App{cfg: cfg}

	// ============================================================
	// Step 1: Initialize Redis
	// ============================================================
	if err := app.initRedis(ctx); err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}

	// ============================================================
	// Step 2: Load gamification configuration
	// ============================================================
	gamificationConfig, err := pipeline.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load gamification config from %s: %w", cfg.ConfigPath, err)
	}
	logrus.Infof("loaded gamification configuration from %s", cfg.ConfigPath)

	// ============================================================
	// Steps 3 and 4: Stores and domain components
	// ============================================================
	components, err := Wire(ctx, app.redisClient, cfg, gamificationConfig)
	if err != nil {
		return nil, err
	}

	// ============================================================
	// Step 5: Setup servers
	// ============================================================
	app.grpcServer = server.NewGRPCServer(cfg.GRPCPort, components.Service, server.NewStoreChecker(app.redisClient, components.Stores.Settings, components.Stores.Catalog))
	if err := app.grpcServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup gRPC server: %w", err)
	}

	app.metricsServer = server.NewMetricsServer(cfg.MetricsPort, cfg.MetricsEndpoint)
	if err := app.metricsServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup metrics server: %w", err)
	}

	app.sweeper = NewExpirySweeper(components.Redemptions, cfg.ExpirySweepInterval)

	// ============================================================
	// Step 6: Setup telemetry
	// ============================================================
	if cfg.OtelEnabled {
		shutdownTelemetry, err := server.SetupTelemetry(ctx, cfg.ServiceName, cfg.Environment, cfg.OtelID)
		if err != nil {
			return nil, fmt.Errorf("failed to setup telemetry: %w", err)
		}
		app.shutdownTelemetry = shutdownTelemetry
	}

	logrus.Info("application initialized successfully")

	return app, nil
}

// Wire builds the stores and domain components on top of a Redis client,
// seeds the catalog and validates the rule and sink wiring.
func Wire(ctx context.Context, client *redis.Client, cfg *config.Config, gamificationConfig *pipeline.Config) (*Components, error) {
	stores := service.NewStores(client, service.StoresConfig{
		UnitOfWork: service.UnitOfWorkConfig{
			MaxRetries:      uint64(cfg.UOWMaxRetries),
			InitialInterval: cfg.UOWRetryInterval,
			MaxInterval:     cfg.UOWMaxRetryInterval,
		},
		Ledger:   service.RedisLedgerStoreConfig{HistoryPageSize: cfg.HistoryPageSize},
		Settings: service.RedisSettingsStoreConfig{Defaults: gamificationConfig.EffectiveSettings()},
	})

	if err := stores.Catalog.Seed(ctx, gamificationConfig.Achievements, gamificationConfig.Milestones); err != nil {
		return nil, fmt.Errorf("failed to seed catalog: %w", err)
	}
	if err := stores.Rewards.SeedRewards(ctx, gamificationConfig.Rewards); err != nil {
		return nil, fmt.Errorf("failed to seed rewards: %w", err)
	}

	dispatcher, sinkRegistry, err := bootstrap.InitDispatcher(gamificationConfig, &notifyBuiltin.Dependencies{
		RedisClient: client,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init notification dispatcher: %w", err)
	}

	tracker := progress.NewTracker(stores.UnitOfWork, stores.Ledger, stores.Progress, stores.Catalog, dispatcher)

	loader := signal.NewStoreContextLoader(stores.Ledger, stores.Progress, stores.Settings)
	processor := bootstrap.InitSignalProcessor(loader)

	engine, ruleRegistry, err := bootstrap.InitRuleEngine(gamificationConfig,
		rule.NewDependencies().WithStores(stores).WithTracker(tracker))
	if err != nil {
		return nil, fmt.Errorf("failed to init rule engine: %w", err)
	}

	// ============================================================
	// Validate wiring
	// ============================================================
	// Every enabled rule and sink in config/gamification.yaml must
	// have been created, and sinks may only subscribe to known
	// notification kinds.
	// ============================================================
	if err := pipeline.ValidateWiring(ruleRegistry, sinkRegistry, gamificationConfig); err != nil {
		return nil, fmt.Errorf("gamification wiring validation failed: %w", err)
	}
	logrus.Info("gamification wiring validation passed")

	pipelineManager := bootstrap.InitPipeline(processor, engine, loader)
	redemptions := redemption.NewManager(stores.UnitOfWork, stores.Ledger, stores.Rewards)

	return &Components{
		Stores:      stores,
		Pipeline:    pipelineManager,
		Engine:      engine,
		Tracker:     tracker,
		Redemptions: redemptions,
		Service: handler.NewGamification(handler.Dependencies{
			Pipeline:    pipelineManager,
			Engine:      engine,
			Tracker:     tracker,
			Redemptions: redemptions,
			Ledger:      stores.Ledger,
			Settings:    stores.Settings,
			Catalog:     stores.Catalog,
		}),
	}, nil
}

// initRedis initializes the Redis client.
func (a *App) initRedis(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:         a.cfg.RedisAddr(),
		Password:     a.cfg.RedisPassword,
		DB:           0, // use default DB
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Duration(a.cfg.RedisRetryDelayMs) * time.Millisecond
	maxRetries := backoff.WithMaxRetries(backoff.WithContext(b, ctx), uint64(a.cfg.RedisMaxRetries))

	err := backoff.Retry(
		func() error {
			_, err := client.Ping(ctx).Result()
			if err != nil {
				logrus.Warnf("Redis connection failed: %v, retrying...", err)
				return err
			}
			return nil
		},
		maxRetries,
	)

	if err != nil {
		_ = client.Close()
		return err
	}

	a.redisClient = client
	logrus.Info("Redis client initialized")
	return nil
}
