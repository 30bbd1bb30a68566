// Package main provides the entry point of the attribution and ROI engine
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codetix2020-hash/finanzasmarketing-sub001/app/handlers"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/app/middleware"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/app/router"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/app/scheduler"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/app/services"
	businessflow "github.com/codetix2020-hash/finanzasmarketing-sub001/business_flow"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/config"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/logging"
	"github.com/codetix2020-hash/finanzasmarketing-sub001/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	server    *fiber.App
	logger    *zap.Logger
	closers   []io.Closer
	stopFuncs []func()
}

func main() {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, logCloser, err := logging.New(cfg.Logging, cfg.Deployment.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
		_ = logCloser.Close()
	}()

	logger.Info("Starting attribution engine",
		zap.String("version", cfg.Deployment.Version),
		zap.String("commit", cfg.Deployment.CommitHash),
	)

	app, err := initializeApplication(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer app.close()

	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		logger.Info("Server starting", zap.String("address", address), zap.Bool("tls", cfg.Security.TLSEnabled))

		listenConfig := fiber.ListenConfig{DisableStartupMessage: true}
		if cfg.Security.TLSEnabled {
			listenConfig.CertFile = cfg.Security.TLSCertFile
			listenConfig.CertKeyFile = cfg.Security.TLSKeyFile
		}
		serverErr <- app.server.Listen(address, listenConfig)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("Shutting down gracefully", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server stopped unexpectedly", zap.Error(err))
		}
	}

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}
	if cfg.SlowQueryLog {
		gormConfig.Logger = gormlogger.New(zap.NewStdLog(logger.Named("gorm")), gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
	)

	return db, nil
}

// initializeCache initializes the report cache client. Nil means caching is disabled.
func initializeCache(cfg config.CacheConfig, logger *zap.Logger) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis connection established", zap.Int("db", cfg.RedisDB))
	return rc, nil
}

// initializeGeoResolver opens the GeoIP database when enrichment is enabled
func initializeGeoResolver(cfg config.GeoIPConfig, logger *zap.Logger) (services.GeoResolver, error) {
	if !cfg.Enabled {
		return services.NewNoopGeoResolver(), nil
	}

	resolver, err := services.NewGeoIPResolver(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	logger.Info("GeoIP database loaded", zap.String("path", cfg.DatabasePath))
	return resolver, nil
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig, logger *zap.Logger) (*Application, error) {
	application := &Application{
		config: cfg,
		logger: logger,
	}

	db, err := initializeDatabase(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	application.closers = append(application.closers, sqlDB)

	if cfg.Database.AutoMigrate {
		if err := repository.RunMigrations(db); err != nil {
			application.close()
			return nil, err
		}
		logger.Info("Database migrations applied")
	}

	rc, err := initializeCache(cfg.Cache, logger)
	if err != nil {
		application.close()
		return nil, err
	}
	if rc != nil {
		application.closers = append(application.closers, rc)
	}

	geo, err := initializeGeoResolver(cfg.GeoIP, logger)
	if err != nil {
		application.close()
		return nil, err
	}
	application.closers = append(application.closers, geo)

	// Initialize repositories
	eventRepo := repository.NewAttributionEventRepository(db)
	journeyRepo := repository.NewCustomerJourneyRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	performanceRepo := repository.NewCampaignPerformanceRepository(db)
	txManager := repository.NewTransactionManager(db)

	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		application.close()
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	logger.Info("Token service initialized", zap.String("issuer", cfg.JWT.Issuer), zap.String("audience", cfg.JWT.Audience))

	// Initialize flows
	joiner := businessflow.NewCampaignNameJoiner()
	trackingFlow := businessflow.NewTrackingFlow(eventRepo, journeyRepo, txManager, geo, logger)
	attributionFlow := businessflow.NewAttributionFlow(eventRepo, journeyRepo, logger)
	roiFlow := businessflow.NewCampaignROIFlow(campaignRepo, eventRepo, joiner, logger)
	reportFlow := businessflow.NewReportFlow(
		campaignRepo,
		eventRepo,
		journeyRepo,
		performanceRepo,
		joiner,
		rc,
		cfg.Attribution,
		cfg.Cache,
		logger,
	)

	attributionHandler := handlers.NewAttributionHandler(
		trackingFlow,
		attributionFlow,
		roiFlow,
		reportFlow,
		cfg.Attribution.RequestTimeout,
		logger,
	)

	if cfg.Scheduler.PerformanceRefreshEnabled {
		sched := scheduler.NewPerformanceScheduler(
			campaignRepo,
			reportFlow,
			cfg.Scheduler.PerformanceRefreshInterval,
			cfg.Attribution.RequestTimeout,
			logger,
		)
		application.stopFuncs = append(application.stopFuncs, sched.Start(context.Background()))
	}

	application.router = router.NewFiberRouter(cfg, attributionHandler, middleware.NewAuthMiddleware(tokenService), logger)
	application.server = application.router.GetApp()

	return application, nil
}

// close releases external resources in reverse order of acquisition
func (a *Application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("Failed to release resource", zap.Error(err))
		}
	}
	a.closers = nil
}
