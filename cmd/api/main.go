package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"

	"github.com/Ramsey-B/aster/config"
	"github.com/Ramsey-B/aster/internal/handlers"
	dosenrepo "github.com/Ramsey-B/aster/internal/repositories/dosen"
	kontrakrepo "github.com/Ramsey-B/aster/internal/repositories/kontrak"
	luaranrepo "github.com/Ramsey-B/aster/internal/repositories/luaran"
	monitoringrepo "github.com/Ramsey-B/aster/internal/repositories/monitoring"
	pencairanrepo "github.com/Ramsey-B/aster/internal/repositories/pencairan"
	perioderepo "github.com/Ramsey-B/aster/internal/repositories/periode"
	proposalrepo "github.com/Ramsey-B/aster/internal/repositories/proposal"
	seminarrepo "github.com/Ramsey-B/aster/internal/repositories/seminar"
	skemarepo "github.com/Ramsey-B/aster/internal/repositories/skema"
	kontraksvc "github.com/Ramsey-B/aster/internal/services/kontrak"
	luaransvc "github.com/Ramsey-B/aster/internal/services/luaran"
	monitoringsvc "github.com/Ramsey-B/aster/internal/services/monitoring"
	pencairansvc "github.com/Ramsey-B/aster/internal/services/pencairan"
	proposalsvc "github.com/Ramsey-B/aster/internal/services/proposal"
	seminarsvc "github.com/Ramsey-B/aster/internal/services/seminar"
	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/Ramsey-B/aster/pkg/events"
	"github.com/Ramsey-B/aster/pkg/health"
	"github.com/Ramsey-B/aster/pkg/kafka"
	"github.com/Ramsey-B/aster/pkg/middleware"
	"github.com/Ramsey-B/aster/pkg/redis"
	"github.com/Ramsey-B/aster/pkg/tracing"
	"github.com/Ramsey-B/aster/pkg/tracing/exporters"
)

// version is stamped at build time
var version = "dev"

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := buildLogger(cfg)
	ctx := context.Background()

	if cfg.TracingEnabled {
		shutdown, err := tracing.InitProvider(ctx, tracing.ProviderConfig{
			ServiceName: cfg.AppName,
			OTLP: exporters.OTLPConfig{
				Endpoint: cfg.TracingOTLPEndpoint,
				Protocol: cfg.TracingOTLPProtocol,
				Insecure: cfg.TracingInsecure,
				Timeout:  10 * time.Second,
			},
		})
		if err != nil {
			logger.WithError(err).Error("Failed to initialize tracing")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(shutdownCtx)
			}()
		}
	}

	db, err := database.Connect(ctx, database.ConnectConfig{
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		UserName:        cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	if err := runMigrations(cfg, db, logger); err != nil {
		logger.WithError(err).Error("Failed to run migrations")
		os.Exit(1)
	}

	var redisClient *redis.Client
	var locker *redis.Locker
	if cfg.RedisEnabled {
		redisClient, err = redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			logger.WithError(err).Error("Failed to connect to redis")
			os.Exit(1)
		}
		defer redisClient.Close()
		locker = redis.NewLocker(redisClient, cfg.AppName)
	}

	emitter := events.NewEmitter(nil, logger)
	if cfg.KafkaEnabled {
		producer := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaEventTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		defer producer.Close()
		emitter = events.NewEmitter(producer, logger)
	}

	// repositories
	proposals := proposalrepo.NewRepository(db, logger)
	periods := perioderepo.NewRepository(db, logger)
	schemes := skemarepo.NewRepository(db, logger)
	faculty := dosenrepo.NewRepository(db, logger)
	contracts := kontrakrepo.NewRepository(db, logger)
	reports := monitoringrepo.NewRepository(db, logger)
	ledger := pencairanrepo.NewRepository(db, logger)
	outputs := luaranrepo.NewRepository(db, logger)
	seminars := seminarrepo.NewRepository(db, logger)

	// services
	monitoringService := monitoringsvc.NewService(db, logger, reports, proposals, emitter, monitoringsvc.Config{
		AllowFinalAfterCompleted: cfg.MonitoringAllowFinalAfterCompleted,
	})
	proposalService := proposalsvc.NewService(db, logger, proposals, periods, schemes, faculty, monitoringService, emitter)
	kontrakService := kontraksvc.NewService(db, logger, contracts, proposals, schemes, ledger, emitter)
	pencairanService := pencairansvc.NewService(logger, ledger, proposals, schemes, contracts, reports, outputs, locker, emitter)
	luaranService := luaransvc.NewService(logger, outputs, proposals, schemes, monitoringService, emitter)
	seminarService := seminarsvc.NewService(logger, seminars, proposals, monitoringService, outputs, emitter)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context(cfg.AuthEnabled))
	e.Use(middleware.Logger(logger))
	if cfg.AuthEnabled {
		e.Use(middleware.Authentication(logger, cfg.AuthIssuerURL, cfg.AuthClientID))
	}

	var rawRedis *goredis.Client
	if redisClient != nil {
		rawRedis = redisClient.Redis()
	}
	checker := health.NewChecker(db, rawRedis, version)
	checker.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	handlers.NewProposalHandler(proposalService).RegisterRoutes(api)
	handlers.NewKontrakHandler(kontrakService).RegisterRoutes(api)
	handlers.NewMonitoringHandler(monitoringService).RegisterRoutes(api)
	handlers.NewPencairanHandler(pencairanService).RegisterRoutes(api)
	handlers.NewLuaranHandler(luaranService).RegisterRoutes(api)
	handlers.NewSeminarHandler(seminarService).RegisterRoutes(api)
	handlers.NewReferensiHandler(periods, schemes).RegisterRoutes(api)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		ReadTimeout:       time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		checker.SetReady(true)
		logger.WithField("port", cfg.Port).Infof("Starting %s on port %d", cfg.AppName, cfg.Port)
		if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server stopped unexpectedly")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	checker.SetReady(false)
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
}

func buildLogger(cfg config.Config) ectologger.Logger {
	var zapLogger *zap.Logger
	var err error
	if cfg.PrettyLogs {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func runMigrations(cfg config.Config, db database.DB, logger ectologger.Logger) error {
	driver, err := migratepg.WithInstance(db.Unwrap().DB, &migratepg.Config{})
	if err != nil {
		return err
	}

	migrations := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
	})
	return migrations.Migrate(cfg.DatabaseName, driver)
}
