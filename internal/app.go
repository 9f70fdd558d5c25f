package internal

import (
	"classifieds-browser/internal/adapters/catalogfetcher"
	"classifieds-browser/internal/adapters/filestorage"
	"classifieds-browser/internal/adapters/imagecache"
	logger_adapter "classifieds-browser/internal/adapters/logger"
	rabbitmq_adapter "classifieds-browser/internal/adapters/rabbitmq"
	"classifieds-browser/internal/adapters/rest"
	"classifieds-browser/internal/configs"
	"classifieds-browser/internal/constants"
	"classifieds-browser/internal/contextkeys"
	"classifieds-browser/internal/core/port"
	"classifieds-browser/internal/core/usecase"
	fluentlogger "classifieds-browser/pkg/fluent_logger"
	"classifieds-browser/pkg/rabbitmq/rabbitmq_common"
	"classifieds-browser/pkg/rabbitmq/rabbitmq_producer"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/google/uuid"
)

type App struct {
	config    *configs.AppConfig
	apiServer *rest.Server
	session   *usecase.BrowseSession

	connManager   *rabbitmq_common.ConnectionManager
	eventProducer *rabbitmq_producer.Publisher
	logger        port.LoggerPort
	baseLogger    port.LoggerPort
	fluentClient  *fluent.Fluent
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. Логгеры ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   appConfig.StdoutLogger.IsJSON,
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// --- 2. Адаптеры ---
	fetcher, err := catalogfetcher.NewCatalogFetcherAdapter(catalogfetcher.Options{
		CatalogURL:   appConfig.Catalog.URL,
		ImageBaseURL: appConfig.Catalog.ImageBaseURL,
		Timeout:      appConfig.Catalog.Timeout,
		RandomDelay:  appConfig.Catalog.RandomDelay,
		Parallelism:  appConfig.Catalog.Parallelism,
	})
	if err != nil {
		appLogger.Error("Failed to create catalog fetcher", err, nil)
		return nil, err
	}

	imageCache, err := imagecache.NewLRUCacheAdapter(appConfig.Catalog.CacheLimit)
	if err != nil {
		return nil, err
	}

	favoritesStorage := filestorage.NewFavoritesFileAdapter(appConfig.Favorites.File)

	application := &App{
		config:       appConfig,
		logger:       appLogger,
		baseLogger:   baseLogger,
		fluentClient: fluentClient,
	}

	var favoriteEvents port.FavoriteEventsPort
	if appConfig.RabbitMQ.Enabled {
		events, err := application.initFavoriteEvents(baseLogger)
		if err != nil {
			appLogger.Error("Failed to initialize favorite events", err, nil)
			application.closeInfrastructure()
			return nil, err
		}
		favoriteEvents = events
	}

	// --- 3. Use cases ---
	catalogClient := usecase.NewCatalogClient(fetcher, imageCache)
	favoritesStore := usecase.NewFavoritesStore(favoritesStorage, favoriteEvents)
	application.session = usecase.NewBrowseSession(
		catalogClient,
		favoritesStore,
		logger_adapter.NewPresenterLogAdapter(baseLogger),
	)
	appLogger.Info("Use cases initialized", port.Fields{
		"favorites_file":    favoritesStorage.Path(),
		"image_cache_limit": appConfig.Catalog.CacheLimit,
		"events_enabled":    appConfig.RabbitMQ.Enabled,
	})

	handler := rest.NewBrowseHandler(application.session)
	application.apiServer = rest.NewServer(appConfig.Rest.Port, handler, appConfig.Rest.CORSAllowedOrigins, baseLogger)

	return application, nil
}

func (a *App) initFavoriteEvents(baseLogger port.LoggerPort) (port.FavoriteEventsPort, error) {
	connManager, err := rabbitmq_common.NewConnectionManager(
		rabbitmq_common.Config{URL: a.config.RabbitMQ.URL},
		rabbitmq_adapter.NewLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}
	a.connManager = connManager

	eventProducer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		ExchangeName:             constants.ExchangeClassifieds,
		ExchangeType:             constants.ExchangeClassifiedsType,
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   rabbitmq_adapter.NewLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
	}, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create event producer: %w", err)
	}
	a.eventProducer = eventProducer
	a.logger.Info("RabbitMQ event producer initialized", port.Fields{"exchange": constants.ExchangeClassifieds})

	return rabbitmq_adapter.NewFavoriteEventsAdapter(eventProducer)
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.apiServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}

		a.session.Close()
		a.closeInfrastructure()
		a.logger.Info("Application shut down gracefully", nil)

		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				// fluent уже может быть недоступен
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)

	setupCtx := contextkeys.ContextWithLogger(appCtx, a.baseLogger)
	setupCtx = contextkeys.ContextWithTraceID(setupCtx, uuid.New().String())
	if _, err := a.session.Setup(setupCtx); err != nil {
		return fmt.Errorf("failed to set up browse session: %w", err)
	}

	serverErrors := make(chan error, 1)
	go func() {
		if err := a.apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	// SIGUSR1 - сигнал нехватки памяти от супервизора
	memoryPressure := make(chan os.Signal, 1)
	signal.Notify(memoryPressure, syscall.SIGUSR1)
	defer signal.Stop(memoryPressure)

	a.logger.Info("Application running. Waiting for signals or server error...", port.Fields{"port": a.config.Rest.Port})
	for {
		select {
		case <-memoryPressure:
			a.session.FreeResources()
			a.logger.Warn("Memory pressure signal received, image cache purged", nil)
		case receivedSignal := <-quit:
			a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
			return nil
		case err := <-serverErrors:
			a.logger.Error("HTTP server failed, shutting down", err, nil)
			return err
		}
	}
}

func (a *App) closeInfrastructure() {
	if a.eventProducer != nil {
		if err := a.eventProducer.Close(); err != nil {
			a.logger.Error("Error closing event producer", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
	}
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
