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

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yourorg/simulation-service/internal/client"
	"github.com/yourorg/simulation-service/internal/config"
	"github.com/yourorg/simulation-service/internal/event"
	"github.com/yourorg/simulation-service/internal/handler"
	"github.com/yourorg/simulation-service/internal/middleware"
	"github.com/yourorg/simulation-service/internal/repository"
	"github.com/yourorg/simulation-service/internal/service"
	"github.com/yourorg/simulation-service/internal/strategy"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := connectToDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	marketDataRepo := repository.NewMarketDataRepository(db, logger)
	backtestRepo := repository.NewBacktestRepository(db, logger)
	accountRepo := repository.NewAccountRepository()

	// Initialize clients
	quoteClient := client.NewQuoteClient(cfg.QuoteFeed.URL, cfg.QuoteFeed.Timeout, logger)

	// Initialize the event producer when a broker is configured
	var producer *event.Producer
	if cfg.Kafka.Enabled {
		producer = event.NewProducer(cfg.Kafka.BrokerList(), cfg.Kafka.ClientID, logger)
		defer producer.Close()
	}

	// Initialize services
	registry := strategy.NewRegistry()
	backtestService := service.NewBacktestService(
		registry,
		marketDataRepo,
		backtestRepo,
		producer,
		cfg.Kafka.Topics["simulationEvents"],
		logger,
	)
	paperService := service.NewPaperTradingService(
		accountRepo,
		quoteClient,
		cfg.Simulation.DefaultInitialBalance,
		logger,
	)

	// Initialize handlers
	backtestHandler := handler.NewBacktestHandler(backtestService, logger)
	paperHandler := handler.NewPaperTradingHandler(paperService, logger)
	marketDataHandler := handler.NewMarketDataHandler(marketDataRepo, logger)

	// Set up HTTP server with Gin
	router := setupRouter(backtestHandler, paperHandler, marketDataHandler, logger, cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

func createLogger(level string) (*zap.Logger, error) {
	// Parse log level
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	// Create logger config
	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

func connectToDB(dbConfig config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName,
		dbConfig.SSLMode,
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	return db, nil
}

func setupRouter(
	backtestHandler *handler.BacktestHandler,
	paperHandler *handler.PaperTradingHandler,
	marketDataHandler *handler.MarketDataHandler,
	logger *zap.Logger,
	cfg *config.Config,
) *gin.Engine {
	handler.RegisterValidators()

	router := gin.New()

	// Use middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		// Strategy catalogue is public
		v1.GET("/strategies", backtestHandler.ListStrategies)

		// Backtest routes
		backtests := v1.Group("/backtests")
		backtests.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret, logger))
		{
			backtests.POST("", backtestHandler.RunBacktest)
			backtests.GET("", backtestHandler.ListBacktests)
			backtests.GET("/:id", backtestHandler.GetBacktest)
			backtests.DELETE("/:id", backtestHandler.DeleteBacktest)
		}

		// Paper trading routes
		accounts := v1.Group("/accounts")
		accounts.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret, logger))
		{
			accounts.POST("", paperHandler.CreateAccount)
			accounts.GET("/:id", paperHandler.GetAccount)
			accounts.DELETE("/:id", paperHandler.RemoveAccount)
			accounts.POST("/:id/orders", paperHandler.PlaceOrder)
			accounts.DELETE("/:id/orders/:orderID", paperHandler.CancelOrder)
			accounts.POST("/:id/positions/:positionID/close", paperHandler.ClosePosition)
		}

		// Internal maintenance routes for service-to-service calls
		internal := v1.Group("/internal")
		internal.Use(middleware.ServiceAuthMiddleware(cfg.Auth.ServiceKey, logger))
		{
			internal.GET("/market-data/availability", marketDataHandler.GetAvailability)
			internal.POST("/market-data/seed", marketDataHandler.SeedData)
			internal.DELETE("/market-data", marketDataHandler.DeleteData)
			internal.GET("/stats", paperHandler.Stats)
		}
	}

	return router
}
