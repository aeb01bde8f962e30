package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"wager-ledger/internal/auth"
	"wager-ledger/internal/blockchain"
	"wager-ledger/internal/cache"
	"wager-ledger/internal/config"
	"wager-ledger/internal/database"
	"wager-ledger/internal/events"
	"wager-ledger/internal/handlers"
	"wager-ledger/internal/jobs"
	"wager-ledger/internal/logger"
	"wager-ledger/internal/metrics"
	"wager-ledger/internal/models"
	"wager-ledger/internal/repository"
	"wager-ledger/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New("wager-ledger", cfg.App.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database and run migrations
	db, err := database.Connect(cfg.Database.Driver, cfg.GetDSN(), log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.AutoMigrate(db, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	store := repository.NewGormStore(db)

	deriver, err := blockchain.NewDeriver(cfg.Chain.ProgramID)
	if err != nil {
		log.Fatal("invalid program id", zap.Error(err))
	}

	// Optional infrastructure
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.KafkaEnabled() {
		writer := events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.TopicBets)
		kafkaPublisher := events.NewKafkaPublisher(writer)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Info("publishing bet events", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.TopicBets))
	}

	var feed *cache.BetFeedCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn("redis unavailable, feed cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			feed = cache.NewBetFeedCache(rdb, 15*time.Second)
		}
	}

	ledgerMetrics := metrics.New(prometheus.DefaultRegisterer)

	// Initialize services
	betService := services.NewBetService(store, deriver, log,
		services.WithPublisher(publisher),
		services.WithMetrics(ledgerMetrics),
		services.WithRecordDeposit(cfg.App.RecordDeposit),
	)
	profileService := services.NewProfileService(store, deriver, log)
	friendService := services.NewFriendService(store, deriver, log)
	walletService := services.NewWalletService(store, log)

	// Start the reclamation sweeper
	jobCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	reaper := jobs.NewBetReaper(betService, models.Address(deriver.ProgramID()), log)
	if err := reaper.Start(jobCtx, cfg.App.ReaperSchedule); err != nil {
		log.Fatal("failed to start bet reaper", zap.Error(err))
	}

	// Set up Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if cfg.Server.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.Server.FrontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	set := handlers.Set{
		Auth:    handlers.NewAuthHandler(profileService, log),
		Bets:    handlers.NewBetHandler(betService, feed, log),
		Profile: handlers.NewProfileHandler(profileService, log),
		Friends: handlers.NewFriendHandler(friendService, log),
		Wallet:  handlers.NewWalletHandler(walletService, !cfg.IsProduction(), log),
	}
	if cfg.Chain.RPCURL != "" {
		set.Chain = handlers.NewChainHandler(blockchain.NewAnchorClient(cfg.Chain.RPCURL, deriver, log), log)
	}
	handlers.RegisterRoutes(router, set)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("program_id", deriver.ProgramID().String()))

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	stopJobs()
	reaper.Stop()

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
