package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arbdesk/arbgate/internal/config"
	"github.com/arbdesk/arbgate/internal/handler"
	"github.com/arbdesk/arbgate/internal/middleware"
	"github.com/arbdesk/arbgate/internal/pkg/logger"
	"github.com/arbdesk/arbgate/internal/ratelimit"
	"github.com/arbdesk/arbgate/internal/repository"
	"github.com/arbdesk/arbgate/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)

	// 2. Initialize Persistence. Postgres is the source of truth and is
	// required; Redis upgrades the limiter and kill-switch reads when
	// present.
	db, err := repository.NewDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Info("Connected to PostgreSQL")

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = repository.NewRedisClient(cfg)
		if err != nil {
			logger.Error("Failed to connect to Redis, falling back to in-process limiter", "error", err)
			redisClient = nil
		} else {
			logger.Info("Connected to Redis")
		}
	}

	identityRepo := repository.NewPostgresIdentityRepo(db)
	opportunityRepo := repository.NewPostgresOpportunityRepo(db)
	basisRepo := repository.NewPostgresBasisRepo(db)
	intentRepo := repository.NewPostgresIntentRepo(db)
	killSwitchRepo := repository.NewPostgresKillSwitchRepo(db)
	pnlRepo := repository.NewPostgresPnlRepo(db)
	positionRepo := repository.NewPostgresPositionRepo(db)
	auditRepo := repository.NewPostgresAuditRepo(db)

	// Rate limiter (Redis > Memory)
	var limiter ratelimit.Limiter
	if redisClient != nil {
		limiter = ratelimit.NewRedisLimiter(redisClient)
	} else {
		mem := ratelimit.NewMemoryLimiter(nil)
		mem.StartSweeper(time.Minute)
		defer mem.StopSweeper()
		limiter = mem
	}

	// 3. Initialize Core Services
	auditSvc, err := service.NewAuditService("./logs", auditRepo)
	if err != nil {
		log.Fatalf("Failed to initialize audit service: %v", err)
	}

	gate := service.NewKillSwitchGate(killSwitchRepo, redisClient,
		time.Duration(cfg.Redis.KillSwitchTTLSeconds)*time.Second)
	factory := service.NewIntentFactory(intentRepo)
	spotScanner := service.NewSpotScanner(opportunityRepo)
	basisScanner := service.NewBasisScanner(basisRepo, cfg.Basis.FeePctPoints, cfg.Basis.ActionableAPY)
	pnlAgg := service.NewPnlAggregator(pnlRepo)

	// 4. Initialize Handlers
	spotHandler := handler.NewSpotHandler(spotScanner, gate, factory, pnlAgg, auditSvc, cfg.Scan)
	basisHandler := handler.NewBasisHandler(basisScanner, gate, factory, pnlAgg, auditSvc, positionRepo, cfg.Scan)

	// 5. Setup Router
	r := gin.Default()

	r.Use(middleware.ErrorHandler())
	r.Use(middleware.MetricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "arbgate"})
	})

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	readLimit := middleware.RateLimitMiddleware(limiter, ratelimit.ClassRead, cfg.Limits.Read)
	scanLimit := middleware.RateLimitMiddleware(limiter, ratelimit.ClassScan, cfg.Limits.Scan)
	tradeLimit := middleware.RateLimitMiddleware(limiter, ratelimit.ClassTrading, cfg.Limits.Trading)

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg, identityRepo))
	{
		spot := v1.Group("/spot")
		spot.POST("/scan", scanLimit, spotHandler.Scan)
		spot.GET("/quotes/:instrument_id", readLimit, spotHandler.GetQuotes)
		spot.POST("/execute", tradeLimit, spotHandler.Execute)
		spot.GET("/pnl", readLimit, spotHandler.GetPnl)
		spot.GET("/inventory", readLimit, spotHandler.GetInventory)
		spot.GET("/status", readLimit, spotHandler.Status)

		basis := v1.Group("/basis")
		basis.POST("/scan", scanLimit, basisHandler.Scan)
		basis.GET("/funding/:instrument_id", readLimit, basisHandler.GetFundingHistory)
		basis.POST("/execute", tradeLimit, basisHandler.Execute)
		basis.GET("/positions", readLimit, basisHandler.GetPositions)
		basis.POST("/positions/:id/close", tradeLimit, basisHandler.ClosePosition)
		basis.GET("/pnl", readLimit, basisHandler.GetPnl)
	}

	// Audit retention sweep
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go func() {
		interval := time.Duration(cfg.Database.CleanupIntervalMinutes) * time.Minute
		retention := time.Duration(cfg.Database.AuditRetentionDays) * 24 * time.Hour
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := auditRepo.Cleanup(cleanupCtx, retention); err != nil {
					logger.Error("audit cleanup failed", "error", err)
				}
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("arbgate started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	auditSvc.Close()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	logger.Info("Server exiting")
}
