package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/xGihyun/mmu-tabulation-backend/internal/config"
	"github.com/xGihyun/mmu-tabulation-backend/internal/handler"
	"github.com/xGihyun/mmu-tabulation-backend/internal/middleware"
	pgRepo "github.com/xGihyun/mmu-tabulation-backend/internal/repository/postgres"
	"github.com/xGihyun/mmu-tabulation-backend/internal/service"
	"github.com/xGihyun/mmu-tabulation-backend/pkg/database"
	"github.com/xGihyun/mmu-tabulation-backend/pkg/metrics"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), database.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ApplicationName: cfg.Database.ApplicationName,
	})
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if cfg.Database.MigrationsPath != "" {
		if err := database.MigrateDB(db, cfg.Database.MigrationsPath); err != nil {
			log.Printf("Failed to migrate database: %v", err)
			os.Exit(1)
		}
	}

	healthChecks := map[string]handler.PingFunc{
		"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
	}

	// Redis нужен только для счетчиков rate limiting
	var redisClient redis.UniversalClient
	if cfg.RateLimit.Enabled {
		redisClient, err = database.NewUniversalRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Printf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		log.Println("Successfully connected to Redis")
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(registry)

	scoreStore := pgRepo.NewScoreRepo(db)
	tabulationService := service.NewTabulationService(scoreStore, recorder, cfg.Report.SheetName)

	scoreHandler := handler.NewScoreHandler(tabulationService, cfg.Report.CSVBOM)
	healthHandler := handler.NewHealthHandler(healthChecks)

	isProduction := gin.Mode() == gin.ReleaseMode
	router := gin.Default()

	// В production не доверяем прокси-заголовкам: c.ClientIP() используется rate limiter'ом
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	allowedOrigins := cfg.Server.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler.Health)
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	reportLimit := func(c *gin.Context) { c.Next() }
	if redisClient != nil {
		limiter := middleware.NewRateLimiter(redisClient)
		reportLimit = limiter.Limit(middleware.ReportRateLimitConfig(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window()))
	}

	api := router.Group("/api")
	{
		events := api.Group("/events/:event_id")
		events.Use(middleware.ExtractUUIDParam("event_id", "eventID"))
		{
			events.GET("/final-scores", scoreHandler.GetFinalScores)
			events.GET("/report.xlsx", reportLimit, scoreHandler.DownloadReport)
		}

		api.GET("/scores/export.csv", reportLimit, scoreHandler.ExportScores)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	serveErr := g.Wait()
	stop()

	// Закрываем ресурсы до os.Exit: deferred-вызовы при выходе не выполняются
	var resources []io.Closer
	if sqlDB, err := database.GetSQLDB(db); err == nil {
		resources = append(resources, sqlDB)
	}
	if redisClient != nil {
		resources = append(resources, redisClient)
	}
	if err := closeAll(resources...); err != nil {
		log.Printf("Failed to release resources: %v", err)
	}

	if serveErr != nil {
		log.Printf("Server stopped with error: %v", serveErr)
		os.Exit(1)
	}
	log.Println("Server exited properly")
}

// closeAll закрывает ресурсы в обратном порядке и собирает все ошибки
func closeAll(resources ...io.Closer) error {
	var errs []error
	for i := len(resources) - 1; i >= 0; i-- {
		if err := resources[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
