package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	alertapp "github.com/wyfcoding/analyticalplatform/internal/alert/application"
	alertdomain "github.com/wyfcoding/analyticalplatform/internal/alert/domain"
	alertmysql "github.com/wyfcoding/analyticalplatform/internal/alert/infrastructure/persistence/mysql"
	alerthttp "github.com/wyfcoding/analyticalplatform/internal/alert/interfaces/http"
	analyticsapp "github.com/wyfcoding/analyticalplatform/internal/analytics/application"
	analyticshttp "github.com/wyfcoding/analyticalplatform/internal/analytics/interfaces/http"
	auditapp "github.com/wyfcoding/analyticalplatform/internal/audit/application"
	auditdomain "github.com/wyfcoding/analyticalplatform/internal/audit/domain"
	auditmysql "github.com/wyfcoding/analyticalplatform/internal/audit/infrastructure/persistence/mysql"
	audithttp "github.com/wyfcoding/analyticalplatform/internal/audit/interfaces/http"
	marketapp "github.com/wyfcoding/analyticalplatform/internal/marketdata/application"
	marketdomain "github.com/wyfcoding/analyticalplatform/internal/marketdata/domain"
	"github.com/wyfcoding/analyticalplatform/internal/marketdata/infrastructure/alphavantage"
	marketpersistence "github.com/wyfcoding/analyticalplatform/internal/marketdata/infrastructure/persistence"
	marketmysql "github.com/wyfcoding/analyticalplatform/internal/marketdata/infrastructure/persistence/mysql"
	marketredis "github.com/wyfcoding/analyticalplatform/internal/marketdata/infrastructure/persistence/redis"
	markethttp "github.com/wyfcoding/analyticalplatform/internal/marketdata/interfaces/http"
	notifapp "github.com/wyfcoding/analyticalplatform/internal/notification/application"
	notifdomain "github.com/wyfcoding/analyticalplatform/internal/notification/domain"
	notifmysql "github.com/wyfcoding/analyticalplatform/internal/notification/infrastructure/persistence/mysql"
	"github.com/wyfcoding/analyticalplatform/internal/notification/infrastructure/sender"
	notifhttp "github.com/wyfcoding/analyticalplatform/internal/notification/interfaces/http"
	tradingapp "github.com/wyfcoding/analyticalplatform/internal/trading/application"
	tradingdomain "github.com/wyfcoding/analyticalplatform/internal/trading/domain"
	"github.com/wyfcoding/analyticalplatform/internal/trading/infrastructure/eventbus"
	tradingmysql "github.com/wyfcoding/analyticalplatform/internal/trading/infrastructure/persistence/mysql"
	tradinghttp "github.com/wyfcoding/analyticalplatform/internal/trading/interfaces/http"
	walletapp "github.com/wyfcoding/analyticalplatform/internal/wallet/application"
	walletdomain "github.com/wyfcoding/analyticalplatform/internal/wallet/domain"
	walletmysql "github.com/wyfcoding/analyticalplatform/internal/wallet/infrastructure/persistence/mysql"
	wallethttp "github.com/wyfcoding/analyticalplatform/internal/wallet/interfaces/http"
	"github.com/wyfcoding/analyticalplatform/internal/watchlist/application"
	watchlistdomain "github.com/wyfcoding/analyticalplatform/internal/watchlist/domain"
	watchlistmysql "github.com/wyfcoding/analyticalplatform/internal/watchlist/infrastructure/persistence/mysql"
	watchlisthttp "github.com/wyfcoding/analyticalplatform/internal/watchlist/interfaces/http"
	"github.com/wyfcoding/analyticalplatform/pkg/cache"
	"github.com/wyfcoding/analyticalplatform/pkg/config"
	"github.com/wyfcoding/analyticalplatform/pkg/db"
	"github.com/wyfcoding/analyticalplatform/pkg/idgen"
	"github.com/wyfcoding/analyticalplatform/pkg/logger"
	"github.com/wyfcoding/analyticalplatform/pkg/metrics"
	"github.com/wyfcoding/analyticalplatform/pkg/middleware"
	"github.com/wyfcoding/analyticalplatform/pkg/mq"
	"github.com/wyfcoding/analyticalplatform/pkg/ratelimit"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal(ctx, "Service bootstrap failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// 1. 基础设施
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	if err := database.AutoMigrate(
		&marketdomain.Stock{},
		&walletdomain.Wallet{},
		&tradingdomain.Holding{},
		&tradingdomain.Transaction{},
		&alertdomain.PriceAlert{},
		&watchlistdomain.Watchlist{},
		&watchlistdomain.WatchlistItem{},
		&notifdomain.Notification{},
		&auditdomain.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		return fmt.Errorf("redis init failed: %w", err)
	}
	defer redisCache.Close()

	producer, err := mq.NewProducer(mq.KafkaConfig{
		Brokers:      cfg.Kafka.Brokers,
		MaxRetries:   cfg.Kafka.MaxRetries,
		RetryBackoff: cfg.Kafka.RetryBackoff,
	})
	if err != nil {
		return fmt.Errorf("kafka init failed: %w", err)
	}
	defer producer.Close()

	gen, err := idgen.New(1)
	if err != nil {
		return fmt.Errorf("idgen init failed: %w", err)
	}

	m := metrics.New("trading_platform")

	// 2. 行情：外部数据源 + 调用预算 + 两级存储
	provider := alphavantage.NewClient(alphavantage.Config{
		APIKey:  cfg.AlphaVantage.APIKey,
		BaseURL: cfg.AlphaVantage.BaseURL,
		Timeout: cfg.AlphaVantage.Timeout,
	})
	budget := ratelimit.New(ratelimit.Config{
		CallsPerMinute: cfg.AlphaVantage.CallsPerMinute,
		CallsPerDay:    cfg.AlphaVantage.CallsPerDay,
	})
	stockRepo := marketpersistence.NewCompositeStockRepository(
		marketmysql.NewStockRepository(database),
		marketredis.NewStockRepository(redisCache, cfg.AlphaVantage.QuoteTTL),
	)
	stockService := marketapp.NewStockService(stockRepo, provider, budget, m, cfg.AlphaVantage.QuoteTTL)

	// 3. 支撑服务：审计与通知
	auditService := auditapp.NewAuditService(auditmysql.NewAuditRepository(database))
	notifService := notifapp.NewNotificationService(
		notifmysql.NewNotificationRepository(database),
		sender.NewKafkaSender(producer, cfg.Kafka.NotificationTopic),
		gen,
	)

	// 4. 业务服务
	walletRepo := walletmysql.NewWalletRepository(database)
	walletService := walletapp.NewWalletService(walletRepo, auditService)

	tradingService := tradingapp.NewTradingService(
		tradingmysql.NewHoldingRepository(database),
		tradingmysql.NewTransactionRepository(database),
		walletRepo,
		database,
		stockService,
		gen,
		eventbus.NewKafkaPublisher(producer, cfg.Kafka.TradeTopic),
		notifService,
		auditService,
		m,
	)

	alertService := alertapp.NewAlertService(
		alertmysql.NewAlertRepository(database),
		stockService,
		notifService,
		auditService,
		m,
	)

	watchlistService := application.NewWatchlistService(
		watchlistmysql.NewWatchlistRepository(database),
		auditService,
	)

	analyticsService := analyticsapp.NewAnalyticsService(
		tradingmysql.NewTransactionRepository(database),
	)

	// 5. 后台任务
	go marketapp.NewRefreshJob(stockService, cfg.Markets.PrioritySymbols, cfg.Markets.RefreshInterval).Start(ctx)
	go alertapp.NewScanner(alertService, cfg.Alerts.ScanInterval).Start(ctx)

	// 6. HTTP 服务
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		middleware.GinRecoveryMiddleware(),
		middleware.GinLoggingMiddleware(),
		middleware.GinMetricsMiddleware(m),
	)

	engine.GET("/sys/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "UP",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})
	engine.GET("/metrics", m.Handler())

	api := engine.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(redisCache.Client(), middleware.RateLimitConfig{
		Enabled: cfg.RateLimit.Enabled,
		QPS:     cfg.RateLimit.QPS,
		Burst:   cfg.RateLimit.Burst,
	}))

	markethttp.NewHandler(stockService).RegisterRoutes(api)
	wallethttp.NewHandler(walletService).RegisterRoutes(api)
	tradinghttp.NewHandler(tradingService).RegisterRoutes(api)
	alerthttp.NewHandler(alertService).RegisterRoutes(api)
	watchlisthttp.NewHandler(watchlistService).RegisterRoutes(api)
	analyticshttp.NewHandler(analyticsService).RegisterRoutes(api)
	notifhttp.NewHandler(notifService).RegisterRoutes(api)
	audithttp.NewHandler(auditService).RegisterRoutes(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-quit:
		logger.Info(ctx, "Shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}

	logger.Info(ctx, "Service stopped")
	return nil
}
