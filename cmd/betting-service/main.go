package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	httpapi "github.com/radieske/match-betting-core/internal/betting-service/http"
	"github.com/radieske/match-betting-core/internal/betting-service/odds"
	"github.com/radieske/match-betting-core/internal/betting-service/producer"
	"github.com/radieske/match-betting-core/internal/betting-service/repo"
	"github.com/radieske/match-betting-core/internal/betting-service/ws"
	"github.com/radieske/match-betting-core/internal/shared/cache"
	"github.com/radieske/match-betting-core/internal/shared/config"
	"github.com/radieske/match-betting-core/internal/shared/db"
	"github.com/radieske/match-betting-core/internal/shared/kafka"
	"github.com/radieske/match-betting-core/internal/shared/logger"
	"github.com/radieske/match-betting-core/internal/shared/metrics"
)

func main() {
	// carrega config
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "betting-service"
	}

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// conecta com db Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	// conecta com cache Redis
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	// writers Kafka dos eventos do serviço
	betPlacedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	defer betPlacedWriter.Close()
	marketSettledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMarketSettled)
	defer marketSettledWriter.Close()
	oddsWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicOddsUpdates)
	defer oddsWriter.Close()
	log.Info("kafka writers ready",
		zap.String("betPlaced", cfg.TopicBetPlaced),
		zap.String("marketSettled", cfg.TopicMarketSettled),
		zap.String("oddsUpdates", cfg.TopicOddsUpdates),
	)

	publ := producer.NewKafkaPublisher(betPlacedWriter, marketSettledWriter, oddsWriter)
	pgRepo := repo.NewPostgres(pg)
	oddsCache := odds.NewCache(redisClient, cfg.OddsCacheTTL)
	recalc := odds.NewRecalculator(log, pgRepo, oddsCache, redisClient, cfg.RedisPubSubChannel, publ)

	// hub websocket alimentado pelo pub/sub do Redis
	hub := ws.NewHub(func(_ *http.Request) bool { return true })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ws.StartRedisSubscriber(ctx, log, redisClient, cfg.RedisPubSubChannel, hub)

	minStake, err := decimal.NewFromString(cfg.DefaultMinStake)
	if err != nil {
		log.Fatal("invalid BET_MIN_STAKE", zap.Error(err))
	}
	maxStake, err := decimal.NewFromString(cfg.DefaultMaxStake)
	if err != nil {
		log.Fatal("invalid BET_MAX_STAKE", zap.Error(err))
	}

	// servidor de métricas e health em porta separada
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	log.Info("metrics/health server started", zap.String("port", cfg.MetricsPort))

	api := httpapi.NewServer(log, pgRepo, recalc, oddsCache, publ, hub, minStake, maxStake)

	addr := ":" + cfg.HTTPPort
	log.Info("http server starting", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, api.Router()); err != nil && err != http.ErrServerClosed {
		log.Fatal("http server failed", zap.Error(err))
	}
}
