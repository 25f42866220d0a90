package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/match-betting-core/internal/betting-service/producer"
	"github.com/radieske/match-betting-core/internal/betting-service/repo"
	"github.com/radieske/match-betting-core/internal/settlement-worker/settler"
	"github.com/radieske/match-betting-core/internal/shared/cache"
	"github.com/radieske/match-betting-core/internal/shared/config"
	"github.com/radieske/match-betting-core/internal/shared/db"
	"github.com/radieske/match-betting-core/internal/shared/kafka"
	"github.com/radieske/match-betting-core/internal/shared/logger"
	"github.com/radieske/match-betting-core/internal/shared/metrics"
	ev "github.com/radieske/match-betting-core/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "settlement-worker"
	}

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Kafka consumer: eventos match_concluded disparam a liquidação automática
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicMatchConcluded, "settlement-worker")
	defer reader.Close()

	marketSettledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMarketSettled)
	defer marketSettledWriter.Close()

	var dlqWriter *kafkago.Writer
	if cfg.TopicMatchConcludedDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchConcludedDLQ)
		defer dlqWriter.Close()
	}

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		return redisClient.Ping(ctx).Err()
	})

	publ := producer.NewKafkaPublisher(nil, marketSettledWriter, nil)
	s := settler.New(log, repo.NewPostgres(pg), redisClient, publ)

	log.Info("settlement-worker started",
		zap.String("consume", cfg.TopicMatchConcluded),
		zap.String("publish", cfg.TopicMarketSettled),
	)

	ctx := context.Background()

	// Loop principal: consome match_concluded e liquida o mercado de resultado
	for {
		_, value, err := kafka.ReadNext(ctx, reader)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		var concluded ev.MatchConcluded
		if jerr := json.Unmarshal(value, &concluded); jerr != nil {
			log.Error("unmarshal match_concluded", zap.Error(jerr))
			continue
		}

		if err := processOne(ctx, log, s, dlqWriter, &concluded); err != nil {
			log.Error("settle match", zap.String("matchId", concluded.MatchID), zap.Error(err))
			time.Sleep(500 * time.Millisecond)
		}
	}
}

// processOne liquida uma partida com retry simples; esgotadas as tentativas,
// o evento vai pra DLQ e o loop segue
func processOne(
	ctx context.Context,
	log *zap.Logger,
	s *settler.Settler,
	dlqWriter *kafkago.Writer,
	concluded *ev.MatchConcluded,
) error {
	err := s.ProcessMatchConcluded(ctx, *concluded)
	if err == nil {
		return nil
	}

	const retries = 3
	for i := 0; i < retries; i++ {
		time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
		if err = s.ProcessMatchConcluded(ctx, *concluded); err == nil {
			return nil
		}
	}

	if dlqWriter != nil {
		if werr := kafka.WriteJSON(ctx, dlqWriter, concluded.MatchID, mustJSON(concluded)); werr != nil {
			log.Error("dlq write", zap.Error(werr))
		}
	}
	return err
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
