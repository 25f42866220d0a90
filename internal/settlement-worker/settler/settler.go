package settler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/match-betting-core/internal/betting-service/domain"
	"github.com/radieske/match-betting-core/internal/betting-service/repo"
	"github.com/radieske/match-betting-core/internal/shared/metrics"
	"github.com/radieske/match-betting-core/pkg/contracts/events"
)

// guardia de idempotência: uma partida concluída só dispara uma liquidação
const guardTTL = 24 * time.Hour

// Publisher é a fatia do produtor Kafka usada pelo worker
type Publisher interface {
	PublishMarketSettled(ctx context.Context, e events.MarketSettled) error
}

// Settler liquida o mercado 1x2 de uma partida a partir do evento match_concluded
type Settler struct {
	log  *zap.Logger
	repo *repo.Postgres
	rdb  *redis.Client
	publ Publisher
	now  func() time.Time
}

func New(log *zap.Logger, r *repo.Postgres, rdb *redis.Client, p Publisher) *Settler {
	return &Settler{log: log, repo: r, rdb: rdb, publ: p, now: time.Now}
}

// WinnerOptionKey mapeia o campo winner do evento pra chave da opção do mercado 1x2
func WinnerOptionKey(winner string) (string, bool) {
	switch winner {
	case "home", "away", "draw":
		return winner, true
	}
	return "", false
}

// OutcomeCode é o placar final no formato "2-1"
func OutcomeCode(homeScore, awayScore int) string {
	return fmt.Sprintf("%d-%d", homeScore, awayScore)
}

func guardKey(matchID string) string { return "settle:match:" + matchID }

// ProcessMatchConcluded liquida o mercado de resultado da partida.
// Idempotente: o guard no Redis corta retries baratos e o UNIQUE no banco
// garante a escrita única mesmo com o Redis fora do ar.
func (s *Settler) ProcessMatchConcluded(ctx context.Context, ev events.MatchConcluded) error {
	if s.rdb != nil {
		ok, err := s.rdb.SetNX(ctx, guardKey(ev.MatchID), "1", guardTTL).Result()
		if err != nil {
			s.log.Warn("redis guard", zap.String("matchId", ev.MatchID), zap.Error(err))
		} else if !ok {
			s.log.Info("match already processed", zap.String("matchId", ev.MatchID))
			return nil
		}
	}

	err := s.settle(ctx, ev)
	if err != nil && s.rdb != nil {
		// Libera o guard pra nova tentativa consumir de novo
		_ = s.rdb.Del(ctx, guardKey(ev.MatchID)).Err()
	}
	return err
}

func (s *Settler) settle(ctx context.Context, ev events.MatchConcluded) error {
	key, ok := WinnerOptionKey(ev.Winner)
	if !ok {
		// Sem vencedor reconhecível (partida adiada etc): nada a liquidar
		s.log.Warn("unrecognized winner", zap.String("matchId", ev.MatchID), zap.String("winner", ev.Winner))
		return nil
	}

	m, err := s.repo.GetMarketByMatchAndKind(ctx, ev.MatchID, domain.KindThreeWayResult)
	if errors.Is(err, repo.ErrNotFound) {
		// Partida sem mercado de resultado: nada a liquidar
		s.log.Info("no market for match", zap.String("matchId", ev.MatchID))
		return nil
	}
	if err != nil {
		return err
	}

	opts, err := s.repo.GetMarketOptions(ctx, m.ID)
	if err != nil {
		return err
	}
	var winning *domain.Option
	for _, o := range opts {
		if o.Key == key {
			winning = o
			break
		}
	}
	if winning == nil {
		s.log.Warn("market missing winner option", zap.String("marketId", m.ID), zap.String("key", key))
		return nil
	}

	now := s.now()
	out := domain.NewResultOutcome(m.ID, winning.ID, ev.HomeScore, ev.AwayScore, OutcomeCode(ev.HomeScore, ev.AwayScore), now)

	start := time.Now()
	sum, err := s.repo.SettleMarket(ctx, out, now)
	if errors.Is(err, domain.ErrMarketAlreadySettled) {
		s.log.Info("market already settled", zap.String("marketId", m.ID))
		return nil
	}
	if err != nil {
		return err
	}
	metrics.SettlementDuration.Observe(time.Since(start).Seconds())
	metrics.MarketsSettled.WithLabelValues(string(domain.SettlementResult)).Inc()
	metrics.BetsSettled.WithLabelValues("won").Add(float64(sum.Won))
	metrics.BetsSettled.WithLabelValues("lost").Add(float64(sum.Lost))
	metrics.BetsSettled.WithLabelValues("cancelled").Add(float64(sum.Cancelled))

	s.log.Info("market settled",
		zap.String("marketId", m.ID),
		zap.String("matchId", ev.MatchID),
		zap.String("winner", key),
		zap.Int("won", sum.Won),
		zap.Int("lost", sum.Lost),
		zap.Int("cancelled", sum.Cancelled),
		zap.String("totalPaidOut", sum.TotalPaidOut.String()),
	)

	if s.publ != nil {
		if perr := s.publ.PublishMarketSettled(ctx, events.MarketSettled{
			MarketID:         m.ID,
			MatchID:          ev.MatchID,
			SettlementType:   string(domain.SettlementResult),
			WinningOptionIDs: []string{winning.ID},
			BetsWon:          sum.Won,
			BetsLost:         sum.Lost,
			BetsCancelled:    sum.Cancelled,
			TotalPaidOut:     sum.TotalPaidOut.String(),
			SettledAt:        now,
		}); perr != nil {
			s.log.Warn("publish market_settled", zap.Error(perr))
		}
	}
	return nil
}
