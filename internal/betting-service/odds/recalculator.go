package odds

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/match-betting-core/internal/betting-service/domain"
	"github.com/radieske/match-betting-core/internal/betting-service/repo"
	"github.com/radieske/match-betting-core/pkg/contracts/events"
)

// Publisher publica a atualização de odds no Kafka (tópico odds_updates)
type Publisher interface {
	PublishOddsUpdate(ctx context.Context, e events.OddsUpdate) error
}

// Recalculator refaz as odds pari-mutuel de um mercado após mudança de stake
// e distribui o resultado: Postgres (fonte da verdade), cache Redis (quotes)
// e canal Pub/Sub (broadcast pro hub WebSocket)
type Recalculator struct {
	log     *zap.Logger
	repo    *repo.Postgres
	cache   *Cache
	rdb     *redis.Client
	channel string
	publ    Publisher
}

func NewRecalculator(log *zap.Logger, r *repo.Postgres, cache *Cache, rdb *redis.Client, channel string, publ Publisher) *Recalculator {
	return &Recalculator{log: log, repo: r, cache: cache, rdb: rdb, channel: channel, publ: publ}
}

// RecalculateMarket roda o algoritmo pari-mutuel pra todas as opções do mercado.
// O total do mercado é computado uma vez e reutilizado no lote inteiro, então
// as odds de um mesmo recálculo saem de um snapshot consistente.
// O instante vem de fora: o chamador lê o relógio uma única vez por operação.
func (r *Recalculator) RecalculateMarket(ctx context.Context, marketID, matchID string, now time.Time) error {
	options, err := r.repo.GetMarketOptions(ctx, marketID)
	if err != nil {
		return err
	}

	marketTotal := decimalSum(options)

	upd := events.OddsUpdate{
		MarketID:  marketID,
		MatchID:   matchID,
		UpdatedAt: now.UTC(),
		Source:    "betting-service",
	}
	for _, o := range options {
		newOdds, ok := domain.ComputeOdds(o.TotalStake, marketTotal)
		if ok && !newOdds.Equal(o.Odds) {
			if err := r.repo.UpdateOptionOdds(ctx, o.ID, newOdds); err != nil {
				return err
			}
			o.Odds = newOdds
		}
		upd.Options = append(upd.Options, events.OptionOdds{
			OptionID:  o.ID,
			OptionKey: o.Key,
			Odds:      o.Odds.StringFixed(2),
		})
	}

	// Cache e broadcast são best-effort; o banco já tem a verdade
	if err := r.cache.SetQuotes(ctx, upd); err != nil {
		r.log.Warn("odds cache set", zap.String("marketId", marketID), zap.Error(err))
	}
	b, _ := json.Marshal(upd)
	if err := r.rdb.Publish(ctx, r.channel, b).Err(); err != nil {
		r.log.Warn("odds pubsub publish", zap.String("marketId", marketID), zap.Error(err))
	}
	if r.publ != nil {
		if err := r.publ.PublishOddsUpdate(ctx, upd); err != nil {
			r.log.Warn("odds kafka publish", zap.String("marketId", marketID), zap.Error(err))
		}
	}
	return nil
}

func decimalSum(options []*domain.Option) decimal.Decimal {
	total := decimal.Zero
	for _, o := range options {
		total = total.Add(o.TotalStake)
	}
	return total
}
