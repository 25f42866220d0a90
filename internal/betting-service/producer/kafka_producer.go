package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/match-betting-core/pkg/contracts/events"
)

// KafkaPublisher publica os eventos do núcleo de apostas
// Um writer por tópico; writers nil são ignorados (útil em testes)
type KafkaPublisher struct {
	BetPlaced     *kafka.Writer
	MarketSettled *kafka.Writer
	OddsUpdates   *kafka.Writer
}

func NewKafkaPublisher(betPlaced, marketSettled, oddsUpdates *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{
		BetPlaced:     betPlaced,
		MarketSettled: marketSettled,
		OddsUpdates:   oddsUpdates,
	}
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	return writeJSON(ctx, p.BetPlaced, e.BetID, e)
}

func (p *KafkaPublisher) PublishMarketSettled(ctx context.Context, e events.MarketSettled) error {
	return writeJSON(ctx, p.MarketSettled, e.MarketID, e)
}

func (p *KafkaPublisher) PublishOddsUpdate(ctx context.Context, e events.OddsUpdate) error {
	return writeJSON(ctx, p.OddsUpdates, e.MarketID, e)
}

func writeJSON(ctx context.Context, w *kafka.Writer, key string, v any) error {
	if w == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: b})
}
